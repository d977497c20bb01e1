package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/handiism/trackdl/internal/model"
	"github.com/handiism/trackdl/internal/stream"
)

// FFmpegEncoder encodes PCM samples by piping them through ffmpeg.
//
// Samples go in on stdin as signed 32-bit little-endian interleaved PCM.
// ffmpeg writes to a temporary file rather than stdout so it can seek back
// and fill in the FLAC STREAMINFO (total samples, MD5) and the MP3 Xing
// header. MP3 is encoded with libmp3lame at 320 kbps, FLAC with ffmpeg's
// native encoder.
//
// Example:
//
//	enc := NewFFmpegEncoder("ffmpeg")
//	data, err := enc.Encode(ctx, samples, model.FormatFLAC)
type FFmpegEncoder struct {
	// Path is the ffmpeg executable.
	Path string
}

// NewFFmpegEncoder creates an encoder running the ffmpeg binary at path.
// An empty path means "ffmpeg" on PATH.
func NewFFmpegEncoder(path string) *FFmpegEncoder {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpegEncoder{Path: path}
}

// Encode converts samples to format and returns the encoded file bytes.
func (e *FFmpegEncoder) Encode(ctx context.Context, samples stream.Samples, format model.Format) ([]byte, error) {
	out, err := os.CreateTemp("", "trackdl-*."+format.Extension())
	if err != nil {
		return nil, fmt.Errorf("ffmpeg output: %w", err)
	}
	output := out.Name()
	out.Close()
	defer os.Remove(output)

	cmd := exec.CommandContext(ctx, e.Path, e.args(samples, format, output)...)
	cmd.Stdin = bytes.NewReader(pcmBytes(samples.Samples))

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("ffmpeg %s: %w: %s", format, err, strings.TrimSpace(stderr.String()))
	}
	return os.ReadFile(output)
}

func (e *FFmpegEncoder) args(samples stream.Samples, format model.Format, output string) []string {
	rate := samples.SampleRate
	if rate <= 0 {
		rate = stream.DefaultSampleRate
	}
	channels := samples.Channels
	if channels <= 0 {
		channels = stream.DefaultChannels
	}

	args := []string{
		"-hide_banner",
		"-y",
		"-loglevel", "error",
		"-f", "s32le",
		"-ar", strconv.Itoa(rate),
		"-ac", strconv.Itoa(channels),
		"-i", "pipe:0",
	}

	switch format {
	case model.FormatFLAC:
		args = append(args, "-c:a", "flac", "-f", "flac")
	default:
		args = append(args, "-c:a", "libmp3lame", "-b:a", "320k", "-f", "mp3")
	}
	return append(args, output)
}

func pcmBytes(samples []int32) []byte {
	out := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], uint32(s))
	}
	return out
}
