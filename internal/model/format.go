package model

import (
	"fmt"
	"strings"
)

// Format is the encoded audio format of downloaded files.
type Format int

const (
	// FormatMP3 encodes to MP3 (320 kbps) and tags with ID3v2.4.
	FormatMP3 Format = iota

	// FormatFLAC encodes to lossless FLAC and tags with Vorbis comments.
	FormatFLAC
)

// ParseFormat parses a format name such as "mp3" or "flac".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mp3":
		return FormatMP3, nil
	case "flac":
		return FormatFLAC, nil
	default:
		return FormatMP3, fmt.Errorf("unsupported format %q (want mp3 or flac)", s)
	}
}

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatFLAC:
		return "flac"
	default:
		return "mp3"
	}
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	return f.String()
}
