package download

import (
	"fmt"

	"github.com/handiism/trackdl/internal/model"
)

// Status is the terminal state of one track.
type Status int

const (
	// StatusDownloaded means the file was written and tagged.
	StatusDownloaded Status = iota
	// StatusSkipped means the track was already downloaded (file or
	// playlist history) or its metadata was unavailable.
	StatusSkipped
	// StatusTimedOut means the stream went silent and was abandoned.
	StatusTimedOut
	// StatusFailed means the stream, encoder, writer or tagger failed.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusDownloaded:
		return "downloaded"
	case StatusSkipped:
		return "skipped"
	case StatusTimedOut:
		return "timed out"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is the result of one pipeline run.
type Outcome struct {
	Handle model.TrackHandle
	Status Status

	// Path is the written file, or the existing file for skips.
	Path string

	// Title is the derived file stem, empty if metadata was unavailable.
	Title string

	// Meta is the track metadata, nil if unavailable.
	Meta *model.TrackMetadata

	// Err is the cause for skips due to missing metadata, timeouts and
	// failures.
	Err error
}

// Summary counts outcomes by status.
type Summary struct {
	Downloaded int
	Skipped    int
	TimedOut   int
	Failed     int
}

// Summarize counts outcomes by status.
func Summarize(outcomes []Outcome) Summary {
	var s Summary
	for _, o := range outcomes {
		switch o.Status {
		case StatusDownloaded:
			s.Downloaded++
		case StatusSkipped:
			s.Skipped++
		case StatusTimedOut:
			s.TimedOut++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}

// Total returns the number of outcomes counted.
func (s Summary) Total() int {
	return s.Downloaded + s.Skipped + s.TimedOut + s.Failed
}

func (s Summary) String() string {
	return fmt.Sprintf("%d downloaded, %d skipped, %d timed out, %d failed", s.Downloaded, s.Skipped, s.TimedOut, s.Failed)
}
