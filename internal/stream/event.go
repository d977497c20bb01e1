// Package stream defines the events a remote provider emits while it
// delivers the audio of one track, and the sample buffer they fill.
//
// A well-formed event sequence is zero or more Write and Retry events
// followed by exactly one Finished or Error event, after which the channel
// is closed.
package stream

import "fmt"

// Kind tags the variant of an Event.
type Kind int

const (
	// KindWrite carries a chunk of decoded samples.
	KindWrite Kind = iota
	// KindFinished marks the successful end of the stream.
	KindFinished
	// KindError marks a terminal stream failure.
	KindError
	// KindRetry reports that the provider is recovering from a transient failure.
	KindRetry
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindWrite:
		return "write"
	case KindFinished:
		return "finished"
	case KindError:
		return "error"
	case KindRetry:
		return "retry"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event is one step of a track stream. Only the fields of its Kind are set.
type Event struct {
	Kind Kind

	// Write payload.
	Bytes   int64
	Total   int64
	Samples []int32

	// Error payload.
	Err error

	// Retry payload.
	Attempt     int
	MaxAttempts int
}

// Write returns a KindWrite event. bytes is the running byte count of the
// stream, total the expected size (zero or less when unknown).
func Write(bytes, total int64, samples []int32) Event {
	return Event{Kind: KindWrite, Bytes: bytes, Total: total, Samples: samples}
}

// Finished returns a KindFinished event.
func Finished() Event {
	return Event{Kind: KindFinished}
}

// Failure returns a KindError event carrying err.
func Failure(err error) Event {
	return Event{Kind: KindError, Err: err}
}

// Retry returns a KindRetry event for attempt out of maxAttempts.
func Retry(attempt, maxAttempts int) Event {
	return Event{Kind: KindRetry, Attempt: attempt, MaxAttempts: maxAttempts}
}

// Default PCM layout of provider streams.
const (
	DefaultSampleRate = 44100
	DefaultChannels   = 2
)

// Samples is the decoded audio of one track: interleaved signed 32-bit PCM.
type Samples struct {
	Samples    []int32
	SampleRate int
	Channels   int
}

// Len returns the number of interleaved samples.
func (s *Samples) Len() int {
	return len(s.Samples)
}
