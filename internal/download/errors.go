package download

import "errors"

var (
	// ErrMetadataUnavailable means the provider could not describe a track.
	// The track is skipped.
	ErrMetadataUnavailable = errors.New("metadata unavailable")

	// ErrStreamTimeout means no stream event arrived within the inactivity
	// timeout. The track is skipped.
	ErrStreamTimeout = errors.New("stream timed out")

	// ErrStream means the stream could not be opened or ended with an error.
	ErrStream = errors.New("stream error")

	// ErrEncodeOrWrite means encoding, writing or tagging the output file
	// failed. A partially written file is left in place.
	ErrEncodeOrWrite = errors.New("encode or write failed")

	// ErrStructural means no usable output path could be built. It is the
	// only error that aborts a batch.
	ErrStructural = errors.New("structural failure")

	errNoSamples = errors.New("stream delivered no audio")
)
