package download

import (
	"context"

	"github.com/handiism/trackdl/internal/audio"
	"github.com/handiism/trackdl/internal/model"
	"github.com/handiism/trackdl/internal/stream"
)

// Provider describes tracks and streams their audio.
type Provider interface {
	Metadata(ctx context.Context, h model.TrackHandle) (*model.TrackMetadata, error)

	// Open starts the audio stream of a track. The channel carries zero or
	// more Write and Retry events, then one Finished or Error event, and is
	// closed afterwards. The producer must stop once ctx is done.
	Open(ctx context.Context, h model.TrackHandle) (<-chan stream.Event, error)

	// Cover returns cover art for embedding, or nil if there is none.
	Cover(ctx context.Context, meta *model.TrackMetadata) ([]byte, error)
}

// Encoder turns PCM samples into an encoded file.
type Encoder interface {
	Encode(ctx context.Context, samples stream.Samples, format model.Format) ([]byte, error)
}

// TagWriter embeds a tag record into an encoded file.
type TagWriter interface {
	Apply(path string, rec audio.TagRecord, format model.Format) error
}

// History remembers tracks already downloaded from a playlist. Record is
// called from concurrent pipelines.
type History interface {
	Has(playlist, track string) bool
	Record(playlist, track string) error
}
