package download

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/handiism/trackdl/internal/audio"
	ioutils "github.com/handiism/trackdl/internal/io"
	"github.com/handiism/trackdl/internal/model"
	"github.com/handiism/trackdl/internal/progress"
	"github.com/handiism/trackdl/internal/stream"
)

// encodeAndTag encodes samples, writes them to path and tags the result.
// A file written before a later step fails is left on disk. A stream that
// delivered no samples fails before anything is written.
func (m *Manager) encodeAndTag(ctx context.Context, path string, meta *model.TrackMetadata, samples stream.Samples, format model.Format, bar progress.Bar, stem string) error {
	if samples.Len() == 0 {
		return fmt.Errorf("%w: %w", ErrEncodeOrWrite, errNoSamples)
	}

	bar.SetMessage("Encoding " + stem)
	m.logger.Info("encoding track", zap.String("file", stem), zap.Int("samples", samples.Len()))

	data, err := m.encoder.Encode(ctx, samples, format)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrEncodeOrWrite, err)
	}

	bar.SetMessage("Writing " + stem)
	m.logger.Info("writing track", zap.String("file", stem), zap.String("path", path))

	if err := ioutils.WriteFile(ctx, path, data); err != nil {
		return fmt.Errorf("%w: write: %w", ErrEncodeOrWrite, err)
	}

	var cover []byte
	if m.coverArt {
		cover, err = m.provider.Cover(ctx, meta)
		if err != nil {
			m.logger.Warn("cover art unavailable", zap.String("file", stem), zap.Error(err))
			cover = nil
		}
	}

	if err := m.tagger.Apply(path, audio.RecordFor(meta, cover), format); err != nil {
		return fmt.Errorf("%w: tag: %w", ErrEncodeOrWrite, err)
	}
	return nil
}
