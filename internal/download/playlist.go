package download

import (
	"context"
	"fmt"

	"github.com/handiism/trackdl/internal/audio"
	ioutils "github.com/handiism/trackdl/internal/io"
	"github.com/handiism/trackdl/internal/model"
)

// PlaylistWriter writes a playlist file per resolved collection, listing
// the tracks of the batch that ended up on disk.
type PlaylistWriter struct {
	creator   *audio.PlaylistCreator
	format    model.PlaylistFormat
	asciiOnly bool
}

// NewPlaylistWriter creates a PlaylistWriter.
func NewPlaylistWriter(format model.PlaylistFormat, extended, asciiOnly bool) *PlaylistWriter {
	return &PlaylistWriter{
		creator:   audio.NewPlaylistCreator(format, extended),
		format:    format,
		asciiOnly: asciiOnly,
	}
}

// Write writes the playlist of c into destination and returns its path.
// Tracks are listed in collection order. Downloaded tracks and tracks
// skipped because their file exists are included; the rest are left out.
// No file is written when nothing qualifies.
func (w *PlaylistWriter) Write(ctx context.Context, destination string, c *model.Collection, outcomes []Outcome) (string, error) {
	byHandle := make(map[model.TrackHandle]Outcome, len(outcomes))
	for _, o := range outcomes {
		byHandle[o.Handle] = o
	}

	var entries []audio.PlaylistEntry
	for _, h := range c.Tracks {
		o, ok := byHandle[h]
		if !ok || o.Path == "" || o.Meta == nil {
			continue
		}
		if o.Status != StatusDownloaded && o.Status != StatusSkipped {
			continue
		}
		entries = append(entries, audio.PlaylistEntry{
			Path:     o.Path,
			Title:    o.Meta.Title,
			Artist:   o.Meta.PrimaryArtist(),
			Album:    o.Meta.Album.Title,
			Duration: o.Meta.Duration(),
		})
	}
	if len(entries) == 0 {
		return "", nil
	}

	name := ioutils.SanitizeFileName(c.Name, w.asciiOnly)
	path := c.PlaylistPath(destination, name, w.format)
	content := w.creator.CreatePlaylist(c.Name, entries)

	if err := ioutils.WriteFile(ctx, path, []byte(content)); err != nil {
		return "", fmt.Errorf("write playlist %s: %w", path, err)
	}
	return path, nil
}
