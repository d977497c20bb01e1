package download

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	ioutils "github.com/handiism/trackdl/internal/io"
	"github.com/handiism/trackdl/internal/model"
)

// maxNamedArtists is how many artists a file name lists before the rest
// are summarised.
const maxNamedArtists = 3

// FileName derives the sanitized file stem of a track:
//
//	"A, B - Title"
//	"A, B, C, and others - Title"   (more than three artists)
func FileName(meta *model.TrackMetadata, asciiOnly bool) string {
	if len(meta.Artists) > maxNamedArtists {
		artists := strings.Join(meta.Artists[:maxNamedArtists], ", ")
		return ioutils.SanitizeFileName(fmt.Sprintf("%s, and others - %s", artists, meta.Title), asciiOnly)
	}

	artists := strings.Join(meta.Artists, ", ")
	return ioutils.SanitizeFileName(fmt.Sprintf("%s - %s", artists, meta.Title), asciiOnly)
}

// LegacyFileName returns the stem older releases produced for tracks with
// more than three artists ("A, B, C, ... - Title", sanitized). ok is false
// when no legacy variant exists.
func LegacyFileName(meta *model.TrackMetadata, asciiOnly bool) (name string, ok bool) {
	if len(meta.Artists) <= maxNamedArtists {
		return "", false
	}

	artists := strings.Join(meta.Artists[:maxNamedArtists], ", ")
	return ioutils.SanitizeFileName(fmt.Sprintf("%s, ... - %s", artists, meta.Title), asciiOnly), true
}

// target is where a track goes, or why it is not downloaded.
type target struct {
	Stem string
	Path string

	// Skip is set when a previous download exists at Path.
	Skip bool
}

// resolveTarget builds the output path of meta under destination. Unless
// force is set, an existing file at the current or legacy path turns the
// result into a skip pointing at that file.
func resolveTarget(destination string, meta *model.TrackMetadata, format model.Format, force, asciiOnly bool) (target, error) {
	stem := FileName(meta, asciiOnly)
	path := filepath.Join(destination, stem+"."+format.Extension())

	if !utf8.ValidString(path) {
		return target{}, fmt.Errorf("%w: output path for %q is not valid UTF-8", ErrStructural, meta.ID)
	}

	t := target{Stem: stem, Path: path}
	if force {
		return t, nil
	}

	if ioutils.Exists(path) {
		t.Skip = true
		return t, nil
	}

	if legacy, ok := LegacyFileName(meta, asciiOnly); ok {
		legacyPath := filepath.Join(destination, legacy+"."+format.Extension())
		if ioutils.Exists(legacyPath) {
			t.Path = legacyPath
			t.Skip = true
		}
	}
	return t, nil
}
