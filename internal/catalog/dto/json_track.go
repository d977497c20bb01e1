package dto

import (
	"github.com/handiism/trackdl/internal/model"
)

// JSONTrack represents a track from the service's JSON API.
type JSONTrack struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Artists     []JSONArtist  `json:"artists"`
	Album       *JSONAlbumRef `json:"album"`
	DurationMs  int64         `json:"duration_ms"`
	TrackNumber *int          `json:"track_number"`
	FileSize    int64         `json:"file_size"`
}

// JSONArtist is an artist credit.
type JSONArtist struct {
	Name string `json:"name"`
}

// JSONAlbumRef is the album summary embedded in a track.
type JSONAlbumRef struct {
	Name        string `json:"name"`
	CoverURL    string `json:"cover_url"`
	TotalTracks int    `json:"total_tracks"`
}

// ToMetadata converts JSONTrack to model.TrackMetadata. fallbackID is used
// when the payload omits its own id.
func (jt *JSONTrack) ToMetadata(fallbackID string) *model.TrackMetadata {
	id := jt.ID
	if id == "" {
		id = fallbackID
	}

	artists := make([]string, 0, len(jt.Artists))
	for _, a := range jt.Artists {
		artists = append(artists, a.Name)
	}

	// Default track number to 1 for singles
	number := 1
	if jt.TrackNumber != nil {
		number = *jt.TrackNumber
	}

	meta := &model.TrackMetadata{
		ID:         id,
		Title:      jt.Name,
		Artists:    artists,
		DurationMs: jt.DurationMs,
		ApproxSize: jt.FileSize,
		Number:     number,
	}
	if jt.Album != nil {
		meta.Album = model.AlbumInfo{
			Title:      jt.Album.Name,
			CoverURL:   jt.Album.CoverURL,
			TrackCount: jt.Album.TotalTracks,
		}
	}
	return meta
}
