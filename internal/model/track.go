package model

import (
	"strings"
	"time"
)

// TrackHandle identifies a remote track for one download attempt.
//
// Playlist carries the identifier of the playlist the track was resolved
// from, so that playlist history can be consulted and updated. It is empty
// for tracks requested directly or through an album.
type TrackHandle struct {
	// ID is the remote track identifier.
	ID string

	// Playlist is the remote playlist identifier, if any.
	Playlist string
}

// String returns the track identifier.
func (h TrackHandle) String() string {
	return h.ID
}

// AlbumInfo describes the album a track belongs to.
type AlbumInfo struct {
	// Title is the album title.
	Title string

	// CoverURL points at the album cover image. Empty if none.
	CoverURL string

	// TrackCount is the number of tracks on the album.
	TrackCount int
}

// TrackMetadata holds the descriptive data of a remote track.
//
// Metadata is produced once per download attempt by the provider and is
// treated as read-only afterwards.
//
// Example:
//
//	meta := &TrackMetadata{
//	    Title:      "Come Together",
//	    Artists:    []string{"The Beatles"},
//	    Album:      AlbumInfo{Title: "Abbey Road", TrackCount: 17},
//	    DurationMs: 259000,
//	    Number:     1,
//	}
type TrackMetadata struct {
	// ID is the remote track identifier.
	ID string

	// Title is the track title.
	Title string

	// Artists lists the artist names in the order the service returned them.
	Artists []string

	// Album is the album the track belongs to.
	Album AlbumInfo

	// DurationMs is the track length in milliseconds. The service may report
	// zero or negative values; use Duration for a clamped value.
	DurationMs int64

	// ApproxSize is the approximate stream size in bytes, used as the
	// progress total.
	ApproxSize int64

	// Number is the track index within its album (1-indexed).
	Number int
}

// Duration returns the track length, clamping non-positive values to zero.
func (m *TrackMetadata) Duration() time.Duration {
	if m.DurationMs <= 0 {
		return 0
	}
	return time.Duration(m.DurationMs) * time.Millisecond
}

// PrimaryArtist returns the first artist, or an empty string.
func (m *TrackMetadata) PrimaryArtist() string {
	if len(m.Artists) == 0 {
		return ""
	}
	return m.Artists[0]
}

// DisplayName returns "artists - title" for logs and progress labels.
func (m *TrackMetadata) DisplayName() string {
	return strings.Join(m.Artists, ", ") + " - " + m.Title
}
