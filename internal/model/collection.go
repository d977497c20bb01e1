package model

import (
	"path/filepath"
)

// CollectionKind tells what a resolved reference pointed at.
type CollectionKind int

const (
	KindTrack CollectionKind = iota
	KindAlbum
	KindPlaylist
)

// String returns the kind name as used in service URIs.
func (k CollectionKind) String() string {
	switch k {
	case KindAlbum:
		return "album"
	case KindPlaylist:
		return "playlist"
	default:
		return "track"
	}
}

// Collection is a resolved album or playlist with its tracks in service order.
type Collection struct {
	// ID is the remote identifier.
	ID string

	// Kind is KindAlbum or KindPlaylist.
	Kind CollectionKind

	// Name is the album or playlist title.
	Name string

	// Tracks holds the member tracks in order.
	Tracks []TrackHandle
}

// PlaylistFormat represents supported playlist file formats.
type PlaylistFormat int

const (
	// PlaylistFormatM3U creates .m3u playlist files (most widely supported).
	PlaylistFormatM3U PlaylistFormat = iota

	// PlaylistFormatPLS creates .pls playlist files (used by Winamp).
	PlaylistFormatPLS

	// PlaylistFormatWPL creates .wpl playlist files (Windows Media Player).
	PlaylistFormatWPL

	// PlaylistFormatZPL creates .zpl playlist files (Zune).
	PlaylistFormatZPL
)

// Extension returns the file extension for the playlist format, including the dot.
func (pf PlaylistFormat) Extension() string {
	switch pf {
	case PlaylistFormatPLS:
		return ".pls"
	case PlaylistFormatWPL:
		return ".wpl"
	case PlaylistFormatZPL:
		return ".zpl"
	default:
		return ".m3u"
	}
}

// PlaylistPath returns where the playlist file for the collection is written.
// name must already be sanitized.
func (c *Collection) PlaylistPath(destination, name string, pf PlaylistFormat) string {
	if name == "" {
		name = c.Kind.String() + "-" + c.ID
	}
	return filepath.Join(destination, name+pf.Extension())
}
