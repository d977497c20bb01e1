package dto

import (
	"github.com/handiism/trackdl/internal/model"
)

// JSONCollection represents an album or playlist from the service's JSON API.
type JSONCollection struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Tracks []JSONTrackRef `json:"tracks"`
}

// JSONTrackRef is a member track of a collection.
type JSONTrackRef struct {
	ID string `json:"id"`
}

// ToCollection converts JSONCollection to a model.Collection. Handles of a
// playlist carry the playlist id; album handles do not.
func (jc *JSONCollection) ToCollection(kind model.CollectionKind, fallbackID string) *model.Collection {
	id := jc.ID
	if id == "" {
		id = fallbackID
	}

	c := &model.Collection{
		ID:   id,
		Kind: kind,
		Name: jc.Name,
	}

	// Skip entries without an id (removed or unavailable tracks)
	for _, ref := range jc.Tracks {
		if ref.ID == "" {
			continue
		}
		handle := model.TrackHandle{ID: ref.ID}
		if kind == model.KindPlaylist {
			handle.Playlist = id
		}
		c.Tracks = append(c.Tracks, handle)
	}
	return c
}
