// Package history remembers which tracks were already downloaded from each
// playlist, so re-running a playlist only fetches what is new.
//
// The journal is a JSON file:
//
//	{
//	  "playlists": {
//	    "service:playlist:37i9dQZF1DX": ["service:track:4uLU6h", "service:track:7qiZfU"]
//	  }
//	}
//
// Entries are only ever added. The whole file is rewritten after each insert.
package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

type storedHistory struct {
	Playlists map[string][]string `json:"playlists"`
}

// History is the in-memory view of the playlist journal.
type History struct {
	path string

	mu        sync.RWMutex
	playlists map[string]map[string]struct{}
}

// Load reads the journal at path. A missing, unreadable or corrupt file
// yields an empty history; it is replaced on the next Record.
func Load(path string) *History {
	h := &History{
		path:      path,
		playlists: make(map[string]map[string]struct{}),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return h
	}

	var stored storedHistory
	if err := json.Unmarshal(data, &stored); err != nil {
		return h
	}

	for playlist, tracks := range stored.Playlists {
		set := make(map[string]struct{}, len(tracks))
		for _, track := range tracks {
			set[track] = struct{}{}
		}
		h.playlists[playlist] = set
	}
	return h
}

// Path returns the journal location.
func (h *History) Path() string {
	return h.path
}

// Has reports whether track was downloaded as part of playlist.
func (h *History) Has(playlist, track string) bool {
	if playlist == "" || track == "" {
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.playlists[playlist][track]
	return ok
}

// Record adds track to playlist and persists the journal. Empty
// identifiers are ignored. Recording an existing entry rewrites the file
// unchanged.
func (h *History) Record(playlist, track string) error {
	if playlist == "" || track == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.playlists[playlist]
	if !ok {
		set = make(map[string]struct{})
		h.playlists[playlist] = set
	}
	set[track] = struct{}{}

	return h.persist()
}

// Len returns the number of tracks recorded for playlist.
func (h *History) Len(playlist string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.playlists[playlist])
}

func (h *History) persist() error {
	stored := storedHistory{Playlists: make(map[string][]string, len(h.playlists))}
	for playlist, set := range h.playlists {
		tracks := make([]string, 0, len(set))
		for track := range set {
			tracks = append(tracks, track)
		}
		sort.Strings(tracks)
		stored.Playlists[playlist] = tracks
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(h.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(h.path, data, 0644)
}
