package download

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/handiism/trackdl/internal/model"
)

func TestPlaylistWriter_Write(t *testing.T) {
	h := newHarness(t)
	h.provider.track("t1", 180000)
	h.provider.track("t2", 0)
	h.provider.track("t3", 200000)
	h.provider.update("t2", func(s *script) { s.openErr = os.ErrClosed })

	collection := &model.Collection{
		ID:     "pl",
		Kind:   model.KindPlaylist,
		Name:   "Road: Trip",
		Tracks: []model.TrackHandle{{ID: "t3", Playlist: "pl"}, {ID: "t2", Playlist: "pl"}, {ID: "t1", Playlist: "pl"}},
	}

	outcomes, err := h.manager().DownloadAll(context.Background(), collection.Tracks, h.options(3))
	if err != nil {
		t.Fatalf("DownloadAll returned %v", err)
	}

	w := NewPlaylistWriter(model.PlaylistFormatM3U, true, false)
	path, err := w.Write(context.Background(), h.dir, collection, outcomes)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if path != filepath.Join(h.dir, "Road Trip.m3u") {
		t.Errorf("path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "#EXTM3U\n" +
		"#EXTINF:200,Artist - Song t3\n" +
		"Artist - Song t3.mp3\n" +
		"#EXTINF:180,Artist - Song t1\n" +
		"Artist - Song t1.mp3\n"
	if string(data) != want {
		t.Errorf("playlist =\n%s\nwant\n%s", data, want)
	}
}

func TestPlaylistWriter_NothingToList(t *testing.T) {
	dir := t.TempDir()
	collection := &model.Collection{ID: "al", Kind: model.KindAlbum, Name: "Empty", Tracks: []model.TrackHandle{{ID: "x"}}}
	outcomes := []Outcome{{Handle: model.TrackHandle{ID: "x"}, Status: StatusFailed}}

	path, err := NewPlaylistWriter(model.PlaylistFormatPLS, false, false).Write(context.Background(), dir, collection, outcomes)
	if err != nil || path != "" {
		t.Errorf("Write() = %q, %v; want nothing written", path, err)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("unexpected files: %v", entries)
	}
}
