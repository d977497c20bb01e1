package audio

import (
	"strings"
	"testing"
	"time"

	"github.com/handiism/trackdl/internal/model"
)

func testEntries() []PlaylistEntry {
	return []PlaylistEntry{
		{Path: "/music/A - track1.mp3", Title: "track1", Artist: "A", Album: "Test Album", Duration: 180 * time.Second},
		{Path: "/music/A - track2.mp3", Title: "track2", Artist: "A", Album: "Test Album", Duration: 200 * time.Second},
	}
}

func TestPlaylistCreator_M3U(t *testing.T) {
	creator := NewPlaylistCreator(model.PlaylistFormatM3U, false)

	content := creator.CreatePlaylist("Test", testEntries())

	if content != "A - track1.mp3\nA - track2.mp3\n" {
		t.Errorf("M3U = %q", content)
	}
}

func TestPlaylistCreator_M3UExtended(t *testing.T) {
	creator := NewPlaylistCreator(model.PlaylistFormatM3U, true)

	content := creator.CreatePlaylist("Test", testEntries())

	if !strings.HasPrefix(content, "#EXTM3U\n") {
		t.Error("Extended M3U should start with #EXTM3U")
	}
	if !strings.Contains(content, "#EXTINF:180,A - track1\n") {
		t.Errorf("Extended M3U missing EXTINF line:\n%s", content)
	}
}

func TestPlaylistCreator_PLS(t *testing.T) {
	creator := NewPlaylistCreator(model.PlaylistFormatPLS, false)

	content := creator.CreatePlaylist("Test", testEntries())

	for _, want := range []string{"[playlist]\n", "File1=A - track1.mp3\n", "Length2=200\n", "NumberOfEntries=2\n", "Version=2\n"} {
		if !strings.Contains(content, want) {
			t.Errorf("PLS missing %q", want)
		}
	}
}

func TestPlaylistCreator_WPL(t *testing.T) {
	creator := NewPlaylistCreator(model.PlaylistFormatWPL, false)

	content := creator.CreatePlaylist("Test", testEntries())

	if !strings.Contains(content, "<?wpl") {
		t.Error("WPL should contain XML declaration")
	}
	if !strings.Contains(content, `<media src="A - track1.mp3"/>`) {
		t.Error("WPL should contain media elements")
	}
}

func TestPlaylistCreator_ZPL(t *testing.T) {
	creator := NewPlaylistCreator(model.PlaylistFormatZPL, false)

	content := creator.CreatePlaylist("Test", testEntries())

	if !strings.Contains(content, "<?zpl") {
		t.Error("ZPL should contain XML declaration")
	}
	if !strings.Contains(content, `albumTitle="Test Album"`) || !strings.Contains(content, `duration="180000"`) {
		t.Errorf("ZPL attributes missing:\n%s", content)
	}
}

func TestPlaylistCreator_XMLEscape(t *testing.T) {
	entries := []PlaylistEntry{{Path: "/m/x.mp3", Title: `Track & "Quote"`, Album: "Album <Special>"}}

	content := NewPlaylistCreator(model.PlaylistFormatZPL, false).CreatePlaylist("Mix & Match", entries)

	if strings.Contains(content, "<Special>") {
		t.Error("ZPL should escape < and >")
	}
	if !strings.Contains(content, "Mix &amp; Match") || !strings.Contains(content, "&quot;Quote&quot;") {
		t.Errorf("ZPL not escaped:\n%s", content)
	}
}
