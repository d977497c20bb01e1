package audio

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/bogem/id3v2"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	flac "github.com/go-flac/go-flac"

	"github.com/handiism/trackdl/internal/model"
)

// ErrNoAudioFrames is returned when a FLAC file has metadata but no audio
// frames.
var ErrNoAudioFrames = errors.New("flac: no audio frames")

// TagRecord is the descriptive data written into an output file.
type TagRecord struct {
	// Title is the track title.
	Title string

	// Artist is the primary artist.
	Artist string

	// Album is the album title.
	Album string

	// Track is the 1-indexed position on the album.
	Track int

	// AlbumLength is the number of tracks on the album. Zero if unknown.
	AlbumLength int

	// Cover is JPEG cover art. Nil to skip.
	Cover []byte
}

// RecordFor builds the tag record of a track.
func RecordFor(meta *model.TrackMetadata, cover []byte) TagRecord {
	return TagRecord{
		Title:       meta.Title,
		Artist:      meta.PrimaryArtist(),
		Album:       meta.Album.Title,
		Track:       meta.Number,
		AlbumLength: meta.Album.TrackCount,
		Cover:       cover,
	}
}

// trackNumber returns "n/total", or "n" when the album length is unknown.
func (r TagRecord) trackNumber() string {
	if r.AlbumLength > 0 {
		return fmt.Sprintf("%d/%d", r.Track, r.AlbumLength)
	}
	return fmt.Sprintf("%d", r.Track)
}

// Tagger writes tags to encoded audio files.
//
// MP3 files get ID3v2.4 frames through the id3v2 library:
//   - TIT2 (title), TPE1 (artist), TALB (album)
//   - TRCK (track number as "n/total")
//   - APIC (front cover)
//
// FLAC files get a Vorbis comment block with the same fields and a
// PICTURE block for the cover. Existing tags of the same kind are replaced.
//
// Example:
//
//	tagger := NewTagger()
//
//	// After writing the encoded file
//	err := tagger.Apply(path, RecordFor(meta, cover), model.FormatMP3)
//	if err != nil {
//	    log.Printf("Failed to tag %s: %v", path, err)
//	}
type Tagger struct{}

// NewTagger creates a new Tagger.
func NewTagger() *Tagger {
	return &Tagger{}
}

// Apply writes rec into the file at path according to format.
func (t *Tagger) Apply(path string, rec TagRecord, format model.Format) error {
	switch format {
	case model.FormatFLAC:
		return t.applyFLAC(path, rec)
	default:
		return t.applyMP3(path, rec)
	}
}

func (t *Tagger) applyMP3(path string, rec TagRecord) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	tag.SetTitle(rec.Title)
	tag.SetArtist(rec.Artist)
	tag.SetAlbum(rec.Album)

	// Track Number (TRCK)
	tag.DeleteFrames("TRCK")
	tag.AddTextFrame("TRCK", id3v2.EncodingUTF8, rec.trackNumber())

	if rec.Cover != nil {
		// Remove any existing cover pictures
		tag.DeleteFrames(tag.CommonID("Attached picture"))

		pic := id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    "image/jpeg",
			PictureType: id3v2.PTFrontCover,
			Description: "Front cover",
			Picture:     rec.Cover,
		}
		tag.AddAttachedPicture(pic)
	}

	return tag.Save()
}

func (t *Tagger) applyFLAC(path string, rec TagRecord) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := checkFLACFrames(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	f, err := flac.ParseBytes(bytes.NewReader(data))
	if err != nil {
		return err
	}

	comments := flacvorbis.New()
	fields := []struct {
		key, value string
	}{
		{flacvorbis.FIELD_TITLE, rec.Title},
		{flacvorbis.FIELD_ARTIST, rec.Artist},
		{flacvorbis.FIELD_ALBUM, rec.Album},
		{flacvorbis.FIELD_TRACKNUMBER, fmt.Sprintf("%d", rec.Track)},
	}
	for _, field := range fields {
		if field.value == "" {
			continue
		}
		if err := comments.Add(field.key, field.value); err != nil {
			return err
		}
	}
	if rec.AlbumLength > 0 {
		if err := comments.Add("TRACKTOTAL", fmt.Sprintf("%d", rec.AlbumLength)); err != nil {
			return err
		}
	}

	// Drop previous comment and picture blocks
	meta := f.Meta[:0]
	for _, block := range f.Meta {
		if block.Type == flac.VorbisComment {
			continue
		}
		if block.Type == flac.Picture && rec.Cover != nil {
			continue
		}
		meta = append(meta, block)
	}

	commentBlock := comments.Marshal()
	meta = append(meta, &commentBlock)

	if rec.Cover != nil {
		pic, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "Front cover", rec.Cover, "image/jpeg")
		if err != nil {
			return fmt.Errorf("cover picture: %w", err)
		}
		picBlock := pic.Marshal()
		meta = append(meta, &picBlock)
	}
	f.Meta = meta

	return f.Save(path)
}

// checkFLACFrames walks the metadata blocks of data and verifies that an
// audio frame sync code follows them. go-flac assumes the frames exist.
func checkFLACFrames(data []byte) error {
	if len(data) < 4 || string(data[:4]) != "fLaC" {
		return errors.New("flac: missing stream marker")
	}

	pos := 4
	for {
		if pos+4 > len(data) {
			return errors.New("flac: truncated metadata block")
		}
		last := data[pos]&0x80 != 0
		length := int(data[pos+1])<<16 | int(data[pos+2])<<8 | int(data[pos+3])
		pos += 4 + length
		if last {
			break
		}
	}

	if pos+2 > len(data) {
		return ErrNoAudioFrames
	}
	// Frame sync: 14 bits 0b11111111111110.
	if data[pos] != 0xFF || data[pos+1]>>2 != 0x3E {
		return fmt.Errorf("flac: no frame sync code at byte %d", pos)
	}
	return nil
}
