// Package audio turns downloaded samples into tagged audio files and
// builds playlists from them.
//
// # Encoding
//
// FFmpegEncoder pipes raw PCM through ffmpeg:
//
//	enc := audio.NewFFmpegEncoder(settings.FFmpegPath)
//	data, err := enc.Encode(ctx, samples, model.FormatMP3)
//
// # Tagging
//
// Tagger writes ID3v2.4 frames to MP3 files and Vorbis comments to FLAC
// files:
//
//	tagger := audio.NewTagger()
//	err := tagger.Apply(path, audio.RecordFor(meta, cover), model.FormatFLAC)
//
// # Playlist Generation
//
//	creator := audio.NewPlaylistCreator(model.PlaylistFormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist("Road Trip", entries)
//	os.WriteFile("Road Trip.m3u", []byte(content), 0644)
//
// Supported playlist formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
package audio
