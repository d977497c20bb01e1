// Package model defines the core data structures used throughout trackdl.
//
// # Tracks
//
// TrackHandle is the opaque reference handed to the download manager;
// TrackMetadata is what the remote service reports about it:
//
//	handle := model.TrackHandle{ID: "4uLU6hMCjMI75M1A2tKUQC"}
//	meta, _ := provider.Metadata(ctx, handle)
//	fmt.Println(meta.DisplayName(), meta.Duration())
//
// # Formats
//
// Format selects the encoder and tag container:
//
//	f, err := model.ParseFormat("flac")
//	fmt.Println(f.Extension()) // "flac"
//
// # Collections
//
// Collection is an album or playlist expanded into its tracks. Handles
// resolved from a playlist carry the playlist ID for history bookkeeping.
package model
