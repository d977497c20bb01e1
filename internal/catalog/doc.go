// Package catalog talks to the remote track service on behalf of the
// downloader.
//
// The package handles two main use cases:
//
//  1. Resolving user references (URIs and web URLs) into track handles,
//     expanding albums and playlists to their member tracks
//  2. Serving track metadata, audio streams and cover art to the download
//     manager
//
// # Reference Resolution
//
//	resolver := catalog.NewResolver(client, logger)
//	res, err := resolver.Resolve(ctx, []string{
//	    "svc:album:1DFixLWuPkv3KT3TnV35m3",
//	    "https://open.example.com/intl-de/track/4uLU6hMCjMI75M1A2tKUQC?si=x",
//	})
//	for _, h := range res.Tracks {
//	    fmt.Println(h.ID, h.Playlist)
//	}
//
// # Service Data Format
//
// Tracks are served as JSON under /v1/tracks/{id}, collections under
// /v1/albums/{id} and /v1/playlists/{id}, and audio as raw signed 32-bit
// little-endian PCM under /v1/tracks/{id}/audio.
package catalog
