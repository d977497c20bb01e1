// Package ioutils provides file system and image processing utilities.
//
// # File Operations
//
//	err := ioutils.EnsureDir("/music")
//	err = ioutils.WriteFile(ctx, "/music/Artist - Title.mp3", data)
//	if ioutils.Exists(path) { ... }
//
// # Filename Sanitization
//
// SanitizeFileName drops characters that are invalid on common file
// systems, and optionally everything outside ASCII:
//
//	safe := ioutils.SanitizeFileName("Song: Part 1/2", false) // "Song Part 12"
//
// # Cover Art
//
// ImageService bounds and re-encodes cover images for tag embedding:
//
//	svc := ioutils.NewImageService(1000)
//	jpeg, err := svc.PrepareCover(ctx, pngData)
package ioutils
