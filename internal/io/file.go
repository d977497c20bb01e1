// Package ioutils provides file system utilities for trackdl.
//
// This package contains functions for:
//   - File writing
//   - Filename sanitization
//   - Directory creation
//   - Existence checks
//
// All functions that accept a context.Context check for cancellation
// before touching the disk; the file operations themselves are not
// interruptible.
package ioutils

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"
	"unicode"
)

// invalidFileNameChars are dropped from derived file names. The dot is
// included so that names never carry a spurious extension.
const invalidFileNameChars = `<>:'"/\|?*.`

// WriteFile writes data to a file, creating it if necessary.
//
// The file is created with mode 0644. If the file already exists,
// it is truncated before writing.
//
// Example:
//
//	err := WriteFile(ctx, "/music/Artist - Title.mp3", encoded)
func WriteFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SanitizeFileName removes characters that are invalid in file names.
//
// The following characters are removed:
//   - < > : ' " / \ | ? * .
//   - control characters
//   - any non-ASCII character when asciiOnly is set
//
// Characters are dropped, never replaced, so sanitizing an already
// sanitized name returns it unchanged.
//
// Example:
//
//	SanitizeFileName("AC/DC - T.N.T.", false)   // Returns "ACDC - TNT"
//	SanitizeFileName("Björk - Jóga", true)      // Returns "Bjrk - Jga"
func SanitizeFileName(name string, asciiOnly bool) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidFileNameChars, r) || unicode.IsControl(r) {
			return -1
		}
		if asciiOnly && r > unicode.MaxASCII {
			return -1
		}
		return r
	}, name)
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// Exists reports whether something exists at path.
//
// Errors other than "not exist" (permissions, broken mounts) are treated
// as existing, so callers err on the side of not overwriting.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}
