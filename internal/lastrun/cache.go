// Package lastrun persists the track references of the previous
// invocation, so running without arguments repeats it ("sync mode").
package lastrun

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// DefaultPath is the cache location, relative to the working directory.
const DefaultPath = ".last_run_cache.dl"

// ErrCorrupted is returned by Load when the cache cannot be decoded.
var ErrCorrupted = errors.New("last run cache corrupted")

var removeFile = os.Remove

// Cache is the on-disk document.
type Cache struct {
	URL []string `json:"url"`
}

// Load reads the cache at path. A missing or blank file returns an empty
// Cache and no error. Undecodable content returns ErrCorrupted.
func Load(path string) (*Cache, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Cache{}, nil
		}
		return nil, err
	}

	if strings.TrimSpace(string(data)) == "" {
		return &Cache{}, nil
	}

	var c Cache
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	return &c, nil
}

// Recall loads the cached references. A corrupted cache is deleted and
// reported through the corrupted flag, so the caller carries on as if no
// cache existed. If that deletion fails, the flag comes with its error.
func Recall(path string) (urls []string, corrupted bool, err error) {
	c, err := Load(path)
	if err != nil {
		if errors.Is(err, ErrCorrupted) {
			if rerr := Reset(path); rerr != nil {
				return nil, true, fmt.Errorf("erase corrupted cache: %w", rerr)
			}
			return nil, true, nil
		}
		return nil, false, err
	}
	return c.URL, false, nil
}

// Store overwrites the cache with urls.
func Store(path string, urls []string) error {
	if urls == nil {
		urls = []string{}
	}
	data, err := json.MarshalIndent(Cache{URL: urls}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Reset deletes the cache. A missing file is not an error.
func Reset(path string) error {
	err := removeFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
