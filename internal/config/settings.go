package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/handiism/trackdl/internal/model"
)

// TokenEnv overrides Settings.Token when set.
const TokenEnv = "TRACKDL_TOKEN"

// Settings holds all configuration options.
type Settings struct {
	// Service settings
	ServiceURL string `json:"service_url" yaml:"service_url"`
	Token      string `json:"token,omitempty" yaml:"token,omitempty"`

	// Download settings
	Destination           string   `json:"destination" yaml:"destination"`
	Parallel              int      `json:"parallel" yaml:"parallel"`
	Format                string   `json:"format" yaml:"format"` // mp3, flac
	InactivityTimeout     Duration `json:"inactivity_timeout" yaml:"inactivity_timeout"`
	DownloadMaxRetries    int      `json:"download_max_retries" yaml:"download_max_retries"`
	DownloadRetryCooldown float64  `json:"download_retry_cooldown" yaml:"download_retry_cooldown"`
	DownloadRetryExponent float64  `json:"download_retry_exponent" yaml:"download_retry_exponent"`

	// File naming
	ASCIIOnlyFileNames bool `json:"ascii_only_file_names" yaml:"ascii_only_file_names"`

	// Cover art settings
	SaveCoverArtInTags bool `json:"save_cover_art_in_tags" yaml:"save_cover_art_in_tags"`
	CoverArtMaxSize    int  `json:"cover_art_max_size" yaml:"cover_art_max_size"`

	// Encoder settings
	FFmpegPath string `json:"ffmpeg_path" yaml:"ffmpeg_path"`
	SampleRate int    `json:"sample_rate" yaml:"sample_rate"`
	Channels   int    `json:"channels" yaml:"channels"`

	// Playlist settings
	CreatePlaylist bool   `json:"create_playlist" yaml:"create_playlist"`
	PlaylistFormat string `json:"playlist_format" yaml:"playlist_format"` // m3u, pls, wpl, zpl
	M3UExtended    bool   `json:"m3u_extended" yaml:"m3u_extended"`

	// State files
	HistoryPath string `json:"history_path" yaml:"history_path"`
	LogPath     string `json:"log_path" yaml:"log_path"`
}

// DotDir returns the directory holding settings, history and logs.
func DotDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".trackdl"
	}
	return filepath.Join(homeDir, ".trackdl")
}

// DefaultPath returns the default settings file location.
func DefaultPath() string {
	return filepath.Join(DotDir(), "settings.json")
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	dotDir := DotDir()
	return &Settings{
		ServiceURL: "https://api.trackdl.local",

		Destination:           ".",
		Parallel:              1,
		Format:                "mp3",
		InactivityTimeout:     Duration(30 * time.Second),
		DownloadMaxRetries:    7,
		DownloadRetryCooldown: 0.2,
		DownloadRetryExponent: 4.0,

		ASCIIOnlyFileNames: runtime.GOOS == "windows",

		SaveCoverArtInTags: true,
		CoverArtMaxSize:    1000,

		FFmpegPath: "ffmpeg",
		SampleRate: 44100,
		Channels:   2,

		CreatePlaylist: false,
		PlaylistFormat: "m3u",
		M3UExtended:    true,

		HistoryPath: filepath.Join(dotDir, "history.json"),
		LogPath:     filepath.Join(dotDir, "trackdl.log"),
	}
}

// Load reads settings from a JSON or YAML file, chosen by extension.
// A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			settings.applyEnv()
			return settings, nil
		}
		return nil, err
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, settings)
	} else {
		err = json.Unmarshal(data, settings)
	}
	if err != nil {
		return nil, err
	}

	settings.applyEnv()
	return settings, nil
}

// Save writes settings to a JSON or YAML file, chosen by extension.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// AudioFormat parses Format.
func (s *Settings) AudioFormat() (model.Format, error) {
	return model.ParseFormat(s.Format)
}

// Playlist returns the configured playlist file format.
func (s *Settings) Playlist() model.PlaylistFormat {
	switch strings.ToLower(s.PlaylistFormat) {
	case "pls":
		return model.PlaylistFormatPLS
	case "wpl":
		return model.PlaylistFormatWPL
	case "zpl":
		return model.PlaylistFormatZPL
	default:
		return model.PlaylistFormatM3U
	}
}

// RetryCooldown returns the wait before the given retry attempt (1-based):
// DownloadRetryCooldown seconds times DownloadRetryExponent^(attempt-1).
// The wait is capped at half of InactivityTimeout so a retrying stream is
// not abandoned as inactive.
func (s *Settings) RetryCooldown(attempt int) time.Duration {
	wait := s.DownloadRetryCooldown
	for i := 1; i < attempt; i++ {
		wait *= s.DownloadRetryExponent
	}
	d := time.Duration(wait * float64(time.Second))

	if limit := s.InactivityTimeout.Std() / 2; limit > 0 && d > limit {
		return limit
	}
	return d
}

func (s *Settings) applyEnv() {
	if token := os.Getenv(TokenEnv); token != "" {
		s.Token = token
	}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
