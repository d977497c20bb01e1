// Package config provides configuration management for trackdl.
//
// This package handles:
//   - Loading and saving settings from JSON or YAML files
//   - Default configuration values
//   - The TRACKDL_TOKEN environment override
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// Serial downloads (parallel 1) into the working directory
//	// MP3 output with cover art embedded in tags
//	// 30s inactivity timeout per stream
//
// # Loading from File
//
//	settings, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// Files ending in .yaml or .yml are read as YAML, anything else as JSON.
// Durations are written as strings ("30s") and may also be given as a
// number of seconds.
package config
