// Package config loads runtime configuration for the assemblysync CLI.
//
// Precedence, lowest to highest: built-in defaults, an optional JSON file
// selected with -c or -config, then command-line flags. The backend URL and
// API key here are only the initial values; "connect" inside the CLI
// persists whatever the user enters through the local store.
package config

import "time"

// Config holds the runtime settings of the CLI.
type Config struct {
	// DatabasePath is the SQLite file backing the local store.
	DatabasePath string
	// BackendURL and BackendAPIKey preconfigure the remote store. Both may
	// be empty, in which case the CLI starts offline.
	BackendURL    string
	BackendAPIKey string
	// AutoSaveWindow is the quiet period after the last edit before a
	// background push fires.
	AutoSaveWindow time.Duration
}

// LoadDefaults populates c with the built-in defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "assemblysync.db"
	c.BackendURL = ""
	c.BackendAPIKey = ""
	c.AutoSaveWindow = 3 * time.Second
}

// LoadConfig builds the effective Config: defaults first, then the JSON
// file (if any), then flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
