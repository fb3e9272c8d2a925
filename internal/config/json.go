package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/assemblysync/internal/flagx"
	"github.com/dmitrijs2005/assemblysync/internal/timex"
)

// JsonConfig is the unmarshalling DTO. timex.Duration lets the file spell
// durations either as strings like "3s" or as integer nanoseconds.
type JsonConfig struct {
	DatabasePath   string         `json:"database_path"`
	BackendURL     string         `json:"backend_url"`
	BackendAPIKey  string         `json:"backend_api_key"`
	AutoSaveWindow timex.Duration `json:"auto_save_window"`
}

// parseJson overlays cfg with values from the JSON file named by -c or
// -config. No flag, no file read. Absent or zero fields leave the current
// value in place; an unreadable file panics.
func parseJson(cfg *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.BackendURL != "" {
		cfg.BackendURL = jc.BackendURL
	}
	if jc.BackendAPIKey != "" {
		cfg.BackendAPIKey = jc.BackendAPIKey
	}
	if jc.AutoSaveWindow.Duration != 0 {
		cfg.AutoSaveWindow = jc.AutoSaveWindow.Duration
	}
}
