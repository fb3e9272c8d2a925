package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "assemblysync.db", c.DatabasePath)
	assert.Empty(t, c.BackendURL)
	assert.Empty(t, c.BackendAPIKey)
	assert.Equal(t, 3*time.Second, c.AutoSaveWindow)
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		expected    Config
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd", "-d", "/tmp/x.db", "-u", "https://example.supabase.co", "-k", "key", "-w", "10"},
			expected: Config{
				DatabasePath:   "/tmp/x.db",
				BackendURL:     "https://example.supabase.co",
				BackendAPIKey:  "key",
				AutoSaveWindow: 10 * time.Second,
			},
		},
		{
			name:        "bad window value",
			args:        []string{"cmd", "-w", "abc"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)
			os.Args = tt.args

			cfg := &Config{}
			cfg.LoadDefaults()

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(cfg) })
				return
			}
			require.NotPanics(t, func() { parseFlags(cfg) })
			assert.Equal(t, tt.expected, *cfg)
		})
	}
}

func TestParseJson(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(
		`{"database_path":"/data/sync.db","backend_url":"https://abc.supabase.co","auto_save_window":"5s"}`,
	), 0o600))

	os.Args = []string{"cmd", "-c", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, "/data/sync.db", cfg.DatabasePath)
	assert.Equal(t, "https://abc.supabase.co", cfg.BackendURL)
	// Not in the file: default survives.
	assert.Empty(t, cfg.BackendAPIKey)
	assert.Equal(t, 5*time.Second, cfg.AutoSaveWindow)
}

func TestParseJson_NoFlagIsNoop(t *testing.T) {
	os.Args = []string{"cmd"}

	cfg := &Config{}
	cfg.LoadDefaults()
	before := *cfg
	parseJson(cfg)
	assert.Equal(t, before, *cfg)
}
