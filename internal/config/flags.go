package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/assemblysync/internal/flagx"
)

// parseFlags overlays cfg with command-line flags:
//
//	-d string   path to the local SQLite database
//	-u string   backend base URL
//	-k string   backend API key
//	-w int      auto-save quiet window (seconds)
//
// Only the flags listed here are parsed; os.Args is filtered first so flags
// owned by other packages pass through untouched.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-u", "-k", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local database file")
	fs.StringVar(&cfg.BackendURL, "u", cfg.BackendURL, "backend base URL")
	fs.StringVar(&cfg.BackendAPIKey, "k", cfg.BackendAPIKey, "backend API key")
	window := fs.Int("w", int(cfg.AutoSaveWindow.Seconds()), "auto-save quiet window (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.AutoSaveWindow = time.Duration(*window) * time.Second
}
