// Package cli is the interactive diagnostic shell over the sync engine:
// connecting a backend, opening events, inspecting the local cache and
// driving manual pushes and pulls.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/dmitrijs2005/assemblysync/internal/config"
	"github.com/dmitrijs2005/assemblysync/internal/localstore"
	"github.com/dmitrijs2005/assemblysync/internal/logging"
	"github.com/dmitrijs2005/assemblysync/internal/remote"
	"github.com/dmitrijs2005/assemblysync/internal/syncer"

	_ "modernc.org/sqlite"
)

// App wires the local store, remote manager and syncer behind the REPL.
type App struct {
	config *config.Config
	db     *sql.DB
	kv     *localstore.Store
	remote *remote.Manager
	syncer *syncer.Syncer
	log    logging.Logger
	reader *bufio.Reader
}

// NewApp opens the local database, restores a persisted backend connection
// if one exists, and builds the sync engine.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	if log == nil {
		log = logging.Discard()
	}

	db, err := localstore.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening local database: %w", err)
	}

	kv := localstore.New(db, log)
	rm := remote.NewManager(kv, log)

	if !rm.Init(ctx) && cfg.BackendURL != "" && cfg.BackendAPIKey != "" {
		if err := rm.Configure(ctx, cfg.BackendURL, cfg.BackendAPIKey, ""); err != nil {
			log.Warn(ctx, "preconfigured backend unavailable", "error", err)
		}
	}

	sn := syncer.New(kv, rm, log)
	sn.SetAutoSaveWindow(cfg.AutoSaveWindow)
	sn.OnStatusChange(func(s syncer.Status) {
		printlnFn(fmt.Sprintf("[sync: %s]", s))
	})

	return &App{
		config: cfg,
		db:     db,
		kv:     kv,
		remote: rm,
		syncer: sn,
		log:    log,
		reader: bufio.NewReader(os.Stdin),
	}, nil
}

// Run starts the REPL and blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	printlnFn("assemblysync shell (type 'help' for commands)")
	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
	a.Close()
}

// Close cancels pending background work and releases the database.
func (a *App) Close() {
	a.syncer.CancelAutoSave()
	if a.db != nil {
		_ = a.db.Close()
	}
}

// status renders the prompt suffix: the open event, if any, plus the
// connection and sync state.
func (a *App) status() string {
	s := ""
	if sess := a.syncer.Session(); sess != nil {
		s = sess.EventID
	}
	if a.remote.Configured() {
		s += " online"
	} else {
		s += " offline"
	}
	if st := a.syncer.Status(); st != syncer.StatusIdle {
		s += " " + string(st)
	}
	return "(" + s + ")"
}

func (a *App) hasOpenEvent() bool {
	return a.syncer.Session() != nil
}

// Status prints the connection and sync state.
func (a *App) Status(ctx context.Context) error {
	if a.remote.Configured() {
		creds := a.remote.Credentials()
		printlnFn("Backend:   " + creds.URL)
		if creds.Password != "" {
			printlnFn("Documents: encrypted")
		} else {
			printlnFn("Documents: plaintext")
		}
	} else {
		printlnFn("Backend:   not configured")
	}
	if sess := a.syncer.Session(); sess != nil {
		printlnFn(fmt.Sprintf("Event:     %s (%s, %s)", sess.EventID, sess.EventType, sess.Role))
	}
	printlnFn("Sync:      " + string(a.syncer.Status()))
	return nil
}
