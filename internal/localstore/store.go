// Package localstore provides durable, synchronous, namespaced storage of
// JSON-serializable values with light obfuscation. It is the foundation the
// other components assume is always available: no operation ever returns an
// error to the caller — every failure degrades to the caller-supplied
// default.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/dmitrijs2005/assemblysync/internal/common"
	"github.com/dmitrijs2005/assemblysync/internal/dbx"
	"github.com/dmitrijs2005/assemblysync/internal/localstore/migrations"
	"github.com/dmitrijs2005/assemblysync/internal/logging"
	"github.com/pressly/goose/v3"
)

// storagePrefix namespaces every key this application writes, so the store
// can share a database with other tooling and still recognize its own rows.
const storagePrefix = "asmb_"

// Store is an obfuscated key-value store over a DBTX (either *sql.DB or
// *sql.Tx), typically backed by a local SQLite database.
type Store struct {
	db  dbx.DBTX
	log logging.Logger
}

// New returns a Store bound to the given DBTX.
func New(db dbx.DBTX, log logging.Logger) *Store {
	if log == nil {
		log = logging.Discard()
	}
	return &Store{db: db, log: log}
}

// Open opens (creating if needed) the SQLite database at dsn and applies
// the embedded schema migrations.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// SetItem serializes value to JSON, obfuscates it and writes it under the
// prefixed key, overwriting any previous value. Failures are logged and
// swallowed: the caller must tolerate a later GetItem returning the default.
func (s *Store) SetItem(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.log.Error(ctx, "localstore: serialization failed", "key", key, "error", err)
		return
	}
	query := `INSERT INTO kv_items (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := s.db.ExecContext(ctx, query, storagePrefix+key, encodeValue(string(data))); err != nil {
		s.log.Error(ctx, "localstore: write failed", "key", key, "error", err)
	}
}

// GetItem reads the value stored under key into a fresh T. If the key is
// absent, or the stored value cannot be decoded, def is returned unchanged.
// No copy is made of def: callers must not mutate a returned default and
// expect persistence.
//
// Values written before obfuscation existed (or by another tool) are
// recovered by a raw-JSON-parse fallback.
func GetItem[T any](ctx context.Context, s *Store, key string, def T) T {
	raw, ok := s.getRaw(ctx, key)
	if !ok {
		return def
	}

	decoded, err := decodeValue(raw)
	if err != nil {
		// Legacy value stored as plain JSON.
		decoded = raw
	}

	var v T
	if err := json.Unmarshal([]byte(decoded), &v); err != nil {
		s.log.Warn(ctx, "localstore: unreadable value, using default", "key", key, "error", err)
		return def
	}
	return v
}

// HasItem reports whether any value is stored under key.
func (s *Store) HasItem(ctx context.Context, key string) bool {
	_, ok := s.getRaw(ctx, key)
	return ok
}

// RemoveItem deletes the value stored under key, if any.
func (s *Store) RemoveItem(ctx context.Context, key string) {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_items WHERE key = ?`, storagePrefix+key); err != nil {
		s.log.Error(ctx, "localstore: delete failed", "key", key, "error", err)
	}
}

// Clear wipes all storage unconditionally. Used only for full resets.
func (s *Store) Clear(ctx context.Context) {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_items`); err != nil {
		s.log.Error(ctx, "localstore: clear failed", "error", err)
	}
}

// RemoveEventData deletes every value belonging to one event: both
// structure variants, notes, attendance, all type-suffixed programs and the
// remembered event type. Unlike the single-key operations this reports
// failures, so callers can run it inside dbx.WithTx and keep the wipe
// all-or-nothing.
func (s *Store) RemoveEventData(ctx context.Context, eventID string) error {
	exact := []string{
		eventID + common.SuffixConventionStructure,
		eventID + common.SuffixStructure,
		eventID + common.SuffixNotes,
		eventID + common.SuffixAttendance,
		eventID + common.SuffixLastEventType,
	}
	for _, key := range exact {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_items WHERE key = ?`, storagePrefix+key); err != nil {
			return err
		}
	}
	// Underscores in the prefix must not act as LIKE wildcards here: an
	// overmatch would delete another event's rows.
	prefix := escapeLike(storagePrefix + eventID + common.SuffixProgram)
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv_items WHERE key LIKE ? ESCAPE '\'`, prefix+"%")
	return err
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// ListLocalEvents scans all stored keys for structure entries and recovers
// the set of event identifiers they belong to. Best-effort recovery, not an
// index: keys it does not understand are ignored, and known sentinel or
// template-artifact identifiers are filtered out. The result is
// deduplicated and sorted.
func (s *Store) ListLocalEvents(ctx context.Context) []string {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM kv_items WHERE key LIKE ?`, storagePrefix+"%")
	if err != nil {
		s.log.Error(ctx, "localstore: key scan failed", "error", err)
		return nil
	}
	defer rows.Close()

	seen := map[string]struct{}{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			s.log.Error(ctx, "localstore: key scan failed", "error", err)
			return nil
		}
		key = strings.TrimPrefix(key, storagePrefix)

		var id string
		switch {
		case strings.HasSuffix(key, common.SuffixConventionStructure):
			id = strings.TrimSuffix(key, common.SuffixConventionStructure)
		case strings.HasSuffix(key, common.SuffixStructure):
			id = strings.TrimSuffix(key, common.SuffixStructure)
		default:
			continue
		}
		if isSentinelID(id) {
			continue
		}
		seen[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		s.log.Error(ctx, "localstore: key scan failed", "error", err)
		return nil
	}

	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// isSentinelID filters identifiers that are known placeholders rather than
// real events: empty strings, template prefixes, un-rendered template
// fragments and the literal "undefined" a buggy UI once persisted.
func isSentinelID(id string) bool {
	if id == "" {
		return true
	}
	if strings.EqualFold(id, "undefined") {
		return true
	}
	if strings.HasPrefix(id, "TEMPLATE") || strings.HasPrefix(id, "template") {
		return true
	}
	if strings.ContainsAny(id, "{$") {
		return true
	}
	return false
}

func (s *Store) getRaw(ctx context.Context, key string) (string, bool) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_items WHERE key = ?`, storagePrefix+key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	if err != nil {
		s.log.Error(ctx, "localstore: read failed", "key", key, "error", err)
		return "", false
	}
	return raw, true
}
