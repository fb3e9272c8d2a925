package remote

import (
	"context"
	"strings"
	"sync"

	"github.com/dmitrijs2005/assemblysync/internal/common"
	"github.com/dmitrijs2005/assemblysync/internal/localstore"
	"github.com/dmitrijs2005/assemblysync/internal/logging"
	"github.com/dmitrijs2005/assemblysync/internal/models"
)

// Credentials is the connection triple a remote store needs. It is also the
// payload of an invite token, so one admin can hand a configured connection
// to another device.
type Credentials struct {
	URL      string
	APIKey   string
	Password string
}

// Manager owns the active remote store connection: it builds the store from
// credentials, persists them through the local store so a reconnect
// survives restarts, and serializes reconfiguration against in-flight
// operations.
type Manager struct {
	mu    sync.Mutex
	store Store
	creds Credentials
	kv    *localstore.Store
	log   logging.Logger

	// newStore builds a Store from credentials. A test seam: replaced with
	// a fake in tests.
	newStore func(ctx context.Context, creds Credentials) (Store, error)
}

// NewManager returns a Manager persisting credentials through kv. The
// default store factory picks the backend from the URL shape: a postgres
// DSN connects directly with pgx, anything else goes through the REST
// surface.
func NewManager(kv *localstore.Store, log logging.Logger) *Manager {
	if log == nil {
		log = logging.Discard()
	}
	return &Manager{
		kv:  kv,
		log: log,
		newStore: func(ctx context.Context, creds Credentials) (Store, error) {
			if strings.HasPrefix(creds.URL, "postgres://") || strings.HasPrefix(creds.URL, "postgresql://") {
				return NewPostgresStore(ctx, creds.URL, creds.Password, log)
			}
			return NewRestStore(creds.URL, creds.APIKey, creds.Password, log), nil
		},
	}
}

// Configure normalizes the URL, builds a fresh store and persists the
// credentials. An empty password is an explicit "store plaintext" choice.
// On failure the previous connection stays closed and nothing is persisted.
func (m *Manager) Configure(ctx context.Context, url, apiKey, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store != nil {
		m.store.Close()
		m.store = nil
	}

	creds := Credentials{URL: NormalizeURL(url), APIKey: apiKey, Password: password}
	store, err := m.newStore(ctx, creds)
	if err != nil {
		m.log.Error(ctx, "remote store setup failed", "url", creds.URL, "error", err)
		return err
	}
	m.creds = creds
	m.store = store

	m.kv.SetItem(ctx, common.KeyBackendURL, m.creds.URL)
	m.kv.SetItem(ctx, common.KeyBackendKey, m.creds.APIKey)
	m.kv.SetItem(ctx, common.KeyCloudPass, m.creds.Password)

	m.log.Info(ctx, "remote store configured", "url", m.creds.URL, "encrypted", password != "")
	return nil
}

// Init restores a previously persisted connection. Returns true when a
// connection was restored.
func (m *Manager) Init(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	url := localstore.GetItem(ctx, m.kv, common.KeyBackendURL, "")
	key := localstore.GetItem(ctx, m.kv, common.KeyBackendKey, "")
	if url == "" || key == "" {
		return false
	}
	pass := localstore.GetItem(ctx, m.kv, common.KeyCloudPass, "")

	creds := Credentials{URL: NormalizeURL(url), APIKey: key, Password: pass}
	store, err := m.newStore(ctx, creds)
	if err != nil {
		m.log.Error(ctx, "remote store restore failed", "url", creds.URL, "error", err)
		return false
	}
	m.creds = creds
	m.store = store
	m.log.Info(ctx, "remote store restored", "url", m.creds.URL)
	return true
}

// Disconnect drops the in-memory handle and the persisted credentials.
func (m *Manager) Disconnect(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store != nil {
		m.store.Close()
		m.store = nil
	}
	m.creds = Credentials{}
	m.kv.RemoveItem(ctx, common.KeyBackendURL)
	m.kv.RemoveItem(ctx, common.KeyBackendKey)
	m.kv.RemoveItem(ctx, common.KeyCloudPass)
	m.log.Info(ctx, "remote store disconnected")
}

// Configured reports whether a remote store connection is active.
func (m *Manager) Configured() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store != nil
}

// Credentials returns the active connection triple.
func (m *Manager) Credentials() Credentials {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds
}

// TestConnection validates reachability and permissions of the active store.
func (m *Manager) TestConnection(ctx context.Context) error {
	store, err := m.active()
	if err != nil {
		return err
	}
	return store.TestConnection(ctx)
}

// SaveEvent pushes the full document for eventID.
func (m *Manager) SaveEvent(ctx context.Context, eventID string, doc *models.EventDocument) error {
	store, err := m.active()
	if err != nil {
		return err
	}
	return store.SaveEvent(ctx, eventID, doc)
}

// LoadEvent fetches the document for eventID; (nil, nil) when absent.
func (m *Manager) LoadEvent(ctx context.Context, eventID string) (*LoadResult, error) {
	store, err := m.active()
	if err != nil {
		return nil, err
	}
	return store.LoadEvent(ctx, eventID)
}

// ListAllEvents enumerates every remote event, newest first.
func (m *Manager) ListAllEvents(ctx context.Context) ([]EventInfo, error) {
	store, err := m.active()
	if err != nil {
		return nil, err
	}
	return store.ListAllEvents(ctx)
}

// active snapshots the store handle under the lock. The operation itself
// runs outside the lock: reconfiguration is authoritative, and an operation
// already in flight simply finishes against the old handle.
func (m *Manager) active() (Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store == nil {
		return nil, common.ErrNotConfigured
	}
	return m.store, nil
}

// SetStoreFactory replaces the store constructor. Intended for tests.
func (m *Manager) SetStoreFactory(f func(ctx context.Context, creds Credentials) (Store, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.newStore = f
}
