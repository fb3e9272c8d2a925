package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/assemblysync/internal/common"
	"github.com/dmitrijs2005/assemblysync/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend mimics the PostgREST surface of the event table: upsert via
// POST, filtered select via the id=eq. query parameter.
type fakeBackend struct {
	rows map[string]json.RawMessage
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{rows: map[string]json.RawMessage{}}
}

func (f *fakeBackend) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/rest/v1/event_document") {
			http.NotFound(w, r)
			return
		}

		switch r.Method {
		case http.MethodPost:
			var batch []struct {
				ID        string          `json:"id"`
				UpdatedAt string          `json:"updated_at"`
				Data      json.RawMessage `json:"data"`
			}
			if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			for _, row := range batch {
				f.rows[row.ID] = row.Data
			}
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte("[]"))

		case http.MethodGet:
			q := r.URL.Query()
			if idFilter := q.Get("id"); idFilter != "" {
				id := strings.TrimPrefix(idFilter, "eq.")
				id, _ = url.QueryUnescape(id)
				data, ok := f.rows[id]
				w.Header().Set("Content-Type", "application/json")
				if !ok {
					_, _ = w.Write([]byte("[]"))
					return
				}
				resp := []map[string]any{{
					"data":       data,
					"updated_at": time.Now().UTC().Format(time.RFC3339Nano),
				}}
				_ = json.NewEncoder(w).Encode(resp)
				return
			}

			// Unfiltered select (testConnection / list).
			var out []map[string]any
			for id := range f.rows {
				out = append(out, map[string]any{
					"id":         id,
					"updated_at": time.Now().UTC().Format(time.RFC3339Nano),
				})
			}
			if out == nil {
				out = []map[string]any{}
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(out)
		}
	}
}

func newTestStore(t *testing.T, backend http.HandlerFunc, password string) *RestStore {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)
	return NewRestStore(srv.URL, "test-api-key", password, nil)
}

func TestRestStore_TestConnection_OK(t *testing.T) {
	s := newTestStore(t, newFakeBackend().handler(), "")
	require.NoError(t, s.TestConnection(context.Background()))
}

func TestRestStore_TestConnection_MissingTable(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"42P01","message":"relation \"public.event_document\" does not exist"}`))
	}, "")

	err := s.TestConnection(context.Background())
	assert.ErrorIs(t, err, common.ErrNotProvisioned)
	assert.Contains(t, err.Error(), "event_document")
}

func TestRestStore_TestConnection_PermissionDenied(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"sqlstate", http.StatusForbidden, `{"code":"42501","message":"permission denied for table event_document"}`},
		{"message substring", http.StatusBadRequest, `{"message":"new row violates row-level security policy"}`},
		{"unauthorized status", http.StatusUnauthorized, `{}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}, "")
			assert.ErrorIs(t, s.TestConnection(context.Background()), common.ErrPermissionDenied)
		})
	}
}

func TestRestStore_TestConnection_Network(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from now on
	s := NewRestStore(srv.URL, "key", "", nil)

	assert.ErrorIs(t, s.TestConnection(context.Background()), common.ErrNetwork)
}

func TestRestStore_SaveLoad_Plaintext(t *testing.T) {
	backend := newFakeBackend()
	s := newTestStore(t, backend.handler(), "")
	ctx := context.Background()

	doc := &models.EventDocument{
		Type:  models.EventTypeAssemblyBR,
		Notes: map[string]string{"am-opening": "check the sound desk"},
		Org:   models.DefaultOrgStructure(models.EventTypeAssemblyBR),
	}
	require.NoError(t, s.SaveEvent(ctx, "GO-003 A", doc))

	// Stored plaintext: no encryption wrapper on the wire.
	assert.NotContains(t, string(backend.rows["GO-003 A"]), "_encrypted")

	res, err := s.LoadEvent(ctx, "GO-003 A")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, doc.Notes, res.Doc.Notes)
	assert.Equal(t, models.EventTypeAssemblyBR, res.Doc.Type)
}

func TestRestStore_SaveLoad_Encrypted(t *testing.T) {
	backend := newFakeBackend()
	s := newTestStore(t, backend.handler(), "secret")
	ctx := context.Background()

	doc := &models.EventDocument{
		Type: models.EventTypeConvention,
		Org:  &models.OrgStructure{Committee: models.Committee{Congregation: "Riverside"}},
	}
	require.NoError(t, s.SaveEvent(ctx, "CO-2026", doc))

	// The wire payload is the tagged wrapper, not the document.
	raw := string(backend.rows["CO-2026"])
	assert.Contains(t, raw, `"_encrypted":true`)
	assert.NotContains(t, raw, "Riverside")

	res, err := s.LoadEvent(ctx, "CO-2026")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "Riverside", res.Doc.Org.Committee.Congregation)
}

func TestRestStore_Load_WrongPassword(t *testing.T) {
	backend := newFakeBackend()
	writer := newTestStore(t, backend.handler(), "secret")
	ctx := context.Background()

	require.NoError(t, writer.SaveEvent(ctx, "CO-2026", &models.EventDocument{Type: models.EventTypeConvention}))

	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	reader := NewRestStore(srv.URL, "key", "wrong", nil)
	_, err := reader.LoadEvent(ctx, "CO-2026")
	assert.ErrorIs(t, err, common.ErrWrongPassword)

	noPass := NewRestStore(srv.URL, "key", "", nil)
	_, err = noPass.LoadEvent(ctx, "CO-2026")
	assert.ErrorIs(t, err, common.ErrPasswordRequired)
}

func TestRestStore_Load_Absent(t *testing.T) {
	s := newTestStore(t, newFakeBackend().handler(), "")

	res, err := s.LoadEvent(context.Background(), "no-such-event")
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestRestStore_ListAllEvents(t *testing.T) {
	backend := newFakeBackend()
	s := newTestStore(t, backend.handler(), "")
	ctx := context.Background()

	require.NoError(t, s.SaveEvent(ctx, "A", &models.EventDocument{}))
	require.NoError(t, s.SaveEvent(ctx, "B", &models.EventDocument{}))

	events, err := s.ListAllEvents(ctx)
	require.NoError(t, err)
	ids := map[string]bool{}
	for _, e := range events {
		ids[e.ID] = true
	}
	assert.Equal(t, map[string]bool{"A": true, "B": true}, ids)
}

func TestRestStore_RequestHeaders(t *testing.T) {
	var gotAPIKey, gotAuth string
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("[]"))
	}, "")

	require.NoError(t, s.TestConnection(context.Background()))
	assert.Equal(t, "test-api-key", gotAPIKey)
	assert.Equal(t, "Bearer test-api-key", gotAuth)
}
