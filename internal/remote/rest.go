package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/assemblysync/internal/common"
	"github.com/dmitrijs2005/assemblysync/internal/logging"
	"github.com/dmitrijs2005/assemblysync/internal/models"
)

// RestStore talks to the hosted backend's PostgREST API. The API key is an
// opaque bearer credential; access control rests on possession of the key
// plus the encryption password, not on the backend's own authorization
// model.
type RestStore struct {
	baseURL  string
	apiKey   string
	password string
	client   *http.Client
	log      logging.Logger
}

// NewRestStore builds a client for the given backend URL (normalized before
// use) and API key. An empty password disables the encryption envelope.
func NewRestStore(rawURL, apiKey, password string, log logging.Logger) *RestStore {
	if log == nil {
		log = logging.Discard()
	}
	return &RestStore{
		baseURL:  NormalizeURL(rawURL),
		apiKey:   apiKey,
		password: password,
		// Per-op deadlines come from the request context.
		client: &http.Client{},
		log:    log,
	}
}

// BaseURL returns the normalized backend URL the store talks to.
func (s *RestStore) BaseURL() string { return s.baseURL }

func (s *RestStore) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, WriteTimeout)
	defer cancel()

	_, err := s.do(ctx, http.MethodGet, "select=id&limit=1", nil, "")
	return err
}

func (s *RestStore) SaveEvent(ctx context.Context, eventID string, doc *models.EventDocument) error {
	ctx, cancel := context.WithTimeout(ctx, WriteTimeout)
	defer cancel()

	data, err := marshalDoc(doc, s.password)
	if err != nil {
		return err
	}

	row := map[string]any{
		"id":         eventID,
		"updated_at": time.Now().UTC().Format(time.RFC3339Nano),
		"data":       data,
	}
	body, err := json.Marshal([]any{row})
	if err != nil {
		return err
	}

	// Full-replace upsert with the id column as conflict target.
	_, err = s.do(ctx, http.MethodPost, "on_conflict=id", bytes.NewReader(body), "resolution=merge-duplicates")
	if err != nil {
		return err
	}
	s.log.Debug(ctx, "event saved", "event_id", eventID, "encrypted", s.password != "")
	return nil
}

func (s *RestStore) LoadEvent(ctx context.Context, eventID string) (*LoadResult, error) {
	ctx, cancel := context.WithTimeout(ctx, ReadTimeout)
	defer cancel()

	query := "select=data,updated_at&id=eq." + url.QueryEscape(eventID)
	resp, err := s.do(ctx, http.MethodGet, query, nil, "")
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Data      json.RawMessage `json:"data"`
		UpdatedAt time.Time       `json:"updated_at"`
	}
	if err := json.Unmarshal(resp, &rows); err != nil {
		return nil, fmt.Errorf("%w: undecodable response", common.ErrUnknown)
	}
	if len(rows) == 0 {
		// No such row: not an error.
		return nil, nil
	}

	doc, err := unmarshalDoc(rows[0].Data, s.password)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	return &LoadResult{Doc: doc, UpdatedAt: rows[0].UpdatedAt}, nil
}

func (s *RestStore) ListAllEvents(ctx context.Context) ([]EventInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, WriteTimeout)
	defer cancel()

	resp, err := s.do(ctx, http.MethodGet, "select=id,updated_at&order=updated_at.desc", nil, "")
	if err != nil {
		return nil, err
	}

	var rows []EventInfo
	if err := json.Unmarshal(resp, &rows); err != nil {
		return nil, fmt.Errorf("%w: undecodable response", common.ErrUnknown)
	}
	return rows, nil
}

func (s *RestStore) Close() {
	s.client.CloseIdleConnections()
}

// do issues one request against the event table and classifies failures.
func (s *RestStore) do(ctx context.Context, method, query string, body io.Reader, prefer string) ([]byte, error) {
	endpoint := s.baseURL + "/rest/v1/" + common.EventTableName
	if query != "" {
		endpoint += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnknown, err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, common.ErrTimeout
		}
		// Transport-level failure: bad URL, DNS, refused connection or a
		// paused backend project.
		return nil, fmt.Errorf("%w: %v", common.ErrNetwork, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrNetwork, err)
	}

	if resp.StatusCode >= 400 {
		return nil, classifyHTTPError(resp.StatusCode, respBody)
	}
	return respBody, nil
}

// classifyHTTPError maps a PostgREST error response onto the closed
// sentinel set. PostgREST surfaces Postgres SQLSTATE codes in its JSON
// error body.
func classifyHTTPError(status int, body []byte) error {
	var pgErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &pgErr)

	switch {
	case pgErr.Code == "42P01":
		return fmt.Errorf("%w: run the provisioning script to create the %s table",
			common.ErrNotProvisioned, common.EventTableName)
	case pgErr.Code == "42501",
		strings.Contains(strings.ToLower(pgErr.Message), "permission denied"),
		strings.Contains(strings.ToLower(pgErr.Message), "row-level security"),
		status == http.StatusUnauthorized, status == http.StatusForbidden:
		return fmt.Errorf("%w: check the table's access policy and API key", common.ErrPermissionDenied)
	case pgErr.Message != "":
		return fmt.Errorf("%w: %s", common.ErrUnknown, pgErr.Message)
	default:
		return fmt.Errorf("%w: HTTP %d", common.ErrUnknown, status)
	}
}
