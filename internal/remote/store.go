// Package remote provides clients for the hosted document store: a single
// logical table holding one row per event (id, updated_at, data).
//
// Two implementations exist: RestStore speaks the PostgREST HTTP API of a
// hosted backend, PostgresStore connects directly with pgx for self-hosted
// deployments. Both convert raw transport/DB errors into the small closed
// set of sentinels in the common package (ErrNotProvisioned,
// ErrPermissionDenied, ErrNetwork, ErrTimeout, ErrWrongPassword,
// ErrPasswordRequired, ErrUnknown) so the orchestrator can branch without
// inspecting raw messages.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/assemblysync/internal/common"
	"github.com/dmitrijs2005/assemblysync/internal/cryptox"
	"github.com/dmitrijs2005/assemblysync/internal/models"
)

// Per-operation hard timeouts. After expiry the operation is reported as
// common.ErrTimeout and is never retried automatically; retry is a user
// decision.
const (
	WriteTimeout = 60 * time.Second
	ReadTimeout  = 45 * time.Second
)

// LoadResult is a successfully fetched event document with its remote
// modification timestamp.
type LoadResult struct {
	Doc       *models.EventDocument
	UpdatedAt time.Time
}

// EventInfo identifies one remote event row.
type EventInfo struct {
	ID        string    `json:"id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is the remote document store: CRUD over the event table. A nil
// *LoadResult with a nil error means "no such row" — absence is not an
// error.
type Store interface {
	// TestConnection issues a minimal read purely to validate reachability
	// and permissions.
	TestConnection(ctx context.Context) error

	// SaveEvent upserts the full document for eventID, replacing whatever
	// was there (whole-document last-write-wins, no field merge).
	SaveEvent(ctx context.Context, eventID string, doc *models.EventDocument) error

	// LoadEvent fetches the document for eventID, decrypting if the row is
	// tagged as encrypted.
	LoadEvent(ctx context.Context, eventID string) (*LoadResult, error)

	// ListAllEvents returns every (id, updated_at) pair, newest first. No
	// pagination: acceptable for this domain's document counts.
	ListAllEvents(ctx context.Context) ([]EventInfo, error)

	// Close releases the underlying connection resources.
	Close()
}

// encryptedPayload is the wire wrapper for rows whose data left the device
// encrypted. A row's encryption state is self-tagged: the client decides
// how to interpret data purely from the presence of the _encrypted flag.
type encryptedPayload struct {
	Encrypted bool   `json:"_encrypted"`
	Content   string `json:"content"`
}

// marshalDoc renders the document for the data column. With a password the
// document is sealed by the envelope and wrapped; without one it is stored
// as plain JSON — an explicit "do not encrypt" choice, never a fallback.
func marshalDoc(doc *models.EventDocument, password string) (json.RawMessage, error) {
	if password == "" {
		return json.Marshal(doc)
	}
	bundle, err := cryptox.Encrypt(doc, password)
	if err != nil {
		return nil, fmt.Errorf("encrypting document: %w", err)
	}
	return json.Marshal(encryptedPayload{Encrypted: true, Content: bundle})
}

// unmarshalDoc interprets the data column, unwrapping and decrypting a
// tagged payload. An encrypted row without a configured password yields
// common.ErrPasswordRequired; a failed decrypt yields common.ErrWrongPassword.
func unmarshalDoc(data json.RawMessage, password string) (*models.EventDocument, error) {
	var tag struct {
		Encrypted bool `json:"_encrypted"`
	}
	// data that is not even a JSON object (null, scalar) is treated as an
	// absent document rather than an error.
	if err := json.Unmarshal(data, &tag); err != nil || string(data) == "null" {
		return nil, nil
	}

	if !tag.Encrypted {
		doc := &models.EventDocument{}
		if err := json.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("%w: undecodable document", common.ErrUnknown)
		}
		return doc, nil
	}

	if password == "" {
		return nil, common.ErrPasswordRequired
	}
	var payload encryptedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: undecodable encrypted wrapper", common.ErrUnknown)
	}
	doc := &models.EventDocument{}
	if err := cryptox.Decrypt(payload.Content, password, doc); err != nil {
		return nil, err
	}
	return doc, nil
}
