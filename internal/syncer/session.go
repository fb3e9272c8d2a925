package syncer

import (
	"github.com/dmitrijs2005/assemblysync/internal/models"
	"github.com/google/uuid"
)

// Role is the capability level of the active session.
type Role string

const (
	// RoleAdmin edits and syncs a concrete event.
	RoleAdmin Role = "admin"
	// RolePublic is an unauthenticated direct-link viewer.
	RolePublic Role = "public"
	// RoleTemplate edits assignment templates; never touches notes or
	// attendance of a real event.
	RoleTemplate Role = "template"
)

// Session is the active editing session for one event. The record is
// persisted locally so a reload resumes where the user left off.
type Session struct {
	ID             string                `json:"id"`
	EventID        string                `json:"eventId"`
	Role           Role                  `json:"role"`
	EventType      models.EventType      `json:"eventType,omitempty"`
	ManagementType models.ManagementType `json:"managementType,omitempty"`

	// LoadCompleted gates auto-save: mutations before the initial load
	// finished must never trigger a push of half-assembled state.
	LoadCompleted bool `json:"-"`

	// NeedsTypeSelection flags a legacy record missing its ManagementType.
	// Reconciliation must not proceed on a flagged session: the user is
	// asked for the missing classification, never guessed at.
	NeedsTypeSelection bool `json:"-"`
}

func newSession(eventID string, role Role, eventType models.EventType) *Session {
	s := &Session{
		ID:      uuid.NewString(),
		EventID: eventID,
		Role:    role,
	}
	if eventType != "" {
		s.EventType = eventType
		s.ManagementType = eventType.Variant()
	}
	return s
}

// repairFromRecord carries persisted fields into a fresh session and flags
// the legacy-record case.
func (s *Session) repairFromRecord(rec Session) {
	if s.EventType == "" && rec.EventType != "" {
		s.EventType = rec.EventType
		s.ManagementType = rec.EventType.Variant()
	}
	if s.ManagementType == "" {
		s.ManagementType = rec.ManagementType
	}
	if s.ManagementType == "" {
		// Older schema: the record predates the managementType field.
		s.NeedsTypeSelection = true
	}
}
