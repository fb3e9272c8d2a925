// Package syncer is the sync orchestrator: it owns the in-memory event
// document, decides when to push and pull against the remote store, heals
// structurally incompatible or missing local data on load, and debounces
// background saves.
//
// Conflict policy is last-write-wins at whole-document granularity: a pull
// overwrites local state for every field the remote payload carries, a push
// overwrites the remote row. There is no merge of concurrent edits from two
// devices — one admin device is the de facto owner at a time, and that
// simplification is deliberate.
package syncer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/assemblysync/internal/common"
	"github.com/dmitrijs2005/assemblysync/internal/localstore"
	"github.com/dmitrijs2005/assemblysync/internal/logging"
	"github.com/dmitrijs2005/assemblysync/internal/models"
	"github.com/dmitrijs2005/assemblysync/internal/remote"
)

// ErrTypeSelectionRequired is returned when a legacy session record lacks
// its management type. The caller must obtain the classification from the
// user and call ResolveTypeSelection before loading proceeds.
var ErrTypeSelectionRequired = errors.New("event type selection required")

// Syncer coordinates the local store, the encryption-aware remote manager
// and the in-memory document for one active session at a time.
type Syncer struct {
	kv     *localstore.Store
	remote *remote.Manager
	log    logging.Logger

	mu      sync.Mutex
	session *Session
	doc     *models.EventDocument

	status   *statusTracker
	autosave *debouncer
}

// New returns a Syncer over the given stores.
func New(kv *localstore.Store, rm *remote.Manager, log logging.Logger) *Syncer {
	if log == nil {
		log = logging.Discard()
	}
	return &Syncer{
		kv:       kv,
		remote:   rm,
		log:      log,
		status:   newStatusTracker(nil),
		autosave: newDebouncer(autoSaveWindow),
	}
}

// OnStatusChange registers a callback for sync status transitions. Must be
// called before the first operation.
func (s *Syncer) OnStatusChange(fn func(Status)) {
	s.status.onChange = fn
}

// SetAutoSaveWindow overrides the default quiet window for debounced
// auto-saves. Must be called before the first mutation.
func (s *Syncer) SetAutoSaveWindow(d time.Duration) {
	if d > 0 {
		s.autosave = newDebouncer(d)
	}
}

// Status returns the current sync display status.
func (s *Syncer) Status() Status { return s.status.Current() }

// Session returns a copy of the active session, or nil.
func (s *Syncer) Session() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	c := *s.session
	return &c
}

// Document returns the current in-memory document. The caller must treat it
// as owned by the syncer and mutate only through the Set* methods.
func (s *Syncer) Document() *models.EventDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// StartSession begins (or resumes) a session for eventID. typeHint is the
// explicit event type from the URL or invite link and takes precedence over
// anything remembered; pass "" when absent. A persisted legacy record
// lacking its management type yields ErrTypeSelectionRequired instead of a
// guess.
func (s *Syncer) StartSession(ctx context.Context, eventID string, role Role, typeHint models.EventType) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.autosave.Cancel()
	s.doc = nil

	sess := newSession(eventID, role, typeHint)

	rec := localstore.GetItem(ctx, s.kv, sessionKey, Session{})
	if rec.EventID == eventID {
		sess.repairFromRecord(rec)
	}

	if sess.ManagementType == "" && !sess.NeedsTypeSelection {
		// No hint and no usable record: fall back to the remembered
		// last-used type for this event, then to the default.
		last := localstore.GetItem(ctx, s.kv, lastTypeKey(eventID), models.EventType(""))
		if last.Valid() {
			sess.EventType = last
			sess.ManagementType = last.Variant()
		} else {
			sess.EventType = models.DefaultEventType
			sess.ManagementType = sess.EventType.Variant()
		}
	}

	s.session = sess
	s.persistSession(ctx)

	if sess.NeedsTypeSelection {
		return s.sessionCopy(), ErrTypeSelectionRequired
	}
	return s.sessionCopy(), nil
}

// ResolveTypeSelection supplies the classification a legacy session record
// was missing and clears the repair flag.
func (s *Syncer) ResolveTypeSelection(ctx context.Context, t models.EventType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return
	}
	s.session.EventType = t
	s.session.ManagementType = t.Variant()
	s.session.NeedsTypeSelection = false
	s.persistSession(ctx)
}

// LoadEvent resolves the authoritative, schema-complete document for the
// active session: local cache first, then the other structural variant,
// then id spelling variants (public sessions), then the remote store, and
// finally the default templates — with the loaded structure reconciled
// against the defaults and written back if repair changed it.
func (s *Syncer) LoadEvent(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session
	if sess == nil {
		return errors.New("no active session")
	}
	if sess.NeedsTypeSelection {
		return ErrTypeSelectionRequired
	}

	// Live edits are never clobbered by a reload.
	if s.doc != nil && !s.doc.Org.IsEmpty() {
		return nil
	}

	eventType := sess.EventType
	variant := sess.ManagementType

	// 1. The variant-specific local cache key.
	org := localstore.GetItem(ctx, s.kv, structureKey(sess.EventID, variant), (*models.OrgStructure)(nil))

	// 2. Probe the other variant's key: the event type may have been
	// mis-recorded previously.
	if org.IsEmpty() {
		other := otherVariant(variant)
		probed := localstore.GetItem(ctx, s.kv, structureKey(sess.EventID, other), (*models.OrgStructure)(nil))
		if !probed.IsEmpty() {
			s.log.Info(ctx, "adopting structure from other variant", "event_id", sess.EventID, "variant", other)
			org = probed
			variant = other
			eventType = flipType(eventType, other)
		}
	}

	// 3. Public direct-link sessions also probe id spelling variants
	// (spaces and hyphens interchanged, surrounding whitespace): real-world
	// ids are entered inconsistently. A hit corrects the remembered id.
	if org.IsEmpty() && sess.Role == RolePublic {
		want := canonicalID(sess.EventID)
		for _, candidate := range s.kv.ListLocalEvents(ctx) {
			if candidate == sess.EventID || canonicalID(candidate) != want {
				continue
			}
			for _, v := range []models.ManagementType{variant, otherVariant(variant)} {
				probed := localstore.GetItem(ctx, s.kv, structureKey(candidate, v), (*models.OrgStructure)(nil))
				if probed.IsEmpty() {
					continue
				}
				s.log.Info(ctx, "adopting structure from id variant",
					"requested", sess.EventID, "found", candidate)
				org = probed
				sess.EventID = candidate
				if v != variant {
					variant = v
					eventType = flipType(eventType, v)
				}
				break
			}
			if !org.IsEmpty() {
				break
			}
		}
	}

	var program *models.AssemblyProgram
	var remoteDoc *models.EventDocument

	// 4. Cloud rescue: nothing local, but a remote store is configured.
	if org.IsEmpty() && s.remote != nil && s.remote.Configured() {
		res, err := s.remote.LoadEvent(ctx, sess.EventID)
		if err != nil {
			s.log.Warn(ctx, "cloud rescue failed", "event_id", sess.EventID, "error", err)
		} else if res != nil {
			remoteDoc = res.Doc
			org = remoteDoc.Org
			program = remoteDoc.Program
			if remoteDoc.Type.Valid() {
				eventType = remoteDoc.Type
				variant = eventType.Variant()
			}
			s.log.Info(ctx, "cloud rescue adopted remote document", "event_id", sess.EventID)
		}
	}

	// 5. Schema merge plus targeted department-array repair.
	merged, changed := reconcileOrg(org, eventType)

	// 6. Persist the repaired structure under the correct key, but only
	// when repair actually changed something.
	if changed || remoteDoc != nil {
		s.kv.SetItem(ctx, structureKey(sess.EventID, variant), merged)
	}

	// 7. Program: user-edited copy under the type-suffixed key, else
	// whatever the rescue produced, else the default template.
	if program.IsEmpty() {
		program = localstore.GetItem(ctx, s.kv, programKey(sess.EventID, string(eventType)), (*models.AssemblyProgram)(nil))
	}
	if program.IsEmpty() {
		program = models.DefaultProgram(eventType)
	}

	doc := &models.EventDocument{
		Org:           merged,
		Program:       program,
		Type:          eventType,
		SchemaVersion: models.CurrentSchemaVersion,
	}

	// 8. Notes and attendance: only real, non-public sessions. Template
	// editing never touches them.
	if sess.Role == RoleAdmin {
		doc.Notes = localstore.GetItem(ctx, s.kv, notesKey(sess.EventID), map[string]string{})
		doc.Attendance = localstore.GetItem(ctx, s.kv, attendanceKey(sess.EventID), map[string]string{})
		if remoteDoc != nil {
			if remoteDoc.Notes != nil {
				doc.Notes = remoteDoc.Notes
				s.kv.SetItem(ctx, notesKey(sess.EventID), doc.Notes)
			}
			if remoteDoc.Attendance != nil {
				doc.Attendance = remoteDoc.Attendance
				s.kv.SetItem(ctx, attendanceKey(sess.EventID), doc.Attendance)
			}
		}
	}

	sess.EventType = eventType
	sess.ManagementType = variant
	sess.LoadCompleted = true
	s.doc = doc

	s.kv.SetItem(ctx, lastTypeKey(sess.EventID), eventType)
	s.persistSession(ctx)
	return nil
}

// SetOrg replaces the org structure and schedules an auto-save.
func (s *Syncer) SetOrg(ctx context.Context, org *models.OrgStructure) {
	s.mutate(ctx, func(doc *models.EventDocument, sess *Session) {
		doc.Org = org
		s.kv.SetItem(ctx, structureKey(sess.EventID, sess.ManagementType), org)
	})
}

// SetNote records a free-text note for a program part.
func (s *Syncer) SetNote(ctx context.Context, partID, text string) {
	s.mutate(ctx, func(doc *models.EventDocument, sess *Session) {
		if doc.Notes == nil {
			doc.Notes = map[string]string{}
		}
		doc.Notes[partID] = text
		s.kv.SetItem(ctx, notesKey(sess.EventID), doc.Notes)
	})
}

// SetAttendance records a headcount for a session.
func (s *Syncer) SetAttendance(ctx context.Context, sessionID, count string) {
	s.mutate(ctx, func(doc *models.EventDocument, sess *Session) {
		if doc.Attendance == nil {
			doc.Attendance = map[string]string{}
		}
		doc.Attendance[sessionID] = count
		s.kv.SetItem(ctx, attendanceKey(sess.EventID), doc.Attendance)
	})
}

// SetProgram replaces the program and schedules an auto-save.
func (s *Syncer) SetProgram(ctx context.Context, program *models.AssemblyProgram) {
	s.mutate(ctx, func(doc *models.EventDocument, sess *Session) {
		doc.Program = program
		s.kv.SetItem(ctx, programKey(sess.EventID, string(doc.Type)), program)
	})
}

// SetType switches the event type. The structure cached for the new
// variant, if any, replaces the in-memory one.
func (s *Syncer) SetType(ctx context.Context, t models.EventType) {
	s.mutate(ctx, func(doc *models.EventDocument, sess *Session) {
		doc.Type = t
		sess.EventType = t
		sess.ManagementType = t.Variant()
		cached := localstore.GetItem(ctx, s.kv, structureKey(sess.EventID, sess.ManagementType), (*models.OrgStructure)(nil))
		doc.Org, _ = reconcileOrg(cached, t)
		s.kv.SetItem(ctx, lastTypeKey(sess.EventID), t)
		s.persistSession(ctx)
	})
}

// mutate applies fn under the lock, then schedules the debounced auto-save
// when the session qualifies: admin role, remote configured, initial load
// completed.
func (s *Syncer) mutate(ctx context.Context, fn func(doc *models.EventDocument, sess *Session)) {
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return
	}
	if s.doc == nil {
		s.doc = &models.EventDocument{Type: s.session.EventType, SchemaVersion: models.CurrentSchemaVersion}
	}
	fn(s.doc, s.session)

	qualifies := s.session.Role == RoleAdmin &&
		s.session.LoadCompleted &&
		s.remote != nil && s.remote.Configured()
	s.mu.Unlock()

	if qualifies {
		s.autosave.Trigger(func() {
			// The document value is captured when the debounce fires, not
			// when the mutation happened.
			if err := s.Push(context.Background()); err != nil {
				s.log.Warn(context.Background(), "auto-save failed", "error", err)
			}
		})
	}
}

// Push uploads the full current document. Explicit pushes and the fired
// auto-save both land here; the status tracker displays the outcome.
func (s *Syncer) Push(ctx context.Context) error {
	s.mu.Lock()
	sess := s.session
	if sess == nil || s.doc == nil {
		s.mu.Unlock()
		return errors.New("nothing to push")
	}
	eventID := sess.EventID
	// Deep copy: the store marshals the snapshot outside the lock while
	// mutations keep landing on the live document.
	snapshot := s.doc.Clone()
	s.mu.Unlock()

	if s.remote == nil {
		return common.ErrNotConfigured
	}
	s.status.begin()
	err := s.remote.SaveEvent(ctx, eventID, snapshot)
	s.status.finish(err)
	if err != nil {
		s.log.Error(ctx, "push failed", "event_id", eventID, "error", err)
		return err
	}
	s.log.Info(ctx, "push complete", "event_id", eventID)
	return nil
}

// Pull fetches the remote document and unconditionally overwrites local
// state for every field present in the payload (last-write-wins). A remote
// row that does not exist leaves local state untouched.
func (s *Syncer) Pull(ctx context.Context) error {
	s.mu.Lock()
	sess := s.session
	if sess == nil {
		s.mu.Unlock()
		return errors.New("no active session")
	}
	eventID := sess.EventID
	s.mu.Unlock()

	if s.remote == nil {
		return common.ErrNotConfigured
	}
	s.status.begin()
	res, err := s.remote.LoadEvent(ctx, eventID)
	s.status.finish(err)
	if err != nil {
		s.log.Error(ctx, "pull failed", "event_id", eventID, "error", err)
		return err
	}
	if res == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := reconcileDocument(res.Doc, sess.EventType)
	if doc.Type.Valid() {
		sess.EventType = doc.Type
		sess.ManagementType = doc.Type.Variant()
	}
	s.doc = doc

	s.kv.SetItem(ctx, structureKey(sess.EventID, sess.ManagementType), doc.Org)
	s.kv.SetItem(ctx, notesKey(sess.EventID), doc.Notes)
	s.kv.SetItem(ctx, attendanceKey(sess.EventID), doc.Attendance)
	if doc.Program != nil {
		s.kv.SetItem(ctx, programKey(sess.EventID, string(doc.Type)), doc.Program)
	}
	s.kv.SetItem(ctx, lastTypeKey(sess.EventID), doc.Type)
	s.persistSession(ctx)
	s.log.Info(ctx, "pull complete", "event_id", eventID)
	return nil
}

// InviteToken bundles the active remote credentials for an invite link.
func (s *Syncer) InviteToken() (string, error) {
	if s.remote == nil || !s.remote.Configured() {
		return "", common.ErrNotConfigured
	}
	return EncodeInviteToken(s.remote.Credentials())
}

// CancelAutoSave drops a pending auto-save, if any. Used when the session
// ends before the quiet window elapses.
func (s *Syncer) CancelAutoSave() { s.autosave.Cancel() }

func (s *Syncer) persistSession(ctx context.Context) {
	if s.session != nil {
		s.kv.SetItem(ctx, sessionKey, *s.session)
	}
}

func (s *Syncer) sessionCopy() *Session {
	c := *s.session
	return &c
}

func otherVariant(mt models.ManagementType) models.ManagementType {
	if mt == models.ManagementConvention {
		return models.ManagementAssembly
	}
	return models.ManagementConvention
}

// flipType picks the event type matching a newly adopted variant, keeping
// the current type when it already fits.
func flipType(t models.EventType, mt models.ManagementType) models.EventType {
	if t.Valid() && t.Variant() == mt {
		return t
	}
	if mt == models.ManagementConvention {
		return models.EventTypeConvention
	}
	return models.DefaultEventType
}
