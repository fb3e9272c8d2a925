package syncer

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/assemblysync/internal/localstore"
	"github.com/dmitrijs2005/assemblysync/internal/models"
	"github.com/dmitrijs2005/assemblysync/internal/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// fakeRemote implements remote.Store in memory. The debounced auto-save
// pushes from its own goroutine, so access is serialized.
type fakeRemote struct {
	mu    sync.Mutex
	docs  map[string]*models.EventDocument
	saves int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{docs: map[string]*models.EventDocument{}}
}

func (f *fakeRemote) TestConnection(ctx context.Context) error { return nil }
func (f *fakeRemote) SaveEvent(ctx context.Context, id string, doc *models.EventDocument) error {
	// Real stores serialize the document on the caller's goroutine before
	// touching the wire; doing the same here makes a snapshot that aliases
	// the live document visible to the race detector.
	if _, err := json.Marshal(doc); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	f.docs[id] = doc
	return nil
}
func (f *fakeRemote) LoadEvent(ctx context.Context, id string) (*remote.LoadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return nil, nil
	}
	return &remote.LoadResult{Doc: doc, UpdatedAt: time.Now()}, nil
}

func (f *fakeRemote) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

func (f *fakeRemote) doc(id string) *models.EventDocument {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.docs[id]
}

func (f *fakeRemote) put(id string, doc *models.EventDocument) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[id] = doc
}
func (f *fakeRemote) ListAllEvents(ctx context.Context) ([]remote.EventInfo, error) { return nil, nil }
func (f *fakeRemote) Close()                                                        {}

type fixture struct {
	kv     *localstore.Store
	mgr    *remote.Manager
	remote *fakeRemote
	syncer *Syncer
}

// newFixture wires a syncer over an in-memory local store. The remote
// manager is left unconfigured; call connect to attach the fake backend.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE kv_items (key TEXT PRIMARY KEY, value TEXT NOT NULL)`)
	require.NoError(t, err)

	kv := localstore.New(db, nil)
	fr := newFakeRemote()
	mgr := remote.NewManager(kv, nil)
	mgr.SetStoreFactory(func(ctx context.Context, creds remote.Credentials) (remote.Store, error) {
		return fr, nil
	})

	f := &fixture{kv: kv, mgr: mgr, remote: fr, syncer: New(kv, mgr, nil)}
	t.Cleanup(f.syncer.CancelAutoSave)
	return f
}

func (f *fixture) connect(ctx context.Context) {
	_ = f.mgr.Configure(ctx, "https://abcdefghijklmnopqrst.supabase.co", "key", "")
}

func TestLoadEvent_DefaultsForUnknownPublicEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Empty local store, no remote configuration, no explicit type.
	_, err := f.syncer.StartSession(ctx, "GO-003 A", RolePublic, "")
	require.NoError(t, err)
	require.NoError(t, f.syncer.LoadEvent(ctx))

	doc := f.syncer.Document()
	require.NotNil(t, doc)
	assert.Equal(t, models.EventTypeAssemblyBR, doc.Type)
	assert.Equal(t, models.DefaultProgram(models.EventTypeAssemblyBR), doc.Program)
	assert.Equal(t, models.DefaultOrgStructure(models.EventTypeAssemblyBR), doc.Org)
}

func TestLoadEvent_ConventionRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.syncer.StartSession(ctx, "CO-2026", RoleAdmin, models.EventTypeConvention)
	require.NoError(t, err)
	require.NoError(t, f.syncer.LoadEvent(ctx))

	org := f.syncer.Document().Org.Clone()
	org.Committee.Congregation = "Riverside"
	f.syncer.SetOrg(ctx, org)

	// A fresh session without a hint remembers the last-used type and
	// finds the structure under the convention-suffixed key.
	s2 := New(f.kv, f.mgr, nil)
	_, err = s2.StartSession(ctx, "CO-2026", RoleAdmin, "")
	require.NoError(t, err)
	require.NoError(t, s2.LoadEvent(ctx))

	doc := s2.Document()
	assert.Equal(t, models.EventTypeConvention, doc.Type)
	assert.Equal(t, "Riverside", doc.Org.Committee.Congregation)
	assert.NotEmpty(t, doc.Org.CoordDepartments)
	assert.NotEmpty(t, doc.Org.ProgDepartments)
	assert.NotEmpty(t, doc.Org.RoomDepartments)
	assert.Empty(t, doc.Org.AODepartments)
	assert.Empty(t, doc.Org.AAODepartments)
}

func TestLoadEvent_OtherVariantProbeFlipsType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A convention structure was cached, but the event type was
	// mis-recorded: the session starts with the assembly default.
	org := models.DefaultOrgStructure(models.EventTypeConvention)
	org.Committee.Congregation = "Hillview"
	f.kv.SetItem(ctx, structureKey("CO-2026", models.ManagementConvention), org)

	_, err := f.syncer.StartSession(ctx, "CO-2026", RoleAdmin, "")
	require.NoError(t, err)
	require.NoError(t, f.syncer.LoadEvent(ctx))

	doc := f.syncer.Document()
	assert.Equal(t, models.EventTypeConvention, doc.Type)
	assert.Equal(t, "Hillview", doc.Org.Committee.Congregation)

	sess := f.syncer.Session()
	assert.Equal(t, models.ManagementConvention, sess.ManagementType)
}

func TestLoadEvent_IDVariantProbeCorrectsSessionID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Only the space spelling exists locally.
	org := models.DefaultOrgStructure(models.EventTypeAssemblyBR)
	org.Committee.Congregation = "Lakeside"
	f.kv.SetItem(ctx, structureKey("GO-003 A", models.ManagementAssembly), org)

	// A public visitor arrives with the hyphen spelling.
	_, err := f.syncer.StartSession(ctx, "GO-003-A", RolePublic, "")
	require.NoError(t, err)
	require.NoError(t, f.syncer.LoadEvent(ctx))

	assert.Equal(t, "Lakeside", f.syncer.Document().Org.Committee.Congregation)
	// The remembered id is corrected to the stored spelling.
	assert.Equal(t, "GO-003 A", f.syncer.Session().EventID)
}

func TestLoadEvent_CloudRescue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.connect(ctx)

	org := models.DefaultOrgStructure(models.EventTypeConvention)
	org.Committee.Congregation = "Remote Cong"
	f.remote.put("CO-2026", &models.EventDocument{
		Org:  org,
		Type: models.EventTypeConvention,
	})

	_, err := f.syncer.StartSession(ctx, "CO-2026", RoleAdmin, "")
	require.NoError(t, err)
	require.NoError(t, f.syncer.LoadEvent(ctx))

	doc := f.syncer.Document()
	assert.Equal(t, models.EventTypeConvention, doc.Type)
	assert.Equal(t, "Remote Cong", doc.Org.Committee.Congregation)

	// The rescued structure was written back into the local cache under
	// the correct variant key.
	cached := localstore.GetItem(ctx, f.kv, structureKey("CO-2026", models.ManagementConvention), (*models.OrgStructure)(nil))
	require.NotNil(t, cached)
	assert.Equal(t, "Remote Cong", cached.Committee.Congregation)
}

func TestLoadEvent_LiveEditsNotClobbered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.syncer.StartSession(ctx, "GO-003 A", RoleAdmin, "")
	require.NoError(t, err)
	require.NoError(t, f.syncer.LoadEvent(ctx))

	org := f.syncer.Document().Org.Clone()
	org.Committee.Congregation = "Edited Live"
	f.syncer.SetOrg(ctx, org)

	// A second load must not replace the in-memory state.
	require.NoError(t, f.syncer.LoadEvent(ctx))
	assert.Equal(t, "Edited Live", f.syncer.Document().Org.Committee.Congregation)
}

func TestLoadEvent_TemplateSessionSkipsNotesAndAttendance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.kv.SetItem(ctx, notesKey("GO-003 A"), map[string]string{"p1": "note"})
	f.kv.SetItem(ctx, attendanceKey("GO-003 A"), map[string]string{"am": "412"})

	_, err := f.syncer.StartSession(ctx, "GO-003 A", RoleTemplate, "")
	require.NoError(t, err)
	require.NoError(t, f.syncer.LoadEvent(ctx))

	doc := f.syncer.Document()
	assert.Empty(t, doc.Notes)
	assert.Empty(t, doc.Attendance)
}

func TestStartSession_LegacyRecordNeedsTypeSelection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A record persisted by an older release: no event type, no
	// management type.
	f.kv.SetItem(ctx, sessionKey, Session{ID: "old", EventID: "GO-003 A", Role: RoleAdmin})

	sess, err := f.syncer.StartSession(ctx, "GO-003 A", RoleAdmin, "")
	assert.ErrorIs(t, err, ErrTypeSelectionRequired)
	assert.True(t, sess.NeedsTypeSelection)

	// Loading is refused until the user supplies the classification.
	assert.ErrorIs(t, f.syncer.LoadEvent(ctx), ErrTypeSelectionRequired)

	f.syncer.ResolveTypeSelection(ctx, models.EventTypeAssemblyCO)
	require.NoError(t, f.syncer.LoadEvent(ctx))
	assert.Equal(t, models.EventTypeAssemblyCO, f.syncer.Document().Type)
}

func TestPull_PartialRemoteDocumentGainsDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.connect(ctx)

	org := models.DefaultOrgStructure(models.EventTypeAssemblyBR)
	org.Committee.Congregation = "Verbatim"
	f.remote.put("GO-003 A", &models.EventDocument{
		Org:  org.Clone(),
		Type: models.EventTypeAssemblyBR,
		// Program never saved.
	})

	_, err := f.syncer.StartSession(ctx, "GO-003 A", RoleAdmin, models.EventTypeAssemblyBR)
	require.NoError(t, err)
	require.NoError(t, f.syncer.Pull(ctx))

	doc := f.syncer.Document()
	assert.Equal(t, org, doc.Org)
	assert.Equal(t, models.DefaultProgram(models.EventTypeAssemblyBR), doc.Program)
}

func TestPush_OverwritesRemote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.connect(ctx)

	_, err := f.syncer.StartSession(ctx, "GO-003 A", RoleAdmin, models.EventTypeAssemblyBR)
	require.NoError(t, err)
	require.NoError(t, f.syncer.LoadEvent(ctx))

	f.syncer.SetNote(ctx, "am-opening", "second run")
	require.NoError(t, f.syncer.Push(ctx))

	pushed := f.remote.doc("GO-003 A")
	require.NotNil(t, pushed)
	assert.Equal(t, "second run", pushed.Notes["am-opening"])
}

func TestPush_SnapshotDoesNotAliasLiveDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.connect(ctx)

	_, err := f.syncer.StartSession(ctx, "GO-003 A", RoleAdmin, models.EventTypeAssemblyBR)
	require.NoError(t, err)
	require.NoError(t, f.syncer.LoadEvent(ctx))

	f.syncer.SetNote(ctx, "am-opening", "before push")
	require.NoError(t, f.syncer.Push(ctx))

	// Edits after a push must not bleed into the already-uploaded copy.
	f.syncer.SetNote(ctx, "am-opening", "after push")
	f.syncer.SetAttendance(ctx, "sat-am", "812")

	pushed := f.remote.doc("GO-003 A")
	require.NotNil(t, pushed)
	assert.Equal(t, "before push", pushed.Notes["am-opening"])
	assert.Empty(t, pushed.Attendance["sat-am"])
	assert.NotSame(t, f.syncer.Document().Org, pushed.Org)
}

func TestPush_ConcurrentEditsDuringUpload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.connect(ctx)

	_, err := f.syncer.StartSession(ctx, "GO-003 A", RoleAdmin, models.EventTypeAssemblyBR)
	require.NoError(t, err)
	require.NoError(t, f.syncer.LoadEvent(ctx))

	// The fake store marshals each pushed document while this goroutine
	// keeps rewriting the note maps. Only a deep snapshot keeps the two
	// sides apart.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			f.syncer.SetNote(ctx, "p1", strconv.Itoa(i))
			f.syncer.SetAttendance(ctx, "sat-am", strconv.Itoa(i))
		}
	}()
	for i := 0; i < 25; i++ {
		require.NoError(t, f.syncer.Push(ctx))
	}
	wg.Wait()
}

func TestAutoSave_DebouncedSingleFlight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.connect(ctx)
	f.syncer.SetAutoSaveWindow(30 * time.Millisecond)

	_, err := f.syncer.StartSession(ctx, "GO-003 A", RoleAdmin, models.EventTypeAssemblyBR)
	require.NoError(t, err)
	require.NoError(t, f.syncer.LoadEvent(ctx))

	// A burst of mutations within the quiet window collapses into one push.
	f.syncer.SetNote(ctx, "p1", "a")
	f.syncer.SetNote(ctx, "p1", "ab")
	f.syncer.SetNote(ctx, "p1", "abc")

	require.Eventually(t, func() bool { return f.remote.saveCount() == 1 },
		time.Second, 5*time.Millisecond)

	// The fired save captured the latest state.
	assert.Equal(t, "abc", f.remote.doc("GO-003 A").Notes["p1"])

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, f.remote.saveCount())
}

func TestAutoSave_NotScheduledWhenNotQualifying(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Remote not configured.
	_, err := f.syncer.StartSession(ctx, "GO-003 A", RoleAdmin, models.EventTypeAssemblyBR)
	require.NoError(t, err)
	require.NoError(t, f.syncer.LoadEvent(ctx))
	f.syncer.SetNote(ctx, "p1", "x")
	assert.False(t, f.syncer.autosave.Pending())

	// Public role never auto-saves.
	f2 := newFixture(t)
	f2.connect(ctx)
	_, err = f2.syncer.StartSession(ctx, "GO-003 A", RolePublic, "")
	require.NoError(t, err)
	require.NoError(t, f2.syncer.LoadEvent(ctx))
	f2.syncer.SetAttendance(ctx, "am", "410")
	assert.False(t, f2.syncer.autosave.Pending())

	// Mutations before the initial load completes never push.
	f3 := newFixture(t)
	f3.connect(ctx)
	_, err = f3.syncer.StartSession(ctx, "GO-003 A", RoleAdmin, models.EventTypeAssemblyBR)
	require.NoError(t, err)
	f3.syncer.SetNote(ctx, "p1", "early")
	assert.False(t, f3.syncer.autosave.Pending())
}

func TestStatusTransitions(t *testing.T) {
	var seen []Status
	tr := newStatusTracker(func(s Status) { seen = append(seen, s) })

	assert.Equal(t, StatusIdle, tr.Current())
	tr.begin()
	assert.Equal(t, StatusSyncing, tr.Current())
	tr.finish(nil)
	assert.Equal(t, StatusSuccess, tr.Current())

	tr.begin()
	tr.finish(assert.AnError)
	assert.Equal(t, StatusError, tr.Current())

	assert.Equal(t, []Status{StatusSyncing, StatusSuccess, StatusSyncing, StatusError}, seen)
}

func TestDebouncer_CancelBeforeFire(t *testing.T) {
	d := newDebouncer(20 * time.Millisecond)
	fired := make(chan struct{}, 1)

	d.Trigger(func() { fired <- struct{}{} })
	require.True(t, d.Pending())
	d.Cancel()
	require.False(t, d.Pending())

	select {
	case <-fired:
		t.Fatal("cancelled debounce fired")
	case <-time.After(60 * time.Millisecond):
	}
}
