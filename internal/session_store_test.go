package internal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iksnae/neuralguard/testutil"
)

type recordingNavigator struct {
	mu     sync.Mutex
	routes []string
}

func (n *recordingNavigator) Navigate(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, route)
}

func (n *recordingNavigator) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.routes) == 0 {
		return ""
	}
	return n.routes[len(n.routes)-1]
}

type failingSnapshotStore struct {
	saveErr error
	loadErr error
}

func (f *failingSnapshotStore) Load() ([]byte, bool, error) { return nil, false, f.loadErr }
func (f *failingSnapshotStore) Save([]byte) error          { return f.saveErr }
func (f *failingSnapshotStore) Clear() error               { return nil }

// faultySnapshotStore wraps a working store and fails Save or Clear on demand
type faultySnapshotStore struct {
	SnapshotStore
	saveErr  error
	clearErr error
}

func (f *faultySnapshotStore) Save(data []byte) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.SnapshotStore.Save(data)
}

func (f *faultySnapshotStore) Clear() error {
	if f.clearErr != nil {
		return f.clearErr
	}
	return f.SnapshotStore.Clear()
}

func newTestStore(t *testing.T, snapshots SnapshotStore, opts ...StoreOption) (*Store, *recordingNavigator) {
	t.Helper()
	nav := &recordingNavigator{}
	base := []StoreOption{
		WithNavigator(nav),
		WithClock(func() time.Time { return fixedNow }),
		WithLoginDelay(0),
		WithIDGenerator(func() string { return "usr_test12345" }),
	}
	return NewStore(snapshots, append(base, opts...)...), nav
}

func TestStore_LoginWithDemoCredentials(t *testing.T) {
	snapshots := NewFileSnapshotStore(testutil.CreateTempDir(t))
	store, _ := newTestStore(t, snapshots)

	ok, err := store.Login(context.Background(), DemoEmail, DemoPassword)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Authenticated, store.State())

	session := store.Session()
	require.NotNil(t, session)
	assert.Equal(t, PlanPro, session.Plan)
	assert.Equal(t, "Demo User", session.Name)
	assert.Equal(t, DemoEmail, session.Email)
	assert.Equal(t, "usr_test12345", session.ID)
	assert.True(t, session.LastActive.Equal(fixedNow))
	assert.Len(t, session.UsageHistory, 3)

	_, found, err := snapshots.Load()
	require.NoError(t, err)
	assert.True(t, found, "login should persist the snapshot")
}

func TestStore_LoginRejectsOtherCredentials(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", DemoEmail, "hunter2"},
		{"wrong email", "someone@example.com", DemoPassword},
		{"empty", "", ""},
		{"case differs", "Demo@Example.com", DemoPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshots := NewFileSnapshotStore(testutil.CreateTempDir(t))
			store, _ := newTestStore(t, snapshots)

			ok, err := store.Login(context.Background(), tt.email, tt.password)
			assert.NoError(t, err)
			assert.False(t, ok)
			assert.Equal(t, Unauthenticated, store.State())
			assert.Nil(t, store.Session())

			_, found, _ := snapshots.Load()
			assert.False(t, found, "no snapshot for a failed login")
		})
	}
}

func TestStore_LoginPersistFailure(t *testing.T) {
	saveErr := errors.New("disk full")
	store, _ := newTestStore(t, &failingSnapshotStore{saveErr: saveErr})

	ok, err := store.Login(context.Background(), DemoEmail, DemoPassword)
	assert.ErrorIs(t, err, saveErr)
	assert.False(t, ok)
	assert.False(t, store.IsAuthenticated())
}

func TestStore_LoginHonoursContext(t *testing.T) {
	store, _ := newTestStore(t, NewFileSnapshotStore(testutil.CreateTempDir(t)), WithLoginDelay(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := store.Login(ctx, DemoEmail, DemoPassword)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
	assert.False(t, store.IsAuthenticated())
}

func TestStore_LoginReplacesSession(t *testing.T) {
	ids := []string{"usr_first0000", "usr_second000"}
	next := 0
	store, _ := newTestStore(t, NewFileSnapshotStore(testutil.CreateTempDir(t)),
		WithIDGenerator(func() string { id := ids[next]; next++; return id }))

	_, err := store.Login(context.Background(), DemoEmail, DemoPassword)
	require.NoError(t, err)
	require.NoError(t, store.RecordUsage("Contract Analysis", "0xabc"))
	require.Len(t, store.Session().UsageHistory, 4)

	_, err = store.Login(context.Background(), DemoEmail, DemoPassword)
	require.NoError(t, err)
	session := store.Session()
	assert.Equal(t, "usr_second000", session.ID)
	assert.Len(t, session.UsageHistory, 3, "a new login replaces the session wholesale")
}

func TestStore_LogoutClearsSnapshotAndRedirects(t *testing.T) {
	for name, snapshots := range snapshotBackends(t) {
		t.Run(name, func(t *testing.T) {
			store, nav := newTestStore(t, snapshots)
			_, err := store.Login(context.Background(), DemoEmail, DemoPassword)
			require.NoError(t, err)

			route, err := store.Logout()
			require.NoError(t, err)
			assert.Equal(t, RouteLanding, route)
			assert.Equal(t, RouteLanding, nav.last())
			assert.Equal(t, Unauthenticated, store.State())

			_, found, err := snapshots.Load()
			require.NoError(t, err)
			assert.False(t, found, "snapshot should be absent after logout")

			restored, _ := newTestStore(t, snapshots)
			assert.Equal(t, RestoreEmpty, restored.Restore())
			assert.Equal(t, Unauthenticated, restored.State())
		})
	}
}

func TestStore_LogoutKeepsSessionWhenSnapshotRemains(t *testing.T) {
	snapshots := &faultySnapshotStore{SnapshotStore: NewFileSnapshotStore(testutil.CreateTempDir(t))}
	store, nav := newTestStore(t, snapshots)
	_, err := store.Login(context.Background(), DemoEmail, DemoPassword)
	require.NoError(t, err)

	var notified int
	store.Subscribe(func(AuthState, *Session) { notified++ })

	snapshots.clearErr = os.ErrPermission
	route, err := store.Logout()
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.Empty(t, route)
	assert.Empty(t, nav.last(), "no redirect when logout failed")
	assert.Equal(t, Authenticated, store.State(), "memory must match the surviving snapshot")
	assert.Zero(t, notified)

	restored, _ := newTestStore(t, snapshots)
	assert.Equal(t, RestoreRestored, restored.Restore())

	snapshots.clearErr = nil
	_, err = store.Logout()
	require.NoError(t, err)
	assert.Equal(t, Unauthenticated, store.State())
}

func TestStore_RestoreRoundTrip(t *testing.T) {
	for name, snapshots := range snapshotBackends(t) {
		t.Run(name, func(t *testing.T) {
			store, _ := newTestStore(t, snapshots)
			_, err := store.Login(context.Background(), DemoEmail, DemoPassword)
			require.NoError(t, err)
			require.NoError(t, store.RecordUsage("Contract Analysis", "0x0000000000000000000000000000000000000000"))

			restored, _ := newTestStore(t, snapshots)
			assert.Equal(t, RestoreRestored, restored.Restore())

			assert.Equal(t, Authenticated, restored.State())
			assertSessionsEqual(t, store.Session(), restored.Session())
		})
	}
}

func TestStore_RestoreDiscardsCorruptSnapshot(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	snapshots := NewFileSnapshotStore(dir)
	testutil.WriteFile(t, dir, SnapshotKey+".json", `{"id": "usr_1", "usageHistory": [`)

	store, _ := newTestStore(t, snapshots)
	assert.Equal(t, RestoreDiscarded, store.Restore())
	assert.Equal(t, Unauthenticated, store.State())

	_, found, err := snapshots.Load()
	require.NoError(t, err)
	assert.False(t, found, "corrupt snapshot should be discarded")
}

func TestStore_RestoreDiscardsCorruptSQLiteSnapshot(t *testing.T) {
	dbPath := filepath.Join(testutil.CreateTempDir(t), "state.db")
	testutil.CreateSQLiteFixture(t, dbPath, SnapshotKey, "not json at all")
	snapshots := NewSQLiteSnapshotStore(dbPath)

	store, _ := newTestStore(t, snapshots)
	assert.Equal(t, RestoreDiscarded, store.Restore())
	assert.False(t, store.IsAuthenticated())

	_, found, err := snapshots.Load()
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_RestoreSwallowsReadErrors(t *testing.T) {
	store, _ := newTestStore(t, &failingSnapshotStore{loadErr: errors.New("io")})
	assert.Equal(t, RestoreFailed, store.Restore())
	assert.False(t, store.IsAuthenticated())
}

func TestStore_RequireAuth(t *testing.T) {
	store, nav := newTestStore(t, NewFileSnapshotStore(testutil.CreateTempDir(t)))

	assert.False(t, store.RequireAuth())
	assert.Equal(t, RouteLogin, nav.last())

	_, err := store.Login(context.Background(), DemoEmail, DemoPassword)
	require.NoError(t, err)
	nav.routes = nil
	assert.True(t, store.RequireAuth())
	assert.Empty(t, nav.last())
}

func TestStore_RecordUsage(t *testing.T) {
	snapshots := NewFileSnapshotStore(testutil.CreateTempDir(t))
	store, _ := newTestStore(t, snapshots)

	// logged out: nothing to append to
	require.NoError(t, store.RecordUsage("Contract Analysis", "0xabc"))
	assert.Nil(t, store.Session())

	_, err := store.Login(context.Background(), DemoEmail, DemoPassword)
	require.NoError(t, err)
	require.NoError(t, store.RecordUsage("Contract Analysis", "Token.sol"))

	session := store.Session()
	require.Len(t, session.UsageHistory, 4)
	last := session.UsageHistory[3]
	assert.Equal(t, "Contract Analysis", last.Action)
	assert.Equal(t, "Token.sol", last.ContractAddress)
	assert.True(t, last.Date.Equal(fixedNow))

	data, _, err := snapshots.Load()
	require.NoError(t, err)
	persisted, err := ParseSession(data)
	require.NoError(t, err)
	assert.Len(t, persisted.UsageHistory, 4)
}

func TestStore_RecordUsageSaveFailure(t *testing.T) {
	snapshots := &faultySnapshotStore{SnapshotStore: NewFileSnapshotStore(testutil.CreateTempDir(t))}
	store, _ := newTestStore(t, snapshots)
	_, err := store.Login(context.Background(), DemoEmail, DemoPassword)
	require.NoError(t, err)

	var notified int
	store.Subscribe(func(AuthState, *Session) { notified++ })

	saveErr := errors.New("disk full")
	snapshots.saveErr = saveErr
	assert.ErrorIs(t, store.RecordUsage("Contract Analysis", "0xabc"), saveErr)

	assert.Len(t, store.Session().UsageHistory, 3, "memory must not run ahead of storage")
	assert.Zero(t, notified)

	data, _, err := snapshots.Load()
	require.NoError(t, err)
	persisted, err := ParseSession(data)
	require.NoError(t, err)
	assertSessionsEqual(t, persisted, store.Session())
}

func TestStore_Subscribe(t *testing.T) {
	store, _ := newTestStore(t, NewFileSnapshotStore(testutil.CreateTempDir(t)))

	var states []AuthState
	unsubscribe := store.Subscribe(func(state AuthState, session *Session) {
		states = append(states, state)
		if state == Authenticated {
			assert.NotNil(t, session)
		} else {
			assert.Nil(t, session)
		}
	})

	_, err := store.Login(context.Background(), DemoEmail, DemoPassword)
	require.NoError(t, err)
	require.NoError(t, store.RecordUsage("Contract Analysis", "0xabc"))
	_, err = store.Logout()
	require.NoError(t, err)
	// already logged out: no transition, no notification
	_, err = store.Logout()
	require.NoError(t, err)

	assert.Equal(t, []AuthState{Authenticated, Authenticated, Unauthenticated}, states)

	unsubscribe()
	_, err = store.Login(context.Background(), DemoEmail, DemoPassword)
	require.NoError(t, err)
	assert.Len(t, states, 3, "no notifications after unsubscribe")
}

func TestStore_SessionIsACopy(t *testing.T) {
	store, _ := newTestStore(t, NewFileSnapshotStore(testutil.CreateTempDir(t)))
	_, err := store.Login(context.Background(), DemoEmail, DemoPassword)
	require.NoError(t, err)

	s := store.Session()
	s.UsageHistory = append(s.UsageHistory[:0], UsageEvent{Action: "tampered"})
	assert.Equal(t, "Contract Analysis", store.Session().UsageHistory[0].Action)
}

func TestDefaultSessionID(t *testing.T) {
	store := NewStore(NewFileSnapshotStore(testutil.CreateTempDir(t)), WithLoginDelay(0))
	_, err := store.Login(context.Background(), DemoEmail, DemoPassword)
	require.NoError(t, err)

	id := store.Session().ID
	assert.Regexp(t, `^usr_[0-9a-f]{9}$`, id)
}

func TestAuthStateString(t *testing.T) {
	assert.Equal(t, "authenticated", Authenticated.String())
	assert.Equal(t, "unauthenticated", Unauthenticated.String())
}
