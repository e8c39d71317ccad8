package internal

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuthState is the session store's state
type AuthState int

const (
	Unauthenticated AuthState = iota
	Authenticated
)

func (s AuthState) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Routes the store navigates to
const (
	RouteLanding   = "/"
	RouteLogin     = "/login"
	RouteSignup    = "/signup"
	RoutePricing   = "/pricing"
	RouteDashboard = "/dashboard"
)

// The only credential pair that logs in
const (
	DemoEmail    = "demo@example.com"
	DemoPassword = "password"
)

// DefaultLoginDelay mimics the round trip of a login request
const DefaultLoginDelay = time.Second

// Navigator receives route changes requested by the store
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(route string)

// Navigate calls f(route)
func (f NavigatorFunc) Navigate(route string) {
	f(route)
}

// Listener is notified after every state transition or session change.
// The session is a copy and is nil when unauthenticated.
type Listener func(state AuthState, session *Session)

// StoreOption configures a Store
type StoreOption func(*Store)

// WithNavigator sets where logout and the auth gate redirect to
func WithNavigator(nav Navigator) StoreOption {
	return func(s *Store) {
		s.nav = nav
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// WithLoginDelay sets the simulated login latency
func WithLoginDelay(d time.Duration) StoreOption {
	return func(s *Store) {
		s.loginDelay = d
	}
}

// WithIDGenerator overrides session id generation
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *Store) {
		s.newID = fn
	}
}

// Store holds the current session and mirrors it into a SnapshotStore
type Store struct {
	mu         sync.Mutex
	snapshots  SnapshotStore
	nav        Navigator
	now        func() time.Time
	newID      func() string
	loginDelay time.Duration

	session      *Session
	listeners    map[int]Listener
	nextListener int
}

// NewStore creates an unauthenticated store. Call Restore to pick up a
// persisted session.
func NewStore(snapshots SnapshotStore, opts ...StoreOption) *Store {
	s := &Store{
		snapshots:  snapshots,
		nav:        NavigatorFunc(func(string) {}),
		now:        time.Now,
		newID:      newSessionID,
		loginDelay: DefaultLoginDelay,
		listeners:  make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newSessionID() string {
	return "usr_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}

// State returns the current auth state
func (s *Store) State() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil {
		return Authenticated
	}
	return Unauthenticated
}

// IsAuthenticated reports whether a session is active
func (s *Store) IsAuthenticated() bool {
	return s.State() == Authenticated
}

// Session returns a copy of the active session, or nil
func (s *Store) Session() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Clone()
}

// Subscribe registers fn for change notifications and returns a func that
// removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// notify must be called without holding mu
func (s *Store) notify() {
	s.mu.Lock()
	state := Unauthenticated
	if s.session != nil {
		state = Authenticated
	}
	session := s.session.Clone()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(state, session.Clone())
	}
}

// RestoreOutcome reports what Restore found
type RestoreOutcome int

const (
	RestoreEmpty     RestoreOutcome = iota // no snapshot stored
	RestoreRestored                        // session restored
	RestoreDiscarded                       // unreadable snapshot removed
	RestoreFailed                          // snapshot could not be read
)

func (o RestoreOutcome) String() string {
	switch o {
	case RestoreRestored:
		return "restored"
	case RestoreDiscarded:
		return "discarded"
	case RestoreFailed:
		return "failed"
	default:
		return "empty"
	}
}

// Restore loads the persisted snapshot. A snapshot that cannot be parsed is
// discarded and the store stays logged out; no error ever reaches the caller.
func (s *Store) Restore() RestoreOutcome {
	data, found, err := s.snapshots.Load()
	if err != nil {
		LogWarn("Failed to read session snapshot: %v", err)
		return RestoreFailed
	}
	if !found {
		LogDebug("No session snapshot found")
		return RestoreEmpty
	}

	session, err := ParseSession(data)
	if err != nil {
		LogDebug("%v", &ParseError{Source: snapshotSource(s.snapshots), Key: SnapshotKey, Err: err})
		if err := s.snapshots.Clear(); err != nil {
			LogWarn("Failed to discard unreadable session snapshot: %v", err)
		}
		return RestoreDiscarded
	}

	s.mu.Lock()
	s.session = session
	s.mu.Unlock()
	LogDebug("Restored session %s for %s", session.ID, session.Email)
	s.notify()
	return RestoreRestored
}

// Login checks the credentials against the demo account. Wrong credentials
// return false with a nil error; an error means the session could not be
// persisted or ctx was cancelled during the simulated round trip.
func (s *Store) Login(ctx context.Context, email, password string) (bool, error) {
	if s.loginDelay > 0 {
		timer := time.NewTimer(s.loginDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}

	if email != DemoEmail || password != DemoPassword {
		LogDebug("Login rejected for %q: %v", email, ErrInvalidCredentials)
		return false, nil
	}

	session := demoSession(s.newID(), email, s.now())
	data, err := MarshalSession(session)
	if err != nil {
		return false, err
	}
	if err := s.snapshots.Save(data); err != nil {
		return false, err
	}

	s.mu.Lock()
	s.session = session
	s.mu.Unlock()
	LogInfo("Logged in as %s", session.Email)
	s.notify()
	return true, nil
}

// Logout removes the snapshot, clears the session and navigates to the
// landing route, which it also returns. If the snapshot cannot be removed
// the session stays active and no navigation happens.
func (s *Store) Logout() (string, error) {
	if err := s.snapshots.Clear(); err != nil {
		return "", err
	}

	s.mu.Lock()
	wasAuthenticated := s.session != nil
	s.session = nil
	s.mu.Unlock()

	if wasAuthenticated {
		s.notify()
	}
	s.nav.Navigate(RouteLanding)
	return RouteLanding, nil
}

// RequireAuth gates dashboard operations: when nobody is logged in it
// navigates to the login route and returns false.
func (s *Store) RequireAuth() bool {
	if s.IsAuthenticated() {
		return true
	}
	s.nav.Navigate(RouteLogin)
	return false
}

// RecordUsage appends a usage event to the active session and re-persists
// it. It does nothing when logged out. The in-memory session only changes
// once the snapshot is saved.
func (s *Store) RecordUsage(action, contractAddress string) error {
	recorded, err := s.recordUsage(action, contractAddress)
	if err != nil {
		return err
	}
	if recorded {
		s.notify()
	}
	return nil
}

func (s *Store) recordUsage(action, contractAddress string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return false, nil
	}

	now := s.now()
	updated := s.session.Clone()
	updated.UsageHistory = append(updated.UsageHistory, UsageEvent{
		Date:            now,
		Action:          action,
		ContractAddress: contractAddress,
	})
	updated.LastActive = now

	data, err := MarshalSession(updated)
	if err != nil {
		return false, err
	}
	if err := s.snapshots.Save(data); err != nil {
		return false, err
	}
	s.session = updated
	return true, nil
}

func snapshotSource(store SnapshotStore) string {
	switch store.(type) {
	case *FileSnapshotStore:
		return StorageFile
	case *SQLiteSnapshotStore:
		return StorageSQLite
	default:
		return "snapshot"
	}
}

// demoSession builds the fixed demo account
func demoSession(id, email string, now time.Time) *Session {
	return &Session{
		ID:         id,
		Email:      email,
		Name:       "Demo User",
		Plan:       PlanPro,
		JoinedAt:   time.Date(2023, time.June, 15, 0, 0, 0, 0, time.UTC),
		LastActive: now,
		UsageHistory: []UsageEvent{
			{
				Date:            time.Date(2023, time.July, 20, 0, 0, 0, 0, time.UTC),
				Action:          "Contract Analysis",
				ContractAddress: "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D",
			},
			{
				Date:            time.Date(2023, time.August, 5, 0, 0, 0, 0, time.UTC),
				Action:          "Contract Analysis",
				ContractAddress: "0x8b3f5381a73cD8c70EC7776D8B2d922ecD64831B",
			},
			{
				Date:   time.Date(2023, time.September, 18, 0, 0, 0, 0, time.UTC),
				Action: "Plan Upgrade",
			},
		},
	}
}
