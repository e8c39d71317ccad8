package cmd

import (
	"fmt"
	"sync"

	"github.com/iksnae/neuralguard/internal"
	"github.com/spf13/cobra"
)

// application is the state shared by every command of one invocation
type application struct {
	config   *internal.Config
	store    *internal.Store
	restored internal.RestoreOutcome
	analyzer *internal.Analyzer
	nav      *routeRecorder
}

var app *application

// routeRecorder is the CLI's navigator: there are no pages to switch, so it
// remembers the last route for the command to act on.
type routeRecorder struct {
	mu    sync.Mutex
	route string
}

func (r *routeRecorder) Navigate(route string) {
	r.mu.Lock()
	r.route = route
	r.mu.Unlock()
	internal.LogDebug("Navigate to %s", route)
}

func (r *routeRecorder) Route() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.route
}

func setupApp(cmd *cobra.Command) error {
	cfg, err := internal.LoadConfig(configPath, cmd.Flags())
	if err != nil {
		return err
	}
	if !verbose {
		level, _ := internal.ParseLogLevel(cfg.LogLevel)
		internal.SetLogLevel(level)
	}

	snapshots, err := internal.NewSnapshotStore(cfg.Storage, cfg.StateDir)
	if err != nil {
		return err
	}

	nav := &routeRecorder{}
	store := internal.NewStore(snapshots,
		internal.WithNavigator(nav),
		internal.WithLoginDelay(cfg.LoginDelay),
	)
	store.Subscribe(func(state internal.AuthState, session *internal.Session) {
		if session != nil {
			internal.LogDebug("Session %s is %s (%d usage events)", session.ID, state, len(session.UsageHistory))
			return
		}
		internal.LogDebug("Session is %s", state)
	})
	restored := store.Restore()

	app = &application{
		config:   cfg,
		store:    store,
		restored: restored,
		analyzer: internal.NewAnalyzer(internal.NewSimulatedBackend(cfg.AnalysisDelay, nil)),
		nav:      nav,
	}
	return nil
}

// requireLogin gates commands that need an active session
func requireLogin() error {
	if !app.store.RequireAuth() {
		return fmt.Errorf("%w: run 'neuralguard login' first", internal.ErrNotAuthenticated)
	}
	return nil
}
