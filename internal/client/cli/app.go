package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/offsync/internal/client/client"
	"github.com/dmitrijs2005/offsync/internal/client/config"
	"github.com/dmitrijs2005/offsync/internal/client/connectivity"
	"github.com/dmitrijs2005/offsync/internal/client/services"
	"github.com/dmitrijs2005/offsync/internal/client/store"
	"github.com/dmitrijs2005/offsync/internal/filex"
	"github.com/dmitrijs2005/offsync/internal/logging"
)

// App is one configured instance of the sync engine.
type App struct {
	config    *config.Config
	logger    logging.Logger
	store     *store.Store
	monitor   *connectivity.Monitor
	prober    *connectivity.Prober
	scheduler *services.Scheduler
	binding   *services.Binding

	// offline pins connectivity to false and disables probing.
	offline bool
}

// NewApp opens the local store, creating its directory if needed. Unless
// offline, it probes the remote once so connectivity starts out accurate.
func NewApp(ctx context.Context, c *config.Config, offline bool, logOut io.Writer) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(c.LogFormat, c.LogLevel, logOut)
	if err != nil {
		return nil, err
	}

	if _, err := filex.EnsureParentDir(c.DatabasePath); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrStoreUnavailable, err)
	}

	st := store.New(c.DatabasePath,
		store.WithMaxSizeBytes(c.MaxStorageBytes),
		store.WithLogger(logger.With("component", "store")),
	)
	if err := st.Initialize(ctx); err != nil {
		return nil, err
	}

	remote, err := client.NewHTTPClient(c.RemoteBaseURL, c.HealthPath, c.RequestTimeout)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	repos := services.NewRepositories(st)
	monitor := connectivity.NewMonitor(false, logger.With("component", "connectivity"))
	scheduler := services.NewScheduler(remote, monitor, repos, logger.With("component", "sync"),
		services.WithMaxRetries(c.MaxRetries))

	a := &App{
		config:    c,
		logger:    logger,
		store:     st,
		monitor:   monitor,
		prober:    connectivity.NewProber(remote, monitor, c.OnlineCheckInterval, logger.With("component", "prober")),
		scheduler: scheduler,
		offline:   offline,
	}
	if !offline {
		a.prober.Probe(ctx)
	}

	a.binding = services.NewBinding(ctx, services.BindingDeps{
		Store:        st,
		Repos:        repos,
		Connectivity: monitor,
		Scheduler:    scheduler,
		Logger:       logger.With("component", "binding"),
		ListLimit:    c.AssessmentListLimit,
	})
	return a, nil
}

func (a *App) Close() error {
	return a.store.Close()
}

// StartOnlineStatusWatcher probes the remote on the configured interval
// until ctx is done. It returns at once when the app is offline.
func (a *App) StartOnlineStatusWatcher(ctx context.Context) {
	if a.offline {
		return
	}
	a.prober.Run(ctx)
}
