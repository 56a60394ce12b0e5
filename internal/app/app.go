// Package app wires configuration, logging, the event bus, metrics and the
// catalog into the services the commands run on.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"bazaar/internal/catalog"
	"bazaar/internal/config"
	"bazaar/internal/eventbus"
	"bazaar/internal/logging"
	"bazaar/internal/search"
	"bazaar/internal/telemetry"
)

// DefaultSeedCount is how many generated listings an empty catalog gets
const DefaultSeedCount = 200

// Options come from command line flags and override the config file
type Options struct {
	ConfigPath  string // explicit config file; .bazaar.toml in the working directory otherwise
	CatalogPath string
	LogFile     string
}

// App holds the wired services of one bazaar run
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Bus      eventbus.EventBus
	Store    *catalog.Store
	Provider search.Provider
	Metrics  *telemetry.Metrics

	cancel  context.CancelFunc
	closers []func()
}

// New loads configuration and opens every service. Call Close when done.
func New(ctx context.Context, opts Options) (*App, error) {
	cfgSvc := config.NewConfigService()
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigPath != "" {
		cfg, err = cfgSvc.LoadFromPath(opts.ConfigPath)
	} else {
		cfg, err = cfgSvc.Load()
	}
	if err != nil {
		return nil, err
	}
	if opts.CatalogPath != "" {
		cfg.Catalog.Path = opts.CatalogPath
	}
	if opts.LogFile != "" {
		cfg.Log.File = opts.LogFile
	}

	logger, syncLog, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	a := &App{
		Config: cfg,
		Logger: logger,
		cancel: cancel,
	}
	a.closers = append(a.closers, syncLog)

	a.Bus = eventbus.New(eventbus.WithLogger(logger.Named("eventbus")))
	a.closers = append(a.closers, a.Bus.Close)
	a.logEvents()

	a.Metrics = telemetry.New()
	a.Metrics.Subscribe(a.Bus)
	a.closers = append(a.closers, a.Metrics.Unsubscribe)
	if cfg.Metrics.Addr != "" {
		if err := a.Metrics.Serve(ctx, cfg.Metrics.Addr, logger.Named("metrics")); err != nil {
			a.Close()
			return nil, err
		}
	}

	store, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = store
	a.closers = append(a.closers, func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close catalog", zap.Error(err))
		}
	})

	minDelay, maxDelay := cfg.Catalog.LatencyRange()
	a.Provider = catalog.WithLatency(
		catalog.NewProvider(store, cfg.Search.ResultLimit, logger.Named("catalog")),
		minDelay, maxDelay, clock.RealClock{},
	)

	a.Bus.Publish(eventbus.ConfigLoadedEvent{Path: opts.ConfigPath})
	return a, nil
}

// NewCoordinator creates a search coordinator over the catalog, presenting to p
func (a *App) NewCoordinator(p search.Presenter) *search.Coordinator {
	return search.New(a.Provider, p,
		search.WithDebounce(a.Config.Search.Debounce()),
		search.WithMaxWait(a.Config.Search.MaxWait()),
		search.WithLogger(a.Logger.Named("search")),
		search.WithEventBus(a.Bus),
	)
}

// Seed fills an empty catalog with n generated listings plus the featured ones
func (a *App) Seed(ctx context.Context, n int, seed uint64) (int, error) {
	inserted, err := catalog.Seed(ctx, a.Store, n, seed)
	if err != nil {
		a.Bus.Publish(eventbus.ErrorEvent{Message: "catalog seeding failed", Err: err})
		return 0, err
	}
	if inserted > 0 {
		a.Bus.Publish(eventbus.CatalogSeededEvent{Inserted: inserted})
	}
	return inserted, nil
}

// EnsureSeeded seeds the catalog on first use so a fresh install has something to search
func (a *App) EnsureSeeded(ctx context.Context) error {
	if _, err := a.Seed(ctx, DefaultSeedCount, 1); err != nil {
		return fmt.Errorf("failed to prepare catalog: %w", err)
	}
	return nil
}

// Close releases every service in reverse order of opening
func (a *App) Close() {
	a.cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// logEvents records application-level events in the log
func (a *App) logEvents() {
	a.Bus.Subscribe(eventbus.EventConfigLoaded, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.ConfigLoadedEvent); ok {
			path := event.Path
			if path == "" {
				path = "defaults"
			}
			a.Logger.Info("configuration loaded",
				zap.String("source", path),
				zap.Duration("debounce", a.Config.Search.Debounce()),
				zap.String("catalog", a.Config.Catalog.Path))
		}
	})
	a.Bus.Subscribe(eventbus.EventCatalogSeeded, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.CatalogSeededEvent); ok {
			a.Logger.Info("catalog seeded", zap.Int("inserted", event.Inserted))
		}
	})
	a.Bus.Subscribe(eventbus.EventError, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.ErrorEvent); ok {
			a.Logger.Error(event.Message, zap.Error(event.Err))
		}
	})
}
