package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/swapi-mirror/internal/config"
	"github.com/yungbote/swapi-mirror/internal/data/db"
	apphttp "github.com/yungbote/swapi-mirror/internal/http"
	"github.com/yungbote/swapi-mirror/internal/observability"
	"github.com/yungbote/swapi-mirror/internal/platform/logger"
)

const Version = "0.1.0"

type App struct {
	Log      *logger.Logger
	Cfg      *config.Config
	Store    *db.Store
	Metrics  *observability.Metrics
	Clients  Clients
	Repos    Repos
	Services Services
	Server   *apphttp.Server

	ctx          context.Context
	cancel       context.CancelFunc
	otelShutdown func(context.Context) error
}

type options struct {
	failFast bool
	migrate  bool
	logger   *logger.Logger
}

type Option func(*options)

// WithFailFast sets whether an exhausted SWAPI fetch aborts a sync (the API
// default) or is treated as an empty collection.
func WithFailFast(v bool) Option { return func(o *options) { o.failFast = v } }

// WithMigrate overrides cfg.AutoMigrate.
func WithMigrate(v bool) Option { return func(o *options) { o.migrate = v } }

func WithLogger(log *logger.Logger) Option { return func(o *options) { o.logger = log } }

func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	o := options{failFast: true, migrate: cfg.AutoMigrate}
	for _, opt := range opts {
		opt(&o)
	}

	log := o.logger
	if log == nil {
		l, err := logger.New(cfg.Env)
		if err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
		log = l
	}

	if err := cfg.Validate(); err != nil {
		log.Sync()
		return nil, err
	}

	appCtx, cancel := context.WithCancel(context.Background())
	a := &App{Log: log, Cfg: cfg, ctx: appCtx, cancel: cancel}

	a.otelShutdown = observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "swapi-mirror",
		Environment: cfg.Env,
		Version:     Version,
	})
	a.Metrics = observability.Init(cfg.MetricsEnabled)

	store, err := db.Open(cfg.Database, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init store: %w", err)
	}
	a.Store = store
	if o.migrate {
		if err := store.Migrate(); err != nil {
			a.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Clients = clients
	a.Repos = wireRepos(store.DB(), log)
	a.Services = wireServices(appCtx, log, store.DB(), cfg, a.Repos, clients, o.failFast)

	sqlDB, err := store.DB().DB()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("store handle: %w", err)
	}
	handlers := wireHandlers(log, a.Services, sqlDB)
	a.Server = wireServer(log, cfg, a.Metrics, handlers)
	return a, nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(ctx)
}

// Close stops background syncs and releases every handle. Safe to call twice.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Services.Sync != nil {
		a.Services.Sync.Wait()
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		a.otelShutdown = nil
	}
	if a.Clients.Redis != nil {
		_ = a.Clients.Redis.Close()
		a.Clients.Redis = nil
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Log.Warn("store close failed", "error", err)
		}
		a.Store = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
