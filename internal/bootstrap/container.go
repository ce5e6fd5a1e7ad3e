package bootstrap

import (
	"context"
	"sync"

	chclient "optionpulse/internal/adapters/clickhouse"
	"optionpulse/internal/adapters/config"
	pgclient "optionpulse/internal/adapters/postgres"
	redisclient "optionpulse/internal/adapters/redis"
	"optionpulse/internal/api"
	"optionpulse/internal/api/health"
	heatmapapi "optionpulse/internal/api/heatmap"
	"optionpulse/internal/domain/catalog"
	"optionpulse/internal/domain/sentiment"
	chrepo "optionpulse/internal/repository/clickhouse"
	pgrepo "optionpulse/internal/repository/postgres"
	heatmapsvc "optionpulse/internal/services/heatmap"
	"optionpulse/internal/services/scoring"
	"optionpulse/internal/workers"
	"optionpulse/pkg/clock"
	"optionpulse/pkg/errors"
	"optionpulse/pkg/logger"
)

// Container holds all application dependencies and their lifecycle
// Components are organized in initialization order
type Container struct {
	// Core configuration & logging
	Config       *config.Config
	Log          *logger.Logger
	ErrorTracker errors.Tracker
	Clock        clock.Clock

	// Infrastructure Layer (Data stores)
	PG    *pgclient.Client
	CH    *chclient.Client
	Redis *redisclient.Client

	// Domain Layer - Repositories
	Catalog catalog.Repository
	Signals sentiment.SignalRepository

	// Domain Layer - Services
	ScoreProvider *scoring.Provider
	ScoreCache    *scoring.ScoreCache
	ResultCache   *heatmapsvc.ResultCache
	Heatmap       *heatmapsvc.Service

	// Application Layer
	Server *api.Server

	// Background Processing
	Scheduler *workers.Scheduler

	// Lifecycle management
	WG      *sync.WaitGroup
	Context context.Context
	Cancel  context.CancelFunc
}

// NewContainer builds the full dependency graph in initialization order
func NewContainer(cfg *config.Config, log *logger.Logger, tracker errors.Tracker) (*Container, error) {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Container{
		Config:       cfg,
		Log:          log,
		ErrorTracker: tracker,
		Clock:        clock.New(),
		WG:           &sync.WaitGroup{},
		Context:      ctx,
		Cancel:       cancel,
	}

	if err := c.initInfrastructure(); err != nil {
		cancel()
		c.Close()
		return nil, err
	}

	c.initRepositories()
	c.initServices()
	c.initServer()
	c.initWorkers()

	return c, nil
}

func (c *Container) initInfrastructure() error {
	pg, err := pgclient.NewClient(c.Config.Postgres)
	if err != nil {
		return errors.Wrap(err, "connecting to postgres")
	}
	c.PG = pg
	c.Log.Info("✓ PostgreSQL connected")

	ch, err := chclient.NewClient(c.Config.ClickHouse)
	if err != nil {
		return errors.Wrap(err, "connecting to clickhouse")
	}
	c.CH = ch
	c.Log.Info("✓ ClickHouse connected")

	rd, err := redisclient.NewClient(c.Config.Redis)
	if err != nil {
		return errors.Wrap(err, "connecting to redis")
	}
	c.Redis = rd
	c.Log.Info("✓ Redis connected")

	return nil
}

func (c *Container) initRepositories() {
	c.Catalog = pgrepo.NewCatalogRepository(c.PG.DB())
	c.Signals = chrepo.NewSignalRepository(c.CH.Conn())
}

func (c *Container) initServices() {
	c.ScoreProvider = scoring.NewProvider(c.Signals, c.Clock, scoring.ProviderConfig{
		SignalLookback:    c.Config.Scoring.SignalLookback,
		RequestsPerMinute: c.Config.Scoring.ProviderRequestsPerMinute,
	})

	c.ScoreCache = scoring.NewScoreCache(c.Redis, c.Clock, c.Config.Scoring.FreshnessWindow)
	c.ResultCache = heatmapsvc.NewResultCache(c.Redis, c.Clock, c.Config.Heatmap.ResultTTL)

	c.Heatmap = heatmapsvc.NewService(c.Clock, c.ScoreCache, c.ScoreProvider, c.ResultCache)
}

func (c *Container) initServer() {
	healthHandler := health.New(
		c.Log,
		c.PG.DB(),
		c.CH.Conn(),
		c.Redis.Client(),
		c.Config.App.Name,
		c.Config.App.Version,
	)

	heatmapHandler := heatmapapi.New(c.Heatmap, c.Catalog, c.Clock)

	c.Server = api.NewServer(api.ServerConfig{
		Port:        c.Config.Server.Port,
		ServiceName: c.Config.App.Name,
		Version:     c.Config.App.Version,
	}, healthHandler, heatmapHandler, c.Log)
}

func (c *Container) initWorkers() {
	c.Scheduler = workers.NewScheduler()
	c.Scheduler.RegisterWorker(workers.NewCacheSweeperWorker(
		c.Heatmap,
		c.Config.Workers.CacheSweeperInterval,
		c.Config.Workers.CacheSweeperEnabled,
	))
}

// Start launches background processing
func (c *Container) Start() error {
	return c.Scheduler.Start(c.Context)
}

// Close releases resources in reverse initialization order
func (c *Container) Close() {
	if c.Scheduler != nil && c.Scheduler.IsRunning() {
		if err := c.Scheduler.Stop(); err != nil {
			c.Log.Errorw("Scheduler shutdown failed", "error", err)
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Log.Errorw("Redis close failed", "error", err)
		}
	}
	if c.CH != nil {
		if err := c.CH.Close(); err != nil {
			c.Log.Errorw("ClickHouse close failed", "error", err)
		}
	}
	if c.PG != nil {
		if err := c.PG.Close(); err != nil {
			c.Log.Errorw("PostgreSQL close failed", "error", err)
		}
	}
}
