// Package app assembles the acquisition engine from configuration. It is
// shared by the HTTP server and the command line tool.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"spacetime-service/internal/adapters/cache"
	"spacetime-service/internal/adapters/geocode"
	"spacetime-service/internal/adapters/routes"
	"spacetime-service/internal/config"
	"spacetime-service/internal/platform/db"
	"spacetime-service/internal/ports"
	"spacetime-service/internal/services"
)

// Engine bundles the services built from a Config.
type Engine struct {
	Cache      *cache.ResultCache
	Guard      *services.CostGuard
	Client     *services.MatrixClient
	Batcher    *services.Batcher
	Sparsifier *services.Sparsifier
	Grids      *services.GridBuilder

	closers []func() error
}

// OpenStore opens the configured cache backend. The returned close function
// releases its connections. SQL backends need their drivers blank-imported
// by the caller.
func OpenStore(ctx context.Context, cfg *config.Config) (ports.ResultStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.CacheBackend {
	case config.BackendMemory:
		return cache.NewMemoryStore(), noop, nil

	case config.BackendFile:
		return cache.NewFileStore(cfg.CacheDir), noop, nil

	case config.BackendSqlite:
		sqlDB, err := db.OpenSqlite(cfg.SqlitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := cache.InitSqliteSchema(sqlDB); err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		return cache.NewSqliteStore(sqlDB), sqlDB.Close, nil

	case config.BackendPostgres:
		sqlDB, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := cache.InitPostgresSchema(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		return cache.NewSQLStore(sqlDB), sqlDB.Close, nil

	case config.BackendRedis:
		rdb, err := cache.OpenRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		return cache.NewRedisStore(rdb, ""), rdb.Close, nil

	case config.BackendBadger:
		bdb, err := cache.OpenBadger(cfg.BadgerPath)
		if err != nil {
			return nil, nil, err
		}
		return cache.NewBadgerStore(bdb), bdb.Close, nil
	}

	return nil, nil, &config.ConfigError{Field: "CACHE_BACKEND", Message: fmt.Sprintf("unsupported backend %q", cfg.CacheBackend)}
}

// New builds the engine. policy decides on queries at or above the cost threshold.
func New(ctx context.Context, cfg *config.Config, policy ports.CostPolicy) (*Engine, error) {
	store, closeStore, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open cache store: %w", err)
	}
	log.Printf("cache backend=%s", store.Describe())

	e := &Engine{
		Cache:   cache.NewResultCache(store),
		closers: []func() error{closeStore},
	}

	var (
		provider ports.RouteMatrixProvider
		geocoder ports.ReverseGeocoder
	)
	switch cfg.RoutesProvider {
	case config.ProviderMock:
		log.Printf("routes provider=mock: travel times are straight-line estimates")
		provider = routes.NewMockProvider()
	default:
		p, err := routes.NewGoogleProvider(cfg.GoogleAPIKey, routes.WithQPS(cfg.RoutesQPS))
		if err != nil {
			e.Close()
			return nil, err
		}
		g, err := geocode.NewGoogleGeocoder(cfg.GoogleAPIKey)
		if err != nil {
			e.Close()
			return nil, err
		}
		provider = p
		geocoder = geocode.NewCachedGeocoder(g, e.Cache, cfg.GeocodeCacheTTL)
	}

	e.Guard = services.NewCostGuard(policy)
	e.Guard.Rate = cfg.CostPerElement
	e.Guard.Threshold = cfg.CostThreshold

	e.Client = services.NewMatrixClient(provider, e.Cache, e.Guard,
		services.WithResultTTL(cfg.CacheTTL),
		services.WithRetry(cfg.MaxAttempts, cfg.RateLimitCooldown),
	)
	e.Batcher = services.NewBatcher(e.Client, cfg.FetchConcurrency)
	e.Sparsifier = services.NewSparsifier(e.Client, cfg.FetchConcurrency)
	e.Grids = services.NewGridBuilder(geocoder, e.Sparsifier, cfg.FetchConcurrency)

	return e, nil
}

// Close releases the cache backend.
func (e *Engine) Close() error {
	var errs []error
	for _, c := range e.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
