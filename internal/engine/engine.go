// Package engine wires the configured database, cache store and metric
// catalog shared by the api and warm-worker binaries.
package engine

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/angelmondragon/packfinderz-metrics/internal/cache"
	"github.com/angelmondragon/packfinderz-metrics/internal/catalog"
	"github.com/angelmondragon/packfinderz-metrics/internal/daterange"
	"github.com/angelmondragon/packfinderz-metrics/internal/metric"
	"github.com/angelmondragon/packfinderz-metrics/internal/query"
	"github.com/angelmondragon/packfinderz-metrics/pkg/config"
	"github.com/angelmondragon/packfinderz-metrics/pkg/db"
	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
	"github.com/angelmondragon/packfinderz-metrics/pkg/logger"
	"github.com/angelmondragon/packfinderz-metrics/pkg/metrics"
	"github.com/angelmondragon/packfinderz-metrics/pkg/migrate"
	pkgredis "github.com/angelmondragon/packfinderz-metrics/pkg/redis"
)

// Engine holds the long-lived dependencies of a metrics process.
type Engine struct {
	DB       *db.Client
	Redis    *pkgredis.Client
	Cache    *cache.Manager
	Registry *metric.Registry
	Service  *metric.Service
	Metrics  *metrics.CacheMetrics
}

// New connects to the database and cache store and registers the orders
// dashboard. Redis is only dialed when the redis cache store is configured.
func New(ctx context.Context, cfg *config.Config, logg *logger.Logger, reg prometheus.Registerer) (_ *Engine, err error) {
	e := &Engine{Metrics: metrics.NewCacheMetrics(reg)}
	defer func() {
		if err != nil {
			err = multierr.Append(err, e.Close())
		}
	}()

	e.DB, err = db.New(ctx, cfg.DB, logg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap database: %w", err)
	}
	if err = migrate.MaybeAutoRun(ctx, cfg, logg, e.DB); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	store, err := e.store(ctx, cfg, logg)
	if err != nil {
		return nil, err
	}
	e.Cache, err = cache.NewManager(cache.ManagerParams{
		Store:           store,
		Prefix:          cfg.Cache.Prefix,
		Logger:          logg,
		Metrics:         e.Metrics,
		SingleFlight:    cfg.Cache.SingleFlight,
		WarmConcurrency: cfg.Cache.WarmConcurrency,
	})
	if err != nil {
		return nil, fmt.Errorf("cache manager: %w", err)
	}

	source, err := query.NewSQLSource(e.DB.DB(), cfg.Dashboard.Table, catalog.OrdersTimeField)
	if err != nil {
		return nil, fmt.Errorf("orders source: %w", err)
	}

	e.Registry = metric.NewRegistry(metric.Env{
		Cache:    e.Cache,
		Logger:   logg,
		Resolver: daterange.NewResolver(),
		Metrics:  e.Metrics,
	})
	err = e.Registry.Register(catalog.OrdersDashboard(catalog.Params{
		Source:           source,
		Currency:         cfg.Dashboard.Currency,
		RevenueGoalCents: cfg.Dashboard.RevenueGoalCents,
		TTL:              cache.For(cfg.Cache.DefaultTTL),
	})...)
	if err != nil {
		return nil, fmt.Errorf("register dashboard: %w", err)
	}

	e.Service, err = metric.NewService(e.Registry, logg)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) store(ctx context.Context, cfg *config.Config, logg *logger.Logger) (cache.Store, error) {
	switch cfg.Cache.StoreKind() {
	case enums.CacheStoreMemory:
		return cache.NewMemoryStore(), nil
	case enums.CacheStoreRedis:
		client, err := pkgredis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap redis: %w", err)
		}
		e.Redis = client
		return cache.NewRedisStore(client), nil
	}
	return nil, fmt.Errorf("unsupported cache store %q", cfg.Cache.Store)
}

// Close releases every connection that was opened.
func (e *Engine) Close() error {
	var err error
	if e.Redis != nil {
		err = multierr.Append(err, e.Redis.Close())
	}
	if e.DB != nil {
		err = multierr.Append(err, e.DB.Close())
	}
	return err
}
