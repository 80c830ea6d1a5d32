package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/packfinderz-metrics/internal/cron"
	"github.com/angelmondragon/packfinderz-metrics/internal/engine"
	"github.com/angelmondragon/packfinderz-metrics/pkg/config"
	"github.com/angelmondragon/packfinderz-metrics/pkg/instance"
	"github.com/angelmondragon/packfinderz-metrics/pkg/logger"
	"github.com/angelmondragon/packfinderz-metrics/pkg/metrics"
)

const serviceKind = "warm-worker"

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceKind})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = serviceKind

	logg = logger.New(logger.Options{
		ServiceName: serviceKind,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	eng, err := engine.New(context.Background(), cfg, logg, prometheus.DefaultRegisterer)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap metrics engine", err)
		os.Exit(1)
	}
	defer func() {
		if err := eng.Close(); err != nil {
			logg.Error(context.Background(), "error closing connections", err)
		}
	}()

	lock, err := newLock(cfg, eng)
	if err != nil {
		logg.Error(context.Background(), "failed to create warm lock", err)
		os.Exit(1)
	}

	warmJob, err := cron.NewWarmJob(cron.WarmJobParams{
		Logger:    logg,
		Cache:     eng.Cache,
		Targets:   eng.Registry.Warmables,
		Ranges:    cfg.Cache.WarmRanges,
		Timezones: cfg.Cache.WarmTimezones,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create warm job", err)
		os.Exit(1)
	}
	reportJob, err := cron.NewCacheReportJob(logg, eng.Cache)
	if err != nil {
		logg.Error(context.Background(), "failed to create cache report job", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(warmJob, reportJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Worker.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create warm service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.ID(),
		"interval":    cfg.Worker.Interval.String(),
		"ranges":      cfg.Cache.WarmRanges,
		"timezones":   cfg.Cache.WarmTimezones,
	})
	logg.Info(ctx, "starting warm worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "warm worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "warm worker shutting down gracefully")
}

// newLock shares a redis lock across replicas; the memory store has nothing
// to share, so a process-local lock is enough.
func newLock(cfg *config.Config, eng *engine.Engine) (cron.Lock, error) {
	if eng.Redis == nil {
		return &cron.LocalLock{}, nil
	}
	env := cfg.App.Env
	if env == "" {
		env = "local"
	}
	return cron.NewRedisLock(eng.Redis, eng.Redis.LockKey(fmt.Sprintf("%s:%s", serviceKind, env)), cfg.Worker.LockTTL)
}
