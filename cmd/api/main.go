package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/packfinderz-metrics/api/controllers"
	"github.com/angelmondragon/packfinderz-metrics/api/routes"
	"github.com/angelmondragon/packfinderz-metrics/internal/engine"
	"github.com/angelmondragon/packfinderz-metrics/pkg/config"
	"github.com/angelmondragon/packfinderz-metrics/pkg/instance"
	"github.com/angelmondragon/packfinderz-metrics/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	readiness := map[string]controllers.Pinger{"db": eng.DB, "redis": nil}
	if eng.Redis != nil {
		readiness["redis"] = eng.Redis
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":         cfg.App.Env,
		"addr":        addr,
		"instance":    instance.ID(),
		"cache_store": cfg.Cache.Store,
		"metrics":     len(eng.Registry.Metrics()),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, eng.Service, readiness, prometheus.DefaultGatherer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server shut down gracefully")
}
