package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/packfinderz-metrics/internal/cache"
	"github.com/angelmondragon/packfinderz-metrics/internal/daterange"
	"github.com/angelmondragon/packfinderz-metrics/pkg/logger"
)

type warmer interface {
	WarmAll(ctx context.Context, targets []cache.Warmable, sets []cache.WarmParams) cache.WarmReport
}

// WarmJobParams configure the cache warm job.
type WarmJobParams struct {
	Logger    *logger.Logger
	Cache     warmer
	Targets   func() []cache.Warmable
	Ranges    []string
	Timezones []string
}

// NewWarmJob validates the configured ranges and timezones up front so a
// typo fails at startup rather than on every cycle.
func NewWarmJob(params WarmJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Cache == nil {
		return nil, fmt.Errorf("cache manager required")
	}
	if params.Targets == nil {
		return nil, fmt.Errorf("warm targets required")
	}
	if len(params.Ranges) == 0 {
		return nil, fmt.Errorf("at least one warm range required")
	}
	for _, r := range params.Ranges {
		if _, err := daterange.ParseToken(r); err != nil {
			return nil, fmt.Errorf("warm range: %w", err)
		}
	}
	for _, tz := range params.Timezones {
		if _, err := daterange.LoadLocation(tz); err != nil {
			return nil, fmt.Errorf("warm timezone: %w", err)
		}
	}
	return &warmJob{
		logg:    params.Logger,
		cache:   params.Cache,
		targets: params.Targets,
		sets:    cache.Combinations(params.Ranges, params.Timezones),
	}, nil
}

type warmJob struct {
	logg    *logger.Logger
	cache   warmer
	targets func() []cache.Warmable
	sets    []cache.WarmParams
}

func (j *warmJob) Name() string { return "cache-warm" }

// Run fails only when every item failed; partial failures are logged per item.
func (j *warmJob) Run(ctx context.Context) error {
	targets := j.targets()
	if len(targets) == 0 {
		j.logg.Info(ctx, "no cacheable metrics to warm")
		return nil
	}
	report := j.cache.WarmAll(ctx, targets, j.sets)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"metrics":        len(targets),
		"combinations":   len(j.sets),
		"warmed":         report.Warmed,
		"already_cached": report.AlreadyCached,
		"errors":         report.Errors,
	})
	j.logg.Info(logCtx, "cache warm cycle complete")
	if report.Errors > 0 && report.Warmed == 0 && report.AlreadyCached == 0 {
		return fmt.Errorf("cache warm: all %d items failed", report.Errors)
	}
	return nil
}
