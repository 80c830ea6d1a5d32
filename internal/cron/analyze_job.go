package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/packfinderz-metrics/internal/cache"
	"github.com/angelmondragon/packfinderz-metrics/pkg/logger"
)

type analyzer interface {
	AnalyzePerformance(ctx context.Context) cache.Analysis
}

// NewCacheReportJob logs the cache analysis every cycle and warns on findings.
func NewCacheReportJob(logg *logger.Logger, cache analyzer) (Job, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cache == nil {
		return nil, fmt.Errorf("cache manager required")
	}
	return &cacheReportJob{logg: logg, cache: cache}, nil
}

type cacheReportJob struct {
	logg  *logger.Logger
	cache analyzer
}

func (j *cacheReportJob) Name() string { return "cache-report" }

func (j *cacheReportJob) Run(ctx context.Context) error {
	a := j.cache.AnalyzePerformance(ctx)
	fields := map[string]any{
		"hits":      a.Stats.Hits,
		"misses":    a.Stats.Misses,
		"hit_ratio": a.Stats.HitRatio,
		"healthy":   a.Healthy,
	}
	if a.MemoryBytes != nil {
		fields["memory_bytes"] = *a.MemoryBytes
	}
	logCtx := j.logg.WithFields(ctx, fields)
	j.logg.Info(logCtx, "cache report")
	for _, f := range a.Findings {
		j.logg.Warn(j.logg.WithFields(logCtx, map[string]any{"finding": f.Code, "recommendation": f.Recommendation}), f.Message)
	}
	return nil
}
