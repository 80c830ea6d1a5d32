package cron

import (
	"context"
	"testing"

	"github.com/angelmondragon/packfinderz-metrics/internal/cache"
	"github.com/angelmondragon/packfinderz-metrics/pkg/logger"
)

type fakeAnalyzer struct {
	calls int
}

func (f *fakeAnalyzer) AnalyzePerformance(context.Context) cache.Analysis {
	f.calls++
	used := int64(200 << 20)
	return cache.Analysis{
		Stats:       cache.Stats{Hits: 1, Misses: 9, HitRatio: 0.1},
		MemoryBytes: &used,
		Findings:    []cache.Finding{{Code: "low_hit_ratio", Message: "hit ratio 0.10 is below 0.50"}},
	}
}

func TestCacheReportJobRuns(t *testing.T) {
	a := &fakeAnalyzer{}
	job, err := NewCacheReportJob(logger.New(logger.Options{ServiceName: "test"}), a)
	if err != nil {
		t.Fatalf("NewCacheReportJob: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if a.calls != 1 {
		t.Fatalf("expected one analysis, got %d", a.calls)
	}
	if _, err := NewCacheReportJob(nil, a); err == nil {
		t.Fatal("expected logger to be required")
	}
}
