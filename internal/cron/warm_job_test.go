package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/packfinderz-metrics/internal/cache"
	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
	"github.com/angelmondragon/packfinderz-metrics/pkg/logger"
)

type fakeWarmer struct {
	report  cache.WarmReport
	targets []cache.Warmable
	sets    []cache.WarmParams
	calls   int
}

func (f *fakeWarmer) WarmAll(_ context.Context, targets []cache.Warmable, sets []cache.WarmParams) cache.WarmReport {
	f.calls++
	f.targets = targets
	f.sets = sets
	return f.report
}

type staticTarget struct{ key string }

func (s staticTarget) URIKey() string                              { return s.key }
func (s staticTarget) CacheTTL() cache.TTL                         { return cache.Seconds(60) }
func (s staticTarget) CacheKey(p cache.WarmParams) (string, error) { return s.key + ":" + p.Range, nil }
func (s staticTarget) Compute(context.Context, cache.WarmParams) ([]byte, error) {
	return nil, errors.New("unused")
}

func newWarmJob(t *testing.T, w *fakeWarmer, targets ...cache.Warmable) Job {
	t.Helper()
	job, err := NewWarmJob(WarmJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
		Cache:     w,
		Targets:   func() []cache.Warmable { return targets },
		Ranges:    []string{"TODAY", "30"},
		Timezones: []string{"UTC", "America/Chicago"},
	})
	if err != nil {
		t.Fatalf("NewWarmJob: %v", err)
	}
	return job
}

func TestWarmJobWarmsEveryCombination(t *testing.T) {
	w := &fakeWarmer{report: cache.WarmReport{Warmed: 4}}
	job := newWarmJob(t, w, staticTarget{key: "revenue"})

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if job.Name() != "cache-warm" {
		t.Fatalf("unexpected job name %s", job.Name())
	}
	if len(w.sets) != 4 || w.sets[1].Timezone != "America/Chicago" {
		t.Fatalf("unexpected combinations %v", w.sets)
	}
	if len(w.targets) != 1 {
		t.Fatalf("expected 1 target, got %d", len(w.targets))
	}
}

func TestWarmJobFailsOnlyWhenEverythingFailed(t *testing.T) {
	failed := cache.WarmReport{Errors: 2, Results: []cache.WarmResult{{Status: enums.WarmStatusError}, {Status: enums.WarmStatusError}}}
	job := newWarmJob(t, &fakeWarmer{report: failed}, staticTarget{key: "revenue"})
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error when all items failed")
	}

	partial := cache.WarmReport{Errors: 1, Warmed: 1}
	job = newWarmJob(t, &fakeWarmer{report: partial}, staticTarget{key: "revenue"})
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("partial failure should not fail the job: %v", err)
	}
}

func TestWarmJobWithoutTargetsIsNoop(t *testing.T) {
	w := &fakeWarmer{}
	job := newWarmJob(t, w)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if w.calls != 0 {
		t.Fatalf("expected no warm call, got %d", w.calls)
	}
}

func TestNewWarmJobRejectsBadConfig(t *testing.T) {
	base := WarmJobParams{
		Logger:  logger.New(logger.Options{}),
		Cache:   &fakeWarmer{},
		Targets: func() []cache.Warmable { return nil },
		Ranges:  []string{"30"},
	}
	bad := base
	bad.Ranges = []string{"fortnight"}
	if _, err := NewWarmJob(bad); err == nil {
		t.Fatal("expected invalid range to fail")
	}
	bad = base
	bad.Timezones = []string{"Nowhere/Land"}
	if _, err := NewWarmJob(bad); err == nil {
		t.Fatal("expected invalid timezone to fail")
	}
	bad = base
	bad.Ranges = nil
	if _, err := NewWarmJob(bad); err == nil {
		t.Fatal("expected missing ranges to fail")
	}
	if _, err := NewWarmJob(base); err != nil {
		t.Fatalf("valid config failed: %v", err)
	}
}
