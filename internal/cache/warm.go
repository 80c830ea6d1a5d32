package cache

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
)

// WarmParams is one parameter combination to precompute.
type WarmParams struct {
	Range    string `json:"range"`
	Timezone string `json:"timezone"`
}

// Warmable is anything the Manager can precompute: usually a metric.
type Warmable interface {
	URIKey() string
	CacheTTL() TTL
	CacheKey(p WarmParams) (string, error)
	Compute(ctx context.Context, p WarmParams) ([]byte, error)
}

// WarmResult is the outcome for one combination.
type WarmResult struct {
	Metric   string           `json:"metric"`
	Range    string           `json:"range"`
	Timezone string           `json:"timezone"`
	Key      string           `json:"key,omitempty"`
	Status   enums.WarmStatus `json:"status"`
	Message  string           `json:"message,omitempty"`
}

// WarmReport summarizes a warm run.
type WarmReport struct {
	Results       []WarmResult `json:"results"`
	Warmed        int          `json:"warmed"`
	AlreadyCached int          `json:"already_cached"`
	Errors        int          `json:"errors"`
}

func (r *WarmReport) add(res WarmResult) {
	r.Results = append(r.Results, res)
	switch res.Status {
	case enums.WarmStatusWarmed:
		r.Warmed++
	case enums.WarmStatusAlreadyCached:
		r.AlreadyCached++
	case enums.WarmStatusError:
		r.Errors++
	}
}

// Merge folds other into r.
func (r *WarmReport) Merge(other WarmReport) {
	for _, res := range other.Results {
		r.add(res)
	}
}

// Combinations returns ranges x timezones in a stable order.
func Combinations(ranges, timezones []string) []WarmParams {
	if len(timezones) == 0 {
		timezones = []string{"UTC"}
	}
	out := make([]WarmParams, 0, len(ranges)*len(timezones))
	for _, r := range ranges {
		for _, tz := range timezones {
			out = append(out, WarmParams{Range: r, Timezone: tz})
		}
	}
	return out
}

// Warm precomputes target for every combination using a bounded pool. Entries
// already present are left untouched, and one failure never stops the batch.
func (m *Manager) Warm(ctx context.Context, target Warmable, sets []WarmParams) WarmReport {
	results := make([]WarmResult, len(sets))
	var g errgroup.Group
	g.SetLimit(m.warmConcurrency)
	for i, params := range sets {
		g.Go(func() error {
			results[i] = m.warmOne(ctx, target, params)
			return nil
		})
	}
	_ = g.Wait()

	var report WarmReport
	for _, res := range results {
		report.add(res)
		m.metrics.IncWarm(res.Status.String())
	}
	fields := map[string]any{
		"metric":         target.URIKey(),
		"warmed":         report.Warmed,
		"already_cached": report.AlreadyCached,
		"errors":         report.Errors,
	}
	m.logg.Info(m.logg.WithFields(ctx, fields), "cache warm finished")
	return report
}

// WarmAll runs Warm for each target and merges the reports.
func (m *Manager) WarmAll(ctx context.Context, targets []Warmable, sets []WarmParams) WarmReport {
	var report WarmReport
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			break
		}
		report.Merge(m.Warm(ctx, target, sets))
	}
	return report
}

func (m *Manager) warmOne(ctx context.Context, target Warmable, params WarmParams) WarmResult {
	res := WarmResult{Metric: target.URIKey(), Range: params.Range, Timezone: params.Timezone}
	fail := func(err error) WarmResult {
		res.Status = enums.WarmStatusError
		res.Message = err.Error()
		m.logg.Warn(m.logg.WithFields(ctx, map[string]any{
			"metric":   res.Metric,
			"range":    res.Range,
			"timezone": res.Timezone,
			"error":    res.Message,
		}), "cache warm item failed")
		return res
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	ttl := target.CacheTTL()
	if !ttl.Cacheable() {
		return fail(fmt.Errorf("metric %s does not cache results", res.Metric))
	}
	key, err := target.CacheKey(params)
	if err != nil {
		return fail(err)
	}
	res.Key = key

	cached, err := m.store.Has(ctx, key)
	if err != nil {
		return fail(err)
	}
	if cached {
		res.Status = enums.WarmStatusAlreadyCached
		return res
	}
	value, err := target.Compute(ctx, params)
	if err != nil {
		return fail(err)
	}
	if err := m.Put(ctx, key, value, ttl); err != nil {
		return fail(err)
	}
	res.Status = enums.WarmStatusWarmed
	return res
}
