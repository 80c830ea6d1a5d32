package metric

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/packfinderz-metrics/internal/aggregation"
	"github.com/angelmondragon/packfinderz-metrics/internal/cache"
	"github.com/angelmondragon/packfinderz-metrics/internal/daterange"
	"github.com/angelmondragon/packfinderz-metrics/internal/results"
	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
	pkgerrors "github.com/angelmondragon/packfinderz-metrics/pkg/errors"
)

const anonymousScope = "anonymous"

// Calculate returns the metric's result for req, served from cache when the
// metric has a TTL and the key is present.
func (m *Metric) Calculate(ctx context.Context, req Request) (*results.Snapshot, error) {
	if !m.Authorized(ctx, req) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "metric "+m.uriKey+" is not available")
	}
	in, err := m.input(req)
	if err != nil {
		return nil, err
	}
	key, err := m.KeyFor(req)
	if err != nil {
		return nil, err
	}
	return m.remember(ctx, key, func(ctx context.Context) (results.Result, error) {
		return m.strategy.Calculate(ctx, in)
	})
}

// Trend breaks a value metric down per time bucket. An empty unit is chosen
// from the range token.
func (m *Metric) Trend(ctx context.Context, req Request, unit enums.BucketUnit) (*results.Snapshot, error) {
	value, ok := valueStrategy(m.strategy)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeConfiguration, fmt.Sprintf("metric %s is a %s metric; trends need a value metric", m.uriKey, m.Kind()))
	}
	if unit != "" && !unit.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown bucket unit %q", unit))
	}
	if !m.Authorized(ctx, req) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "metric "+m.uriKey+" is not available")
	}
	in, err := m.input(req)
	if err != nil {
		return nil, err
	}
	label := string(unit)
	if label == "" {
		label = "auto"
	}
	key, err := m.keyFor(req, "trend="+label)
	if err != nil {
		return nil, err
	}
	strategy := aggregation.Trend{Aggregate: value.Aggregate, Unit: unit, ShowSum: true}
	return m.remember(ctx, key, func(ctx context.Context) (results.Result, error) {
		return strategy.Calculate(ctx, in)
	})
}

// Cached returns the stored result for req without computing. A missing entry
// is cache.ErrNotCached.
func (m *Metric) Cached(ctx context.Context, req Request) (*results.Snapshot, error) {
	if m.env.Cache == nil {
		return nil, cache.ErrNotCached
	}
	key, err := m.KeyFor(req)
	if err != nil {
		return nil, err
	}
	raw, err := m.env.Cache.Lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	var snap results.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return &snap, nil
}

// Forget drops every cached result of this metric.
func (m *Metric) Forget(ctx context.Context) (int, error) {
	if m.env.Cache == nil {
		return 0, nil
	}
	return m.env.Cache.InvalidateMetric(ctx, m.uriKey)
}

// KeyFor returns the cache key req maps to.
func (m *Metric) KeyFor(req Request) (string, error) {
	return m.keyFor(req)
}

func (m *Metric) keyFor(req Request, extra ...string) (string, error) {
	token, err := m.token(req.Range)
	if err != nil {
		return "", err
	}
	params := cache.KeyParams{
		Metric:   m.uriKey,
		Range:    token.String(),
		Timezone: req.Timezone,
		Suffix:   m.keySuffix(req, extra...),
	}
	if m.userScoped {
		params.UserScope = req.UserID
		if params.UserScope == "" {
			params.UserScope = anonymousScope
		}
	}
	var keys cache.KeyComposer
	if m.env.Cache != nil {
		keys = m.env.Cache.Keys()
	}
	return keys.Compose(params), nil
}

func (m *Metric) keySuffix(req Request, extra ...string) string {
	parts := make([]string, 0, 4)
	if m.suffix != "" {
		parts = append(parts, m.suffix)
	}
	if m.Kind() == enums.MetricKindTable {
		if req.SortBy != "" {
			parts = append(parts, "sort="+req.SortBy+"."+string(req.SortDirection))
		}
		if req.Limit > 0 {
			parts = append(parts, "limit="+strconv.Itoa(req.Limit))
		}
	}
	parts = append(parts, extra...)
	return strings.Join(parts, ";")
}

// CacheKey is the warm-time key; per-user metrics cannot be warmed.
func (m *Metric) CacheKey(p cache.WarmParams) (string, error) {
	if m.userScoped {
		return "", fmt.Errorf("metric %s caches per user and cannot be warmed", m.uriKey)
	}
	return m.KeyFor(Request{Range: p.Range, Timezone: p.Timezone})
}

// Compute calculates the serialized snapshot for a warm combination.
func (m *Metric) Compute(ctx context.Context, p cache.WarmParams) ([]byte, error) {
	in, err := m.input(Request{Range: p.Range, Timezone: p.Timezone})
	if err != nil {
		return nil, err
	}
	snap, err := m.snapshot(ctx, func(ctx context.Context) (results.Result, error) {
		return m.strategy.Calculate(ctx, in)
	})
	if err != nil {
		return nil, err
	}
	return json.Marshal(snap)
}

func (m *Metric) remember(ctx context.Context, key string, calc func(context.Context) (results.Result, error)) (*results.Snapshot, error) {
	if m.env.Cache == nil {
		snap, err := m.snapshot(ctx, calc)
		if err != nil {
			return nil, err
		}
		return &snap, nil
	}
	snap, err := cache.RememberJSON(ctx, m.env.Cache, key, m.ttl, func(ctx context.Context) (results.Snapshot, error) {
		return m.snapshot(ctx, calc)
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (m *Metric) snapshot(ctx context.Context, calc func(context.Context) (results.Result, error)) (results.Snapshot, error) {
	start := time.Now()
	r, err := calc(ctx)
	m.env.Metrics.ObserveCompute(m.uriKey, time.Since(start))
	if err != nil {
		return results.Snapshot{}, fmt.Errorf("calculate %s: %w", m.uriKey, err)
	}
	snap, err := results.Snap(r)
	if err != nil {
		return results.Snapshot{}, err
	}
	return *snap, nil
}

func (m *Metric) input(req Request) (aggregation.Input, error) {
	token, err := m.token(req.Range)
	if err != nil {
		return aggregation.Input{}, err
	}
	loc, err := daterange.LoadLocation(req.Timezone)
	if err != nil {
		return aggregation.Input{}, err
	}
	return aggregation.Input{
		Source:        m.source,
		Range:         token,
		Location:      loc,
		Resolver:      m.resolver(),
		Formatting:    m.formatting,
		SortBy:        req.SortBy,
		SortDirection: req.SortDirection,
		Limit:         req.Limit,
	}, nil
}

func (m *Metric) token(raw string) (daterange.Token, error) {
	if strings.TrimSpace(raw) == "" {
		raw = m.DefaultRange()
	}
	return daterange.ParseToken(raw)
}

func valueStrategy(s aggregation.Strategy) (aggregation.Value, bool) {
	switch v := s.(type) {
	case aggregation.Value:
		return v, true
	case *aggregation.Value:
		if v != nil {
			return *v, true
		}
	}
	return aggregation.Value{}, false
}
