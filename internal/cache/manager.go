package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/angelmondragon/packfinderz-metrics/pkg/logger"
	"github.com/angelmondragon/packfinderz-metrics/pkg/metrics"
)

// ErrNotCached is returned by Lookup when the key holds nothing.
var ErrNotCached = errors.New("cache: entry not present")

// Producer computes a value on a cache miss.
type Producer func(ctx context.Context) ([]byte, error)

// Stats are the Manager's operation counters.
type Stats struct {
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	Writes   int64   `json:"writes"`
	Deletes  int64   `json:"deletes"`
	HitRatio float64 `json:"hit_ratio"`
}

// ManagerParams wires a Manager.
type ManagerParams struct {
	Store           Store
	Prefix          string
	Logger          *logger.Logger
	Metrics         *metrics.CacheMetrics
	SingleFlight    bool
	WarmConcurrency int
	Now             func() time.Time
}

// Manager wraps a Store with hit/miss accounting, invalidation and warming.
type Manager struct {
	store           Store
	keys            KeyComposer
	logg            *logger.Logger
	metrics         *metrics.CacheMetrics
	singleFlight    bool
	flight          singleflight.Group
	warmConcurrency int
	now             func() time.Time

	hits    atomic.Int64
	misses  atomic.Int64
	writes  atomic.Int64
	deletes atomic.Int64
}

// NewManager validates params and returns a Manager.
func NewManager(p ManagerParams) (*Manager, error) {
	if p.Store == nil {
		return nil, errors.New("cache store is required")
	}
	if p.WarmConcurrency <= 0 {
		p.WarmConcurrency = 1
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &Manager{
		store:           p.Store,
		keys:            KeyComposer{Prefix: p.Prefix},
		logg:            p.Logger,
		metrics:         p.Metrics,
		singleFlight:    p.SingleFlight,
		warmConcurrency: p.WarmConcurrency,
		now:             p.Now,
	}, nil
}

// Keys returns the composer bound to this manager's prefix.
func (m *Manager) Keys() KeyComposer {
	return m.keys
}

// Store exposes the underlying store.
func (m *Manager) Store() Store {
	return m.store
}

// Get reads key, counting a hit or a miss.
func (m *Manager) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, ok, err := m.store.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if ok {
		m.recordHit()
	} else {
		m.recordMiss()
	}
	return raw, ok, nil
}

// Lookup is Get for callers that treat absence as an error.
func (m *Manager) Lookup(ctx context.Context, key string) ([]byte, error) {
	raw, ok, err := m.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotCached
	}
	return raw, nil
}

// Put stores value under key for the policy's lifetime. A policy that resolves
// to zero stores nothing.
func (m *Manager) Put(ctx context.Context, key string, value []byte, ttl TTL) error {
	d := ttl.Resolve(m.now())
	if d <= 0 {
		return nil
	}
	if err := m.store.Put(ctx, key, value, d); err != nil {
		return fmt.Errorf("cache put %s: %w", key, err)
	}
	m.recordWrite()
	return nil
}

// Has reports whether key is cached without touching the counters.
func (m *Manager) Has(ctx context.Context, key string) (bool, error) {
	return m.store.Has(ctx, key)
}

// Remember returns the cached value for key or computes and stores it.
// Each call counts exactly one hit, or one miss plus one write. Concurrent
// misses on the same key share a single computation when single-flight is on;
// callers that receive the shared value count as hits.
func (m *Manager) Remember(ctx context.Context, key string, ttl TTL, produce Producer) ([]byte, error) {
	if !ttl.Cacheable() {
		m.recordMiss()
		return produce(ctx)
	}

	raw, ok, err := m.store.Get(ctx, key)
	if err != nil {
		m.logg.Warn(m.logg.WithFields(ctx, map[string]any{"cache_key": key, "error": err.Error()}), "cache read failed, recomputing")
	}
	if ok {
		m.recordHit()
		m.logg.Debug(m.logg.WithField(ctx, "cache_key", key), "cache hit")
		return raw, nil
	}

	if !m.singleFlight {
		return m.compute(ctx, key, ttl, produce)
	}

	// The shared computation outlives any single caller; each caller still
	// stops waiting when its own ctx is done.
	computed := false
	ch := m.flight.DoChan(key, func() (any, error) {
		computed = true
		return m.compute(context.WithoutCancel(ctx), key, ttl, produce)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if !computed {
			m.recordHit()
		}
		return res.Val.([]byte), nil
	}
}

func (m *Manager) compute(ctx context.Context, key string, ttl TTL, produce Producer) ([]byte, error) {
	m.recordMiss()
	m.logg.Debug(m.logg.WithField(ctx, "cache_key", key), "cache miss")
	value, err := produce(ctx)
	if err != nil {
		return nil, err
	}
	if err := m.Put(ctx, key, value, ttl); err != nil {
		m.logg.Error(m.logg.WithField(ctx, "cache_key", key), "cache write failed", err)
	}
	return value, nil
}

// Forget removes key and reports whether it existed.
func (m *Manager) Forget(ctx context.Context, key string) (bool, error) {
	n, err := m.store.Forget(ctx, key)
	if err != nil {
		return false, fmt.Errorf("cache forget %s: %w", key, err)
	}
	m.recordDeletes(n)
	return n > 0, nil
}

// InvalidatePattern deletes every key matching the glob. Stores that cannot list
// keys report zero deletions without an error.
func (m *Manager) InvalidatePattern(ctx context.Context, pattern string) (int, error) {
	lister, ok := m.store.(KeyLister)
	if !ok {
		m.logg.Warn(m.logg.WithField(ctx, "pattern", pattern), "cache store cannot list keys; invalidation skipped")
		return 0, nil
	}
	keys, err := lister.Keys(ctx, pattern)
	if err != nil {
		return 0, fmt.Errorf("list keys %q: %w", pattern, err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := m.store.Forget(ctx, keys...)
	m.recordDeletes(n)
	m.metrics.AddInvalidated(n)
	if err != nil {
		return n, fmt.Errorf("invalidate %q: %w", pattern, err)
	}
	m.logg.Info(m.logg.WithFields(ctx, map[string]any{"pattern": pattern, "deleted": n}), "cache invalidated")
	return n, nil
}

// InvalidateMetric drops every cached result of one metric.
func (m *Manager) InvalidateMetric(ctx context.Context, uriKey string) (int, error) {
	return m.InvalidatePattern(ctx, m.keys.MetricPattern(uriKey))
}

// Stats snapshots the counters.
func (m *Manager) Stats() Stats {
	s := Stats{
		Hits:    m.hits.Load(),
		Misses:  m.misses.Load(),
		Writes:  m.writes.Load(),
		Deletes: m.deletes.Load(),
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRatio = float64(s.Hits) / float64(total)
	}
	return s
}

// ResetStats zeroes the counters.
func (m *Manager) ResetStats() {
	m.hits.Store(0)
	m.misses.Store(0)
	m.writes.Store(0)
	m.deletes.Store(0)
}

func (m *Manager) recordHit() {
	m.hits.Add(1)
	m.metrics.IncOperation(metrics.OpHit)
}

func (m *Manager) recordMiss() {
	m.misses.Add(1)
	m.metrics.IncOperation(metrics.OpMiss)
}

func (m *Manager) recordWrite() {
	m.writes.Add(1)
	m.metrics.IncOperation(metrics.OpWrite)
}

func (m *Manager) recordDeletes(n int) {
	if n <= 0 {
		return
	}
	m.deletes.Add(int64(n))
	m.metrics.AddOperation(metrics.OpDelete, n)
}

// RememberJSON is Remember for JSON-encodable values.
func RememberJSON[T any](ctx context.Context, m *Manager, key string, ttl TTL, produce func(context.Context) (T, error)) (T, error) {
	var out T
	raw, err := m.Remember(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, err := produce(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return out, nil
}
