package metric

import (
	"fmt"

	"github.com/angelmondragon/packfinderz-metrics/internal/cache"
	"github.com/angelmondragon/packfinderz-metrics/internal/daterange"
	"github.com/angelmondragon/packfinderz-metrics/pkg/logger"
	"github.com/angelmondragon/packfinderz-metrics/pkg/metrics"
)

// Env is the shared runtime every registered metric computes with.
// A nil Cache disables caching.
type Env struct {
	Cache    *cache.Manager
	Logger   *logger.Logger
	Resolver *daterange.Resolver
	Metrics  *metrics.CacheMetrics
}

// Registry keeps metrics in registration order, keyed by URI key.
type Registry struct {
	env     Env
	metrics []*Metric
	byKey   map[string]*Metric
}

// NewRegistry builds a registry whose metrics share env.
func NewRegistry(env Env) *Registry {
	return &Registry{env: env, byKey: map[string]*Metric{}}
}

// Register binds each metric to the registry's env. URI keys must be unique.
func (r *Registry) Register(ms ...*Metric) error {
	for _, m := range ms {
		if m == nil {
			continue
		}
		if m.uriKey == "" {
			return fmt.Errorf("metric %q has no uri key", m.name)
		}
		if m.strategy == nil || m.source == nil {
			return fmt.Errorf("metric %s needs a strategy and a source", m.uriKey)
		}
		if _, exists := r.byKey[m.uriKey]; exists {
			return fmt.Errorf("metric %s registered twice", m.uriKey)
		}
		m.env = r.env
		r.byKey[m.uriKey] = m
		r.metrics = append(r.metrics, m)
	}
	return nil
}

// Get looks a metric up by URI key.
func (r *Registry) Get(uriKey string) (*Metric, bool) {
	m, ok := r.byKey[uriKey]
	return m, ok
}

// Metrics returns the registered metrics in the order they were added.
func (r *Registry) Metrics() []*Metric {
	out := make([]*Metric, len(r.metrics))
	copy(out, r.metrics)
	return out
}

// Warmables returns the metrics that can be precomputed: cached and not per user.
func (r *Registry) Warmables() []cache.Warmable {
	var out []cache.Warmable
	for _, m := range r.metrics {
		if m.ttl.Cacheable() && !m.userScoped {
			out = append(out, m)
		}
	}
	return out
}

// Cache returns the shared manager, nil when caching is off.
func (r *Registry) Cache() *cache.Manager {
	return r.env.Cache
}
