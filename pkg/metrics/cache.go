package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Cache operation labels.
const (
	OpHit    = "hit"
	OpMiss   = "miss"
	OpWrite  = "write"
	OpDelete = "delete"
)

// CacheMetrics exports metric-cache activity.
type CacheMetrics struct {
	operations  *prometheus.CounterVec
	invalidated prometheus.Counter
	warm        *prometheus.CounterVec
	compute     *prometheus.HistogramVec
}

// NewCacheMetrics registers the cache collectors on the provided registerer.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	if reg == nil {
		return &CacheMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "metric_cache_operations_total",
		Help: "Metric cache operations by kind (hit, miss, write, delete).",
	}, []string{"op"})
	invalidated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "metric_cache_invalidated_keys_total",
		Help: "Keys removed through pattern invalidation.",
	})
	warm := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "metric_cache_warm_results_total",
		Help: "Cache warming outcomes by status.",
	}, []string{"status"})
	compute := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "metric_compute_duration_seconds",
		Help:    "Time spent computing a metric result on cache miss.",
		Buckets: prometheus.DefBuckets,
	}, []string{"metric"})
	reg.MustRegister(operations, invalidated, warm, compute)
	return &CacheMetrics{
		operations:  operations,
		invalidated: invalidated,
		warm:        warm,
		compute:     compute,
	}
}

// IncOperation increments the counter for op.
func (c *CacheMetrics) IncOperation(op string) {
	if c == nil || c.operations == nil {
		return
	}
	c.operations.WithLabelValues(op).Inc()
}

// AddOperation adds n to the counter for op.
func (c *CacheMetrics) AddOperation(op string, n int) {
	if c == nil || c.operations == nil || n <= 0 {
		return
	}
	c.operations.WithLabelValues(op).Add(float64(n))
}

// AddInvalidated records keys removed by a pattern invalidation.
func (c *CacheMetrics) AddInvalidated(n int) {
	if c == nil || c.invalidated == nil || n <= 0 {
		return
	}
	c.invalidated.Add(float64(n))
}

// IncWarm records one warming outcome.
func (c *CacheMetrics) IncWarm(status string) {
	if c == nil || c.warm == nil {
		return
	}
	c.warm.WithLabelValues(normalizeLabel(status)).Inc()
}

// ObserveCompute records how long a metric took to compute.
func (c *CacheMetrics) ObserveCompute(metric string, duration time.Duration) {
	if c == nil || c.compute == nil {
		return
	}
	c.compute.WithLabelValues(normalizeLabel(metric)).Observe(duration.Seconds())
}
