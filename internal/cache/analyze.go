package cache

import (
	"context"
	"fmt"
)

const (
	lowHitRatioThreshold = 0.5
	highMemoryBytes      = 100 * 1024 * 1024
)

// Finding is one advisory produced by AnalyzePerformance.
type Finding struct {
	Code           string `json:"code"`
	Message        string `json:"message"`
	Recommendation string `json:"recommendation"`
}

// Analysis is the outcome of AnalyzePerformance.
type Analysis struct {
	Stats       Stats     `json:"stats"`
	MemoryBytes *int64    `json:"memory_bytes,omitempty"`
	Findings    []Finding `json:"findings"`
	Healthy     bool      `json:"healthy"`
}

// AnalyzePerformance flags a low hit ratio once traffic exists, and high memory
// use when the store reports it. Findings are advisory.
func (m *Manager) AnalyzePerformance(ctx context.Context) Analysis {
	stats := m.Stats()
	out := Analysis{Stats: stats, Findings: []Finding{}}

	if stats.Hits+stats.Misses > 0 && stats.HitRatio < lowHitRatioThreshold {
		out.Findings = append(out.Findings, Finding{
			Code:           "low_hit_ratio",
			Message:        fmt.Sprintf("hit ratio %.2f is below %.2f", stats.HitRatio, lowHitRatioThreshold),
			Recommendation: "increase metric cache TTLs or warm frequently requested ranges",
		})
	}

	if reporter, ok := m.store.(MemoryReporter); ok {
		used, err := reporter.MemoryUsage(ctx)
		if err != nil {
			m.logg.Warn(m.logg.WithField(ctx, "error", err.Error()), "cache memory usage unavailable")
		} else {
			out.MemoryBytes = &used
			if used > highMemoryBytes {
				out.Findings = append(out.Findings, Finding{
					Code:           "high_memory_usage",
					Message:        fmt.Sprintf("cache uses %d MB", used/(1024*1024)),
					Recommendation: "shorten TTLs or invalidate unused metric keys",
				})
			}
		}
	}

	out.Healthy = len(out.Findings) == 0
	return out
}
