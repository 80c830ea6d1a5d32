package enums

import "fmt"

// MetricKind identifies the aggregation strategy bound to a metric.
type MetricKind string

const (
	MetricKindValue     MetricKind = "value"
	MetricKindTrend     MetricKind = "trend"
	MetricKindPartition MetricKind = "partition"
	MetricKindProgress  MetricKind = "progress"
	MetricKindTable     MetricKind = "table"
)

var validMetricKindValues = []MetricKind{
	MetricKindValue,
	MetricKindTrend,
	MetricKindPartition,
	MetricKindProgress,
	MetricKindTable,
}

// String implements fmt.Stringer.
func (m MetricKind) String() string {
	return string(m)
}

// IsValid reports whether the value is a known metric kind.
func (m MetricKind) IsValid() bool {
	for _, candidate := range validMetricKindValues {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMetricKind converts the raw string to a MetricKind.
func ParseMetricKind(value string) (MetricKind, error) {
	for _, candidate := range validMetricKindValues {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid metric kind %q", value)
}
