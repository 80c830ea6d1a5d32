package results

import (
	"encoding/json"
	"math"

	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
)

// Progress colors by percentage reached.
const (
	ColorComplete = "#10B981"
	ColorHigh     = "#3B82F6"
	ColorMedium   = "#F59E0B"
	ColorLow      = "#EF4444"
)

// ProgressResult measures a value against a target.
type ProgressResult struct {
	Formatting
	value                 float64
	target                float64
	AvoidUnwantedProgress bool
	AllowZero             bool
}

// NewProgress builds a progress result.
func NewProgress(value, target float64) *ProgressResult {
	return &ProgressResult{value: value, target: target}
}

// WithFormatting replaces the display directives.
func (r *ProgressResult) WithFormatting(f Formatting) *ProgressResult {
	r.Formatting = f
	return r
}

// AvoidingUnwantedProgress caps the percentage at 100.
func (r *ProgressResult) AvoidingUnwantedProgress(avoid bool) *ProgressResult {
	r.AvoidUnwantedProgress = avoid
	return r
}

func (r *ProgressResult) Kind() enums.MetricKind {
	return enums.MetricKindProgress
}

// Value returns the transformed value.
func (r *ProgressResult) Value() float64 {
	return r.Apply(r.value)
}

// Target returns the transformed target.
func (r *ProgressResult) Target() float64 {
	return r.Apply(r.target)
}

// Percentage is value/target*100 rounded to two decimals, 0 for a zero target.
// Only value == target reports exactly 100; near misses on either side stay
// one hundredth away so the percentage agrees with IsComplete and ExceedsTarget.
func (r *ProgressResult) Percentage() float64 {
	value, target := r.Value(), r.Target()
	if target == 0 {
		return 0
	}
	pct := round2(value / target * 100)
	if pct == 100 && value != target {
		if value < target {
			pct = 99.99
		} else {
			pct = 100.01
		}
	}
	if r.AvoidUnwantedProgress {
		pct = math.Min(pct, 100)
	}
	return pct
}

// Remaining is max(0, target-value).
func (r *ProgressResult) Remaining() float64 {
	return math.Max(0, r.Target()-r.Value())
}

func (r *ProgressResult) IsComplete() bool {
	return r.Target() != 0 && r.Value() >= r.Target()
}

func (r *ProgressResult) ExceedsTarget() bool {
	return r.Target() != 0 && r.Value() > r.Target()
}

// Color maps the percentage to a status color.
func (r *ProgressResult) Color() string {
	pct := r.Percentage()
	switch {
	case pct >= 100:
		return ColorComplete
	case pct >= 75:
		return ColorHigh
	case pct >= 50:
		return ColorMedium
	}
	return ColorLow
}

func (r *ProgressResult) HasNoData() bool {
	return r.Target() == 0 || (r.Value() == 0 && !r.AllowZero)
}

type progressPayload struct {
	Value              float64 `json:"value"`
	Target             float64 `json:"target"`
	Remaining          float64 `json:"remaining"`
	FormattedValue     string  `json:"formatted_value"`
	FormattedTarget    string  `json:"formatted_target"`
	FormattedRemaining string  `json:"formatted_remaining"`
	Percentage         float64 `json:"percentage"`
	IsComplete         bool    `json:"is_complete"`
	ExceedsTarget      bool    `json:"exceeds_target"`
	ProgressColor      string  `json:"progress_color"`
	HasNoData          bool    `json:"has_no_data"`
}

func (r *ProgressResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(progressPayload{
		Value:              r.Value(),
		Target:             r.Target(),
		Remaining:          r.Remaining(),
		FormattedValue:     r.Display(r.Value()),
		FormattedTarget:    r.Display(r.Target()),
		FormattedRemaining: r.Display(r.Remaining()),
		Percentage:         r.Percentage(),
		IsComplete:         r.IsComplete(),
		ExceedsTarget:      r.ExceedsTarget(),
		ProgressColor:      r.Color(),
		HasNoData:          r.HasNoData(),
	})
}
