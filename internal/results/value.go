package results

import (
	"encoding/json"

	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
)

// ValueResult is a single number, optionally compared with a previous period.
type ValueResult struct {
	Formatting
	value     *float64
	previous  *float64
	AllowZero bool
}

// NewValue builds a result holding v.
func NewValue(v float64) *ValueResult {
	return &ValueResult{value: ptr(v)}
}

// NewEmptyValue builds a result with no value.
func NewEmptyValue() *ValueResult {
	return &ValueResult{}
}

// WithPrevious sets the previous-period value.
func (r *ValueResult) WithPrevious(v float64) *ValueResult {
	r.previous = ptr(v)
	return r
}

// WithFormatting replaces the display directives.
func (r *ValueResult) WithFormatting(f Formatting) *ValueResult {
	r.Formatting = f
	return r
}

// AllowZeroResult makes zero count as data.
func (r *ValueResult) AllowZeroResult(allow bool) *ValueResult {
	r.AllowZero = allow
	return r
}

func (r *ValueResult) Kind() enums.MetricKind {
	return enums.MetricKindValue
}

// Value returns the transformed value.
func (r *ValueResult) Value() (float64, bool) {
	if r.value == nil {
		return 0, false
	}
	return r.Apply(*r.value), true
}

// Previous returns the transformed previous value.
func (r *ValueResult) Previous() (float64, bool) {
	if r.previous == nil {
		return 0, false
	}
	return r.Apply(*r.previous), true
}

func (r *ValueResult) HasNoData() bool {
	v, ok := r.Value()
	return !ok || (v == 0 && !r.AllowZero)
}

// PercentageChange is (current-previous)/previous*100, rounded to two decimals.
// It is absent when there is no previous value or the previous value is zero.
func (r *ValueResult) PercentageChange() (float64, bool) {
	cur, ok := r.Value()
	if !ok {
		return 0, false
	}
	prev, ok := r.Previous()
	if !ok || prev == 0 {
		return 0, false
	}
	return round2((cur - prev) / prev * 100), true
}

// ChangeDirection compares the current and previous values.
func (r *ValueResult) ChangeDirection() (enums.ChangeDirection, bool) {
	cur, ok := r.Value()
	if !ok {
		return "", false
	}
	prev, ok := r.Previous()
	if !ok {
		return "", false
	}
	switch {
	case cur > prev:
		return enums.ChangeUp, true
	case cur < prev:
		return enums.ChangeDown, true
	}
	return enums.ChangeFlat, true
}

type valuePayload struct {
	Value             *float64               `json:"value"`
	FormattedValue    string                 `json:"formatted_value"`
	HasNoData         bool                   `json:"has_no_data"`
	Previous          *float64               `json:"previous,omitempty"`
	FormattedPrevious string                 `json:"formatted_previous,omitempty"`
	PercentageChange  *float64               `json:"percentage_change,omitempty"`
	ChangeDirection   *enums.ChangeDirection `json:"change_direction,omitempty"`
}

func (r *ValueResult) MarshalJSON() ([]byte, error) {
	out := valuePayload{HasNoData: r.HasNoData()}
	if v, ok := r.Value(); ok {
		out.Value = ptr(v)
		out.FormattedValue = r.Display(v)
	}
	if p, ok := r.Previous(); ok {
		out.Previous = ptr(p)
		out.FormattedPrevious = r.Display(p)
	}
	if pct, ok := r.PercentageChange(); ok {
		out.PercentageChange = ptr(pct)
	}
	if dir, ok := r.ChangeDirection(); ok {
		out.ChangeDirection = &dir
	}
	return json.Marshal(out)
}
