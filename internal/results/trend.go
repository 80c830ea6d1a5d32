package results

import (
	"encoding/json"

	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
)

// TrendResult is a chronologically ordered bucket series.
type TrendResult struct {
	Formatting
	Points           []Point
	ShowCurrentValue bool
	ShowTrendSum     bool
}

// NewTrend wraps points, which must already be in ascending bucket order.
func NewTrend(points []Point) *TrendResult {
	return &TrendResult{Points: points}
}

// WithFormatting replaces the display directives.
func (r *TrendResult) WithFormatting(f Formatting) *TrendResult {
	r.Formatting = f
	return r
}

func (r *TrendResult) Kind() enums.MetricKind {
	return enums.MetricKindTrend
}

// HasNoData is true when the series is empty or every bucket is zero.
func (r *TrendResult) HasNoData() bool {
	for _, p := range r.Points {
		if r.Apply(p.Value) != 0 {
			return false
		}
	}
	return true
}

// CurrentValue is the transformed value of the latest bucket.
func (r *TrendResult) CurrentValue() (float64, bool) {
	if len(r.Points) == 0 {
		return 0, false
	}
	return r.Apply(r.Points[len(r.Points)-1].Value), true
}

// Sum adds every transformed bucket.
func (r *TrendResult) Sum() float64 {
	var total float64
	for _, p := range r.Points {
		total += r.Apply(p.Value)
	}
	return total
}

type ChartPoint struct {
	Label          string  `json:"label"`
	Value          float64 `json:"value"`
	FormattedValue string  `json:"formatted_value"`
}

// ChartData projects each bucket with its display string.
func (r *TrendResult) ChartData() []ChartPoint {
	out := make([]ChartPoint, 0, len(r.Points))
	for _, p := range r.Points {
		v := r.Apply(p.Value)
		out = append(out, ChartPoint{Label: p.Key, Value: v, FormattedValue: r.Display(v)})
	}
	return out
}

type trendPayload struct {
	Trend                 json.RawMessage `json:"trend"`
	ChartData             []ChartPoint    `json:"chart_data"`
	HasNoData             bool            `json:"has_no_data"`
	CurrentValue          *float64        `json:"current_value,omitempty"`
	FormattedCurrentValue string          `json:"formatted_current_value,omitempty"`
	TrendSum              *float64        `json:"trend_sum,omitempty"`
	FormattedTrendSum     string          `json:"formatted_trend_sum,omitempty"`
}

func (r *TrendResult) MarshalJSON() ([]byte, error) {
	trend, err := orderedObject(r.Points, r.Apply)
	if err != nil {
		return nil, err
	}
	out := trendPayload{Trend: trend, ChartData: r.ChartData(), HasNoData: r.HasNoData()}
	if r.ShowCurrentValue {
		if v, ok := r.CurrentValue(); ok {
			out.CurrentValue = ptr(v)
			out.FormattedCurrentValue = r.Display(v)
		}
	}
	if r.ShowTrendSum {
		sum := r.Sum()
		out.TrendSum = ptr(sum)
		out.FormattedTrendSum = r.Display(sum)
	}
	return json.Marshal(out)
}
