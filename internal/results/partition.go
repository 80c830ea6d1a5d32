package results

import (
	"encoding/json"
	"sort"

	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
)

// Palette is cycled for partitions without an explicit color.
var Palette = [10]string{
	"#F5573B", "#F99037", "#F2CB22", "#8FC15D", "#098F56",
	"#47C1BF", "#1693EB", "#6474D7", "#9C6ADE", "#E471DE",
}

// PartitionResult is a categorical breakdown in display order.
type PartitionResult struct {
	Formatting
	Slices []Point
	Labels map[string]string
	Colors map[string]string
}

// NewPartition wraps slices in the given order.
func NewPartition(slices []Point) *PartitionResult {
	return &PartitionResult{Slices: slices}
}

// WithFormatting replaces the display directives.
func (r *PartitionResult) WithFormatting(f Formatting) *PartitionResult {
	r.Formatting = f
	return r
}

// WithLabels overrides the display label of some keys.
func (r *PartitionResult) WithLabels(labels map[string]string) *PartitionResult {
	r.Labels = labels
	return r
}

// WithColors overrides the color of some keys.
func (r *PartitionResult) WithColors(colors map[string]string) *PartitionResult {
	r.Colors = colors
	return r
}

// SortDescending orders slices by value, largest first, keeping discovery order for ties.
func (r *PartitionResult) SortDescending() *PartitionResult {
	sort.SliceStable(r.Slices, func(i, j int) bool {
		return r.Slices[i].Value > r.Slices[j].Value
	})
	return r
}

func (r *PartitionResult) Kind() enums.MetricKind {
	return enums.MetricKindPartition
}

// Total sums every transformed slice.
func (r *PartitionResult) Total() float64 {
	var total float64
	for _, s := range r.Slices {
		total += r.Apply(s.Value)
	}
	return total
}

func (r *PartitionResult) HasNoData() bool {
	return r.Total() == 0
}

// ResolvedColors assigns palette colors by first-seen order among keys without an override.
func (r *PartitionResult) ResolvedColors() map[string]string {
	out := make(map[string]string, len(r.Slices))
	next := 0
	for _, s := range r.Slices {
		if _, done := out[s.Key]; done {
			continue
		}
		if c, ok := r.Colors[s.Key]; ok && c != "" {
			out[s.Key] = c
			continue
		}
		out[s.Key] = Palette[next%len(Palette)]
		next++
	}
	return out
}

func (r *PartitionResult) label(key string) string {
	if l, ok := r.Labels[key]; ok && l != "" {
		return l
	}
	return key
}

type PartitionPoint struct {
	Key            string  `json:"key"`
	Label          string  `json:"label"`
	Value          float64 `json:"value"`
	FormattedValue string  `json:"formatted_value"`
	Color          string  `json:"color"`
	Percentage     float64 `json:"percentage"`
}

// ChartData projects each slice with label, color and share of the total.
func (r *PartitionResult) ChartData() []PartitionPoint {
	colors := r.ResolvedColors()
	total := r.Total()
	out := make([]PartitionPoint, 0, len(r.Slices))
	for _, s := range r.Slices {
		v := r.Apply(s.Value)
		var pct float64
		if total != 0 {
			pct = round2(v / total * 100)
		}
		out = append(out, PartitionPoint{
			Key:            s.Key,
			Label:          r.label(s.Key),
			Value:          v,
			FormattedValue: r.Display(v),
			Color:          colors[s.Key],
			Percentage:     pct,
		})
	}
	return out
}

type partitionPayload struct {
	Partitions     json.RawMessage  `json:"partitions"`
	ChartData      []PartitionPoint `json:"chart_data"`
	Total          float64          `json:"total"`
	FormattedTotal string           `json:"formatted_total"`
	HasNoData      bool             `json:"has_no_data"`
}

func (r *PartitionResult) MarshalJSON() ([]byte, error) {
	partitions, err := orderedObject(r.Slices, r.Apply)
	if err != nil {
		return nil, err
	}
	total := r.Total()
	return json.Marshal(partitionPayload{
		Partitions:     partitions,
		ChartData:      r.ChartData(),
		Total:          total,
		FormattedTotal: r.Display(total),
		HasNoData:      r.HasNoData(),
	})
}
