package aggregation

import (
	"context"
	"time"

	"github.com/angelmondragon/packfinderz-metrics/internal/daterange"
	"github.com/angelmondragon/packfinderz-metrics/internal/query"
	"github.com/angelmondragon/packfinderz-metrics/internal/results"
	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
	pkgerrors "github.com/angelmondragon/packfinderz-metrics/pkg/errors"
)

// UnknownKey absorbs values that match no declared range or have no category.
const UnknownKey = "unknown"

// Classifier assigns a record to a category.
type Classifier func(query.Record) string

// NumberRange matches Min <= v < Max; a nil bound is open.
type NumberRange struct {
	Label string
	Min   *float64
	Max   *float64
}

func (r NumberRange) matches(v float64) bool {
	return (r.Min == nil || v >= *r.Min) && (r.Max == nil || v < *r.Max)
}

// DateRange matches From <= t < To; a zero bound is open.
type DateRange struct {
	Label string
	From  time.Time
	To    time.Time
}

func (r DateRange) matches(t time.Time) bool {
	return (r.From.IsZero() || !t.Before(r.From)) && (r.To.IsZero() || t.Before(r.To))
}

// Partition groups by Column, a Classifier, or declared number/date ranges over Field.
// Exactly one grouping mode is used, checked in that order.
type Partition struct {
	Aggregate    query.Aggregate
	Column       string
	Classifier   Classifier
	Field        string
	NumberRanges []NumberRange
	DateRanges   []DateRange
	Labels       map[string]string
	Colors       map[string]string
	Limit        int
}

func (p Partition) Kind() enums.MetricKind {
	return enums.MetricKindPartition
}

func (p Partition) Calculate(ctx context.Context, in Input) (results.Result, error) {
	w, err := in.window()
	if err != nil {
		return nil, err
	}
	groups, err := p.groups(ctx, in.Source, w)
	if unavailable(err) {
		return p.build(nil, in), nil
	}
	if err != nil {
		return nil, err
	}
	points := make([]results.Point, 0, len(groups))
	for _, g := range groups {
		points = append(points, results.Point{Key: g.Key, Value: g.Value})
	}
	return p.build(points, in), nil
}

func (p Partition) build(points []results.Point, in Input) *results.PartitionResult {
	r := results.NewPartition(points).
		WithFormatting(in.Formatting).
		WithLabels(p.Labels).
		WithColors(p.Colors).
		SortDescending()
	if p.Limit > 0 && len(r.Slices) > p.Limit {
		r.Slices = r.Slices[:p.Limit]
	}
	return r
}

func (p Partition) groups(ctx context.Context, src query.Source, w *daterange.Window) ([]query.Group, error) {
	switch {
	case p.Column != "" && p.Aggregate.Function == enums.AggregateAvg:
		return p.averageByColumn(ctx, src, w)
	case p.Column != "":
		return p.columnGroups(ctx, src, p.Aggregate, w)
	case p.Classifier != nil:
		records, err := src.Records(ctx, query.RecordQuery{Window: w})
		if err != nil {
			return nil, err
		}
		return query.GroupBy(p.Aggregate, records, p.Classifier), nil
	case len(p.NumberRanges) > 0:
		return p.rangeGroups(ctx, src, w, p.numberLabels(), func(rec query.Record) string {
			v, ok := query.ToFloat(rec[p.Field])
			if !ok {
				return UnknownKey
			}
			for _, r := range p.NumberRanges {
				if r.matches(v) {
					return r.Label
				}
			}
			return UnknownKey
		})
	case len(p.DateRanges) > 0:
		return p.rangeGroups(ctx, src, w, p.dateLabels(), func(rec query.Record) string {
			t, ok := query.RecordTime(rec, p.Field)
			if !ok {
				return UnknownKey
			}
			for _, r := range p.DateRanges {
				if r.matches(t) {
					return r.Label
				}
			}
			return UnknownKey
		})
	}
	return nil, pkgerrors.New(pkgerrors.CodeConfiguration, "partition needs a column, a classifier or ranges")
}

// rangeGroups seeds every declared label with zero so empty ranges still appear.
func (p Partition) rangeGroups(ctx context.Context, src query.Source, w *daterange.Window, labels []string, classify Classifier) ([]query.Group, error) {
	if p.Field == "" {
		return nil, pkgerrors.New(pkgerrors.CodeConfiguration, "range partitions need a field")
	}
	records, err := src.Records(ctx, query.RecordQuery{Window: w})
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]query.Record, len(labels)+1)
	for _, rec := range records {
		key := classify(rec)
		grouped[key] = append(grouped[key], rec)
	}
	out := make([]query.Group, 0, len(labels)+1)
	for _, label := range labels {
		out = append(out, query.Group{Key: label, Value: query.Reduce(p.Aggregate, grouped[label])})
	}
	if unknown, ok := grouped[UnknownKey]; ok {
		out = append(out, query.Group{Key: UnknownKey, Value: query.Reduce(p.Aggregate, unknown)})
	}
	return out, nil
}

func (p Partition) columnGroups(ctx context.Context, src query.Source, agg query.Aggregate, w *daterange.Window) ([]query.Group, error) {
	groups, err := src.AggregateByColumn(ctx, agg, p.Column, w)
	if err != nil {
		return nil, err
	}
	for i := range groups {
		if groups[i].Key == "" {
			groups[i].Key = UnknownKey
		}
	}
	return mergeDuplicateKeys(agg, groups), nil
}

// averageByColumn averages from per-key sums and counts, so groups that
// collapse into the same key (NULL and "") are weighted by their row counts.
func (p Partition) averageByColumn(ctx context.Context, src query.Source, w *daterange.Window) ([]query.Group, error) {
	sums, err := p.columnGroups(ctx, src, query.Sum(p.Aggregate.Column), w)
	if err != nil {
		return nil, err
	}
	counts, err := p.columnGroups(ctx, src, query.CountOf(p.Aggregate.Column), w)
	if err != nil {
		return nil, err
	}
	n := make(map[string]float64, len(counts))
	for _, g := range counts {
		n[g.Key] = g.Value
	}
	out := make([]query.Group, 0, len(sums))
	for _, g := range sums {
		avg := 0.0
		if c := n[g.Key]; c > 0 {
			avg = g.Value / c
		}
		out = append(out, query.Group{Key: g.Key, Value: avg})
	}
	return out, nil
}

func (p Partition) numberLabels() []string {
	labels := make([]string, 0, len(p.NumberRanges))
	for _, r := range p.NumberRanges {
		labels = append(labels, r.Label)
	}
	return labels
}

func (p Partition) dateLabels() []string {
	labels := make([]string, 0, len(p.DateRanges))
	for _, r := range p.DateRanges {
		labels = append(labels, r.Label)
	}
	return labels
}

// mergeDuplicateKeys folds groups whose keys collapsed to the same label (e.g. NULL and "").
// Averages are never merged here; averageByColumn rebuilds them from sums and counts.
func mergeDuplicateKeys(agg query.Aggregate, groups []query.Group) []query.Group {
	index := make(map[string]int, len(groups))
	out := make([]query.Group, 0, len(groups))
	for _, g := range groups {
		i, seen := index[g.Key]
		if !seen {
			index[g.Key] = len(out)
			out = append(out, g)
			continue
		}
		switch agg.Function {
		case enums.AggregateMin:
			out[i].Value = min(out[i].Value, g.Value)
		case enums.AggregateMax:
			out[i].Value = max(out[i].Value, g.Value)
		case enums.AggregateCount, enums.AggregateSum:
			out[i].Value += g.Value
		}
	}
	return out
}

// Between builds a NumberRange from two bounds.
func Between(label string, from, to float64) NumberRange {
	return NumberRange{Label: label, Min: &from, Max: &to}
}

// AtLeast builds an open-ended NumberRange.
func AtLeast(label string, from float64) NumberRange {
	return NumberRange{Label: label, Min: &from}
}

// Below builds a NumberRange with no lower bound.
func Below(label string, to float64) NumberRange {
	return NumberRange{Label: label, Max: &to}
}
