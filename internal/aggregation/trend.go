package aggregation

import (
	"context"

	"github.com/angelmondragon/packfinderz-metrics/internal/bucket"
	"github.com/angelmondragon/packfinderz-metrics/internal/query"
	"github.com/angelmondragon/packfinderz-metrics/internal/results"
	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
)

// Trend aggregates per time bucket across the current window.
// An empty Unit is picked from the range token.
type Trend struct {
	Aggregate        query.Aggregate
	Unit             enums.BucketUnit
	ShowCurrentValue bool
	ShowSum          bool
	SkipZeroFill     bool
}

func (t Trend) Kind() enums.MetricKind {
	return enums.MetricKindTrend
}

// UnitFor returns the bucket unit used for in.
func (t Trend) UnitFor(in Input) (enums.BucketUnit, error) {
	if t.Unit != "" {
		return t.Unit, nil
	}
	if _, err := in.boundedWindow(t.Kind()); err != nil {
		return "", err
	}
	return bucket.AutoUnit(in.Range), nil
}

func (t Trend) Calculate(ctx context.Context, in Input) (results.Result, error) {
	build := func(points []results.Point) *results.TrendResult {
		r := results.NewTrend(points).WithFormatting(in.Formatting)
		r.ShowCurrentValue = t.ShowCurrentValue
		r.ShowTrendSum = t.ShowSum
		return r
	}

	w, err := in.boundedWindow(t.Kind())
	if err != nil {
		return nil, err
	}
	unit, err := t.UnitFor(in)
	if err != nil {
		return nil, err
	}
	groups, err := in.Source.AggregateByBucket(ctx, t.Aggregate, w, unit, in.location())
	if unavailable(err) {
		return build(nil), nil
	}
	if err != nil {
		return nil, err
	}

	if t.SkipZeroFill {
		points := make([]results.Point, 0, len(groups))
		for _, g := range groups {
			points = append(points, results.Point{Key: g.Key, Value: g.Value})
		}
		return build(points), nil
	}

	keys, err := bucket.Keys(w, unit, in.location())
	if err != nil {
		return nil, err
	}
	values := make(map[string]float64, len(groups))
	for _, g := range groups {
		values[g.Key] = g.Value
	}
	points := make([]results.Point, 0, len(keys))
	for _, key := range keys {
		points = append(points, results.Point{Key: key, Value: values[key]})
	}
	return build(points), nil
}
