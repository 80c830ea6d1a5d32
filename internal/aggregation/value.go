package aggregation

import (
	"context"

	"github.com/angelmondragon/packfinderz-metrics/internal/query"
	"github.com/angelmondragon/packfinderz-metrics/internal/results"
	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
)

// Value aggregates the current window and compares it with the previous one.
type Value struct {
	Aggregate    query.Aggregate
	AllowZero    bool
	SkipPrevious bool
}

func (v Value) Kind() enums.MetricKind {
	return enums.MetricKindValue
}

func (v Value) Calculate(ctx context.Context, in Input) (results.Result, error) {
	empty := results.NewEmptyValue().WithFormatting(in.Formatting).AllowZeroResult(v.AllowZero)

	current, err := in.window()
	if err != nil {
		return nil, err
	}
	value, err := in.Source.Aggregate(ctx, v.Aggregate, current)
	if unavailable(err) {
		return empty, nil
	}
	if err != nil {
		return nil, err
	}
	out := results.NewValue(value).WithFormatting(in.Formatting).AllowZeroResult(v.AllowZero)
	if v.SkipPrevious {
		return out, nil
	}

	previous, err := in.previousWindow()
	if err != nil {
		return nil, err
	}
	if previous == nil {
		return out, nil
	}
	prev, err := in.Source.Aggregate(ctx, v.Aggregate, previous)
	if unavailable(err) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	return out.WithPrevious(prev), nil
}
