package aggregation

import (
	"context"

	"github.com/angelmondragon/packfinderz-metrics/internal/daterange"
	"github.com/angelmondragon/packfinderz-metrics/internal/query"
	"github.com/angelmondragon/packfinderz-metrics/internal/results"
	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
)

// TargetFunc computes a target for the current window; nil means ALL.
type TargetFunc func(ctx context.Context, w *daterange.Window) (float64, error)

// Progress compares the current aggregate with a target. TargetFunc wins over
// TargetPrevious, which wins over the literal Target.
type Progress struct {
	Aggregate             query.Aggregate
	Target                float64
	TargetFunc            TargetFunc
	TargetPrevious        bool
	AvoidUnwantedProgress bool
	AllowZero             bool
}

func (p Progress) Kind() enums.MetricKind {
	return enums.MetricKindProgress
}

func (p Progress) Calculate(ctx context.Context, in Input) (results.Result, error) {
	build := func(value, target float64) *results.ProgressResult {
		r := results.NewProgress(value, target).
			WithFormatting(in.Formatting).
			AvoidingUnwantedProgress(p.AvoidUnwantedProgress)
		r.AllowZero = p.AllowZero
		return r
	}

	w, err := in.window()
	if err != nil {
		return nil, err
	}
	value, err := in.Source.Aggregate(ctx, p.Aggregate, w)
	if unavailable(err) {
		return build(0, 0), nil
	}
	if err != nil {
		return nil, err
	}
	target, err := p.target(ctx, in, w)
	if unavailable(err) {
		return build(value, 0), nil
	}
	if err != nil {
		return nil, err
	}
	return build(value, target), nil
}

func (p Progress) target(ctx context.Context, in Input, w *daterange.Window) (float64, error) {
	switch {
	case p.TargetFunc != nil:
		return p.TargetFunc(ctx, w)
	case p.TargetPrevious:
		prev, err := in.previousWindow()
		if err != nil || prev == nil {
			return 0, err
		}
		return in.Source.Aggregate(ctx, p.Aggregate, prev)
	}
	return p.Target, nil
}
