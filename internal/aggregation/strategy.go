// Package aggregation turns a query source and a range into a typed result.
package aggregation

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/packfinderz-metrics/internal/daterange"
	"github.com/angelmondragon/packfinderz-metrics/internal/query"
	"github.com/angelmondragon/packfinderz-metrics/internal/results"
	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
	pkgerrors "github.com/angelmondragon/packfinderz-metrics/pkg/errors"
)

// Input carries everything one calculation needs.
type Input struct {
	Source        query.Source
	Range         daterange.Token
	Location      *time.Location
	Resolver      *daterange.Resolver
	Formatting    results.Formatting
	SortBy        string
	SortDirection enums.SortDirection
	Limit         int
}

// Strategy computes one kind of result.
type Strategy interface {
	Kind() enums.MetricKind
	Calculate(ctx context.Context, in Input) (results.Result, error)
}

func (in Input) resolver() *daterange.Resolver {
	if in.Resolver == nil {
		return daterange.NewResolver()
	}
	return in.Resolver
}

func (in Input) location() *time.Location {
	if in.Location == nil {
		return time.UTC
	}
	return in.Location
}

// window resolves the current window; nil means ALL.
func (in Input) window() (*daterange.Window, error) {
	if in.Range.IsAll() {
		return nil, nil
	}
	w, err := in.resolver().Resolve(in.Range, in.location())
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// previousWindow resolves the comparison window; nil means none.
func (in Input) previousWindow() (*daterange.Window, error) {
	if in.Range.IsAll() {
		return nil, nil
	}
	w, err := in.resolver().ResolvePrevious(in.Range, in.location())
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (in Input) boundedWindow(kind enums.MetricKind) (daterange.Window, error) {
	w, err := in.window()
	if err != nil {
		return daterange.Window{}, err
	}
	if w == nil {
		return daterange.Window{}, pkgerrors.New(pkgerrors.CodeConfiguration, string(kind)+" metrics need a bounded range")
	}
	return *w, nil
}

func unavailable(err error) bool {
	return errors.Is(err, query.ErrSourceUnavailable)
}
