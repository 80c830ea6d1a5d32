package daterange

import (
	"errors"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/packfinderz-metrics/pkg/errors"
)

// ErrUnboundedRange is returned when ALL is resolved; callers skip windowing instead.
var ErrUnboundedRange = errors.New("range has no lower bound")

// Window is a closed interval [Start, End].
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Span returns End - Start.
func (w Window) Span() time.Duration {
	return w.End.Sub(w.Start)
}

// Contains reports whether t falls inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Overlaps reports whether the two windows share at least one instant.
func (w Window) Overlaps(other Window) bool {
	return !w.End.Before(other.Start) && !other.End.Before(w.Start)
}

// In converts both bounds to loc.
func (w Window) In(loc *time.Location) Window {
	return Window{Start: w.Start.In(loc), End: w.End.In(loc)}
}

// Resolver turns tokens into windows relative to Now.
type Resolver struct {
	Now func() time.Time
}

// NewResolver returns a resolver backed by the wall clock.
func NewResolver() *Resolver {
	return &Resolver{Now: time.Now}
}

// LoadLocation resolves an IANA timezone name. Empty means UTC.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "UTC") {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("unknown timezone %q", name))
	}
	return loc, nil
}

// Resolve returns the current window for token in loc.
func (r *Resolver) Resolve(token Token, loc *time.Location) (Window, error) {
	now := r.now(loc)
	if n, ok := token.DayCount(); ok {
		return Window{Start: now.AddDate(0, 0, -n), End: now}, nil
	}
	today := startOfDay(now)
	switch token.Symbol() {
	case SymbolToday:
		return Window{Start: today, End: endBefore(today.AddDate(0, 0, 1))}, nil
	case SymbolMTD, SymbolQTD, SymbolYTD:
		return Window{Start: unitStart(token.Symbol(), now), End: endBefore(today.AddDate(0, 0, 1))}, nil
	case SymbolAll:
		return Window{}, ErrUnboundedRange
	}
	return Window{}, pkgerrors.New(pkgerrors.CodeConfiguration, "range token is not set")
}

// ResolvePrevious returns the comparable window that ends just before the current one starts.
// Symbolic tokens yield the full prior calendar unit; N days yields the N days before.
func (r *Resolver) ResolvePrevious(token Token, loc *time.Location) (Window, error) {
	now := r.now(loc)
	if n, ok := token.DayCount(); ok {
		start := now.AddDate(0, 0, -n)
		return Window{Start: now.AddDate(0, 0, -2*n), End: endBefore(start)}, nil
	}
	switch token.Symbol() {
	case SymbolToday:
		today := startOfDay(now)
		return Window{Start: today.AddDate(0, 0, -1), End: endBefore(today)}, nil
	case SymbolMTD:
		start := unitStart(SymbolMTD, now)
		return Window{Start: start.AddDate(0, -1, 0), End: endBefore(start)}, nil
	case SymbolQTD:
		start := unitStart(SymbolQTD, now)
		return Window{Start: start.AddDate(0, -3, 0), End: endBefore(start)}, nil
	case SymbolYTD:
		start := unitStart(SymbolYTD, now)
		return Window{Start: start.AddDate(-1, 0, 0), End: endBefore(start)}, nil
	case SymbolAll:
		return Window{}, ErrUnboundedRange
	}
	return Window{}, pkgerrors.New(pkgerrors.CodeConfiguration, "range token is not set")
}

func (r *Resolver) now(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	clock := r.Now
	if clock == nil {
		clock = time.Now
	}
	return clock().In(loc)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func unitStart(s Symbol, t time.Time) time.Time {
	y, m, _ := t.Date()
	switch s {
	case SymbolQTD:
		m = time.Month((int(m)-1)/3*3 + 1)
	case SymbolYTD:
		m = time.January
	}
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

func endBefore(t time.Time) time.Time {
	return t.Add(-time.Nanosecond)
}
