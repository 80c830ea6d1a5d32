package query

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/angelmondragon/packfinderz-metrics/internal/daterange"
	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
)

// ErrSourceUnavailable marks a source whose backing table or data set does not exist.
var ErrSourceUnavailable = errors.New("query source unavailable")

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Aggregate is one of count/sum/avg/min/max over an optional column.
type Aggregate struct {
	Function enums.AggregateFunction `json:"function"`
	Column   string                  `json:"column,omitempty"`
}

// Count counts rows.
func Count() Aggregate {
	return Aggregate{Function: enums.AggregateCount}
}

// CountOf counts rows where column is not NULL.
func CountOf(column string) Aggregate {
	return Aggregate{Function: enums.AggregateCount, Column: column}
}

func Sum(column string) Aggregate {
	return Aggregate{Function: enums.AggregateSum, Column: column}
}

func Average(column string) Aggregate {
	return Aggregate{Function: enums.AggregateAvg, Column: column}
}

func Min(column string) Aggregate {
	return Aggregate{Function: enums.AggregateMin, Column: column}
}

func Max(column string) Aggregate {
	return Aggregate{Function: enums.AggregateMax, Column: column}
}

// Validate checks the function and that non-count aggregates name a column.
func (a Aggregate) Validate() error {
	if !a.Function.IsValid() {
		return fmt.Errorf("invalid aggregate function %q", a.Function)
	}
	if a.Column == "" {
		if a.Function != enums.AggregateCount {
			return fmt.Errorf("%s requires a column", a.Function)
		}
		return nil
	}
	return ValidateIdentifier(a.Column)
}

// ValidateIdentifier rejects anything that is not a plain (optionally table-qualified) column name.
func ValidateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("invalid column identifier %q", name)
	}
	return nil
}

// Group is one aggregated bucket or category.
type Group struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// Record is a raw row keyed by column name.
type Record map[string]any

// RecordQuery selects raw rows for tables and in-process classification.
type RecordQuery struct {
	Window    *daterange.Window
	Columns   []string
	OrderBy   string
	Direction enums.SortDirection
	Limit     int
}

// Source is the data capability aggregation strategies depend on.
// A nil window means no time restriction.
type Source interface {
	Aggregate(ctx context.Context, agg Aggregate, w *daterange.Window) (float64, error)
	AggregateByBucket(ctx context.Context, agg Aggregate, w daterange.Window, unit enums.BucketUnit, loc *time.Location) ([]Group, error)
	AggregateByColumn(ctx context.Context, agg Aggregate, column string, w *daterange.Window) ([]Group, error)
	Records(ctx context.Context, q RecordQuery) ([]Record, error)
}
