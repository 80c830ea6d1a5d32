package aggregation

import (
	"context"

	"github.com/angelmondragon/packfinderz-metrics/internal/query"
	"github.com/angelmondragon/packfinderz-metrics/internal/results"
	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
)

// MaxTableRows caps request-supplied limits.
const MaxTableRows = 500

// Table projects raw records into rows.
type Table struct {
	Columns     []results.Column
	Actions     []results.RowAction
	Select      []string
	OrderBy     string
	Direction   enums.SortDirection
	Limit       int
	EmptyText   string
	RowIDField  string
	IgnoreRange bool
}

// TopBy lists the n records with the highest column value.
func TopBy(column string, n int, columns ...results.Column) Table {
	return Table{Columns: columns, OrderBy: column, Direction: enums.SortDesc, Limit: n}
}

// MostRecent lists the n newest records by timeColumn.
func MostRecent(timeColumn string, n int, columns ...results.Column) Table {
	return Table{Columns: columns, OrderBy: timeColumn, Direction: enums.SortDesc, Limit: n}
}

func (t Table) Kind() enums.MetricKind {
	return enums.MetricKindTable
}

func (t Table) Calculate(ctx context.Context, in Input) (results.Result, error) {
	q := query.RecordQuery{
		Columns:   t.Select,
		OrderBy:   t.OrderBy,
		Direction: t.Direction,
		Limit:     t.Limit,
	}
	if !t.IgnoreRange {
		w, err := in.window()
		if err != nil {
			return nil, err
		}
		q.Window = w
	}
	if t.sortable(in.SortBy) {
		q.OrderBy = in.SortBy
		q.Direction = enums.SortAsc
		if in.SortDirection == enums.SortDesc {
			q.Direction = enums.SortDesc
		}
	}
	if in.Limit > 0 {
		q.Limit = min(in.Limit, MaxTableRows)
	}

	records, err := in.Source.Records(ctx, q)
	if unavailable(err) {
		records, err = nil, nil
	}
	if err != nil {
		return nil, err
	}
	rows := make([]results.Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, results.Row(rec))
	}

	out := results.NewTable(rows, t.Columns)
	out.Actions = t.Actions
	if t.EmptyText != "" {
		out.EmptyText = t.EmptyText
	}
	if t.RowIDField != "" {
		out.RowIDField = t.RowIDField
	}
	out.DefaultSort = t.OrderBy
	if t.Direction != "" {
		out.DefaultSortDirection = t.Direction
	}
	for _, col := range t.Columns {
		if col.Sortable {
			out.Sortable = true
			break
		}
	}
	return out, nil
}

// sortable reports whether key names a sortable column.
func (t Table) sortable(key string) bool {
	if key == "" {
		return false
	}
	for _, col := range t.Columns {
		if col.Key == key && col.Sortable {
			return true
		}
	}
	return false
}
