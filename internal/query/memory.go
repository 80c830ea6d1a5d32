package query

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/angelmondragon/packfinderz-metrics/internal/bucket"
	"github.com/angelmondragon/packfinderz-metrics/internal/daterange"
	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
)

// MemorySource aggregates an in-process slice of records.
type MemorySource struct {
	timeField string
	records   []Record
}

// NewMemorySource wraps records whose timeField holds a time.Time.
func NewMemorySource(timeField string, records []Record) *MemorySource {
	return &MemorySource{timeField: timeField, records: records}
}

func (m *MemorySource) Aggregate(ctx context.Context, agg Aggregate, w *daterange.Window) (float64, error) {
	if err := agg.Validate(); err != nil {
		return 0, err
	}
	return Reduce(agg, m.filter(w)), nil
}

func (m *MemorySource) AggregateByBucket(ctx context.Context, agg Aggregate, w daterange.Window, unit enums.BucketUnit, loc *time.Location) ([]Group, error) {
	if err := agg.Validate(); err != nil {
		return nil, err
	}
	grouped := map[string][]Record{}
	for _, rec := range m.filter(&w) {
		ts, _ := RecordTime(rec, m.timeField)
		key := bucket.Key(ts, unit, loc)
		grouped[key] = append(grouped[key], rec)
	}
	keys := make([]string, 0, len(grouped))
	for key := range grouped {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]Group, 0, len(keys))
	for _, key := range keys {
		out = append(out, Group{Key: key, Value: Reduce(agg, grouped[key])})
	}
	return out, nil
}

func (m *MemorySource) AggregateByColumn(ctx context.Context, agg Aggregate, column string, w *daterange.Window) ([]Group, error) {
	if err := agg.Validate(); err != nil {
		return nil, err
	}
	return GroupBy(agg, m.filter(w), func(rec Record) string {
		return KeyString(rec[column])
	}), nil
}

func (m *MemorySource) Records(ctx context.Context, q RecordQuery) ([]Record, error) {
	rows := m.filter(q.Window)
	if q.OrderBy != "" {
		sorted := make([]Record, len(rows))
		copy(sorted, rows)
		sort.SliceStable(sorted, func(i, j int) bool {
			c := CompareValues(sorted[i][q.OrderBy], sorted[j][q.OrderBy])
			if q.Direction == enums.SortDesc {
				return c > 0
			}
			return c < 0
		})
		rows = sorted
	}
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	if len(q.Columns) == 0 {
		return rows, nil
	}
	out := make([]Record, 0, len(rows))
	for _, rec := range rows {
		projected := make(Record, len(q.Columns))
		for _, col := range q.Columns {
			projected[col] = rec[col]
		}
		out = append(out, projected)
	}
	return out, nil
}

func (m *MemorySource) filter(w *daterange.Window) []Record {
	if w == nil {
		return m.records
	}
	out := make([]Record, 0, len(m.records))
	for _, rec := range m.records {
		ts, ok := RecordTime(rec, m.timeField)
		if ok && w.Contains(ts) {
			out = append(out, rec)
		}
	}
	return out
}

// GroupBy reduces records per classifier key, keeping first-seen key order.
func GroupBy(agg Aggregate, records []Record, classify func(Record) string) []Group {
	order := []string{}
	grouped := map[string][]Record{}
	for _, rec := range records {
		key := classify(rec)
		if _, seen := grouped[key]; !seen {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], rec)
	}
	out := make([]Group, 0, len(order))
	for _, key := range order {
		out = append(out, Group{Key: key, Value: Reduce(agg, grouped[key])})
	}
	return out
}

// RecordTime extracts a timestamp from field.
func RecordTime(rec Record, field string) (time.Time, bool) {
	switch v := rec[field].(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, true
	case string:
		ts, err := time.Parse(time.RFC3339Nano, v)
		return ts, err == nil
	}
	return time.Time{}, false
}

// KeyString renders a grouping value as a category key; nil becomes "".
func KeyString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(value)
}

// CompareValues orders two scalar record values numerically, by time, or as strings.
func CompareValues(a, b any) int {
	if af, ok := ToFloat(a); ok {
		if bf, ok := ToFloat(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	as, bs := KeyString(a), KeyString(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	}
	return 0
}
