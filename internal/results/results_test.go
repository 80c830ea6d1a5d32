package results

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
)

func decode(t *testing.T, r any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(r)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestFormattingPipelineOrder(t *testing.T) {
	f := Formatting{
		Prefix:    "~",
		Suffix:    " total",
		Currency:  "USD",
		Number:    &NumberFormat{Decimals: 2, Grouping: true},
		Transform: func(v float64) float64 { return v / 100 },
	}
	got := f.Format(123456)
	assert.True(t, strings.HasSuffix(got, "~1,234.56 total"), got)
	assert.True(t, strings.HasPrefix(got, "$"), got)

	literal := Formatting{Currency: "Pts. ", Suffix: "%"}
	assert.Equal(t, "Pts.12.5%", literal.Format(12.5))
}

func TestFormatNumberDefaults(t *testing.T) {
	assert.Equal(t, "5", Formatting{}.Format(5))
	assert.Equal(t, "1234.5", Formatting{}.Format(1234.5))
	assert.Equal(t, "1234", Formatting{Number: &NumberFormat{Decimals: 0}}.Format(1234))
	assert.Equal(t, "1,234.00", Formatting{Number: &NumberFormat{Decimals: 2, Grouping: true}}.Format(1234))
}

func TestValueResultComparison(t *testing.T) {
	r := NewValue(5).WithPrevious(2)

	pct, ok := r.PercentageChange()
	require.True(t, ok)
	assert.Equal(t, 150.0, pct)
	dir, ok := r.ChangeDirection()
	require.True(t, ok)
	assert.Equal(t, enums.ChangeUp, dir)

	out := decode(t, r)
	assert.Equal(t, 5.0, out["value"])
	assert.Equal(t, 2.0, out["previous"])
	assert.Equal(t, 150.0, out["percentage_change"])
	assert.Equal(t, "up", out["change_direction"])
	assert.Equal(t, false, out["has_no_data"])
	assert.Equal(t, "5", out["formatted_value"])
}

func TestValueResultWithoutComparableBase(t *testing.T) {
	r := NewValue(4).WithPrevious(0)
	_, ok := r.PercentageChange()
	assert.False(t, ok)

	out := decode(t, r)
	_, has := out["percentage_change"]
	assert.False(t, has)
	assert.Equal(t, "up", out["change_direction"])

	down := NewValue(1).WithPrevious(4)
	pct, ok := down.PercentageChange()
	require.True(t, ok)
	assert.Equal(t, -75.0, pct)
	dir, _ := down.ChangeDirection()
	assert.Equal(t, enums.ChangeDown, dir)

	flat, _ := NewValue(3).WithPrevious(3).ChangeDirection()
	assert.Equal(t, enums.ChangeFlat, flat)
}

func TestValueResultHasNoData(t *testing.T) {
	assert.True(t, NewEmptyValue().HasNoData())
	assert.True(t, NewValue(0).HasNoData())
	assert.False(t, NewValue(0).AllowZeroResult(true).HasNoData())

	// Evaluated after the transform.
	r := NewValue(0.4).WithFormatting(Formatting{Transform: func(v float64) float64 { return float64(int(v)) }})
	assert.True(t, r.HasNoData())

	out := decode(t, NewEmptyValue())
	assert.Nil(t, out["value"])
	assert.Equal(t, true, out["has_no_data"])
}

func TestTrendResultSerialization(t *testing.T) {
	r := NewTrend([]Point{{Key: "2024-01-02", Value: 5}, {Key: "2024-01-01", Value: 3}})
	r.ShowTrendSum = true
	r.ShowCurrentValue = true

	raw, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"trend":{"2024-01-02":5,"2024-01-01":3}`)

	out := decode(t, r)
	assert.Equal(t, 8.0, out["trend_sum"])
	assert.Equal(t, 3.0, out["current_value"])
	assert.Len(t, out["chart_data"], 2)
	assert.Equal(t, false, out["has_no_data"])

	plain := decode(t, NewTrend([]Point{{Key: "2024-01-01", Value: 0}}))
	_, has := plain["trend_sum"]
	assert.False(t, has)
	assert.Equal(t, true, plain["has_no_data"])
}

func TestPartitionColorsAndTotal(t *testing.T) {
	r := NewPartition([]Point{{Key: "A", Value: 10}, {Key: "B", Value: 5}})
	colors := r.ResolvedColors()
	assert.Equal(t, Palette[0], colors["A"])
	assert.Equal(t, Palette[1], colors["B"])
	assert.Equal(t, 15.0, r.Total())

	out := decode(t, r)
	assert.Equal(t, 15.0, out["total"])
	assert.Equal(t, "15", out["formatted_total"])
	chart := out["chart_data"].([]any)
	first := chart[0].(map[string]any)
	assert.Equal(t, "A", first["key"])
	assert.InDelta(t, 66.67, first["percentage"], 0.001)
}

func TestPartitionColorOverridesSkipPaletteSlots(t *testing.T) {
	r := NewPartition([]Point{{Key: "paid", Value: 1}, {Key: "pending", Value: 1}, {Key: "canceled", Value: 1}}).
		WithColors(map[string]string{"paid": "#000000"}).
		WithLabels(map[string]string{"pending": "Awaiting payment"})

	colors := r.ResolvedColors()
	assert.Equal(t, "#000000", colors["paid"])
	assert.Equal(t, Palette[0], colors["pending"])
	assert.Equal(t, Palette[1], colors["canceled"])
	assert.Equal(t, "Awaiting payment", r.ChartData()[1].Label)

	many := make([]Point, 12)
	for i := range many {
		many[i] = Point{Key: string(rune('a' + i)), Value: 1}
	}
	assert.Equal(t, Palette[0], NewPartition(many).ResolvedColors()["k"])
}

func TestPartitionSortDescendingIsStable(t *testing.T) {
	r := NewPartition([]Point{{Key: "x", Value: 1}, {Key: "y", Value: 3}, {Key: "z", Value: 1}}).SortDescending()
	assert.Equal(t, []Point{{Key: "y", Value: 3}, {Key: "x", Value: 1}, {Key: "z", Value: 1}}, r.Slices)

	raw, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"partitions":{"y":3,"x":1,"z":1}`)
	assert.True(t, NewPartition(nil).HasNoData())
}

func TestProgressResult(t *testing.T) {
	exact := NewProgress(50, 50)
	assert.Equal(t, 100.0, exact.Percentage())
	assert.True(t, exact.IsComplete())
	assert.False(t, exact.ExceedsTarget())
	assert.Equal(t, ColorComplete, exact.Color())

	over := NewProgress(150, 100)
	assert.Equal(t, 150.0, over.Percentage())
	assert.True(t, over.ExceedsTarget())
	assert.Zero(t, over.Remaining())
	assert.Equal(t, 100.0, over.AvoidingUnwantedProgress(true).Percentage())

	nearMiss := NewProgress(99999, 100000)
	assert.Equal(t, 99.99, nearMiss.Percentage())
	assert.False(t, nearMiss.IsComplete())
	assert.Equal(t, ColorHigh, nearMiss.Color())
	nearMissOut := decode(t, nearMiss)
	assert.Equal(t, 99.99, nearMissOut["percentage"])
	assert.Equal(t, false, nearMissOut["is_complete"])

	justOver := NewProgress(100001, 100000)
	assert.Equal(t, 100.01, justOver.Percentage())
	assert.True(t, justOver.ExceedsTarget())
	assert.Equal(t, 100.0, justOver.AvoidingUnwantedProgress(true).Percentage())

	partial := NewProgress(30, 40)
	assert.Equal(t, 75.0, partial.Percentage())
	assert.Equal(t, 10.0, partial.Remaining())
	assert.Equal(t, ColorHigh, partial.Color())
	assert.Equal(t, ColorMedium, NewProgress(1, 2).Color())
	assert.Equal(t, ColorLow, NewProgress(1, 4).Color())

	zero := NewProgress(10, 0)
	assert.Zero(t, zero.Percentage())
	assert.True(t, zero.HasNoData())
	assert.True(t, NewProgress(0, 10).HasNoData())

	out := decode(t, partial)
	assert.Equal(t, 75.0, out["percentage"])
	assert.Equal(t, "#3B82F6", out["progress_color"])
	assert.Equal(t, "10", out["formatted_remaining"])
}

func TestTableResultRowsAndActions(t *testing.T) {
	table := NewTable([]Row{
		{"id": "a b", "number": "PF-1", "total_cents": int64(1250), "status": "paid"},
		{"id": "c", "number": "PF-2", "total_cents": int64(99), "status": "canceled"},
	}, []Column{
		{Key: "number", Label: "Order", Sortable: true},
		{Key: "total_cents", Label: "Total", Align: enums.AlignRight, Formatter: func(v any, _ Row) any {
			return Formatting{Currency: "USD", Number: &NumberFormat{Decimals: 2}}.Format(float64(v.(int64)) / 100)
		}},
	})
	table.Actions = []RowAction{
		{Name: "view", Label: "View", URL: "/orders/{id}"},
		{Name: "refund", Label: "Refund", URL: "/orders/{id}/refund", Visible: func(r Row) bool { return r["status"] == "paid" }},
	}

	data := table.Data()
	require.Len(t, data, 2)
	assert.Equal(t, "a b", data[0]["_row_id"])
	assert.Contains(t, data[0]["total_cents"], "12.50")

	actions := data[0]["_actions"].([]actionLink)
	require.Len(t, actions, 2)
	assert.Equal(t, "/orders/a%20b", actions[0].URL)
	assert.Len(t, data[1]["_actions"].([]actionLink), 1)

	out := decode(t, table)
	assert.Equal(t, 2.0, out["total_rows"])
	assert.Equal(t, false, out["has_no_data"])
	assert.Equal(t, "desc", out["default_sort_direction"])

	empty := decode(t, NewTable(nil, nil))
	assert.Equal(t, true, empty["has_no_data"])
	assert.Equal(t, []any{}, empty["data"])
}

func TestSnapAndEmpty(t *testing.T) {
	snap, err := Snap(NewValue(3))
	require.NoError(t, err)
	assert.Equal(t, enums.MetricKindValue, snap.Kind)
	assert.False(t, snap.HasNoData)

	for _, kind := range []enums.MetricKind{
		enums.MetricKindValue, enums.MetricKindTrend, enums.MetricKindPartition,
		enums.MetricKindProgress, enums.MetricKindTable,
	} {
		empty := Empty(kind)
		assert.Equal(t, kind, empty.Kind)
		assert.True(t, empty.HasNoData, kind)
	}
}
