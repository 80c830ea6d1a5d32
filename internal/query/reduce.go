package query

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
)

// Reduce applies agg to the records in Go. Count with a column skips nil values,
// as every aggregate does.
func Reduce(agg Aggregate, records []Record) float64 {
	if agg.Function == enums.AggregateCount && agg.Column == "" {
		return float64(len(records))
	}
	values := make([]float64, 0, len(records))
	for _, rec := range records {
		if v, ok := ToFloat(rec[agg.Column]); ok {
			values = append(values, v)
		}
	}
	return ReduceValues(agg.Function, values)
}

// ReduceValues folds values with fn; empty input yields 0.
func ReduceValues(fn enums.AggregateFunction, values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	switch fn {
	case enums.AggregateCount:
		return float64(len(values))
	case enums.AggregateSum:
		return sum(values)
	case enums.AggregateAvg:
		return sum(values) / float64(len(values))
	case enums.AggregateMin:
		out := math.Inf(1)
		for _, v := range values {
			out = math.Min(out, v)
		}
		return out
	case enums.AggregateMax:
		out := math.Inf(-1)
		for _, v := range values {
			out = math.Max(out, v)
		}
		return out
	}
	return 0
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// ToFloat converts the scalar types drivers return into a float64.
func ToFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case decimal.Decimal:
		return v.InexactFloat64(), true
	case *float64:
		if v == nil {
			return 0, false
		}
		return *v, true
	case *int64:
		if v == nil {
			return 0, false
		}
		return float64(*v), true
	case []byte:
		return parseFloat(string(v))
	case string:
		return parseFloat(v)
	}
	return 0, false
}

func parseFloat(raw string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
