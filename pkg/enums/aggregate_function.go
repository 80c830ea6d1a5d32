package enums

import "fmt"

// AggregateFunction names the reducer applied to a query source.
type AggregateFunction string

const (
	AggregateCount AggregateFunction = "count"
	AggregateSum   AggregateFunction = "sum"
	AggregateAvg   AggregateFunction = "avg"
	AggregateMin   AggregateFunction = "min"
	AggregateMax   AggregateFunction = "max"
)

var validAggregateFunctionValues = []AggregateFunction{
	AggregateCount,
	AggregateSum,
	AggregateAvg,
	AggregateMin,
	AggregateMax,
}

// String implements fmt.Stringer.
func (a AggregateFunction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known aggregate function.
func (a AggregateFunction) IsValid() bool {
	for _, candidate := range validAggregateFunctionValues {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAggregateFunction converts the raw string to a AggregateFunction.
func ParseAggregateFunction(value string) (AggregateFunction, error) {
	for _, candidate := range validAggregateFunctionValues {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate function %q", value)
}
