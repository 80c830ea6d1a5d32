package enums

import "fmt"

// BucketUnit describes the width of a time bucket used by trend aggregations.
type BucketUnit string

const (
	BucketUnitMinute BucketUnit = "minute"
	BucketUnitHour   BucketUnit = "hour"
	BucketUnitDay    BucketUnit = "day"
	BucketUnitWeek   BucketUnit = "week"
	BucketUnitMonth  BucketUnit = "month"
	BucketUnitYear   BucketUnit = "year"
)

var validBucketUnitValues = []BucketUnit{
	BucketUnitMinute,
	BucketUnitHour,
	BucketUnitDay,
	BucketUnitWeek,
	BucketUnitMonth,
	BucketUnitYear,
}

// String implements fmt.Stringer.
func (b BucketUnit) String() string {
	return string(b)
}

// IsValid reports whether the value is a known bucket unit.
func (b BucketUnit) IsValid() bool {
	for _, candidate := range validBucketUnitValues {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBucketUnit converts the raw string to a BucketUnit.
func ParseBucketUnit(value string) (BucketUnit, error) {
	for _, candidate := range validBucketUnitValues {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid bucket unit %q", value)
}
