package enums

import "fmt"

// SortDirection is the requested ordering for table rows.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

var validSortDirectionValues = []SortDirection{
	SortAsc,
	SortDesc,
}

// String implements fmt.Stringer.
func (s SortDirection) String() string {
	return string(s)
}

// IsValid reports whether the value is a known sort direction.
func (s SortDirection) IsValid() bool {
	for _, candidate := range validSortDirectionValues {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSortDirection converts the raw string to a SortDirection.
func ParseSortDirection(value string) (SortDirection, error) {
	for _, candidate := range validSortDirectionValues {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sort direction %q", value)
}
