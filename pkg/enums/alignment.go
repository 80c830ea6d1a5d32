package enums

import "fmt"

// Alignment controls how a table column is rendered.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

var validAlignmentValues = []Alignment{
	AlignLeft,
	AlignCenter,
	AlignRight,
}

// String implements fmt.Stringer.
func (a Alignment) String() string {
	return string(a)
}

// IsValid reports whether the value is a known alignment.
func (a Alignment) IsValid() bool {
	for _, candidate := range validAlignmentValues {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAlignment converts the raw string to a Alignment.
func ParseAlignment(value string) (Alignment, error) {
	for _, candidate := range validAlignmentValues {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid alignment %q", value)
}
