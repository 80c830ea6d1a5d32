package enums

import "fmt"

// ChangeDirection reports how a value moved against the previous period.
type ChangeDirection string

const (
	ChangeUp   ChangeDirection = "up"
	ChangeDown ChangeDirection = "down"
	ChangeFlat ChangeDirection = "flat"
)

var validChangeDirectionValues = []ChangeDirection{
	ChangeUp,
	ChangeDown,
	ChangeFlat,
}

// String implements fmt.Stringer.
func (c ChangeDirection) String() string {
	return string(c)
}

// IsValid reports whether the value is a known change direction.
func (c ChangeDirection) IsValid() bool {
	for _, candidate := range validChangeDirectionValues {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseChangeDirection converts the raw string to a ChangeDirection.
func ParseChangeDirection(value string) (ChangeDirection, error) {
	for _, candidate := range validChangeDirectionValues {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid change direction %q", value)
}
