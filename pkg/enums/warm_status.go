package enums

import "fmt"

// WarmStatus classifies the outcome of warming one cache entry.
type WarmStatus string

const (
	WarmStatusWarmed        WarmStatus = "warmed"
	WarmStatusAlreadyCached WarmStatus = "already_cached"
	WarmStatusError         WarmStatus = "error"
)

var validWarmStatusValues = []WarmStatus{
	WarmStatusWarmed,
	WarmStatusAlreadyCached,
	WarmStatusError,
}

// String implements fmt.Stringer.
func (w WarmStatus) String() string {
	return string(w)
}

// IsValid reports whether the value is a known warm status.
func (w WarmStatus) IsValid() bool {
	for _, candidate := range validWarmStatusValues {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseWarmStatus converts the raw string to a WarmStatus.
func ParseWarmStatus(value string) (WarmStatus, error) {
	for _, candidate := range validWarmStatusValues {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid warm status %q", value)
}
