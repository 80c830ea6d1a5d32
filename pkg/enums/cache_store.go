package enums

import "fmt"

// CacheStoreKind selects the cache store backend.
type CacheStoreKind string

const (
	CacheStoreMemory CacheStoreKind = "memory"
	CacheStoreRedis  CacheStoreKind = "redis"
)

var validCacheStoreKindValues = []CacheStoreKind{
	CacheStoreMemory,
	CacheStoreRedis,
}

// String implements fmt.Stringer.
func (c CacheStoreKind) String() string {
	return string(c)
}

// IsValid reports whether the value is a known cache store.
func (c CacheStoreKind) IsValid() bool {
	for _, candidate := range validCacheStoreKindValues {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCacheStoreKind converts the raw string to a CacheStoreKind.
func ParseCacheStoreKind(value string) (CacheStoreKind, error) {
	for _, candidate := range validCacheStoreKindValues {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cache store %q", value)
}
