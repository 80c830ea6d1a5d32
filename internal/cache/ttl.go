package cache

import "time"

type ttlKind int

const (
	ttlNone ttlKind = iota
	ttlDuration
	ttlUntil
)

// TTL is a metric's cache lifetime policy. The zero value disables caching.
type TTL struct {
	kind     ttlKind
	duration time.Duration
	until    time.Time
}

// NoCache always recomputes.
func NoCache() TTL {
	return TTL{}
}

// Seconds caches for n seconds.
func Seconds(n int) TTL {
	return For(time.Duration(n) * time.Second)
}

// For caches for d, truncated to whole seconds.
func For(d time.Duration) TTL {
	if d <= 0 {
		return NoCache()
	}
	return TTL{kind: ttlDuration, duration: d}
}

// Until caches until the absolute instant t.
func Until(t time.Time) TTL {
	return TTL{kind: ttlUntil, until: t}
}

// Cacheable reports whether the policy ever stores anything.
func (t TTL) Cacheable() bool {
	return t.kind != ttlNone
}

// Resolve returns the lifetime to store with at now, in whole seconds.
// Zero means the entry must not be stored.
func (t TTL) Resolve(now time.Time) time.Duration {
	var d time.Duration
	switch t.kind {
	case ttlDuration:
		d = t.duration
	case ttlUntil:
		d = t.until.Sub(now)
	}
	if d <= 0 {
		return 0
	}
	return d.Truncate(time.Second)
}

func (t TTL) String() string {
	switch t.kind {
	case ttlDuration:
		return t.duration.String()
	case ttlUntil:
		return "until " + t.until.Format(time.RFC3339)
	}
	return "no-cache"
}
