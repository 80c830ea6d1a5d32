package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const metricSegment = "metric"

var keyEscaper = strings.NewReplacer(
	"%", "%25",
	":", "%3a",
	"/", "%2f",
	"*", "%2a",
	"?", "%3f",
	"[", "%5b",
	"]", "%5d",
	" ", "%20",
)

// KeyParams identifies one cached metric result.
type KeyParams struct {
	Metric    string
	Range     string
	Timezone  string
	UserScope string
	Suffix    string
}

// KeyComposer builds deterministic, lower-cased cache keys:
//
//	prefix:metric:{metric}:{range}:{tz-hash}[:u={scope}][:s={suffix}]
type KeyComposer struct {
	Prefix string
}

// Compose returns the key for p.
func (k KeyComposer) Compose(p KeyParams) string {
	parts := []string{
		k.prefix(),
		metricSegment,
		escape(p.Metric),
		escape(p.Range),
		TimezoneHash(p.Timezone),
	}
	if p.UserScope != "" {
		parts = append(parts, "u="+escape(p.UserScope))
	}
	if p.Suffix != "" {
		parts = append(parts, "s="+escape(p.Suffix))
	}
	return strings.Join(parts, ":")
}

// MetricPattern matches every key of one metric.
func (k KeyComposer) MetricPattern(metric string) string {
	return strings.Join([]string{k.prefix(), metricSegment, escape(metric), "*"}, ":")
}

// AllPattern matches every metric key under the prefix.
func (k KeyComposer) AllPattern() string {
	return strings.Join([]string{k.prefix(), metricSegment, "*"}, ":")
}

func (k KeyComposer) prefix() string {
	p := strings.ToLower(strings.TrimSpace(k.Prefix))
	if p == "" {
		return "pfm"
	}
	return p
}

// TimezoneHash shortens a timezone name to a stable 12 hex character digest.
func TimezoneHash(tz string) string {
	tz = strings.ToLower(strings.TrimSpace(tz))
	if tz == "" {
		tz = "utc"
	}
	sum := sha256.Sum256([]byte(tz))
	return hex.EncodeToString(sum[:6])
}

func escape(part string) string {
	return keyEscaper.Replace(strings.ToLower(strings.TrimSpace(part)))
}
