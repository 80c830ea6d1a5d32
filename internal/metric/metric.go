// Package metric binds an aggregation strategy to its dashboard metadata and
// cache policy.
package metric

import (
	"context"
	"strings"
	"unicode"

	"github.com/angelmondragon/packfinderz-metrics/internal/aggregation"
	"github.com/angelmondragon/packfinderz-metrics/internal/cache"
	"github.com/angelmondragon/packfinderz-metrics/internal/daterange"
	"github.com/angelmondragon/packfinderz-metrics/internal/query"
	"github.com/angelmondragon/packfinderz-metrics/internal/results"
	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
)

const (
	defaultRange          = "30"
	defaultUnboundedRange = "ALL"
)

// Authorizer decides whether the caller may see a metric.
type Authorizer func(ctx context.Context, req Request) bool

// Range is one selectable range offered to the dashboard.
type Range struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Request carries the caller's parameters for one calculation.
type Request struct {
	Range         string              `json:"range"`
	Timezone      string              `json:"timezone"`
	UserID        string              `json:"user_id,omitempty"`
	SortBy        string              `json:"sort_by,omitempty"`
	SortDirection enums.SortDirection `json:"sort_direction,omitempty"`
	Limit         int                 `json:"limit,omitempty"`
}

// Metric is one dashboard card: a strategy over a source plus presentation
// and caching metadata.
type Metric struct {
	name         string
	uriKey       string
	icon         string
	color        string
	help         string
	ranges       []Range
	defaultRange string
	strategy     aggregation.Strategy
	source       query.Source
	formatting   results.Formatting
	ttl          cache.TTL
	authorize    Authorizer
	userScoped   bool
	suffix       string

	env Env
}

// Option configures a Metric.
type Option func(*Metric)

// New builds a metric. The URI key defaults to a slug of the name.
func New(name string, strategy aggregation.Strategy, source query.Source, opts ...Option) *Metric {
	m := &Metric{
		name:     name,
		uriKey:   Slug(name),
		strategy: strategy,
		source:   source,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func WithURIKey(key string) Option {
	return func(m *Metric) {
		if key = strings.TrimSpace(key); key != "" {
			m.uriKey = key
		}
	}
}

func WithIcon(icon string) Option {
	return func(m *Metric) { m.icon = icon }
}

func WithColor(color string) Option {
	return func(m *Metric) { m.color = color }
}

func WithHelp(text string) Option {
	return func(m *Metric) { m.help = text }
}

// WithRanges sets the selectable ranges. The first one is the default unless
// WithDefaultRange says otherwise.
func WithRanges(ranges ...Range) Option {
	return func(m *Metric) { m.ranges = append([]Range(nil), ranges...) }
}

func WithDefaultRange(value string) Option {
	return func(m *Metric) { m.defaultRange = value }
}

func WithFormatting(f results.Formatting) Option {
	return func(m *Metric) { m.formatting = f }
}

// WithCacheTTL sets the cache policy. Metrics without one are never cached.
func WithCacheTTL(ttl cache.TTL) Option {
	return func(m *Metric) { m.ttl = ttl }
}

func WithAuthorization(fn Authorizer) Option {
	return func(m *Metric) { m.authorize = fn }
}

// WithUserScope keys cached results per user.
func WithUserScope() Option {
	return func(m *Metric) { m.userScoped = true }
}

// WithCacheSuffix adds a fixed discriminator to every cache key.
func WithCacheSuffix(suffix string) Option {
	return func(m *Metric) { m.suffix = suffix }
}

func (m *Metric) Name() string                   { return m.name }
func (m *Metric) URIKey() string                 { return m.uriKey }
func (m *Metric) Kind() enums.MetricKind         { return m.strategy.Kind() }
func (m *Metric) CacheTTL() cache.TTL            { return m.ttl }
func (m *Metric) Strategy() aggregation.Strategy { return m.strategy }
func (m *Metric) UserScoped() bool               { return m.userScoped }

// Ranges returns the selectable ranges.
func (m *Metric) Ranges() []Range {
	return append([]Range(nil), m.ranges...)
}

// DefaultRange is used when a request names none.
func (m *Metric) DefaultRange() string {
	switch {
	case m.defaultRange != "":
		return m.defaultRange
	case len(m.ranges) > 0:
		return m.ranges[0].Value
	case m.Kind() == enums.MetricKindPartition || m.Kind() == enums.MetricKindTable:
		return defaultUnboundedRange
	}
	return defaultRange
}

// Authorized runs the authorization predicate. Metrics without one are public.
func (m *Metric) Authorized(ctx context.Context, req Request) bool {
	if m.authorize == nil {
		return true
	}
	return m.authorize(ctx, req)
}

func (m *Metric) resolver() *daterange.Resolver {
	if m.env.Resolver != nil {
		return m.env.Resolver
	}
	return daterange.NewResolver()
}

// Slug lower-cases name and joins its letters and digits with dashes.
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
