package metric

import (
	"context"

	"github.com/angelmondragon/packfinderz-metrics/internal/results"
	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
)

// Format is the serializable part of a metric's formatting.
type Format struct {
	Prefix   string                `json:"prefix,omitempty"`
	Suffix   string                `json:"suffix,omitempty"`
	Currency string                `json:"currency,omitempty"`
	Number   *results.NumberFormat `json:"number,omitempty"`
}

// Meta describes a metric card to the dashboard.
type Meta struct {
	Name         string           `json:"name"`
	URIKey       string           `json:"uri_key"`
	Kind         enums.MetricKind `json:"kind"`
	Icon         string           `json:"icon,omitempty"`
	Color        string           `json:"color,omitempty"`
	Help         string           `json:"help,omitempty"`
	Ranges       []Range          `json:"ranges"`
	DefaultRange string           `json:"default_range"`
	Format       Format           `json:"format"`
	CacheTTL     string           `json:"cache_ttl"`
	UserScoped   bool             `json:"user_scoped"`
	Authorized   bool             `json:"authorized"`
}

// Meta returns the card metadata as seen by the caller of req.
func (m *Metric) Meta(ctx context.Context, req Request) Meta {
	ranges := m.Ranges()
	if ranges == nil {
		ranges = []Range{}
	}
	return Meta{
		Name:         m.name,
		URIKey:       m.uriKey,
		Kind:         m.Kind(),
		Icon:         m.icon,
		Color:        m.color,
		Help:         m.help,
		Ranges:       ranges,
		DefaultRange: m.DefaultRange(),
		Format: Format{
			Prefix:   m.formatting.Prefix,
			Suffix:   m.formatting.Suffix,
			Currency: m.formatting.Currency,
			Number:   m.formatting.Number,
		},
		CacheTTL:   m.ttl.String(),
		UserScoped: m.userScoped,
		Authorized: m.Authorized(ctx, req),
	}
}
