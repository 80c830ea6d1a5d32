package metric

import (
	"context"
	"fmt"

	"github.com/angelmondragon/packfinderz-metrics/internal/results"
	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
	pkgerrors "github.com/angelmondragon/packfinderz-metrics/pkg/errors"
	"github.com/angelmondragon/packfinderz-metrics/pkg/logger"
)

// Card is one resolved dashboard entry.
type Card struct {
	Meta     Meta              `json:"meta"`
	Result   *results.Snapshot `json:"result"`
	Degraded bool              `json:"degraded,omitempty"`
}

// Service resolves registered metrics for a caller.
type Service struct {
	registry *Registry
	logg     *logger.Logger
}

// NewService builds a dashboard service.
func NewService(registry *Registry, logg *logger.Logger) (*Service, error) {
	if registry == nil {
		return nil, fmt.Errorf("metric registry required")
	}
	return &Service{registry: registry, logg: logg}, nil
}

// Registry exposes the underlying registry.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Lookup returns the metric or a not-found error.
func (s *Service) Lookup(uriKey string) (*Metric, error) {
	m, ok := s.registry.Get(uriKey)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("metric %s not found", uriKey))
	}
	return m, nil
}

// Resolve calculates one metric. Errors are returned to the caller unchanged.
func (s *Service) Resolve(ctx context.Context, uriKey string, req Request) (Card, error) {
	m, err := s.Lookup(uriKey)
	if err != nil {
		return Card{}, err
	}
	snap, err := m.Calculate(ctx, req)
	if err != nil {
		return Card{}, err
	}
	return Card{Meta: m.Meta(ctx, req), Result: snap}, nil
}

// ResolveTrend returns the bucketed trend of a value metric.
func (s *Service) ResolveTrend(ctx context.Context, uriKey string, req Request, unit enums.BucketUnit) (Card, error) {
	m, err := s.Lookup(uriKey)
	if err != nil {
		return Card{}, err
	}
	snap, err := m.Trend(ctx, req, unit)
	if err != nil {
		return Card{}, err
	}
	meta := m.Meta(ctx, req)
	meta.Kind = enums.MetricKindTrend
	return Card{Meta: meta, Result: snap}, nil
}

// Dashboard resolves every metric the caller may see. Metrics that fail
// degrade to an empty result and the failure is logged.
func (s *Service) Dashboard(ctx context.Context, req Request) []Card {
	cards := make([]Card, 0, len(s.registry.metrics))
	for _, m := range s.registry.Metrics() {
		if !m.Authorized(ctx, req) {
			continue
		}
		card := Card{Meta: m.Meta(ctx, req)}
		snap, err := m.Calculate(ctx, req)
		if err != nil {
			s.logg.Error(s.logg.WithMetric(ctx, m.uriKey), "metric calculation failed", err)
			snap = results.Empty(m.Kind())
			card.Degraded = true
		}
		card.Result = snap
		cards = append(cards, card)
	}
	return cards
}
