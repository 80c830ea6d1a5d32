// Package metrics exposes the dashboard metrics and their cache over HTTP.
package metrics

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/packfinderz-metrics/api/responses"
	"github.com/angelmondragon/packfinderz-metrics/internal/cache"
	"github.com/angelmondragon/packfinderz-metrics/internal/metric"
	pkgerrors "github.com/angelmondragon/packfinderz-metrics/pkg/errors"
	"github.com/angelmondragon/packfinderz-metrics/pkg/logger"
)

const uriKeyParam = "uriKey"

// Source is only set for cached=true reads; a regular resolve may be served
// from the cache or computed and does not say which.
type resultMeta struct {
	CacheKey string `json:"cache_key,omitempty"`
	Source   string `json:"source,omitempty"`
}

// Dashboard resolves every metric the caller may see with the same range and timezone.
func Dashboard(svc *metric.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		q, err := parseMetricQuery(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, svc.Dashboard(ctx, q.request(r)))
	}
}

// Show resolves one metric. With cached=true only a stored result is
// returned and nothing is computed.
func Show(svc *metric.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		uriKey := chi.URLParam(r, uriKeyParam)
		q, err := parseMetricQuery(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		req := q.request(r)
		ctx = logg.WithMetric(ctx, uriKey)

		m, err := svc.Lookup(uriKey)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var meta resultMeta
		if m.CacheTTL().Cacheable() {
			if key, err := m.KeyFor(req); err == nil {
				meta.CacheKey = key
			}
		}

		if q.Cached {
			if !m.Authorized(ctx, req) {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "metric "+uriKey+" is not available"))
				return
			}
			snap, err := m.Cached(ctx, req)
			if errors.Is(err, cache.ErrNotCached) {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no cached result for "+uriKey))
				return
			}
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cache lookup failed"))
				return
			}
			meta.Source = "cache"
			responses.WriteSuccessMeta(w, metric.Card{Meta: m.Meta(ctx, req), Result: snap}, meta)
			return
		}

		card, err := svc.Resolve(ctx, uriKey, req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessMeta(w, card, meta)
	}
}

// Trend returns the per-bucket breakdown of a value metric.
func Trend(svc *metric.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		uriKey := chi.URLParam(r, uriKeyParam)
		q, err := parseMetricQuery(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		card, err := svc.ResolveTrend(logg.WithMetric(ctx, uriKey), uriKey, q.request(r), q.unit())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, card)
	}
}

// Describe returns a metric's card metadata without calculating it.
func Describe(svc *metric.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		m, err := svc.Lookup(chi.URLParam(r, uriKeyParam))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		q, err := parseMetricQuery(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, m.Meta(ctx, q.request(r)))
	}
}
