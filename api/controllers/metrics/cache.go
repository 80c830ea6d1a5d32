package metrics

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/packfinderz-metrics/api/responses"
	"github.com/angelmondragon/packfinderz-metrics/api/validators"
	"github.com/angelmondragon/packfinderz-metrics/internal/cache"
	"github.com/angelmondragon/packfinderz-metrics/internal/daterange"
	"github.com/angelmondragon/packfinderz-metrics/internal/metric"
	pkgerrors "github.com/angelmondragon/packfinderz-metrics/pkg/errors"
	"github.com/angelmondragon/packfinderz-metrics/pkg/logger"
)

// WarmDefaults are used when a warm request omits ranges or timezones.
type WarmDefaults struct {
	Ranges    []string
	Timezones []string
}

type warmBody struct {
	Metrics   []string `json:"metrics" validate:"omitempty,max=100,dive,required,max=128"`
	Ranges    []string `json:"ranges" validate:"omitempty,max=20,dive,required,max=16"`
	Timezones []string `json:"timezones" validate:"omitempty,max=20,dive,required,max=64"`
}

func cacheManager(svc *metric.Service) (*cache.Manager, error) {
	mgr := svc.Registry().Cache()
	if mgr == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConfiguration, "metric caching is disabled")
	}
	return mgr, nil
}

func CacheStats(svc *metric.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mgr, err := cacheManager(svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, mgr.Stats())
	}
}

func CacheResetStats(svc *metric.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mgr, err := cacheManager(svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		mgr.ResetStats()
		responses.WriteSuccess(w, mgr.Stats())
	}
}

func CacheAnalysis(svc *metric.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mgr, err := cacheManager(svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, mgr.AnalyzePerformance(r.Context()))
	}
}

// CacheInvalidate drops every cached result of one metric.
func CacheInvalidate(svc *metric.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uriKey := chi.URLParam(r, uriKeyParam)
		ctx := logg.WithMetric(r.Context(), uriKey)
		m, err := svc.Lookup(uriKey)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		deleted, err := m.Forget(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cache invalidation failed"))
			return
		}
		logg.Info(logg.WithField(ctx, "deleted", deleted), "metric cache invalidated")
		responses.WriteSuccess(w, map[string]any{"uri_key": uriKey, "deleted": deleted})
	}
}

// CacheWarm precomputes the requested metrics (all warmable ones by default)
// for every range and timezone combination.
func CacheWarm(svc *metric.Service, defaults WarmDefaults, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		mgr, err := cacheManager(svc)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var body warmBody
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
		}
		if len(body.Ranges) == 0 {
			body.Ranges = defaults.Ranges
		}
		if len(body.Timezones) == 0 {
			body.Timezones = defaults.Timezones
		}
		for _, raw := range body.Ranges {
			if _, err := daterange.ParseToken(raw); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid warm range").WithDetails(map[string]any{"range": raw}))
				return
			}
		}
		for _, tz := range body.Timezones {
			if _, err := daterange.LoadLocation(tz); err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
		}

		targets, err := warmTargets(svc, body.Metrics)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		report := mgr.WarmAll(ctx, targets, cache.Combinations(body.Ranges, body.Timezones))
		logg.Info(logg.WithFields(ctx, map[string]any{
			"warmed":         report.Warmed,
			"already_cached": report.AlreadyCached,
			"errors":         report.Errors,
		}), "cache warm requested")
		responses.WriteSuccess(w, report)
	}
}

func warmTargets(svc *metric.Service, uriKeys []string) ([]cache.Warmable, error) {
	if len(uriKeys) == 0 {
		return svc.Registry().Warmables(), nil
	}
	targets := make([]cache.Warmable, 0, len(uriKeys))
	for _, key := range uriKeys {
		m, err := svc.Lookup(key)
		if err != nil {
			return nil, err
		}
		if !m.CacheTTL().Cacheable() || m.UserScoped() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "metric "+key+" cannot be warmed").
				WithDetails(map[string]any{"uri_key": key, "user_scoped": m.UserScoped()})
		}
		targets = append(targets, m)
	}
	return targets, nil
}
