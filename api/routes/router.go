package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/packfinderz-metrics/api/controllers"
	metriccontrollers "github.com/angelmondragon/packfinderz-metrics/api/controllers/metrics"
	"github.com/angelmondragon/packfinderz-metrics/api/middleware"
	"github.com/angelmondragon/packfinderz-metrics/internal/metric"
	"github.com/angelmondragon/packfinderz-metrics/pkg/config"
	"github.com/angelmondragon/packfinderz-metrics/pkg/logger"
)

const adminRole = "admin"

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	metricService *metric.Service,
	readiness map[string]controllers.Pinger,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.App.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(cfg.App.RequestTimeout))
		}
		r.Use(middleware.Identity(logg))

		r.Route("/metrics", func(r chi.Router) {
			r.Get("/", metriccontrollers.Dashboard(metricService, logg))
			r.Get("/{uriKey}", metriccontrollers.Show(metricService, logg))
			r.Get("/{uriKey}/trend", metriccontrollers.Trend(metricService, logg))
			r.Get("/{uriKey}/meta", metriccontrollers.Describe(metricService, logg))
		})

		r.Route("/cache", func(r chi.Router) {
			r.Use(middleware.RequireRole(adminRole, logg))
			r.Get("/stats", metriccontrollers.CacheStats(metricService, logg))
			r.Post("/stats/reset", metriccontrollers.CacheResetStats(metricService, logg))
			r.Get("/analysis", metriccontrollers.CacheAnalysis(metricService, logg))
			r.Delete("/metrics/{uriKey}", metriccontrollers.CacheInvalidate(metricService, logg))
			r.Post("/warm", metriccontrollers.CacheWarm(metricService, metriccontrollers.WarmDefaults{
				Ranges:    cfg.Cache.WarmRanges,
				Timezones: cfg.Cache.WarmTimezones,
			}, logg))
		})
	})

	return r
}
