package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DaKloudStudios/cruzremodel-backend/api/controllers"
	"github.com/DaKloudStudios/cruzremodel-backend/api/middleware"
	estimatesvc "github.com/DaKloudStudios/cruzremodel-backend/internal/estimates"
	settingssvc "github.com/DaKloudStudios/cruzremodel-backend/internal/settings"
	"github.com/DaKloudStudios/cruzremodel-backend/pkg/config"
	"github.com/DaKloudStudios/cruzremodel-backend/pkg/logger"
	"github.com/DaKloudStudios/cruzremodel-backend/pkg/metrics"
)

// Dependencies carries everything the router needs. Pingers and the metrics
// registry may be nil; the matching surface degrades rather than panics.
type Dependencies struct {
	Config           *config.Config
	Logger           *logger.Logger
	DBPinger         controllers.Pinger
	RedisPinger      controllers.Pinger
	MetricsRegistry  *prometheus.Registry
	SettingsService  settingssvc.Service
	EstimatesService estimatesvc.Service
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	var reqMetrics *metrics.RequestMetrics
	if deps.MetricsRegistry != nil {
		reqMetrics = metrics.NewRequestMetrics(deps.MetricsRegistry)
	}

	r.Use(
		middleware.Recoverer(deps.Logger),
		middleware.RequestID(deps.Logger),
		middleware.Logging(deps.Logger),
		middleware.Metrics(reqMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(deps.Config))
		r.Get("/ready", controllers.HealthReady(deps.Config, deps.Logger, deps.DBPinger, deps.RedisPinger))
	})

	if deps.MetricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.MetricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", controllers.GetSettings(deps.SettingsService, deps.Logger))
			r.Put("/", controllers.UpdateSettings(deps.SettingsService, deps.Logger))
			r.Get("/metrics", controllers.GetBusinessMetrics(deps.SettingsService, deps.Logger))
		})

		r.Route("/estimates", func(r chi.Router) {
			r.Get("/", controllers.ListEstimates(deps.EstimatesService, deps.Logger))
			r.Post("/", controllers.CreateEstimate(deps.EstimatesService, deps.Logger))

			r.Route("/{estimateId}", func(r chi.Router) {
				r.Get("/", controllers.GetEstimate(deps.EstimatesService, deps.Logger))
				r.Patch("/", controllers.UpdateEstimate(deps.EstimatesService, deps.Logger))
				r.Delete("/", controllers.DeleteEstimate(deps.EstimatesService, deps.Logger))

				r.Get("/totals", controllers.GetEstimateTotals(deps.EstimatesService, deps.Logger))
				r.Post("/margin", controllers.ApplyEstimateMargin(deps.EstimatesService, deps.Logger))
				r.Patch("/adjustments", controllers.UpdateEstimateAdjustments(deps.EstimatesService, deps.Logger))

				r.Route("/items", func(r chi.Router) {
					r.Post("/", controllers.AddEstimateItem(deps.EstimatesService, deps.Logger))
					r.Patch("/{itemId}", controllers.UpdateEstimateItem(deps.EstimatesService, deps.Logger))
					r.Delete("/{itemId}", controllers.RemoveEstimateItem(deps.EstimatesService, deps.Logger))
				})

				r.Route("/zones", func(r chi.Router) {
					r.Post("/", controllers.AddEstimateZone(deps.EstimatesService, deps.Logger))
					r.Patch("/{zoneId}", controllers.UpdateEstimateZone(deps.EstimatesService, deps.Logger))
					r.Delete("/{zoneId}", controllers.RemoveEstimateZone(deps.EstimatesService, deps.Logger))
				})
			})
		})
	})

	return r
}
