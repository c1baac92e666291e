package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/storeopshq/storeops-backend/api/controllers"
	"github.com/storeopshq/storeops-backend/api/middleware"
	"github.com/storeopshq/storeops-backend/internal/analytics"
	"github.com/storeopshq/storeops-backend/internal/followup"
	"github.com/storeopshq/storeops-backend/internal/sales"
	"github.com/storeopshq/storeops-backend/internal/stockin"
	"github.com/storeopshq/storeops-backend/internal/stockout"
	"github.com/storeopshq/storeops-backend/internal/udhar"
	"github.com/storeopshq/storeops-backend/pkg/config"
	"github.com/storeopshq/storeops-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	readiness map[string]controllers.ReadinessPinger,
	metricsGatherer prometheus.Gatherer,
	stockInService stockin.Service,
	stockOutService stockout.Service,
	udharService udhar.Service,
	followupService followup.Service,
	salesService sales.Service,
	analyticsService analytics.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	maxUploadBytes := int64(cfg.Staging.MaxUploadMB) << 20

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	if metricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/stock-in", func(r chi.Router) {
			r.Post("/upload", controllers.StockInUpload(stockInService, logg, maxUploadBytes))
			r.Route("/sessions/{sessionID}", func(r chi.Router) {
				r.Get("/", controllers.StockInGet(stockInService, logg))
				r.Delete("/", controllers.StockInReset(stockInService, logg))
				r.Post("/commit", controllers.StockInCommit(stockInService, logg))
				r.Patch("/rows/{localID}", controllers.StockInUpdateRow(stockInService, logg))
				r.Delete("/rows/{localID}", controllers.StockInRemoveRow(stockInService, logg))
			})
		})

		r.Route("/stock-out/carts", func(r chi.Router) {
			r.Post("/", controllers.CartOpen(stockOutService, logg))
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", controllers.CartGet(stockOutService, logg))
				r.Delete("/", controllers.CartClose(stockOutService, logg))
				r.Post("/scan", controllers.CartScan(stockOutService, logg))
				r.Post("/checkout", controllers.CartCheckout(stockOutService, logg))
				r.Put("/lines/{itemCode}", controllers.CartSetQty(stockOutService, logg))
				r.Delete("/lines/{itemCode}", controllers.CartRemoveLine(stockOutService, logg))
			})
		})

		r.Route("/udhar", func(r chi.Router) {
			r.Get("/", controllers.UdharList(udharService, logg))
			r.Post("/", controllers.UdharCreate(udharService, logg))
			r.Patch("/{entryID}", controllers.UdharUpdate(udharService, logg))
			r.Delete("/{entryID}", controllers.UdharDelete(udharService, logg))
		})

		r.Route("/followup", func(r chi.Router) {
			r.Get("/", controllers.FollowupList(followupService, logg))
			r.Post("/", controllers.FollowupCreate(followupService, logg))
			r.Patch("/{entryID}", controllers.FollowupUpdate(followupService, logg))
			r.Post("/{entryID}/close", controllers.FollowupClose(followupService, logg))
			r.Delete("/{entryID}", controllers.FollowupDelete(followupService, logg))
		})

		r.Get("/sales/search", controllers.SalesSearch(salesService, logg))

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/summary", controllers.DashboardSummary(analyticsService, logg))
			r.Get("/reorder-alerts", controllers.DashboardReorderAlerts(analyticsService, logg))
			r.Get("/dead-stock", controllers.DashboardDeadStock(analyticsService, logg))
			r.Get("/demand-forecast/{itemCode}", controllers.DashboardDemandForecast(analyticsService, logg))
			r.Get("/sales-velocity", controllers.DashboardSalesVelocity(analyticsService, logg))
		})
	})

	return r
}
