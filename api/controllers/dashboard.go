package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/storeopshq/storeops-backend/api/responses"
	"github.com/storeopshq/storeops-backend/api/validators"
	"github.com/storeopshq/storeops-backend/internal/analytics"
	"github.com/storeopshq/storeops-backend/pkg/logger"
)

// DashboardSummary proxies the inventory dashboard snapshot.
func DashboardSummary(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		result, err := svc.Summary(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// DashboardReorderAlerts proxies items below their reorder threshold.
func DashboardReorderAlerts(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		result, err := svc.ReorderAlerts(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// DashboardDeadStock proxies items without movement in a window.
func DashboardDeadStock(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		days, err := validators.ParseQueryInt(r, "days", 0, 1, 365)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.DeadStock(ctx, days)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// DashboardDemandForecast proxies the per-item forecast.
func DashboardDemandForecast(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		periods, err := validators.ParseQueryInt(r, "periods", 0, 1, 12)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.DemandForecast(ctx, chi.URLParam(r, "itemCode"), periods)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// DashboardSalesVelocity proxies per-item sales velocity.
func DashboardSalesVelocity(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		days, err := validators.ParseQueryInt(r, "days", 0, 1, 365)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.SalesVelocity(ctx, days)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
