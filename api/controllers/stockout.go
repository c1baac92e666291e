package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/storeopshq/storeops-backend/api/responses"
	"github.com/storeopshq/storeops-backend/api/validators"
	"github.com/storeopshq/storeops-backend/internal/stockout"
	"github.com/storeopshq/storeops-backend/pkg/logger"
)

// CartOpen creates an empty cart session for a new sale.
func CartOpen(svc stockout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		view, err := svc.Open(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// CartGet returns the current cart snapshot.
func CartGet(svc stockout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		view, err := svc.Get(ctx, chi.URLParam(r, "sessionID"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type scanRequest struct {
	Barcode string `json:"barcode"`
}

// CartScan resolves a barcode and merges it into the cart.
func CartScan(svc stockout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req scanRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		view, err := svc.Scan(ctx, chi.URLParam(r, "sessionID"), req.Barcode)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type setQtyRequest struct {
	Qty int64 `json:"qty"`
}

// CartSetQty replaces a line quantity; zero or less removes the line.
func CartSetQty(svc stockout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req setQtyRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		view, err := svc.SetQty(ctx, chi.URLParam(r, "sessionID"), chi.URLParam(r, "itemCode"), req.Qty)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartRemoveLine drops a cart line unconditionally.
func CartRemoveLine(svc stockout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		view, err := svc.RemoveLine(ctx, chi.URLParam(r, "sessionID"), chi.URLParam(r, "itemCode"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartCheckout submits the cart as one sale.
func CartCheckout(svc stockout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		ack, err := svc.Checkout(ctx, chi.URLParam(r, "sessionID"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, ack)
	}
}

// CartClose discards the cart session.
func CartClose(svc stockout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := svc.Close(ctx, chi.URLParam(r, "sessionID")); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"closed": true})
	}
}
