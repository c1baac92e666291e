package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/storeopshq/storeops-backend/api/responses"
	"github.com/storeopshq/storeops-backend/api/validators"
	"github.com/storeopshq/storeops-backend/internal/udhar"
	pkgerrors "github.com/storeopshq/storeops-backend/pkg/errors"
	"github.com/storeopshq/storeops-backend/pkg/logger"
)

// UdharList lists ledger entries with optional filters.
func UdharList(svc udhar.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		offset, err := validators.ParseQueryInt(r, "skip", 0, 0, 1_000_000)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 100, 1, 500)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		fromDate, err := validators.ParseQueryDate(r, "from_date")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		toDate, err := validators.ParseQueryDate(r, "to_date")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.List(ctx, udhar.ListFilter{
			Status:       r.URL.Query().Get("status"),
			CustomerName: r.URL.Query().Get("customer_name"),
			FromDate:     fromDate,
			ToDate:       toDate,
			Offset:       offset,
			Limit:        limit,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type udharCreateRequest struct {
	CustomerName string          `json:"customer_name" validate:"required"`
	Phone        string          `json:"phone" validate:"required"`
	Items        string          `json:"items" validate:"required"`
	Amount       decimal.Decimal `json:"amount"`
	DateGiven    string          `json:"date_given" validate:"required,datetime=2006-01-02"`
	DueDate      string          `json:"due_date" validate:"required,datetime=2006-01-02"`
	Status       string          `json:"status" validate:"omitempty,oneof=Pending Paid"`
}

// UdharCreate records a new credit entry.
func UdharCreate(svc udhar.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req udharCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dateGiven, err := validators.ParseDate("date_given", req.DateGiven)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		dueDate, err := validators.ParseDate("due_date", req.DueDate)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		entry, err := svc.Create(ctx, udhar.CreateInput{
			CustomerName: req.CustomerName,
			Phone:        req.Phone,
			Items:        req.Items,
			Amount:       req.Amount,
			DateGiven:    dateGiven,
			DueDate:      dueDate,
			Status:       req.Status,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

type udharUpdateRequest struct {
	Status  *string          `json:"status" validate:"omitempty,oneof=Pending Paid"`
	DueDate *string          `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Items   *string          `json:"items"`
	Amount  *decimal.Decimal `json:"amount"`
}

// UdharUpdate patches status, due date, items, or amount.
func UdharUpdate(svc udhar.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := entryID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req udharUpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dueDate, err := validators.ParseOptionalDate("due_date", req.DueDate)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		entry, err := svc.Update(ctx, id, udhar.UpdateInput{
			Status:  req.Status,
			DueDate: dueDate,
			Items:   req.Items,
			Amount:  req.Amount,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, entry)
	}
}

// UdharDelete removes a ledger entry.
func UdharDelete(svc udhar.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := entryID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

func entryID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "entryID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "entry id must be a positive integer")
	}
	return id, nil
}
