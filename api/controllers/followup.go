package controllers

import (
	"net/http"

	"github.com/storeopshq/storeops-backend/api/responses"
	"github.com/storeopshq/storeops-backend/api/validators"
	"github.com/storeopshq/storeops-backend/internal/followup"
	"github.com/storeopshq/storeops-backend/pkg/logger"
)

// FollowupList lists reminders with optional filters.
func FollowupList(svc followup.Service, logg *logger.Logger) http.HandlerFunc {
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

		result, err := svc.List(ctx, followup.ListFilter{
			Status:       r.URL.Query().Get("status"),
			CustomerName: r.URL.Query().Get("customer_name"),
			Salesperson:  r.URL.Query().Get("salesperson"),
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

type followupCreateRequest struct {
	CustomerName     string  `json:"customer_name" validate:"required"`
	Phone            string  `json:"phone" validate:"required"`
	Salesperson      string  `json:"salesperson" validate:"required"`
	Notes            string  `json:"notes" validate:"required"`
	FollowupDate     string  `json:"followup_date" validate:"required,datetime=2006-01-02"`
	NextFollowupDate *string `json:"next_followup_date" validate:"omitempty,datetime=2006-01-02"`
	Status           string  `json:"status" validate:"omitempty,oneof=Open Closed"`
}

// FollowupCreate records a new reminder.
func FollowupCreate(svc followup.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req followupCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		followupDate, err := validators.ParseDate("followup_date", req.FollowupDate)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		nextDate, err := validators.ParseOptionalDate("next_followup_date", req.NextFollowupDate)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		entry, err := svc.Create(ctx, followup.CreateInput{
			CustomerName:     req.CustomerName,
			Phone:            req.Phone,
			Salesperson:      req.Salesperson,
			Notes:            req.Notes,
			FollowupDate:     followupDate,
			NextFollowupDate: nextDate,
			Status:           req.Status,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

type followupUpdateRequest struct {
	Status           *string `json:"status" validate:"omitempty,oneof=Open Closed"`
	Notes            *string `json:"notes"`
	NextFollowupDate *string `json:"next_followup_date" validate:"omitempty,datetime=2006-01-02"`
}

// FollowupUpdate patches status, notes, or the next follow-up date.
func FollowupUpdate(svc followup.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := entryID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req followupUpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		nextDate, err := validators.ParseOptionalDate("next_followup_date", req.NextFollowupDate)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		entry, err := svc.Update(ctx, id, followup.UpdateInput{
			Status:           req.Status,
			Notes:            req.Notes,
			NextFollowupDate: nextDate,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, entry)
	}
}

type followupCloseRequest struct {
	NextFollowupDate string `json:"next_followup_date" validate:"required,datetime=2006-01-02"`
}

// FollowupClose closes a reminder and opens its successor.
func FollowupClose(svc followup.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := entryID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req followupCloseRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		nextDate, err := validators.ParseDate("next_followup_date", req.NextFollowupDate)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		successor, err := svc.CloseWithNext(ctx, id, nextDate)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, successor)
	}
}

// FollowupDelete removes a reminder.
func FollowupDelete(svc followup.Service, logg *logger.Logger) http.HandlerFunc {
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
