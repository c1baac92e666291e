package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/storeopshq/storeops-backend/api/responses"
	"github.com/storeopshq/storeops-backend/api/validators"
	"github.com/storeopshq/storeops-backend/internal/stockin"
	pkgerrors "github.com/storeopshq/storeops-backend/pkg/errors"
	"github.com/storeopshq/storeops-backend/pkg/logger"
)

var allowedInvoiceTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/webp":      {},
	"application/pdf": {},
}

// StockInUpload accepts a multipart invoice file, runs extraction, and
// opens a staging session.
func StockInUpload(svc stockin.Service, logg *logger.Logger, maxUploadBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart upload"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "file field is required"))
			return
		}
		defer func() { _ = file.Close() }()

		contentType := header.Header.Get("Content-Type")
		if _, ok := allowedInvoiceTypes[contentType]; !ok {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("unsupported file type: %s. Use JPEG, PNG, WebP, or PDF.", contentType)))
			return
		}

		view, err := svc.Upload(ctx, header.Filename, contentType, file)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// StockInGet returns the current staging snapshot.
func StockInGet(svc stockin.Service, logg *logger.Logger) http.HandlerFunc {
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

type updateRowRequest struct {
	Field string          `json:"field" validate:"required,oneof=item_name quantity unit unit_price"`
	Value json.RawMessage `json:"value" validate:"required"`
}

// StockInUpdateRow edits one field of one staged row.
func StockInUpdateRow(svc stockin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		localID, err := rowID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req updateRowRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		view, err := svc.UpdateField(ctx, chi.URLParam(r, "sessionID"), localID, stockin.Field(req.Field), rawScalar(req.Value))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// StockInRemoveRow drops one staged row.
func StockInRemoveRow(svc stockin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		localID, err := rowID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		view, err := svc.RemoveRow(ctx, chi.URLParam(r, "sessionID"), localID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// StockInCommit submits the staged rows as one stock entry.
func StockInCommit(svc stockin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		ack, err := svc.Commit(ctx, chi.URLParam(r, "sessionID"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, ack)
	}
}

// StockInReset discards the staging session.
func StockInReset(svc stockin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := svc.Reset(ctx, chi.URLParam(r, "sessionID")); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"reset": true})
	}
}

func rowID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "localID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "row id must be a non-negative integer")
	}
	return id, nil
}

// rawScalar renders a JSON scalar as the text a user typed: quoted
// strings are unquoted, numbers and anything else pass through as
// their literal text.
func rawScalar(raw json.RawMessage) string {
	text := strings.TrimSpace(string(raw))
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return text
}
