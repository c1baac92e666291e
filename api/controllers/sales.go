package controllers

import (
	"net/http"

	"github.com/storeopshq/storeops-backend/api/responses"
	"github.com/storeopshq/storeops-backend/api/validators"
	"github.com/storeopshq/storeops-backend/internal/sales"
	"github.com/storeopshq/storeops-backend/pkg/erp"
	"github.com/storeopshq/storeops-backend/pkg/logger"
)

// SalesSearch proxies the period-filtered sales invoice search.
func SalesSearch(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 1000)
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

		result, err := svc.Search(ctx, erp.SalesSearchParams{
			Period:   r.URL.Query().Get("period"),
			FromDate: fromDate,
			ToDate:   toDate,
			Limit:    limit,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
