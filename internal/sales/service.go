package sales

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/storeopshq/storeops-backend/pkg/erp"
	pkgerrors "github.com/storeopshq/storeops-backend/pkg/errors"
	"github.com/storeopshq/storeops-backend/pkg/logger"
)

const (
	defaultPeriod = "7d"
	defaultLimit  = 200
	maxLimit      = 1000
)

var validPeriods = map[string]struct{}{
	"today":  {},
	"7d":     {},
	"30d":    {},
	"custom": {},
}

// Searcher is the upstream surface the sales search depends on.
type Searcher interface {
	SearchSales(ctx context.Context, params erp.SalesSearchParams) (json.RawMessage, error)
}

// Service exposes sales invoice search.
type Service interface {
	Search(ctx context.Context, params erp.SalesSearchParams) (json.RawMessage, error)
}

type service struct {
	upstream Searcher
	logger   *logger.Logger
}

// NewService builds the sales search service.
func NewService(upstream Searcher, logg *logger.Logger) (Service, error) {
	if upstream == nil {
		return nil, fmt.Errorf("upstream client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{upstream: upstream, logger: logg}, nil
}

// Search validates the period filter then delegates to the backend.
func (s *service) Search(ctx context.Context, params erp.SalesSearchParams) (json.RawMessage, error) {
	if params.Period == "" {
		params.Period = defaultPeriod
	}
	if _, ok := validPeriods[params.Period]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid period: %s", params.Period))
	}
	if params.Period == "custom" && (params.FromDate == "" || params.ToDate == "") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from_date and to_date are required when period=custom")
	}
	if params.Limit <= 0 {
		params.Limit = defaultLimit
	}
	if params.Limit > maxLimit {
		params.Limit = maxLimit
	}

	result, err := s.upstream.SearchSales(ctx, params)
	if err != nil {
		s.logger.Error(ctx, "sales search failed", err)
		return nil, err
	}
	return result, nil
}
