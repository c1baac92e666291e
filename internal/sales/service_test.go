package sales

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/storeopshq/storeops-backend/pkg/erp"
	pkgerrors "github.com/storeopshq/storeops-backend/pkg/errors"
	"github.com/storeopshq/storeops-backend/pkg/logger"
)

type stubSearcher struct {
	fn func(ctx context.Context, params erp.SalesSearchParams) (json.RawMessage, error)
}

func (s *stubSearcher) SearchSales(ctx context.Context, params erp.SalesSearchParams) (json.RawMessage, error) {
	return s.fn(ctx, params)
}

func newTestService(t *testing.T, stub *stubSearcher) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(stub, logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestSearchAppliesDefaults(t *testing.T) {
	var captured erp.SalesSearchParams
	svc := newTestService(t, &stubSearcher{
		fn: func(ctx context.Context, params erp.SalesSearchParams) (json.RawMessage, error) {
			captured = params
			return json.RawMessage(`{"invoices":[]}`), nil
		},
	})

	result, err := svc.Search(context.Background(), erp.SalesSearchParams{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if captured.Period != "7d" || captured.Limit != 200 {
		t.Fatalf("defaults not applied: %+v", captured)
	}
	if string(result) != `{"invoices":[]}` {
		t.Fatalf("result not passed through: %s", result)
	}
}

func TestSearchCapsLimit(t *testing.T) {
	var captured erp.SalesSearchParams
	svc := newTestService(t, &stubSearcher{
		fn: func(ctx context.Context, params erp.SalesSearchParams) (json.RawMessage, error) {
			captured = params
			return json.RawMessage(`{}`), nil
		},
	})

	if _, err := svc.Search(context.Background(), erp.SalesSearchParams{Period: "30d", Limit: 5000}); err != nil {
		t.Fatalf("search: %v", err)
	}
	if captured.Limit != maxLimit {
		t.Fatalf("limit not capped: %d", captured.Limit)
	}
}

func TestSearchRejectsUnknownPeriod(t *testing.T) {
	svc := newTestService(t, &stubSearcher{})

	_, err := svc.Search(context.Background(), erp.SalesSearchParams{Period: "90d"})
	typed := pkgerrors.As(err)
	if typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected code %s", typed.Code())
	}
}

func TestSearchCustomPeriodRequiresBothDates(t *testing.T) {
	svc := newTestService(t, &stubSearcher{})

	_, err := svc.Search(context.Background(), erp.SalesSearchParams{Period: "custom", FromDate: "2025-08-01"})
	typed := pkgerrors.As(err)
	if typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected code %s", typed.Code())
	}
}

func TestSearchPropagatesUpstreamError(t *testing.T) {
	svc := newTestService(t, &stubSearcher{
		fn: func(ctx context.Context, params erp.SalesSearchParams) (json.RawMessage, error) {
			return nil, pkgerrors.New(pkgerrors.CodeUpstreamOffline, erp.OfflineMessage)
		},
	})

	_, err := svc.Search(context.Background(), erp.SalesSearchParams{Period: "today"})
	typed := pkgerrors.As(err)
	if typed.Code() != pkgerrors.CodeUpstreamOffline {
		t.Fatalf("unexpected code %s", typed.Code())
	}
}
