package udhar

import (
	"context"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storeopshq/storeops-backend/pkg/db/models"
	pkgerrors "github.com/storeopshq/storeops-backend/pkg/errors"
	"github.com/storeopshq/storeops-backend/pkg/logger"
)

type stubRepo struct {
	listFn   func(ctx context.Context, f ListFilter) (int64, []models.UdharEntry, error)
	createFn func(ctx context.Context, entry *models.UdharEntry) error
	findFn   func(ctx context.Context, id int64) (*models.UdharEntry, error)
	saveFn   func(ctx context.Context, entry *models.UdharEntry) error
	deleteFn func(ctx context.Context, id int64) (bool, error)
}

func (s *stubRepo) List(ctx context.Context, f ListFilter) (int64, []models.UdharEntry, error) {
	return s.listFn(ctx, f)
}
func (s *stubRepo) Create(ctx context.Context, entry *models.UdharEntry) error {
	return s.createFn(ctx, entry)
}
func (s *stubRepo) FindByID(ctx context.Context, id int64) (*models.UdharEntry, error) {
	return s.findFn(ctx, id)
}
func (s *stubRepo) Save(ctx context.Context, entry *models.UdharEntry) error {
	return s.saveFn(ctx, entry)
}
func (s *stubRepo) Delete(ctx context.Context, id int64) (bool, error) {
	return s.deleteFn(ctx, id)
}

func newStubService(t *testing.T, repo Repository) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(repo, logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func validCreateInput() CreateInput {
	return CreateInput{
		CustomerName: "Ramesh Kumar",
		Phone:        "9876500000",
		Items:        "2kg atta, 1L oil",
		Amount:       decimal.NewFromInt(450),
		DateGiven:    day("2025-08-01"),
		DueDate:      day("2025-08-16"),
	}
}

func TestListNormalizesLimit(t *testing.T) {
	var captured ListFilter
	svc := newStubService(t, &stubRepo{
		listFn: func(ctx context.Context, f ListFilter) (int64, []models.UdharEntry, error) {
			captured = f
			return 0, nil, nil
		},
	})

	if _, err := svc.List(context.Background(), ListFilter{Limit: 0, Offset: -3}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if captured.Limit != defaultListLimit || captured.Offset != 0 {
		t.Fatalf("filter not normalized: %+v", captured)
	}

	if _, err := svc.List(context.Background(), ListFilter{Limit: 9000}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if captured.Limit != maxListLimit {
		t.Fatalf("limit not capped: %d", captured.Limit)
	}
}

func TestListRejectsUnknownStatusFilter(t *testing.T) {
	svc := newStubService(t, &stubRepo{})

	_, err := svc.List(context.Background(), ListFilter{Status: "Overdue"})
	typed := pkgerrors.As(err)
	if typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected code %s", typed.Code())
	}
}

func TestCreateDefaultsStatusToPending(t *testing.T) {
	svc := newStubService(t, &stubRepo{
		createFn: func(ctx context.Context, entry *models.UdharEntry) error {
			entry.ID = 7
			return nil
		},
	})

	entry, err := svc.Create(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if entry.Status != models.UdharStatusPending {
		t.Fatalf("unexpected status %q", entry.Status)
	}
	if entry.ID != 7 {
		t.Fatalf("id not backfilled: %d", entry.ID)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newStubService(t, &stubRepo{})

	missing := validCreateInput()
	missing.CustomerName = ""
	if typed := pkgerrors.As(mustErr(t, svc, missing)); typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected code %s", typed.Code())
	}

	negative := validCreateInput()
	negative.Amount = decimal.NewFromInt(-1)
	if typed := pkgerrors.As(mustErr(t, svc, negative)); typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected code %s", typed.Code())
	}

	badStatus := validCreateInput()
	badStatus.Status = "Overdue"
	if typed := pkgerrors.As(mustErr(t, svc, badStatus)); typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected code %s", typed.Code())
	}
}

func mustErr(t *testing.T, svc Service, in CreateInput) error {
	t.Helper()
	_, err := svc.Create(context.Background(), in)
	if err == nil {
		t.Fatal("expected error")
	}
	return err
}

func TestUpdateAppliesOnlyProvidedFields(t *testing.T) {
	existing := &models.UdharEntry{
		ID:           3,
		CustomerName: "Ramesh Kumar",
		Phone:        "9876500000",
		Items:        "2kg atta",
		Amount:       decimal.NewFromInt(450),
		DateGiven:    day("2025-08-01"),
		DueDate:      day("2025-08-16"),
		Status:       models.UdharStatusPending,
	}
	var saved *models.UdharEntry
	svc := newStubService(t, &stubRepo{
		findFn: func(ctx context.Context, id int64) (*models.UdharEntry, error) {
			copied := *existing
			return &copied, nil
		},
		saveFn: func(ctx context.Context, entry *models.UdharEntry) error {
			saved = entry
			return nil
		},
	})

	paid := models.UdharStatusPaid
	entry, err := svc.Update(context.Background(), 3, UpdateInput{Status: &paid})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if entry.Status != models.UdharStatusPaid {
		t.Fatalf("status not applied: %q", entry.Status)
	}
	if saved.Items != "2kg atta" || !saved.Amount.Equal(decimal.NewFromInt(450)) {
		t.Fatalf("untouched fields changed: %+v", saved)
	}
}

func TestUpdateMissingEntryIsNotFound(t *testing.T) {
	svc := newStubService(t, &stubRepo{
		findFn: func(ctx context.Context, id int64) (*models.UdharEntry, error) {
			return nil, gorm.ErrRecordNotFound
		},
	})

	paid := models.UdharStatusPaid
	_, err := svc.Update(context.Background(), 99, UpdateInput{Status: &paid})
	typed := pkgerrors.As(err)
	if typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected code %s", typed.Code())
	}
}

func TestDeleteMissingEntryIsNotFound(t *testing.T) {
	svc := newStubService(t, &stubRepo{
		deleteFn: func(ctx context.Context, id int64) (bool, error) {
			return false, nil
		},
	})

	err := svc.Delete(context.Background(), 99)
	typed := pkgerrors.As(err)
	if typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected code %s", typed.Code())
	}
}
