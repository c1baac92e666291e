package udhar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storeopshq/storeops-backend/pkg/db/models"
	pkgerrors "github.com/storeopshq/storeops-backend/pkg/errors"
	"github.com/storeopshq/storeops-backend/pkg/logger"
	"github.com/storeopshq/storeops-backend/pkg/types"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// CreateInput is a new ledger entry. Dates parse upstream of the
// service; Status defaults to Pending.
type CreateInput struct {
	CustomerName string
	Phone        string
	Items        string
	Amount       decimal.Decimal
	DateGiven    time.Time
	DueDate      time.Time
	Status       string
}

// UpdateInput patches one entry. Nil fields are left unchanged.
type UpdateInput struct {
	Status  *string
	DueDate *time.Time
	Items   *string
	Amount  *decimal.Decimal
}

// Service exposes the udhar credit ledger.
type Service interface {
	List(ctx context.Context, f ListFilter) (*types.ListEnvelope[models.UdharEntry], error)
	Create(ctx context.Context, in CreateInput) (*models.UdharEntry, error)
	Update(ctx context.Context, id int64, in UpdateInput) (*models.UdharEntry, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo   Repository
	logger *logger.Logger
}

// NewService builds the udhar ledger service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("udhar repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logger: logg}, nil
}

func (s *service) List(ctx context.Context, f ListFilter) (*types.ListEnvelope[models.UdharEntry], error) {
	if err := validStatusFilter(f.Status); err != nil {
		return nil, err
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}

	total, records, err := s.repo.List(ctx, f)
	if err != nil {
		s.logger.Error(ctx, "list udhar entries failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list udhar entries")
	}

	return &types.ListEnvelope[models.UdharEntry]{Count: total, Records: records}, nil
}

func (s *service) Create(ctx context.Context, in CreateInput) (*models.UdharEntry, error) {
	if in.CustomerName == "" || in.Phone == "" || in.Items == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer_name, phone, and items are required")
	}
	if in.Amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must not be negative")
	}
	if in.DateGiven.IsZero() || in.DueDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date_given and due_date are required")
	}

	status := in.Status
	if status == "" {
		status = models.UdharStatusPending
	}
	if err := validStatus(status); err != nil {
		return nil, err
	}

	entry := &models.UdharEntry{
		CustomerName: in.CustomerName,
		Phone:        in.Phone,
		Items:        in.Items,
		Amount:       in.Amount,
		DateGiven:    in.DateGiven,
		DueDate:      in.DueDate,
		Status:       status,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error(ctx, "create udhar entry failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create udhar entry")
	}

	return entry, nil
}

func (s *service) Update(ctx context.Context, id int64, in UpdateInput) (*models.UdharEntry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entryNotFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load udhar entry")
	}

	if in.Status != nil {
		if err := validStatus(*in.Status); err != nil {
			return nil, err
		}
		entry.Status = *in.Status
	}
	if in.DueDate != nil {
		entry.DueDate = *in.DueDate
	}
	if in.Items != nil {
		if *in.Items == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "items must not be empty")
		}
		entry.Items = *in.Items
	}
	if in.Amount != nil {
		if in.Amount.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must not be negative")
		}
		entry.Amount = *in.Amount
	}

	if err := s.repo.Save(ctx, entry); err != nil {
		s.logger.Error(ctx, "update udhar entry failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update udhar entry")
	}

	return entry, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Error(ctx, "delete udhar entry failed", err)
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete udhar entry")
	}
	if !deleted {
		return entryNotFound()
	}
	return nil
}

func validStatusFilter(status string) error {
	switch status {
	case "", "all", models.UdharStatusPending, models.UdharStatusPaid:
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status filter: %s", status))
	}
}

func validStatus(status string) error {
	switch status {
	case models.UdharStatusPending, models.UdharStatusPaid:
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status: %s", status))
	}
}

func entryNotFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "udhar entry not found")
}
