package followup

import (
	"context"
	"errors"
	"fmt"
	"time"

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

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CreateInput is a new reminder. Status defaults to Open.
type CreateInput struct {
	CustomerName     string
	Phone            string
	Salesperson      string
	Notes            string
	FollowupDate     time.Time
	NextFollowupDate *time.Time
	Status           string
}

// UpdateInput patches one reminder. Nil fields are left unchanged.
type UpdateInput struct {
	Status           *string
	Notes            *string
	NextFollowupDate *time.Time
}

// Service exposes customer follow-up reminders.
type Service interface {
	List(ctx context.Context, f ListFilter) (*types.ListEnvelope[models.FollowupEntry], error)
	Create(ctx context.Context, in CreateInput) (*models.FollowupEntry, error)
	Update(ctx context.Context, id int64, in UpdateInput) (*models.FollowupEntry, error)
	Delete(ctx context.Context, id int64) error
	// CloseWithNext closes a reminder and opens its successor on the
	// given date in one transaction.
	CloseWithNext(ctx context.Context, id int64, nextDate time.Time) (*models.FollowupEntry, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	logger *logger.Logger
}

// NewService builds the follow-up service.
func NewService(repo Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("followup repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, logger: logg}, nil
}

func (s *service) List(ctx context.Context, f ListFilter) (*types.ListEnvelope[models.FollowupEntry], error) {
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
		s.logger.Error(ctx, "list follow-ups failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list follow-ups")
	}

	return &types.ListEnvelope[models.FollowupEntry]{Count: total, Records: records}, nil
}

func (s *service) Create(ctx context.Context, in CreateInput) (*models.FollowupEntry, error) {
	if in.CustomerName == "" || in.Phone == "" || in.Salesperson == "" || in.Notes == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer_name, phone, salesperson, and notes are required")
	}
	if in.FollowupDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "followup_date is required")
	}

	status := in.Status
	if status == "" {
		status = models.FollowupStatusOpen
	}
	if err := validStatus(status); err != nil {
		return nil, err
	}

	entry := &models.FollowupEntry{
		CustomerName:     in.CustomerName,
		Phone:            in.Phone,
		Salesperson:      in.Salesperson,
		Notes:            in.Notes,
		FollowupDate:     in.FollowupDate,
		NextFollowupDate: in.NextFollowupDate,
		Status:           status,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error(ctx, "create follow-up failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create follow-up")
	}

	return entry, nil
}

func (s *service) Update(ctx context.Context, id int64, in UpdateInput) (*models.FollowupEntry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entryNotFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load follow-up")
	}

	if in.Status != nil {
		if err := validStatus(*in.Status); err != nil {
			return nil, err
		}
		entry.Status = *in.Status
	}
	if in.Notes != nil {
		if *in.Notes == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "notes must not be empty")
		}
		entry.Notes = *in.Notes
	}
	if in.NextFollowupDate != nil {
		entry.NextFollowupDate = in.NextFollowupDate
	}

	if err := s.repo.Save(ctx, entry); err != nil {
		s.logger.Error(ctx, "update follow-up failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update follow-up")
	}

	return entry, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Error(ctx, "delete follow-up failed", err)
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete follow-up")
	}
	if !deleted {
		return entryNotFound()
	}
	return nil
}

func (s *service) CloseWithNext(ctx context.Context, id int64, nextDate time.Time) (*models.FollowupEntry, error) {
	if nextDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "next followup date is required")
	}

	var successor *models.FollowupEntry
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		entry, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return entryNotFound()
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load follow-up")
		}
		if entry.Status == models.FollowupStatusClosed {
			return pkgerrors.New(pkgerrors.CodeConflict, "follow-up is already closed")
		}

		entry.Status = models.FollowupStatusClosed
		entry.NextFollowupDate = &nextDate
		if err := repo.Save(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "close follow-up")
		}

		successor = &models.FollowupEntry{
			CustomerName: entry.CustomerName,
			Phone:        entry.Phone,
			Salesperson:  entry.Salesperson,
			Notes:        entry.Notes,
			FollowupDate: nextDate,
			Status:       models.FollowupStatusOpen,
		}
		if err := repo.Create(ctx, successor); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create successor follow-up")
		}
		return nil
	})
	if err != nil {
		s.logger.Error(ctx, "close follow-up with successor failed", err)
		return nil, err
	}

	return successor, nil
}

func validStatusFilter(status string) error {
	switch status {
	case "", "all", models.FollowupStatusOpen, models.FollowupStatusClosed:
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status filter: %s", status))
	}
}

func validStatus(status string) error {
	switch status {
	case models.FollowupStatusOpen, models.FollowupStatusClosed:
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status: %s", status))
	}
}

func entryNotFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "follow-up entry not found")
}
