package followup

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/storeopshq/storeops-backend/pkg/db/models"
)

// ListFilter narrows the reminder listing. Dates are YYYY-MM-DD and
// apply to followup_date.
type ListFilter struct {
	Status       string
	CustomerName string
	Salesperson  string
	FromDate     string
	ToDate       string
	Offset       int
	Limit        int
}

// Repository persists follow-up reminders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context, f ListFilter) (int64, []models.FollowupEntry, error)
	Create(ctx context.Context, entry *models.FollowupEntry) error
	FindByID(ctx context.Context, id int64) (*models.FollowupEntry, error)
	Save(ctx context.Context, entry *models.FollowupEntry) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a follow-up repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) List(ctx context.Context, f ListFilter) (int64, []models.FollowupEntry, error) {
	query := r.db.WithContext(ctx).Model(&models.FollowupEntry{})

	if f.Status != "" && f.Status != "all" {
		query = query.Where("status = ?", f.Status)
	}
	if f.CustomerName != "" {
		query = query.Where("LOWER(customer_name) LIKE ?", "%"+strings.ToLower(f.CustomerName)+"%")
	}
	if f.Salesperson != "" {
		query = query.Where("LOWER(salesperson) LIKE ?", "%"+strings.ToLower(f.Salesperson)+"%")
	}
	if f.FromDate != "" {
		query = query.Where("followup_date >= ?", f.FromDate)
	}
	if f.ToDate != "" {
		query = query.Where("followup_date <= ?", f.ToDate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var records []models.FollowupEntry
	err := query.
		Order("followup_date DESC, id DESC").
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&records).Error
	if err != nil {
		return 0, nil, err
	}

	return total, records, nil
}

func (r *repository) Create(ctx context.Context, entry *models.FollowupEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.FollowupEntry, error) {
	var entry models.FollowupEntry
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) Save(ctx context.Context, entry *models.FollowupEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *repository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.FollowupEntry{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
