package udhar

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/storeopshq/storeops-backend/pkg/db/models"
)

// ListFilter narrows the ledger listing. Zero values mean "no filter";
// a Status of "all" is equivalent to empty. Dates are YYYY-MM-DD and
// apply to date_given.
type ListFilter struct {
	Status       string
	CustomerName string
	FromDate     string
	ToDate       string
	Offset       int
	Limit        int
}

// Repository persists udhar ledger entries.
type Repository interface {
	List(ctx context.Context, f ListFilter) (int64, []models.UdharEntry, error)
	Create(ctx context.Context, entry *models.UdharEntry) error
	FindByID(ctx context.Context, id int64) (*models.UdharEntry, error)
	Save(ctx context.Context, entry *models.UdharEntry) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an udhar repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, f ListFilter) (int64, []models.UdharEntry, error) {
	query := r.db.WithContext(ctx).Model(&models.UdharEntry{})

	if f.Status != "" && f.Status != "all" {
		query = query.Where("status = ?", f.Status)
	}
	if f.CustomerName != "" {
		query = query.Where("LOWER(customer_name) LIKE ?", "%"+strings.ToLower(f.CustomerName)+"%")
	}
	if f.FromDate != "" {
		query = query.Where("date_given >= ?", f.FromDate)
	}
	if f.ToDate != "" {
		query = query.Where("date_given <= ?", f.ToDate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var records []models.UdharEntry
	err := query.
		Order("date_given DESC, id DESC").
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&records).Error
	if err != nil {
		return 0, nil, err
	}

	return total, records, nil
}

func (r *repository) Create(ctx context.Context, entry *models.UdharEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.UdharEntry, error) {
	var entry models.UdharEntry
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) Save(ctx context.Context, entry *models.UdharEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *repository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.UdharEntry{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
