package udhar

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/storeopshq/storeops-backend/pkg/db/models"
)

func setupUdharTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:udhartest?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS udhar (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  customer_name TEXT NOT NULL,
  phone TEXT NOT NULL,
  items TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  date_given DATE NOT NULL,
  due_date DATE NOT NULL,
  status TEXT NOT NULL DEFAULT 'Pending',
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)

	t.Cleanup(func() {
		_ = db.Exec("DELETE FROM udhar").Error
	})

	return db
}

func day(value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func seedEntry(t *testing.T, repo Repository, name, status, given string, amount int64) *models.UdharEntry {
	t.Helper()
	entry := &models.UdharEntry{
		CustomerName: name,
		Phone:        "9876500000",
		Items:        "2kg atta, 1L oil",
		Amount:       decimal.NewFromInt(amount),
		DateGiven:    day(given),
		DueDate:      day(given).AddDate(0, 0, 15),
		Status:       status,
	}
	require.NoError(t, repo.Create(context.Background(), entry))
	return entry
}

func TestRepositoryListFiltersByStatus(t *testing.T) {
	repo := NewRepository(setupUdharTestDB(t))

	seedEntry(t, repo, "Ramesh Kumar", models.UdharStatusPending, "2025-08-01", 450)
	seedEntry(t, repo, "Sita Devi", models.UdharStatusPaid, "2025-08-02", 200)

	total, records, err := repo.List(context.Background(), ListFilter{Status: models.UdharStatusPending, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, records, 1)
	assert.Equal(t, "Ramesh Kumar", records[0].CustomerName)
}

func TestRepositoryListStatusAllMatchesEverything(t *testing.T) {
	repo := NewRepository(setupUdharTestDB(t))

	seedEntry(t, repo, "Ramesh Kumar", models.UdharStatusPending, "2025-08-01", 450)
	seedEntry(t, repo, "Sita Devi", models.UdharStatusPaid, "2025-08-02", 200)

	total, records, err := repo.List(context.Background(), ListFilter{Status: "all", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, records, 2)
}

func TestRepositoryListCustomerNameIsCaseInsensitiveContains(t *testing.T) {
	repo := NewRepository(setupUdharTestDB(t))

	seedEntry(t, repo, "Ramesh Kumar", models.UdharStatusPending, "2025-08-01", 450)
	seedEntry(t, repo, "Sita Devi", models.UdharStatusPending, "2025-08-02", 200)

	total, records, err := repo.List(context.Background(), ListFilter{CustomerName: "rAmEsH", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, records, 1)
	assert.Equal(t, "Ramesh Kumar", records[0].CustomerName)
}

func TestRepositoryListDateRangeAndOrder(t *testing.T) {
	repo := NewRepository(setupUdharTestDB(t))

	seedEntry(t, repo, "A", models.UdharStatusPending, "2025-07-20", 100)
	seedEntry(t, repo, "B", models.UdharStatusPending, "2025-08-01", 200)
	seedEntry(t, repo, "C", models.UdharStatusPending, "2025-08-05", 300)

	total, records, err := repo.List(context.Background(), ListFilter{
		FromDate: "2025-07-25",
		ToDate:   "2025-08-10",
		Limit:    10,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, records, 2)
	// Newest first.
	assert.Equal(t, "C", records[0].CustomerName)
	assert.Equal(t, "B", records[1].CustomerName)
}

func TestRepositoryListCountIgnoresPagination(t *testing.T) {
	repo := NewRepository(setupUdharTestDB(t))

	for i := 0; i < 5; i++ {
		seedEntry(t, repo, "Bulk", models.UdharStatusPending, "2025-08-01", 100)
	}

	total, records, err := repo.List(context.Background(), ListFilter{Offset: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, records, 2)
}

func TestRepositorySaveAndFind(t *testing.T) {
	repo := NewRepository(setupUdharTestDB(t))

	entry := seedEntry(t, repo, "Ramesh Kumar", models.UdharStatusPending, "2025-08-01", 450)

	entry.Status = models.UdharStatusPaid
	require.NoError(t, repo.Save(context.Background(), entry))

	found, err := repo.FindByID(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UdharStatusPaid, found.Status)
	assert.True(t, found.Amount.Equal(decimal.NewFromInt(450)))
}

func TestRepositoryDelete(t *testing.T) {
	repo := NewRepository(setupUdharTestDB(t))

	entry := seedEntry(t, repo, "Ramesh Kumar", models.UdharStatusPending, "2025-08-01", 450)

	deleted, err := repo.Delete(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}
