package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Udhar statuses.
const (
	UdharStatusPending = "Pending"
	UdharStatusPaid    = "Paid"
)

// UdharEntry is one credit sale ("udhar") owed by a customer.
type UdharEntry struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerName string          `gorm:"type:text;not null;index" json:"customer_name"`
	Phone        string          `gorm:"type:text;not null" json:"phone"`
	Items        string          `gorm:"type:text;not null" json:"items"`
	Amount       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	DateGiven    time.Time       `gorm:"type:date;not null" json:"date_given"`
	DueDate      time.Time       `gorm:"type:date;not null" json:"due_date"`
	Status       string          `gorm:"type:text;not null;default:'Pending'" json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName pins the short table name used by the migrations.
func (UdharEntry) TableName() string { return "udhar" }
