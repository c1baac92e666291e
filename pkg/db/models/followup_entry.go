package models

import "time"

// Follow-up statuses.
const (
	FollowupStatusOpen   = "Open"
	FollowupStatusClosed = "Closed"
)

// FollowupEntry is a customer follow-up reminder owned by a salesperson.
type FollowupEntry struct {
	ID               int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerName     string     `gorm:"type:text;not null;index" json:"customer_name"`
	Phone            string     `gorm:"type:text;not null" json:"phone"`
	Salesperson      string     `gorm:"type:text;not null;index" json:"salesperson"`
	Notes            string     `gorm:"type:text;not null" json:"notes"`
	FollowupDate     time.Time  `gorm:"type:date;not null" json:"followup_date"`
	NextFollowupDate *time.Time `gorm:"type:date" json:"next_followup_date"`
	Status           string     `gorm:"type:text;not null;default:'Open'" json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName pins the short table name used by the migrations.
func (FollowupEntry) TableName() string { return "followup" }
