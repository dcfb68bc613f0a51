package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReimbursementModel represents the database model for Reimbursements.
type ReimbursementModel struct {
	ID         int64           `gorm:"primaryKey;autoIncrement"`
	TripID     int64           `gorm:"not null;index"`
	Amount     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Receipt    string          `gorm:"type:text;not null"`
	Status     string          `gorm:"type:varchar(16);not null;default:'Pending';index"`
	Comments   *string         `gorm:"type:text"`
	AdminID    *int64          `gorm:"index"`
	ApprovedAt *time.Time      `gorm:"type:timestamptz"`
	CreatedAt  time.Time       `gorm:"not null"`
	UpdatedAt  time.Time       `gorm:"not null"`
}

func (ReimbursementModel) TableName() string {
	return "reimbursements"
}
