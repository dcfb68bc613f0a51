package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TripModel represents the database model for Trips.
type TripModel struct {
	ID            int64            `gorm:"primaryKey;autoIncrement"`
	TruckerID     int64            `gorm:"not null;index"`
	TruckID       int64            `gorm:"not null;index"`
	AdminID       int64            `gorm:"not null;index"`
	StartLocation string           `gorm:"type:varchar(255);not null"`
	EndLocation   string           `gorm:"type:varchar(255);not null"`
	StartTime     time.Time        `gorm:"not null"`
	EndTime       *time.Time       `gorm:"type:timestamptz"`
	Status        string           `gorm:"type:varchar(16);not null;default:'Scheduled';index"`
	Distance      float64          `gorm:"not null;default:0"`
	TripRating    *int             `gorm:"type:smallint"`
	ExpectedCost  *decimal.Decimal `gorm:"type:numeric(14,2)"`
	CreatedAt     time.Time        `gorm:"not null"`
	UpdatedAt     time.Time        `gorm:"not null"`
}

func (TripModel) TableName() string {
	return "trips"
}
