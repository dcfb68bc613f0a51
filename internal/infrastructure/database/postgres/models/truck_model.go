package models

import "time"

// TruckModel represents the database model for Trucks.
type TruckModel struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	PlateNumber   string    `gorm:"type:varchar(32);not null;uniqueIndex"`
	ChassisNumber string    `gorm:"type:varchar(64);not null"`
	Capacity      float64   `gorm:"not null;default:0"`
	TruckerID     *int64    `gorm:"index"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

func (TruckModel) TableName() string {
	return "trucks"
}
