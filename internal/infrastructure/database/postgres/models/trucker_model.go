package models

import "time"

// TruckerModel represents the database model for Truckers.
type TruckerModel struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Name         string    `gorm:"type:varchar(255);not null"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone        string    `gorm:"type:varchar(32)"`
	Status       string    `gorm:"type:varchar(16);not null;default:'Inactive';index"`
	Rating       float64   `gorm:"type:numeric(2,1);not null;default:0"`
	ProfileImage *string   `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (TruckerModel) TableName() string {
	return "truckers"
}
