package models

import "time"

// AdminModel represents the database model for Admins.
type AdminModel struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Name         string    `gorm:"type:varchar(255);not null"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone        string    `gorm:"type:varchar(32)"`
	ProfileImage *string   `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (AdminModel) TableName() string {
	return "admins"
}
