package models

import "time"

// LocationModel represents the database model for Locations. The unique
// trip_id index keeps a single row per trip.
type LocationModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	TripID    int64     `gorm:"not null;uniqueIndex"`
	Latitude  float64   `gorm:"type:double precision;not null"`
	Longitude float64   `gorm:"type:double precision;not null"`
	Timestamp time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (LocationModel) TableName() string {
	return "locations"
}
