package location

import "time"

// Location is the single latest position of an in-progress trip.
type Location struct {
	ID        int64
	TripID    int64
	Latitude  float64
	Longitude float64
	Timestamp time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
