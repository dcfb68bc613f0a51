package trucker

import "time"

// Trucker represents a driver profile in the domain
type Trucker struct {
	ID           int64
	Name         string
	Email        string
	Phone        string
	Status       Status
	Rating       float64
	ProfileImage *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Status is Active while the trucker has a Scheduled trip.
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

// IsAvailable reports whether the trucker can take a new trip.
func (t *Trucker) IsAvailable() bool {
	return t.Status == StatusInactive
}

const (
	MinRating = 0.0
	MaxRating = 5.0
)
