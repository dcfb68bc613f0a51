package trip

import (
	"time"

	"rigor-logistics/pkg/money"
)

// Trip represents a haul assigned to a trucker and truck
type Trip struct {
	ID            int64
	TruckerID     int64
	TruckID       int64
	AdminID       int64
	StartLocation string
	EndLocation   string
	StartTime     time.Time
	EndTime       *time.Time
	Status        Status
	Distance      float64
	TripRating    *int
	ExpectedCost  *money.Money
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Status string

const (
	StatusScheduled Status = "Scheduled"
	StatusCompleted Status = "Completed"
)

func (s Status) IsValid() bool {
	return s == StatusScheduled || s == StatusCompleted
}

const (
	MinRating = 1
	MaxRating = 5
)

func (t *Trip) IsCompleted() bool {
	return t.Status == StatusCompleted
}

func (t *Trip) IsRated() bool {
	return t.TripRating != nil
}
