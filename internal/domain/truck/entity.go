package truck

import "time"

type Truck struct {
	ID            int64
	PlateNumber   string
	ChassisNumber string
	Capacity      float64
	TruckerID     *int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
