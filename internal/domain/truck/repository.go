package truck

import "context"

type Repository interface {
	Create(ctx context.Context, truck *Truck) error
	GetByID(ctx context.Context, truckID int64) (*Truck, error)
	// GetByTruckerID returns the first truck assigned to the trucker, or
	// ErrTruckNotFound.
	GetByTruckerID(ctx context.Context, truckerID int64) (*Truck, error)
	List(ctx context.Context, filter *Filter) ([]*Truck, int64, error)
}

type Filter struct {
	TruckerID *int64
	Page      int
	PageSize  int
}
