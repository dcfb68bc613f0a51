package location

import "context"

type Repository interface {
	Create(ctx context.Context, location *Location) error
	GetByID(ctx context.Context, locationID int64) (*Location, error)
	// GetByTripID returns the trip's current row or ErrLocationNotFound.
	GetByTripID(ctx context.Context, tripID int64) (*Location, error)
	ListByTrip(ctx context.Context, tripID int64) ([]*Location, error)
	Update(ctx context.Context, location *Location) error
	Delete(ctx context.Context, locationID int64) error
	DeleteByTrip(ctx context.Context, tripID int64) (int64, error)
}
