package trip

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, trip *Trip) error
	GetByID(ctx context.Context, tripID int64) (*Trip, error)
	GetByIDForUpdate(ctx context.Context, tripID int64) (*Trip, error)
	Update(ctx context.Context, trip *Trip) error
	Complete(ctx context.Context, tripID int64, endTime time.Time) error
	SetRating(ctx context.Context, tripID int64, rating int) error
	List(ctx context.Context, filter *Filter) ([]*Trip, int64, error)
	// CompletedRatings returns trip_rating for every Completed, rated trip
	// of the trucker.
	CompletedRatings(ctx context.Context, truckerID int64) ([]int, error)
}

type Filter struct {
	TruckerID *int64
	AdminID   *int64
	Status    *Status
	Page      int
	PageSize  int
}
