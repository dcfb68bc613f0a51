package trucker

import "context"

type Repository interface {
	Create(ctx context.Context, trucker *Trucker) error
	GetByID(ctx context.Context, truckerID int64) (*Trucker, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, truckerID int64) (*Trucker, error)
	GetByEmail(ctx context.Context, email string) (*Trucker, error)
	UpdateStatus(ctx context.Context, truckerID int64, status Status) error
	UpdateRating(ctx context.Context, truckerID int64, rating float64) error
	List(ctx context.Context, filter *Filter) ([]*Trucker, int64, error)
}

type Filter struct {
	Status   *Status
	Page     int
	PageSize int
}
