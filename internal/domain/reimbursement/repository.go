package reimbursement

import "context"

type Repository interface {
	Create(ctx context.Context, reimbursement *Reimbursement) error
	GetByID(ctx context.Context, reimbursementID int64) (*Reimbursement, error)
	GetByIDForUpdate(ctx context.Context, reimbursementID int64) (*Reimbursement, error)
	Update(ctx context.Context, reimbursement *Reimbursement) error
	List(ctx context.Context, filter *Filter) ([]*Reimbursement, int64, error)
}

type Filter struct {
	Status    *Status
	TripID    *int64
	TruckerID *int64
	Page      int
	PageSize  int
}
