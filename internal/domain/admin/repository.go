package admin

import "context"

type Repository interface {
	Create(ctx context.Context, admin *Admin) error
	GetByID(ctx context.Context, adminID int64) (*Admin, error)
	GetByEmail(ctx context.Context, email string) (*Admin, error)
}
