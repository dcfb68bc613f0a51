package memory

import (
	"context"

	domainAdmin "rigor-logistics/internal/domain/admin"
)

type AdminRepository struct {
	s *Store
}

func NewAdminRepository(s *Store) domainAdmin.Repository {
	return &AdminRepository{s: s}
}

func (r *AdminRepository) Create(ctx context.Context, a *domainAdmin.Admin) error {
	return r.s.write(ctx, "", func(tb *tables) error {
		for _, existing := range tb.admins {
			if existing.Email == a.Email {
				return domainAdmin.ErrAdminAlreadyExists
			}
		}
		tb.adminSeq++
		a.ID = tb.adminSeq
		a.CreatedAt = r.s.now()
		a.UpdatedAt = a.CreatedAt
		tb.admins[a.ID] = *a
		return nil
	})
}

func (r *AdminRepository) GetByID(ctx context.Context, adminID int64) (*domainAdmin.Admin, error) {
	var out *domainAdmin.Admin
	err := r.s.read(ctx, func(tb *tables) error {
		a, ok := tb.admins[adminID]
		if !ok {
			return domainAdmin.ErrAdminNotFound
		}
		out = &a
		return nil
	})
	return out, err
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*domainAdmin.Admin, error) {
	var out *domainAdmin.Admin
	err := r.s.read(ctx, func(tb *tables) error {
		for _, a := range tb.admins {
			if a.Email == email {
				found := a
				out = &found
				return nil
			}
		}
		return domainAdmin.ErrAdminNotFound
	})
	return out, err
}
