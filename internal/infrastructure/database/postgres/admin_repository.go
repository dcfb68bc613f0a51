package postgres

import (
	"context"
	"errors"
	"fmt"

	domainAdmin "rigor-logistics/internal/domain/admin"
	"rigor-logistics/internal/infrastructure/database/postgres/models"

	"gorm.io/gorm"
)

type AdminRepository struct {
	db *DB
}

func NewAdminRepository(db *DB) domainAdmin.Repository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) Create(ctx context.Context, a *domainAdmin.Admin) error {
	dbModel := &models.AdminModel{
		Name:         a.Name,
		Email:        a.Email,
		Phone:        a.Phone,
		ProfileImage: a.ProfileImage,
	}
	if err := r.db.conn(ctx).Create(dbModel).Error; err != nil {
		if isDuplicateKey(err) {
			return domainAdmin.ErrAdminAlreadyExists
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}

	a.ID = dbModel.ID
	a.CreatedAt = dbModel.CreatedAt
	a.UpdatedAt = dbModel.UpdatedAt
	return nil
}

func (r *AdminRepository) GetByID(ctx context.Context, adminID int64) (*domainAdmin.Admin, error) {
	return r.first(r.db.conn(ctx).Where("id = ?", adminID))
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*domainAdmin.Admin, error) {
	return r.first(r.db.conn(ctx).Where("email = ?", email))
}

func (r *AdminRepository) first(q *gorm.DB) (*domainAdmin.Admin, error) {
	var m models.AdminModel
	err := q.First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainAdmin.ErrAdminNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return &domainAdmin.Admin{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		Phone:        m.Phone,
		ProfileImage: m.ProfileImage,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}, nil
}
