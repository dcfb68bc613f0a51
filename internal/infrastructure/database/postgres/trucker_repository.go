package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainTrucker "rigor-logistics/internal/domain/trucker"
	"rigor-logistics/internal/infrastructure/database/postgres/models"

	"gorm.io/gorm"
)

// TruckerRepository implements domainTrucker.Repository
type TruckerRepository struct {
	db *DB
}

func NewTruckerRepository(db *DB) domainTrucker.Repository {
	return &TruckerRepository{db: db}
}

func (r *TruckerRepository) Create(ctx context.Context, t *domainTrucker.Trucker) error {
	dbModel := toTruckerModel(t)
	if err := r.db.conn(ctx).Create(dbModel).Error; err != nil {
		if isDuplicateKey(err) {
			return domainTrucker.ErrTruckerAlreadyExists
		}
		return fmt.Errorf("failed to create trucker: %w", err)
	}

	t.ID = dbModel.ID
	t.CreatedAt = dbModel.CreatedAt
	t.UpdatedAt = dbModel.UpdatedAt
	return nil
}

func (r *TruckerRepository) GetByID(ctx context.Context, truckerID int64) (*domainTrucker.Trucker, error) {
	return r.first(r.db.conn(ctx).Where("id = ?", truckerID))
}

func (r *TruckerRepository) GetByIDForUpdate(ctx context.Context, truckerID int64) (*domainTrucker.Trucker, error) {
	return r.first(forUpdate(r.db.conn(ctx)).Where("id = ?", truckerID))
}

func (r *TruckerRepository) GetByEmail(ctx context.Context, email string) (*domainTrucker.Trucker, error) {
	return r.first(r.db.conn(ctx).Where("email = ?", email))
}

func (r *TruckerRepository) first(q *gorm.DB) (*domainTrucker.Trucker, error) {
	var dbModel models.TruckerModel
	err := q.First(&dbModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainTrucker.ErrTruckerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trucker: %w", err)
	}
	return toTruckerEntity(&dbModel), nil
}

func (r *TruckerRepository) UpdateStatus(ctx context.Context, truckerID int64, status domainTrucker.Status) error {
	return r.update(ctx, truckerID, map[string]interface{}{"status": string(status)})
}

func (r *TruckerRepository) UpdateRating(ctx context.Context, truckerID int64, rating float64) error {
	return r.update(ctx, truckerID, map[string]interface{}{"rating": rating})
}

func (r *TruckerRepository) update(ctx context.Context, truckerID int64, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC()
	result := r.db.conn(ctx).
		Model(&models.TruckerModel{}).
		Where("id = ?", truckerID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update trucker: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainTrucker.ErrTruckerNotFound
	}
	return nil
}

func (r *TruckerRepository) List(ctx context.Context, filter *domainTrucker.Filter) ([]*domainTrucker.Trucker, int64, error) {
	if filter == nil {
		filter = &domainTrucker.Filter{}
	}

	query := r.db.conn(ctx).Model(&models.TruckerModel{})
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count truckers: %w", err)
	}

	var dbModels []models.TruckerModel
	if err := paginate(query, filter.Page, filter.PageSize).Order("id ASC").Find(&dbModels).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list truckers: %w", err)
	}

	truckers := make([]*domainTrucker.Trucker, len(dbModels))
	for i := range dbModels {
		truckers[i] = toTruckerEntity(&dbModels[i])
	}
	return truckers, total, nil
}

func toTruckerModel(t *domainTrucker.Trucker) *models.TruckerModel {
	return &models.TruckerModel{
		ID:           t.ID,
		Name:         t.Name,
		Email:        t.Email,
		Phone:        t.Phone,
		Status:       string(t.Status),
		Rating:       t.Rating,
		ProfileImage: t.ProfileImage,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func toTruckerEntity(m *models.TruckerModel) *domainTrucker.Trucker {
	return &domainTrucker.Trucker{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		Phone:        m.Phone,
		Status:       domainTrucker.Status(m.Status),
		Rating:       m.Rating,
		ProfileImage: m.ProfileImage,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
