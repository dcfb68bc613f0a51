package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainReimbursement "rigor-logistics/internal/domain/reimbursement"
	"rigor-logistics/internal/infrastructure/database/postgres/models"
	"rigor-logistics/pkg/money"

	"gorm.io/gorm"
)

type ReimbursementRepository struct {
	db *DB
}

func NewReimbursementRepository(db *DB) domainReimbursement.Repository {
	return &ReimbursementRepository{db: db}
}

func (r *ReimbursementRepository) Create(ctx context.Context, re *domainReimbursement.Reimbursement) error {
	dbModel := toReimbursementModel(re)
	if err := r.db.conn(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create reimbursement: %w", err)
	}

	re.ID = dbModel.ID
	re.CreatedAt = dbModel.CreatedAt
	re.UpdatedAt = dbModel.UpdatedAt
	return nil
}

func (r *ReimbursementRepository) GetByID(ctx context.Context, reimbursementID int64) (*domainReimbursement.Reimbursement, error) {
	return r.first(r.db.conn(ctx).Where("id = ?", reimbursementID))
}

func (r *ReimbursementRepository) GetByIDForUpdate(ctx context.Context, reimbursementID int64) (*domainReimbursement.Reimbursement, error) {
	return r.first(forUpdate(r.db.conn(ctx)).Where("id = ?", reimbursementID))
}

func (r *ReimbursementRepository) first(q *gorm.DB) (*domainReimbursement.Reimbursement, error) {
	var dbModel models.ReimbursementModel
	err := q.First(&dbModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainReimbursement.ErrReimbursementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reimbursement: %w", err)
	}
	return toReimbursementEntity(&dbModel), nil
}

func (r *ReimbursementRepository) Update(ctx context.Context, re *domainReimbursement.Reimbursement) error {
	re.UpdatedAt = time.Now().UTC()
	result := r.db.conn(ctx).
		Model(&models.ReimbursementModel{}).
		Where("id = ?", re.ID).
		Updates(map[string]interface{}{
			"amount":      re.Amount.Decimal(),
			"receipt":     re.Receipt,
			"status":      string(re.Status),
			"comments":    re.Comments,
			"admin_id":    re.AdminID,
			"approved_at": re.ApprovedAt,
			"updated_at":  re.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update reimbursement: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainReimbursement.ErrReimbursementNotFound
	}
	return nil
}

func (r *ReimbursementRepository) List(ctx context.Context, filter *domainReimbursement.Filter) ([]*domainReimbursement.Reimbursement, int64, error) {
	if filter == nil {
		filter = &domainReimbursement.Filter{}
	}

	query := r.db.conn(ctx).Model(&models.ReimbursementModel{})
	if filter.Status != nil {
		query = query.Where("reimbursements.status = ?", string(*filter.Status))
	}
	if filter.TripID != nil {
		query = query.Where("reimbursements.trip_id = ?", *filter.TripID)
	}
	if filter.TruckerID != nil {
		query = query.
			Joins("JOIN trips ON trips.id = reimbursements.trip_id").
			Where("trips.trucker_id = ?", *filter.TruckerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reimbursements: %w", err)
	}

	var dbModels []models.ReimbursementModel
	err := paginate(query, filter.Page, filter.PageSize).
		Select("reimbursements.*").
		Order("reimbursements.id DESC").
		Find(&dbModels).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reimbursements: %w", err)
	}

	result := make([]*domainReimbursement.Reimbursement, len(dbModels))
	for i := range dbModels {
		result[i] = toReimbursementEntity(&dbModels[i])
	}
	return result, total, nil
}

func toReimbursementModel(re *domainReimbursement.Reimbursement) *models.ReimbursementModel {
	return &models.ReimbursementModel{
		ID:         re.ID,
		TripID:     re.TripID,
		Amount:     re.Amount.Decimal(),
		Receipt:    re.Receipt,
		Status:     string(re.Status),
		Comments:   re.Comments,
		AdminID:    re.AdminID,
		ApprovedAt: re.ApprovedAt,
		CreatedAt:  re.CreatedAt,
		UpdatedAt:  re.UpdatedAt,
	}
}

func toReimbursementEntity(m *models.ReimbursementModel) *domainReimbursement.Reimbursement {
	return &domainReimbursement.Reimbursement{
		ID:         m.ID,
		TripID:     m.TripID,
		Amount:     money.FromDecimal(m.Amount),
		Receipt:    m.Receipt,
		Status:     domainReimbursement.Status(m.Status),
		Comments:   m.Comments,
		AdminID:    m.AdminID,
		ApprovedAt: m.ApprovedAt,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
