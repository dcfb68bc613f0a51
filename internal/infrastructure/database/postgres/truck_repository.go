package postgres

import (
	"context"
	"errors"
	"fmt"

	domainTruck "rigor-logistics/internal/domain/truck"
	"rigor-logistics/internal/infrastructure/database/postgres/models"

	"gorm.io/gorm"
)

type TruckRepository struct {
	db *DB
}

func NewTruckRepository(db *DB) domainTruck.Repository {
	return &TruckRepository{db: db}
}

func (r *TruckRepository) Create(ctx context.Context, t *domainTruck.Truck) error {
	dbModel := toTruckModel(t)
	if err := r.db.conn(ctx).Create(dbModel).Error; err != nil {
		if isDuplicateKey(err) {
			return domainTruck.ErrTruckAlreadyExists
		}
		return fmt.Errorf("failed to create truck: %w", err)
	}

	t.ID = dbModel.ID
	t.CreatedAt = dbModel.CreatedAt
	t.UpdatedAt = dbModel.UpdatedAt
	return nil
}

func (r *TruckRepository) GetByID(ctx context.Context, truckID int64) (*domainTruck.Truck, error) {
	return r.first(r.db.conn(ctx).Where("id = ?", truckID))
}

func (r *TruckRepository) GetByTruckerID(ctx context.Context, truckerID int64) (*domainTruck.Truck, error) {
	return r.first(r.db.conn(ctx).Where("trucker_id = ?", truckerID).Order("id ASC"))
}

func (r *TruckRepository) first(q *gorm.DB) (*domainTruck.Truck, error) {
	var dbModel models.TruckModel
	err := q.First(&dbModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainTruck.ErrTruckNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get truck: %w", err)
	}
	return toTruckEntity(&dbModel), nil
}

func (r *TruckRepository) List(ctx context.Context, filter *domainTruck.Filter) ([]*domainTruck.Truck, int64, error) {
	if filter == nil {
		filter = &domainTruck.Filter{}
	}

	query := r.db.conn(ctx).Model(&models.TruckModel{})
	if filter.TruckerID != nil {
		query = query.Where("trucker_id = ?", *filter.TruckerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count trucks: %w", err)
	}

	var dbModels []models.TruckModel
	if err := paginate(query, filter.Page, filter.PageSize).Order("id ASC").Find(&dbModels).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list trucks: %w", err)
	}

	trucks := make([]*domainTruck.Truck, len(dbModels))
	for i := range dbModels {
		trucks[i] = toTruckEntity(&dbModels[i])
	}
	return trucks, total, nil
}

func toTruckModel(t *domainTruck.Truck) *models.TruckModel {
	return &models.TruckModel{
		ID:            t.ID,
		PlateNumber:   t.PlateNumber,
		ChassisNumber: t.ChassisNumber,
		Capacity:      t.Capacity,
		TruckerID:     t.TruckerID,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func toTruckEntity(m *models.TruckModel) *domainTruck.Truck {
	return &domainTruck.Truck{
		ID:            m.ID,
		PlateNumber:   m.PlateNumber,
		ChassisNumber: m.ChassisNumber,
		Capacity:      m.Capacity,
		TruckerID:     m.TruckerID,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
