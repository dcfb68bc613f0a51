package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainLocation "rigor-logistics/internal/domain/location"
	"rigor-logistics/internal/infrastructure/database/postgres/models"

	"gorm.io/gorm"
)

type LocationRepository struct {
	db *DB
}

func NewLocationRepository(db *DB) domainLocation.Repository {
	return &LocationRepository{db: db}
}

func (r *LocationRepository) Create(ctx context.Context, l *domainLocation.Location) error {
	dbModel := toLocationModel(l)
	if err := r.db.conn(ctx).Create(dbModel).Error; err != nil {
		if isDuplicateKey(err) {
			return domainLocation.ErrLocationExists
		}
		return fmt.Errorf("failed to create location: %w", err)
	}

	l.ID = dbModel.ID
	l.CreatedAt = dbModel.CreatedAt
	l.UpdatedAt = dbModel.UpdatedAt
	return nil
}

func (r *LocationRepository) GetByID(ctx context.Context, locationID int64) (*domainLocation.Location, error) {
	return r.first(r.db.conn(ctx).Where("id = ?", locationID))
}

func (r *LocationRepository) GetByTripID(ctx context.Context, tripID int64) (*domainLocation.Location, error) {
	return r.first(r.db.conn(ctx).Where("trip_id = ?", tripID))
}

func (r *LocationRepository) first(q *gorm.DB) (*domainLocation.Location, error) {
	var dbModel models.LocationModel
	err := q.First(&dbModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainLocation.ErrLocationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	return toLocationEntity(&dbModel), nil
}

func (r *LocationRepository) ListByTrip(ctx context.Context, tripID int64) ([]*domainLocation.Location, error) {
	var dbModels []models.LocationModel
	if err := r.db.conn(ctx).Where("trip_id = ?", tripID).Order("id ASC").Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}

	locations := make([]*domainLocation.Location, len(dbModels))
	for i := range dbModels {
		locations[i] = toLocationEntity(&dbModels[i])
	}
	return locations, nil
}

func (r *LocationRepository) Update(ctx context.Context, l *domainLocation.Location) error {
	l.UpdatedAt = time.Now().UTC()
	result := r.db.conn(ctx).
		Model(&models.LocationModel{}).
		Where("id = ?", l.ID).
		Updates(map[string]interface{}{
			"latitude":   l.Latitude,
			"longitude":  l.Longitude,
			"timestamp":  l.Timestamp,
			"updated_at": l.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update location: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainLocation.ErrLocationNotFound
	}
	return nil
}

func (r *LocationRepository) Delete(ctx context.Context, locationID int64) error {
	result := r.db.conn(ctx).Delete(&models.LocationModel{}, locationID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete location: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainLocation.ErrLocationNotFound
	}
	return nil
}

func (r *LocationRepository) DeleteByTrip(ctx context.Context, tripID int64) (int64, error) {
	result := r.db.conn(ctx).Where("trip_id = ?", tripID).Delete(&models.LocationModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete trip locations: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func toLocationModel(l *domainLocation.Location) *models.LocationModel {
	return &models.LocationModel{
		ID:        l.ID,
		TripID:    l.TripID,
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
		Timestamp: l.Timestamp,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

func toLocationEntity(m *models.LocationModel) *domainLocation.Location {
	return &domainLocation.Location{
		ID:        m.ID,
		TripID:    m.TripID,
		Latitude:  m.Latitude,
		Longitude: m.Longitude,
		Timestamp: m.Timestamp,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
