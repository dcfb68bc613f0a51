package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainTrip "rigor-logistics/internal/domain/trip"
	"rigor-logistics/internal/infrastructure/database/postgres/models"
	"rigor-logistics/pkg/money"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TripRepository implements domainTrip.Repository
type TripRepository struct {
	db *DB
}

func NewTripRepository(db *DB) domainTrip.Repository {
	return &TripRepository{db: db}
}

func (r *TripRepository) Create(ctx context.Context, t *domainTrip.Trip) error {
	dbModel := toTripModel(t)
	if err := r.db.conn(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create trip: %w", err)
	}

	t.ID = dbModel.ID
	t.CreatedAt = dbModel.CreatedAt
	t.UpdatedAt = dbModel.UpdatedAt
	return nil
}

func (r *TripRepository) GetByID(ctx context.Context, tripID int64) (*domainTrip.Trip, error) {
	return r.first(r.db.conn(ctx).Where("id = ?", tripID))
}

func (r *TripRepository) GetByIDForUpdate(ctx context.Context, tripID int64) (*domainTrip.Trip, error) {
	return r.first(forUpdate(r.db.conn(ctx)).Where("id = ?", tripID))
}

func (r *TripRepository) first(q *gorm.DB) (*domainTrip.Trip, error) {
	var dbModel models.TripModel
	err := q.First(&dbModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainTrip.ErrTripNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return toTripEntity(&dbModel), nil
}

func (r *TripRepository) Update(ctx context.Context, t *domainTrip.Trip) error {
	t.UpdatedAt = time.Now().UTC()
	return r.update(ctx, t.ID, map[string]interface{}{
		"start_location": t.StartLocation,
		"end_location":   t.EndLocation,
		"start_time":     t.StartTime,
		"end_time":       t.EndTime,
		"status":         string(t.Status),
		"distance":       t.Distance,
		"trip_rating":    t.TripRating,
		"expected_cost":  toDecimalPtr(t.ExpectedCost),
		"updated_at":     t.UpdatedAt,
	})
}

// Complete only touches Scheduled rows so a racing second completion
// reports the trip as already completed.
func (r *TripRepository) Complete(ctx context.Context, tripID int64, endTime time.Time) error {
	result := r.db.conn(ctx).
		Model(&models.TripModel{}).
		Where("id = ? AND status = ?", tripID, string(domainTrip.StatusScheduled)).
		Updates(map[string]interface{}{
			"status":     string(domainTrip.StatusCompleted),
			"end_time":   gorm.Expr("COALESCE(end_time, ?)", endTime),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to complete trip: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, tripID); err != nil {
			return err
		}
		return domainTrip.ErrTripAlreadyCompleted
	}
	return nil
}

func (r *TripRepository) SetRating(ctx context.Context, tripID int64, rating int) error {
	return r.update(ctx, tripID, map[string]interface{}{
		"trip_rating": rating,
		"updated_at":  time.Now().UTC(),
	})
}

func (r *TripRepository) update(ctx context.Context, tripID int64, updates map[string]interface{}) error {
	result := r.db.conn(ctx).
		Model(&models.TripModel{}).
		Where("id = ?", tripID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update trip: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainTrip.ErrTripNotFound
	}
	return nil
}

func (r *TripRepository) List(ctx context.Context, filter *domainTrip.Filter) ([]*domainTrip.Trip, int64, error) {
	if filter == nil {
		filter = &domainTrip.Filter{}
	}

	query := r.db.conn(ctx).Model(&models.TripModel{})
	if filter.TruckerID != nil {
		query = query.Where("trucker_id = ?", *filter.TruckerID)
	}
	if filter.AdminID != nil {
		query = query.Where("admin_id = ?", *filter.AdminID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count trips: %w", err)
	}

	var dbModels []models.TripModel
	if err := paginate(query, filter.Page, filter.PageSize).Order("start_time DESC, id DESC").Find(&dbModels).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list trips: %w", err)
	}

	trips := make([]*domainTrip.Trip, len(dbModels))
	for i := range dbModels {
		trips[i] = toTripEntity(&dbModels[i])
	}
	return trips, total, nil
}

func (r *TripRepository) CompletedRatings(ctx context.Context, truckerID int64) ([]int, error) {
	var ratings []int
	err := r.db.conn(ctx).
		Model(&models.TripModel{}).
		Where("trucker_id = ? AND status = ? AND trip_rating IS NOT NULL", truckerID, string(domainTrip.StatusCompleted)).
		Order("id ASC").
		Pluck("trip_rating", &ratings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load trip ratings: %w", err)
	}
	return ratings, nil
}

func toDecimalPtr(m *money.Money) *decimal.Decimal {
	if m == nil {
		return nil
	}
	d := m.Decimal()
	return &d
}

func toMoneyPtr(d *decimal.Decimal) *money.Money {
	if d == nil {
		return nil
	}
	m := money.FromDecimal(*d)
	return &m
}

func toTripModel(t *domainTrip.Trip) *models.TripModel {
	return &models.TripModel{
		ID:            t.ID,
		TruckerID:     t.TruckerID,
		TruckID:       t.TruckID,
		AdminID:       t.AdminID,
		StartLocation: t.StartLocation,
		EndLocation:   t.EndLocation,
		StartTime:     t.StartTime,
		EndTime:       t.EndTime,
		Status:        string(t.Status),
		Distance:      t.Distance,
		TripRating:    t.TripRating,
		ExpectedCost:  toDecimalPtr(t.ExpectedCost),
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func toTripEntity(m *models.TripModel) *domainTrip.Trip {
	return &domainTrip.Trip{
		ID:            m.ID,
		TruckerID:     m.TruckerID,
		TruckID:       m.TruckID,
		AdminID:       m.AdminID,
		StartLocation: m.StartLocation,
		EndLocation:   m.EndLocation,
		StartTime:     m.StartTime,
		EndTime:       m.EndTime,
		Status:        domainTrip.Status(m.Status),
		Distance:      m.Distance,
		TripRating:    m.TripRating,
		ExpectedCost:  toMoneyPtr(m.ExpectedCost),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
