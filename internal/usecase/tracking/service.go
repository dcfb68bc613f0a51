// Package tracking keeps the single live position row of each in-progress
// trip and fans changes out to subscribers.
package tracking

import (
	"context"
	"errors"
	"time"

	"rigor-logistics/internal/config"
	"rigor-logistics/internal/domain"
	domainLocation "rigor-logistics/internal/domain/location"
	domainTrip "rigor-logistics/internal/domain/trip"
	"rigor-logistics/internal/logger"
	"rigor-logistics/internal/session"
	appErrors "rigor-logistics/pkg/errors"
	"rigor-logistics/pkg/geo"
	"rigor-logistics/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	tx           domain.TxManager
	locationRepo domainLocation.Repository
	tripRepo     domainTrip.Repository
	publisher    domainLocation.Publisher
	cfg          config.TrackingConfig
	now          func() time.Time
}

func NewService(
	tx domain.TxManager,
	locationRepo domainLocation.Repository,
	tripRepo domainTrip.Repository,
	publisher domainLocation.Publisher,
	cfg config.TrackingConfig,
) *Service {
	if publisher == nil {
		publisher = domainLocation.NopPublisher{}
	}
	return &Service{
		tx:           tx,
		locationRepo: locationRepo,
		tripRepo:     tripRepo,
		publisher:    publisher,
		cfg:          cfg,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) CreateLocation(ctx context.Context, req *CreateLocationRequest) (*LocationResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	var created *domainLocation.Location
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.activeTrip(ctx, req.TripID); err != nil {
			return err
		}
		l := &domainLocation.Location{
			TripID:    req.TripID,
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
			Timestamp: s.timestamp(req.Timestamp),
		}
		if err := s.locationRepo.Create(ctx, l); err != nil {
			return err
		}
		created = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(domainLocation.EventLocationUpdated, created)
	return ToLocationResponse(created), nil
}

// UpdateLocation overwrites the row. A fix older than the stored one is
// ignored and the stored row is returned unchanged.
func (s *Service) UpdateLocation(ctx context.Context, locationID int64, req *UpdateLocationRequest) (*LocationResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	var (
		updated *domainLocation.Location
		changed bool
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		l, err := s.locationRepo.GetByID(ctx, locationID)
		if err != nil {
			return err
		}
		if _, err := s.activeTrip(ctx, l.TripID); err != nil {
			return err
		}

		ts := s.timestamp(req.Timestamp)
		if ts.Before(l.Timestamp) {
			updated = l
			return nil
		}

		l.Latitude = req.Latitude
		l.Longitude = req.Longitude
		l.Timestamp = ts
		if err := s.locationRepo.Update(ctx, l); err != nil {
			return err
		}
		updated, changed = l, true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.publish(domainLocation.EventLocationUpdated, updated)
	}
	return ToLocationResponse(updated), nil
}

func (s *Service) DeleteLocation(ctx context.Context, locationID int64) error {
	l, err := s.locationRepo.GetByID(ctx, locationID)
	if err != nil {
		return err
	}
	t, err := s.tripRepo.GetByID(ctx, l.TripID)
	if err != nil && !errors.Is(err, domainTrip.ErrTripNotFound) {
		return err
	}
	if t != nil {
		if err := checkOwner(ctx, t); err != nil {
			return err
		}
	}
	if err := s.locationRepo.Delete(ctx, locationID); err != nil {
		return err
	}

	logger.Info("Location deleted",
		zap.Int64("location_id", locationID),
		zap.Int64("trip_id", l.TripID),
		zap.String("event", "location_deleted"),
	)
	s.publish(domainLocation.EventLocationDeleted, l)
	return nil
}

// GetLocation applies the same ownership rule as ListByTrip.
func (s *Service) GetLocation(ctx context.Context, locationID int64) (*LocationResponse, error) {
	l, err := s.locationRepo.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	t, err := s.tripRepo.GetByID(ctx, l.TripID)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(ctx, t); err != nil {
		return nil, err
	}
	return ToLocationResponse(l), nil
}

// ListByTrip returns every location row of the trip. There is at most one
// while the trip is Scheduled and none after completion.
func (s *Service) ListByTrip(ctx context.Context, tripID int64) ([]*LocationResponse, error) {
	t, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(ctx, t); err != nil {
		return nil, err
	}
	locations, err := s.locationRepo.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return toLocationResponses(locations), nil
}

// Report stores a device fix when the truck moved at least MinSaveDistance or
// MinSaveInterval passed since the stored fix. Fixes older than the stored
// one are dropped.
func (s *Service) Report(ctx context.Context, fix Fix) (ReportResult, error) {
	if !geo.ValidCoordinates(fix.Latitude, fix.Longitude) {
		return "", appErrors.NewAppError("VALIDATION_ERROR", "Coordinates out of range", domainLocation.ErrInvalidCoordinates)
	}
	if fix.Timestamp.IsZero() {
		fix.Timestamp = s.now()
	}
	fix.Timestamp = fix.Timestamp.UTC()

	var (
		result ReportResult
		stored *domainLocation.Location
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.activeTrip(ctx, fix.TripID); err != nil {
			return err
		}

		current, err := s.locationRepo.GetByTripID(ctx, fix.TripID)
		if errors.Is(err, domainLocation.ErrLocationNotFound) {
			l := &domainLocation.Location{
				TripID:    fix.TripID,
				Latitude:  fix.Latitude,
				Longitude: fix.Longitude,
				Timestamp: fix.Timestamp,
			}
			if err := s.locationRepo.Create(ctx, l); err != nil {
				return err
			}
			result, stored = ReportSaved, l
			return nil
		}
		if err != nil {
			return err
		}

		if fix.Timestamp.Before(current.Timestamp) {
			result = ReportStale
			return nil
		}
		if !s.shouldSave(current, fix) {
			result = ReportThrottled
			return nil
		}

		current.Latitude = fix.Latitude
		current.Longitude = fix.Longitude
		current.Timestamp = fix.Timestamp
		if err := s.locationRepo.Update(ctx, current); err != nil {
			return err
		}
		result, stored = ReportSaved, current
		return nil
	})
	if err != nil {
		return "", err
	}

	if stored != nil {
		s.publish(domainLocation.EventLocationUpdated, stored)
	}
	logger.Debug("Location fix processed",
		zap.Int64("trip_id", fix.TripID),
		zap.String("result", string(result)),
	)
	return result, nil
}

func (s *Service) shouldSave(current *domainLocation.Location, fix Fix) bool {
	if fix.Timestamp.Sub(current.Timestamp) >= s.cfg.MinSaveInterval {
		return true
	}
	moved := geo.Distance(current.Latitude, current.Longitude, fix.Latitude, fix.Longitude)
	return moved >= s.cfg.MinSaveDistance
}

// activeTrip loads the trip, checks the caller may report for it and that it
// is still Scheduled.
func (s *Service) activeTrip(ctx context.Context, tripID int64) (*domainTrip.Trip, error) {
	t, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(ctx, t); err != nil {
		return nil, err
	}
	if t.IsCompleted() {
		return nil, appErrors.NewAppError("TRIP_NOT_SCHEDULED", "Trip is not in progress", domainTrip.ErrTripNotScheduled)
	}
	return t, nil
}

func (s *Service) timestamp(ts *time.Time) time.Time {
	if ts == nil || ts.IsZero() {
		return s.now()
	}
	return ts.UTC()
}

func (s *Service) publish(kind domainLocation.EventType, l *domainLocation.Location) {
	snapshot := *l
	s.publisher.Publish(domainLocation.Event{
		Type:       kind,
		TripID:     l.TripID,
		Location:   &snapshot,
		OccurredAt: s.now(),
	})
}

func checkOwner(ctx context.Context, t *domainTrip.Trip) error {
	sess, ok := session.FromContext(ctx)
	if !ok || !sess.IsTrucker() {
		return nil
	}
	if sess.UserID != t.TruckerID {
		return domainTrip.ErrNotTripOwner
	}
	return nil
}
