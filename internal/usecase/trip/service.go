package trip

import (
	"context"
	"errors"
	"math"
	"time"

	"rigor-logistics/internal/config"
	"rigor-logistics/internal/domain"
	domainAdmin "rigor-logistics/internal/domain/admin"
	domainLocation "rigor-logistics/internal/domain/location"
	domainTrip "rigor-logistics/internal/domain/trip"
	domainTruck "rigor-logistics/internal/domain/truck"
	domainTrucker "rigor-logistics/internal/domain/trucker"
	"rigor-logistics/internal/logger"
	"rigor-logistics/internal/notification"
	"rigor-logistics/internal/session"
	"rigor-logistics/internal/usecase/rating"
	appErrors "rigor-logistics/pkg/errors"
	"rigor-logistics/pkg/utils"

	"go.uber.org/zap"
)

// Service implements the trip lifecycle
type Service struct {
	tx           domain.TxManager
	tripRepo     domainTrip.Repository
	truckerRepo  domainTrucker.Repository
	truckRepo    domainTruck.Repository
	adminRepo    domainAdmin.Repository
	locationRepo domainLocation.Repository
	ratings      *rating.Aggregator
	notifier     notification.Notifier
	publisher    domainLocation.Publisher
	placeholder  config.TrackingConfig
	now          func() time.Time
}

type Dependencies struct {
	Tx           domain.TxManager
	TripRepo     domainTrip.Repository
	TruckerRepo  domainTrucker.Repository
	TruckRepo    domainTruck.Repository
	AdminRepo    domainAdmin.Repository
	LocationRepo domainLocation.Repository
	Notifier     notification.Notifier
	Publisher    domainLocation.Publisher
	Tracking     config.TrackingConfig
}

func NewService(deps Dependencies) *Service {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notification.NopNotifier{}
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = domainLocation.NopPublisher{}
	}
	return &Service{
		tx:           deps.Tx,
		tripRepo:     deps.TripRepo,
		truckerRepo:  deps.TruckerRepo,
		truckRepo:    deps.TruckRepo,
		adminRepo:    deps.AdminRepo,
		locationRepo: deps.LocationRepo,
		ratings:      rating.NewAggregator(deps.TripRepo, deps.TruckerRepo),
		notifier:     notifier,
		publisher:    publisher,
		placeholder:  deps.Tracking,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// AssignTrip creates a Scheduled trip, marks the trucker Active and seeds the
// trip's location row, all in one transaction. The trucker is emailed after
// commit.
func (s *Service) AssignTrip(ctx context.Context, req *AssignTripRequest) (*AssignTripResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}
	if req.ExpectedCost != nil && req.ExpectedCost.IsNegative() {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Expected cost cannot be negative", nil)
	}

	var (
		created  *domainTrip.Trip
		seeded   *domainLocation.Location
		assignee *domainTrucker.Trucker
	)

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		trucker, err := s.truckerRepo.GetByIDForUpdate(ctx, req.TruckerID)
		if err != nil {
			return err
		}
		if !trucker.IsAvailable() {
			return domainTrucker.ErrTruckerUnavailable
		}

		if _, err := s.adminRepo.GetByID(ctx, req.AdminID); err != nil {
			return err
		}

		truck, err := s.truckRepo.GetByTruckerID(ctx, trucker.ID)
		if err != nil {
			if errors.Is(err, domainTruck.ErrTruckNotFound) {
				return domainTruck.ErrNoTruckAssigned
			}
			return err
		}
		if req.TruckID != nil && *req.TruckID != truck.ID {
			return domainTrip.ErrTruckMismatch
		}

		assignedAt := s.now()
		startTime := assignedAt
		if req.StartTime != nil {
			startTime = req.StartTime.UTC()
		}

		t := &domainTrip.Trip{
			TruckerID:     trucker.ID,
			TruckID:       truck.ID,
			AdminID:       req.AdminID,
			StartLocation: utils.SanitizeString(req.StartLocation),
			EndLocation:   utils.SanitizeString(req.EndLocation),
			StartTime:     startTime,
			Status:        domainTrip.StatusScheduled,
			Distance:      req.Distance,
			ExpectedCost:  req.ExpectedCost,
		}
		if err := s.tripRepo.Create(ctx, t); err != nil {
			return err
		}

		if err := s.truckerRepo.UpdateStatus(ctx, trucker.ID, domainTrucker.StatusActive); err != nil {
			return err
		}

		// The placeholder is stamped with the assignment time so a future
		// start_time cannot make live fixes look stale.
		loc := &domainLocation.Location{
			TripID:    t.ID,
			Latitude:  s.placeholder.PlaceholderLatitude,
			Longitude: s.placeholder.PlaceholderLongitude,
			Timestamp: assignedAt,
		}
		if err := s.locationRepo.Create(ctx, loc); err != nil {
			return err
		}

		created, seeded, assignee = t, loc, trucker
		return nil
	})
	if err != nil {
		logger.Warn("Trip assignment rolled back",
			zap.Int64("trucker_id", req.TruckerID),
			zap.Int64("admin_id", req.AdminID),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Info("Trip assigned",
		zap.Int64("trip_id", created.ID),
		zap.Int64("trucker_id", created.TruckerID),
		zap.Int64("truck_id", created.TruckID),
		zap.Int64("admin_id", created.AdminID),
		zap.String("event", "trip_assigned"),
	)

	s.notify(ctx, notification.TripAssigned(assignee, created), created.ID)
	return toAssignResponse(created, seeded), nil
}

// CompleteTrip finishes a Scheduled trip, frees the trucker and removes the
// live location row. Completing an already Completed trip fails with
// ErrTripAlreadyCompleted and changes nothing.
func (s *Service) CompleteTrip(ctx context.Context, tripID int64) (*TripResponse, error) {
	var completed *domainTrip.Trip

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		completed, err = s.complete(ctx, tripID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterComplete(ctx, completed)
	return ToTripResponse(completed), nil
}

// complete runs the completion writes. The caller owns the transaction.
func (s *Service) complete(ctx context.Context, tripID int64) (*domainTrip.Trip, error) {
	t, err := s.tripRepo.GetByIDForUpdate(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(ctx, t); err != nil {
		return nil, err
	}
	if err := ValidateStatusTransition(t.Status, domainTrip.StatusCompleted); err != nil {
		return nil, err
	}

	if err := s.tripRepo.Complete(ctx, t.ID, s.now()); err != nil {
		return nil, err
	}
	if err := s.truckerRepo.UpdateStatus(ctx, t.TruckerID, domainTrucker.StatusInactive); err != nil {
		return nil, err
	}
	if _, err := s.locationRepo.DeleteByTrip(ctx, t.ID); err != nil {
		return nil, err
	}

	return s.tripRepo.GetByID(ctx, t.ID)
}

func (s *Service) afterComplete(ctx context.Context, completed *domainTrip.Trip) {
	logger.Info("Trip completed",
		zap.Int64("trip_id", completed.ID),
		zap.Int64("trucker_id", completed.TruckerID),
		zap.String("event", "trip_completed"),
	)

	s.publisher.Publish(domainLocation.Event{
		Type:       domainLocation.EventTripCompleted,
		TripID:     completed.ID,
		OccurredAt: s.now(),
	})
	s.notifyAdmin(ctx, completed)
}

// UpdateTrip applies a partial update. A status of Completed completes the
// trip in the same transaction as the field edits; no other status change is
// accepted.
func (s *Service) UpdateTrip(ctx context.Context, tripID int64, req *UpdateTripRequest) (*TripResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}
	if req.Status != nil && !req.Status.IsValid() {
		return nil, appErrors.NewAppError("INVALID_STATUS", "Unknown trip status", domainTrip.ErrInvalidStatus)
	}
	if req.ExpectedCost != nil && req.ExpectedCost.IsNegative() {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Expected cost cannot be negative", nil)
	}
	if !req.hasFieldChanges() && req.Status == nil {
		return s.GetTrip(ctx, tripID)
	}

	var completed *domainTrip.Trip
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		t, err := s.tripRepo.GetByIDForUpdate(ctx, tripID)
		if err != nil {
			return err
		}
		if err := checkOwner(ctx, t); err != nil {
			return err
		}
		if req.Status != nil {
			if err := ValidateStatusTransition(t.Status, *req.Status); err != nil {
				return err
			}
		}

		if req.hasFieldChanges() {
			if t.IsCompleted() {
				return appErrors.NewAppError("TRIP_ALREADY_COMPLETED", "Completed trips cannot be edited", domainTrip.ErrTripAlreadyCompleted)
			}
			applyTripChanges(t, req)
			if err := s.tripRepo.Update(ctx, t); err != nil {
				return err
			}
		}

		if req.Status != nil {
			completed, err = s.complete(ctx, t.ID)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.hasFieldChanges() {
		logger.Info("Trip updated", zap.Int64("trip_id", tripID), zap.String("event", "trip_updated"))
	}
	if completed != nil {
		s.afterComplete(ctx, completed)
		return ToTripResponse(completed), nil
	}
	return s.GetTrip(ctx, tripID)
}

func applyTripChanges(t *domainTrip.Trip, req *UpdateTripRequest) {
	if req.StartLocation != nil {
		t.StartLocation = utils.SanitizeString(*req.StartLocation)
	}
	if req.EndLocation != nil {
		t.EndLocation = utils.SanitizeString(*req.EndLocation)
	}
	if req.StartTime != nil {
		t.StartTime = req.StartTime.UTC()
	}
	if req.EndTime != nil {
		end := req.EndTime.UTC()
		t.EndTime = &end
	}
	if req.Distance != nil {
		t.Distance = *req.Distance
	}
	if req.ExpectedCost != nil {
		t.ExpectedCost = req.ExpectedCost
	}
}

// RateTrip sets trip_rating on a Completed trip and refreshes the trucker's
// aggregate rating.
func (s *Service) RateTrip(ctx context.Context, tripID int64, req *RateTripRequest) (*TripResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}
	if err := validateRating(req.Rating); err != nil {
		return nil, err
	}

	var (
		rated   *domainTrip.Trip
		average float64
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		t, err := s.tripRepo.GetByIDForUpdate(ctx, tripID)
		if err != nil {
			return err
		}
		if !t.IsCompleted() {
			return appErrors.NewAppError("TRIP_NOT_COMPLETED", "Only completed trips can be rated", domainTrip.ErrTripNotCompleted)
		}
		if err := s.tripRepo.SetRating(ctx, t.ID, req.Rating); err != nil {
			return err
		}
		if average, err = s.ratings.Recompute(ctx, t.TruckerID); err != nil {
			return err
		}
		rated, err = s.tripRepo.GetByID(ctx, t.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Trip rated",
		zap.Int64("trip_id", rated.ID),
		zap.Int("rating", req.Rating),
		zap.Float64("trucker_rating", average),
		zap.String("event", "trip_rated"),
	)
	return ToTripResponse(rated), nil
}

func (s *Service) GetTrip(ctx context.Context, tripID int64) (*TripResponse, error) {
	t, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(ctx, t); err != nil {
		return nil, err
	}
	return ToTripResponse(t), nil
}

// ListTrips returns a page of trips. Truckers only ever see their own.
func (s *Service) ListTrips(ctx context.Context, req *TripFilterRequest) (*TripListResponse, error) {
	filter := ToDomainFilter(req)
	if sess, ok := session.FromContext(ctx); ok && sess.IsTrucker() {
		id := sess.UserID
		filter.TruckerID = &id
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, appErrors.NewAppError("INVALID_STATUS", "Unknown trip status", domainTrip.ErrInvalidStatus)
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}

	trips, total, err := s.tripRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]*TripResponse, 0, len(trips))
	for _, t := range trips {
		responses = append(responses, ToTripResponse(t))
	}

	return &TripListResponse{
		Trips:      responses,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.PageSize))),
	}, nil
}

func (s *Service) notifyAdmin(ctx context.Context, t *domainTrip.Trip) {
	admin, err := s.adminRepo.GetByID(ctx, t.AdminID)
	if err != nil {
		logger.Warn("Skipping completion email, admin lookup failed",
			zap.Int64("trip_id", t.ID),
			zap.Int64("admin_id", t.AdminID),
			zap.Error(err),
		)
		return
	}
	trucker, err := s.truckerRepo.GetByID(ctx, t.TruckerID)
	if err != nil {
		trucker = nil
	}
	s.notify(ctx, notification.TripCompleted(admin, trucker, t), t.ID)
}

// notify never fails the caller. Delivery problems are only logged.
func (s *Service) notify(ctx context.Context, msg notification.Message, tripID int64) {
	if err := s.notifier.Notify(ctx, msg); err != nil {
		logger.Warn("Trip notification not delivered",
			zap.Int64("trip_id", tripID),
			zap.String("subject", msg.Subject),
			zap.Error(err),
		)
	}
}

// checkOwner rejects truckers acting on another trucker's trip. Admins and
// calls without a session pass.
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
