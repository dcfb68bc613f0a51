package reimbursement

import (
	"context"
	"math"
	"strings"
	"time"

	"rigor-logistics/internal/domain"
	domainAdmin "rigor-logistics/internal/domain/admin"
	domainReimbursement "rigor-logistics/internal/domain/reimbursement"
	domainTrip "rigor-logistics/internal/domain/trip"
	domainTrucker "rigor-logistics/internal/domain/trucker"
	"rigor-logistics/internal/logger"
	"rigor-logistics/internal/notification"
	"rigor-logistics/internal/session"
	"rigor-logistics/internal/usecase/rating"
	appErrors "rigor-logistics/pkg/errors"
	"rigor-logistics/pkg/utils"

	"go.uber.org/zap"
)

// Service runs the reimbursement approval pipeline
type Service struct {
	tx                domain.TxManager
	reimbursementRepo domainReimbursement.Repository
	tripRepo          domainTrip.Repository
	truckerRepo       domainTrucker.Repository
	adminRepo         domainAdmin.Repository
	ratings           *rating.Aggregator
	notifier          notification.Notifier
	now               func() time.Time
}

func NewService(
	tx domain.TxManager,
	reimbursementRepo domainReimbursement.Repository,
	tripRepo domainTrip.Repository,
	truckerRepo domainTrucker.Repository,
	adminRepo domainAdmin.Repository,
	notifier notification.Notifier,
) *Service {
	if notifier == nil {
		notifier = notification.NopNotifier{}
	}
	return &Service{
		tx:                tx,
		reimbursementRepo: reimbursementRepo,
		tripRepo:          tripRepo,
		truckerRepo:       truckerRepo,
		adminRepo:         adminRepo,
		ratings:           rating.NewAggregator(tripRepo, truckerRepo),
		notifier:          notifier,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// CreateReimbursement files a Pending claim against a Completed trip.
func (s *Service) CreateReimbursement(ctx context.Context, req *CreateReimbursementRequest) (*ReimbursementResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}
	if !req.Amount.IsPositive() {
		return nil, appErrors.NewAppError("INVALID_AMOUNT", "Amount must be greater than zero", domainReimbursement.ErrInvalidAmount)
	}

	t, err := s.tripRepo.GetByID(ctx, req.TripID)
	if err != nil {
		return nil, err
	}
	if sess, ok := session.FromContext(ctx); ok && sess.IsTrucker() && sess.UserID != t.TruckerID {
		return nil, domainTrip.ErrNotTripOwner
	}
	if !t.IsCompleted() {
		return nil, appErrors.NewAppError("TRIP_NOT_COMPLETED", "Reimbursements can only be filed for completed trips", domainTrip.ErrTripNotCompleted)
	}

	r := &domainReimbursement.Reimbursement{
		TripID:  t.ID,
		Amount:  req.Amount,
		Receipt: strings.TrimSpace(req.Receipt),
		Status:  domainReimbursement.StatusPending,
	}
	if req.Comments != nil {
		r.AppendComment(utils.SanitizeText(*req.Comments))
	}

	if err := s.reimbursementRepo.Create(ctx, r); err != nil {
		return nil, err
	}

	logger.Info("Reimbursement filed",
		zap.Int64("reimbursement_id", r.ID),
		zap.Int64("trip_id", r.TripID),
		zap.String("amount", r.Amount.String()),
		zap.String("event", "reimbursement_created"),
	)
	return ToReimbursementResponse(r), nil
}

// ModifyReimbursement replaces the amount and appends comments on a new line.
// Only Pending claims can be modified.
func (s *Service) ModifyReimbursement(ctx context.Context, id int64, req *ModifyReimbursementRequest) (*ReimbursementResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}
	if req.Amount != nil && !req.Amount.IsPositive() {
		return nil, appErrors.NewAppError("INVALID_AMOUNT", "Amount must be greater than zero", domainReimbursement.ErrInvalidAmount)
	}

	var modified *domainReimbursement.Reimbursement
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		r, err := s.reimbursementRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !r.IsPending() {
			return appErrors.NewAppError("NOT_PENDING", "Only pending reimbursements can be modified", domainReimbursement.ErrNotPending)
		}

		if req.Amount != nil {
			r.Amount = *req.Amount
		}
		if req.Comments != nil {
			r.AppendComment(utils.SanitizeText(*req.Comments))
		}
		if err := s.reimbursementRepo.Update(ctx, r); err != nil {
			return err
		}
		modified = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Reimbursement modified",
		zap.Int64("reimbursement_id", modified.ID),
		zap.String("amount", modified.Amount.String()),
		zap.String("event", "reimbursement_modified"),
	)
	return ToReimbursementResponse(modified), nil
}

// ApproveReimbursement approves a Pending claim, rates its trip and
// recomputes the trucker's rating in one transaction. The admin defaults to
// the caller when the request leaves it empty.
func (s *Service) ApproveReimbursement(ctx context.Context, id int64, req *ApproveReimbursementRequest) (*ApprovalResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	adminID := req.AdminID
	if adminID == 0 {
		if sess, ok := session.FromContext(ctx); ok && sess.IsAdmin() {
			adminID = sess.UserID
		}
	}
	if adminID == 0 {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "admin_id is required", nil)
	}

	var (
		approved *domainReimbursement.Reimbursement
		trip     *domainTrip.Trip
		average  float64
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.adminRepo.GetByID(ctx, adminID); err != nil {
			return err
		}

		r, err := s.reimbursementRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !r.IsPending() {
			return appErrors.NewAppError("ALREADY_APPROVED", "Reimbursement is already approved", domainReimbursement.ErrAlreadyApproved)
		}

		t, err := s.tripRepo.GetByIDForUpdate(ctx, r.TripID)
		if err != nil {
			return err
		}
		if !t.IsCompleted() {
			return appErrors.NewAppError("TRIP_NOT_COMPLETED", "Trip is not completed", domainTrip.ErrTripNotCompleted)
		}

		approvedAt := s.now()
		r.Status = domainReimbursement.StatusApproved
		r.AdminID = &adminID
		r.ApprovedAt = &approvedAt
		if err := s.reimbursementRepo.Update(ctx, r); err != nil {
			return err
		}

		if err := s.tripRepo.SetRating(ctx, t.ID, req.Rating); err != nil {
			return err
		}
		if average, err = s.ratings.Recompute(ctx, t.TruckerID); err != nil {
			return err
		}

		approved, trip = r, t
		return nil
	})
	if err != nil {
		logger.Warn("Reimbursement approval rolled back",
			zap.Int64("reimbursement_id", id),
			zap.Int64("admin_id", adminID),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Info("Reimbursement approved",
		zap.Int64("reimbursement_id", approved.ID),
		zap.Int64("trip_id", trip.ID),
		zap.Int64("trucker_id", trip.TruckerID),
		zap.Int64("admin_id", adminID),
		zap.Int("trip_rating", req.Rating),
		zap.Float64("trucker_rating", average),
		zap.String("event", "reimbursement_approved"),
	)

	s.notifyTrucker(ctx, trip.TruckerID, approved)

	return &ApprovalResponse{
		ReimbursementResponse: ToReimbursementResponse(approved),
		TripRating:            req.Rating,
		TruckerID:             trip.TruckerID,
		TruckerRating:         average,
	}, nil
}

func (s *Service) GetReimbursement(ctx context.Context, id int64) (*ReimbursementResponse, error) {
	r, err := s.reimbursementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess, ok := session.FromContext(ctx); ok && sess.IsTrucker() {
		t, err := s.tripRepo.GetByID(ctx, r.TripID)
		if err != nil {
			return nil, err
		}
		if t.TruckerID != sess.UserID {
			return nil, domainTrip.ErrNotTripOwner
		}
	}
	return ToReimbursementResponse(r), nil
}

func (s *Service) ListReimbursements(ctx context.Context, req *ReimbursementFilterRequest) (*ReimbursementListResponse, error) {
	if req == nil {
		req = &ReimbursementFilterRequest{}
	}
	filter := &domainReimbursement.Filter{
		Status:    req.Status,
		TripID:    req.TripID,
		TruckerID: req.TruckerID,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}
	if sess, ok := session.FromContext(ctx); ok && sess.IsTrucker() {
		id := sess.UserID
		filter.TruckerID = &id
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, appErrors.NewAppError("INVALID_STATUS", "Unknown reimbursement status", domainReimbursement.ErrInvalidStatus)
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

	items, total, err := s.reimbursementRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]*ReimbursementResponse, 0, len(items))
	for _, r := range items {
		responses = append(responses, ToReimbursementResponse(r))
	}
	return &ReimbursementListResponse{
		Reimbursements: responses,
		Total:          total,
		Page:           filter.Page,
		PageSize:       filter.PageSize,
		TotalPages:     int(math.Ceil(float64(total) / float64(filter.PageSize))),
	}, nil
}

func (s *Service) notifyTrucker(ctx context.Context, truckerID int64, r *domainReimbursement.Reimbursement) {
	trucker, err := s.truckerRepo.GetByID(ctx, truckerID)
	if err != nil {
		logger.Warn("Skipping approval email, trucker lookup failed",
			zap.Int64("trucker_id", truckerID),
			zap.Error(err),
		)
		return
	}
	if err := s.notifier.Notify(ctx, notification.ReimbursementApproved(trucker, r)); err != nil {
		logger.Warn("Approval notification not delivered",
			zap.Int64("reimbursement_id", r.ID),
			zap.Error(err),
		)
	}
}
