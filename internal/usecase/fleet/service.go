// Package fleet manages the truckers, trucks and admins the trip workflow
// refers to.
package fleet

import (
	"context"
	"errors"
	"strings"

	"rigor-logistics/internal/domain"
	domainAdmin "rigor-logistics/internal/domain/admin"
	domainTruck "rigor-logistics/internal/domain/truck"
	domainTrucker "rigor-logistics/internal/domain/trucker"
	"rigor-logistics/internal/logger"
	appErrors "rigor-logistics/pkg/errors"
	"rigor-logistics/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	tx          domain.TxManager
	truckerRepo domainTrucker.Repository
	truckRepo   domainTruck.Repository
	adminRepo   domainAdmin.Repository
}

func NewService(
	tx domain.TxManager,
	truckerRepo domainTrucker.Repository,
	truckRepo domainTruck.Repository,
	adminRepo domainAdmin.Repository,
) *Service {
	return &Service{
		tx:          tx,
		truckerRepo: truckerRepo,
		truckRepo:   truckRepo,
		adminRepo:   adminRepo,
	}
}

// CreateTrucker registers a trucker as Inactive with a zero rating.
func (s *Service) CreateTrucker(ctx context.Context, req *CreateTruckerRequest) (*TruckerResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	email, err := utils.ValidateAndSanitizeEmail(req.Email)
	if err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid email", err)
	}

	if existing, err := s.truckerRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, domainTrucker.ErrTruckerAlreadyExists
	} else if err != nil && !errors.Is(err, domainTrucker.ErrTruckerNotFound) {
		return nil, err
	}

	t := &domainTrucker.Trucker{
		Name:         utils.SanitizeString(req.Name),
		Email:        email,
		Phone:        utils.SanitizePhone(req.Phone),
		Status:       domainTrucker.StatusInactive,
		Rating:       0,
		ProfileImage: req.ProfileImage,
	}
	if err := s.truckerRepo.Create(ctx, t); err != nil {
		return nil, err
	}

	logger.Info("Trucker registered",
		zap.Int64("trucker_id", t.ID),
		zap.String("email", t.Email),
		zap.String("event", "trucker_created"),
	)
	return ToTruckerResponse(t), nil
}

func (s *Service) GetTrucker(ctx context.Context, truckerID int64) (*TruckerResponse, error) {
	t, err := s.truckerRepo.GetByID(ctx, truckerID)
	if err != nil {
		return nil, err
	}
	return ToTruckerResponse(t), nil
}

func (s *Service) ListTruckers(ctx context.Context, req *TruckerFilterRequest) (*TruckerListResponse, error) {
	if req == nil {
		req = &TruckerFilterRequest{}
	}
	if req.Status != nil && !req.Status.IsValid() {
		return nil, appErrors.NewAppError("INVALID_STATUS", "Unknown trucker status", domainTrucker.ErrInvalidStatus)
	}
	page, pageSize := normalizePage(req.Page, req.PageSize)

	truckers, total, err := s.truckerRepo.List(ctx, &domainTrucker.Filter{Status: req.Status, Page: page, PageSize: pageSize})
	if err != nil {
		return nil, err
	}
	out := make([]*TruckerResponse, 0, len(truckers))
	for _, t := range truckers {
		out = append(out, ToTruckerResponse(t))
	}
	return &TruckerListResponse{Truckers: out, Total: total, Page: page, PageSize: pageSize}, nil
}

// UpdateTruckerStatus is a manual override. The trip workflow sets status on
// its own.
func (s *Service) UpdateTruckerStatus(ctx context.Context, truckerID int64, req *UpdateTruckerStatusRequest) (*TruckerResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}
	if !req.Status.IsValid() {
		return nil, appErrors.NewAppError("INVALID_STATUS", "Status must be Active or Inactive", domainTrucker.ErrInvalidStatus)
	}

	if err := s.truckerRepo.UpdateStatus(ctx, truckerID, req.Status); err != nil {
		return nil, err
	}
	logger.Warn("Trucker status overridden",
		zap.Int64("trucker_id", truckerID),
		zap.String("status", string(req.Status)),
	)
	return s.GetTrucker(ctx, truckerID)
}

// UpdateTruckerRating is a manual override. The next approval recomputes the
// rating from trip scores.
func (s *Service) UpdateTruckerRating(ctx context.Context, truckerID int64, req *UpdateTruckerRatingRequest) (*TruckerResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Rating must be between 0 and 5", domainTrucker.ErrInvalidRating)
	}

	if err := s.truckerRepo.UpdateRating(ctx, truckerID, *req.Rating); err != nil {
		return nil, err
	}
	logger.Warn("Trucker rating overridden",
		zap.Int64("trucker_id", truckerID),
		zap.Float64("rating", *req.Rating),
	)
	return s.GetTrucker(ctx, truckerID)
}

// CreateTruck registers a truck, optionally bound to a trucker. A trucker
// drives at most one truck.
func (s *Service) CreateTruck(ctx context.Context, req *CreateTruckRequest) (*TruckResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	t := &domainTruck.Truck{
		PlateNumber:   strings.ToUpper(utils.SanitizeString(req.PlateNumber)),
		ChassisNumber: utils.SanitizeString(req.ChassisNumber),
		Capacity:      req.Capacity,
		TruckerID:     req.TruckerID,
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if req.TruckerID != nil {
			if _, err := s.truckerRepo.GetByIDForUpdate(ctx, *req.TruckerID); err != nil {
				return err
			}
			_, err := s.truckRepo.GetByTruckerID(ctx, *req.TruckerID)
			if err == nil {
				return domainTruck.ErrTruckerHasTruck
			}
			if !errors.Is(err, domainTruck.ErrTruckNotFound) {
				return err
			}
		}
		return s.truckRepo.Create(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Truck registered",
		zap.Int64("truck_id", t.ID),
		zap.String("plate_number", t.PlateNumber),
		zap.String("event", "truck_created"),
	)
	return ToTruckResponse(t), nil
}

func (s *Service) GetTruck(ctx context.Context, truckID int64) (*TruckResponse, error) {
	t, err := s.truckRepo.GetByID(ctx, truckID)
	if err != nil {
		return nil, err
	}
	return ToTruckResponse(t), nil
}

func (s *Service) ListTrucks(ctx context.Context, req *TruckFilterRequest) (*TruckListResponse, error) {
	if req == nil {
		req = &TruckFilterRequest{}
	}
	page, pageSize := normalizePage(req.Page, req.PageSize)

	trucks, total, err := s.truckRepo.List(ctx, &domainTruck.Filter{TruckerID: req.TruckerID, Page: page, PageSize: pageSize})
	if err != nil {
		return nil, err
	}
	out := make([]*TruckResponse, 0, len(trucks))
	for _, t := range trucks {
		out = append(out, ToTruckResponse(t))
	}
	return &TruckListResponse{Trucks: out, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *Service) CreateAdmin(ctx context.Context, req *CreateAdminRequest) (*AdminResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}
	email, err := utils.ValidateAndSanitizeEmail(req.Email)
	if err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid email", err)
	}

	a := &domainAdmin.Admin{
		Name:         utils.SanitizeString(req.Name),
		Email:        email,
		Phone:        utils.SanitizePhone(req.Phone),
		ProfileImage: req.ProfileImage,
	}
	if err := s.adminRepo.Create(ctx, a); err != nil {
		return nil, err
	}

	logger.Info("Admin registered", zap.Int64("admin_id", a.ID), zap.String("event", "admin_created"))
	return ToAdminResponse(a), nil
}

func (s *Service) GetAdmin(ctx context.Context, adminID int64) (*AdminResponse, error) {
	a, err := s.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	return ToAdminResponse(a), nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
