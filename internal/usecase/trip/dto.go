package trip

import (
	"time"

	domainLocation "rigor-logistics/internal/domain/location"
	domainTrip "rigor-logistics/internal/domain/trip"
	"rigor-logistics/pkg/money"
)

type AssignTripRequest struct {
	TruckerID     int64        `json:"trucker_id" validate:"required,gt=0"`
	TruckID       *int64       `json:"truck_id" validate:"omitempty,gt=0"`
	StartLocation string       `json:"start_location" validate:"required,max=255"`
	EndLocation   string       `json:"end_location" validate:"required,max=255"`
	StartTime     *time.Time   `json:"start_time"`
	Distance      float64      `json:"distance" validate:"gte=0"`
	ExpectedCost  *money.Money `json:"expected_cost"`
	AdminID       int64        `json:"admin_id" validate:"required,gt=0"`
}

// UpdateTripRequest is a partial update. Status may only be "Completed".
type UpdateTripRequest struct {
	StartLocation *string            `json:"start_location" validate:"omitempty,min=1,max=255"`
	EndLocation   *string            `json:"end_location" validate:"omitempty,min=1,max=255"`
	StartTime     *time.Time         `json:"start_time"`
	EndTime       *time.Time         `json:"end_time"`
	Distance      *float64           `json:"distance" validate:"omitempty,gte=0"`
	ExpectedCost  *money.Money       `json:"expected_cost"`
	Status        *domainTrip.Status `json:"status"`
}

func (r *UpdateTripRequest) hasFieldChanges() bool {
	return r.StartLocation != nil || r.EndLocation != nil || r.StartTime != nil ||
		r.EndTime != nil || r.Distance != nil || r.ExpectedCost != nil
}

type RateTripRequest struct {
	Rating int `json:"rating" validate:"required,min=1,max=5"`
}

type TripFilterRequest struct {
	TruckerID *int64             `form:"trucker_id"`
	AdminID   *int64             `form:"admin_id"`
	Status    *domainTrip.Status `form:"status"`
	Page      int                `form:"page"`
	PageSize  int                `form:"page_size"`
}

type TripResponse struct {
	ID            int64             `json:"trip_id"`
	TruckerID     int64             `json:"trucker_id"`
	TruckID       int64             `json:"truck_id"`
	AdminID       int64             `json:"admin_id"`
	StartLocation string            `json:"start_location"`
	EndLocation   string            `json:"end_location"`
	StartTime     time.Time         `json:"start_time"`
	EndTime       *time.Time        `json:"end_time"`
	Status        domainTrip.Status `json:"status"`
	Distance      float64           `json:"distance"`
	TripRating    *int              `json:"trip_rating"`
	ExpectedCost  *money.Money      `json:"expected_cost"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// AssignTripResponse also returns the placeholder location row the in-cab
// client will overwrite.
type AssignTripResponse struct {
	*TripResponse
	LocationID int64 `json:"location_id"`
}

type TripListResponse struct {
	Trips      []*TripResponse `json:"trips"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

func ToTripResponse(t *domainTrip.Trip) *TripResponse {
	if t == nil {
		return nil
	}
	return &TripResponse{
		ID:            t.ID,
		TruckerID:     t.TruckerID,
		TruckID:       t.TruckID,
		AdminID:       t.AdminID,
		StartLocation: t.StartLocation,
		EndLocation:   t.EndLocation,
		StartTime:     t.StartTime,
		EndTime:       t.EndTime,
		Status:        t.Status,
		Distance:      t.Distance,
		TripRating:    t.TripRating,
		ExpectedCost:  t.ExpectedCost,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func toAssignResponse(t *domainTrip.Trip, loc *domainLocation.Location) *AssignTripResponse {
	resp := &AssignTripResponse{TripResponse: ToTripResponse(t)}
	if loc != nil {
		resp.LocationID = loc.ID
	}
	return resp
}

func ToDomainFilter(req *TripFilterRequest) *domainTrip.Filter {
	if req == nil {
		return &domainTrip.Filter{}
	}
	return &domainTrip.Filter{
		TruckerID: req.TruckerID,
		AdminID:   req.AdminID,
		Status:    req.Status,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}
}
