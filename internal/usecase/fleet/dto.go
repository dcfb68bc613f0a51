package fleet

import (
	"time"

	domainAdmin "rigor-logistics/internal/domain/admin"
	domainTruck "rigor-logistics/internal/domain/truck"
	domainTrucker "rigor-logistics/internal/domain/trucker"
)

type CreateTruckerRequest struct {
	Name         string  `json:"name" validate:"required,min=2,max=255"`
	Email        string  `json:"email" validate:"required,email"`
	Phone        string  `json:"phone" validate:"required,min=7,max=20"`
	ProfileImage *string `json:"profile_image" validate:"omitempty,url"`
}

type UpdateTruckerStatusRequest struct {
	Status domainTrucker.Status `json:"status" validate:"required"`
}

type UpdateTruckerRatingRequest struct {
	Rating *float64 `json:"rating" validate:"required,gte=0,lte=5"`
}

type TruckerFilterRequest struct {
	Status   *domainTrucker.Status `form:"status"`
	Page     int                   `form:"page"`
	PageSize int                   `form:"page_size"`
}

type TruckerResponse struct {
	ID           int64                `json:"trucker_id"`
	Name         string               `json:"name"`
	Email        string               `json:"email"`
	Phone        string               `json:"phone"`
	Status       domainTrucker.Status `json:"status"`
	Rating       float64              `json:"rating"`
	ProfileImage *string              `json:"profile_image"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

type TruckerListResponse struct {
	Truckers []*TruckerResponse `json:"truckers"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

type CreateTruckRequest struct {
	PlateNumber   string  `json:"plate_number" validate:"required,min=2,max=20"`
	ChassisNumber string  `json:"chassis_number" validate:"required,max=64"`
	Capacity      float64 `json:"capacity" validate:"gte=0"`
	TruckerID     *int64  `json:"trucker_id" validate:"omitempty,gt=0"`
}

type TruckFilterRequest struct {
	TruckerID *int64 `form:"trucker_id"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
}

type TruckResponse struct {
	ID            int64     `json:"truck_id"`
	PlateNumber   string    `json:"plate_number"`
	ChassisNumber string    `json:"chassis_number"`
	Capacity      float64   `json:"capacity"`
	TruckerID     *int64    `json:"trucker_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type TruckListResponse struct {
	Trucks   []*TruckResponse `json:"trucks"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

type CreateAdminRequest struct {
	Name         string  `json:"name" validate:"required,min=2,max=255"`
	Email        string  `json:"email" validate:"required,email"`
	Phone        string  `json:"phone" validate:"omitempty,min=7,max=20"`
	ProfileImage *string `json:"profile_image" validate:"omitempty,url"`
}

type AdminResponse struct {
	ID           int64     `json:"admin_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	ProfileImage *string   `json:"profile_image"`
	CreatedAt    time.Time `json:"created_at"`
}

func ToTruckerResponse(t *domainTrucker.Trucker) *TruckerResponse {
	return &TruckerResponse{
		ID:           t.ID,
		Name:         t.Name,
		Email:        t.Email,
		Phone:        t.Phone,
		Status:       t.Status,
		Rating:       t.Rating,
		ProfileImage: t.ProfileImage,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func ToTruckResponse(t *domainTruck.Truck) *TruckResponse {
	return &TruckResponse{
		ID:            t.ID,
		PlateNumber:   t.PlateNumber,
		ChassisNumber: t.ChassisNumber,
		Capacity:      t.Capacity,
		TruckerID:     t.TruckerID,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func ToAdminResponse(a *domainAdmin.Admin) *AdminResponse {
	return &AdminResponse{
		ID:           a.ID,
		Name:         a.Name,
		Email:        a.Email,
		Phone:        a.Phone,
		ProfileImage: a.ProfileImage,
		CreatedAt:    a.CreatedAt,
	}
}
