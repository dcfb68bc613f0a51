package reimbursement

import (
	"time"

	domainReimbursement "rigor-logistics/internal/domain/reimbursement"
	"rigor-logistics/pkg/money"
)

type CreateReimbursementRequest struct {
	TripID   int64       `json:"trip_id" validate:"required,gt=0"`
	Amount   money.Money `json:"amount"`
	Receipt  string      `json:"receipt" validate:"required,max=1024"`
	Comments *string     `json:"comments" validate:"omitempty,max=2000"`
}

// ModifyReimbursementRequest changes the amount and appends to the comment
// thread while the claim is Pending.
type ModifyReimbursementRequest struct {
	Amount   *money.Money `json:"amount"`
	Comments *string      `json:"comments" validate:"omitempty,max=2000"`
}

type ApproveReimbursementRequest struct {
	AdminID int64 `json:"admin_id" validate:"omitempty,gt=0"`
	Rating  int   `json:"rating" validate:"required,min=1,max=5"`
}

type ReimbursementFilterRequest struct {
	Status    *domainReimbursement.Status `form:"status"`
	TripID    *int64                      `form:"trip_id"`
	TruckerID *int64                      `form:"trucker_id"`
	Page      int                         `form:"page"`
	PageSize  int                         `form:"page_size"`
}

type ReimbursementResponse struct {
	ID         int64                      `json:"reimbursement_id"`
	TripID     int64                      `json:"trip_id"`
	Amount     money.Money                `json:"amount"`
	Receipt    string                     `json:"receipt"`
	Status     domainReimbursement.Status `json:"status"`
	Comments   *string                    `json:"comments"`
	AdminID    *int64                     `json:"admin_id"`
	ApprovedAt *time.Time                 `json:"approved_at"`
	CreatedAt  time.Time                  `json:"created_at"`
	UpdatedAt  time.Time                  `json:"updated_at"`
}

// ApprovalResponse carries the refreshed trip and trucker scores along with
// the approved claim.
type ApprovalResponse struct {
	*ReimbursementResponse
	TripRating    int     `json:"trip_rating"`
	TruckerID     int64   `json:"trucker_id"`
	TruckerRating float64 `json:"trucker_rating"`
}

type ReimbursementListResponse struct {
	Reimbursements []*ReimbursementResponse `json:"reimbursements"`
	Total          int64                    `json:"total"`
	Page           int                      `json:"page"`
	PageSize       int                      `json:"page_size"`
	TotalPages     int                      `json:"total_pages"`
}

func ToReimbursementResponse(r *domainReimbursement.Reimbursement) *ReimbursementResponse {
	if r == nil {
		return nil
	}
	return &ReimbursementResponse{
		ID:         r.ID,
		TripID:     r.TripID,
		Amount:     r.Amount,
		Receipt:    r.Receipt,
		Status:     r.Status,
		Comments:   r.Comments,
		AdminID:    r.AdminID,
		ApprovedAt: r.ApprovedAt,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}
