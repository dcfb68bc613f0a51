package reimbursement

import (
	"time"

	"rigor-logistics/pkg/money"
)

// Reimbursement is an expense claim against a completed trip
type Reimbursement struct {
	ID         int64
	TripID     int64
	Amount     money.Money
	Receipt    string
	Status     Status
	Comments   *string
	AdminID    *int64
	ApprovedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
)

func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusApproved
}

func (r *Reimbursement) IsPending() bool {
	return r.Status == StatusPending
}

// AppendComment adds text on a new line after any existing comments.
func (r *Reimbursement) AppendComment(text string) {
	if text == "" {
		return
	}
	if r.Comments == nil || *r.Comments == "" {
		r.Comments = &text
		return
	}
	joined := *r.Comments + "\n" + text
	r.Comments = &joined
}
