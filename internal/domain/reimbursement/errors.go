package reimbursement

import "errors"

var (
	ErrReimbursementNotFound = errors.New("reimbursement not found")
	ErrNotPending            = errors.New("reimbursement is no longer pending")
	ErrAlreadyApproved       = errors.New("reimbursement is already approved")
	ErrInvalidAmount         = errors.New("amount must be greater than zero")
	ErrInvalidStatus         = errors.New("invalid reimbursement status")
)
