package trip

import "errors"

var (
	ErrTripNotFound            = errors.New("trip not found")
	ErrInvalidStatus           = errors.New("invalid trip status")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrTripAlreadyCompleted    = errors.New("trip is already completed")
	ErrTripNotCompleted        = errors.New("trip is not completed")
	ErrTripNotScheduled        = errors.New("trip is not in progress")
	ErrInvalidRating           = errors.New("trip rating must be between 1 and 5")
	ErrTruckMismatch           = errors.New("truck is not assigned to this trucker")
	ErrNotTripOwner            = errors.New("trip belongs to another trucker")
)
