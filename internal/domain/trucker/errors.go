package trucker

import "errors"

var (
	ErrTruckerNotFound      = errors.New("trucker not found")
	ErrTruckerAlreadyExists = errors.New("trucker already exists")
	ErrTruckerUnavailable   = errors.New("trucker is not available")
	ErrInvalidStatus        = errors.New("invalid trucker status")
	ErrInvalidRating        = errors.New("rating must be between 0 and 5")
)
