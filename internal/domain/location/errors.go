package location

import "errors"

var (
	ErrLocationNotFound   = errors.New("location not found")
	ErrLocationExists     = errors.New("trip already has a location")
	ErrInvalidCoordinates = errors.New("latitude must be within [-90, 90] and longitude within [-180, 180]")
)
