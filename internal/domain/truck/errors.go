package truck

import "errors"

var (
	ErrTruckNotFound      = errors.New("truck not found")
	ErrTruckAlreadyExists = errors.New("truck with this plate number already exists")
	ErrNoTruckAssigned    = errors.New("no truck assigned to trucker")
	ErrTruckerHasTruck    = errors.New("trucker already has a truck")
)
