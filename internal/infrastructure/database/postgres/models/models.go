package models

// All lists every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&AdminModel{},
		&TruckerModel{},
		&TruckModel{},
		&TripModel{},
		&LocationModel{},
		&ReimbursementModel{},
	}
}
