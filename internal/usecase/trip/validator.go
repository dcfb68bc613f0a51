package trip

import (
	"fmt"

	domainTrip "rigor-logistics/internal/domain/trip"
	appErrors "rigor-logistics/pkg/errors"
)

// ValidateStatusTransition checks the trip state machine. Completed is
// terminal.
func ValidateStatusTransition(currentStatus, newStatus domainTrip.Status) error {
	validTransitions := map[domainTrip.Status][]domainTrip.Status{
		domainTrip.StatusScheduled: {
			domainTrip.StatusCompleted,
		},
		domainTrip.StatusCompleted: {},
	}

	allowedStatuses, exists := validTransitions[currentStatus]
	if !exists {
		return appErrors.NewAppError(
			"INVALID_STATUS",
			fmt.Sprintf("Unknown current status: %s", currentStatus),
			domainTrip.ErrInvalidStatus,
		)
	}

	for _, allowed := range allowedStatuses {
		if newStatus == allowed {
			return nil
		}
	}

	if currentStatus == domainTrip.StatusCompleted {
		return appErrors.NewAppError(
			"TRIP_ALREADY_COMPLETED",
			"Trip is already completed",
			domainTrip.ErrTripAlreadyCompleted,
		)
	}

	return appErrors.NewAppError(
		"INVALID_TRANSITION",
		fmt.Sprintf("Cannot transition from %s to %s", currentStatus, newStatus),
		domainTrip.ErrInvalidStatusTransition,
	)
}

func validateRating(rating int) error {
	if rating < domainTrip.MinRating || rating > domainTrip.MaxRating {
		return appErrors.NewAppError("INVALID_RATING", "Rating must be between 1 and 5", domainTrip.ErrInvalidRating)
	}
	return nil
}
