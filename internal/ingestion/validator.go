package ingestion

import (
	"fmt"
	"math"
	"time"
)

// maxClockSkew bounds how far in the future a device timestamp may be.
const maxClockSkew = 5 * time.Minute

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error [%s]: %s", e.Field, e.Message)
}

func ValidateLocationMessage(msg *LocationMessage, now time.Time) error {
	if msg.TripID <= 0 {
		return &ValidationError{Field: "trip_id", Message: "trip_id is required"}
	}

	if msg.Timestamp.IsZero() {
		return &ValidationError{Field: "timestamp", Message: "timestamp is required"}
	}
	if msg.Timestamp.After(now.Add(maxClockSkew)) {
		return &ValidationError{Field: "timestamp", Message: "timestamp is in the future"}
	}

	if math.IsNaN(msg.Latitude) || msg.Latitude < -90 || msg.Latitude > 90 {
		return &ValidationError{Field: "latitude", Message: "latitude must be between -90 and 90"}
	}
	if math.IsNaN(msg.Longitude) || msg.Longitude < -180 || msg.Longitude > 180 {
		return &ValidationError{Field: "longitude", Message: "longitude must be between -180 and 180"}
	}

	if msg.Speed != nil && *msg.Speed < 0 {
		return &ValidationError{Field: "speed", Message: "speed must be non-negative"}
	}
	if msg.Accuracy != nil && *msg.Accuracy < 0 {
		return &ValidationError{Field: "accuracy", Message: "accuracy must be non-negative"}
	}

	return nil
}
