package tracking

import (
	"time"

	domainLocation "rigor-logistics/internal/domain/location"
)

type CreateLocationRequest struct {
	TripID    int64      `json:"trip_id" validate:"required,gt=0"`
	Latitude  float64    `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64    `json:"longitude" validate:"gte=-180,lte=180"`
	Timestamp *time.Time `json:"timestamp"`
}

// UpdateLocationRequest overwrites the trip's single location row.
type UpdateLocationRequest struct {
	Latitude  float64    `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64    `json:"longitude" validate:"gte=-180,lte=180"`
	Timestamp *time.Time `json:"timestamp"`
}

// Fix is a position reported by a device outside the REST API.
type Fix struct {
	TripID    int64
	Latitude  float64
	Longitude float64
	Timestamp time.Time
}

type LocationResponse struct {
	ID        int64     `json:"location_id"`
	TripID    int64     `json:"trip_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ReportResult string

const (
	ReportSaved     ReportResult = "saved"
	ReportThrottled ReportResult = "throttled"
	ReportStale     ReportResult = "stale"
)

func ToLocationResponse(l *domainLocation.Location) *LocationResponse {
	if l == nil {
		return nil
	}
	return &LocationResponse{
		ID:        l.ID,
		TripID:    l.TripID,
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
		Timestamp: l.Timestamp,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

func toLocationResponses(locations []*domainLocation.Location) []*LocationResponse {
	out := make([]*LocationResponse, 0, len(locations))
	for _, l := range locations {
		out = append(out, ToLocationResponse(l))
	}
	return out
}
