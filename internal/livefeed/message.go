// Package livefeed pushes trip location changes to websocket subscribers and
// relays them between API instances over Redis.
package livefeed

import (
	"time"

	domainLocation "rigor-logistics/internal/domain/location"
)

// Message is the wire format sent to subscribers and over the relay.
type Message struct {
	Type       domainLocation.EventType `json:"type"`
	TripID     int64                    `json:"trip_id"`
	Location   *LocationPayload         `json:"location,omitempty"`
	OccurredAt time.Time                `json:"occurred_at"`
	Origin     string                   `json:"origin,omitempty"`
}

type LocationPayload struct {
	ID        int64     `json:"location_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

func FromEvent(e domainLocation.Event) Message {
	msg := Message{
		Type:       e.Type,
		TripID:     e.TripID,
		OccurredAt: e.OccurredAt,
	}
	if msg.OccurredAt.IsZero() {
		msg.OccurredAt = time.Now().UTC()
	}
	if e.Location != nil {
		msg.Location = &LocationPayload{
			ID:        e.Location.ID,
			Latitude:  e.Location.Latitude,
			Longitude: e.Location.Longitude,
			Timestamp: e.Location.Timestamp,
		}
	}
	return msg
}

// closesRoom reports whether subscribers of the trip should be disconnected
// after this message.
func (m Message) closesRoom() bool {
	return m.Type == domainLocation.EventTripCompleted
}
