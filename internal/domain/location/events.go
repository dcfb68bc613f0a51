package location

import "time"

type EventType string

const (
	EventLocationUpdated EventType = "location_updated"
	EventLocationDeleted EventType = "location_deleted"
	EventTripCompleted   EventType = "trip_completed"
)

// Event is a change on a trip's live position feed.
type Event struct {
	Type       EventType
	TripID     int64
	Location   *Location
	OccurredAt time.Time
}

// Publisher fans events out to live subscribers. Publish must not block
// the caller on slow subscribers.
type Publisher interface {
	Publish(event Event)
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}
