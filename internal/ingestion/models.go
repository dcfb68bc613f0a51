package ingestion

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// LocationMessage is a GPS fix published by an in-cab device.
type LocationMessage struct {
	TripID    int64     `json:"trip_id"`
	DeviceID  string    `json:"device_id"`
	Timestamp time.Time `json:"timestamp"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Speed     *float64  `json:"speed"`
	Accuracy  *float64  `json:"accuracy"`
}

// ParseLocationMessage decodes payload. A missing trip_id is taken from a
// topic of the form trips/{trip_id}/location.
func ParseLocationMessage(topic string, payload []byte) (*LocationMessage, error) {
	var msg LocationMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, err
	}
	if msg.TripID == 0 {
		msg.TripID = tripIDFromTopic(topic)
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	return &msg, nil
}

func tripIDFromTopic(topic string) int64 {
	parts := strings.Split(topic, "/")
	for i := 0; i+1 < len(parts); i++ {
		if parts[i] != "trips" {
			continue
		}
		id, err := strconv.ParseInt(parts[i+1], 10, 64)
		if err == nil && id > 0 {
			return id
		}
	}
	return 0
}
