package livefeed

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"

	domainLocation "rigor-logistics/internal/domain/location"
	"rigor-logistics/internal/logger"

	"go.uber.org/zap"
)

var ErrHubStopped = errors.New("live feed hub is stopped")

// Hub groups subscribers into one room per trip. All room state is owned by
// the Run goroutine.
type Hub struct {
	rooms      map[int64]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan Message
	done       chan struct{}
	stopOnce   sync.Once

	clients   atomic.Int64
	delivered atomic.Int64
	dropped   atomic.Int64
}

type HubStats struct {
	Clients   int64 `json:"clients"`
	Delivered int64 `json:"delivered"`
	Dropped   int64 `json:"dropped"`
}

func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &Hub{
		rooms:      make(map[int64]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Message, bufferSize),
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			room, ok := h.rooms[c.tripID]
			if !ok {
				room = make(map[*Client]struct{})
				h.rooms[c.tripID] = room
			}
			room[c] = struct{}{}
			h.clients.Add(1)
			logger.Debug("Live feed subscriber joined", zap.Int64("trip_id", c.tripID))

		case c := <-h.unregister:
			h.remove(c)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// Publish queues an event for delivery and never blocks. Events are dropped
// when the queue is full.
func (h *Hub) Publish(event domainLocation.Event) {
	h.PublishMessage(FromEvent(event))
}

func (h *Hub) PublishMessage(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
		h.dropped.Add(1)
		logger.Warn("Live feed queue full, event dropped",
			zap.Int64("trip_id", msg.TripID),
			zap.String("type", string(msg.Type)),
		)
	}
}

// Register adds c to its trip's room.
func (h *Hub) Register(ctx context.Context, c *Client) error {
	select {
	case h.register <- c:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) Stats() HubStats {
	return HubStats{
		Clients:   h.clients.Load(),
		Delivered: h.delivered.Load(),
		Dropped:   h.dropped.Load(),
	}
}

func (h *Hub) deliver(msg Message) {
	room, ok := h.rooms[msg.TripID]
	if !ok {
		return
	}

	msg.Origin = ""
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("Failed to encode live feed message", zap.Error(err))
		return
	}

	for c := range room {
		select {
		case c.send <- data:
			h.delivered.Add(1)
		default:
			logger.Warn("Live feed subscriber too slow, disconnecting", zap.Int64("trip_id", msg.TripID))
			h.remove(c)
		}
	}

	if msg.closesRoom() {
		for c := range h.rooms[msg.TripID] {
			h.remove(c)
		}
	}
}

// remove closes the client's send channel. Only the Run goroutine calls it.
func (h *Hub) remove(c *Client) {
	room, ok := h.rooms[c.tripID]
	if !ok {
		return
	}
	if _, ok := room[c]; !ok {
		return
	}
	delete(room, c)
	close(c.send)
	h.clients.Add(-1)
	if len(room) == 0 {
		delete(h.rooms, c.tripID)
	}
}

func (h *Hub) shutdown() {
	h.stopOnce.Do(func() {
		close(h.done)
		for _, room := range h.rooms {
			for c := range room {
				h.remove(c)
			}
		}
	})
}
