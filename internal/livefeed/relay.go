package livefeed

import (
	"context"
	"encoding/json"
	"sync"

	domainLocation "rigor-logistics/internal/domain/location"
	"rigor-logistics/internal/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisRelay publishes events to the local hub and to a Redis channel so
// subscribers connected to other instances see them too.
type RedisRelay struct {
	client  *redis.Client
	channel string
	hub     *Hub
	origin  string
	outbox  chan Message
}

func NewRedisRelay(client *redis.Client, channel string, hub *Hub) *RedisRelay {
	return &RedisRelay{
		client:  client,
		channel: channel,
		hub:     hub,
		origin:  uuid.NewString(),
		outbox:  make(chan Message, 256),
	}
}

// Publish never blocks. Local subscribers always get the event; the Redis
// copy is dropped when the outbox is full.
func (r *RedisRelay) Publish(event domainLocation.Event) {
	msg := FromEvent(event)
	r.hub.PublishMessage(msg)

	msg.Origin = r.origin
	select {
	case r.outbox <- msg:
	default:
		logger.Warn("Relay outbox full, event not forwarded", zap.Int64("trip_id", msg.TripID))
	}
}

// Run forwards queued events to Redis and feeds remote events into the hub
// until ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	logger.Info("Live feed relay subscribed", zap.String("channel", r.channel))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.forward(ctx)
	}()

	incoming := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil
		case m, ok := <-incoming:
			if !ok {
				wg.Wait()
				return nil
			}
			r.handleRemote([]byte(m.Payload))
		}
	}
}

func (r *RedisRelay) forward(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-r.outbox:
			data, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
				logger.Warn("Failed to relay live feed event",
					zap.Int64("trip_id", msg.TripID),
					zap.Error(err),
				)
			}
		}
	}
}

// handleRemote delivers events published by other instances. Our own echoes
// are skipped since they were delivered locally already.
func (r *RedisRelay) handleRemote(payload []byte) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		logger.Warn("Ignoring malformed relay message", zap.Error(err))
		return
	}
	if msg.Origin == r.origin {
		return
	}
	r.hub.PublishMessage(msg)
}
