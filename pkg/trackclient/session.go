package trackclient

import (
	"context"
	"errors"
	"sync"
	"time"

	"rigor-logistics/pkg/geo"

	"go.uber.org/zap"
)

var (
	// ErrPermissionDenied is returned by a PositionSource when the device
	// refuses location access.
	ErrPermissionDenied = errors.New("trackclient: location permission denied")
	// ErrTripEnded means the trip's location row is gone, which happens when
	// the trip is completed.
	ErrTripEnded = errors.New("trackclient: trip is no longer tracked")
)

type Position struct {
	Latitude  float64
	Longitude float64
	Timestamp time.Time
}

// PositionSource streams device fixes until ctx is cancelled.
type PositionSource interface {
	Watch(ctx context.Context) (<-chan Position, error)
}

type UpdateKind string

const (
	UpdateLoaded UpdateKind = "loaded"
	UpdatePushed UpdateKind = "pushed"
	UpdatePolled UpdateKind = "polled"
)

type Update struct {
	Kind      UpdateKind
	Locations []Location
}

type SessionOption func(*Session)

func WithLogger(log *zap.Logger) SessionOption {
	return func(s *Session) { s.log = log }
}

// WithThrottle sets how often and after how much movement a fix is pushed.
func WithThrottle(interval time.Duration, meters float64) SessionOption {
	return func(s *Session) {
		s.pushInterval = interval
		s.pushDistance = meters
	}
}

func WithPollInterval(d time.Duration) SessionOption {
	return func(s *Session) { s.pollInterval = d }
}

// Session tracks one trip from the cab.
type Session struct {
	client *Client
	tripID int64
	source PositionSource
	log    *zap.Logger

	pushInterval time.Duration
	pushDistance float64
	pollInterval time.Duration

	updates chan Update

	mu       sync.RWMutex
	current  []Location
	lastPush *Position
}

func NewSession(client *Client, tripID int64, source PositionSource, opts ...SessionOption) *Session {
	s := &Session{
		client:       client,
		tripID:       tripID,
		source:       source,
		log:          zap.NewNop(),
		pushInterval: 5 * time.Second,
		pushDistance: 10,
		pollInterval: 15 * time.Second,
		updates:      make(chan Update, 16),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(zap.Int64("trip_id", tripID))
	return s
}

// Updates is closed when Run returns.
func (s *Session) Updates() <-chan Update {
	return s.updates
}

func (s *Session) Current() []Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Location(nil), s.current...)
}

// Run loads the trip's location, then pushes throttled fixes and polls the
// server until ctx is cancelled or the trip ends. The first load's error is
// returned. Later failures are only logged. Denied location permission
// disables pushing but polling continues.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.updates)

	locations, err := s.client.ListLocations(ctx, s.tripID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrTripEnded
		}
		return err
	}
	if len(locations) == 0 {
		return ErrTripEnded
	}
	s.setCurrent(locations)
	s.emit(UpdateLoaded)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var positions <-chan Position
	if s.source != nil {
		positions, err = s.source.Watch(ctx)
		switch {
		case errors.Is(err, ErrPermissionDenied):
			s.log.Warn("Location permission denied, tracking disabled")
		case err != nil:
			s.log.Warn("Position source unavailable, tracking disabled", zap.Error(err))
		}
	}

	poll := time.NewTicker(s.pollInterval)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case pos, ok := <-positions:
			if !ok {
				positions = nil
				continue
			}
			if !s.shouldPush(pos) {
				continue
			}
			if err := s.push(ctx, pos); err != nil {
				if errors.Is(err, ErrNotFound) {
					return ErrTripEnded
				}
				if ctx.Err() != nil {
					return nil
				}
				s.log.Warn("Location push failed", zap.Error(err))
			}

		case <-poll.C:
			locations, err := s.client.ListLocations(ctx, s.tripID)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					return ErrTripEnded
				}
				if ctx.Err() != nil {
					return nil
				}
				s.log.Debug("Location poll failed", zap.Error(err))
				continue
			}
			if len(locations) == 0 {
				return ErrTripEnded
			}
			s.setCurrent(locations)
			s.emit(UpdatePolled)
		}
	}
}

// shouldPush lets a fix through every pushInterval or after moving
// pushDistance meters, whichever comes first.
func (s *Session) shouldPush(pos Position) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lastPush == nil {
		return true
	}
	if pos.Timestamp.Sub(s.lastPush.Timestamp) >= s.pushInterval {
		return true
	}
	moved := geo.Distance(s.lastPush.Latitude, s.lastPush.Longitude, pos.Latitude, pos.Longitude)
	return moved >= s.pushDistance
}

func (s *Session) push(ctx context.Context, pos Position) error {
	s.mu.RLock()
	if len(s.current) == 0 {
		s.mu.RUnlock()
		return ErrNotFound
	}
	locationID := s.current[0].ID
	s.mu.RUnlock()

	updated, err := s.client.PutLocation(ctx, locationID, pos)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.current = []Location{*updated}
	s.lastPush = &pos
	s.mu.Unlock()

	s.emit(UpdatePushed)
	return nil
}

func (s *Session) setCurrent(locations []Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = locations
}

// emit drops the update when the consumer is behind. Current always has the
// latest state.
func (s *Session) emit(kind UpdateKind) {
	select {
	case s.updates <- Update{Kind: kind, Locations: s.Current()}:
	default:
		s.log.Debug("Update channel full, skipping", zap.String("kind", string(kind)))
	}
}
