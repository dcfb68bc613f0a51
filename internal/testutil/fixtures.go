// Package testutil builds in-memory fixtures shared by use case and handler
// tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"rigor-logistics/internal/config"
	"rigor-logistics/internal/database"
	domainAdmin "rigor-logistics/internal/domain/admin"
	domainLocation "rigor-logistics/internal/domain/location"
	domainTruck "rigor-logistics/internal/domain/truck"
	domainTrucker "rigor-logistics/internal/domain/trucker"
	"rigor-logistics/internal/infrastructure/database/memory"
	"rigor-logistics/internal/notification"

	"github.com/stretchr/testify/require"
)

// Tracking mirrors the default tracking config with the Karachi placeholder.
var Tracking = config.TrackingConfig{
	PlaceholderLatitude:  24.8607,
	PlaceholderLongitude: 67.0011,
	MinSaveDistance:      10,
	MinSaveInterval:      5 * time.Second,
}

type Env struct {
	Store     *memory.Store
	Repos     *database.Repositories
	Notifier  *RecordingNotifier
	Publisher *RecordingPublisher
}

func NewEnv() *Env {
	store := memory.NewStore()
	return &Env{
		Store:     store,
		Repos:     database.NewMemory(store),
		Notifier:  &RecordingNotifier{},
		Publisher: &RecordingPublisher{},
	}
}

func (e *Env) SeedAdmin(t testing.TB, name string) *domainAdmin.Admin {
	t.Helper()
	a := &domainAdmin.Admin{Name: name, Email: fmt.Sprintf("%s@dispatch.pk", name), Phone: "+923001234567"}
	require.NoError(t, e.Repos.Admins.Create(context.Background(), a))
	return a
}

func (e *Env) SeedTrucker(t testing.TB, name string) *domainTrucker.Trucker {
	t.Helper()
	tr := &domainTrucker.Trucker{
		Name:   name,
		Email:  fmt.Sprintf("%s@fleet.pk", name),
		Phone:  "+923211234567",
		Status: domainTrucker.StatusInactive,
	}
	require.NoError(t, e.Repos.Truckers.Create(context.Background(), tr))
	return tr
}

func (e *Env) SeedTruck(t testing.TB, plate string, truckerID *int64) *domainTruck.Truck {
	t.Helper()
	tk := &domainTruck.Truck{PlateNumber: plate, ChassisNumber: "CH-" + plate, Capacity: 20, TruckerID: truckerID}
	require.NoError(t, e.Repos.Trucks.Create(context.Background(), tk))
	return tk
}

// RecordingNotifier keeps every accepted message. Err, when set, is returned
// instead.
type RecordingNotifier struct {
	mu       sync.Mutex
	Err      error
	messages []notification.Message
}

func (n *RecordingNotifier) Notify(_ context.Context, msg notification.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.messages = append(n.messages, msg)
	return nil
}

func (n *RecordingNotifier) Messages() []notification.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification.Message(nil), n.messages...)
}

type RecordingPublisher struct {
	mu     sync.Mutex
	events []domainLocation.Event
}

func (p *RecordingPublisher) Publish(event domainLocation.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *RecordingPublisher) Events() []domainLocation.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domainLocation.Event(nil), p.events...)
}

func Int64(v int64) *int64 { return &v }
