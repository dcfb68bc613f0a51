package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	domainAdmin "rigor-logistics/internal/domain/admin"
	domainTrip "rigor-logistics/internal/domain/trip"
	domainTrucker "rigor-logistics/internal/domain/trucker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingSender struct {
	mu      sync.Mutex
	sent    []Message
	err     error
	release chan struct{}
}

func (s *recordingSender) Send(_ context.Context, msg Message) error {
	if s.release != nil {
		<-s.release
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSender) messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}

func TestDispatcherDeliversAndDrainsOnStop(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, 2, 10)
	d.Start()

	for i := 0; i < 5; i++ {
		require.NoError(t, d.Notify(context.Background(), Message{To: []string{"a@b.c"}, Subject: "hi"}))
	}
	d.Stop()

	assert.Len(t, sender.messages(), 5)
	assert.Equal(t, Stats{Queued: 5, Sent: 5}, d.Stats())
	assert.ErrorIs(t, d.Notify(context.Background(), Message{To: []string{"a@b.c"}}), ErrDispatcherStopped)
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	sender := &recordingSender{release: make(chan struct{})}
	d := NewDispatcher(sender, 1, 1)

	// Not started yet, so the single slot fills and stays full.
	require.NoError(t, d.Notify(context.Background(), Message{To: []string{"a@b.c"}}))
	err := d.Notify(context.Background(), Message{To: []string{"a@b.c"}})
	assert.ErrorIs(t, err, ErrQueueFull)

	d.Start()
	close(sender.release)
	d.Stop()

	stats := d.Stats()
	assert.Equal(t, int64(1), stats.Sent)
	assert.Equal(t, int64(1), stats.Dropped)
}

func TestDispatcherCountsFailures(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	d := NewDispatcher(sender, 1, 4)
	d.Start()

	require.NoError(t, d.Notify(context.Background(), Message{To: []string{"a@b.c"}}))
	d.Stop()

	assert.Equal(t, int64(1), d.Stats().Failed)
}

func TestNotifyRequiresRecipient(t *testing.T) {
	d := NewDispatcher(&recordingSender{}, 1, 1)
	assert.ErrorIs(t, d.Notify(context.Background(), Message{Subject: "x"}), ErrNoRecipients)
	d.Stop()
}

func TestTemplatesEscapeInput(t *testing.T) {
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	trucker := &domainTrucker.Trucker{Name: "<script>", Email: "ali@fleet.pk"}
	trip := &domainTrip.Trip{ID: 7, TruckerID: 1, StartLocation: "Karachi", EndLocation: "Lahore", StartTime: start, Distance: 1200}

	msg := TripAssigned(trucker, trip)
	assert.Equal(t, []string{"ali@fleet.pk"}, msg.To)
	assert.Contains(t, msg.Subject, "Karachi to Lahore")
	assert.Contains(t, msg.HTML, "trip #7")
	assert.NotContains(t, msg.HTML, "<script>")

	done := TripCompleted(&domainAdmin.Admin{Name: "Sara", Email: "sara@fleet.pk"}, nil, trip)
	assert.Equal(t, []string{"sara@fleet.pk"}, done.To)
	assert.Contains(t, done.HTML, "trucker #1")
}
