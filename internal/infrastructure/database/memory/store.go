// Package memory keeps every aggregate in process memory. It backs the
// DB_DRIVER=memory mode and the use case tests.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	domainAdmin "rigor-logistics/internal/domain/admin"
	domainLocation "rigor-logistics/internal/domain/location"
	domainReimbursement "rigor-logistics/internal/domain/reimbursement"
	domainTrip "rigor-logistics/internal/domain/trip"
	domainTruck "rigor-logistics/internal/domain/truck"
	domainTrucker "rigor-logistics/internal/domain/trucker"
)

// Operation names accepted by InjectFault.
const (
	OpTruckerUpdateStatus  = "truckers.update_status"
	OpTruckerUpdateRating  = "truckers.update_rating"
	OpTripCreate           = "trips.create"
	OpTripComplete         = "trips.complete"
	OpTripSetRating        = "trips.set_rating"
	OpLocationCreate       = "locations.create"
	OpLocationDeleteByTrip = "locations.delete_by_trip"
	OpReimbursementUpdate  = "reimbursements.update"
)

type tables struct {
	admins         map[int64]domainAdmin.Admin
	truckers       map[int64]domainTrucker.Trucker
	trucks         map[int64]domainTruck.Truck
	trips          map[int64]domainTrip.Trip
	locations      map[int64]domainLocation.Location
	reimbursements map[int64]domainReimbursement.Reimbursement

	adminSeq         int64
	truckerSeq       int64
	truckSeq         int64
	tripSeq          int64
	locationSeq      int64
	reimbursementSeq int64
}

func (t *tables) clone() tables {
	c := *t
	c.admins = maps.Clone(t.admins)
	c.truckers = maps.Clone(t.truckers)
	c.trucks = maps.Clone(t.trucks)
	c.trips = maps.Clone(t.trips)
	c.locations = maps.Clone(t.locations)
	c.reimbursements = maps.Clone(t.reimbursements)
	return c
}

// Store holds values, never pointers handed to callers, so a snapshot is a
// shallow map copy.
type Store struct {
	mu     sync.RWMutex
	txMu   sync.Mutex
	data   tables
	faults map[string]error
	now    func() time.Time
}

func NewStore() *Store {
	return &Store{
		data: tables{
			admins:         make(map[int64]domainAdmin.Admin),
			truckers:       make(map[int64]domainTrucker.Trucker),
			trucks:         make(map[int64]domainTruck.Truck),
			trips:          make(map[int64]domainTrip.Trip),
			locations:      make(map[int64]domainLocation.Location),
			reimbursements: make(map[int64]domainReimbursement.Reimbursement),
		},
		faults: make(map[string]error),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// InjectFault makes the named operation fail with err until cleared with a
// nil err.
func (s *Store) InjectFault(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	return ctx.Value(txKey{}) != nil
}

// WithinTransaction serializes transactions and restores the pre-transaction
// snapshot when fn fails.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) Health() error {
	return nil
}

func (s *Store) Close() error {
	return nil
}

// read runs fn under the read lock. Reads outside a transaction wait for any
// running transaction so they never see writes that may still roll back.
func (s *Store) read(ctx context.Context, fn func(t *tables) error) error {
	if !inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&s.data)
}

// write runs fn under the write lock. Writes outside a transaction also wait
// for any running transaction so a rollback cannot discard them.
func (s *Store) write(ctx context.Context, op string, fn func(t *tables) error) error {
	if !inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.faults[op]; err != nil && op != "" {
		return err
	}
	return fn(&s.data)
}

func pageBounds(total, page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return start, end
}
