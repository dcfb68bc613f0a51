package trip

import (
	"context"
	"errors"
	"testing"
	"time"

	domainLocation "rigor-logistics/internal/domain/location"
	domainTrip "rigor-logistics/internal/domain/trip"
	domainTruck "rigor-logistics/internal/domain/truck"
	domainTrucker "rigor-logistics/internal/domain/trucker"
	"rigor-logistics/internal/infrastructure/database/memory"
	"rigor-logistics/internal/session"
	"rigor-logistics/internal/testutil"
	appErrors "rigor-logistics/pkg/errors"
	"rigor-logistics/pkg/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	env     *testutil.Env
	svc     *Service
	trucker *domainTrucker.Trucker
	truck   *domainTruck.Truck
	adminID int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	env := testutil.NewEnv()
	admin := env.SeedAdmin(t, "sana")
	trucker := env.SeedTrucker(t, "ali")
	truck := env.SeedTruck(t, "LES-1234", testutil.Int64(trucker.ID))

	svc := NewService(Dependencies{
		Tx:           env.Repos.Tx,
		TripRepo:     env.Repos.Trips,
		TruckerRepo:  env.Repos.Truckers,
		TruckRepo:    env.Repos.Trucks,
		AdminRepo:    env.Repos.Admins,
		LocationRepo: env.Repos.Locations,
		Notifier:     env.Notifier,
		Publisher:    env.Publisher,
		Tracking:     testutil.Tracking,
	})
	return &fixture{env: env, svc: svc, trucker: trucker, truck: truck, adminID: admin.ID}
}

func (f *fixture) assignRequest() *AssignTripRequest {
	cost := money.MustParse("15000")
	return &AssignTripRequest{
		TruckerID:     f.trucker.ID,
		TruckID:       testutil.Int64(f.truck.ID),
		StartLocation: "Karachi",
		EndLocation:   "Lahore",
		Distance:      1200,
		ExpectedCost:  &cost,
		AdminID:       f.adminID,
	}
}

func (f *fixture) truckerStatus(t *testing.T) domainTrucker.Status {
	t.Helper()
	got, err := f.env.Repos.Truckers.GetByID(context.Background(), f.trucker.ID)
	require.NoError(t, err)
	return got.Status
}

func (f *fixture) tripCount(t *testing.T) int64 {
	t.Helper()
	_, total, err := f.env.Repos.Trips.List(context.Background(), nil)
	require.NoError(t, err)
	return total
}

func TestAssignTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	resp, err := f.svc.AssignTrip(ctx, f.assignRequest())
	require.NoError(t, err)

	assert.NotZero(t, resp.ID)
	assert.Equal(t, domainTrip.StatusScheduled, resp.Status)
	assert.Equal(t, f.truck.ID, resp.TruckID)
	assert.Equal(t, "Karachi", resp.StartLocation)
	assert.Equal(t, "15000.00", resp.ExpectedCost.String())
	assert.Equal(t, domainTrucker.StatusActive, f.truckerStatus(t))

	loc, err := f.env.Repos.Locations.GetByTripID(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.LocationID, loc.ID)
	assert.InDelta(t, 24.8607, loc.Latitude, 1e-9)
	assert.InDelta(t, 67.0011, loc.Longitude, 1e-9)

	msgs := f.env.Notifier.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, []string{f.trucker.Email}, msgs[0].To)
	assert.Contains(t, msgs[0].HTML, "Lahore")
}

func TestAssignTripFutureStartKeepsPlaceholderFresh(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	assignedAt := time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return assignedAt }

	req := f.assignRequest()
	tomorrow := assignedAt.Add(24 * time.Hour)
	req.StartTime = &tomorrow

	resp, err := f.svc.AssignTrip(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, tomorrow, resp.StartTime)

	loc, err := f.env.Repos.Locations.GetByTripID(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, assignedAt, loc.Timestamp)
}

func TestAssignTripRequiresAvailableTrucker(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.AssignTrip(ctx, f.assignRequest())
	require.NoError(t, err)

	_, err = f.svc.AssignTrip(ctx, f.assignRequest())
	assert.ErrorIs(t, err, domainTrucker.ErrTruckerUnavailable)
	assert.Equal(t, int64(1), f.tripCount(t))
}

func TestAssignTripWithoutTruck(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	idle := f.env.SeedTrucker(t, "bilal")

	req := f.assignRequest()
	req.TruckerID = idle.ID
	req.TruckID = nil

	_, err := f.svc.AssignTrip(ctx, req)
	assert.ErrorIs(t, err, domainTruck.ErrNoTruckAssigned)
	assert.Zero(t, f.tripCount(t))

	got, err := f.env.Repos.Truckers.GetByID(ctx, idle.ID)
	require.NoError(t, err)
	assert.Equal(t, domainTrucker.StatusInactive, got.Status)
	assert.Empty(t, f.env.Notifier.Messages())
}

func TestAssignTripTruckMismatch(t *testing.T) {
	f := newFixture(t)
	other := f.env.SeedTruck(t, "KHI-9876", nil)

	req := f.assignRequest()
	req.TruckID = testutil.Int64(other.ID)

	_, err := f.svc.AssignTrip(context.Background(), req)
	assert.ErrorIs(t, err, domainTrip.ErrTruckMismatch)
	assert.Zero(t, f.tripCount(t))
}

func TestAssignTripRollsBackWhenLocationFails(t *testing.T) {
	f := newFixture(t)
	f.env.Store.InjectFault(memory.OpLocationCreate, errors.New("insert failed"))

	_, err := f.svc.AssignTrip(context.Background(), f.assignRequest())
	require.Error(t, err)

	assert.Zero(t, f.tripCount(t))
	assert.Equal(t, domainTrucker.StatusInactive, f.truckerStatus(t))
	assert.Empty(t, f.env.Notifier.Messages())
}

func TestAssignTripRollsBackWhenStatusUpdateFails(t *testing.T) {
	f := newFixture(t)
	f.env.Store.InjectFault(memory.OpTruckerUpdateStatus, errors.New("update failed"))

	_, err := f.svc.AssignTrip(context.Background(), f.assignRequest())
	require.Error(t, err)
	assert.Zero(t, f.tripCount(t))
}

func TestAssignTripSurvivesNotificationFailure(t *testing.T) {
	f := newFixture(t)
	f.env.Notifier.Err = errors.New("smtp down")

	resp, err := f.svc.AssignTrip(context.Background(), f.assignRequest())
	require.NoError(t, err)
	assert.Equal(t, domainTrip.StatusScheduled, resp.Status)
	assert.Equal(t, domainTrucker.StatusActive, f.truckerStatus(t))
}

func TestAssignTripValidation(t *testing.T) {
	f := newFixture(t)

	req := f.assignRequest()
	req.StartLocation = ""
	_, err := f.svc.AssignTrip(context.Background(), req)
	assert.Equal(t, "VALIDATION_ERROR", appErrors.Code(err))

	req = f.assignRequest()
	negative := money.MustParse("-1")
	req.ExpectedCost = &negative
	_, err = f.svc.AssignTrip(context.Background(), req)
	assert.Equal(t, "VALIDATION_ERROR", appErrors.Code(err))
}

func TestCompleteTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	assigned, err := f.svc.AssignTrip(ctx, f.assignRequest())
	require.NoError(t, err)

	done, err := f.svc.CompleteTrip(ctx, assigned.ID)
	require.NoError(t, err)

	assert.Equal(t, domainTrip.StatusCompleted, done.Status)
	assert.NotNil(t, done.EndTime)
	assert.Equal(t, domainTrucker.StatusInactive, f.truckerStatus(t))

	_, err = f.env.Repos.Locations.GetByTripID(ctx, assigned.ID)
	assert.ErrorIs(t, err, domainLocation.ErrLocationNotFound)

	events := f.env.Publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, domainLocation.EventTripCompleted, events[0].Type)
	assert.Equal(t, assigned.ID, events[0].TripID)

	msgs := f.env.Notifier.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, []string{"sana@dispatch.pk"}, msgs[1].To)
}

func TestCompleteTripTwice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	assigned, err := f.svc.AssignTrip(ctx, f.assignRequest())
	require.NoError(t, err)
	first, err := f.svc.CompleteTrip(ctx, assigned.ID)
	require.NoError(t, err)

	_, err = f.svc.CompleteTrip(ctx, assigned.ID)
	assert.ErrorIs(t, err, domainTrip.ErrTripAlreadyCompleted)
	assert.Equal(t, "TRIP_ALREADY_COMPLETED", appErrors.Code(err))

	again, err := f.svc.GetTrip(ctx, assigned.ID)
	require.NoError(t, err)
	assert.Equal(t, first.EndTime, again.EndTime)
	assert.Len(t, f.env.Publisher.Events(), 1)
}

func TestCompleteTripRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	assigned, err := f.svc.AssignTrip(ctx, f.assignRequest())
	require.NoError(t, err)

	f.env.Store.InjectFault(memory.OpLocationDeleteByTrip, errors.New("delete failed"))
	_, err = f.svc.CompleteTrip(ctx, assigned.ID)
	require.Error(t, err)

	got, err := f.svc.GetTrip(ctx, assigned.ID)
	require.NoError(t, err)
	assert.Equal(t, domainTrip.StatusScheduled, got.Status)
	assert.Nil(t, got.EndTime)
	assert.Equal(t, domainTrucker.StatusActive, f.truckerStatus(t))
}

func TestCompleteTripSurvivesNotificationFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	assigned, err := f.svc.AssignTrip(ctx, f.assignRequest())
	require.NoError(t, err)

	f.env.Notifier.Err = errors.New("smtp down")
	done, err := f.svc.CompleteTrip(ctx, assigned.ID)
	require.NoError(t, err)
	assert.Equal(t, domainTrip.StatusCompleted, done.Status)
	assert.Equal(t, domainTrucker.StatusInactive, f.truckerStatus(t))
}

func TestCompleteTripOwnership(t *testing.T) {
	f := newFixture(t)

	assigned, err := f.svc.AssignTrip(context.Background(), f.assignRequest())
	require.NoError(t, err)

	stranger := session.NewContext(context.Background(), session.Session{UserID: f.trucker.ID + 100, Role: session.RoleTrucker})
	_, err = f.svc.CompleteTrip(stranger, assigned.ID)
	assert.ErrorIs(t, err, domainTrip.ErrNotTripOwner)

	owner := session.NewContext(context.Background(), session.Session{UserID: f.trucker.ID, Role: session.RoleTrucker})
	_, err = f.svc.CompleteTrip(owner, assigned.ID)
	assert.NoError(t, err)
}

func TestCompleteTripNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CompleteTrip(context.Background(), 404)
	assert.ErrorIs(t, err, domainTrip.ErrTripNotFound)
}

func TestUpdateTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	assigned, err := f.svc.AssignTrip(ctx, f.assignRequest())
	require.NoError(t, err)

	end := "Islamabad"
	distance := 1400.0
	updated, err := f.svc.UpdateTrip(ctx, assigned.ID, &UpdateTripRequest{EndLocation: &end, Distance: &distance})
	require.NoError(t, err)
	assert.Equal(t, "Islamabad", updated.EndLocation)
	assert.Equal(t, 1400.0, updated.Distance)
	assert.Equal(t, domainTrip.StatusScheduled, updated.Status)

	scheduled := domainTrip.StatusScheduled
	_, err = f.svc.UpdateTrip(ctx, assigned.ID, &UpdateTripRequest{Status: &scheduled})
	assert.ErrorIs(t, err, domainTrip.ErrInvalidStatusTransition)

	completed := domainTrip.StatusCompleted
	done, err := f.svc.UpdateTrip(ctx, assigned.ID, &UpdateTripRequest{Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, domainTrip.StatusCompleted, done.Status)
	assert.Equal(t, domainTrucker.StatusInactive, f.truckerStatus(t))

	_, err = f.svc.UpdateTrip(ctx, assigned.ID, &UpdateTripRequest{EndLocation: &end})
	assert.ErrorIs(t, err, domainTrip.ErrTripAlreadyCompleted)

	bogus := domainTrip.Status("Cancelled")
	_, err = f.svc.UpdateTrip(ctx, assigned.ID, &UpdateTripRequest{Status: &bogus})
	assert.ErrorIs(t, err, domainTrip.ErrInvalidStatus)
}

func TestUpdateTripCompletionRollsBackFieldEdits(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	assigned, err := f.svc.AssignTrip(ctx, f.assignRequest())
	require.NoError(t, err)

	f.env.Store.InjectFault(memory.OpLocationDeleteByTrip, errors.New("delete failed"))
	end := "Islamabad"
	completed := domainTrip.StatusCompleted
	_, err = f.svc.UpdateTrip(ctx, assigned.ID, &UpdateTripRequest{EndLocation: &end, Status: &completed})
	require.Error(t, err)

	got, err := f.svc.GetTrip(ctx, assigned.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lahore", got.EndLocation)
	assert.Equal(t, domainTrip.StatusScheduled, got.Status)
	assert.Equal(t, domainTrucker.StatusActive, f.truckerStatus(t))
	assert.Empty(t, f.env.Publisher.Events())
}

func TestRateTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	assigned, err := f.svc.AssignTrip(ctx, f.assignRequest())
	require.NoError(t, err)

	_, err = f.svc.RateTrip(ctx, assigned.ID, &RateTripRequest{Rating: 4})
	assert.ErrorIs(t, err, domainTrip.ErrTripNotCompleted)

	_, err = f.svc.CompleteTrip(ctx, assigned.ID)
	require.NoError(t, err)

	_, err = f.svc.RateTrip(ctx, assigned.ID, &RateTripRequest{Rating: 6})
	assert.Equal(t, "VALIDATION_ERROR", appErrors.Code(err))

	rated, err := f.svc.RateTrip(ctx, assigned.ID, &RateTripRequest{Rating: 4})
	require.NoError(t, err)
	require.NotNil(t, rated.TripRating)
	assert.Equal(t, 4, *rated.TripRating)

	trucker, err := f.env.Repos.Truckers.GetByID(ctx, f.trucker.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, trucker.Rating)
}

func TestListTrips(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	other := f.env.SeedTrucker(t, "bilal")
	f.env.SeedTruck(t, "ISB-5555", testutil.Int64(other.ID))

	_, err := f.svc.AssignTrip(ctx, f.assignRequest())
	require.NoError(t, err)
	req := f.assignRequest()
	req.TruckerID = other.ID
	req.TruckID = nil
	_, err = f.svc.AssignTrip(ctx, req)
	require.NoError(t, err)

	all, err := f.svc.ListTrips(ctx, &TripFilterRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)
	assert.Equal(t, 1, all.TotalPages)

	asTrucker := session.NewContext(ctx, session.Session{UserID: other.ID, Role: session.RoleTrucker})
	mine, err := f.svc.ListTrips(asTrucker, nil)
	require.NoError(t, err)
	require.Len(t, mine.Trips, 1)
	assert.Equal(t, other.ID, mine.Trips[0].TruckerID)
}
