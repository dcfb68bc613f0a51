package reimbursement

import (
	"context"
	"errors"
	"testing"

	domainReimbursement "rigor-logistics/internal/domain/reimbursement"
	domainTrip "rigor-logistics/internal/domain/trip"
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
	adminID int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	env := testutil.NewEnv()
	admin := env.SeedAdmin(t, "sana")
	trucker := env.SeedTrucker(t, "ali")

	svc := NewService(env.Repos.Tx, env.Repos.Reimbursements, env.Repos.Trips, env.Repos.Truckers, env.Repos.Admins, env.Notifier)
	return &fixture{env: env, svc: svc, trucker: trucker, adminID: admin.ID}
}

func (f *fixture) seedTrip(t *testing.T, status domainTrip.Status, rating *int) *domainTrip.Trip {
	t.Helper()
	trip := &domainTrip.Trip{
		TruckerID:     f.trucker.ID,
		TruckID:       1,
		AdminID:       f.adminID,
		StartLocation: "Karachi",
		EndLocation:   "Lahore",
		Status:        status,
		Distance:      1200,
		TripRating:    rating,
	}
	require.NoError(t, f.env.Repos.Trips.Create(context.Background(), trip))
	return trip
}

func (f *fixture) file(t *testing.T, tripID int64, amount string) *ReimbursementResponse {
	t.Helper()
	resp, err := f.svc.CreateReimbursement(context.Background(), &CreateReimbursementRequest{
		TripID:  tripID,
		Amount:  money.MustParse(amount),
		Receipt: "https://media.example/receipts/fuel.jpg",
	})
	require.NoError(t, err)
	return resp
}

func intPtr(v int) *int { return &v }

func TestCreateReimbursement(t *testing.T) {
	f := newFixture(t)
	trip := f.seedTrip(t, domainTrip.StatusCompleted, nil)

	resp := f.file(t, trip.ID, "15000.00")
	assert.Equal(t, domainReimbursement.StatusPending, resp.Status)
	assert.Equal(t, "15000.00", resp.Amount.String())
	assert.Nil(t, resp.AdminID)
}

func TestCreateReimbursementRequiresCompletedTrip(t *testing.T) {
	f := newFixture(t)
	trip := f.seedTrip(t, domainTrip.StatusScheduled, nil)

	_, err := f.svc.CreateReimbursement(context.Background(), &CreateReimbursementRequest{
		TripID:  trip.ID,
		Amount:  money.MustParse("100"),
		Receipt: "receipt.jpg",
	})
	assert.ErrorIs(t, err, domainTrip.ErrTripNotCompleted)
}

func TestCreateReimbursementRejectsBadAmount(t *testing.T) {
	f := newFixture(t)
	trip := f.seedTrip(t, domainTrip.StatusCompleted, nil)

	for _, amount := range []string{"0", "-20"} {
		_, err := f.svc.CreateReimbursement(context.Background(), &CreateReimbursementRequest{
			TripID:  trip.ID,
			Amount:  money.MustParse(amount),
			Receipt: "receipt.jpg",
		})
		assert.ErrorIs(t, err, domainReimbursement.ErrInvalidAmount, amount)
	}
}

func TestCreateReimbursementForeignTrip(t *testing.T) {
	f := newFixture(t)
	trip := f.seedTrip(t, domainTrip.StatusCompleted, nil)

	ctx := session.NewContext(context.Background(), session.Session{UserID: f.trucker.ID + 1, Role: session.RoleTrucker})
	_, err := f.svc.CreateReimbursement(ctx, &CreateReimbursementRequest{
		TripID:  trip.ID,
		Amount:  money.MustParse("100"),
		Receipt: "receipt.jpg",
	})
	assert.ErrorIs(t, err, domainTrip.ErrNotTripOwner)
}

func TestModifyReimbursementAppendsComments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	trip := f.seedTrip(t, domainTrip.StatusCompleted, nil)
	filed := f.file(t, trip.ID, "12000")

	first := "A"
	_, err := f.svc.ModifyReimbursement(ctx, filed.ID, &ModifyReimbursementRequest{Comments: &first})
	require.NoError(t, err)

	second := "B"
	amount := money.MustParse("12500.50")
	got, err := f.svc.ModifyReimbursement(ctx, filed.ID, &ModifyReimbursementRequest{Comments: &second, Amount: &amount})
	require.NoError(t, err)

	require.NotNil(t, got.Comments)
	assert.Equal(t, "A\nB", *got.Comments)
	assert.Equal(t, "12500.50", got.Amount.String())
	assert.Equal(t, domainReimbursement.StatusPending, got.Status)
}

func TestApproveReimbursement(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.seedTrip(t, domainTrip.StatusCompleted, intPtr(5))
	f.seedTrip(t, domainTrip.StatusCompleted, intPtr(3))
	f.seedTrip(t, domainTrip.StatusCompleted, nil)
	f.seedTrip(t, domainTrip.StatusScheduled, intPtr(1))
	trip := f.seedTrip(t, domainTrip.StatusCompleted, nil)
	filed := f.file(t, trip.ID, "15000.00")

	resp, err := f.svc.ApproveReimbursement(ctx, filed.ID, &ApproveReimbursementRequest{AdminID: f.adminID, Rating: 4})
	require.NoError(t, err)

	assert.Equal(t, domainReimbursement.StatusApproved, resp.Status)
	require.NotNil(t, resp.AdminID)
	assert.Equal(t, f.adminID, *resp.AdminID)
	assert.NotNil(t, resp.ApprovedAt)
	assert.Equal(t, 4.0, resp.TruckerRating)

	gotTrip, err := f.env.Repos.Trips.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	require.NotNil(t, gotTrip.TripRating)
	assert.Equal(t, 4, *gotTrip.TripRating)

	gotTrucker, err := f.env.Repos.Truckers.GetByID(ctx, f.trucker.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, gotTrucker.Rating)

	msgs := f.env.Notifier.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, []string{f.trucker.Email}, msgs[0].To)
	assert.Contains(t, msgs[0].HTML, "15000.00")
}

func TestApproveReimbursementRoundsRating(t *testing.T) {
	f := newFixture(t)
	f.seedTrip(t, domainTrip.StatusCompleted, intPtr(5))
	f.seedTrip(t, domainTrip.StatusCompleted, intPtr(4))
	trip := f.seedTrip(t, domainTrip.StatusCompleted, nil)
	filed := f.file(t, trip.ID, "900")

	resp, err := f.svc.ApproveReimbursement(context.Background(), filed.ID, &ApproveReimbursementRequest{AdminID: f.adminID, Rating: 4})
	require.NoError(t, err)
	assert.Equal(t, 4.3, resp.TruckerRating)
}

func TestApproveReimbursementTwice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	trip := f.seedTrip(t, domainTrip.StatusCompleted, nil)
	filed := f.file(t, trip.ID, "500")

	_, err := f.svc.ApproveReimbursement(ctx, filed.ID, &ApproveReimbursementRequest{AdminID: f.adminID, Rating: 5})
	require.NoError(t, err)

	_, err = f.svc.ApproveReimbursement(ctx, filed.ID, &ApproveReimbursementRequest{AdminID: f.adminID, Rating: 1})
	assert.ErrorIs(t, err, domainReimbursement.ErrAlreadyApproved)
	assert.Equal(t, "ALREADY_APPROVED", appErrors.Code(err))

	gotTrip, err := f.env.Repos.Trips.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, *gotTrip.TripRating)

	note := "late"
	_, err = f.svc.ModifyReimbursement(ctx, filed.ID, &ModifyReimbursementRequest{Comments: &note})
	assert.ErrorIs(t, err, domainReimbursement.ErrNotPending)
}

func TestApproveReimbursementRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	trip := f.seedTrip(t, domainTrip.StatusCompleted, nil)
	filed := f.file(t, trip.ID, "500")

	f.env.Store.InjectFault(memory.OpTruckerUpdateRating, errors.New("write failed"))
	_, err := f.svc.ApproveReimbursement(ctx, filed.ID, &ApproveReimbursementRequest{AdminID: f.adminID, Rating: 2})
	require.Error(t, err)

	got, err := f.svc.GetReimbursement(ctx, filed.ID)
	require.NoError(t, err)
	assert.Equal(t, domainReimbursement.StatusPending, got.Status)

	gotTrip, err := f.env.Repos.Trips.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Nil(t, gotTrip.TripRating)
	assert.Empty(t, f.env.Notifier.Messages())
}

func TestApproveReimbursementAdminFromSession(t *testing.T) {
	f := newFixture(t)
	trip := f.seedTrip(t, domainTrip.StatusCompleted, nil)
	filed := f.file(t, trip.ID, "500")

	_, err := f.svc.ApproveReimbursement(context.Background(), filed.ID, &ApproveReimbursementRequest{Rating: 3})
	assert.Equal(t, "VALIDATION_ERROR", appErrors.Code(err))

	ctx := session.NewContext(context.Background(), session.Session{UserID: f.adminID, Role: session.RoleAdmin})
	resp, err := f.svc.ApproveReimbursement(ctx, filed.ID, &ApproveReimbursementRequest{Rating: 3})
	require.NoError(t, err)
	assert.Equal(t, f.adminID, *resp.AdminID)
}

func TestApproveReimbursementSurvivesNotificationFailure(t *testing.T) {
	f := newFixture(t)
	trip := f.seedTrip(t, domainTrip.StatusCompleted, nil)
	filed := f.file(t, trip.ID, "500")
	f.env.Notifier.Err = errors.New("smtp down")

	resp, err := f.svc.ApproveReimbursement(context.Background(), filed.ID, &ApproveReimbursementRequest{AdminID: f.adminID, Rating: 3})
	require.NoError(t, err)
	assert.Equal(t, domainReimbursement.StatusApproved, resp.Status)
}

func TestListReimbursements(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	trip := f.seedTrip(t, domainTrip.StatusCompleted, nil)
	f.file(t, trip.ID, "100")
	second := f.file(t, trip.ID, "200")

	_, err := f.svc.ApproveReimbursement(ctx, second.ID, &ApproveReimbursementRequest{AdminID: f.adminID, Rating: 5})
	require.NoError(t, err)

	pending := domainReimbursement.StatusPending
	list, err := f.svc.ListReimbursements(ctx, &ReimbursementFilterRequest{Status: &pending})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)

	stranger := session.NewContext(ctx, session.Session{UserID: f.trucker.ID + 1, Role: session.RoleTrucker})
	list, err = f.svc.ListReimbursements(stranger, nil)
	require.NoError(t, err)
	assert.Zero(t, list.Total)

	_, err = f.svc.GetReimbursement(stranger, second.ID)
	assert.ErrorIs(t, err, domainTrip.ErrNotTripOwner)
}
