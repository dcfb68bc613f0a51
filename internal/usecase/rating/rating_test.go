package rating

import (
	"context"
	"testing"

	domainTrip "rigor-logistics/internal/domain/trip"
	domainTrucker "rigor-logistics/internal/domain/trucker"
	"rigor-logistics/internal/infrastructure/database/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAverage(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
		want    float64
	}{
		{name: "no rated trips", ratings: nil, want: 1},
		{name: "single", ratings: []int{4}, want: 4},
		{name: "rounds to one decimal", ratings: []int{5, 4, 4}, want: 4.3},
		{name: "rounds half up", ratings: []int{1, 2, 2, 2}, want: 1.8},
		{name: "all fives", ratings: []int{5, 5, 5, 5}, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Average(tt.ratings), 1e-9)
		})
	}
}

func TestRecompute(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	trips := memory.NewTripRepository(store)
	truckers := memory.NewTruckerRepository(store)

	driver := &domainTrucker.Trucker{Name: "Ali", Email: "ali@fleet.pk", Status: domainTrucker.StatusInactive}
	require.NoError(t, truckers.Create(ctx, driver))

	agg := NewAggregator(trips, truckers)

	value, err := agg.Recompute(ctx, driver.ID)
	require.NoError(t, err)
	assert.Equal(t, DefaultRating, value)

	five, four := 5, 4
	require.NoError(t, trips.Create(ctx, &domainTrip.Trip{TruckerID: driver.ID, Status: domainTrip.StatusCompleted, TripRating: &five}))
	require.NoError(t, trips.Create(ctx, &domainTrip.Trip{TruckerID: driver.ID, Status: domainTrip.StatusCompleted, TripRating: &four}))
	require.NoError(t, trips.Create(ctx, &domainTrip.Trip{TruckerID: driver.ID, Status: domainTrip.StatusCompleted}))

	value, err = agg.Recompute(ctx, driver.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, value, 1e-9)

	stored, err := truckers.GetByID(ctx, driver.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, stored.Rating, 1e-9)

	_, err = agg.Recompute(ctx, 999)
	assert.ErrorIs(t, err, domainTrucker.ErrTruckerNotFound)
}
