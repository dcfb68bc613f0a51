// Package rating recomputes a trucker's aggregate score from trip ratings.
package rating

import (
	"context"
	"math"

	domainTrip "rigor-logistics/internal/domain/trip"
	domainTrucker "rigor-logistics/internal/domain/trucker"
	"rigor-logistics/internal/logger"

	"go.uber.org/zap"
)

// DefaultRating is assigned when a trucker has no rated completed trips.
const DefaultRating = 1.0

// Average returns the mean of ratings rounded to one decimal, or
// DefaultRating for an empty slice.
func Average(ratings []int) float64 {
	if len(ratings) == 0 {
		return DefaultRating
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	mean := float64(sum) / float64(len(ratings))
	return math.Round(mean*10) / 10
}

type Aggregator struct {
	tripRepo    domainTrip.Repository
	truckerRepo domainTrucker.Repository
}

func NewAggregator(tripRepo domainTrip.Repository, truckerRepo domainTrucker.Repository) *Aggregator {
	return &Aggregator{tripRepo: tripRepo, truckerRepo: truckerRepo}
}

// Recompute locks the trucker row, recalculates the rating from every
// Completed rated trip and stores it. Call it inside a transaction.
func (a *Aggregator) Recompute(ctx context.Context, truckerID int64) (float64, error) {
	if _, err := a.truckerRepo.GetByIDForUpdate(ctx, truckerID); err != nil {
		return 0, err
	}

	ratings, err := a.tripRepo.CompletedRatings(ctx, truckerID)
	if err != nil {
		return 0, err
	}

	value := Average(ratings)
	if err := a.truckerRepo.UpdateRating(ctx, truckerID, value); err != nil {
		return 0, err
	}

	logger.Debug("Trucker rating recomputed",
		zap.Int64("trucker_id", truckerID),
		zap.Int("rated_trips", len(ratings)),
		zap.Float64("rating", value),
	)
	return value, nil
}
