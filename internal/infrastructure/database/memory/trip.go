package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	domainTrip "rigor-logistics/internal/domain/trip"
)

type TripRepository struct {
	s *Store
}

func NewTripRepository(s *Store) domainTrip.Repository {
	return &TripRepository{s: s}
}

func (r *TripRepository) Create(ctx context.Context, t *domainTrip.Trip) error {
	return r.s.write(ctx, OpTripCreate, func(tb *tables) error {
		tb.tripSeq++
		t.ID = tb.tripSeq
		t.CreatedAt = r.s.now()
		t.UpdatedAt = t.CreatedAt
		tb.trips[t.ID] = *t
		return nil
	})
}

func (r *TripRepository) GetByID(ctx context.Context, tripID int64) (*domainTrip.Trip, error) {
	var out *domainTrip.Trip
	err := r.s.read(ctx, func(tb *tables) error {
		t, ok := tb.trips[tripID]
		if !ok {
			return domainTrip.ErrTripNotFound
		}
		out = &t
		return nil
	})
	return out, err
}

func (r *TripRepository) GetByIDForUpdate(ctx context.Context, tripID int64) (*domainTrip.Trip, error) {
	return r.GetByID(ctx, tripID)
}

func (r *TripRepository) Update(ctx context.Context, t *domainTrip.Trip) error {
	return r.s.write(ctx, "", func(tb *tables) error {
		existing, ok := tb.trips[t.ID]
		if !ok {
			return domainTrip.ErrTripNotFound
		}
		t.CreatedAt = existing.CreatedAt
		t.UpdatedAt = r.s.now()
		tb.trips[t.ID] = *t
		return nil
	})
}

func (r *TripRepository) Complete(ctx context.Context, tripID int64, endTime time.Time) error {
	return r.s.write(ctx, OpTripComplete, func(tb *tables) error {
		t, ok := tb.trips[tripID]
		if !ok {
			return domainTrip.ErrTripNotFound
		}
		if t.Status != domainTrip.StatusScheduled {
			return domainTrip.ErrTripAlreadyCompleted
		}
		t.Status = domainTrip.StatusCompleted
		if t.EndTime == nil {
			end := endTime
			t.EndTime = &end
		}
		t.UpdatedAt = r.s.now()
		tb.trips[tripID] = t
		return nil
	})
}

func (r *TripRepository) SetRating(ctx context.Context, tripID int64, rating int) error {
	return r.s.write(ctx, OpTripSetRating, func(tb *tables) error {
		t, ok := tb.trips[tripID]
		if !ok {
			return domainTrip.ErrTripNotFound
		}
		t.TripRating = &rating
		t.UpdatedAt = r.s.now()
		tb.trips[tripID] = t
		return nil
	})
}

func (r *TripRepository) List(ctx context.Context, filter *domainTrip.Filter) ([]*domainTrip.Trip, int64, error) {
	if filter == nil {
		filter = &domainTrip.Filter{}
	}

	var matched []*domainTrip.Trip
	_ = r.s.read(ctx, func(tb *tables) error {
		for _, t := range tb.trips {
			if filter.TruckerID != nil && t.TruckerID != *filter.TruckerID {
				continue
			}
			if filter.AdminID != nil && t.AdminID != *filter.AdminID {
				continue
			}
			if filter.Status != nil && t.Status != *filter.Status {
				continue
			}
			found := t
			matched = append(matched, &found)
		}
		return nil
	})

	slices.SortFunc(matched, func(a, b *domainTrip.Trip) int {
		if c := b.StartTime.Compare(a.StartTime); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	start, end := pageBounds(len(matched), filter.Page, filter.PageSize)
	return matched[start:end], int64(len(matched)), nil
}

func (r *TripRepository) CompletedRatings(ctx context.Context, truckerID int64) ([]int, error) {
	var trips []domainTrip.Trip
	_ = r.s.read(ctx, func(tb *tables) error {
		for _, t := range tb.trips {
			if t.TruckerID == truckerID && t.Status == domainTrip.StatusCompleted && t.TripRating != nil {
				trips = append(trips, t)
			}
		}
		return nil
	})

	slices.SortFunc(trips, func(a, b domainTrip.Trip) int { return cmp.Compare(a.ID, b.ID) })
	ratings := make([]int, len(trips))
	for i, t := range trips {
		ratings[i] = *t.TripRating
	}
	return ratings, nil
}
