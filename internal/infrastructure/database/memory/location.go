package memory

import (
	"cmp"
	"context"
	"slices"

	domainLocation "rigor-logistics/internal/domain/location"
)

type LocationRepository struct {
	s *Store
}

func NewLocationRepository(s *Store) domainLocation.Repository {
	return &LocationRepository{s: s}
}

func (r *LocationRepository) Create(ctx context.Context, l *domainLocation.Location) error {
	return r.s.write(ctx, OpLocationCreate, func(tb *tables) error {
		for _, existing := range tb.locations {
			if existing.TripID == l.TripID {
				return domainLocation.ErrLocationExists
			}
		}
		tb.locationSeq++
		l.ID = tb.locationSeq
		l.CreatedAt = r.s.now()
		l.UpdatedAt = l.CreatedAt
		tb.locations[l.ID] = *l
		return nil
	})
}

func (r *LocationRepository) GetByID(ctx context.Context, locationID int64) (*domainLocation.Location, error) {
	var out *domainLocation.Location
	err := r.s.read(ctx, func(tb *tables) error {
		l, ok := tb.locations[locationID]
		if !ok {
			return domainLocation.ErrLocationNotFound
		}
		out = &l
		return nil
	})
	return out, err
}

func (r *LocationRepository) GetByTripID(ctx context.Context, tripID int64) (*domainLocation.Location, error) {
	locations, err := r.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if len(locations) == 0 {
		return nil, domainLocation.ErrLocationNotFound
	}
	return locations[0], nil
}

func (r *LocationRepository) ListByTrip(ctx context.Context, tripID int64) ([]*domainLocation.Location, error) {
	locations := []*domainLocation.Location{}
	_ = r.s.read(ctx, func(tb *tables) error {
		for _, l := range tb.locations {
			if l.TripID == tripID {
				found := l
				locations = append(locations, &found)
			}
		}
		return nil
	})

	slices.SortFunc(locations, func(a, b *domainLocation.Location) int { return cmp.Compare(a.ID, b.ID) })
	return locations, nil
}

func (r *LocationRepository) Update(ctx context.Context, l *domainLocation.Location) error {
	return r.s.write(ctx, "", func(tb *tables) error {
		existing, ok := tb.locations[l.ID]
		if !ok {
			return domainLocation.ErrLocationNotFound
		}
		existing.Latitude = l.Latitude
		existing.Longitude = l.Longitude
		existing.Timestamp = l.Timestamp
		existing.UpdatedAt = r.s.now()
		tb.locations[l.ID] = existing
		*l = existing
		return nil
	})
}

func (r *LocationRepository) Delete(ctx context.Context, locationID int64) error {
	return r.s.write(ctx, "", func(tb *tables) error {
		if _, ok := tb.locations[locationID]; !ok {
			return domainLocation.ErrLocationNotFound
		}
		delete(tb.locations, locationID)
		return nil
	})
}

func (r *LocationRepository) DeleteByTrip(ctx context.Context, tripID int64) (int64, error) {
	var deleted int64
	err := r.s.write(ctx, OpLocationDeleteByTrip, func(tb *tables) error {
		for id, l := range tb.locations {
			if l.TripID == tripID {
				delete(tb.locations, id)
				deleted++
			}
		}
		return nil
	})
	return deleted, err
}
