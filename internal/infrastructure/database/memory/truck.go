package memory

import (
	"cmp"
	"context"
	"slices"

	domainTruck "rigor-logistics/internal/domain/truck"
)

type TruckRepository struct {
	s *Store
}

func NewTruckRepository(s *Store) domainTruck.Repository {
	return &TruckRepository{s: s}
}

func (r *TruckRepository) Create(ctx context.Context, t *domainTruck.Truck) error {
	return r.s.write(ctx, "", func(tb *tables) error {
		for _, existing := range tb.trucks {
			if existing.PlateNumber == t.PlateNumber {
				return domainTruck.ErrTruckAlreadyExists
			}
		}
		tb.truckSeq++
		t.ID = tb.truckSeq
		t.CreatedAt = r.s.now()
		t.UpdatedAt = t.CreatedAt
		tb.trucks[t.ID] = *t
		return nil
	})
}

func (r *TruckRepository) GetByID(ctx context.Context, truckID int64) (*domainTruck.Truck, error) {
	var out *domainTruck.Truck
	err := r.s.read(ctx, func(tb *tables) error {
		t, ok := tb.trucks[truckID]
		if !ok {
			return domainTruck.ErrTruckNotFound
		}
		out = &t
		return nil
	})
	return out, err
}

// GetByTruckerID returns the lowest-id truck, matching the postgres ordering.
func (r *TruckRepository) GetByTruckerID(ctx context.Context, truckerID int64) (*domainTruck.Truck, error) {
	trucks, _, err := r.List(ctx, &domainTruck.Filter{TruckerID: &truckerID, PageSize: 1})
	if err != nil {
		return nil, err
	}
	if len(trucks) == 0 {
		return nil, domainTruck.ErrTruckNotFound
	}
	return trucks[0], nil
}

func (r *TruckRepository) List(ctx context.Context, filter *domainTruck.Filter) ([]*domainTruck.Truck, int64, error) {
	if filter == nil {
		filter = &domainTruck.Filter{}
	}

	var matched []*domainTruck.Truck
	_ = r.s.read(ctx, func(tb *tables) error {
		for _, t := range tb.trucks {
			if filter.TruckerID != nil && (t.TruckerID == nil || *t.TruckerID != *filter.TruckerID) {
				continue
			}
			found := t
			matched = append(matched, &found)
		}
		return nil
	})

	slices.SortFunc(matched, func(a, b *domainTruck.Truck) int { return cmp.Compare(a.ID, b.ID) })
	start, end := pageBounds(len(matched), filter.Page, filter.PageSize)
	return matched[start:end], int64(len(matched)), nil
}
