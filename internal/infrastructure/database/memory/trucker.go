package memory

import (
	"cmp"
	"context"
	"slices"

	domainTrucker "rigor-logistics/internal/domain/trucker"
)

type TruckerRepository struct {
	s *Store
}

func NewTruckerRepository(s *Store) domainTrucker.Repository {
	return &TruckerRepository{s: s}
}

func (r *TruckerRepository) Create(ctx context.Context, t *domainTrucker.Trucker) error {
	return r.s.write(ctx, "", func(tb *tables) error {
		for _, existing := range tb.truckers {
			if existing.Email == t.Email {
				return domainTrucker.ErrTruckerAlreadyExists
			}
		}
		tb.truckerSeq++
		t.ID = tb.truckerSeq
		t.CreatedAt = r.s.now()
		t.UpdatedAt = t.CreatedAt
		tb.truckers[t.ID] = *t
		return nil
	})
}

func (r *TruckerRepository) GetByID(ctx context.Context, truckerID int64) (*domainTrucker.Trucker, error) {
	var out *domainTrucker.Trucker
	err := r.s.read(ctx, func(tb *tables) error {
		t, ok := tb.truckers[truckerID]
		if !ok {
			return domainTrucker.ErrTruckerNotFound
		}
		out = &t
		return nil
	})
	return out, err
}

// GetByIDForUpdate needs no lock of its own: transactions are serialized.
func (r *TruckerRepository) GetByIDForUpdate(ctx context.Context, truckerID int64) (*domainTrucker.Trucker, error) {
	return r.GetByID(ctx, truckerID)
}

func (r *TruckerRepository) GetByEmail(ctx context.Context, email string) (*domainTrucker.Trucker, error) {
	var out *domainTrucker.Trucker
	err := r.s.read(ctx, func(tb *tables) error {
		for _, t := range tb.truckers {
			if t.Email == email {
				found := t
				out = &found
				return nil
			}
		}
		return domainTrucker.ErrTruckerNotFound
	})
	return out, err
}

func (r *TruckerRepository) UpdateStatus(ctx context.Context, truckerID int64, status domainTrucker.Status) error {
	return r.s.write(ctx, OpTruckerUpdateStatus, func(tb *tables) error {
		t, ok := tb.truckers[truckerID]
		if !ok {
			return domainTrucker.ErrTruckerNotFound
		}
		t.Status = status
		t.UpdatedAt = r.s.now()
		tb.truckers[truckerID] = t
		return nil
	})
}

func (r *TruckerRepository) UpdateRating(ctx context.Context, truckerID int64, rating float64) error {
	return r.s.write(ctx, OpTruckerUpdateRating, func(tb *tables) error {
		t, ok := tb.truckers[truckerID]
		if !ok {
			return domainTrucker.ErrTruckerNotFound
		}
		t.Rating = rating
		t.UpdatedAt = r.s.now()
		tb.truckers[truckerID] = t
		return nil
	})
}

func (r *TruckerRepository) List(ctx context.Context, filter *domainTrucker.Filter) ([]*domainTrucker.Trucker, int64, error) {
	if filter == nil {
		filter = &domainTrucker.Filter{}
	}

	var matched []*domainTrucker.Trucker
	_ = r.s.read(ctx, func(tb *tables) error {
		for _, t := range tb.truckers {
			if filter.Status != nil && t.Status != *filter.Status {
				continue
			}
			found := t
			matched = append(matched, &found)
		}
		return nil
	})

	slices.SortFunc(matched, func(a, b *domainTrucker.Trucker) int { return cmp.Compare(a.ID, b.ID) })
	start, end := pageBounds(len(matched), filter.Page, filter.PageSize)
	return matched[start:end], int64(len(matched)), nil
}
