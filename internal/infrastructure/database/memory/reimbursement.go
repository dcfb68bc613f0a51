package memory

import (
	"cmp"
	"context"
	"slices"

	domainReimbursement "rigor-logistics/internal/domain/reimbursement"
)

type ReimbursementRepository struct {
	s *Store
}

func NewReimbursementRepository(s *Store) domainReimbursement.Repository {
	return &ReimbursementRepository{s: s}
}

func (r *ReimbursementRepository) Create(ctx context.Context, re *domainReimbursement.Reimbursement) error {
	return r.s.write(ctx, "", func(tb *tables) error {
		tb.reimbursementSeq++
		re.ID = tb.reimbursementSeq
		re.CreatedAt = r.s.now()
		re.UpdatedAt = re.CreatedAt
		tb.reimbursements[re.ID] = *re
		return nil
	})
}

func (r *ReimbursementRepository) GetByID(ctx context.Context, reimbursementID int64) (*domainReimbursement.Reimbursement, error) {
	var out *domainReimbursement.Reimbursement
	err := r.s.read(ctx, func(tb *tables) error {
		re, ok := tb.reimbursements[reimbursementID]
		if !ok {
			return domainReimbursement.ErrReimbursementNotFound
		}
		out = &re
		return nil
	})
	return out, err
}

func (r *ReimbursementRepository) GetByIDForUpdate(ctx context.Context, reimbursementID int64) (*domainReimbursement.Reimbursement, error) {
	return r.GetByID(ctx, reimbursementID)
}

func (r *ReimbursementRepository) Update(ctx context.Context, re *domainReimbursement.Reimbursement) error {
	return r.s.write(ctx, OpReimbursementUpdate, func(tb *tables) error {
		existing, ok := tb.reimbursements[re.ID]
		if !ok {
			return domainReimbursement.ErrReimbursementNotFound
		}
		re.CreatedAt = existing.CreatedAt
		re.UpdatedAt = r.s.now()
		tb.reimbursements[re.ID] = *re
		return nil
	})
}

func (r *ReimbursementRepository) List(ctx context.Context, filter *domainReimbursement.Filter) ([]*domainReimbursement.Reimbursement, int64, error) {
	if filter == nil {
		filter = &domainReimbursement.Filter{}
	}

	var matched []*domainReimbursement.Reimbursement
	_ = r.s.read(ctx, func(tb *tables) error {
		for _, re := range tb.reimbursements {
			if filter.Status != nil && re.Status != *filter.Status {
				continue
			}
			if filter.TripID != nil && re.TripID != *filter.TripID {
				continue
			}
			if filter.TruckerID != nil {
				trip, ok := tb.trips[re.TripID]
				if !ok || trip.TruckerID != *filter.TruckerID {
					continue
				}
			}
			found := re
			matched = append(matched, &found)
		}
		return nil
	})

	slices.SortFunc(matched, func(a, b *domainReimbursement.Reimbursement) int { return cmp.Compare(b.ID, a.ID) })
	start, end := pageBounds(len(matched), filter.Page, filter.PageSize)
	return matched[start:end], int64(len(matched)), nil
}
