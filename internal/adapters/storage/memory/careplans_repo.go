package memory

import (
	"context"
	"sort"
	"time"

	"pet-care-tracker/internal/domain/careplans"
	"pet-care-tracker/internal/domain/pets"
)

type CarePlansRepo struct {
	db *DB
}

func (r *CarePlansRepo) FindForDay(_ context.Context, petID string, from, to time.Time) (careplans.CarePlan, bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, p := range r.db.plans {
		if p.PetID == petID && !p.Date.Before(from) && p.Date.Before(to) {
			return p, true, nil
		}
	}
	return careplans.CarePlan{}, false, nil
}

func (r *CarePlansRepo) ListByPet(_ context.Context, petID string, limit int) ([]careplans.CarePlan, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]careplans.CarePlan, 0)
	for _, p := range r.db.plans {
		if p.PetID == petID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Date.After(out[j].Date)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *CarePlansRepo) CreateWithReward(_ context.Context, p careplans.CarePlan, ownerID string, xp int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.pets[p.PetID]; !ok {
		return pets.ErrNotFound
	}
	if _, ok := r.db.owners[ownerID]; !ok {
		return pets.ErrOwnerNotFound
	}
	// mismo criterio que el índice único (pet_id, plan_date) de Postgres
	for _, e := range r.db.plans {
		if e.PetID == p.PetID && e.Date.Equal(p.Date) {
			return careplans.ErrAlreadyExists
		}
	}
	r.db.plans[p.ID] = p
	return r.db.awardXP(ownerID, xp)
}
