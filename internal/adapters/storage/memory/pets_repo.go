package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"pet-care-tracker/internal/domain/pets"
	"pet-care-tracker/internal/platform/apperr"
)

type PetsRepo struct {
	db *DB
}

func (r *PetsRepo) CreateWithReward(_ context.Context, p pets.Pet, xp int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("pet id required")
	}
	if _, exists := r.db.pets[p.ID]; exists {
		return apperr.ErrConflict
	}
	if _, ok := r.db.owners[p.OwnerID]; !ok {
		return pets.ErrOwnerNotFound
	}
	if p.CurrentStreak < 0 {
		p.CurrentStreak = 0
	}
	r.db.pets[p.ID] = p
	return r.db.awardXP(p.OwnerID, xp)
}

func (r *PetsRepo) GetByID(_ context.Context, id string) (pets.Pet, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	p, ok := r.db.pets[id]
	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}
	return p, nil
}

func (r *PetsRepo) ListByOwner(_ context.Context, ownerID string) ([]pets.Pet, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]pets.Pet, 0)
	for _, p := range r.db.pets {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}

	// Orden estable por created_at asc
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Update conserva la racha guardada: la escribe solo el registro de actividades.
func (r *PetsRepo) Update(_ context.Context, p pets.Pet) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	cur, exists := r.db.pets[p.ID]
	if !exists {
		return pets.ErrNotFound
	}
	p.OwnerID = cur.OwnerID
	p.CurrentStreak = cur.CurrentStreak
	p.CreatedAt = cur.CreatedAt
	r.db.pets[p.ID] = p
	return nil
}

func (r *PetsRepo) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, exists := r.db.pets[id]; !exists {
		return pets.ErrNotFound
	}
	delete(r.db.pets, id)
	for k, a := range r.db.logs {
		if a.PetID == id {
			delete(r.db.logs, k)
		}
	}
	for k, p := range r.db.plans {
		if p.PetID == id {
			delete(r.db.plans, k)
		}
	}
	return nil
}
