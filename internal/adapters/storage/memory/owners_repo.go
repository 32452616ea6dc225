package memory

import (
	"context"
	"errors"
	"strings"

	"pet-care-tracker/internal/domain/owners"
	"pet-care-tracker/internal/platform/apperr"
)

type OwnersRepo struct {
	db *DB
}

func (r *OwnersRepo) Create(_ context.Context, o owners.Owner) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if strings.TrimSpace(o.ID) == "" {
		return errors.New("owner id required")
	}
	if _, exists := r.db.owners[o.ID]; exists {
		return apperr.ErrConflict
	}
	r.db.owners[o.ID] = o
	return nil
}

func (r *OwnersRepo) GetByID(_ context.Context, id string) (owners.Owner, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	o, ok := r.db.owners[id]
	if !ok {
		return owners.Owner{}, owners.ErrNotFound
	}
	return o, nil
}

// UpdateProfile no toca el XP: lo mueven solo las operaciones que lo otorgan.
func (r *OwnersRepo) UpdateProfile(_ context.Context, o owners.Owner) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	cur, ok := r.db.owners[o.ID]
	if !ok {
		return owners.ErrNotFound
	}
	cur.Email = o.Email
	cur.Name = o.Name
	cur.UpdatedAt = o.UpdatedAt
	r.db.owners[o.ID] = cur
	return nil
}
