package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"pet-care-tracker/internal/domain/activities"
	"pet-care-tracker/internal/domain/pets"
	"pet-care-tracker/internal/platform/apperr"
)

type ActivitiesRepo struct {
	db *DB
}

func (r *ActivitiesRepo) List(_ context.Context, f activities.Filter) ([]activities.ActivityLog, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	want := make(map[string]struct{}, len(f.PetIDs))
	for _, id := range f.PetIDs {
		want[id] = struct{}{}
	}

	out := make([]activities.ActivityLog, 0)
	for _, a := range r.db.logs {
		if _, ok := want[a.PetID]; !ok {
			continue
		}
		if !f.Since.IsZero() && a.LoggedAt.Before(f.Since) {
			continue
		}
		out = append(out, a)
	}
	sortNewestFirst(out)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// WithinPetTx toma el lock global en escritura: en memoria no hay locks por fila.
// Las escrituras quedan en staging y se aplican solo si fn no devuelve error.
func (r *ActivitiesRepo) WithinPetTx(ctx context.Context, petID string, fn func(tx activities.Tx) error) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.pets[petID]; !ok {
		return pets.ErrNotFound
	}

	tx := &memTx{db: r.db, streaks: map[string]int{}, xp: map[string]int{}}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.commit()
}

type memTx struct {
	db      *DB
	created []activities.ActivityLog
	streaks map[string]int
	xp      map[string]int
}

// all recorre lo guardado más lo pendiente de esta tx.
func (t *memTx) all(fn func(a activities.ActivityLog)) {
	for _, a := range t.db.logs {
		fn(a)
	}
	for _, a := range t.created {
		fn(a)
	}
}

func (t *memTx) FindByIdempotencyKey(_ context.Context, petID string, kind activities.Kind, key string) (activities.ActivityLog, bool, error) {
	var found *activities.ActivityLog
	t.all(func(a activities.ActivityLog) {
		if found == nil && a.PetID == petID && a.Kind == kind && a.IdempotencyKey != "" && a.IdempotencyKey == key {
			a := a
			found = &a
		}
	})
	if found == nil {
		return activities.ActivityLog{}, false, nil
	}
	return *found, true, nil
}

func (t *memTx) Create(ctx context.Context, a activities.ActivityLog) error {
	if a.ID == "" {
		return errors.New("activity id required")
	}
	if _, exists := t.db.logs[a.ID]; exists {
		return apperr.ErrConflict
	}
	if a.IdempotencyKey != "" {
		if _, dup, _ := t.FindByIdempotencyKey(ctx, a.PetID, a.Kind, a.IdempotencyKey); dup {
			return apperr.ErrConflict
		}
	}
	t.created = append(t.created, a)
	return nil
}

func (t *memTx) CountBetween(_ context.Context, petID string, from, to time.Time) (int, error) {
	n := 0
	t.all(func(a activities.ActivityLog) {
		if a.PetID == petID && !a.LoggedAt.Before(from) && a.LoggedAt.Before(to) {
			n++
		}
	})
	return n, nil
}

func (t *memTx) LastBefore(_ context.Context, petID string, before time.Time) (*time.Time, error) {
	var last *time.Time
	t.all(func(a activities.ActivityLog) {
		if a.PetID != petID || !a.LoggedAt.Before(before) {
			return
		}
		if last == nil || a.LoggedAt.After(*last) {
			at := a.LoggedAt
			last = &at
		}
	})
	return last, nil
}

func (t *memTx) Streak(_ context.Context, petID string) (int, error) {
	if n, ok := t.streaks[petID]; ok {
		return n, nil
	}
	p, ok := t.db.pets[petID]
	if !ok {
		return 0, pets.ErrNotFound
	}
	return p.CurrentStreak, nil
}

func (t *memTx) SetStreak(_ context.Context, petID string, n int) error {
	if n < 0 {
		return errors.New("streak must be >= 0")
	}
	if _, ok := t.db.pets[petID]; !ok {
		return pets.ErrNotFound
	}
	t.streaks[petID] = n
	return nil
}

func (t *memTx) AwardXP(_ context.Context, ownerID string, xp int) error {
	if _, ok := t.db.owners[ownerID]; !ok {
		return pets.ErrOwnerNotFound
	}
	t.xp[ownerID] += xp
	return nil
}

func (t *memTx) commit() error {
	for _, a := range t.created {
		t.db.logs[a.ID] = a
	}
	for id, n := range t.streaks {
		p := t.db.pets[id]
		p.CurrentStreak = n
		t.db.pets[id] = p
	}
	for id, xp := range t.xp {
		if err := t.db.awardXP(id, xp); err != nil {
			return err
		}
	}
	return nil
}

func sortNewestFirst(out []activities.ActivityLog) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].LoggedAt.Equal(out[j].LoggedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].LoggedAt.After(out[j].LoggedAt)
	})
}
