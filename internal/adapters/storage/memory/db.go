// Package memory implementa los repositorios sin base de datos, para dev y tests.
// Todos los repos comparten un *DB para que las operaciones que tocan varias
// entidades (actividad + racha + XP, plan + XP) sean atómicas bajo un solo lock.
package memory

import (
	"sync"

	"pet-care-tracker/internal/domain/activities"
	"pet-care-tracker/internal/domain/careplans"
	"pet-care-tracker/internal/domain/owners"
	"pet-care-tracker/internal/domain/pets"
)

type DB struct {
	mu     sync.RWMutex
	owners map[string]owners.Owner
	pets   map[string]pets.Pet
	logs   map[string]activities.ActivityLog
	plans  map[string]careplans.CarePlan
}

func New() *DB {
	return &DB{
		owners: make(map[string]owners.Owner),
		pets:   make(map[string]pets.Pet),
		logs:   make(map[string]activities.ActivityLog),
		plans:  make(map[string]careplans.CarePlan),
	}
}

// Repos agrupa los repositorios sobre un mismo DB.
type Repos struct {
	Owners     *OwnersRepo
	Pets       *PetsRepo
	Activities *ActivitiesRepo
	CarePlans  *CarePlansRepo
}

func (db *DB) Repos() Repos {
	return Repos{
		Owners:     &OwnersRepo{db: db},
		Pets:       &PetsRepo{db: db},
		Activities: &ActivitiesRepo{db: db},
		CarePlans:  &CarePlansRepo{db: db},
	}
}

// awardXP asume db.mu tomado en escritura.
func (db *DB) awardXP(ownerID string, xp int) error {
	o, ok := db.owners[ownerID]
	if !ok {
		return owners.ErrNotFound
	}
	o.XPBalance += xp
	db.owners[ownerID] = o
	return nil
}
