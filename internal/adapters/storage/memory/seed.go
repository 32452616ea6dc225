package memory

import (
	"fmt"
	"time"

	"pet-care-tracker/internal/domain/activities"
	"pet-care-tracker/internal/domain/owners"
	"pet-care-tracker/internal/domain/pets"
)

const (
	DemoOwnerID = "demo"
	DemoPetID   = "demo-pet-id"
)

// SeedDemo carga el owner y la mascota de demo con caminatas de los 3 días previos.
// Es idempotente: si el owner demo ya existe no hace nada.
func (db *DB) SeedDemo(now time.Time, loc *time.Location) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.owners[DemoOwnerID]; ok {
		return
	}
	if loc == nil {
		loc = time.Local
	}

	db.owners[DemoOwnerID] = owners.Owner{
		ID:        DemoOwnerID,
		Email:     "demo@example.com",
		Name:      "Demo Owner",
		XPBalance: 150,
		CreatedAt: now,
		UpdatedAt: now,
	}

	weight := 65.5
	age := 3
	db.pets[DemoPetID] = pets.Pet{
		ID:            DemoPetID,
		OwnerID:       DemoOwnerID,
		Name:          "Buddy",
		Breed:         "Golden Retriever",
		WeightLbs:     &weight,
		AgeYears:      &age,
		CurrentStreak: 5,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	today := activities.DayStart(now, loc)
	for i := 1; i <= 3; i++ {
		d := today.AddDate(0, 0, -i)
		at := time.Date(d.Year(), d.Month(), d.Day(), 8, 0, 0, 0, loc)
		id := fmt.Sprintf("demo-walk-%d", i)
		db.logs[id] = activities.ActivityLog{
			ID:        id,
			PetID:     DemoPetID,
			Kind:      activities.KindWalk,
			Value:     float64(30 + i*5),
			Notes:     fmt.Sprintf("Morning walk in the park %d days ago", i),
			LoggedAt:  at,
			CreatedAt: at,
		}
	}
}
