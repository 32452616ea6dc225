package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-care-tracker/internal/domain/activities"
	"pet-care-tracker/internal/domain/careplans"
	"pet-care-tracker/internal/domain/owners"
	"pet-care-tracker/internal/domain/pets"
	"pet-care-tracker/internal/platform/apperr"
)

func seedOwnerAndPet(t *testing.T, r Repos) pets.Pet {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, r.Owners.Create(ctx, owners.Owner{ID: "o1"}))
	p := pets.Pet{ID: "p1", OwnerID: "o1", Name: "Buddy", CreatedAt: time.Now()}
	require.NoError(t, r.Pets.CreateWithReward(ctx, p, owners.XPPetCreated))
	return p
}

func TestPets_CreateWithRewardAndCascade(t *testing.T) {
	db := New()
	r := db.Repos()
	ctx := context.Background()

	err := r.Pets.CreateWithReward(ctx, pets.Pet{ID: "x", OwnerID: "ghost", Name: "X"}, 50)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	p := seedOwnerAndPet(t, r)
	o, err := r.Owners.GetByID(ctx, "o1")
	require.NoError(t, err)
	require.Equal(t, 50, o.XPBalance)

	require.NoError(t, r.Activities.WithinPetTx(ctx, p.ID, func(tx activities.Tx) error {
		return tx.Create(ctx, activities.ActivityLog{ID: "a1", PetID: p.ID, Kind: activities.KindWalk, LoggedAt: time.Now()})
	}))
	require.NoError(t, r.CarePlans.CreateWithReward(ctx, careplans.CarePlan{ID: "c1", PetID: p.ID, Date: time.Now()}, "o1", 25))

	require.NoError(t, r.Pets.Delete(ctx, p.ID))
	logs, err := r.Activities.List(ctx, activities.Filter{PetIDs: []string{p.ID}})
	require.NoError(t, err)
	require.Empty(t, logs)
	plans, err := r.CarePlans.ListByPet(ctx, p.ID, 30)
	require.NoError(t, err)
	require.Empty(t, plans)
}

func TestPets_UpdateKeepsStreak(t *testing.T) {
	r := New().Repos()
	ctx := context.Background()
	p := seedOwnerAndPet(t, r)

	require.NoError(t, r.Activities.WithinPetTx(ctx, p.ID, func(tx activities.Tx) error {
		return tx.SetStreak(ctx, p.ID, 4)
	}))

	stale := p
	stale.Name = "Buddy II"
	require.NoError(t, r.Pets.Update(ctx, stale))

	got, err := r.Pets.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Buddy II", got.Name)
	require.Equal(t, 4, got.CurrentStreak)
}

func TestActivities_TxRollsBackOnError(t *testing.T) {
	r := New().Repos()
	ctx := context.Background()
	p := seedOwnerAndPet(t, r)
	boom := errors.New("boom")

	err := r.Activities.WithinPetTx(ctx, p.ID, func(tx activities.Tx) error {
		require.NoError(t, tx.Create(ctx, activities.ActivityLog{ID: "a1", PetID: p.ID, Kind: activities.KindWalk, LoggedAt: time.Now()}))
		require.NoError(t, tx.AwardXP(ctx, "o1", 10))
		require.NoError(t, tx.SetStreak(ctx, p.ID, 9))

		n, err := tx.CountBetween(ctx, p.ID, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
		require.NoError(t, err)
		require.Equal(t, 1, n, "la tx ve sus propias escrituras")
		return boom
	})
	require.ErrorIs(t, err, boom)

	logs, _ := r.Activities.List(ctx, activities.Filter{PetIDs: []string{p.ID}})
	require.Empty(t, logs)
	o, _ := r.Owners.GetByID(ctx, "o1")
	require.Equal(t, 50, o.XPBalance)
	got, _ := r.Pets.GetByID(ctx, p.ID)
	require.Equal(t, 0, got.CurrentStreak)

	err = r.Activities.WithinPetTx(ctx, "ghost", func(activities.Tx) error { return nil })
	require.ErrorIs(t, err, pets.ErrNotFound)
}

func TestActivities_IdempotencyKeyIsUniquePerPetAndKind(t *testing.T) {
	r := New().Repos()
	ctx := context.Background()
	p := seedOwnerAndPet(t, r)

	mk := func(id string, kind activities.Kind) activities.ActivityLog {
		return activities.ActivityLog{ID: id, PetID: p.ID, Kind: kind, IdempotencyKey: "k", LoggedAt: time.Now()}
	}
	require.NoError(t, r.Activities.WithinPetTx(ctx, p.ID, func(tx activities.Tx) error {
		return tx.Create(ctx, mk("a1", activities.KindWalk))
	}))
	err := r.Activities.WithinPetTx(ctx, p.ID, func(tx activities.Tx) error {
		return tx.Create(ctx, mk("a2", activities.KindWalk))
	})
	require.ErrorIs(t, err, apperr.ErrConflict)

	require.NoError(t, r.Activities.WithinPetTx(ctx, p.ID, func(tx activities.Tx) error {
		return tx.Create(ctx, mk("a3", activities.KindMeal))
	}))
}

func TestActivities_ServiceOverMemory(t *testing.T) {
	db := New()
	r := db.Repos()
	loc := time.UTC
	ctx := context.Background()

	_, _, err := owners.NewService(r.Owners).Sync(ctx, owners.SyncInput{ID: "o1"})
	require.NoError(t, err)
	petSvc := pets.NewService(r.Pets, pets.Options{})
	created, err := petSvc.Create(ctx, "o1", pets.CreateInput{Name: "Buddy"})
	require.NoError(t, err)

	svc := activities.NewService(r.Activities, petSvc, loc)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Log(ctx, "o1", activities.LogInput{PetID: created.Pet.ID, Kind: activities.KindWalk, Value: 10, IdempotencyKey: "same"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	logs, err := svc.List(ctx, "o1", created.Pet.ID, 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)

	o, err := r.Owners.GetByID(ctx, "o1")
	require.NoError(t, err)
	require.Equal(t, 60, o.XPBalance)

	p, err := r.Pets.GetByID(ctx, created.Pet.ID)
	require.NoError(t, err)
	require.Equal(t, 1, p.CurrentStreak)
}

func TestCarePlans_UniquePerDay(t *testing.T) {
	r := New().Repos()
	ctx := context.Background()
	p := seedOwnerAndPet(t, r)
	day := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, r.CarePlans.CreateWithReward(ctx, careplans.CarePlan{ID: "c1", PetID: p.ID, Date: day, Status: careplans.StatusActive}, "o1", 25))
	err := r.CarePlans.CreateWithReward(ctx, careplans.CarePlan{ID: "c2", PetID: p.ID, Date: day}, "o1", 25)
	require.ErrorIs(t, err, careplans.ErrAlreadyExists)

	got, found, err := r.CarePlans.FindForDay(ctx, p.ID, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "c1", got.ID)

	_, found, err = r.CarePlans.FindForDay(ctx, p.ID, day.AddDate(0, 0, 1), day.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.False(t, found)

	o, _ := r.Owners.GetByID(ctx, "o1")
	require.Equal(t, 75, o.XPBalance)
}

func TestSeedDemo(t *testing.T) {
	db := New()
	now := time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)
	db.SeedDemo(now, time.UTC)
	db.SeedDemo(now, time.UTC)

	r := db.Repos()
	ctx := context.Background()
	o, err := r.Owners.GetByID(ctx, DemoOwnerID)
	require.NoError(t, err)
	require.Equal(t, 150, o.XPBalance)

	p, err := r.Pets.GetByID(ctx, DemoPetID)
	require.NoError(t, err)
	require.Equal(t, "Buddy", p.Name)
	require.Equal(t, 5, p.CurrentStreak)

	logs, err := r.Activities.List(ctx, activities.Filter{PetIDs: []string{DemoPetID}})
	require.NoError(t, err)
	require.Len(t, logs, 3)
	require.Equal(t, time.Date(2026, 5, 9, 8, 0, 0, 0, time.UTC), logs[0].LoggedAt)
	require.EqualValues(t, 35, logs[0].Value)
	require.EqualValues(t, 45, logs[2].Value)
}
