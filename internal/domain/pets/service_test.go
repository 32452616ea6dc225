package pets

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pet-care-tracker/internal/platform/apperr"
	"pet-care-tracker/internal/ports/ai"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID   map[string]Pet
	xp     map[string]int
	owners map[string]bool
}

func newTestRepo(owners ...string) *testRepo {
	r := &testRepo{byID: map[string]Pet{}, xp: map[string]int{}, owners: map[string]bool{}}
	for _, o := range owners {
		r.owners[o] = true
	}
	return r
}

func (r *testRepo) CreateWithReward(_ context.Context, p Pet, xp int) error {
	if !r.owners[p.OwnerID] {
		return ErrOwnerNotFound
	}
	r.byID[p.ID] = p
	r.xp[p.OwnerID] += xp
	return nil
}

func (r *testRepo) GetByID(_ context.Context, id string) (Pet, error) {
	p, ok := r.byID[id]
	if !ok {
		return Pet{}, ErrNotFound
	}
	return p, nil
}

func (r *testRepo) ListByOwner(_ context.Context, ownerID string) ([]Pet, error) {
	out := make([]Pet, 0)
	for _, p := range r.byID {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *testRepo) Update(_ context.Context, p Pet) error {
	if _, ok := r.byID[p.ID]; !ok {
		return ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) Delete(_ context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

type fakeDetector struct {
	guess ai.BreedGuess
	err   error
	calls int
}

func (f *fakeDetector) DetectBreed(context.Context, string) (ai.BreedGuess, error) {
	f.calls++
	return f.guess, f.err
}

func ptr[T any](v T) *T { return &v }

// -------------------------
// Tests
// -------------------------

func TestCreate_AwardsXPAndValidates(t *testing.T) {
	repo := newTestRepo("o1")
	svc := NewService(repo, Options{})

	res, err := svc.Create(context.Background(), "o1", CreateInput{Name: " Buddy ", WeightLbs: ptr(65.5)})
	require.NoError(t, err)
	require.Equal(t, "Buddy", res.Pet.Name)
	require.Equal(t, 0, res.Pet.CurrentStreak)
	require.Nil(t, res.AIData)
	require.Equal(t, 50, repo.xp["o1"])

	_, err = svc.Create(context.Background(), "o1", CreateInput{Name: "", WeightLbs: ptr(-1.0), AgeYears: ptr(-2)})
	var verr *apperr.ValidationError
	require.True(t, errors.As(err, &verr))
	require.ElementsMatch(t, []string{"name", "weightLbs", "ageYears"}, verr.Fields)

	_, err = svc.Create(context.Background(), "ghost", CreateInput{Name: "Rex"})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreate_UsesDetectedBreedWhenMissing(t *testing.T) {
	det := &fakeDetector{guess: ai.BreedGuess{Breed: "Beagle", EstimatedAge: 2.6, Size: "medium", Confidence: 0.8}}
	svc := NewService(newTestRepo("o1"), Options{Detector: det})

	res, err := svc.Create(context.Background(), "o1", CreateInput{Name: "Milo", PhotoURL: "https://img/milo.jpg"})
	require.NoError(t, err)
	require.Equal(t, "Beagle", res.Pet.Breed)
	require.Equal(t, 3, *res.Pet.AgeYears)
	require.NotNil(t, res.AIData)

	// lo que manda el usuario gana
	res, err = svc.Create(context.Background(), "o1", CreateInput{Name: "Max", Breed: "Mixed", AgeYears: ptr(7), PhotoURL: "https://img/max.jpg"})
	require.NoError(t, err)
	require.Equal(t, "Mixed", res.Pet.Breed)
	require.Equal(t, 7, *res.Pet.AgeYears)

	// sin foto no se llama al detector
	_, err = svc.Create(context.Background(), "o1", CreateInput{Name: "Luna"})
	require.NoError(t, err)
	require.Equal(t, 2, det.calls)
}

func TestCreate_DetectionFailureIsSwallowed(t *testing.T) {
	det := &fakeDetector{err: apperr.ErrUpstreamTimeout}
	svc := NewService(newTestRepo("o1"), Options{Detector: det, DetectTimeout: time.Millisecond})

	res, err := svc.Create(context.Background(), "o1", CreateInput{Name: "Buddy", PhotoURL: "https://img/b.jpg"})
	require.NoError(t, err)
	require.Nil(t, res.AIData)
	require.Empty(t, res.Pet.Breed)
}

func TestOwned_ForeignPetIsNotFound(t *testing.T) {
	repo := newTestRepo("o1", "o2")
	svc := NewService(repo, Options{})
	res, err := svc.Create(context.Background(), "o1", CreateInput{Name: "Buddy"})
	require.NoError(t, err)

	_, err = svc.Owned(context.Background(), "o2", res.Pet.ID)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Update(context.Background(), "o2", res.Pet.ID, UpdateInput{Name: ptr("Hacked")})
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, svc.Delete(context.Background(), "o2", res.Pet.ID), ErrNotFound)
	require.Contains(t, repo.byID, res.Pet.ID)
}

func TestUpdate_PatchesOnlyPresentFields(t *testing.T) {
	repo := newTestRepo("o1")
	svc := NewService(repo, Options{})
	res, err := svc.Create(context.Background(), "o1", CreateInput{Name: "Buddy", Breed: "Golden Retriever", AgeYears: ptr(3)})
	require.NoError(t, err)

	p, err := svc.Update(context.Background(), "o1", res.Pet.ID, UpdateInput{WeightLbs: ptr(70.0)})
	require.NoError(t, err)
	require.Equal(t, "Buddy", p.Name)
	require.Equal(t, "Golden Retriever", p.Breed)
	require.Equal(t, 70.0, *p.WeightLbs)
	require.Equal(t, 3, *p.AgeYears)

	_, err = svc.Update(context.Background(), "o1", res.Pet.ID, UpdateInput{Name: ptr("  ")})
	require.True(t, apperr.IsValidation(err))
}
