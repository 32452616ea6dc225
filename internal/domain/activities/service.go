package activities

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"pet-care-tracker/internal/domain/owners"
	"pet-care-tracker/internal/domain/pets"
	"pet-care-tracker/internal/platform/apperr"
	"pet-care-tracker/internal/platform/metrics"
)

const (
	maxDays       = 365
	maxKeyLen     = 128
	maxNotesLen   = 1000
	maxListResult = 500
)

// PetFinder lo implementa pets.Service.
type PetFinder interface {
	Owned(ctx context.Context, ownerID, petID string) (pets.Pet, error)
	ListByOwner(ctx context.Context, ownerID string) ([]pets.Pet, error)
}

type Service struct {
	repo Repository
	pets PetFinder
	loc  *time.Location
	now  func() time.Time
}

func NewService(repo Repository, pets PetFinder, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		repo: repo,
		pets: pets,
		loc:  loc,
		now:  time.Now,
	}
}

type LogInput struct {
	PetID          string
	Kind           Kind
	Value          float64
	Notes          string
	IdempotencyKey string
}

type LogResult struct {
	Log        ActivityLog
	Idempotent bool
	Streak     int
}

// Log registra una actividad.
// Con IdempotencyKey repetida (mismo pet y tipo) devuelve el registro original
// sin tocar XP ni racha. Todo corre dentro de la tx por mascota.
func (s *Service) Log(ctx context.Context, ownerID string, in LogInput) (LogResult, error) {
	in.Kind = Kind(strings.ToUpper(strings.TrimSpace(string(in.Kind))))
	in.IdempotencyKey = strings.TrimSpace(in.IdempotencyKey)
	in.Notes = strings.TrimSpace(in.Notes)
	if err := validateLog(in); err != nil {
		return LogResult{}, err
	}

	pet, err := s.pets.Owned(ctx, ownerID, in.PetID)
	if err != nil {
		return LogResult{}, err
	}

	var out LogResult
	err = s.repo.WithinPetTx(ctx, pet.ID, func(tx Tx) error {
		out = LogResult{}

		if in.IdempotencyKey != "" {
			existing, found, err := tx.FindByIdempotencyKey(ctx, pet.ID, in.Kind, in.IdempotencyKey)
			if err != nil {
				return err
			}
			if found {
				streak, err := tx.Streak(ctx, pet.ID)
				if err != nil {
					return err
				}
				out = LogResult{Log: existing, Idempotent: true, Streak: streak}
				return nil
			}
		}

		now := s.now()
		a := ActivityLog{
			ID:             uuid.NewString(),
			PetID:          pet.ID,
			Kind:           in.Kind,
			Value:          in.Value,
			Notes:          in.Notes,
			IdempotencyKey: in.IdempotencyKey,
			LoggedAt:       now,
			CreatedAt:      now,
		}
		if err := tx.Create(ctx, a); err != nil {
			return err
		}
		if err := tx.AwardXP(ctx, ownerID, owners.XPActivityLogged); err != nil {
			return err
		}

		streak, err := s.recomputeStreak(ctx, tx, pet.ID, now)
		if err != nil {
			return err
		}
		out = LogResult{Log: a, Streak: streak}
		return nil
	})
	if err != nil {
		return LogResult{}, err
	}

	metrics.RecordActivity(string(out.Log.Kind), out.Idempotent)
	return out, nil
}

// recomputeStreak corre después de insertar; solo la primera actividad del día mueve la racha.
func (s *Service) recomputeStreak(ctx context.Context, tx Tx, petID string, now time.Time) (int, error) {
	current, err := tx.Streak(ctx, petID)
	if err != nil {
		return 0, err
	}

	start, end := DayBounds(now, s.loc)
	count, err := tx.CountBetween(ctx, petID, start, end)
	if err != nil {
		return 0, err
	}
	if count > 1 {
		return current, nil
	}

	last, err := tx.LastBefore(ctx, petID, start)
	if err != nil {
		return 0, err
	}

	next, changed := NextStreak(current, count, last, now, s.loc)
	if !changed {
		return current, nil
	}
	if err := tx.SetStreak(ctx, petID, next); err != nil {
		return 0, err
	}
	return next, nil
}

// List devuelve actividades del más nuevo al más viejo.
// petID vacío = todas las mascotas del owner. days <= 0 = sin límite de fecha.
func (s *Service) List(ctx context.Context, ownerID, petID string, days int) ([]ActivityLog, error) {
	if days > maxDays {
		return nil, apperr.Invalid(fmt.Sprintf("days must be between 1 and %d", maxDays), "days")
	}

	var ids []string
	if strings.TrimSpace(petID) != "" {
		p, err := s.pets.Owned(ctx, ownerID, petID)
		if err != nil {
			return nil, err
		}
		ids = []string{p.ID}
	} else {
		ps, err := s.pets.ListByOwner(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		for _, p := range ps {
			ids = append(ids, p.ID)
		}
	}
	if len(ids) == 0 {
		return []ActivityLog{}, nil
	}

	f := Filter{PetIDs: ids, Limit: maxListResult}
	if days > 0 {
		f.Since = s.now().AddDate(0, 0, -days)
	}
	return s.repo.List(ctx, f)
}

// Recent es lo que consumen careplans y stats: últimos days días de una mascota.
func (s *Service) Recent(ctx context.Context, petID string, days, limit int) ([]ActivityLog, error) {
	return s.repo.List(ctx, Filter{
		PetIDs: []string{petID},
		Since:  s.now().AddDate(0, 0, -days),
		Limit:  limit,
	})
}

// History devuelve las actividades de una mascota desde since (zero = sin límite inferior).
// No valida ownership: lo hace el caller.
func (s *Service) History(ctx context.Context, petID string, since time.Time, limit int) ([]ActivityLog, error) {
	return s.repo.List(ctx, Filter{
		PetIDs: []string{petID},
		Since:  since,
		Limit:  limit,
	})
}

func validateLog(in LogInput) error {
	var bad []string
	if strings.TrimSpace(in.PetID) == "" {
		bad = append(bad, "petId")
	}
	if !in.Kind.Valid() {
		bad = append(bad, "activityType")
	}
	if in.Value < 0 || math.IsNaN(in.Value) || math.IsInf(in.Value, 0) {
		bad = append(bad, "value")
	}
	if len(in.IdempotencyKey) > maxKeyLen {
		bad = append(bad, "idempotencyKey")
	}
	if len(in.Notes) > maxNotesLen {
		bad = append(bad, "notes")
	}
	if len(bad) > 0 {
		return apperr.Invalid("invalid input", bad...)
	}
	return nil
}
