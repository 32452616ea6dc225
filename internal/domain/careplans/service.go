package careplans

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"pet-care-tracker/internal/domain/activities"
	"pet-care-tracker/internal/domain/owners"
	"pet-care-tracker/internal/domain/pets"
	"pet-care-tracker/internal/platform/apperr"
	"pet-care-tracker/internal/platform/logger"
	"pet-care-tracker/internal/platform/metrics"
	"pet-care-tracker/internal/platform/ratelimit"
	"pet-care-tracker/internal/ports/ai"
)

const (
	recentDays     = 7
	recentLimit    = 30
	listLimit      = 30
	defaultTimeout = 20 * time.Second
)

var ErrAlreadyExists = fmt.Errorf("care plan already exists for today: %w", apperr.ErrConflict)

type PetFinder interface {
	Owned(ctx context.Context, ownerID, petID string) (pets.Pet, error)
}

// ActivityReader lo implementa activities.Service.
type ActivityReader interface {
	Recent(ctx context.Context, petID string, days, limit int) ([]activities.ActivityLog, error)
}

type Options struct {
	Limiter   ratelimit.Limiter
	Generator ai.CarePlanGenerator
	Location  *time.Location
	Timeout   time.Duration
	Logger    logger.Logger
}

type Service struct {
	repo      Repository
	pets      PetFinder
	acts      ActivityReader
	limiter   ratelimit.Limiter
	generator ai.CarePlanGenerator
	loc       *time.Location
	timeout   time.Duration
	log       logger.Logger
	now       func() time.Time

	flights singleflight.Group
}

func NewService(repo Repository, pets PetFinder, acts ActivityReader, opts Options) *Service {
	s := &Service{
		repo:      repo,
		pets:      pets,
		acts:      acts,
		limiter:   opts.Limiter,
		generator: opts.Generator,
		loc:       opts.Location,
		timeout:   opts.Timeout,
		log:       opts.Logger,
		now:       time.Now,
	}
	if s.limiter == nil {
		s.limiter = ratelimit.NewFixedWindow(ratelimit.DefaultLimit, ratelimit.DefaultWindow)
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.timeout <= 0 {
		s.timeout = defaultTimeout
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	return s
}

type GenerateResult struct {
	Plan     CarePlan
	Existing bool
}

// Generate devuelve el plan de hoy, generándolo si no existe.
// Orden: cuota del owner, ownership, plan existente, generación, persistencia + XP.
func (s *Service) Generate(ctx context.Context, ownerID, petID string) (GenerateResult, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return GenerateResult{}, apperr.Invalid("petId is required", "petId")
	}
	if s.generator == nil {
		return GenerateResult{}, fmt.Errorf("%w: no care plan generator configured", apperr.ErrUpstream)
	}

	if err := s.allow(ctx, ownerID); err != nil {
		return GenerateResult{}, err
	}

	pet, err := s.pets.Owned(ctx, ownerID, petID)
	if err != nil {
		return GenerateResult{}, err
	}

	start, end := activities.DayBounds(s.now(), s.loc)
	if p, found, err := s.repo.FindForDay(ctx, pet.ID, start, end); err != nil {
		return GenerateResult{}, err
	} else if found {
		metrics.RecordCarePlan("existing")
		return GenerateResult{Plan: p, Existing: true}, nil
	}

	// Requests simultáneos del mismo (pet, día) comparten una sola generación.
	// Solo el que ejecutó la función ve ran=true; al resto se le informa existing.
	ran := false
	key := pet.ID + "|" + start.Format(time.DateOnly)
	v, err, _ := s.flights.Do(key, func() (any, error) {
		ran = true
		return s.create(context.WithoutCancel(ctx), ownerID, pet, start, end)
	})
	if err != nil {
		return GenerateResult{}, err
	}

	res := v.(GenerateResult)
	if !ran {
		res.Existing = true
	}
	if res.Existing {
		metrics.RecordCarePlan("existing")
	} else {
		metrics.RecordCarePlan("created")
	}
	return res, nil
}

func (s *Service) allow(ctx context.Context, ownerID string) error {
	d, err := s.limiter.Allow(ctx, ownerID)
	if err != nil {
		// con el store de cuotas caído preferimos seguir atendiendo
		s.log.Warn("rate limiter unavailable", map[string]any{"err": err, "owner_id": ownerID})
		return nil
	}
	if !d.Allowed {
		metrics.RecordCarePlan("rate_limited")
		return &apperr.RateLimitError{RetryAfter: d.RetryAfter(s.now())}
	}
	return nil
}

func (s *Service) create(ctx context.Context, ownerID string, pet pets.Pet, start, end time.Time) (GenerateResult, error) {
	// otra instancia o un flight anterior pudo haberlo creado
	if p, found, err := s.repo.FindForDay(ctx, pet.ID, start, end); err != nil {
		return GenerateResult{}, err
	} else if found {
		return GenerateResult{Plan: p, Existing: true}, nil
	}

	recent, err := s.acts.Recent(ctx, pet.ID, recentDays, recentLimit)
	if err != nil {
		return GenerateResult{}, err
	}

	draft, err := s.generate(ctx, pet, recent)
	if err != nil {
		return GenerateResult{}, err
	}

	p := CarePlan{
		ID:                 uuid.NewString(),
		PetID:              pet.ID,
		Date:               start,
		TargetExerciseMins: draft.TargetExerciseMins,
		TargetCalories:     draft.TargetCalories,
		InsightText:        draft.InsightText,
		Status:             StatusActive,
		CreatedAt:          s.now(),
	}
	if err := s.repo.CreateWithReward(ctx, p, ownerID, owners.XPCarePlan); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			existing, found, ferr := s.repo.FindForDay(ctx, pet.ID, start, end)
			if ferr != nil {
				return GenerateResult{}, ferr
			}
			if found {
				return GenerateResult{Plan: existing, Existing: true}, nil
			}
		}
		return GenerateResult{}, err
	}

	s.log.Info("care plan generated", map[string]any{"pet_id": pet.ID, "plan_id": p.ID})
	return GenerateResult{Plan: p}, nil
}

func (s *Service) generate(ctx context.Context, pet pets.Pet, recent []activities.ActivityLog) (ai.PlanDraft, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	samples := make([]ai.ActivitySample, 0, len(recent))
	for _, a := range recent {
		samples = append(samples, ai.ActivitySample{Kind: string(a.Kind), Value: a.Value, LoggedAt: a.LoggedAt})
	}

	draft, err := s.generator.GeneratePlan(ctx, ai.PetProfile{
		Name:      pet.Name,
		Breed:     pet.Breed,
		WeightLbs: pet.WeightLbs,
		AgeYears:  pet.AgeYears,
	}, samples)
	if err == nil && (draft.TargetExerciseMins < 0 || draft.TargetCalories < 0 || strings.TrimSpace(draft.InsightText) == "") {
		err = errors.New("generator returned an incomplete plan")
	}
	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, apperr.ErrUpstreamTimeout):
			metrics.RecordCarePlan("timeout")
			if errors.Is(err, apperr.ErrUpstreamTimeout) {
				return ai.PlanDraft{}, err
			}
			return ai.PlanDraft{}, fmt.Errorf("%w: %w", apperr.ErrUpstreamTimeout, err)
		case errors.Is(err, apperr.ErrUpstream):
			metrics.RecordCarePlan("upstream_error")
			return ai.PlanDraft{}, err
		default:
			metrics.RecordCarePlan("upstream_error")
			return ai.PlanDraft{}, fmt.Errorf("%w: %w", apperr.ErrUpstream, err)
		}
	}
	draft.InsightText = strings.TrimSpace(draft.InsightText)
	return draft, nil
}

// List devuelve hasta 30 planes, el más reciente primero.
func (s *Service) List(ctx context.Context, ownerID, petID string) ([]CarePlan, error) {
	if strings.TrimSpace(petID) == "" {
		return nil, apperr.Invalid("petId is required", "petId")
	}
	pet, err := s.pets.Owned(ctx, ownerID, petID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByPet(ctx, pet.ID, listLimit)
}

// Latest devuelve los últimos limit planes de una mascota ya validada por el caller.
func (s *Service) Latest(ctx context.Context, petID string, limit int) ([]CarePlan, error) {
	return s.repo.ListByPet(ctx, petID, limit)
}
