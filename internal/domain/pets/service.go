package pets

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"pet-care-tracker/internal/domain/owners"
	"pet-care-tracker/internal/platform/apperr"
	"pet-care-tracker/internal/platform/logger"
	"pet-care-tracker/internal/platform/metrics"
	"pet-care-tracker/internal/ports/ai"
)

var (
	ErrNotFound      = fmt.Errorf("pet %w", apperr.ErrNotFound)
	ErrOwnerNotFound = owners.ErrNotFound
)

const defaultDetectTimeout = 20 * time.Second

type Service struct {
	repo     Repository
	detector ai.BreedDetector // nil => sin detección
	log      logger.Logger
	timeout  time.Duration
	now      func() time.Time
}

type Options struct {
	Detector      ai.BreedDetector
	Logger        logger.Logger
	DetectTimeout time.Duration
}

func NewService(repo Repository, opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	timeout := opts.DetectTimeout
	if timeout <= 0 {
		timeout = defaultDetectTimeout
	}
	return &Service{
		repo:     repo,
		detector: opts.Detector,
		log:      log,
		timeout:  timeout,
		now:      time.Now,
	}
}

type CreateInput struct {
	Name      string
	Breed     string
	WeightLbs *float64
	AgeYears  *int
	PhotoURL  string
}

type CreateResult struct {
	Pet    Pet
	AIData *ai.BreedGuess
}

func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (CreateResult, error) {
	if strings.TrimSpace(ownerID) == "" {
		return CreateResult{}, apperr.ErrUnauthorized
	}
	if err := validateProfile(&in.Name, in.WeightLbs, in.AgeYears); err != nil {
		return CreateResult{}, err
	}

	breed := strings.TrimSpace(in.Breed)
	age := in.AgeYears
	photo := strings.TrimSpace(in.PhotoURL)

	var guess *ai.BreedGuess
	if photo != "" && s.detector != nil {
		guess = s.detect(ctx, photo)
	}
	if guess != nil {
		if breed == "" {
			breed = guess.Breed
		}
		if age == nil && guess.EstimatedAge > 0 {
			a := int(math.Round(guess.EstimatedAge))
			age = &a
		}
	}

	now := s.now()
	p := Pet{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      strings.TrimSpace(in.Name),
		Breed:     breed,
		WeightLbs: in.WeightLbs,
		AgeYears:  age,
		PhotoURL:  photo,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateWithReward(ctx, p, owners.XPPetCreated); err != nil {
		return CreateResult{}, err
	}
	return CreateResult{Pet: p, AIData: guess}, nil
}

// detect nunca falla la creación: cualquier error se loguea y se ignora.
func (s *Service) detect(ctx context.Context, photoURL string) *ai.BreedGuess {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	g, err := s.detector.DetectBreed(ctx, photoURL)
	if err != nil {
		metrics.RecordBreedDetection("error")
		s.log.Warn("breed detection failed", map[string]any{"err": err})
		return nil
	}
	metrics.RecordBreedDetection("ok")
	return &g
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Pet, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, apperr.ErrUnauthorized
	}
	return s.repo.ListByOwner(ctx, ownerID)
}

// UpdateInput: punteros para PATCH real, nil = no tocar.
type UpdateInput struct {
	Name      *string
	Breed     *string
	WeightLbs *float64
	AgeYears  *int
	PhotoURL  *string
}

func (s *Service) Update(ctx context.Context, ownerID, petID string, in UpdateInput) (Pet, error) {
	p, err := s.Owned(ctx, ownerID, petID)
	if err != nil {
		return Pet{}, err
	}

	if err := validateProfile(in.Name, in.WeightLbs, in.AgeYears); err != nil {
		return Pet{}, err
	}
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Breed != nil {
		p.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.WeightLbs != nil {
		p.WeightLbs = in.WeightLbs
	}
	if in.AgeYears != nil {
		p.AgeYears = in.AgeYears
	}
	if in.PhotoURL != nil {
		p.PhotoURL = strings.TrimSpace(*in.PhotoURL)
	}
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, petID string) error {
	if _, err := s.Owned(ctx, ownerID, petID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, petID)
}

// validateProfile valida solo los campos presentes (nil = no enviado).
func validateProfile(name *string, weight *float64, age *int) error {
	var bad []string
	if name != nil && strings.TrimSpace(*name) == "" {
		bad = append(bad, "name")
	}
	if weight != nil && (*weight < 0 || math.IsNaN(*weight) || math.IsInf(*weight, 0)) {
		bad = append(bad, "weightLbs")
	}
	if age != nil && *age < 0 {
		bad = append(bad, "ageYears")
	}
	if len(bad) > 0 {
		return apperr.Invalid("invalid input", bad...)
	}
	return nil
}
