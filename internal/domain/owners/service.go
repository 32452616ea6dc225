package owners

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-care-tracker/internal/platform/apperr"
)

var (
	ErrNotFound     = fmt.Errorf("owner %w", apperr.ErrNotFound)
	ErrInvalidInput = apperr.Invalid("invalid input", "id")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type SyncInput struct {
	ID    string
	Email string
	Name  string
}

// Sync crea el owner la primera vez que el usuario se autentica.
// Si ya existe, solo completa email/nombre cuando llegan valores nuevos.
func (s *Service) Sync(ctx context.Context, in SyncInput) (Owner, bool, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return Owner{}, false, ErrInvalidInput
	}
	email := strings.TrimSpace(in.Email)
	name := strings.TrimSpace(in.Name)

	o, err := s.repo.GetByID(ctx, id)
	switch {
	case err == nil:
		changed := false
		if email != "" && email != o.Email {
			o.Email = email
			changed = true
		}
		if name != "" && name != o.Name {
			o.Name = name
			changed = true
		}
		if !changed {
			return o, false, nil
		}
		o.UpdatedAt = s.now()
		if err := s.repo.UpdateProfile(ctx, o); err != nil {
			return Owner{}, false, err
		}
		return o, false, nil
	case !errors.Is(err, ErrNotFound):
		return Owner{}, false, err
	}

	now := s.now()
	o = Owner{
		ID:        id,
		Email:     email,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		// otro request lo creó en paralelo
		if errors.Is(err, apperr.ErrConflict) {
			existing, gerr := s.repo.GetByID(ctx, id)
			return existing, false, gerr
		}
		return Owner{}, false, err
	}
	return o, true, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Owner, error) {
	if strings.TrimSpace(id) == "" {
		return Owner{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}
