package careplans

import (
	"context"
	"time"
)

type Repository interface {
	// FindForDay busca un plan con Date en [from, to).
	FindForDay(ctx context.Context, petID string, from, to time.Time) (CarePlan, bool, error)
	// ListByPet ordena por Date desc.
	ListByPet(ctx context.Context, petID string, limit int) ([]CarePlan, error)
	// CreateWithReward guarda el plan y suma xp al owner en una tx.
	// Si ya hay plan para ese (pet, día) devuelve ErrAlreadyExists.
	CreateWithReward(ctx context.Context, p CarePlan, ownerID string, xp int) error
}
