package activities

import (
	"context"
	"time"
)

// Filter para listados. Resultado siempre del más nuevo al más viejo.
type Filter struct {
	PetIDs []string
	Since  time.Time // zero = sin límite inferior
	Limit  int       // 0 = sin límite
}

type Repository interface {
	List(ctx context.Context, f Filter) ([]ActivityLog, error)

	// WithinPetTx corre fn serializado por mascota (Postgres: tx + FOR UPDATE
	// sobre la fila del pet). Si fn devuelve error no se persiste nada.
	WithinPetTx(ctx context.Context, petID string, fn func(tx Tx) error) error
}

// Tx son las operaciones disponibles dentro de WithinPetTx.
type Tx interface {
	FindByIdempotencyKey(ctx context.Context, petID string, kind Kind, key string) (ActivityLog, bool, error)
	Create(ctx context.Context, a ActivityLog) error

	// CountBetween cuenta actividades con LoggedAt en [from, to).
	CountBetween(ctx context.Context, petID string, from, to time.Time) (int, error)
	// LastBefore devuelve el LoggedAt más reciente estrictamente anterior a before.
	LastBefore(ctx context.Context, petID string, before time.Time) (*time.Time, error)

	Streak(ctx context.Context, petID string) (int, error)
	SetStreak(ctx context.Context, petID string, n int) error
	AwardXP(ctx context.Context, ownerID string, xp int) error
}
