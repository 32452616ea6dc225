package pets

import "context"

type Repository interface {
	// CreateWithReward inserta la mascota y suma xp al owner en una sola operación.
	// Devuelve ErrOwnerNotFound si el owner no existe.
	CreateWithReward(ctx context.Context, p Pet, xp int) error
	GetByID(ctx context.Context, id string) (Pet, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Pet, error)
	Update(ctx context.Context, p Pet) error
	// Delete borra en cascada actividades y planes.
	Delete(ctx context.Context, id string) error
}
