package pets

import (
	"context"
	"strings"
)

// Owned devuelve la mascota solo si pertenece a ownerID.
// Una mascota ajena se reporta como ErrNotFound para no filtrar su existencia.
// Activities, careplans y stats lo consumen vía interfaz para evitar ciclos de imports.
func (s *Service) Owned(ctx context.Context, ownerID, petID string) (Pet, error) {
	if strings.TrimSpace(ownerID) == "" || strings.TrimSpace(petID) == "" {
		return Pet{}, ErrNotFound
	}
	p, err := s.repo.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, err
	}
	if p.OwnerID != ownerID {
		return Pet{}, ErrNotFound
	}
	return p, nil
}
