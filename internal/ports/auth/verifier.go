package auth

import "context"

// AuthVerifier valida el bearer token del proveedor y devuelve la identidad del owner.
// Un token inválido o vencido devuelve un error que envuelve apperr.ErrUnauthorized.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
