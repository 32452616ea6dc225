package auth

// Claims representa la información extraída del token.
// UserID es el id del proveedor externo y se usa como id del Owner.
type Claims struct {
	UserID string
	Email  string
	Name   string
}
