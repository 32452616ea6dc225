package owners

import "time"

// XP que se otorga por cada acción. El balance solo crece.
const (
	XPPetCreated     = 50
	XPActivityLogged = 10
	XPCarePlan       = 25
)

// Owner es el dueño de mascotas. ID es el id del proveedor de auth externo.
type Owner struct {
	ID        string
	Email     string
	Name      string
	XPBalance int

	CreatedAt time.Time
	UpdatedAt time.Time
}
