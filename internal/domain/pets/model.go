package pets

import "time"

// Pet representa el perfil de una mascota. CurrentStreak lo mantiene
// el registro de actividades; nunca es negativo.
type Pet struct {
	ID      string
	OwnerID string

	Name      string
	Breed     string   // opcional; puede venir de la detección por foto
	WeightLbs *float64 // opcional
	AgeYears  *int     // opcional
	PhotoURL  string

	CurrentStreak int

	CreatedAt time.Time
	UpdatedAt time.Time
}
