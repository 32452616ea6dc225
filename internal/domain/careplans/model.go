package careplans

import "time"

// Status del plan.
// @Enum ACTIVE, ARCHIVED
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusArchived Status = "ARCHIVED"
)

// CarePlan es el plan diario generado para una mascota. No se modifica después de creado.
type CarePlan struct {
	ID    string
	PetID string
	Date  time.Time // medianoche local del día del plan

	TargetExerciseMins int
	TargetCalories     int
	InsightText        string
	Status             Status

	CreatedAt time.Time
}
