package activities

import "time"

// Kind es el tipo de actividad.
// @Enum WALK, MEAL, SYMPTOM_CHECK
type Kind string

const (
	KindWalk         Kind = "WALK"
	KindMeal         Kind = "MEAL"
	KindSymptomCheck Kind = "SYMPTOM_CHECK"
)

func (k Kind) Valid() bool {
	switch k {
	case KindWalk, KindMeal, KindSymptomCheck:
		return true
	}
	return false
}

// ActivityLog es inmutable una vez creado.
// Value: minutos para WALK, porciones para MEAL, severidad para SYMPTOM_CHECK.
type ActivityLog struct {
	ID             string
	PetID          string
	Kind           Kind
	Value          float64
	Notes          string
	IdempotencyKey string // vacío = sin key

	LoggedAt  time.Time // hora del servidor al crear
	CreatedAt time.Time
}
