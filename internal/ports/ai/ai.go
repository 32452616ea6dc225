// Package ai define los colaboradores de IA generativa. Los adapters (openai, gemini, static)
// los implementan; los tests usan fakes deterministas.
package ai

import (
	"context"
	"time"
)

// BreedGuess es lo que devuelve la detección de raza a partir de una foto.
type BreedGuess struct {
	Breed        string  `json:"breed"`
	EstimatedAge float64 `json:"estimatedAge"`
	Size         string  `json:"size"` // small | medium | large
	Confidence   float64 `json:"confidence"`
}

type BreedDetector interface {
	DetectBreed(ctx context.Context, imageURL string) (BreedGuess, error)
}

// PetProfile es el subconjunto del perfil que se manda al generador.
type PetProfile struct {
	Name      string
	Breed     string
	WeightLbs *float64
	AgeYears  *int
}

// ActivitySample es una actividad reciente, la más nueva primero.
type ActivitySample struct {
	Kind     string
	Value    float64
	LoggedAt time.Time
}

// PlanDraft es la propuesta del generador antes de persistirse.
type PlanDraft struct {
	TargetExerciseMins int    `json:"targetExerciseMins"`
	TargetCalories     int    `json:"targetCalories"`
	InsightText        string `json:"aiInsightText"`
}

type CarePlanGenerator interface {
	GeneratePlan(ctx context.Context, profile PetProfile, recent []ActivitySample) (PlanDraft, error)
}
