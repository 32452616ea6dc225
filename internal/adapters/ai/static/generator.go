// Package static genera planes de cuidado sin proveedor externo. Sirve para
// desarrollo local y para levantar el servicio sin API keys.
package static

import (
	"context"
	"fmt"
	"math"
	"strings"

	"pet-care-tracker/internal/adapters/ai/prompt"
	"pet-care-tracker/internal/ports/ai"
)

const lbsPerKg = 2.20462

// Generator implementa ai.CarePlanGenerator con reglas fijas a partir del perfil.
type Generator struct{}

func New() *Generator { return &Generator{} }

func (Generator) GeneratePlan(ctx context.Context, p ai.PetProfile, recent []ai.ActivitySample) (ai.PlanDraft, error) {
	if err := ctx.Err(); err != nil {
		return ai.PlanDraft{}, prompt.Classify(err)
	}

	mins := exerciseMinutes(p)
	kcal := calories(p)

	var walked float64
	var walks int
	for _, a := range recent {
		if a.Kind == "WALK" {
			walked += a.Value
			walks++
		}
	}

	var insight strings.Builder
	fmt.Fprintf(&insight, "%s should aim for about %d minutes of exercise today.", displayName(p), mins)
	switch {
	case walks == 0:
		insight.WriteString(" No walks logged recently, so start with a short one and build up.")
	case walked/float64(walks) < float64(mins)/2:
		insight.WriteString(" Recent walks have been on the short side; try to extend one of them.")
	default:
		insight.WriteString(" Recent activity looks consistent, keep the routine going.")
	}

	return ai.PlanDraft{
		TargetExerciseMins: mins,
		TargetCalories:     kcal,
		InsightText:        insight.String(),
	}, nil
}

func exerciseMinutes(p ai.PetProfile) int {
	mins := 45
	if p.AgeYears != nil {
		switch age := *p.AgeYears; {
		case age < 1:
			mins = 30
		case age >= 10:
			mins = 25
		case age >= 7:
			mins = 35
		}
	}
	if p.WeightLbs != nil && *p.WeightLbs >= 50 {
		mins += 15
	}
	return mins
}

// calories usa la energía en reposo (RER = 70 * kg^0.75) con factor 1.6 de mantenimiento.
func calories(p ai.PetProfile) int {
	if p.WeightLbs == nil || *p.WeightLbs <= 0 {
		return 900
	}
	kg := *p.WeightLbs / lbsPerKg
	rer := 70 * math.Pow(kg, 0.75)
	return int(math.Round(rer*1.6/10) * 10)
}

func displayName(p ai.PetProfile) string {
	if n := strings.TrimSpace(p.Name); n != "" {
		return n
	}
	return "Your pet"
}
