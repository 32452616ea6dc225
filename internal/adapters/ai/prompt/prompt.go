// Package prompt arma los prompts y valida las respuestas JSON que comparten los adapters de IA.
package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"pet-care-tracker/internal/ports/ai"
)

// summaryLimit es cuántas actividades recientes entran en el prompt.
const summaryLimit = 7

var ErrUnparseable = errors.New("ai response is not valid json for the expected shape")

const BreedInstruction = `Analyze this pet image and provide: breed name, estimated age in years, and size category (small/medium/large). ` +
	`Respond in JSON format only: {"breed": "string", "estimatedAge": number, "size": "small|medium|large", "confidence": number (0-1)}`

// CarePlan arma el prompt de plan diario. recent viene ordenado del más nuevo al más viejo.
func CarePlan(p ai.PetProfile, recent []ai.ActivitySample) string {
	var sb strings.Builder
	sb.WriteString("Generate a daily care plan for ")
	sb.WriteString(p.Name)
	if b := strings.TrimSpace(p.Breed); b != "" {
		fmt.Fprintf(&sb, " (%s)", b)
	}
	if p.WeightLbs != nil {
		fmt.Fprintf(&sb, ", %g lbs", *p.WeightLbs)
	}
	if p.AgeYears != nil {
		fmt.Fprintf(&sb, ", %d years old", *p.AgeYears)
	}
	sb.WriteString(".\n\n")

	sb.WriteString("Recent activities (last 7 days): ")
	sb.WriteString(Summary(recent))
	sb.WriteString(`

Provide a JSON response with:
{
  "targetExerciseMins": number (recommended daily exercise in minutes),
  "targetCalories": number (recommended daily calorie intake),
  "aiInsightText": string (2-3 sentence personalized insight)
}`)
	return sb.String()
}

// Summary resume las actividades más recientes como "WALK: 30, MEAL: 1".
func Summary(recent []ai.ActivitySample) string {
	if len(recent) == 0 {
		return "No recent activities"
	}
	n := len(recent)
	if n > summaryLimit {
		n = summaryLimit
	}
	parts := make([]string, 0, n)
	for _, a := range recent[:n] {
		parts = append(parts, fmt.Sprintf("%s: %g", a.Kind, a.Value))
	}
	return strings.Join(parts, ", ")
}

// ParsePlan valida la respuesta del modelo.
func ParsePlan(raw string) (ai.PlanDraft, error) {
	var out ai.PlanDraft
	if err := json.Unmarshal([]byte(stripFences(raw)), &out); err != nil {
		return ai.PlanDraft{}, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	out.InsightText = strings.TrimSpace(out.InsightText)
	if out.TargetExerciseMins < 0 || out.TargetCalories < 0 || out.InsightText == "" {
		return ai.PlanDraft{}, fmt.Errorf("%w: missing or negative fields", ErrUnparseable)
	}
	return out, nil
}

// ParseBreed valida la respuesta de detección de raza.
func ParseBreed(raw string) (ai.BreedGuess, error) {
	var out ai.BreedGuess
	if err := json.Unmarshal([]byte(stripFences(raw)), &out); err != nil {
		return ai.BreedGuess{}, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	out.Breed = strings.TrimSpace(out.Breed)
	if out.Breed == "" {
		return ai.BreedGuess{}, fmt.Errorf("%w: missing breed", ErrUnparseable)
	}
	if out.EstimatedAge < 0 {
		out.EstimatedAge = 0
	}
	return out, nil
}

// Algunos modelos envuelven el JSON en ```json ... ``` aunque se pida JSON puro.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
