package prompt

import (
	"errors"
	"strings"
	"testing"
	"time"

	"pet-care-tracker/internal/ports/ai"

	"github.com/stretchr/testify/require"
)

func TestCarePlan_IncludesProfileAndSummary(t *testing.T) {
	w := 65.5
	age := 3
	p := CarePlan(ai.PetProfile{Name: "Buddy", Breed: "Golden Retriever", WeightLbs: &w, AgeYears: &age}, []ai.ActivitySample{
		{Kind: "WALK", Value: 30, LoggedAt: time.Now()},
	})

	require.Contains(t, p, "Buddy (Golden Retriever), 65.5 lbs, 3 years old.")
	require.Contains(t, p, "WALK: 30")
	require.Contains(t, p, `"targetExerciseMins"`)
}

func TestSummary_KeepsMostRecentSeven(t *testing.T) {
	recent := make([]ai.ActivitySample, 0, 10)
	for i := 0; i < 10; i++ {
		recent = append(recent, ai.ActivitySample{Kind: "WALK", Value: float64(i)})
	}
	s := Summary(recent)
	require.Equal(t, 7, strings.Count(s, "WALK"))
	require.True(t, strings.HasPrefix(s, "WALK: 0"))
	require.NotContains(t, s, "WALK: 9")

	require.Equal(t, "No recent activities", Summary(nil))
}

func TestParsePlan(t *testing.T) {
	d, err := ParsePlan("```json\n{\"targetExerciseMins\":45,\"targetCalories\":1200,\"aiInsightText\":\" Keep it up. \"}\n```")
	require.NoError(t, err)
	require.Equal(t, 45, d.TargetExerciseMins)
	require.Equal(t, "Keep it up.", d.InsightText)

	_, err = ParsePlan("not json")
	require.True(t, errors.Is(err, ErrUnparseable))

	_, err = ParsePlan(`{"targetExerciseMins":-1,"targetCalories":10,"aiInsightText":"x"}`)
	require.True(t, errors.Is(err, ErrUnparseable))
}

func TestParseBreed(t *testing.T) {
	g, err := ParseBreed(`{"breed":"Beagle","estimatedAge":2,"size":"medium","confidence":0.8}`)
	require.NoError(t, err)
	require.Equal(t, "Beagle", g.Breed)

	_, err = ParseBreed(`{"breed":""}`)
	require.True(t, errors.Is(err, ErrUnparseable))
}
