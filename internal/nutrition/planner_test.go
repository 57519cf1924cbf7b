package nutrition

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutrialert/internal/metrics"
)

type stubGenerator struct {
	text string
	err  error

	prompt string
	calls  int
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.prompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func plannerInputs() (metrics.UserProfile, metrics.BodyMeasurements, metrics.LifestyleData) {
	waist := 85.0
	sleep := 7.5
	profile := metrics.UserProfile{BiologicalSex: metrics.SexMale, Age: 32, Goal: "bajar", ActivityLevel: metrics.ActivityModerate}
	m := metrics.BodyMeasurements{Weight: 78.5, Height: 175, Waist: &waist}
	l := metrics.LifestyleData{SleepHours: &sleep, Season: metrics.SeasonWinter}
	return profile, m, l
}

func TestGeneratePlan(t *testing.T) {
	gen := &stubGenerator{text: `{"dailyMealPlans": [` + sampleDay + `], "recommendations": {"general": ["g"], "specific": ["s"], "seasonal": ["e"]}}`}
	planner := NewPlanner(gen)

	profile, m, l := plannerInputs()
	before := time.Now().UTC()
	plan, err := planner.GeneratePlan(context.Background(), profile, m, l, 2150, "user-42")
	require.NoError(t, err)

	assert.Equal(t, 1, gen.calls)
	// The localized goal word is normalized before it reaches the prompt.
	assert.Contains(t, gen.prompt, "- Goal: lose")

	assert.Equal(t, "user-42", plan.UserID)
	assert.Equal(t, metrics.GoalLose, plan.Goal)
	// Authoritative values come from the local calculation, not the reply.
	assert.Equal(t, 2150, plan.TargetCalories)
	require.Len(t, plan.DailyMealPlans, 1)
	assert.Equal(t, Recommendations{General: []string{"g"}, Specific: []string{"s"}, Seasonal: []string{"e"}}, plan.Recommendations)

	assert.False(t, plan.CreatedAt.Before(before))
	assert.Equal(t, plan.CreatedAt.Add(PlanValidity), plan.ValidUntil)
	assert.True(t, plan.Active(plan.CreatedAt.Add(29*24*time.Hour)))
	assert.False(t, plan.Active(plan.CreatedAt.Add(31*24*time.Hour)))
}

func TestGeneratePlanInvalidGoal(t *testing.T) {
	gen := &stubGenerator{}
	planner := NewPlanner(gen)

	profile, m, l := plannerInputs()
	profile.Goal = "world domination"
	_, err := planner.GeneratePlan(context.Background(), profile, m, l, 2000, "user-1")

	var igErr *InvalidGoalError
	require.ErrorAs(t, err, &igErr)
	assert.Zero(t, gen.calls, "no model call for an unmappable goal")
}

func TestGeneratePlanModelFailure(t *testing.T) {
	gen := &stubGenerator{err: &ModelCallError{Err: errors.New("network down")}}
	planner := NewPlanner(gen)

	profile, m, l := plannerInputs()
	_, err := planner.GeneratePlan(context.Background(), profile, m, l, 2000, "user-1")

	var mcErr *ModelCallError
	require.ErrorAs(t, err, &mcErr)
	assert.Equal(t, 1, gen.calls, "a failed call is not retried")
}

func TestGeneratePlanGarbageReply(t *testing.T) {
	gen := &stubGenerator{text: "I cannot help with that."}
	planner := NewPlanner(gen)

	profile, m, l := plannerInputs()
	_, err := planner.GeneratePlan(context.Background(), profile, m, l, 2000, "user-1")

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}
