// Package nutrition builds the prompt for the external generative model,
// performs the generation call, and coerces the model's free-form reply into
// a validated NutritionalPlan. One invocation ends in exactly one of three
// terminal states: a valid plan, a model-call failure or a parse failure.
package nutrition

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"nutrialert/internal/metrics"
)

// ContentGenerator is the external text-generation collaborator.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Planner turns a user's profile plus a locally computed calorie target into
// a stored-ready NutritionalPlan.
type Planner struct {
	gen ContentGenerator
}

func NewPlanner(gen ContentGenerator) *Planner {
	return &Planner{gen: gen}
}

// GeneratePlan normalizes the goal, builds the prompt, performs one
// generation call and parses the reply. Goal and targetCalories on the
// returned plan come from the caller's computed values; only the meal content
// and recommendations come from the model.
func (p *Planner) GeneratePlan(ctx context.Context, profile metrics.UserProfile, m metrics.BodyMeasurements, l metrics.LifestyleData, targetCalories int, userID string) (*NutritionalPlan, error) {
	goal, err := NormalizeGoal(string(profile.Goal))
	if err != nil {
		return nil, err
	}
	profile.Goal = goal

	prompt := BuildPrompt(profile, m, l, targetCalories, userID)

	text, err := p.gen.GenerateContent(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("plan generation call failed")
		return nil, err
	}

	parsed, err := ParsePlanResponse(text)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("plan response could not be parsed")
		return nil, err
	}

	now := time.Now().UTC()
	return &NutritionalPlan{
		ID:              uuid.New().String(),
		UserID:          userID,
		Goal:            goal,
		TargetCalories:  targetCalories,
		DailyMealPlans:  parsed.Days,
		Recommendations: parsed.Recs,
		CreatedAt:       now,
		ValidUntil:      now.Add(PlanValidity),
	}, nil
}
