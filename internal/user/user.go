/*
Package user implements the authenticated API surface of NutriAlert:
profile preferences, health-metrics calculation and history, nutrition
plan generation, gamification and the dashboard aggregate.
*/
package user

import (
	"context"

	"github.com/rs/zerolog/log"

	"nutrialert/internal/database"
	"nutrialert/internal/metrics"
	"nutrialert/internal/nutrition"
)

// PlanGenerator is the plan-generation collaborator. Declared as an
// interface so handlers can be exercised without a live model.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, profile metrics.UserProfile, m metrics.BodyMeasurements, l metrics.LifestyleData, targetCalories int, userID string) (*nutrition.NutritionalPlan, error)
}

var (
	store        *database.Store
	metricsCache *database.MetricsCache
	planner      PlanGenerator
)

// InitUserPackage wires the package's collaborators. Must run before any
// handler is registered.
func InitUserPackage(s *database.Store, c *database.MetricsCache, p PlanGenerator) {
	store = s
	metricsCache = c
	planner = p
	log.Info().Msg("User package initialized.")
}
