package user

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"nutrialert/internal/database"
	"nutrialert/internal/metrics"
	"nutrialert/internal/nutrition"
	"nutrialert/internal/utility"
)

// PlanRequest optionally carries fresh inputs. When measurements are absent
// the latest stored metrics record supplies profile, measurements and
// lifestyle instead.
type PlanRequest struct {
	Profile      *metrics.UserProfile      `json:"profile,omitempty"`
	Measurements *metrics.BodyMeasurements `json:"measurements,omitempty"`
	Lifestyle    *metrics.LifestyleData    `json:"lifestyle,omitempty"`
}

// PlanResponse annotates a stored plan with its validity at read time.
type PlanResponse struct {
	nutrition.NutritionalPlan
	Status string `json:"status"` // active | expired
}

func planStatus(p *nutrition.NutritionalPlan, now time.Time) string {
	if p.Active(now) {
		return "active"
	}
	return "expired"
}

// GeneratePlanHandler computes the calorie target for the caller and requests
// a personalized plan from the generative model. The three failure modes map
// to distinct codes so clients can tell bad input from an upstream outage.
func GeneratePlanHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	var req PlanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	var (
		profile      metrics.UserProfile
		measurements metrics.BodyMeasurements
		lifestyle    metrics.LifestyleData
	)
	if req.Measurements != nil && req.Profile != nil {
		profile = *req.Profile
		measurements = *req.Measurements
		if req.Lifestyle != nil {
			lifestyle = *req.Lifestyle
		} else {
			lifestyle = metrics.LifestyleData{Season: metrics.SeasonSummer}
		}
	} else {
		latest, err := store.LatestHealthMetrics(ctx, userID)
		if errors.Is(err, database.ErrNotFound) {
			return c.JSON(http.StatusBadRequest, map[string]any{
				"error": "No measurements on record; supply profile and measurements or save metrics first",
				"code":  "NO_MEASUREMENTS",
			})
		}
		if err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("failed to load latest metrics for plan")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load metrics"})
		}
		profile = latest.Profile
		measurements = latest.Measurements
		lifestyle = latest.Lifestyle
	}

	// Goal aliases are resolved before validation so a Spanish goal word from
	// the client does not fail the enum check.
	if goal, err := nutrition.NormalizeGoal(string(profile.Goal)); err == nil {
		profile.Goal = goal
	}

	if problems := metrics.ValidateUserData(profile, measurements, lifestyle); len(problems) > 0 {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error":   "Invalid user data",
			"code":    "INVALID_INPUT",
			"details": problems,
		})
	}

	tdee, err := metrics.CalculateTDEE(measurements.Weight, measurements.Height, profile.Age, profile.BiologicalSex, profile.ActivityLevel)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error(), "code": "INVALID_INPUT"})
	}
	targetCalories, err := metrics.CalculateTargetCalories(tdee, profile.Goal)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error(), "code": "INVALID_GOAL"})
	}

	plan, err := planner.GeneratePlan(ctx, profile, measurements, lifestyle, targetCalories, userID)
	if err != nil {
		var (
			goalErr  *nutrition.InvalidGoalError
			callErr  *nutrition.ModelCallError
			parseErr *nutrition.ParseError
		)
		switch {
		case errors.As(err, &goalErr):
			return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error(), "code": "INVALID_GOAL"})
		case errors.As(err, &callErr):
			return c.JSON(http.StatusBadGateway, map[string]any{"error": "Plan generation service unavailable", "code": "MODEL_CALL_FAILED"})
		case errors.As(err, &parseErr):
			return c.JSON(http.StatusBadGateway, map[string]any{"error": "Plan generation returned an unusable reply", "code": "PLAN_PARSE_FAILED"})
		default:
			log.Error().Err(err).Str("user_id", userID).Msg("unexpected plan generation failure")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate plan"})
		}
	}

	if err := store.InsertPlan(ctx, plan); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to save nutrition plan")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save plan"})
	}

	return c.JSON(http.StatusCreated, PlanResponse{NutritionalPlan: *plan, Status: planStatus(plan, time.Now().UTC())})
}

// GetPlansHandler returns the caller's plans, newest first, each annotated
// active or expired as of now.
func GetPlansHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	plans, err := store.ListPlans(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to list plans")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load plans"})
	}

	now := time.Now().UTC()
	out := make([]PlanResponse, 0, len(plans))
	for i := range plans {
		out = append(out, PlanResponse{NutritionalPlan: plans[i], Status: planStatus(&plans[i], now)})
	}
	return c.JSON(http.StatusOK, out)
}

// GetActivePlanHandler returns the most recent plan whose validity window
// still contains now, or 404.
func GetActivePlanHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	now := time.Now().UTC()
	plan, err := store.LatestActivePlan(ctx, userID, now)
	if errors.Is(err, database.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "No active plan"})
	}
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to load active plan")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load plan"})
	}
	return c.JSON(http.StatusOK, PlanResponse{NutritionalPlan: *plan, Status: "active"})
}
