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

// UpdateProfileRequest captures the preference fields the application owns.
// Identity fields (name, email) belong to the external identity provider.
type UpdateProfileRequest struct {
	Goal          string `json:"goal" form:"goal"`
	ActivityLevel string `json:"activityLevel" form:"activityLevel"`
	Season        string `json:"season" form:"season"`
}

func defaultPreferences(userID string) *database.UserPreferences {
	return &database.UserPreferences{
		UserID:        userID,
		Goal:          string(metrics.GoalMaintain),
		ActivityLevel: string(metrics.ActivitySedentary),
		Season:        string(metrics.SeasonSummer),
		UpdatedAt:     time.Time{},
	}
}

// GetProfileHandler returns the caller's stored preferences, falling back to
// the defaults for users who never saved any.
func GetProfileHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	prefs, err := store.GetPreferences(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return c.JSON(http.StatusOK, defaultPreferences(userID))
	}
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to load preferences")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load profile"})
	}
	return c.JSON(http.StatusOK, prefs)
}

// UpdateProfileHandler validates and upserts the caller's preferences.
// The goal accepts the same aliases the plan generator accepts.
func UpdateProfileHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	goal, err := nutrition.NormalizeGoal(req.Goal)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	level := metrics.ActivityLevel(req.ActivityLevel)
	switch level {
	case metrics.ActivitySedentary, metrics.ActivityLight, metrics.ActivityModerate, metrics.ActivityHigh:
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "activityLevel must be sedentary, light, moderate or high"})
	}

	season := metrics.Season(req.Season)
	if season != metrics.SeasonSummer && season != metrics.SeasonWinter {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "season must be summer or winter"})
	}

	prefs := &database.UserPreferences{
		UserID:        userID,
		Goal:          string(goal),
		ActivityLevel: string(level),
		Season:        string(season),
	}
	if err := store.UpsertPreferences(ctx, prefs); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to save preferences")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save profile"})
	}
	return c.JSON(http.StatusOK, prefs)
}
