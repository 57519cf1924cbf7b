package user

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"nutrialert/internal/database"
	"nutrialert/internal/gamification"
	"nutrialert/internal/utility"
)

// streakWindow bounds how far back the streak query looks. Streaks longer
// than this are counted at the cap.
const streakWindow = 90 * 24 * time.Hour

func loadGamification(ctx context.Context, userID string, now time.Time) (*gamification.Data, error) {
	dates, err := store.MetricDates(ctx, userID, now.Add(-streakWindow))
	if err != nil {
		return nil, err
	}
	metricsCount, err := store.CountHealthMetrics(ctx, userID)
	if err != nil {
		return nil, err
	}
	planCount, err := store.CountPlans(ctx, userID)
	if err != nil {
		return nil, err
	}

	var lastPlanAt *time.Time
	if t, err := store.LatestPlanCreatedAt(ctx, userID); err == nil {
		lastPlanAt = &t
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	in := gamification.Inputs{
		MetricDates:  dates,
		MetricsCount: metricsCount,
		PlanCount:    planCount,
		LastPlanAt:   lastPlanAt,
	}
	if latest, err := latestMetrics(ctx, userID); err == nil {
		in.LatestHealthScore = latest.HealthScore
		in.LatestSleepHours = latest.Lifestyle.SleepHours
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	data := gamification.Evaluate(in, now)
	return &data, nil
}

// GetGamificationHandler returns points, streak, badges and missions derived
// from the caller's stored history.
func GetGamificationHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	data, err := loadGamification(ctx, userID, time.Now().UTC())
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to evaluate gamification")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load gamification"})
	}
	return c.JSON(http.StatusOK, data)
}
