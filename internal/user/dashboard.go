package user

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"nutrialert/internal/database"
	"nutrialert/internal/gamification"
	"nutrialert/internal/metrics"
	"nutrialert/internal/utility"
)

// DashboardResponse is the app's hydration aggregate: latest indicators,
// the currently valid plan and the gamification state in one round trip.
type DashboardResponse struct {
	LatestMetrics *metrics.HealthMetrics `json:"latestMetrics"`
	ActivePlan    *PlanResponse          `json:"activePlan"`
	Gamification  *gamification.Data     `json:"gamification"`
}

// latestMetrics consults the in-memory cache before falling back to the
// database. Cache misses are filled on the way out.
func latestMetrics(ctx context.Context, userID string) (*metrics.HealthMetrics, error) {
	if rec, ok := metricsCache.Latest(userID); ok {
		return rec, nil
	}
	rec, err := store.LatestHealthMetrics(ctx, userID)
	if err != nil {
		return nil, err
	}
	metricsCache.Put(rec)
	return rec, nil
}

// GetDashboardHandler fetches the three dashboard sections concurrently.
// A user with no history gets nulls, not an error.
func GetDashboardHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	now := time.Now().UTC()

	var resp DashboardResponse
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rec, err := latestMetrics(gctx, userID)
		if errors.Is(err, database.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		resp.LatestMetrics = rec
		return nil
	})

	g.Go(func() error {
		plan, err := store.LatestActivePlan(gctx, userID, now)
		if errors.Is(err, database.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		resp.ActivePlan = &PlanResponse{NutritionalPlan: *plan, Status: "active"}
		return nil
	})

	g.Go(func() error {
		data, err := loadGamification(gctx, userID, now)
		if err != nil {
			return err
		}
		resp.Gamification = data
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to assemble dashboard")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load dashboard"})
	}
	return c.JSON(http.StatusOK, resp)
}
