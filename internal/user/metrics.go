package user

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"nutrialert/internal/metrics"
	"nutrialert/internal/utility"
)

// MetricsRequest is one calculation input: who the user is physiologically,
// what was measured, and the lifestyle context.
type MetricsRequest struct {
	Profile      metrics.UserProfile      `json:"profile"`
	Measurements metrics.BodyMeasurements `json:"measurements"`
	Lifestyle    metrics.LifestyleData    `json:"lifestyle"`
}

// SaveHealthMetricsHandler validates the input, derives the full set of
// indicators and persists the resulting record.
func SaveHealthMetricsHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	var req MetricsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	rec, err := metrics.Compute(userID, req.Profile, req.Measurements, req.Lifestyle)
	if err != nil {
		var verr *metrics.ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusBadRequest, map[string]any{
				"error":   "Invalid user data",
				"details": verr.Problems,
			})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := store.InsertHealthMetrics(ctx, rec); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to save health metrics")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save metrics"})
	}
	metricsCache.Put(rec)

	return c.JSON(http.StatusCreated, rec)
}

// GetHealthMetricsHandler returns the caller's metrics history, newest first.
func GetHealthMetricsHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	records, err := store.ListHealthMetrics(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to list health metrics")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load metrics"})
	}
	if records == nil {
		records = []metrics.HealthMetrics{}
	}
	return c.JSON(http.StatusOK, records)
}
