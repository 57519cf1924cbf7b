package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"nutrialert/internal/auth"
	"nutrialert/internal/user"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(LoggerMiddleware)

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Platform"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Operator endpoints, deliberately outside the auth group.
	e.GET("/health", s.healthHandler)
	e.GET("/health/system", s.systemHealthHandler)

	// Protected routes
	api := e.Group("/api")
	api.Use(auth.JwtAuthMiddleware)

	api.GET("/profile", user.GetProfileHandler)
	api.PUT("/profile", user.UpdateProfileHandler)

	api.POST("/metrics", user.SaveHealthMetricsHandler)
	api.GET("/metrics", user.GetHealthMetricsHandler)

	api.POST("/plans", user.GeneratePlanHandler)
	api.GET("/plans", user.GetPlansHandler)
	api.GET("/plans/active", user.GetActivePlanHandler)

	api.GET("/gamification", user.GetGamificationHandler)
	api.GET("/dashboard", user.GetDashboardHandler)

	return e
}

func (s *Server) healthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, s.db.Health())
}

// LoggerMiddleware binds a request-scoped logger carrying the request id.
// The id is propagated back to the client for support correlation.
func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Response().Header().Set("X-Request-ID", requestID)

		logger := log.With().Str("request_id", requestID).Logger()
		c.Set("logger", &logger)

		return next(c)
	}
}
