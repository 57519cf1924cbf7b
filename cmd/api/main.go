package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"nutrialert/internal/database"
	"nutrialert/internal/nutrition"
	"nutrialert/internal/server"
	"nutrialert/internal/user"
)

// metricsCacheSize bounds the in-memory latest-metrics cache.
const metricsCacheSize = 4096

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info().Msg("shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// Give in-flight requests 5 seconds to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	done <- true
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	db, err := database.NewService()
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to database")
	}
	defer db.Close()

	cache, err := database.NewMetricsCache(metricsCacheSize)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create metrics cache")
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set; plan generation will fail until configured")
	}
	planner := nutrition.NewPlanner(nutrition.NewGeminiClient(apiKey))

	user.InitUserPackage(db.Store(), cache, planner)

	apiServer := server.NewServer(db)

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, done)

	log.Info().Str("addr", apiServer.Addr).Msg("starting server")
	if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server error")
	}

	<-done
	log.Info().Msg("graceful shutdown complete")
}
