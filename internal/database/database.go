// Package database owns the connection pool and all SQL. Persistence is a
// thin layer: callers hand it fully formed records and read back descending
// history pages; no business rules live here.
package database

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"
)

// Service represents a service that interacts with the database.
type Service interface {
	// Health returns a map of health status information about the pool.
	Health() map[string]string

	// Close terminates the database connection pool.
	Close()

	// Store returns the query layer bound to this pool.
	Store() *Store
}

type service struct {
	pool  *pgxpool.Pool
	store *Store
}

var (
	dbname   = os.Getenv("NUTRIALERT_DB_DATABASE")
	password = os.Getenv("NUTRIALERT_DB_PASSWORD")
	username = os.Getenv("NUTRIALERT_DB_USERNAME")
	port     = os.Getenv("NUTRIALERT_DB_PORT")
	host     = os.Getenv("NUTRIALERT_DB_HOST")
	sslmode  = os.Getenv("NUTRIALERT_DB_SSLMODE")

	dbInstance *service
)

func NewService() (Service, error) {
	// Reuse connection
	if dbInstance != nil {
		return dbInstance, nil
	}

	if sslmode == "" {
		sslmode = "disable"
	}
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		username, password, host, port, dbname, sslmode)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	dbInstance = &service{
		pool:  pool,
		store: NewStore(pool),
	}
	return dbInstance, nil
}

func (s *service) Store() *Store {
	return s.store
}

// Health checks the health of the database connection and reports pool stats.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.pool.Ping(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		log.Error().Err(err).Msg("database health check failed")
		return stats
	}

	poolStats := s.pool.Stat()
	stats["status"] = "up"
	stats["total_conns"] = strconv.Itoa(int(poolStats.TotalConns()))
	stats["idle_conns"] = strconv.Itoa(int(poolStats.IdleConns()))
	stats["acquired_conns"] = strconv.Itoa(int(poolStats.AcquiredConns()))
	stats["max_conns"] = strconv.Itoa(int(poolStats.MaxConns()))
	stats["acquire_count"] = strconv.FormatInt(poolStats.AcquireCount(), 10)
	stats["acquire_duration_ms"] = strconv.FormatInt(poolStats.AcquireDuration().Milliseconds(), 10)

	if poolStats.AcquiredConns() > (poolStats.MaxConns() * 8 / 10) { // 80% capacity
		stats["message"] = "The database connection pool is experiencing heavy load."
	}
	if poolStats.EmptyAcquireCount() > 0 {
		stats["message"] = "The application has tried to acquire a connection from an empty pool. Consider increasing max connections."
	}

	return stats
}

// Close closes the database connection pool.
func (s *service) Close() {
	log.Info().Str("database", dbname).Msg("disconnecting from database")
	s.pool.Close()
}
