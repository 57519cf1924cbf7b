package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nutrialert/internal/metrics"
	"nutrialert/internal/nutrition"
)

// historyPageSize caps every descending history read.
const historyPageSize = 20

// ErrNotFound is returned when a single-row lookup matches nothing.
var ErrNotFound = errors.New("record not found")

// UserPreferences are the profile fields the application owns. Identity
// fields (name, email) live with the external identity provider.
type UserPreferences struct {
	UserID        string    `json:"userId"`
	Goal          string    `json:"goal"`
	ActivityLevel string    `json:"activityLevel"`
	Season        string    `json:"season"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Store is the hand-written query layer over the pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) UpsertPreferences(ctx context.Context, p *UserPreferences) error {
	query := `
        INSERT INTO user_preferences (user_id, goal, activity_level, season, updated_at)
        VALUES ($1, $2, $3, $4, NOW())
        ON CONFLICT (user_id) DO UPDATE
        SET goal = $2, activity_level = $3, season = $4, updated_at = NOW()
        RETURNING updated_at
    `

	err := s.pool.QueryRow(ctx, query, p.UserID, p.Goal, p.ActivityLevel, p.Season).Scan(&p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert preferences: %w", err)
	}
	return nil
}

func (s *Store) GetPreferences(ctx context.Context, userID string) (*UserPreferences, error) {
	query := `
        SELECT user_id, goal, activity_level, season, updated_at
        FROM user_preferences
        WHERE user_id = $1
    `

	var p UserPreferences
	err := s.pool.QueryRow(ctx, query, userID).Scan(&p.UserID, &p.Goal, &p.ActivityLevel, &p.Season, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	return &p, nil
}

func (s *Store) InsertHealthMetrics(ctx context.Context, rec *metrics.HealthMetrics) error {
	profile, err := json.Marshal(rec.Profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	measurements, err := json.Marshal(rec.Measurements)
	if err != nil {
		return fmt.Errorf("marshal measurements: %w", err)
	}
	lifestyle, err := json.Marshal(rec.Lifestyle)
	if err != nil {
		return fmt.Errorf("marshal lifestyle: %w", err)
	}
	macros, err := json.Marshal(rec.Macros)
	if err != nil {
		return fmt.Errorf("marshal macros: %w", err)
	}

	query := `
        INSERT INTO health_metrics
            (id, user_id, recorded_at, profile, measurements, lifestyle,
             bmi, whtr, tdee, target_calories, macros, risk_level, health_score)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `

	_, err = s.pool.Exec(ctx, query,
		rec.ID, rec.UserID, rec.Date, profile, measurements, lifestyle,
		rec.BMI, rec.WHtR, rec.TDEE, rec.TargetCalories, macros, string(rec.RiskLevel), rec.HealthScore,
	)
	if err != nil {
		return fmt.Errorf("insert health metrics: %w", err)
	}
	return nil
}

func (s *Store) ListHealthMetrics(ctx context.Context, userID string) ([]metrics.HealthMetrics, error) {
	query := `
        SELECT id, user_id, recorded_at, profile, measurements, lifestyle,
               bmi, whtr, tdee, target_calories, macros, risk_level, health_score
        FROM health_metrics
        WHERE user_id = $1
        ORDER BY recorded_at DESC
        LIMIT $2
    `

	rows, err := s.pool.Query(ctx, query, userID, historyPageSize)
	if err != nil {
		return nil, fmt.Errorf("list health metrics: %w", err)
	}
	defer rows.Close()

	var records []metrics.HealthMetrics
	for rows.Next() {
		rec, err := scanHealthMetrics(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func (s *Store) LatestHealthMetrics(ctx context.Context, userID string) (*metrics.HealthMetrics, error) {
	query := `
        SELECT id, user_id, recorded_at, profile, measurements, lifestyle,
               bmi, whtr, tdee, target_calories, macros, risk_level, health_score
        FROM health_metrics
        WHERE user_id = $1
        ORDER BY recorded_at DESC
        LIMIT 1
    `

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("latest health metrics: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return scanHealthMetrics(rows)
}

// MetricDates returns the distinct calendar days (UTC) with at least one
// metrics record since the given time, newest first. Feeds streak scoring.
func (s *Store) MetricDates(ctx context.Context, userID string, since time.Time) ([]time.Time, error) {
	query := `
        SELECT DISTINCT date_trunc('day', recorded_at AT TIME ZONE 'UTC')
        FROM health_metrics
        WHERE user_id = $1 AND recorded_at >= $2
        ORDER BY 1 DESC
    `

	rows, err := s.pool.Query(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("metric dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func (s *Store) CountHealthMetrics(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM health_metrics WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count health metrics: %w", err)
	}
	return n, nil
}

func (s *Store) InsertPlan(ctx context.Context, plan *nutrition.NutritionalPlan) error {
	days, err := json.Marshal(plan.DailyMealPlans)
	if err != nil {
		return fmt.Errorf("marshal daily meal plans: %w", err)
	}
	recs, err := json.Marshal(plan.Recommendations)
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}

	query := `
        INSERT INTO nutrition_plans
            (id, user_id, goal, target_calories, daily_meal_plans, recommendations, created_at, valid_until)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `

	_, err = s.pool.Exec(ctx, query,
		plan.ID, plan.UserID, string(plan.Goal), plan.TargetCalories, days, recs, plan.CreatedAt, plan.ValidUntil,
	)
	if err != nil {
		return fmt.Errorf("insert nutrition plan: %w", err)
	}
	return nil
}

func (s *Store) ListPlans(ctx context.Context, userID string) ([]nutrition.NutritionalPlan, error) {
	query := `
        SELECT id, user_id, goal, target_calories, daily_meal_plans, recommendations, created_at, valid_until
        FROM nutrition_plans
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `

	rows, err := s.pool.Query(ctx, query, userID, historyPageSize)
	if err != nil {
		return nil, fmt.Errorf("list nutrition plans: %w", err)
	}
	defer rows.Close()

	var plans []nutrition.NutritionalPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *plan)
	}
	return plans, rows.Err()
}

// LatestActivePlan returns the newest plan whose validity window still
// contains now. Validity is only ever evaluated here, at read time.
func (s *Store) LatestActivePlan(ctx context.Context, userID string, now time.Time) (*nutrition.NutritionalPlan, error) {
	query := `
        SELECT id, user_id, goal, target_calories, daily_meal_plans, recommendations, created_at, valid_until
        FROM nutrition_plans
        WHERE user_id = $1 AND valid_until > $2
        ORDER BY created_at DESC
        LIMIT 1
    `

	rows, err := s.pool.Query(ctx, query, userID, now)
	if err != nil {
		return nil, fmt.Errorf("latest active plan: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return scanPlan(rows)
}

func (s *Store) CountPlans(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM nutrition_plans WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count nutrition plans: %w", err)
	}
	return n, nil
}

// LatestPlanCreatedAt returns when the user last generated a plan, or
// ErrNotFound if they never have.
func (s *Store) LatestPlanCreatedAt(ctx context.Context, userID string) (time.Time, error) {
	var t time.Time
	err := s.pool.QueryRow(ctx,
		`SELECT created_at FROM nutrition_plans WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`,
		userID).Scan(&t)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("latest plan created_at: %w", err)
	}
	return t, nil
}

func scanHealthMetrics(rows pgx.Rows) (*metrics.HealthMetrics, error) {
	var (
		rec          metrics.HealthMetrics
		profile      []byte
		measurements []byte
		lifestyle    []byte
		macros       []byte
		risk         string
	)

	err := rows.Scan(
		&rec.ID, &rec.UserID, &rec.Date, &profile, &measurements, &lifestyle,
		&rec.BMI, &rec.WHtR, &rec.TDEE, &rec.TargetCalories, &macros, &risk, &rec.HealthScore,
	)
	if err != nil {
		return nil, fmt.Errorf("scan health metrics: %w", err)
	}

	if err := json.Unmarshal(profile, &rec.Profile); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	if err := json.Unmarshal(measurements, &rec.Measurements); err != nil {
		return nil, fmt.Errorf("unmarshal measurements: %w", err)
	}
	if err := json.Unmarshal(lifestyle, &rec.Lifestyle); err != nil {
		return nil, fmt.Errorf("unmarshal lifestyle: %w", err)
	}
	if err := json.Unmarshal(macros, &rec.Macros); err != nil {
		return nil, fmt.Errorf("unmarshal macros: %w", err)
	}
	rec.RiskLevel = metrics.RiskLevel(risk)
	return &rec, nil
}

func scanPlan(rows pgx.Rows) (*nutrition.NutritionalPlan, error) {
	var (
		plan nutrition.NutritionalPlan
		goal string
		days []byte
		recs []byte
	)

	err := rows.Scan(&plan.ID, &plan.UserID, &goal, &plan.TargetCalories, &days, &recs, &plan.CreatedAt, &plan.ValidUntil)
	if err != nil {
		return nil, fmt.Errorf("scan nutrition plan: %w", err)
	}

	if err := json.Unmarshal(days, &plan.DailyMealPlans); err != nil {
		return nil, fmt.Errorf("unmarshal daily meal plans: %w", err)
	}
	if err := json.Unmarshal(recs, &plan.Recommendations); err != nil {
		return nil, fmt.Errorf("unmarshal recommendations: %w", err)
	}
	plan.Goal = metrics.WeightGoal(goal)
	return &plan, nil
}
