// Package gamification derives the points, streak, badges and missions shown
// on the user dashboard. Everything is computed from the stored metrics and
// plan history on demand; nothing gamification-related is persisted.
package gamification

import "time"

type MissionType string

const (
	MissionDaily  MissionType = "daily"
	MissionWeekly MissionType = "weekly"
)

const (
	pointsPerMetricsEntry = 50
	pointsPerPlan         = 100
)

type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Unlocked    bool   `json:"unlocked"`
}

type Mission struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Completed    bool        `json:"completed"`
	RewardPoints int         `json:"rewardPoints"`
	Type         MissionType `json:"type"`
}

type Data struct {
	HealthScore int       `json:"healthScore"`
	Points      int       `json:"points"`
	Streak      int       `json:"streak"`
	Badges      []Badge   `json:"badges"`
	Missions    []Mission `json:"missions"`
}

// Inputs is everything the evaluation needs, already fetched by the caller.
type Inputs struct {
	MetricDates       []time.Time // distinct record days, newest first
	MetricsCount      int
	PlanCount         int
	LastPlanAt        *time.Time
	LatestHealthScore int      // 0 when no record exists
	LatestSleepHours  *float64 // from the latest record, nil if unknown
}

// Streak counts consecutive calendar days with at least one record, walking
// back from today. A streak survives until a full day is skipped: if the most
// recent record is from yesterday the chain is still alive.
func Streak(dates []time.Time, now time.Time) int {
	if len(dates) == 0 {
		return 0
	}

	day := func(t time.Time) time.Time {
		t = t.UTC()
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}

	expected := day(now)
	if !day(dates[0]).Equal(expected) {
		expected = expected.AddDate(0, 0, -1)
		if !day(dates[0]).Equal(expected) {
			return 0
		}
	}

	streak := 0
	for _, d := range dates {
		if !day(d).Equal(expected) {
			break
		}
		streak++
		expected = expected.AddDate(0, 0, -1)
	}
	return streak
}

// Evaluate scores the full gamification state at the given instant.
func Evaluate(in Inputs, now time.Time) Data {
	streak := Streak(in.MetricDates, now)

	missions := []Mission{
		{
			ID:           "record-metrics",
			Name:         "Record Metrics",
			Description:  "Update your body measurements today",
			Completed:    recordedToday(in.MetricDates, now),
			RewardPoints: 50,
			Type:         MissionDaily,
		},
		{
			ID:           "sleep-7h",
			Name:         "Sleep at least 7 hours",
			Description:  "Rest at least 7 hours tonight",
			Completed:    in.LatestSleepHours != nil && *in.LatestSleepHours >= 7,
			RewardPoints: 30,
			Type:         MissionDaily,
		},
		{
			ID:           "weekly-plan",
			Name:         "Generate a meal plan",
			Description:  "Request a fresh nutrition plan this week",
			Completed:    in.LastPlanAt != nil && now.Sub(*in.LastPlanAt) <= 7*24*time.Hour,
			RewardPoints: 100,
			Type:         MissionWeekly,
		},
	}

	points := in.MetricsCount*pointsPerMetricsEntry + in.PlanCount*pointsPerPlan
	for _, m := range missions {
		if m.Completed {
			points += m.RewardPoints
		}
	}

	badges := []Badge{
		{
			ID:          "first-step",
			Name:        "First Step",
			Description: "Completed your first assessment",
			Icon:        "🎯",
			Unlocked:    in.MetricsCount >= 1,
		},
		{
			ID:          "consistent",
			Name:        "Consistent",
			Description: "7 consecutive days recording metrics",
			Icon:        "🔥",
			Unlocked:    streak >= 7,
		},
		{
			ID:          "planner",
			Name:        "Planner",
			Description: "Generated a personalized meal plan",
			Icon:        "🥗",
			Unlocked:    in.PlanCount >= 1,
		},
		{
			ID:          "healthy-zone",
			Name:        "Healthy Zone",
			Description: "Reached a health score of 80 or more",
			Icon:        "💚",
			Unlocked:    in.LatestHealthScore >= 80,
		},
	}

	return Data{
		HealthScore: in.LatestHealthScore,
		Points:      points,
		Streak:      streak,
		Badges:      badges,
		Missions:    missions,
	}
}

func recordedToday(dates []time.Time, now time.Time) bool {
	if len(dates) == 0 {
		return false
	}
	d := dates[0].UTC()
	n := now.UTC()
	return d.Year() == n.Year() && d.YearDay() == n.YearDay()
}
