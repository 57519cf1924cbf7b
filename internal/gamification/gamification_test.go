package gamification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC)

func days(offsets ...int) []time.Time {
	out := make([]time.Time, 0, len(offsets))
	for _, off := range offsets {
		d := now.AddDate(0, 0, -off)
		out = append(out, time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC))
	}
	return out
}

func TestStreak(t *testing.T) {
	assert.Equal(t, 0, Streak(nil, now))
	assert.Equal(t, 1, Streak(days(0), now))
	assert.Equal(t, 3, Streak(days(0, 1, 2), now))

	// A record from yesterday keeps the chain alive.
	assert.Equal(t, 2, Streak(days(1, 2), now))

	// A skipped day breaks it.
	assert.Equal(t, 0, Streak(days(2, 3), now))
	assert.Equal(t, 2, Streak(days(0, 1, 3, 4), now))
}

func TestEvaluatePointsAndMissions(t *testing.T) {
	sleep := 8.0
	lastPlan := now.AddDate(0, 0, -2)
	data := Evaluate(Inputs{
		MetricDates:       days(0, 1, 2),
		MetricsCount:      10,
		PlanCount:         2,
		LastPlanAt:        &lastPlan,
		LatestHealthScore: 85,
		LatestSleepHours:  &sleep,
	}, now)

	// 10*50 history + 2*100 plans + 50+30+100 completed missions.
	assert.Equal(t, 880, data.Points)
	assert.Equal(t, 3, data.Streak)
	assert.Equal(t, 85, data.HealthScore)

	for _, m := range data.Missions {
		assert.True(t, m.Completed, m.ID)
	}
}

func TestEvaluateIncompleteMissions(t *testing.T) {
	sleep := 6.0
	lastPlan := now.AddDate(0, 0, -10)
	data := Evaluate(Inputs{
		MetricDates:       days(1),
		MetricsCount:      1,
		PlanCount:         1,
		LastPlanAt:        &lastPlan,
		LatestHealthScore: 60,
		LatestSleepHours:  &sleep,
	}, now)

	completed := map[string]bool{}
	for _, m := range data.Missions {
		completed[m.ID] = m.Completed
	}
	assert.False(t, completed["record-metrics"])
	assert.False(t, completed["sleep-7h"])
	assert.False(t, completed["weekly-plan"])

	// 1*50 + 1*100, no mission rewards.
	assert.Equal(t, 150, data.Points)
}

func TestEvaluateBadges(t *testing.T) {
	data := Evaluate(Inputs{}, now)
	for _, b := range data.Badges {
		assert.False(t, b.Unlocked, b.ID)
	}

	data = Evaluate(Inputs{
		MetricDates:       days(0, 1, 2, 3, 4, 5, 6),
		MetricsCount:      7,
		PlanCount:         1,
		LatestHealthScore: 82,
	}, now)

	unlocked := map[string]bool{}
	for _, b := range data.Badges {
		unlocked[b.ID] = b.Unlocked
	}
	require.Len(t, unlocked, 4)
	assert.True(t, unlocked["first-step"])
	assert.True(t, unlocked["consistent"])
	assert.True(t, unlocked["planner"])
	assert.True(t, unlocked["healthy-zone"])
}
