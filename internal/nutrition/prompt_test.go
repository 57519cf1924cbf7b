package nutrition

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutrialert/internal/metrics"
)

func TestNormalizeGoal(t *testing.T) {
	for input, want := range map[string]metrics.WeightGoal{
		"bajar":     metrics.GoalLose,
		"perder":    metrics.GoalLose,
		"adelgazar": metrics.GoalLose,
		"mantener":  metrics.GoalMaintain,
		"conservar": metrics.GoalMaintain,
		"subir":     metrics.GoalGain,
		"aumentar":  metrics.GoalGain,
		"ganar":     metrics.GoalGain,
		"engordar":  metrics.GoalGain,
		"lose":      metrics.GoalLose,
		"MANTENER":  metrics.GoalMaintain,
		" gain ":    metrics.GoalGain,
	} {
		got, err := NormalizeGoal(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := NormalizeGoal("get shredded")
	var igErr *InvalidGoalError
	require.ErrorAs(t, err, &igErr)
	assert.Equal(t, "get shredded", igErr.Goal)
}

func TestBuildPromptSubstitution(t *testing.T) {
	waist := 85.0
	sleep := 6.5
	profile := metrics.UserProfile{BiologicalSex: metrics.SexMale, Age: 32, Goal: metrics.GoalLose, ActivityLevel: metrics.ActivityModerate}
	m := metrics.BodyMeasurements{Weight: 78.5, Height: 175, Waist: &waist}
	l := metrics.LifestyleData{SleepHours: &sleep, Season: metrics.SeasonWinter}

	prompt := BuildPrompt(profile, m, l, 2150, "user-42")

	assert.Contains(t, prompt, "- Biological sex: male")
	assert.Contains(t, prompt, "- Age: 32 years")
	assert.Contains(t, prompt, "- Weight: 78.5 kg")
	assert.Contains(t, prompt, "- Waist: 85 cm")
	assert.Contains(t, prompt, "- Calorie target: 2150 kcal/day")
	assert.Contains(t, prompt, "- Sleep hours: 6.5")
	assert.Contains(t, prompt, `"userId": "user-42"`)
	assert.Contains(t, prompt, `"targetCalories": 2150`)
	assert.NotContains(t, prompt, "{age}")
	assert.False(t, strings.Contains(prompt, "{weight}"), "all placeholders must be substituted")
}

func TestBuildPromptDefaults(t *testing.T) {
	profile := metrics.UserProfile{BiologicalSex: metrics.SexFemale, Age: 28, Goal: metrics.GoalMaintain, ActivityLevel: metrics.ActivityLight}
	m := metrics.BodyMeasurements{Weight: 60, Height: 165}
	l := metrics.LifestyleData{Season: metrics.SeasonSummer}

	prompt := BuildPrompt(profile, m, l, 2000, "user-7")

	assert.Contains(t, prompt, "- Waist: N/A cm")
	assert.Contains(t, prompt, "- Sleep hours: 7")
}
