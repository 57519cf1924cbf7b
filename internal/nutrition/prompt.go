package nutrition

import (
	"strconv"
	"strings"

	"nutrialert/internal/metrics"
)

// goalAliases maps the Spanish goal words accepted by the product UI to the
// canonical goal values. Anything outside this table (and the canonical
// values themselves) is an InvalidGoalError, never passed through.
var goalAliases = map[string]metrics.WeightGoal{
	"bajar":     metrics.GoalLose,
	"perder":    metrics.GoalLose,
	"adelgazar": metrics.GoalLose,
	"mantener":  metrics.GoalMaintain,
	"conservar": metrics.GoalMaintain,
	"subir":     metrics.GoalGain,
	"aumentar":  metrics.GoalGain,
	"ganar":     metrics.GoalGain,
	"engordar":  metrics.GoalGain,

	"lose":     metrics.GoalLose,
	"maintain": metrics.GoalMaintain,
	"gain":     metrics.GoalGain,
}

// NormalizeGoal maps a free-text goal word to its canonical value.
func NormalizeGoal(goal string) (metrics.WeightGoal, error) {
	if g, ok := goalAliases[strings.ToLower(strings.TrimSpace(goal))]; ok {
		return g, nil
	}
	return "", &InvalidGoalError{Goal: goal}
}

// planPromptTemplate is the fixed prompt sent to the generator. Placeholders
// are filled by literal substring substitution, not a templating engine.
// The meal plans themselves are written in Spanish for the product's users.
const planPromptTemplate = `You are an expert nutritionist generating personalized meal plans in Spanish.

Generate a complete weekly nutrition plan based on the following user data:

USER PROFILE:
- Biological sex: {biologicalSex}
- Age: {age} years
- Goal: {goal}
- Activity level: {activityLevel}

BODY MEASUREMENTS:
- Weight: {weight} kg
- Height: {height} cm
- Waist: {waist} cm
- Calorie target: {targetCalories} kcal/day

LIFESTYLE:
- Sleep hours: {sleepHours}
- Season: {season}

REQUIREMENTS:
1. Produce a plan for 7 days with 3 main meals (breakfast, lunch, dinner) and 2-3 snacks per day
2. Every meal must include:
   - Dish name
   - Short description
   - Approximate calories
   - Macronutrients (carbs, protein, fat in grams)
   - Main ingredients
   - Simple preparation instructions
   - Preparation time
3. Take into account:
   - The user's goal ({goal})
   - The season ({season})
   - Accessible, easy-to-prepare food
   - Nutritional variety
4. Include general recommendations, goal-specific recommendations and seasonal recommendations

Reply ONLY with a valid JSON object following this exact structure, no markdown and no prose around it:
{
  "userId": "{userId}",
  "goal": "{goal}",
  "targetCalories": {targetCalories},
  "dailyMealPlans": [
    {
      "day": "Día 1",
      "meals": {
        "breakfast": {"name": "", "description": "", "calories": 0, "macros": {"carbs": 0, "protein": 0, "fat": 0}, "ingredients": [], "preparation": "", "timeToPrepare": ""},
        "morningSnack": {},
        "lunch": {},
        "afternoonSnack": {},
        "dinner": {}
      },
      "totalCalories": 0,
      "totalMacros": {"carbs": 0, "protein": 0, "fat": 0}
    }
  ],
  "recommendations": {
    "general": [""],
    "specific": [""],
    "seasonal": [""]
  }
}`

// BuildPrompt fills the plan template from the user's profile and the locally
// computed calorie target. A missing waist becomes the literal "N/A"; missing
// sleep hours default to 7.
func BuildPrompt(profile metrics.UserProfile, m metrics.BodyMeasurements, l metrics.LifestyleData, targetCalories int, userID string) string {
	waist := "N/A"
	if m.Waist != nil {
		waist = formatFloat(*m.Waist)
	}
	sleep := "7"
	if l.SleepHours != nil {
		sleep = formatFloat(*l.SleepHours)
	}

	r := strings.NewReplacer(
		"{userId}", userID,
		"{biologicalSex}", string(profile.BiologicalSex),
		"{age}", strconv.Itoa(profile.Age),
		"{goal}", string(profile.Goal),
		"{activityLevel}", string(profile.ActivityLevel),
		"{weight}", formatFloat(m.Weight),
		"{height}", formatFloat(m.Height),
		"{waist}", waist,
		"{targetCalories}", strconv.Itoa(targetCalories),
		"{sleepHours}", sleep,
		"{season}", string(l.Season),
	)
	return r.Replace(planPromptTemplate)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
