package nutrition

import (
	"time"

	"nutrialert/internal/metrics"
)

// PlanValidity is how long a generated plan stays active. Fixed policy,
// evaluated against the clock at read time; nothing expires plans actively.
const PlanValidity = 30 * 24 * time.Hour

// Meal is a single dish inside a daily plan, as described by the generator.
type Meal struct {
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Calories      int            `json:"calories"`
	Macros        metrics.Macros `json:"macros"`
	Ingredients   []string       `json:"ingredients"`
	Preparation   string         `json:"preparation"`
	TimeToPrepare string         `json:"timeToPrepare"`
}

// DayMeals groups the meals of one day. Breakfast, lunch and dinner are
// expected; snacks are optional and frequently omitted by the generator.
type DayMeals struct {
	Breakfast      *Meal `json:"breakfast,omitempty"`
	MorningSnack   *Meal `json:"morningSnack,omitempty"`
	Lunch          *Meal `json:"lunch,omitempty"`
	AfternoonSnack *Meal `json:"afternoonSnack,omitempty"`
	Dinner         *Meal `json:"dinner,omitempty"`
	EveningSnack   *Meal `json:"eveningSnack,omitempty"`
}

func (d DayMeals) all() []*Meal {
	return []*Meal{d.Breakfast, d.MorningSnack, d.Lunch, d.AfternoonSnack, d.Dinner, d.EveningSnack}
}

type DailyMealPlan struct {
	Day           string         `json:"day"`
	Meals         DayMeals       `json:"meals"`
	TotalCalories int            `json:"totalCalories"`
	TotalMacros   metrics.Macros `json:"totalMacros"`
}

// Recommendations holds the three advice buckets. Slices are always non-nil;
// a bucket the generator skipped comes back empty, never absent.
type Recommendations struct {
	General  []string `json:"general"`
	Specific []string `json:"specific"`
	Seasonal []string `json:"seasonal"`
}

// NutritionalPlan is a generated weekly meal plan owned by a user. Goal and
// targetCalories are the locally computed values, never values echoed back by
// the generator.
type NutritionalPlan struct {
	ID              string             `json:"id"`
	UserID          string             `json:"userId"`
	Goal            metrics.WeightGoal `json:"goal"`
	TargetCalories  int                `json:"targetCalories"`
	DailyMealPlans  []DailyMealPlan    `json:"dailyMealPlans"`
	Recommendations Recommendations    `json:"recommendations"`
	CreatedAt       time.Time          `json:"createdAt"`
	ValidUntil      time.Time          `json:"validUntil"`
}

// Active reports whether the plan is still inside its validity window.
func (p *NutritionalPlan) Active(now time.Time) bool {
	return now.Before(p.ValidUntil)
}
