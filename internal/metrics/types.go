package metrics

import "time"

type BiologicalSex string

const (
	SexMale   BiologicalSex = "male"
	SexFemale BiologicalSex = "female"
)

type ActivityLevel string

const (
	ActivitySedentary ActivityLevel = "sedentary"
	ActivityLight     ActivityLevel = "light"
	ActivityModerate  ActivityLevel = "moderate"
	ActivityHigh      ActivityLevel = "high"
)

type WeightGoal string

const (
	GoalLose     WeightGoal = "lose"
	GoalMaintain WeightGoal = "maintain"
	GoalGain     WeightGoal = "gain"
)

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
)

type Season string

const (
	SeasonSummer Season = "summer"
	SeasonWinter Season = "winter"
)

// UserProfile is the static part of a calculation request. It is supplied per
// request and never mutated.
type UserProfile struct {
	BiologicalSex BiologicalSex `json:"biologicalSex"`
	Age           int           `json:"age"`
	Goal          WeightGoal    `json:"goal"`
	ActivityLevel ActivityLevel `json:"activityLevel"`
}

// BodyMeasurements holds raw measurements in metric units (kg / cm).
// Waist, hip and neck are optional; waist gates the WHtR calculation.
type BodyMeasurements struct {
	Weight float64  `json:"weight"`
	Height float64  `json:"height"`
	Waist  *float64 `json:"waist,omitempty"`
	Hip    *float64 `json:"hip,omitempty"`
	Neck   *float64 `json:"neck,omitempty"`
}

type LifestyleData struct {
	SleepHours *float64 `json:"sleepHours,omitempty"`
	Season     Season   `json:"season"`
}

// Macros is a daily macronutrient target in grams.
type Macros struct {
	Carbs   int `json:"carbs"`
	Protein int `json:"protein"`
	Fat     int `json:"fat"`
}

// HealthMetrics is the immutable result of one calculation. A new record is
// produced on every call; history is a series of these keyed by user.
type HealthMetrics struct {
	ID           string           `json:"id"`
	UserID       string           `json:"userId"`
	Date         time.Time        `json:"date"`
	Profile      UserProfile      `json:"profile"`
	Measurements BodyMeasurements `json:"measurements"`
	Lifestyle    LifestyleData    `json:"lifestyle"`

	BMI            float64   `json:"bmi"`
	WHtR           *float64  `json:"whtr,omitempty"`
	TDEE           int       `json:"tdee"`
	TargetCalories int       `json:"targetCalories"`
	Macros         Macros    `json:"macros"`
	RiskLevel      RiskLevel `json:"riskLevel"`
	HealthScore    int       `json:"healthScore"`
}
