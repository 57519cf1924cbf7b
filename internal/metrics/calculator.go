// Package metrics converts raw body and lifestyle measurements into derived
// health indicators: BMI, waist-to-height ratio, TDEE (Mifflin-St Jeor),
// calorie and macronutrient targets, a three-tier risk level and a 0-100
// health score. All functions are pure; Compute is the aggregate entry point.
package metrics

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// activityFactors maps activity levels to their TDEE multiplier. This is the
// single source of truth for valid activity levels; it also backs input
// validation, so an unknown level is rejected rather than silently defaulted.
var activityFactors = map[ActivityLevel]float64{
	ActivitySedentary: 1.2,
	ActivityLight:     1.375,
	ActivityModerate:  1.55,
	ActivityHigh:      1.725,
}

// activityBonus is the health-score bonus per activity level.
var activityBonus = map[ActivityLevel]int{
	ActivitySedentary: 0,
	ActivityLight:     5,
	ActivityModerate:  10,
	ActivityHigh:      15,
}

// goalPolicy is the canonical calorie/macro policy table. Every call site
// routes through it so the adjustment factor and macro ratios cannot diverge.
// Protein and carbs convert at 4 kcal/g, fat at 9 kcal/g.
var goalPolicy = map[WeightGoal]struct {
	CalorieFactor float64
	ProteinRatio  float64
	FatRatio      float64
}{
	GoalLose:     {CalorieFactor: 0.85, ProteinRatio: 0.35, FatRatio: 0.25},
	GoalMaintain: {CalorieFactor: 1.0, ProteinRatio: 0.25, FatRatio: 0.25},
	GoalGain:     {CalorieFactor: 1.15, ProteinRatio: 0.20, FatRatio: 0.30},
}

// ValidationError reports every out-of-range or malformed input field at once.
// It is advisory: the caller decides whether to reject the request.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid user data: %d problem(s)", len(e.Problems))
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }
func round2(x float64) float64 { return math.Round(x*100) / 100 }

// CalculateBMI returns weight(kg) / height(m)^2 rounded to one decimal.
func CalculateBMI(weight, height float64) float64 {
	m := height / 100
	return round1(weight / (m * m))
}

// CalculateWHtR returns waist/height rounded to two decimals. Callers must
// only invoke it when a waist measurement exists.
func CalculateWHtR(waist, height float64) float64 {
	return round2(waist / height)
}

// CalculateTDEE estimates total daily energy expenditure: Mifflin-St Jeor
// basal rate scaled by the activity factor, rounded to the nearest kcal.
func CalculateTDEE(weight, height float64, age int, sex BiologicalSex, level ActivityLevel) (int, error) {
	bmr := 10*weight + 6.25*height - 5*float64(age)
	if sex == SexMale {
		bmr += 5
	} else {
		bmr -= 161
	}

	factor, ok := activityFactors[level]
	if !ok {
		return 0, fmt.Errorf("unknown activity level %q", level)
	}
	return int(math.Round(bmr * factor)), nil
}

// CalculateTargetCalories applies the goal adjustment to the TDEE
// (15% deficit to lose, 15% surplus to gain).
func CalculateTargetCalories(tdee int, goal WeightGoal) (int, error) {
	policy, ok := goalPolicy[goal]
	if !ok {
		return 0, fmt.Errorf("unknown goal %q", goal)
	}
	return int(math.Round(float64(tdee) * policy.CalorieFactor)), nil
}

// CalculateMacros splits the calorie target into gram targets using the
// goal's macro ratios. The carb ratio is whatever protein and fat leave over.
func CalculateMacros(targetCalories int, goal WeightGoal) (Macros, error) {
	policy, ok := goalPolicy[goal]
	if !ok {
		return Macros{}, fmt.Errorf("unknown goal %q", goal)
	}

	carbsRatio := 1 - policy.ProteinRatio - policy.FatRatio
	cal := float64(targetCalories)
	return Macros{
		Protein: int(math.Round(cal * policy.ProteinRatio / 4)),
		Fat:     int(math.Round(cal * policy.FatRatio / 9)),
		Carbs:   int(math.Round(cal * carbsRatio / 4)),
	}, nil
}

// CalculateRiskLevel classifies BMI into risk bands, folds in the WHtR band
// when a ratio is available, and returns the higher severity of the two.
func CalculateRiskLevel(bmi float64, whtr *float64) RiskLevel {
	bmiRisk := RiskLow
	switch {
	case bmi < 18.5:
		bmiRisk = RiskModerate
	case bmi < 25:
		bmiRisk = RiskLow
	case bmi < 30:
		bmiRisk = RiskModerate
	default:
		bmiRisk = RiskHigh
	}

	if whtr == nil {
		return bmiRisk
	}

	whtrRisk := RiskLow
	switch {
	case *whtr < 0.4:
		whtrRisk = RiskLow
	case *whtr < 0.5:
		whtrRisk = RiskModerate
	default:
		whtrRisk = RiskHigh
	}

	if bmiRisk == RiskHigh || whtrRisk == RiskHigh {
		return RiskHigh
	}
	if bmiRisk == RiskModerate || whtrRisk == RiskModerate {
		return RiskModerate
	}
	return RiskLow
}

// CalculateHealthScore scores overall health on [0,100]: penalties for BMI
// and WHtR outside healthy bands and for poor sleep, a bonus for activity.
// Absent waist or sleep data simply contributes nothing.
func CalculateHealthScore(bmi float64, whtr *float64, sleepHours *float64, level ActivityLevel) int {
	score := 100

	if bmi < 18.5 || bmi >= 30 {
		score -= 20
	} else if bmi < 20 || bmi >= 27 {
		score -= 10
	}

	if whtr != nil {
		if *whtr >= 0.5 {
			score -= 15
		} else if *whtr >= 0.4 {
			score -= 5
		}
	}

	if sleepHours != nil {
		switch {
		case *sleepHours < 6:
			score -= 15
		case *sleepHours < 7:
			score -= 10
		case *sleepHours > 9:
			score -= 5
		}
	}

	score += activityBonus[level]

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// ValidateUserData is the single validation pass run before any calculation.
// It returns one human-readable message per violation; an empty slice means
// the input is safe for Compute (in particular, height is positive so no
// division by zero can occur downstream).
func ValidateUserData(profile UserProfile, m BodyMeasurements, l LifestyleData) []string {
	var errs []string

	if m.Weight < 30 || m.Weight > 300 {
		errs = append(errs, "weight must be between 30 and 300 kg")
	}
	if m.Height < 100 || m.Height > 250 {
		errs = append(errs, "height must be between 100 and 250 cm")
	}
	if profile.Age < 13 || profile.Age > 120 {
		errs = append(errs, "age must be between 13 and 120 years")
	}
	if l.SleepHours != nil && (*l.SleepHours < 4 || *l.SleepHours > 16) {
		errs = append(errs, "sleep hours must be between 4 and 16")
	}
	if m.Waist != nil && (*m.Waist < 50 || *m.Waist > 200) {
		errs = append(errs, "waist must be between 50 and 200 cm")
	}

	if profile.BiologicalSex != SexMale && profile.BiologicalSex != SexFemale {
		errs = append(errs, fmt.Sprintf("unknown biological sex %q", profile.BiologicalSex))
	}
	if _, ok := goalPolicy[profile.Goal]; !ok {
		errs = append(errs, fmt.Sprintf("unknown goal %q", profile.Goal))
	}
	if _, ok := activityFactors[profile.ActivityLevel]; !ok {
		errs = append(errs, fmt.Sprintf("unknown activity level %q", profile.ActivityLevel))
	}
	if l.Season != SeasonSummer && l.Season != SeasonWinter {
		errs = append(errs, fmt.Sprintf("unknown season %q", l.Season))
	}

	return errs
}

// Compute validates the inputs and derives a fresh HealthMetrics record for
// the given user. It performs no I/O; the only non-determinism is the record
// id and timestamp.
func Compute(userID string, profile UserProfile, m BodyMeasurements, l LifestyleData) (*HealthMetrics, error) {
	if problems := ValidateUserData(profile, m, l); len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	bmi := CalculateBMI(m.Weight, m.Height)

	var whtr *float64
	if m.Waist != nil {
		v := CalculateWHtR(*m.Waist, m.Height)
		whtr = &v
	}

	tdee, err := CalculateTDEE(m.Weight, m.Height, profile.Age, profile.BiologicalSex, profile.ActivityLevel)
	if err != nil {
		return nil, err
	}
	targetCalories, err := CalculateTargetCalories(tdee, profile.Goal)
	if err != nil {
		return nil, err
	}
	macros, err := CalculateMacros(targetCalories, profile.Goal)
	if err != nil {
		return nil, err
	}

	return &HealthMetrics{
		ID:             uuid.New().String(),
		UserID:         userID,
		Date:           time.Now().UTC(),
		Profile:        profile,
		Measurements:   m,
		Lifestyle:      l,
		BMI:            bmi,
		WHtR:           whtr,
		TDEE:           tdee,
		TargetCalories: targetCalories,
		Macros:         macros,
		RiskLevel:      CalculateRiskLevel(bmi, whtr),
		HealthScore:    CalculateHealthScore(bmi, whtr, l.SleepHours, profile.ActivityLevel),
	}, nil
}
