package nutrition

import (
	"encoding/json"
	"fmt"

	"nutrialert/internal/metrics"
)

// parsedPlan is the tagged "successfully parsed" variant: structurally valid
// JSON with every content field already coerced to a usable value. The
// alternative outcome is a ParseError; there is no in-between.
type parsedPlan struct {
	Days []DailyMealPlan
	Recs Recommendations
}

// planPayload defers the content fields so that each can be coerced
// independently. Structural validity of the outer object is mandatory;
// completeness of the content is best-effort.
type planPayload struct {
	DailyMealPlans  json.RawMessage `json:"dailyMealPlans"`
	Recommendations struct {
		General  json.RawMessage `json:"general"`
		Specific json.RawMessage `json:"specific"`
		Seasonal json.RawMessage `json:"seasonal"`
	} `json:"recommendations"`
}

// extractJSON returns the first balanced top-level brace span in text
// starting at or after from, and the index just past it. The scanner tracks
// string literals and escapes, so braces inside string values cannot corrupt
// the extraction.
func extractJSON(text string, from int) (string, int, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := from; i < len(text); i++ {
		ch := text[i]

		if start >= 0 && inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start >= 0 {
				depth--
				if depth == 0 {
					return text[start : i+1], i + 1, true
				}
			}
		case '"':
			if start >= 0 {
				inString = true
			}
		}
	}
	return "", len(text), false
}

// ParsePlanResponse turns the generator's raw reply into a parsedPlan.
// The reply may contain prose around the JSON object, including prose with
// its own brace spans: balanced spans are tried in order and the first one
// that decodes as an object wins. No decodable object at all is a ParseError.
func ParsePlanResponse(text string) (*parsedPlan, error) {
	var payload planPayload
	var fallback *planPayload
	var lastErr error
	found := false

	for pos := 0; pos < len(text); {
		raw, next, ok := extractJSON(text, pos)
		if !ok {
			break
		}
		pos = next

		var candidate planPayload
		if err := json.Unmarshal([]byte(raw), &candidate); err != nil {
			lastErr = err
			continue
		}
		// Prefer a span that actually carries plan fields; an empty but
		// decodable object is kept as a fallback so that a bare "{}"
		// reply still coerces to an empty plan instead of failing.
		if len(candidate.DailyMealPlans) > 0 || len(candidate.Recommendations.General) > 0 ||
			len(candidate.Recommendations.Specific) > 0 || len(candidate.Recommendations.Seasonal) > 0 {
			payload = candidate
			found = true
			break
		}
		if fallback == nil {
			c := candidate
			fallback = &c
		}
	}

	if !found {
		switch {
		case fallback != nil:
			payload = *fallback
		case lastErr != nil:
			return nil, &ParseError{Err: fmt.Errorf("decode plan JSON: %w", lastErr)}
		default:
			return nil, &ParseError{Err: fmt.Errorf("no JSON object found in response")}
		}
	}

	plan := &parsedPlan{
		Days: coerceDays(payload.DailyMealPlans),
		Recs: Recommendations{
			General:  coerceStrings(payload.Recommendations.General),
			Specific: coerceStrings(payload.Recommendations.Specific),
			Seasonal: coerceStrings(payload.Recommendations.Seasonal),
		},
	}

	for i := range plan.Days {
		recomputeTotals(&plan.Days[i])
	}
	return plan, nil
}

// coerceStrings decodes a recommendation bucket. A missing or mistyped
// bucket becomes an empty slice rather than failing the whole response.
func coerceStrings(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

func coerceDays(raw json.RawMessage) []DailyMealPlan {
	if len(raw) == 0 {
		return []DailyMealPlan{}
	}
	var out []DailyMealPlan
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return []DailyMealPlan{}
	}
	return out
}

// recomputeTotals replaces the generator's claimed day totals with the sum of
// the meals actually present, so totalCalories/totalMacros always add up.
func recomputeTotals(day *DailyMealPlan) {
	day.TotalCalories = 0
	day.TotalMacros = metrics.Macros{}
	for _, meal := range day.Meals.all() {
		if meal == nil {
			continue
		}
		day.TotalCalories += meal.Calories
		day.TotalMacros.Carbs += meal.Macros.Carbs
		day.TotalMacros.Protein += meal.Macros.Protein
		day.TotalMacros.Fat += meal.Macros.Fat
	}
}
