package nutrition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutrialert/internal/metrics"
)

const sampleDay = `{
  "day": "Día 1",
  "meals": {
    "breakfast": {"name": "Avena con fruta", "description": "Avena cocida", "calories": 350,
      "macros": {"carbs": 50, "protein": 15, "fat": 8},
      "ingredients": ["avena", "plátano"], "preparation": "Cocinar la avena", "timeToPrepare": "10 min"},
    "lunch": {"name": "Pollo con arroz", "description": "Pechuga a la plancha", "calories": 600,
      "macros": {"carbs": 60, "protein": 45, "fat": 15},
      "ingredients": ["pollo", "arroz"], "preparation": "Plancha y hervir", "timeToPrepare": "25 min"},
    "dinner": {"name": "Ensalada de atún", "description": "Ensalada fresca", "calories": 400,
      "macros": {"carbs": 20, "protein": 35, "fat": 18},
      "ingredients": ["atún", "lechuga"], "preparation": "Mezclar", "timeToPrepare": "15 min"}
  },
  "totalCalories": 9999,
  "totalMacros": {"carbs": 1, "protein": 1, "fat": 1}
}`

func TestParsePlanResponseProseBracesBeforeJSON(t *testing.T) {
	// Prose with its own brace spans before and after the real object must
	// not corrupt extraction.
	text := "Sure! Here is your plan {as requested}:\n\n" +
		`{"dailyMealPlans": [` + sampleDay + `], "recommendations": {"general": ["bebe agua"], "seasonal": ["sopas calientes"]}}` +
		"\n\nEnjoy! Let me know {if} you need changes."

	plan, err := ParsePlanResponse(text)
	require.NoError(t, err)
	require.Len(t, plan.Days, 1)
	assert.Equal(t, []string{"bebe agua"}, plan.Recs.General)
}

func TestParsePlanResponseRoundTrip(t *testing.T) {
	text := "Here is the weekly plan you asked for:\n" +
		`{"dailyMealPlans": [` + sampleDay + `], "recommendations": {"general": ["bebe 2L de agua"], "seasonal": ["prefiere sopas"]}}` +
		"\nLet me know if you need adjustments {any time}."

	plan, err := ParsePlanResponse(text)
	require.NoError(t, err)

	require.Len(t, plan.Days, 1)
	day := plan.Days[0]
	assert.Equal(t, "Día 1", day.Day)
	require.NotNil(t, day.Meals.Breakfast)
	assert.Equal(t, "Avena con fruta", day.Meals.Breakfast.Name)
	assert.Nil(t, day.Meals.MorningSnack)

	// Totals are recomputed from the meals, not trusted from the model.
	assert.Equal(t, 1350, day.TotalCalories)
	assert.Equal(t, metrics.Macros{Carbs: 130, Protein: 95, Fat: 41}, day.TotalMacros)

	// Every recommendation bucket is non-nil even when the source JSON
	// omitted one of them.
	assert.Equal(t, []string{"bebe 2L de agua"}, plan.Recs.General)
	assert.Equal(t, []string{}, plan.Recs.Specific)
	assert.Equal(t, []string{"prefiere sopas"}, plan.Recs.Seasonal)
}

func TestParsePlanResponseMistypedFieldsCoerced(t *testing.T) {
	text := `{"dailyMealPlans": "not an array", "recommendations": {"general": 42, "specific": {"oops": true}}}`

	plan, err := ParsePlanResponse(text)
	require.NoError(t, err)
	assert.Empty(t, plan.Days)
	assert.Equal(t, []string{}, plan.Recs.General)
	assert.Equal(t, []string{}, plan.Recs.Specific)
	assert.Equal(t, []string{}, plan.Recs.Seasonal)
}

func TestParsePlanResponseNoJSON(t *testing.T) {
	_, err := ParsePlanResponse("I'm sorry, I cannot generate a plan right now.")
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestParsePlanResponseMalformedJSON(t *testing.T) {
	_, err := ParsePlanResponse(`{"dailyMealPlans": [}`)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestExtractJSONBracesInsideStrings(t *testing.T) {
	raw, _, ok := extractJSON(`prefix {"a": "brace } inside", "b": {"c": 1}} suffix`, 0)
	require.True(t, ok)
	assert.Equal(t, `{"a": "brace } inside", "b": {"c": 1}}`, raw)
}

func TestExtractJSONEscapedQuotes(t *testing.T) {
	raw, _, ok := extractJSON(`{"a": "he said \"hi\" {x}"}`, 0)
	require.True(t, ok)
	assert.Equal(t, `{"a": "he said \"hi\" {x}"}`, raw)
}

func TestExtractJSONNone(t *testing.T) {
	_, _, ok := extractJSON("no braces here", 0)
	assert.False(t, ok)
}

func TestParsePlanResponseBareObject(t *testing.T) {
	// A structurally valid but empty object still yields a plan with all
	// content coerced to empty, matching the coerce-vs-fail split.
	plan, err := ParsePlanResponse("{}")
	require.NoError(t, err)
	assert.Empty(t, plan.Days)
	assert.Equal(t, []string{}, plan.Recs.General)
}
