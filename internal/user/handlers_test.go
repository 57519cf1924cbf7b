package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutrialert/internal/metrics"
	"nutrialert/internal/nutrition"
)

type stubPlanner struct {
	plan *nutrition.NutritionalPlan
	err  error
}

func (s *stubPlanner) GeneratePlan(_ context.Context, _ metrics.UserProfile, _ metrics.BodyMeasurements, _ metrics.LifestyleData, _ int, _ string) (*nutrition.NutritionalPlan, error) {
	return s.plan, s.err
}

// newContext builds an authenticated echo context carrying the given body.
func newContext(t *testing.T, method, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "user-1")
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestUpdateProfileHandlerRejectsBadEnums(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"bad goal", `{"goal":"bulk up","activityLevel":"light","season":"summer"}`},
		{"bad activity", `{"goal":"maintain","activityLevel":"extreme","season":"summer"}`},
		{"bad season", `{"goal":"maintain","activityLevel":"light","season":"spring"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newContext(t, http.MethodPut, tc.body)
			require.NoError(t, UpdateProfileHandler(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSaveHealthMetricsHandlerValidation(t *testing.T) {
	body := `{
        "profile": {"biologicalSex":"male","age":7,"goal":"lose","activityLevel":"light"},
        "measurements": {"weight":20,"height":175},
        "lifestyle": {"season":"summer"}
    }`
	c, rec := newContext(t, http.MethodPost, body)
	require.NoError(t, SaveHealthMetricsHandler(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	out := decodeBody(t, rec)
	details, ok := out["details"].([]any)
	require.True(t, ok)
	assert.Len(t, details, 2) // weight and age out of range
}

func planBody() string {
	return `{
        "profile": {"biologicalSex":"female","age":30,"goal":"bajar","activityLevel":"moderate"},
        "measurements": {"weight":65,"height":168,"waist":72},
        "lifestyle": {"sleepHours":7.5,"season":"winter"}
    }`
}

func TestGeneratePlanHandlerModelFailure(t *testing.T) {
	planner = &stubPlanner{err: &nutrition.ModelCallError{Err: context.DeadlineExceeded}}

	c, rec := newContext(t, http.MethodPost, planBody())
	require.NoError(t, GeneratePlanHandler(c))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "MODEL_CALL_FAILED", decodeBody(t, rec)["code"])
}

func TestGeneratePlanHandlerParseFailure(t *testing.T) {
	planner = &stubPlanner{err: &nutrition.ParseError{Err: context.Canceled}}

	c, rec := newContext(t, http.MethodPost, planBody())
	require.NoError(t, GeneratePlanHandler(c))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "PLAN_PARSE_FAILED", decodeBody(t, rec)["code"])
}

func TestGeneratePlanHandlerInvalidGoal(t *testing.T) {
	planner = &stubPlanner{}

	body := `{
        "profile": {"biologicalSex":"female","age":30,"goal":"get shredded","activityLevel":"moderate"},
        "measurements": {"weight":65,"height":168},
        "lifestyle": {"season":"winter"}
    }`
	c, rec := newContext(t, http.MethodPost, body)
	require.NoError(t, GeneratePlanHandler(c))

	// The alias table cannot normalize it, so validation rejects the goal
	// before any model call.
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlersRequireUserID(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec) // no user_id set

	require.NoError(t, GetPlansHandler(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
