package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"budget-impact/internal/api/models"
	"budget-impact/internal/data"
	"budget-impact/internal/logging"
	"budget-impact/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func init() {
	gin.SetMode(gin.TestMode)
	logging.Quiet()
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	cache := data.NewResultCache(time.Hour)
	t.Cleanup(cache.Close)
	return NewRouter(Config{CasesDir: testutil.CasesDir(), MaxTrials: 500, Workers: 2}, cache)
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// switchCase is the two-year full-switch case in request form.
func switchCase() map[string]any {
	return map[string]any{
		"name":       "switch",
		"horizon":    2,
		"population": []float64{100, 100},
		"cohorts":    []map[string]any{{"name": "General", "weight": 1.0}},
		"strategies": []map[string]any{
			{"name": "Comp", "staff_cost": 800, "procedure_cost": 100},
			{"name": "Interv", "staff_cost": 1000, "procedure_cost": 100},
		},
		"shares": map[string]any{
			"current": map[string][]float64{"Comp": {1, 1}, "Interv": {0, 0}},
			"new":     map[string][]float64{"Comp": {0, 0}, "Interv": {1, 1}},
		},
		"coverage": map[string]any{"current": []float64{1, 1}, "new": []float64{1, 1}},
		"budget":   map[string]any{"initial_balance": 0, "inflow": []float64{0, 0}, "other_expenses": []float64{0, 0}},
	}
}

func TestHealthModelsCases(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/models", nil)
	require.Equal(t, http.StatusOK, w.Code)
	ms := decode[map[string][]models.ModelInfo](t, w)["models"]
	require.Len(t, ms, 4)
	assert.Equal(t, models.ModelInfo{ID: "model_2", Label: "Model 2"}, ms[1])

	w = do(t, r, http.MethodGet, "/api/v1/cases", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cases := decode[map[string][]data.CaseInfo](t, w)["cases"]
	assert.Len(t, cases, 3)

	w = do(t, r, http.MethodGet, "/api/v1/cases/switch", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Full switch"`)

	w = do(t, r, http.MethodGet, "/api/v1/cases/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProjectionLifecycle(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/projection", map[string]any{"model": "Model 3", "case": switchCase()})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[models.ProjectionResponse](t, w)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "model_3", resp.Model)
	assert.Equal(t, "Model 3", resp.Label)
	assert.Equal(t, models.ProjectionSummary{Periods: 2, TotalImpact: 40000, FinalBalance: -220000}, resp.Summary)
	require.Len(t, resp.Table, 2)
	assert.Equal(t, 90000.0, resp.Table[0].AggregateCurrent)
	assert.Equal(t, 110000.0, resp.Table[0].AggregateNew)
	assert.Equal(t, -110000.0, resp.Table[0].Balance)

	w = do(t, r, http.MethodGet, "/api/v1/projection/"+resp.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, resp, decode[models.ProjectionResponse](t, w))

	w = do(t, r, http.MethodGet, "/api/v1/projection/"+resp.ID+"/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "period,population,"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")

	w = do(t, r, http.MethodGet, "/api/v1/projection/"+resp.ID+"/export?format=xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	f, err := excelize.OpenReader(w.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Projection")
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	w = do(t, r, http.MethodGet, "/api/v1/projection/"+resp.ID+"/export?format=html", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<title>switch</title>")

	w = do(t, r, http.MethodGet, "/api/v1/projection/"+resp.ID+"/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/projection/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode[models.ErrorResponse](t, w).Error.Code)
}

func TestProjectionFromPreset(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodPost, "/api/v1/projection", map[string]any{"case_id": "coexistence"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[models.ProjectionResponse](t, w)
	assert.Equal(t, "model_2", resp.Model)
	assert.Len(t, resp.Table, 5)
}

func TestProjectionErrors(t *testing.T) {
	r := newTestRouter(t)

	invalid := switchCase()
	invalid["cohorts"] = []map[string]any{{"name": "General", "weight": 0.5}}

	short := switchCase()
	short["population"] = []float64{100}

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"malformed json", `{"case":`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"no case", map[string]any{"model": "model_1"}, http.StatusBadRequest, "INVALID_CONFIG"},
		{"both sources", map[string]any{"case_id": "switch", "case": switchCase()}, http.StatusBadRequest, "INVALID_CONFIG"},
		{"unknown model", map[string]any{"model": "model_7", "case_id": "switch"}, http.StatusBadRequest, "INVALID_CONFIG"},
		{"unknown preset", map[string]any{"case_id": "missing"}, http.StatusNotFound, "CASE_NOT_FOUND"},
		{"cohort weights", map[string]any{"case": invalid}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"series length", map[string]any{"case": short}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/api/v1/projection", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decode[models.ErrorResponse](t, w).Error.Code)
		})
	}
}

func TestCompareScenarios(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodPost, "/api/v1/projection/compare", map[string]any{
		"case": switchCase(),
		"scenarios": []map[string]any{
			{"name": "cheaper", "overrides": []map[string]any{{"parameter": "strategy:Interv:staff_cost", "value": 800}}},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[models.CompareResponse](t, w)
	require.Len(t, resp.Scenarios, 2)
	assert.Equal(t, models.ScenarioResult{Name: "base", TotalImpact: 40000, FinalBalance: -220000}, resp.Scenarios[0])
	assert.Equal(t, 0.0, resp.Scenarios[1].TotalImpact)

	w = do(t, r, http.MethodPost, "/api/v1/projection/compare", map[string]any{"case": switchCase()})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDSAEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/dsa", map[string]any{"case_id": "switch"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[models.DSAResponse](t, w)
	assert.Equal(t, "ascending", resp.Order)
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, "strategy:Interv:staff_cost", resp.Rows[0].Parameter)
	assert.Equal(t, 40000.0, resp.Rows[0].Delta)
	assert.Equal(t, 55000.0, resp.Rows[1].Delta)

	w = do(t, r, http.MethodPost, "/api/v1/dsa", map[string]any{"case_id": "switch", "order": "tornado"})
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[models.DSAResponse](t, w)
	assert.Equal(t, "inputs:coverage_new:0", resp.Rows[0].Parameter)

	w = do(t, r, http.MethodPost, "/api/v1/dsa", map[string]any{
		"case":       switchCase(),
		"parameters": []map[string]any{{"parameter": "inputs:population:0", "min": 1, "max": 2}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	errResp := decode[models.ErrorResponse](t, w)
	assert.Equal(t, "UNSUPPORTED_PARAMETER", errResp.Error.Code)
	assert.Equal(t, "inputs:population:0", errResp.Error.Details["parameter"])

	w = do(t, r, http.MethodPost, "/api/v1/dsa", map[string]any{"case_id": "switch", "order": "random"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPSAEndpoint(t *testing.T) {
	r := newTestRouter(t)

	body := map[string]any{
		"case": switchCase(),
		"psa": map[string]any{
			"trials":                50,
			"seed":                  11,
			"gamma_shape":           50,
			"default_concentration": 10,
			"relative_risk":         map[string]any{"mu": 0, "sigma": 0.1, "target": "costos"},
		},
		"include_trials": true,
	}
	w := do(t, r, http.MethodPost, "/api/v1/psa", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode[models.PSAResponse](t, w)
	assert.Equal(t, uint64(11), first.Seed)
	assert.Equal(t, 50, first.Summary.Trials)
	require.Len(t, first.Trials, 50)
	assert.LessOrEqual(t, first.Summary.TotalImpact.Min, first.Summary.TotalImpact.P50)
	assert.LessOrEqual(t, first.Summary.TotalImpact.P50, first.Summary.TotalImpact.Max)

	// Same seed, same trials.
	w = do(t, r, http.MethodPost, "/api/v1/psa", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, first, decode[models.PSAResponse](t, w))

	body["include_trials"] = false
	w = do(t, r, http.MethodPost, "/api/v1/psa", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[models.PSAResponse](t, w).Trials)
}

func TestPSAEndpointErrors(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/psa", map[string]any{"case_id": "switch", "psa": map[string]any{"trials": 501}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "TOO_MANY_TRIALS", decode[models.ErrorResponse](t, w).Error.Code)

	w = do(t, r, http.MethodPost, "/api/v1/psa", map[string]any{"case_id": "switch", "psa": map[string]any{
		"trials":             10,
		"cost_distributions": []map[string]any{{"parameter": "strategy:Comp:staff_cost", "shape": 0, "scale": 1}},
	}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_CONFIG", decode[models.ErrorResponse](t, w).Error.Code)

	w = do(t, r, http.MethodPost, "/api/v1/psa", map[string]any{"case_id": "switch", "psa": map[string]any{
		"trials":             10,
		"cost_distributions": []map[string]any{{"parameter": "inputs:initial_balance", "shape": 1, "scale": 1}},
	}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNSUPPORTED_PARAMETER", decode[models.ErrorResponse](t, w).Error.Code)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("API_ENV", "production")
	t.Setenv("CASES_DIR", "/tmp/cases")
	t.Setenv("RESULT_CACHE_TTL", "15m")
	t.Setenv("PSA_MAX_TRIALS", "1000")
	t.Setenv("PSA_WORKERS", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.example, http://b.example,")

	cfg := ConfigFromEnv()
	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.Production)
	assert.Equal(t, "/tmp/cases", cfg.CasesDir)
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 1000, cfg.MaxTrials)
	assert.Greater(t, cfg.Workers, 0)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.AllowedOrigins)
}
