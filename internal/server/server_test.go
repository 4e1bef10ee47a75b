package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/praxy/internal/metrics"
	"github.com/dotcommander/praxy/internal/scenarios"
	"github.com/dotcommander/praxy/internal/scoring"
	"github.com/dotcommander/praxy/internal/service"
	"github.com/dotcommander/praxy/internal/store"
)

type testEnv struct {
	server  *Server
	metrics *metrics.Metrics
}

func newTestServer(t *testing.T, withStore bool) *testEnv {
	t.Helper()
	reg, err := scenarios.Load()
	require.NoError(t, err)

	m := metrics.New()
	var opts []service.Option
	if withStore {
		st, err := store.Open("sqlite", filepath.Join(t.TempDir(), "praxy.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = st.Close() })
		opts = append(opts, service.WithStore(st))
	}
	svc := service.New(reg, []scoring.Option{scoring.WithObserver(m)}, opts...)
	return &testEnv{server: New(svc, m), metrics: m}
}

func (e *testEnv) do(t *testing.T, method, path, body string, headers map[string]string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := e.server.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func TestHealthz(t *testing.T) {
	env := newTestServer(t, false)
	status, body := env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestScenarioRoutes(t *testing.T) {
	env := newTestServer(t, false)

	status, body := env.do(t, http.MethodGet, "/api/scenarios", "", nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[[]map[string]any](t, body)
	assert.Len(t, list, 5)

	status, body = env.do(t, http.MethodGet, "/api/scenarios/cfo-budget-freeze", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Halcyon Health Partners", decode[map[string]any](t, body)["company"])

	status, body = env.do(t, http.MethodGet, "/api/scenarios/3", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "cfo-budget-freeze", decode[map[string]any](t, body)["id"])

	status, body = env.do(t, http.MethodGet, "/api/scenarios/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, decode[map[string]string](t, body)["error"], "scenario not found")
}

func TestAgentRoute(t *testing.T) {
	env := newTestServer(t, false)

	_, first := env.do(t, http.MethodGet, "/api/scenarios/1/agent", "", nil)
	_, unmapped := env.do(t, http.MethodGet, "/api/scenarios/99/agent", "", nil)
	assert.Equal(t, decode[map[string]any](t, first)["agent_id"], decode[map[string]any](t, unmapped)["agent_id"])

	status, _ := env.do(t, http.MethodGet, "/api/scenarios/abc/agent", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCaseRoutesHideReferenceAnswer(t *testing.T) {
	env := newTestServer(t, false)

	status, body := env.do(t, http.MethodGet, "/api/cases/checkout-timeouts", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, string(body), "connection pool exhausted")
	assert.NotContains(t, string(body), "root_cause")

	status, body = env.do(t, http.MethodGet, "/api/cases", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, string(body), "root_cause")

	status, _ = env.do(t, http.MethodGet, "/api/cases/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestScoreCall(t *testing.T) {
	env := newTestServer(t, false)
	body := `{"scenario_id":"cfo-budget-freeze","transcript":[{"role":"user","content":"Hi"}],"outcome":"success","duration_seconds":150}`

	status, resp := env.do(t, http.MethodPost, "/api/score/call", body, map[string]string{UserHeader: "u1"})
	require.Equal(t, http.StatusOK, status, string(resp))

	wire := decode[map[string]any](t, resp)
	assert.EqualValues(t, 85, wire["score"])
	feedback := wire["feedback"].(map[string]any)
	for _, d := range scoring.CallRubric.Dimensions {
		assert.Contains(t, feedback, d.Name)
	}
	assert.Contains(t, feedback, "coach_message")
	assert.NotContains(t, string(resp), "fallback", "the scoring path is never revealed")
}

func TestScoreCall_BadRequests(t *testing.T) {
	env := newTestServer(t, false)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"invalid json", `{"scenario_id":`, "invalid JSON"},
		{"bad outcome", `{"scenario_id":"x","outcome":"won"}`, "outcome"},
		{"negative duration", `{"scenario_id":"x","outcome":"partial","duration_seconds":-5}`, "duration_seconds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(t, http.MethodPost, "/api/score/call", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Contains(t, decode[map[string]string](t, body)["error"], tt.want)
		})
	}
}

func TestScoreRCA(t *testing.T) {
	env := newTestServer(t, false)

	body := `{"case_id":"checkout-timeouts","submitted_root_cause":"the database connection failed under load","five_whys":["a","b","c"]}`
	status, resp := env.do(t, http.MethodPost, "/api/score/rca", body, nil)
	require.Equal(t, http.StatusOK, status, string(resp))
	wire := decode[map[string]any](t, resp)
	rootCause := wire["feedback"].(map[string]any)["root_cause"].(map[string]any)
	assert.EqualValues(t, 30, rootCause["score"])
	assert.Contains(t, wire["feedback"], "mentor_message")

	status, resp = env.do(t, http.MethodPost, "/api/score/rca", `{"case_id":"nope","submitted_root_cause":"x"}`, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(resp), "unknown case")

	status, _ = env.do(t, http.MethodPost, "/api/score/rca", `{"submitted_root_cause":"x"}`, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestResults(t *testing.T) {
	env := newTestServer(t, true)
	body := `{"scenario_id":"cfo-budget-freeze","outcome":"partial","duration_seconds":30}`

	_, resp := env.do(t, http.MethodPost, "/api/score/call", body, map[string]string{UserHeader: "u1"})
	id := decode[map[string]any](t, resp)["id"].(string)
	env.do(t, http.MethodPost, "/api/score/call", body, map[string]string{UserHeader: "u2"})

	status, resp := env.do(t, http.MethodGet, "/api/results", "", map[string]string{UserHeader: "u1"})
	require.Equal(t, http.StatusOK, status)
	records := decode[[]map[string]any](t, resp)
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0]["id"])
	assert.NotContains(t, string(resp), "fallback")

	status, resp = env.do(t, http.MethodGet, "/api/results?user=u2&domain=call", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]map[string]any](t, resp), 1)

	status, resp = env.do(t, http.MethodGet, "/api/results?user=nobody", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(resp))

	status, _ = env.do(t, http.MethodGet, "/api/results?domain=quiz", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, resp = env.do(t, http.MethodGet, "/api/results/"+id, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 50, decode[map[string]any](t, resp)["score"])

	status, _ = env.do(t, http.MethodGet, "/api/results/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestResultsWithoutStore(t *testing.T) {
	env := newTestServer(t, false)
	status, _ := env.do(t, http.MethodGet, "/api/results", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestServer(t, false)
	env.do(t, http.MethodPost, "/api/score/call", `{"scenario_id":"x","outcome":"failure"}`, nil)
	env.do(t, http.MethodGet, "/api/scenarios/nope", "", nil)

	status, body := env.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, status)
	text := string(body)
	assert.Contains(t, text, `praxy_scoring_total{domain="call",reason="no_credential",source="fallback"} 1`)
	assert.Contains(t, text, `praxy_http_requests_total{route="/api/score/call",status="200"} 1`)
	assert.Contains(t, text, `praxy_http_requests_total{route="/api/scenarios/:id",status="404"} 1`)
}

func TestUnknownRoute(t *testing.T) {
	env := newTestServer(t, false)
	status, body := env.do(t, http.MethodGet, "/api/nothing", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(body), "error")
}
