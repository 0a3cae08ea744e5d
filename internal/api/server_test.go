package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adsight/adapters/report"
	"adsight/app"
	"adsight/domain/run"
	"adsight/internal/engine"
	"adsight/internal/testkit"
)

func newTestServer() *Server {
	service := app.NewRunService(engine.New())
	repo := testkit.NewInMemoryResultRepository()
	return NewServer(service, repo, report.NewRenderer())
}

func ctrDropRequest() map[string]any {
	baseline := make([]float64, 40)
	test := make([]float64, 40)
	for i := 0; i < 40; i += 2 {
		baseline[i], baseline[i+1] = 0.043, 0.047
		test[i], test[i+1] = 0.028, 0.032
	}

	return map[string]any{
		"hypotheses": []map[string]any{
			{
				"id":                 "H1",
				"hypothesis":         "CTR dropped because the main creative fatigued",
				"driver":             "creative_fatigue",
				"initial_confidence": 0.6,
				"target_metric":      "ctr",
			},
		},
		"evidence": map[string]any{
			"samples": map[string]any{
				"ctr": map[string]any{"baseline": baseline, "test": test},
			},
			"refs": []string{"dataset:test"},
		},
	}
}

func postJSON(t *testing.T, server *Server, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_CreateAndFetchRun(t *testing.T) {
	server := newTestServer()

	rec := postJSON(t, server, "/api/runs", ctrDropRequest())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created run.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Len(t, created.Results, 1)
	assert.Equal(t, "VALIDATED", string(created.Results[0].Status))

	getReq := httptest.NewRequest(http.MethodGet, "/api/runs/"+created.RunID.String(), nil)
	getRec := httptest.NewRecorder()
	server.Handler().ServeHTTP(getRec, getReq)
	require.Equal(t, http.StatusOK, getRec.Code)

	var fetched run.Summary
	require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &fetched))
	assert.Equal(t, created.RunID, fetched.RunID)
	require.Len(t, fetched.Results, 1)
	assert.Equal(t, created.Results[0].Validation, fetched.Results[0].Validation)
}

func TestServer_ReportEndpoint(t *testing.T) {
	server := newTestServer()

	rec := postJSON(t, server, "/api/runs", ctrDropRequest())
	require.Equal(t, http.StatusCreated, rec.Code)

	var created run.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	req := httptest.NewRequest(http.MethodGet, "/api/runs/"+created.RunID.String()+"/report", nil)
	reportRec := httptest.NewRecorder()
	server.Handler().ServeHTTP(reportRec, req)

	require.Equal(t, http.StatusOK, reportRec.Code)
	assert.Contains(t, reportRec.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, reportRec.Body.String(), "Validation Run")

	htmlReq := httptest.NewRequest(http.MethodGet, "/api/runs/"+created.RunID.String()+"/report?format=html", nil)
	htmlRec := httptest.NewRecorder()
	server.Handler().ServeHTTP(htmlRec, htmlReq)

	require.Equal(t, http.StatusOK, htmlRec.Code)
	assert.Contains(t, htmlRec.Header().Get("Content-Type"), "text/html")
}

func TestServer_BadRequests(t *testing.T) {
	server := newTestServer()

	tests := []struct {
		name    string
		payload any
	}{
		{"no hypotheses", map[string]any{"hypotheses": []any{}}},
		{"empty baseline", map[string]any{
			"hypotheses": []map[string]any{
				{"id": "H1", "initial_confidence": 0.5, "target_metric": "ctr"},
			},
			"evidence": map[string]any{
				"samples": map[string]any{
					"ctr": map[string]any{"baseline": []float64{}, "test": []float64{1}},
				},
			},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, server, "/api/runs", tt.payload)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestServer_UnknownRun(t *testing.T) {
	server := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/runs/no-such-run", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
