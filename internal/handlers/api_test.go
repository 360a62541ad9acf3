package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-insights/internal/analytics"
	"shop-insights/internal/dataset/datasettest"
	"shop-insights/internal/observability"
	"shop-insights/internal/tools"
)

func newTestRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	engine := analytics.New(datasettest.Dataset(t, datasettest.Small()))
	return tools.NewRegistry(engine, tools.WithLogger(observability.Discard()))
}

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	registry := newTestRegistry(t)
	api := NewAPIHandlers(registry, observability.Discard())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", api.HandleHealth)
	mux.HandleFunc("GET /admin/stats", api.HandleStats)
	mux.HandleFunc("GET /api/tools", api.HandleListTools)
	mux.HandleFunc("GET /api/tools/{name}", api.HandleInvokeTool)
	mux.HandleFunc("POST /api/tools/{name}", api.HandleInvokeTool)
	return mux
}

func TestHandleHealth(t *testing.T) {
	w := httptest.NewRecorder()
	newTestMux(t).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "healthy", resp["data"].(map[string]any)["status"])
}

func TestHandleStats(t *testing.T) {
	w := httptest.NewRecorder()
	newTestMux(t).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data statsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 9, resp.Data.Dataset.Transactions)
	assert.Equal(t, 4, resp.Data.Dataset.Customers)
	assert.Equal(t, "2024-01-05", resp.Data.DataStart)
	assert.Equal(t, "2024-03-15", resp.Data.DataEnd)
	assert.Len(t, resp.Data.Tools, 10)
}

func TestHandleListTools(t *testing.T) {
	w := httptest.NewRecorder()
	newTestMux(t).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tools", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var caps []analytics.Capability
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &caps))
	require.Len(t, caps, 10)
	assert.Equal(t, "get_revenue_by_category", caps[0].ToolName)
}

func TestHandleInvokeTool(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
		wantField  string
		wantValue  any
	}{
		{"get default", http.MethodGet, "/api/tools/compare_regions", "", http.StatusOK, "tool_used", "compare_regions"},
		{"get with query", http.MethodGet, "/api/tools/get_customer_ltv?top_n=2&segment=regular", "", http.StatusOK, "tool_used", "get_customer_ltv"},
		{"get repeated list", http.MethodGet, "/api/tools/get_revenue_by_category?categories=home&categories=sports", "", http.StatusOK, "tool_used", "get_revenue_by_category"},
		{"post body", http.MethodPost, "/api/tools/compare_time_periods", `{"period_label":"mom"}`, http.StatusOK, "tool_used", "compare_time_periods"},
		{"invalid input", http.MethodGet, "/api/tools/get_return_rates?category=toys", "", http.StatusBadRequest, "error_type", "invalid_input"},
		{"invalid body", http.MethodPost, "/api/tools/get_customer_ltv", `{"top_n":"x"}`, http.StatusBadRequest, "error_type", "invalid_input"},
		{"no data", http.MethodGet, "/api/tools/get_payment_method_analysis?category=grocery&region=north", "", http.StatusNotFound, "error_type", "no_data"},
		{"unknown tool", http.MethodGet, "/api/tools/drop_tables", "", http.StatusNotFound, "error_type", "invalid_input"},
	}

	mux := newTestMux(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var resp map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantValue, resp[tt.wantField])
		})
	}
}

func TestHandleInvokeTool_Envelope(t *testing.T) {
	w := httptest.NewRecorder()
	newTestMux(t).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tools/get_customer_ltv?top_n=2", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Summary  string         `json:"summary"`
		Data     map[string]any `json:"data"`
		Metadata tools.Metadata `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Len(t, env.Data["data"], 2)
	assert.Equal(t, 2, env.Metadata.RecordCount)
	assert.Equal(t, "2024-03-15", env.Metadata.DataAsOf)
	assert.Contains(t, env.Summary, "Top 2 customers")
}

func TestHandleInvokeTool_MethodNotAllowed(t *testing.T) {
	w := httptest.NewRecorder()
	newTestMux(t).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/tools/compare_regions", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
