package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-insights/internal/analytics"
	"shop-insights/internal/dataset/datasettest"
	"shop-insights/internal/observability"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	engine := analytics.New(datasettest.Dataset(t, datasettest.Small()))
	return NewRegistry(engine, WithLogger(observability.Discard()))
}

func invoke(t *testing.T, r *Registry, name, params string) Reply {
	t.Helper()
	reply, err := r.Invoke(context.Background(), name, json.RawMessage(params))
	require.NoError(t, err)
	require.NotNil(t, reply)
	return reply
}

func TestRegistry_Tools(t *testing.T) {
	r := newTestRegistry(t)

	names := r.Names()
	assert.Equal(t, []string{
		"get_revenue_by_category", "get_customer_ltv", "get_return_rates", "compare_regions",
		"compare_time_periods", "get_data_overview", "get_payment_method_analysis",
		"get_segment_comparison", "get_revenue_trends", "explain_capabilities",
	}, names)
	assert.Len(t, r.Tools(), len(names))
	assert.True(t, r.Has("compare_regions"))
	assert.False(t, r.Has("delete_everything"))
}

func TestInvoke_Envelope(t *testing.T) {
	r := newTestRegistry(t)

	reply := invoke(t, r, "get_revenue_by_category", `{"start_date":"2024-01-01","end_date":"2024-02-29"}`)
	require.True(t, reply.Succeeded())

	env := reply.(*Envelope)
	assert.Equal(t, "get_revenue_by_category", env.ToolUsed)
	assert.Equal(t, "2024-01-01", env.Metadata.DateRangeStart)
	assert.Equal(t, "2024-02-29", env.Metadata.DateRangeEnd)
	assert.Equal(t, "2024-03-15", env.Metadata.DataAsOf)
	assert.Equal(t, 5, env.Metadata.RecordCount)
	assert.Equal(t, "Electronics leads with $300.00 (52.2% of $575.00 total revenue) across 5 categories from 2024-01-01 to 2024-02-29.", env.Summary)

	raw, err := json.Marshal(env)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "tool_used")
	assert.Contains(t, decoded, "summary")
	assert.Contains(t, decoded, "data")
	assert.Contains(t, decoded["metadata"], "filters_applied")
	assert.NotContains(t, decoded["data"], "Scoped")
}

func TestInvoke_AllToolsSucceed(t *testing.T) {
	r := newTestRegistry(t)

	params := map[string]string{
		"compare_time_periods": `{"period_label":"month_over_month"}`,
	}
	for _, name := range r.Names() {
		t.Run(name, func(t *testing.T) {
			reply := invoke(t, r, name, params[name])
			require.True(t, reply.Succeeded(), "%+v", reply)
			env := reply.(*Envelope)
			assert.NotEmpty(t, env.Summary)
			assert.NotNil(t, env.Metadata.FiltersApplied)
		})
	}
}

func TestInvoke_QueryErrors(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		name      string
		tool      string
		params    string
		errorType string
	}{
		{"unknown tool", "drop_tables", `{}`, "invalid_input"},
		{"unknown parameter", "get_return_rates", `{"categry":"home"}`, "invalid_input"},
		{"wrong type", "get_customer_ltv", `{"top_n":"five"}`, "invalid_input"},
		{"malformed json", "get_customer_ltv", `{"top_n":`, "invalid_input"},
		{"parameters on parameterless tool", "compare_regions", `{"region":"north"}`, "invalid_input"},
		{"zero top_n", "get_customer_ltv", `{"top_n":0}`, "invalid_input"},
		{"invalid category", "get_revenue_by_category", `{"categories":["toys"]}`, "invalid_input"},
		{"custom without ranges", "compare_time_periods", `{}`, "invalid_input"},
		{"start after data end", "get_revenue_by_category", `{"start_date":"2030-01-01"}`, "invalid_input"},
		{"empty category window", "get_revenue_by_category", `{"start_date":"2024-01-06","end_date":"2024-01-19"}`, "no_data"},
		{"empty filter result", "get_payment_method_analysis", `{"category":"grocery","region":"north"}`, "no_data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := invoke(t, r, tt.tool, tt.params)
			require.False(t, reply.Succeeded())

			env := reply.(*ErrorEnvelope)
			assert.False(t, env.OK)
			assert.Equal(t, tt.errorType, env.ErrorType, env.Message)
			assert.NotEmpty(t, env.Message)
			assert.NotEmpty(t, env.Suggestions)
		})
	}
}

func TestInvoke_InvalidCategorySuggestions(t *testing.T) {
	r := newTestRegistry(t)

	env := invoke(t, r, "get_return_rates", `{"category":"toys"}`).(*ErrorEnvelope)
	assert.Equal(t, []string{"electronics", "clothing", "home", "grocery", "sports"}, env.Suggestions)

	raw, err := json.Marshal(env)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), `{"ok":false,"error_type":"invalid_input"`))
}

func TestInvoke_Defaults(t *testing.T) {
	r := newTestRegistry(t)

	for _, params := range []string{"", "null", "{}"} {
		env := invoke(t, r, "get_customer_ltv", params).(*Envelope)
		report := env.Data.(*analytics.LTVReport)
		assert.Len(t, report.Data, 4, "params %q", params)
	}
}

func TestInvoke_EnumCase(t *testing.T) {
	r := newTestRegistry(t)

	env, ok := invoke(t, r, "get_customer_ltv", `{"region":"North"}`).(*Envelope)
	require.True(t, ok)
	assert.Equal(t, "north", env.Metadata.FiltersApplied["region"])

	env, ok = invoke(t, r, "get_revenue_by_category", `{"categories":["Electronics","HOME"]}`).(*Envelope)
	require.True(t, ok)
	assert.Equal(t, []string{"electronics", "home"}, env.Metadata.FiltersApplied["categories"])
}

func TestInvoke_Deterministic(t *testing.T) {
	r := newTestRegistry(t)

	for _, name := range []string{"get_revenue_by_category", "compare_regions", "get_customer_ltv"} {
		a, err := json.Marshal(invoke(t, r, name, ""))
		require.NoError(t, err)
		b, err := json.Marshal(invoke(t, r, name, ""))
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b), name)
	}
}

func TestInvoke_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	engine := analytics.New(datasettest.Dataset(t, datasettest.Small()))
	r := NewRegistry(engine, WithLogger(observability.Discard()), WithMetrics(observability.NewMetrics(reg)))

	invoke(t, r, "compare_regions", "")
	invoke(t, r, "get_return_rates", `{"category":"toys"}`)
	invoke(t, r, "no_such_tool", "")

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got := map[string]float64{}
	for _, mf := range mfs {
		if mf.GetName() != "shop_tool_invocations_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			var tool, outcome string
			for _, lp := range m.GetLabel() {
				switch lp.GetName() {
				case "tool":
					tool = lp.GetValue()
				case "outcome":
					outcome = lp.GetValue()
				}
			}
			got[tool+"/"+outcome] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{
		"compare_regions/ok":             1,
		"get_return_rates/invalid_input": 1,
		"unregistered/invalid_input":     1,
	}, got)
}

func TestSummaries(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		tool   string
		params string
		want   string
	}{
		{"get_customer_ltv", `{"top_n":2}`,
			"Top 2 customers by lifetime value. #1 is C1 (North, Regular) with $350.00 from 2 transactions. Average LTV across 4 customers is $191.25."},
		{"get_return_rates", "",
			"Overall return rate is 22.2% with $260.00 lost to returns. Clothing has the highest return rate at 50.0% (1 of 2 transactions)."},
		{"compare_regions", "",
			"North leads in revenue with $350.00 from 3 transactions (average order $175.00). North has the most customers (1)."},
		{"compare_time_periods", `{"period_label":"mom"}`,
			"Revenue is down 15.6% (month over month). Current 2024-03-01 to 2024-03-15: $190.00 from 2 transactions. Previous 2024-02-01 to 2024-02-29: $225.00 from 3 transactions. Trend: decline."},
		{"get_data_overview", "",
			"Dataset contains 9 transactions from 4 customers, spanning 2024-01-05 to 2024-03-15."},
		{"get_segment_comparison", "",
			"Regular customers lead in revenue with $500.00 (65.4% of total). Regular has the highest average transaction ($166.67). Total customers: 4."},
		{"get_payment_method_analysis", "",
			"Most popular payment method is Credit Card with 33.3% of transactions. Highest average order value: Credit Card ($225.00). Total revenue: $765.00."},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			env := invoke(t, r, tt.tool, tt.params).(*Envelope)
			assert.Equal(t, tt.want, env.Summary)
		})
	}
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "$1,234,567.89", money(1234567.891))
	assert.Equal(t, "$2.68", money(2.675))
	assert.Equal(t, "$0.00", money(0))
	assert.Equal(t, "12.3%", pct(12.345))
	assert.Equal(t, "VIP", label("vip"))
	assert.Equal(t, "Apple Pay", label("apple_pay"))
}
