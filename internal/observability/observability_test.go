package observability

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-insights/internal/config"
)

func TestNewLoggerTo(t *testing.T) {
	tests := []struct {
		name   string
		cfg    config.LoggerConfig
		want   string
		silent bool
	}{
		{"json info", config.LoggerConfig{Level: "info", Format: "json"}, `"msg":"hello"`, false},
		{"text info", config.LoggerConfig{Level: "info", Format: "text"}, "msg=hello", false},
		{"error level drops info", config.LoggerConfig{Level: "error", Format: "json"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewLoggerTo(&buf, tt.cfg).Info("hello")
			if tt.silent {
				assert.Empty(t, buf.String())
				return
			}
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")
	assert.Equal(t, "abc", GetRequestID(ctx))
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestStartSpan_InheritsTrace(t *testing.T) {
	ctx, parent := StartSpan(context.Background(), "request")
	_, child := StartSpan(ctx, "tool")

	assert.Equal(t, parent.TraceID, child.TraceID)
	assert.Equal(t, parent.SpanID, child.ParentID)
	assert.NotEqual(t, parent.SpanID, child.SpanID)
	assert.Len(t, parent.SpanID, 16)

	child.SetError(fmt.Errorf("boom"))
	child.End(Discard())
	assert.Equal(t, SpanStatusError, child.Status)
	assert.Equal(t, "boom", child.Error)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveTool("get_revenue_by_category", "ok", 5*time.Millisecond)
	m.ObserveTool("get_revenue_by_category", "no_data", time.Millisecond)
	m.ObserveLoad(120, 40, 30*time.Millisecond)
	m.ObserveRequest("/api/tools/{name}", 200, time.Millisecond)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	assert.Equal(t, 1.0, counterValue(t, mfs, "shop_tool_invocations_total", "outcome", "ok"))
	assert.Equal(t, 1.0, counterValue(t, mfs, "shop_tool_invocations_total", "outcome", "no_data"))
	assert.Equal(t, 120.0, gaugeValue(t, mfs, "shop_dataset_rows", "table", "transactions"))
	assert.Equal(t, 1.0, counterValue(t, mfs, "shop_http_requests_total", "status", "200"))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.Nil(t, NewMetrics(nil))
	assert.NotPanics(t, func() {
		m.ObserveTool("x", "ok", time.Second)
		m.ObserveLoad(1, 1, time.Second)
		m.ObserveRequest("/", 200, time.Second)
	})
}

func counterValue(t *testing.T, mfs []*dto.MetricFamily, name, label, value string) float64 {
	t.Helper()
	m := findMetric(t, mfs, name, label, value)
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, mfs []*dto.MetricFamily, name, label, value string) float64 {
	t.Helper()
	m := findMetric(t, mfs, name, label, value)
	return m.GetGauge().GetValue()
}

func findMetric(t *testing.T, mfs []*dto.MetricFamily, name, label, value string) *dto.Metric {
	t.Helper()
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return metric
				}
			}
		}
	}
	t.Fatalf("metric %s{%s=%q} not found", name, label, value)
	return nil
}
