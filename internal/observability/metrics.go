package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors shared by the loader, the tool
// registry and the HTTP middleware. A nil *Metrics is valid and records nothing.
type Metrics struct {
	toolCalls    *prometheus.CounterVec
	toolDuration *prometheus.HistogramVec
	datasetRows  *prometheus.GaugeVec
	loadDuration prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewMetrics registers every collector on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}
	m := &Metrics{
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shop_tool_invocations_total",
			Help: "Analytics tool invocations by outcome.",
		}, []string{"tool", "outcome"}),
		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shop_tool_duration_seconds",
			Help:    "Analytics tool latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"tool"}),
		datasetRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "shop_dataset_rows",
			Help: "Rows held in memory per table.",
		}, []string{"table"}),
		loadDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shop_dataset_load_duration_seconds",
			Help: "Duration of the last dataset load in seconds.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shop_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shop_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
	reg.MustRegister(m.toolCalls, m.toolDuration, m.datasetRows, m.loadDuration, m.httpRequests, m.httpDuration)
	return m
}

// ObserveTool records one tool invocation. outcome is "ok" or an error type.
func (m *Metrics) ObserveTool(tool, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.toolCalls.WithLabelValues(normalizeLabel(tool), normalizeLabel(outcome)).Inc()
	m.toolDuration.WithLabelValues(normalizeLabel(tool)).Observe(d.Seconds())
}

func (m *Metrics) ObserveLoad(transactions, customers int, d time.Duration) {
	if m == nil {
		return
	}
	m.datasetRows.WithLabelValues("transactions").Set(float64(transactions))
	m.datasetRows.WithLabelValues("customers").Set(float64(customers))
	m.loadDuration.Set(d.Seconds())
}

func (m *Metrics) ObserveRequest(route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(normalizeLabel(route), strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(normalizeLabel(route)).Observe(d.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
