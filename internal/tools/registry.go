// Package tools exposes the analytics engine as a registry of named tools
// that take JSON parameters and answer with response envelopes.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"shop-insights/internal/analytics"
	apperrors "shop-insights/internal/errors"
	"shop-insights/internal/observability"
)

type runFunc func(e *analytics.Engine, raw json.RawMessage) (data any, scope analytics.Scope, summary string, err error)

// Tool is one registered operation and its schema.
type Tool struct {
	analytics.Capability
	run runFunc
}

type scopedReport interface {
	Scope() analytics.Scope
}

// define adapts a typed engine operation to the registry's untyped calling
// convention: decode params over their defaults, run, summarize.
func define[P any, R scopedReport](name string, defaults func() P, op func(*analytics.Engine, P) (R, error), summarize func(R) string) Tool {
	capability, ok := analytics.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("tool %q missing from the analytics catalog", name))
	}
	return Tool{
		Capability: capability,
		run: func(e *analytics.Engine, raw json.RawMessage) (any, analytics.Scope, string, error) {
			params := defaults()
			if err := decodeParams(raw, &params, capability); err != nil {
				return nil, analytics.Scope{}, "", err
			}
			report, err := op(e, params)
			if err != nil {
				return nil, analytics.Scope{}, "", err
			}
			return report, report.Scope(), summarize(report), nil
		},
	}
}

func noParams[R scopedReport](op func(*analytics.Engine) R) func(*analytics.Engine, struct{}) (R, error) {
	return func(e *analytics.Engine, _ struct{}) (R, error) { return op(e), nil }
}

func zero[P any]() P {
	var p P
	return p
}

func builtinTools() []Tool {
	return []Tool{
		define(analytics.ToolRevenueByCategory, zero[analytics.RevenueParams], (*analytics.Engine).RevenueByCategory, summarizeRevenue),
		define(analytics.ToolCustomerLTV, analytics.DefaultLTVParams, (*analytics.Engine).CustomerLTV, summarizeLTV),
		define(analytics.ToolReturnRates, zero[analytics.ReturnRateParams], (*analytics.Engine).ReturnRateByCategory, summarizeReturns),
		define(analytics.ToolCompareRegions, zero[struct{}], func(e *analytics.Engine, _ struct{}) (*analytics.RegionReport, error) {
			return e.CompareRegions()
		}, summarizeRegions),
		define(analytics.ToolComparePeriods, analytics.DefaultPeriodParams, (*analytics.Engine).ComparePeriods, summarizePeriods),
		define(analytics.ToolDataOverview, zero[struct{}], noParams((*analytics.Engine).DataOverview), summarizeOverview),
		define(analytics.ToolPaymentMethods, zero[analytics.PaymentParams], (*analytics.Engine).PaymentMethodAnalysis, summarizePayments),
		define(analytics.ToolSegments, zero[analytics.SegmentParams], (*analytics.Engine).SegmentComparison, summarizeSegments),
		define(analytics.ToolRevenueTrends, zero[analytics.TrendParams], (*analytics.Engine).RevenueTrends, summarizeTrends),
		define(analytics.ToolCapabilities, zero[struct{}], noParams((*analytics.Engine).Capabilities), summarizeCapabilities),
	}
}

// decodeParams rejects unknown fields and type mismatches as invalid input.
func decodeParams(raw json.RawMessage, dst any, c analytics.Capability) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		names := make([]string, 0, len(c.Parameters))
		for _, p := range c.Parameters {
			names = append(names, p.Name)
		}
		suggestions := []string{fmt.Sprintf("%s takes no parameters", c.ToolName)}
		if len(names) > 0 {
			suggestions = []string{fmt.Sprintf("valid parameters for %s: %v", c.ToolName, names)}
		}
		return apperrors.InvalidInput(fmt.Sprintf("invalid parameters for %s: %v", c.ToolName, err), suggestions...)
	}
	return nil
}

type Option func(*Registry)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// Registry dispatches tool calls by name against one engine.
type Registry struct {
	engine  *analytics.Engine
	tools   map[string]Tool
	order   []string
	logger  *slog.Logger
	metrics *observability.Metrics
}

func NewRegistry(engine *analytics.Engine, opts ...Option) *Registry {
	r := &Registry{
		engine: engine,
		tools:  make(map[string]Tool),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, t := range builtinTools() {
		r.tools[t.ToolName] = t
		r.order = append(r.order, t.ToolName)
	}
	return r
}

func (r *Registry) Engine() *analytics.Engine { return r.engine }

// Has reports whether name is a registered tool.
func (r *Registry) Has(name string) bool {
	_, ok := r.tools[name]
	return ok
}

// Tools lists every tool schema in registration order.
func (r *Registry) Tools() []analytics.Capability {
	out := make([]analytics.Capability, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].Capability)
	}
	return out
}

// Names lists every registered tool name in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Invoke runs a tool. Caller mistakes come back as an *ErrorEnvelope with a
// nil error; integrity and computation failures come back as an error and
// should abort the caller.
func (r *Registry) Invoke(ctx context.Context, name string, params json.RawMessage) (reply Reply, err error) {
	ctx, span := observability.StartSpan(ctx, "tool "+name)
	span.SetTag("tool", name)
	start := time.Now()
	outcome := "ok"
	metricLabel := name
	if !r.Has(name) {
		metricLabel = "unregistered"
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = apperrors.Computation(fmt.Sprintf("%s failed: %v", name, rec))
			reply = nil
		}
		if err != nil {
			outcome = string(apperrors.CodeComputation)
			if appErr := apperrors.As(err); appErr != nil {
				outcome = string(appErr.Code)
			}
			span.SetError(err)
			r.logger.ErrorContext(ctx, "tool failed",
				"tool", name,
				"error", err,
				"request_id", observability.GetRequestID(ctx),
			)
		}
		r.metrics.ObserveTool(metricLabel, outcome, time.Since(start))
		span.End(r.logger)
	}()

	tool, ok := r.tools[name]
	if !ok {
		outcome = string(apperrors.CodeInvalidInput)
		return errorEnvelope(apperrors.InvalidInput(fmt.Sprintf("unknown tool %q", name), r.order...)), nil
	}

	data, scope, summary, err := tool.run(r.engine, params)
	if err != nil {
		if apperrors.IsQuery(err) {
			appErr := apperrors.As(err)
			outcome = string(appErr.Code)
			r.logger.InfoContext(ctx, "tool rejected query",
				"tool", name,
				"error_type", appErr.Code,
				"message", appErr.Message,
				"request_id", observability.GetRequestID(ctx),
			)
			return errorEnvelope(appErr), nil
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	r.logger.DebugContext(ctx, "tool completed",
		"tool", name,
		"record_count", scope.RecordCount,
		"duration", time.Since(start),
	)
	return newEnvelope(name, summary, data, scope, r.engine.Boundaries()), nil
}
