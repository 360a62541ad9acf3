package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"
	"golang.org/x/sync/errgroup"

	"shop-insights/internal/observability"
	"shop-insights/internal/tools"
	"shop-insights/internal/ui/templates"
)

type SSEHandlers struct {
	registry *tools.Registry
	logger   *slog.Logger
}

func NewSSEHandlers(registry *tools.Registry, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		registry: registry,
		logger:   logger,
	}
}

// HandleTool streams one tool's envelope as a signal plus its rendered
// summary, and its table when the tool has a dashboard panel.
func (h *SSEHandlers) HandleTool(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	params := h.registry.ParamsFromValues(name, r.URL.Query())
	reply := h.invoke(r.Context(), name, params)

	sse := datastar.NewSSE(w, r)
	h.patchSignals(sse, map[string]any{name: reply})
	h.patchReply(r.Context(), sse, name, reply)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// HandleRefreshAll recomputes every dashboard panel with default parameters.
func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	replies := make([]tools.Reply, len(dashboardPanels))

	var g errgroup.Group
	for i, p := range dashboardPanels {
		g.Go(func() error {
			replies[i] = h.invoke(r.Context(), p.Tool, nil)
			return nil
		})
	}
	g.Wait()

	sse := datastar.NewSSE(w, r)

	signals := make(map[string]any, len(replies))
	for i, p := range dashboardPanels {
		signals[p.Tool] = replies[i]
		h.patchReply(r.Context(), sse, p.Tool, replies[i])
	}
	h.patchSignals(sse, signals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// invoke always produces a reply; system failures become a fatal envelope
// after being logged.
func (h *SSEHandlers) invoke(ctx context.Context, name string, params json.RawMessage) tools.Reply {
	reply, err := h.registry.Invoke(ctx, name, params)
	if err != nil {
		h.logger.Error("tool invocation failed",
			"tool", name,
			"error", err,
			"request_id", observability.GetRequestID(ctx),
		)
		return tools.FatalEnvelope(err)
	}
	return reply
}

func (h *SSEHandlers) patchSignals(sse *datastar.ServerSentEventGenerator, signals map[string]any) {
	data, err := json.Marshal(signals)
	if err != nil {
		h.logger.Error("marshal signals", "error", err)
		return
	}
	if err := sse.PatchSignals(data); err != nil {
		h.logger.Warn("patch signals", "error", err)
	}
}

func (h *SSEHandlers) patchReply(ctx context.Context, sse *datastar.ServerSentEventGenerator, name string, reply tools.Reply) {
	switch v := reply.(type) {
	case *tools.Envelope:
		h.patchElement(ctx, sse, templates.Summary(name, v.Summary))
		if p, ok := lookupPanel(name); ok {
			h.patchElement(ctx, sse, templates.Table(name, p.headers, p.rows(v.Data), maxTableRows))
		}
	case *tools.ErrorEnvelope:
		h.patchElement(ctx, sse, templates.Notice(name, v.Message, v.Suggestions))
	}
}

func (h *SSEHandlers) patchElement(ctx context.Context, sse *datastar.ServerSentEventGenerator, c templ.Component) {
	var b strings.Builder
	if err := c.Render(ctx, &b); err != nil {
		h.logger.Error("render element", "error", err)
		return
	}
	if err := sse.PatchElements(b.String()); err != nil {
		h.logger.Warn("patch elements", "error", err)
	}
}
