package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"shop-insights/internal/dataset"
	"shop-insights/internal/errors"
	"shop-insights/internal/observability"
	"shop-insights/internal/tools"
)

// maxBodyBytes bounds a POSTed parameter object.
const maxBodyBytes = 1 << 20

type APIHandlers struct {
	registry *tools.Registry
	logger   *slog.Logger
	started  time.Time
}

func NewAPIHandlers(registry *tools.Registry, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		registry: registry,
		logger:   logger,
		started:  time.Now(),
	}
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}

type statsResponse struct {
	Dataset    dataset.Stats `json:"dataset"`
	DataStart  string        `json:"data_start"`
	DataEnd    string        `json:"data_end"`
	Tools      []string      `json:"tools"`
	Uptime     string        `json:"uptime"`
	RecordedAt time.Time     `json:"recorded_at"`
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	engine := h.registry.Engine()
	b := engine.Boundaries()

	errors.WriteSuccess(w, statsResponse{
		Dataset:    engine.Dataset().Stats(),
		DataStart:  b.DataStart.Format(time.DateOnly),
		DataEnd:    b.DataEnd.Format(time.DateOnly),
		Tools:      h.registry.Names(),
		Uptime:     time.Since(h.started).Round(time.Second).String(),
		RecordedAt: time.Now().UTC(),
	})
}

// HandleListTools returns the schema of every registered tool.
func (h *APIHandlers) HandleListTools(w http.ResponseWriter, r *http.Request) {
	errors.WriteJSON(w, http.StatusOK, h.registry.Tools())
}

// HandleInvokeTool runs a tool with parameters from the query string (GET) or
// a JSON object body (POST) and answers with its envelope.
func (h *APIHandlers) HandleInvokeTool(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	requestID := observability.GetRequestID(r.Context())

	params := h.registry.ParamsFromValues(name, r.URL.Query())
	if r.Method == http.MethodPost {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			errors.WriteError(w, h.logger, errors.Wrap(err, errors.CodeInvalidInput, "request body could not be read"), requestID)
			return
		}
		if len(body) > 0 {
			params = json.RawMessage(body)
		}
	}

	reply, err := h.registry.Invoke(r.Context(), name, params)
	if err != nil {
		h.logger.Error("tool invocation failed",
			"tool", name,
			"error", err,
			"request_id", requestID,
		)
		errors.WriteJSON(w, http.StatusInternalServerError, tools.FatalEnvelope(err))
		return
	}

	errors.WriteJSON(w, replyStatus(h.registry, name, reply), reply)
}

// replyStatus maps a reply onto an HTTP status: rejected queries are client
// errors and an unknown tool is a missing resource.
func replyStatus(registry *tools.Registry, name string, reply tools.Reply) int {
	env, ok := reply.(*tools.ErrorEnvelope)
	if !ok {
		return http.StatusOK
	}
	if !registry.Has(name) {
		return http.StatusNotFound
	}
	switch errors.ErrorCode(env.ErrorType) {
	case errors.CodeNoData:
		return http.StatusNotFound
	case errors.CodeInvalidInput:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
