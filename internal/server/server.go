package server

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shop-insights/internal/handlers"
	"shop-insights/internal/tools"
)

type Server struct {
	registry    *tools.Registry
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

// NewServer routes the dashboard, the tool API and the SSE streams. A nil
// gatherer leaves /metrics unregistered.
func NewServer(registry *tools.Registry, logger *slog.Logger, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		registry:    registry,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(registry, logger),
		sseHandlers: handlers.NewSSEHandlers(registry, logger),
	}
	s.setupRoutes(gatherer)
	return s
}

func (s *Server) setupRoutes(gatherer prometheus.Gatherer) {
	// Dashboard and operational routes
	s.mux.HandleFunc("GET /{$}", handlers.HandleDashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)
	if gatherer != nil {
		s.mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	// Tool API
	s.mux.HandleFunc("GET /api/tools", s.apiHandlers.HandleListTools)
	s.mux.HandleFunc("GET /api/tools/{name}", s.apiHandlers.HandleInvokeTool)
	s.mux.HandleFunc("POST /api/tools/{name}", s.apiHandlers.HandleInvokeTool)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/tools/{name}", s.sseHandlers.HandleTool)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
