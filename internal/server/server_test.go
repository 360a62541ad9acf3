package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-insights/internal/analytics"
	"shop-insights/internal/config"
	"shop-insights/internal/dataset/datasettest"
	"shop-insights/internal/observability"
	"shop-insights/internal/tools"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	engine := analytics.New(datasettest.Dataset(t, datasettest.Small()))
	registry := tools.NewRegistry(engine,
		tools.WithLogger(observability.Discard()),
		tools.WithMetrics(observability.NewMetrics(reg)),
	)
	return NewServer(registry, observability.Discard(), reg)
}

func TestServer_Routes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		method     string
		path       string
		wantStatus int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/admin/stats", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/tools", http.StatusOK},
		{http.MethodGet, "/api/tools/get_data_overview", http.StatusOK},
		{http.MethodPost, "/api/tools/get_data_overview", http.StatusOK},
		{http.MethodGet, "/api/tools/nope", http.StatusNotFound},
		{http.MethodGet, "/sse/tools/compare_regions", http.StatusOK},
		{http.MethodGet, "/sse/refresh-all", http.StatusOK},
		{http.MethodGet, "/favicon.ico", http.StatusNotFound},
		{http.MethodPost, "/health", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestServer_MetricsExposeToolCalls(t *testing.T) {
	srv := newTestServer(t)

	srv.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/tools/compare_regions", nil))

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), `shop_tool_invocations_total{outcome="ok",tool="compare_regions"} 1`)
}

func TestServer_WithoutMetrics(t *testing.T) {
	engine := analytics.New(datasettest.Dataset(t, datasettest.Small()))
	srv := NewServer(tools.NewRegistry(engine), observability.Discard(), nil)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
	}
}

func TestGracefulServer_Serve(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	httpServer := &http.Server{Handler: newTestServer(t)}
	gs := NewGracefulServer(httpServer, observability.Discard(), testConfig())

	hookRan := make(chan struct{})
	gs.RegisterShutdownHook(func(ctx context.Context) error {
		close(hookRan)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gs.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	<-hookRan
}

func TestGracefulServer_HookFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	gs := NewGracefulServer(&http.Server{Handler: http.NotFoundHandler()}, observability.Discard(), testConfig())
	boom := errors.New("flush failed")
	gs.RegisterShutdownHook(func(context.Context) error { return boom })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = gs.Serve(ctx, ln)
	assert.ErrorIs(t, err, boom)
}
