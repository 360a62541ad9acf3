package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"shop-insights/internal/analytics"
	"shop-insights/internal/config"
	"shop-insights/internal/dataset"
	"shop-insights/internal/middleware"
	"shop-insights/internal/observability"
	"shop-insights/internal/server"
	"shop-insights/internal/tools"
)

const version = "1.0.0"

// app is everything main wires together, split out so tests can build it
// without binding a port.
type app struct {
	handler  http.Handler
	registry *tools.Registry
	dataset  *dataset.Dataset
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg *prometheus.Registry) (*app, error) {
	metrics := observability.NewMetrics(reg)

	loadCtx, cancel := context.WithTimeout(ctx, cfg.Data.LoadTimeout)
	defer cancel()

	loader := dataset.NewLoader(dataset.ConfigSource(cfg.Data),
		dataset.WithLogger(logger),
		dataset.WithMetrics(metrics),
	)
	ds, err := loader.Load(loadCtx)
	if err != nil {
		return nil, fmt.Errorf("load data from %s: %w", cfg.Data.Dir, err)
	}

	registry := tools.NewRegistry(analytics.New(ds),
		tools.WithLogger(logger),
		tools.WithMetrics(metrics),
	)
	srv := server.NewServer(registry, logger, reg)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit)

	// Metrics must sit next to the mux to see the matched route pattern.
	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.RateLimit(rateLimiter, logger),
		middleware.Metrics(metrics),
	)

	return &app{
		handler:  middlewareChain(srv),
		registry: registry,
		dataset:  ds,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", version,
		"config", cfg,
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := newApp(context.Background(), cfg, logger, reg)
	if err != nil {
		logger.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}
	stats := a.dataset.Stats()
	logger.Info("dataset loaded",
		"transactions", stats.Transactions,
		"customers", stats.Customers,
		"duration", stats.Duration,
	)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      a.handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("shutting down analytics service", "tools", len(a.registry.Names()))
		return nil
	})

	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
