package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/insightdelivered/sms-transaction-parser/internal/api"
	"github.com/insightdelivered/sms-transaction-parser/internal/config"
	"github.com/insightdelivered/sms-transaction-parser/internal/metrics"
	"github.com/insightdelivered/sms-transaction-parser/internal/mlclient"
	"github.com/insightdelivered/sms-transaction-parser/internal/parser"
	"github.com/insightdelivered/sms-transaction-parser/internal/pipeline"
)

func main() {
	cfg := config.MustLoad()

	logger := setupLogger(cfg.LogLevel)
	logger.Info("starting sms transaction parser",
		"addr", cfg.ServerAddr,
		"metrics_addr", cfg.MetricsAddr,
		"predict_url", cfg.PredictURL,
		"validation_enabled", cfg.ValidateURL != "",
	)

	m := metrics.New(nil)

	mlHTTPClient := &http.Client{Timeout: cfg.MLTimeout}
	predictor := mlclient.NewPredictionClient(cfg.PredictURL, mlHTTPClient, logger)

	var validator pipeline.Validator
	if cfg.ValidateURL != "" {
		validator = mlclient.NewValidationClient(cfg.ValidateURL, mlHTTPClient, logger)
	}

	pl := pipeline.New(parser.NewSet(), predictor, validator, logger, m)

	app := fiber.New(fiber.Config{
		AppName:               "sms-transaction-parser",
		DisableStartupMessage: true,
	})
	app.Use(api.MetricsMiddleware(m))

	handler := &api.Handler{Pipeline: pl, Logger: logger}
	handler.RegisterRoutes(app)

	// Prometheus metrics on a dedicated listener, away from the API.
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.Listen(cfg.ServerAddr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", "error", err)
		os.Exit(1)
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("failed to shutdown server gracefully", "error", err)
		}
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", "error", err)
		}
		logger.Info("server shutdown complete")
	}
}

// setupLogger creates a structured JSON logger at the given level.
func setupLogger(levelStr string) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
