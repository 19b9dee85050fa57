package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/serviciospe/discovery-assistant/internal/config"
	"github.com/serviciospe/discovery-assistant/internal/core/domain"
	"github.com/serviciospe/discovery-assistant/internal/infrastructure/queue/nats"
	"github.com/serviciospe/discovery-assistant/internal/observability/logging"
	"github.com/serviciospe/discovery-assistant/internal/observability/metrics"
)

const serviceName = "discovery-assistant-worker"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		slog.Error("queue_init_failed", "error", err)
		os.Exit(1)
	}
	defer queue.Close()

	workerMetrics := metrics.NewWorkerMetrics()
	metricsServer := &http.Server{
		Addr:        ":" + cfg.WorkerMetricsPort,
		Handler:     workerMetrics.Handler(),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	go func() {
		slog.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("worker_metrics_server_failed", "error", err)
		}
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = queue.SubscribeTurnCompleted(ctx, func(_ context.Context, event domain.TurnEvent) error {
		workerMetrics.ObserveTurnEvent(serviceName, string(event.Branch), event.Picks, event.DurationMS)
		slog.Debug("turn_event",
			"session_id", event.SessionID,
			"branch", event.Branch,
			"picks", event.Picks,
			"duration_ms", event.DurationMS,
		)
		return nil
	})
	if err != nil {
		slog.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("worker_metrics_shutdown_failed", "error", err)
	}
}
