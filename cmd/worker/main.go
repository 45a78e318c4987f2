package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avasilkov/secure-doc-portal/internal/bootstrap"
	"github.com/avasilkov/secure-doc-portal/internal/config"
	"github.com/avasilkov/secure-doc-portal/internal/core/domain"
	"github.com/avasilkov/secure-doc-portal/internal/core/usecase"
	"github.com/avasilkov/secure-doc-portal/internal/observability/logging"
	"github.com/avasilkov/secure-doc-portal/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("worker", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if app.Events == nil {
		slog.Error("worker_requires_event_stream", "nats_url", cfg.NATSURL)
		os.Exit(1)
	}

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		slog.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("worker_metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	notifier := usecase.NewNotifyTransitionUseCase(workerMetrics)

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Events.SubscribeTransitions(ctx, func(handlerCtx context.Context, event domain.TransitionEvent) error {
		notifyCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Second)
		defer cancel()
		return notifier.Notify(notifyCtx, event)
	})
	if err != nil {
		slog.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}
