package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/darazboard/order-sync/internal/dal/postgres"
	"github.com/darazboard/order-sync/internal/dal/rabbitmq"
	outboxrepo "github.com/darazboard/order-sync/internal/dal/repositories/outbox/postgres"
	"github.com/darazboard/order-sync/internal/daraz"
	"github.com/darazboard/order-sync/internal/otel"
	"github.com/darazboard/order-sync/internal/service/services/ordersvc"
	"github.com/darazboard/order-sync/internal/service/services/syncsvc"
	"github.com/darazboard/order-sync/internal/service/services/trendsvc"
	httptransport "github.com/darazboard/order-sync/internal/transport/http"
	outboxworker "github.com/darazboard/order-sync/internal/worker/outbox"
	"github.com/darazboard/order-sync/internal/worker/scheduler"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

// App represents the application.
type App struct {
	syncSvc         *syncsvc.SyncService
	transport       *httptransport.HTTPTransport
	postgresClient  *postgres.Client
	rabbitClient    *rabbitmq.Client
	schedulerWorker *scheduler.Worker
	outboxWorker    *outboxworker.Worker
	otelController  *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()

	postgresClient := postgres.MustNewClient()
	rabbitClient := rabbitmq.MustNewClient()

	if _, err := rabbitClient.DeclareQueue(rabbitmq.DeclareQueueConfig{
		Name:    viper.GetString("rabbitmq.orders.queue"),
		Durable: true,
	}); err != nil {
		panic("error while declaring orders queue: " + err.Error())
	}

	darazClient := daraz.NewClient()

	syncSvc := syncsvc.MustNewSyncService(
		syncsvc.WithPostgresClient(postgresClient),
		syncsvc.WithMarketplace(darazClient),
	)

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
	)

	trendSvc := trendsvc.MustNewTrendService(
		trendsvc.WithPostgresClient(postgresClient),
	)

	transport := httptransport.NewHTTPTransport(syncSvc, orderSvc, trendSvc, darazClient)
	transport.RegisterRoutes()

	schedulerWorker := scheduler.NewWorker(syncSvc)
	outboxWorker := outboxworker.NewWorker(
		outboxrepo.NewPostgresOutboxRepository(postgresClient.Pool()),
		rabbitClient,
	)

	return &App{
		syncSvc:         syncSvc,
		transport:       transport,
		postgresClient:  postgresClient,
		rabbitClient:    rabbitClient,
		schedulerWorker: schedulerWorker,
		outboxWorker:    outboxWorker,
		otelController:  otelController,
	}
}

// Run starts the HTTP server and the background workers and blocks
// until an interrupt signal arrives or one of them fails, then shuts
// everything down gracefully.
func (a *App) Run() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.schedulerWorker.Start(gctx)
		return nil
	})

	g.Go(func() error {
		a.outboxWorker.Start(gctx)
		return nil
	})

	g.Go(func() error {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return a.transport.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Application error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Tracing shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
