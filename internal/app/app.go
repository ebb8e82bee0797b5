package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campuseats/canteen/internal/dal/postgres"
	"github.com/campuseats/canteen/internal/dal/rabbitmq"
	outboxrepo "github.com/campuseats/canteen/internal/dal/repositories/outbox/postgres"
	"github.com/campuseats/canteen/internal/jaeger"
	"github.com/campuseats/canteen/internal/service/services/foodsvc"
	"github.com/campuseats/canteen/internal/service/services/ordersvc"
	"github.com/campuseats/canteen/internal/service/services/profilesvc"
	"github.com/campuseats/canteen/internal/service/services/reportsvc"
	httptransport "github.com/campuseats/canteen/internal/transport/http"
	outboxworker "github.com/campuseats/canteen/internal/worker/outbox"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// App represents the application.
type App struct {
	transport      *httptransport.HTTPTransport
	outboxWorker   *outboxworker.Worker
	postgresClient *postgres.Client
	rabbitClient   *rabbitmq.Client
	tracerProvider *sdktrace.TracerProvider
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	exporter := jaeger.MustNewJaeger()
	tracerProvider := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tracerProvider)

	postgresClient := postgres.MustNewClient()

	rabbitClient := rabbitmq.MustNewClient()
	rabbitClient.MustDeclareExchange(viper.GetString("rabbitmq.events.exchange"))

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
	)
	foodSvc := foodsvc.MustNewFoodService(
		foodsvc.WithPostgresClient(postgresClient),
	)
	profileSvc := profilesvc.MustNewProfileService(
		profilesvc.WithPostgresClient(postgresClient),
	)
	reportSvc := reportsvc.MustNewReportService(
		reportsvc.WithPostgresClient(postgresClient),
	)

	transport := httptransport.NewHTTPTransport(orderSvc, foodSvc, profileSvc, reportSvc)
	transport.RegisterRoutes()

	worker := outboxworker.NewWorker(
		outboxrepo.NewPostgresOutboxRepository(postgresClient.Pool()),
		rabbitClient,
	)

	return &App{
		transport:      transport,
		outboxWorker:   worker,
		postgresClient: postgresClient,
		rabbitClient:   rabbitClient,
		tracerProvider: tracerProvider,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	go a.outboxWorker.Start(workerCtx)

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	cancelWorker()

	if err := a.tracerProvider.Shutdown(ctx); err != nil {
		slog.Error("Tracer provider shutdown error", "error", err)
	}

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Application shutdown complete")
}
