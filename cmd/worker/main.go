package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/attribute"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	orderingmessaging "github.com/Apurer/go-gin-pos-server/internal/domains/ordering/adapters/messaging"
	"github.com/Apurer/go-gin-pos-server/internal/platform/messaging/rabbitmq"
	platformobservability "github.com/Apurer/go-gin-pos-server/internal/platform/observability"
	fulfillmentactivities "github.com/Apurer/go-gin-pos-server/internal/platform/temporal/activities/fulfillment"
	fulfillmentworkflows "github.com/Apurer/go-gin-pos-server/internal/platform/temporal/workflows/fulfillment"
)

func main() {
	ctx := context.Background()
	_ = godotenv.Load()
	const serviceName = "pos-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName,
		platformobservability.WithAttributes(attribute.String("pos.temporal.task_queue", fulfillmentworkflows.TaskQueue)),
	)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	amqpURL := strings.TrimSpace(os.Getenv("AMQP_URL"))
	broker, err := rabbitmq.Dial(amqpURL)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer broker.Close()
	if err := broker.DeclareTopology(); err != nil {
		logger.Error("failed to declare kitchen topology", slog.String("error", err.Error()))
		os.Exit(1)
	}
	activities := fulfillmentactivities.NewActivities(orderingmessaging.NewKitchenPublisher(broker))

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, fulfillmentworkflows.TaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(fulfillmentworkflows.Workflow, workflow.RegisterOptions{Name: fulfillmentworkflows.WorkflowName})
	w.RegisterActivityWithOptions(activities.PublishSubmittedOrder, activity.RegisterOptions{Name: fulfillmentactivities.PublishSubmittedOrderActivityName})

	logger.Info("worker listening", slog.String("taskQueue", fulfillmentworkflows.TaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
