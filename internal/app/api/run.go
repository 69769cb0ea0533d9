package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"golang.org/x/sync/errgroup"

	posserver "github.com/Apurer/go-gin-pos-server/go"

	adminobs "github.com/Apurer/go-gin-pos-server/internal/domains/admin/adapters/observability"
	adminapp "github.com/Apurer/go-gin-pos-server/internal/domains/admin/application"
	catalogmirror "github.com/Apurer/go-gin-pos-server/internal/domains/catalog/adapters/mirror"
	catalogdomain "github.com/Apurer/go-gin-pos-server/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-pos-server/internal/domains/directory/adapters/credentials"
	directorymirror "github.com/Apurer/go-gin-pos-server/internal/domains/directory/adapters/mirror"
	directoryapp "github.com/Apurer/go-gin-pos-server/internal/domains/directory/application"
	directorydomain "github.com/Apurer/go-gin-pos-server/internal/domains/directory/domain"
	orderingmessaging "github.com/Apurer/go-gin-pos-server/internal/domains/ordering/adapters/messaging"
	orderingobs "github.com/Apurer/go-gin-pos-server/internal/domains/ordering/adapters/observability"
	"github.com/Apurer/go-gin-pos-server/internal/domains/ordering/adapters/persistence/documents"
	orderingworkflows "github.com/Apurer/go-gin-pos-server/internal/domains/ordering/adapters/workflows"
	orderingapp "github.com/Apurer/go-gin-pos-server/internal/domains/ordering/application"
	orderingports "github.com/Apurer/go-gin-pos-server/internal/domains/ordering/ports"
	settingsmirror "github.com/Apurer/go-gin-pos-server/internal/domains/settings/adapters/mirror"
	settingsdomain "github.com/Apurer/go-gin-pos-server/internal/domains/settings/domain"
	"github.com/Apurer/go-gin-pos-server/internal/platform/docstore"
	"github.com/Apurer/go-gin-pos-server/internal/platform/docstore/gormstore"
	"github.com/Apurer/go-gin-pos-server/internal/platform/docstore/memory"
	"github.com/Apurer/go-gin-pos-server/internal/platform/messaging/rabbitmq"
	"github.com/Apurer/go-gin-pos-server/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-gin-pos-server/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-pos-server/internal/platform/postgres"
	platformsqlite "github.com/Apurer/go-gin-pos-server/internal/platform/sqlite"
	"github.com/Apurer/go-gin-pos-server/internal/shared/mirror"
)

const (
	serviceName       = "pos-api"
	readyTimeout      = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Run boots the terminal API with observability, the document store, mirrors and fulfillment wired.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName,
		platformobservability.WithAttributes(
			attribute.String("pos.docstore.driver", cfg.DocstoreDriver),
			attribute.String("pos.business.name", cfg.BusinessName),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	store, cleanupStore, err := OpenDocstore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanupStore()

	mirrorOpts := []mirror.Option{mirror.WithLogger(logger)}
	catalog := catalogmirror.New(store, mirrorOpts...)
	directory := directorymirror.New(store, mirrorOpts...)
	settings := settingsmirror.New(store, settingsdomain.Default(cfg.BusinessName, cfg.TaxRatePercent), logger, mirrorOpts...)
	cancelCatalogLog := catalog.OnChange(func(items []catalogdomain.Item) {
		logger.Debug("catalog snapshot replaced", slog.Int("items", len(items)))
	})
	defer cancelCatalogLog()
	cancelDirectoryLog := directory.OnChange(func(employees []directorydomain.Employee) {
		logger.Debug("directory snapshot replaced", slog.Int("employees", len(employees)))
	})
	defer cancelDirectoryLog()
	if err := startMirrors(ctx, logger, catalog, directory, settings); err != nil {
		return err
	}
	defer func() {
		catalog.Stop()
		directory.Stop()
		settings.Stop()
	}()

	verifier, err := credentials.ForMode(cfg.CredentialMode)
	if err != nil {
		return err
	}
	directoryService := directoryapp.NewService(directory,
		directoryapp.WithVerifier(verifier),
		directoryapp.WithAdminPIN(cfg.AdminPIN),
	)

	dispatcher, cleanupDispatcher := buildDispatcher(cfg, instruments)
	defer cleanupDispatcher()
	pipeline := orderingapp.NewCommitPipeline(
		documents.NewOrderStore(store),
		orderingapp.WithDispatcher(dispatcher),
		orderingapp.WithCommitLogger(logger),
	)
	sessions := orderingapp.NewSessions(catalog, settings)
	cancelReprice := settings.OnChange(func(settingsdomain.Business) { sessions.RepriceAll() })
	defer cancelReprice()
	orderingService := orderingobs.New(
		orderingapp.NewService(sessions, settings, pipeline),
		orderingobs.WithLogger(logger),
		orderingobs.WithTracer(instruments.Tracer("internal.ordering.application")),
		orderingobs.WithMeter(instruments.Meter("internal.ordering.application")),
	)
	gateway := adminobs.New(
		adminapp.NewGateway(store, catalog, directory, settings,
			adminapp.WithVerifier(verifier),
			adminapp.WithConfirmationTTL(cfg.ConfirmationTTL),
		),
		adminobs.WithLogger(logger),
		adminobs.WithTracer(instruments.Tracer("internal.admin.application")),
		adminobs.WithMeter(instruments.Meter("internal.admin.application")),
	)

	secret := cfg.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		logger.Warn("JWT_SECRET not set, tokens will not survive a restart")
	}
	auth, err := posserver.NewAuthenticator(secret, cfg.SessionTTL)
	if err != nil {
		return err
	}

	handlers := posserver.ApiHandleFunctions{
		Auth:       auth,
		SessionAPI: posserver.NewSessionAPI(directoryService, orderingService, auth),
		CatalogAPI: posserver.NewCatalogAPI(catalog, settings),
		OrderAPI:   posserver.NewOrderAPI(orderingService),
		AdminAPI:   posserver.NewAdminAPI(gateway),
		HealthAPI: posserver.NewHealthAPI(map[string]posserver.HealthCheck{
			"catalog":   catalog,
			"directory": directory,
			"settings":  settings,
		}),
	}
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), otelgin.Middleware(serviceName))
	router := posserver.NewRouterWithGinEngine(engine, handlers)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("POS API listening", slog.String("addr", server.Addr), slog.String("docstore", cfg.DocstoreDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("POS API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
			return err
		}
		return nil
	})
	g.Go(func() error {
		purgeIdleSessions(gctx, sessions, cfg, logger)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// OpenDocstore connects the configured backend and applies its schema.
func OpenDocstore(ctx context.Context, cfg Config, logger *slog.Logger) (docstore.Store, func(), error) {
	switch cfg.DocstoreDriver {
	case DriverPostgres:
		db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to unwrap postgres connection: %w", err)
		}
		if err := migrations.Run(db); err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("failed to migrate postgres: %w", err)
		}
		notifier := platformpostgres.NewNotifier(db, cfg.PostgresDSN, platformpostgres.WithNotifierLogger(logger))
		logger.Info("document store configured with postgres")
		return gormstore.NewStore(db, notifier, gormstore.WithLogger(logger)), func() {
			notifier.Close()
			_ = sqlDB.Close()
		}, nil
	case DriverSQLite:
		db, err := platformsqlite.Connect(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to unwrap sqlite connection: %w", err)
		}
		if err := migrations.Run(db); err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("failed to migrate sqlite: %w", err)
		}
		logger.Info("document store configured with sqlite", slog.String("path", cfg.SQLitePath))
		return gormstore.NewStore(db, gormstore.NewLocalNotifier(), gormstore.WithLogger(logger)), func() { _ = sqlDB.Close() }, nil
	default:
		logger.Warn("no database configured, documents are kept in memory")
		return memory.NewStore(), func() {}, nil
	}
}

type startable interface {
	Start(ctx context.Context) error
	WaitReady(ctx context.Context) error
}

// startMirrors subscribes every mirror. A mirror that is not ready in time is
// logged and left retrying in the background.
func startMirrors(ctx context.Context, logger *slog.Logger, mirrors ...startable) error {
	for _, m := range mirrors {
		if err := m.Start(ctx); err != nil {
			return fmt.Errorf("failed to start mirror: %w", err)
		}
	}
	waitCtx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()
	g, gctx := errgroup.WithContext(waitCtx)
	for _, m := range mirrors {
		g.Go(func() error { return m.WaitReady(gctx) })
	}
	if err := g.Wait(); err != nil {
		logger.Warn("mirrors not ready, serving from defaults until they recover", slog.String("error", err.Error()))
	}
	return nil
}

func buildDispatcher(cfg Config, instruments *platformobservability.Instruments) (orderingports.FulfillmentDispatcher, func()) {
	logger := instruments.Logger
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, publishing orders inline", slog.String("error", err.Error()))
	} else {
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
		return orderingworkflows.NewTemporalDispatcher(temporalClient), temporalClient.Close
	}
	publisher, cleanup := buildKitchenPublisher(cfg, logger)
	return orderingworkflows.NewInlineDispatcher(publisher), cleanup
}

func buildKitchenPublisher(cfg Config, logger *slog.Logger) (orderingports.KitchenPublisher, func()) {
	if cfg.AMQPURL == "" {
		logger.Warn("AMQP_URL not set, submitted orders are not announced to the kitchen")
		return orderingmessaging.NoopPublisher{}, func() {}
	}
	broker, err := rabbitmq.Dial(cfg.AMQPURL)
	if err != nil {
		logger.Warn("failed to connect to rabbitmq, submitted orders are not announced", slog.String("error", err.Error()))
		return orderingmessaging.NoopPublisher{}, func() {}
	}
	if err := broker.DeclareTopology(); err != nil {
		logger.Warn("failed to declare kitchen topology", slog.String("error", err.Error()))
		broker.Close()
		return orderingmessaging.NoopPublisher{}, func() {}
	}
	return orderingmessaging.NewKitchenPublisher(broker), broker.Close
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: instruments.Tracer("temporal-client"),
	})
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

// purgeIdleSessions closes order sessions that outlived their token.
func purgeIdleSessions(ctx context.Context, sessions *orderingapp.Sessions, cfg Config, logger *slog.Logger) {
	ticker := time.NewTicker(cfg.PurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if purged := sessions.PurgeIdle(now.Add(-cfg.SessionTTL)); purged > 0 {
				logger.Info("idle sessions purged", slog.Int("count", purged), slog.Int("open", sessions.Len()))
			}
		}
	}
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
