package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dejobratic/cartwidget/internal/cart/adapters"
	httpadapter "github.com/dejobratic/cartwidget/internal/cart/adapters/http"
	cartmemory "github.com/dejobratic/cartwidget/internal/cart/adapters/memory"
	cartpostgres "github.com/dejobratic/cartwidget/internal/cart/adapters/postgres"
	"github.com/dejobratic/cartwidget/internal/cart/app"
	cartmetrics "github.com/dejobratic/cartwidget/internal/cart/metrics"
	"github.com/dejobratic/cartwidget/internal/cart/notify"
	"github.com/dejobratic/cartwidget/internal/cart/ports"
	"github.com/dejobratic/cartwidget/internal/cart/render"
	"github.com/dejobratic/cartwidget/internal/config"
	"github.com/dejobratic/cartwidget/internal/database"
	idemmemory "github.com/dejobratic/cartwidget/internal/idempotency/memory"
	idempostgres "github.com/dejobratic/cartwidget/internal/idempotency/postgres"
	"github.com/dejobratic/cartwidget/internal/kafka"
	"github.com/dejobratic/cartwidget/internal/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
)

const meterName = "github.com/dejobratic/cartwidget"

type storage struct {
	snapshots   ports.SnapshotStore
	idempotency ports.IdempotencyStore
	pool        *pgxpool.Pool
}

type changePublisher interface {
	ports.ChangeListener
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	level, err := telemetry.ParseLevel(cfg.Telemetry.LogLevel)
	if err != nil {
		slog.Warn("falling back to info log level", "error", err)
	}
	logger := telemetry.NewLogger(os.Stdout, level)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Environment:    cfg.Service.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTelEndpoint,
		OTLPInsecure:   cfg.Telemetry.OTelInsecure,
		EnableTracing:  cfg.Telemetry.EnableTracing,
		EnableMetrics:  cfg.Telemetry.EnableMetrics,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}

	meter := otel.Meter(meterName)
	dbMetrics, err := database.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create database metrics", "error", err)
		os.Exit(1)
	}
	cartMetrics, err := cartmetrics.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create cart metrics", "error", err)
		os.Exit(1)
	}
	httpMetrics, err := httpadapter.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create http metrics", "error", err)
		os.Exit(1)
	}
	kafkaMetrics, err := kafka.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create kafka metrics", "error", err)
		os.Exit(1)
	}

	st, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open cart storage", "backend", cfg.Cart.Storage, "error", err)
		os.Exit(1)
	}
	if st.pool != nil {
		defer st.pool.Close()
	}

	targets := httpadapter.NewPageTargets()
	notifier := notify.New(func() notify.Overlay { return targets }, notify.WithDuration(cfg.Cart.NotifyDuration))
	defer notifier.Dispose()

	store := app.NewStore(
		adapters.NewObservableSnapshotStore(st.snapshots, dbMetrics),
		app.WithStorageKey(cfg.Cart.StorageKey),
		app.WithNotifier(notifier),
		app.WithLogger(logger),
		app.WithMetrics(cartMetrics),
	)
	defer store.Dispose()

	projector := render.NewProjector(
		render.Targets{ItemList: targets, Total: targets, Badge: targets, Panel: targets},
		render.WithRemover(store),
		render.WithCurrencySymbol(cfg.Cart.CurrencySymbol),
	)
	store.Subscribe(projector)

	publisher := newPublisher(cfg, store.StorageKey(), logger, kafkaMetrics)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("failed to close event publisher", "error", err)
		}
	}()
	store.Subscribe(publisher)

	store.Load(ctx)

	cartHandler := httpadapter.NewHandler(store, projector, targets,
		httpadapter.WithNotifier(notifier),
		httpadapter.WithIdempotencyStore(st.idempotency),
		httpadapter.WithHomePages(cfg.Cart.HomePages),
		httpadapter.WithCartPage(cfg.Cart.CartPage),
		httpadapter.WithCurrencySymbol(cfg.Cart.CurrencySymbol),
		httpadapter.WithLogger(logger),
	)

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(httpadapter.WithLogging(logger))
	router.Use(httpadapter.WithMetrics(httpMetrics))

	var ready func(ctx context.Context) error
	if st.pool != nil {
		ready = func(ctx context.Context) error { return database.CheckHealth(ctx, st.pool) }
	}
	registerProbes(router, ready)

	cartHandler.Register(router)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "port", cfg.HTTP.Port, "storage", cfg.Cart.Storage)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownGrace)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	} else {
		logger.Info("http server stopped")
	}

	if err := tel.Shutdown(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown failed", "error", err)
	}
}

func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage, error) {
	if cfg.Cart.Storage == config.StorageMemory {
		logger.Info("using in-memory cart storage; the cart is lost on restart")
		return storage{
			snapshots:   cartmemory.NewSnapshotStore(),
			idempotency: idemmemory.NewStore(),
		}, nil
	}

	pool, err := database.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		return storage{}, fmt.Errorf("create database pool: %w", err)
	}

	if cfg.Database.AutoMigrate {
		logger.Info("running database migrations", "path", cfg.Database.MigrationsPath)
		if err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
			pool.Close()
			return storage{}, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("migrations completed successfully")
	}

	return storage{
		snapshots:   cartpostgres.NewSnapshotStore(pool, cfg.Cart.Origin),
		idempotency: idempostgres.NewStore(pool),
		pool:        pool,
	}, nil
}

func newPublisher(cfg *config.Config, key string, logger *slog.Logger, metrics *kafka.Metrics) changePublisher {
	if len(cfg.Kafka.Brokers) == 0 {
		return kafka.NewNoopPublisher()
	}
	logger.Info("publishing cart events", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	return kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, key, logger, metrics)
}
