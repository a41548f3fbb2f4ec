package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/storefront/internal/api"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/command"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/infrastructure/kafka"
	"github.com/example/storefront/internal/infrastructure/storage"
	"github.com/example/storefront/internal/logger"
	"github.com/example/storefront/internal/metrics"
	"github.com/example/storefront/internal/persistence"
	"github.com/example/storefront/internal/profile"
	"github.com/example/storefront/internal/query"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"
)

func main() {
	log := logger.New(logger.Options{ServiceName: "storefront-api"})

	if err := godotenv.Load(); err != nil {
		log.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	log = logger.New(logger.Options{
		ServiceName: "storefront-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})

	if err := run(cfg, log); err != nil {
		log.Error(context.Background(), "server exited", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Prices go out as JSON numbers, matching the catalog feed.
	decimal.MarshalJSONWithoutQuotes = true

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.Storage.Backend, err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Error(context.Background(), "error closing storage", err)
		}
	}()
	log.Info(ctx, fmt.Sprintf("storage backend: %s", cfg.Storage.Backend))

	syncOpts := []persistence.SyncerOption{persistence.WithSyncMetrics(m)}
	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		syncOpts = append(syncOpts, persistence.WithPublisher(producer))
		log.Info(ctx, fmt.Sprintf("publishing activity to kafka topic %s", cfg.Kafka.Topic))
	}
	syncer := persistence.NewSyncer(backend, log, syncOpts...)
	defer syncer.Close()

	profiles := profile.NewRegistry(backend, syncer, log,
		profile.WithToastTTL(cfg.Toast.TTL),
		profile.WithIdleTTL(cfg.Profile.IdleTTL),
		profile.WithMetrics(m),
	)
	defer profiles.Close()
	go profiles.Run(ctx, cfg.Profile.SweepInterval)

	loader := catalog.NewLoader(
		catalog.NewSource(cfg.Catalog.Source, cfg.Catalog.FetchTimeout),
		log,
		catalog.WithFetchTimeout(cfg.Catalog.FetchTimeout),
		catalog.WithMetrics(m),
	)
	go func() {
		if _, err := loader.Products(ctx); err != nil {
			log.Error(ctx, "initial catalog load failed, will retry on demand", err)
		}
	}()

	pipeline := catalog.NewPipeline(catalog.Options{
		PageSize:        cfg.Catalog.PageSize,
		FreshnessWindow: cfg.Catalog.FreshnessWindow,
	})
	tokens := auth.NewTokenService(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)

	handlers := api.NewHandlers(
		command.NewHandler(loader, profiles, log),
		query.NewHandler(loader, pipeline, profiles, backend, log, query.WithMetrics(m)),
		tokens,
		cfg.Auth.CookieName,
		log,
	)
	router := api.NewRouter(handlers, api.Health(backend, loader), registry, log)

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, fmt.Sprintf("server started on :%s", cfg.App.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
