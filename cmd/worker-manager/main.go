// cmd/worker-manager/main.go
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

	"hostelverse-workers/internal/common/aws"
	"hostelverse-workers/internal/common/camunda"
	"hostelverse-workers/internal/common/config"
	"hostelverse-workers/internal/common/database"
	"hostelverse-workers/internal/common/logger"
	"hostelverse-workers/internal/common/observability"
	"hostelverse-workers/internal/common/validation"
	"hostelverse-workers/internal/store/cache"
	"hostelverse-workers/internal/store/postgres"
	"hostelverse-workers/internal/store/search"
	"hostelverse-workers/internal/waitlist"
	"hostelverse-workers/pkg/registry"

	"go.uber.org/zap"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// connectPostgres opens and pings a pool until it answers. Pools that fail
// the ping are closed before the next attempt.
func connectPostgres(ctx context.Context, open func() (*database.PostgresClient, error), attempts int, delay time.Duration, log logger.Logger) (*database.PostgresClient, error) {
	var pg *database.PostgresClient
	err := retryWithBackoff(func() error {
		client, err := open()
		if err != nil {
			return err
		}
		if err := client.Ping(ctx); err != nil {
			_ = client.Close()
			return err
		}
		pg = client
		return nil
	}, attempts, delay, log, "PostgreSQL connection")
	if err != nil {
		return nil, err
	}
	return pg, nil
}

func main() {
	bootLog := logger.New(logger.Options{Level: "info", Format: "console"})

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(logger.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Output:  cfg.Logging.Output,
		Service: "worker-manager",
	})
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	if err := run(cfg, log); err != nil {
		zapLog.Fatal("worker manager failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log logger.Logger) error {
	ctx := context.Background()
	log.Info("Starting worker manager", map[string]interface{}{
		"environment": cfg.App.Environment,
		"version":     cfg.App.Version,
	})

	obs, err := observability.New("worker-manager", nil)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			log.Warn("observability shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// --- Activity registry ---
	reg, err := registry.LoadRegistry(cfg.RegistryPath)
	if err != nil {
		return err
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("activity registry %s: %w", cfg.RegistryPath, err)
	}
	validator, err := validation.NewValidator(reg)
	if err != nil {
		return err
	}

	// --- PostgreSQL ---
	pg, err := connectPostgres(ctx, func() (*database.PostgresClient, error) {
		return database.NewPostgres(cfg.Database.Postgres)
	}, 15, 2*time.Second, log)
	if err != nil {
		return err
	}
	defer pg.Close()
	log.Info("PostgreSQL connected", nil)

	query, closeStores, err := buildQuery(ctx, cfg, pg, log)
	if err != nil {
		return err
	}
	defer closeStores()

	// --- Zeebe ---
	camundaClient, err := camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
	}, log)
	if err != nil {
		return err
	}
	defer camundaClient.Close()
	log.Info("Zeebe client connected", map[string]interface{}{"gateway": cfg.Camunda.BrokerAddress})

	workers, err := startWorkers(cfg, camundaClient, query, validator, obs, log)
	if err != nil {
		return err
	}

	// --- Health & Metrics Server ---
	server := &http.Server{
		Addr:              cfg.Metrics.Address,
		Handler:           newHealthMux(pg, camundaClient),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("Health/Metrics server listening", map[string]interface{}{"address": cfg.Metrics.Address})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Health/Metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutdown signal received, stopping workers...", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("Health/Metrics server shutdown failed", map[string]interface{}{"error": err.Error()})
	}

	log.Info("Worker manager stopped gracefully", nil)
	return nil
}

// buildQuery assembles the waitlist query: Postgres stores, the optional Redis
// profile cache and the optional Elasticsearch and SNS ranking sinks.
func buildQuery(ctx context.Context, cfg *config.Config, pg *database.PostgresClient, log logger.Logger) (*waitlist.Query, func(), error) {
	closers := []func() error{}
	closeAll := func() {
		for _, c := range closers {
			_ = c()
		}
	}

	var profiles waitlist.ProfileStore = postgres.NewProfileStore(pg.DB)
	if ttl := cfg.Waitlist.CacheTTL(); ttl > 0 {
		rdb := database.NewRedis(cfg.Database.Redis)
		if err := retryWithBackoff(func() error { return rdb.Ping(ctx) }, 10, 2*time.Second, log, "Redis connection"); err != nil {
			rdb.Close()
			return nil, nil, err
		}
		closers = append(closers, rdb.Close)
		profiles = cache.NewProfileCache(rdb.Client, profiles, ttl, log)
		log.Info("Profile cache enabled", map[string]interface{}{"ttl": ttl.String()})
	}

	var sinks []waitlist.Sink
	if cfg.Database.Elasticsearch.Enabled() {
		esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch, nil)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		err = retryWithBackoff(func() error { return esClient.Ping(ctx) }, 15, 2*time.Second, log, "Elasticsearch connection")
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		index := search.NewRankingIndex(esClient.Client, cfg.Waitlist.RankingIndex)
		if err := index.EnsureIndex(ctx); err != nil {
			closeAll()
			return nil, nil, err
		}
		sinks = append(sinks, index)
		log.Info("Ranking snapshot index enabled", map[string]interface{}{"index": cfg.Waitlist.RankingIndex})
	}

	if sns := cfg.Notifications.SNS; sns.Enabled {
		client, err := aws.NewSNSClient(ctx, sns.Region)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		sinks = append(sinks, aws.NewRankingNotifier(client, sns.TopicARN))
		log.Info("Ranking notifications enabled", map[string]interface{}{"topicArn": sns.TopicARN})
	}

	query := waitlist.NewQuery(
		waitlist.QueryConfig{MaxConcurrentLookups: cfg.Waitlist.MaxConcurrentLookups},
		postgres.NewWishlistStore(pg.DB),
		profiles,
		log,
		sinks...,
	)
	return query, closeAll, nil
}
