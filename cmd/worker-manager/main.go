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

	"go.uber.org/zap"

	"compatibility-workers/internal/common/auth"
	"compatibility-workers/internal/common/camunda"
	"compatibility-workers/internal/common/config"
	"compatibility-workers/internal/common/database"
	"compatibility-workers/internal/common/logger"
	"compatibility-workers/internal/common/observability"
	"compatibility-workers/internal/compatibility"
	"compatibility-workers/internal/offers"
	"compatibility-workers/internal/scoring"

	ac "compatibility-workers/internal/workers/compatibility/analyze-compatibility"
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

type pingCloser interface {
	Ping(ctx context.Context) error
	Close() error
}

// connect opens a client and pings it. A client that fails the ping is closed before
// the error is returned.
func connect[C pingCloser](ctx context.Context, open func() (C, error)) (C, error) {
	var zero C
	c, err := open()
	if err != nil {
		return zero, err
	}
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return zero, err
	}
	return c, nil
}

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	log.Info("starting worker manager", map[string]interface{}{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown()

	// --- Zeebe ---
	zeebe, err := camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		RetryConfig:            camunda.DefaultRetryConfig,
	}, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed", zap.Error(err))
	}
	defer zeebe.Close()
	log.Info("zeebe client connected", map[string]interface{}{"gateway": cfg.Camunda.BrokerAddress})

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = connect(ctx, func() (*database.PostgresClient, error) {
			return database.NewPostgres(cfg.Database.Postgres)
		})
		return err
	}, 15, 2*time.Second, log, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()

	// --- Redis ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = connect(ctx, func() (*database.RedisClient, error) {
			return database.NewRedis(cfg.Database.Redis)
		})
		return err
	}, 10, 2*time.Second, log, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()

	// --- Compatibility engine ---
	scorer := scoring.NewClient(scoring.Config{
		BaseURL:     cfg.APIs.Scoring.BaseURL,
		AnalyzePath: cfg.APIs.Scoring.AnalyzePath,
		Timeout:     config.GetDuration(cfg.APIs.Scoring.Timeout),
	}, tokenSource(cfg), log)
	analyzer := compatibility.NewAnalyzer(scorer, log)
	directory := offers.NewDirectory(pg, redis, config.GetDuration(cfg.Offers.CacheTTL), log)

	var workers []*camunda.CamundaWorker
	if config.IsWorkerEnabled(cfg, ac.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, ac.TaskType)
		handlerCfg := ac.LoadConfig(cfg)
		handler := ac.NewHandler(handlerCfg, analyzer, directory, redis, log)

		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), ac.TaskType, camunda.WorkerOptions{
			MaxJobsActive:  wcfg.MaxJobsActive,
			HandlerTimeout: handlerCfg.Timeout,
		}, handler, obs, log))
	} else {
		log.Info("worker disabled", map[string]interface{}{"taskType": ac.TaskType})
	}

	// --- Health & Metrics Server ---
	server := &http.Server{
		Addr: cfg.Server.Address,
		Handler: newMux(map[string]readinessCheck{
			"zeebe":    zeebe.HealthCheck,
			"postgres": pg.Ping,
			"redis":    redis.Ping,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("health/metrics server listening", map[string]interface{}{"address": cfg.Server.Address})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("health/metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	log.Info("shutdown signal received, stopping workers", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("error stopping health server", map[string]interface{}{"error": err.Error()})
	}

	log.Info("worker manager stopped gracefully", nil)
}

// tokenSource prefers Keycloak service tokens and falls back to a static API key.
func tokenSource(cfg *config.Config) auth.TokenSource {
	kc := cfg.Auth.Keycloak
	if kc.Enabled() {
		return auth.NewKeycloakClient(kc.URL, kc.Realm, kc.ClientID, kc.ClientSecret)
	}
	if cfg.APIs.Scoring.APIKey != "" {
		return auth.StaticToken(cfg.APIs.Scoring.APIKey)
	}
	return nil
}
