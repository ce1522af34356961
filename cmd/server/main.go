package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kaziconnect/notify-engine/internal/api"
	"github.com/kaziconnect/notify-engine/internal/config"
	"github.com/kaziconnect/notify-engine/internal/db"
	"github.com/kaziconnect/notify-engine/internal/dispatch"
	"github.com/kaziconnect/notify-engine/internal/domain"
	"github.com/kaziconnect/notify-engine/internal/metrics"
	"github.com/kaziconnect/notify-engine/internal/preference"
	"github.com/kaziconnect/notify-engine/internal/provider"
	"github.com/kaziconnect/notify-engine/internal/ratelimiter"
	"github.com/kaziconnect/notify-engine/internal/repository"
	"github.com/kaziconnect/notify-engine/internal/worker"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	_ = godotenv.Load() // .env is optional; real deployments use the environment
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// ---- database ----
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	// ---- preference store (optionally cached in Redis) ----
	var prefs preference.Store = preference.NewPgStore(pool)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal("invalid REDIS_URL", zap.Error(err))
		}
		prefs = preference.NewCachedStore(prefs, redis.NewClient(opts), cfg.PrefCacheTTL, logger)
		logger.Info("preference cache enabled", zap.Duration("ttl", cfg.PrefCacheTTL))
	}

	// ---- channel adapters ----
	// Missing provider configuration degrades the channel, never the service.
	adapters := provider.Registry{}

	if cfg.SMSUsername != "" && cfg.SMSAPIKey != "" {
		adapters[domain.ChannelSMS] = provider.NewSMSAdapter(
			cfg.SMSGatewayURL, cfg.SMSUsername, cfg.SMSAPIKey, cfg.SMSSenderID, cfg.ProviderTimeout)
	} else {
		logger.Warn("sms gateway credentials missing: sms channel disabled")
		adapters[domain.ChannelSMS] = provider.NewDisabledAdapter(domain.ChannelSMS)
	}

	if email, err := provider.NewEmailAdapter(
		cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, cfg.ProviderTimeout,
	); err != nil {
		logger.Warn("smtp not configured: email channel disabled", zap.Error(err))
		adapters[domain.ChannelEmail] = provider.NewDisabledAdapter(domain.ChannelEmail)
	} else {
		adapters[domain.ChannelEmail] = email
	}

	adapters[domain.ChannelPush] = provider.NewPushAdapter(
		cfg.PushGatewayURL, cfg.PushAPIKey, cfg.ProviderTimeout, logger)

	// ---- core dependencies ----
	repo := repository.NewPgDeliveryRepository(pool)
	limiter := ratelimiter.New(cfg.RateLimit)

	// ---- worker pools ----
	// The pools and the scheduler get separate cancellation scopes: the
	// scheduler stops first on shutdown, while the pools keep a live
	// context so queued sends can still drain.
	poolCtx, cancelPools := context.WithCancel(ctx)
	defer cancelPools()
	schedCtx, cancelScheduler := context.WithCancel(ctx)
	defer cancelScheduler()

	primary := worker.NewPool("primary", cfg.PoolWorkers, cfg.PoolQueueSize, logger)
	retryPool := worker.NewPool("retry", cfg.RetryPoolWorkers, cfg.RetryPoolQueueSize, logger)
	primary.Start(poolCtx)
	retryPool.Start(poolCtx)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg, primary.QueueDepth, retryPool.QueueDepth)

	onSent, onFailed, onSuppressed, onRetryScheduled := m.DispatcherHooks()
	dispatcher := dispatch.NewDispatcher(
		repo, prefs, adapters, primary, retryPool, limiter,
		dispatch.Options{
			MaxRetries:      cfg.MaxRetryAttempts,
			BaseRetryDelay:  cfg.BaseRetryDelay,
			ProviderTimeout: cfg.ProviderTimeout,
			CountryCode:     cfg.DefaultCountryCode,
		},
		logger,
		dispatch.Hooks{
			OnSent:           onSent,
			OnFailed:         onFailed,
			OnSuppressed:     onSuppressed,
			OnRetryScheduled: onRetryScheduled,
		},
	)

	scheduler := dispatch.NewRetryScheduler(repo, dispatcher, cfg.RetryInterval, cfg.RetryBatchSize, logger)
	go scheduler.Run(schedCtx)

	// ---- HTTP server ----
	router := api.NewRouter(dispatcher, repo, primary, retryPool, pool.Ping, reg, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// 1. Stop accepting new HTTP requests (and therefore new dispatches).
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Stop the retry scheduler so no new work is resubmitted.
	cancelScheduler()

	// 3. Drain queued sends; abandon the wait after the grace period.
	primary.Shutdown(cfg.ShutdownTimeout)
	retryPool.Shutdown(cfg.ShutdownTimeout)

	// 4. Cancel any work the grace period abandoned.
	cancelPools()

	logger.Info("server stopped cleanly")
}
