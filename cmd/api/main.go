package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"fleetcomp/internal/api"
	"fleetcomp/internal/assignment"
	"fleetcomp/internal/buildinfo"
	"fleetcomp/internal/catalog"
	"fleetcomp/internal/config"
	"fleetcomp/internal/hos"
	"fleetcomp/internal/metrics"
	"fleetcomp/internal/store"
	"fleetcomp/internal/webhooks"
	"fleetcomp/internal/weight"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := newLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	cat, err := catalog.Load()
	if err != nil {
		logger.Fatal("catalog load failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store init failed", zap.Error(err))
	}
	defer st.Close()

	broker, err := openBroker(cfg, logger)
	if err != nil {
		logger.Fatal("broker init failed", zap.Error(err))
	}
	defer broker.Close()

	met := metrics.New()
	weights := weight.NewEngine(cat, logger)
	hosEngine := hos.NewEngine(st, logger)
	gate := assignment.NewGate(weights, hosEngine, cat, logger)

	hooks := webhooks.NewWorker(st, logger, met, cfg.WebhookMaxAttempts, cfg.WebhookTimeout)
	hooks.Start(ctx)

	srv := api.NewServer(api.Deps{
		Log:     logger,
		Store:   st,
		Catalog: cat,
		Weights: weights,
		HOS:     hosEngine,
		Gate:    gate,
		Broker:  broker,
		Hooks:   hooks,
		Metrics: met,
		RateRPS: cfg.RateRPS,
		Burst:   cfg.RateBurst,
	})

	httpSrv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      srv.Routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening",
		zap.String("addr", cfg.Addr()),
		zap.String("version", buildinfo.Version),
		zap.String("commit", buildinfo.Commit))
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server failed", zap.Error(err))
	}
	hooks.Wait()
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		logger.Info("using in-memory store")
		return store.NewMemory(), nil
	}
	pg, err := store.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.MigrationsDir != "" {
		if err := pg.MigrateDir(ctx, cfg.MigrationsDir); err != nil {
			return nil, err
		}
	}
	logger.Info("using postgres store")
	return pg, nil
}

func openBroker(cfg config.Config, logger *zap.Logger) (api.EventBroker, error) {
	if cfg.RedisURL == "" {
		logger.Info("using in-process event broker")
		return api.NewMemoryBroker(), nil
	}
	logger.Info("using redis event broker")
	return api.NewRedisBroker(cfg.RedisURL, logger)
}

func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := zc.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
