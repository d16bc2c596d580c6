package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/example/safi-bank/internal/api"
	"github.com/example/safi-bank/internal/assistant"
	"github.com/example/safi-bank/internal/config"
	"github.com/example/safi-bank/internal/metrics"
	"github.com/example/safi-bank/internal/security"
	"github.com/example/safi-bank/internal/session"
	"github.com/example/safi-bank/pkg/audit"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	allowlist, err := security.ParseAllowlist(cfg.IPAllowlist)
	if err != nil {
		logger.Error("invalid API_IP_ALLOWLIST", "error", err)
		os.Exit(1)
	}

	sink, sinkCloser, err := audit.OpenSink(cfg.AuditSink, logger)
	if err != nil {
		logger.Error("failed to open audit sink", "error", err)
		os.Exit(1)
	}
	defer sinkCloser.Close()
	auditor := audit.NewChainLogger(audit.WithSink(sink), audit.WithLogger(logger))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	completer, err := assistant.NewGeminiClient(ctx, cfg.AssistantAPIKey, cfg.AssistantModel, logger)
	if err != nil {
		logger.Error("failed to create assistant client", "error", err)
		os.Exit(1)
	}

	ctrl := session.NewController(session.Options{
		Delay:         cfg.LedgerDelay,
		TransferDelay: cfg.TransferDelay,
		Assistant:     completer,
		Auditor:       auditor,
		Recorder:      m,
		Logger:        logger,
	})

	var rateLimiter *security.RedisTokenBucket
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		rateLimiter = &security.RedisTokenBucket{
			Redis:      redisClient,
			Prefix:     "safi_api",
			Capacity:   cfg.RateLimitCapacity,
			RefillRate: cfg.RateLimitRefill,
		}
	}

	router, err := api.NewRouter(api.Dependencies{
		Logger:       logger,
		Session:      ctrl,
		Metrics:      m,
		Auditor:      auditor,
		RateLimiter:  rateLimiter,
		IPAllowlist:  allowlist,
		MaxBodyBytes: cfg.MaxBodyBytes,
	})
	if err != nil {
		logger.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		ctrl.Drain()
		logger.Info("audit chain closed", "entries", len(auditor.Entries()), "head", auditor.Head())
	}()

	logger.Info("safi bank api listening", "addr", cfg.Addr, "env", cfg.Environment)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}
