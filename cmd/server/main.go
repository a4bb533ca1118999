package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	apihttp "bitserve/internal/api/http"
	"bitserve/internal/app"
	"bitserve/internal/engine/anacrolix"
	"bitserve/internal/metrics"
	mongorepo "bitserve/internal/repository/mongo"
	"bitserve/internal/telemetry"
	"bitserve/internal/usecase"
	"bitserve/internal/webhook"

	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
)

func main() {
	cfg := app.LoadConfig()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	metrics.Register(prometheus.DefaultRegisterer)

	shutdownTracer, err := telemetry.Init(context.Background(), "bitserve")
	if err != nil {
		logger.Warn("otel init failed", slog.String("error", err.Error()))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	logger.Info("configuration loaded",
		slog.String("service", "bitserve"),
		slog.String("httpAddr", cfg.HTTPAddr),
		slog.String("logLevel", cfg.LogLevel),
		slog.String("logFormat", cfg.LogFormat),
		slog.String("downloadDir", cfg.DownloadDir),
		slog.String("torrentListenAddr", cfg.TorrentListenAddr),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(rootCtx, 10*time.Second)
	defer cancel()

	mongoMonitor := otelmongo.NewMonitor()
	mongoClient, err := mongorepo.Connect(ctx, cfg.MongoURI, options.Client().SetMonitor(mongoMonitor))
	if err != nil {
		logger.Error("mongo connect failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := mongoClient.Ping(ctx, readpref.Primary()); err != nil {
		logger.Error("mongo ping failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repo := mongorepo.NewRepository(mongoClient, cfg.MongoDatabase, cfg.MongoCollection)
	webhookRepo := mongorepo.NewWebhookRepository(mongoClient, cfg.MongoDatabase, cfg.MongoWebhooks)

	if err := repo.EnsureIndexes(ctx); err != nil {
		logger.Warn("mongo ensure indexes failed", slog.String("error", err.Error()))
	}
	if err := webhookRepo.EnsureIndexes(ctx); err != nil {
		logger.Warn("mongo webhook indexes failed", slog.String("error", err.Error()))
	}

	engine, err := anacrolix.New(anacrolix.Config{
		DataDir:    cfg.DownloadDir,
		ListenAddr: cfg.TorrentListenAddr,
		MaxConns:   cfg.MaxConnsPerTorrent,
	})
	if err != nil {
		logger.Error("torrent engine init failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dispatcher := webhook.NewDispatcher(webhook.Config{
		QueueSize: cfg.WebhookQueueSize,
		Workers:   cfg.WebhookWorkers,
		Timeout:   cfg.WebhookTimeout,
		Retry: webhook.RetryConfig{
			MaxAttempts:  cfg.WebhookAttempts,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     10 * time.Second,
			Multiplier:   2.0,
		},
	}, webhookRepo, logger)
	if err := dispatcher.LoadSubscriptions(ctx); err != nil {
		logger.Warn("webhook subscriptions load failed", slog.String("error", err.Error()))
	}

	// Re-register persisted torrents before accepting requests, so the first
	// listing after a restart already reflects every known session.
	restoreUC := usecase.Restore{Engine: engine, Repo: repo, Logger: logger, Timeout: cfg.EngineTimeout}
	if err := restoreUC.Run(rootCtx); err != nil {
		logger.Error("session restore failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	locks := usecase.NewHashLocks()
	addUC := usecase.AddTorrents{
		Engine:      engine,
		Repo:        repo,
		Events:      dispatcher,
		Locks:       locks,
		Now:         time.Now,
		Timeout:     cfg.EngineTimeout,
		Parallelism: cfg.AddParallelism,
	}
	removeUC := usecase.RemoveTorrents{
		Engine:      engine,
		Repo:        repo,
		Events:      dispatcher,
		Locks:       locks,
		Now:         time.Now,
		Timeout:     cfg.EngineTimeout,
		Parallelism: cfg.AddParallelism,
	}
	listUC := usecase.ListTorrents{Engine: engine, Repo: repo}
	systemUC := usecase.SystemInfo{Path: cfg.DownloadDir}

	syncUC := usecase.SyncState{
		Engine:   engine,
		Repo:     repo,
		Events:   dispatcher,
		Locks:    locks,
		Logger:   logger,
		Interval: cfg.SyncInterval,
	}

	handler := apihttp.NewServer(addUC,
		apihttp.WithRemoveTorrents(removeUC),
		apihttp.WithListTorrents(listUC),
		apihttp.WithSystemInfo(systemUC),
		apihttp.WithWebhooks(dispatcher),
		apihttp.WithAllowedOrigins(cfg.AllowedOrigins),
		apihttp.WithLogger(logger),
	)

	// Mirror lifecycle events to websocket clients alongside webhook delivery.
	dispatcher.SetObserver(handler.BroadcastEvent)

	go dispatcher.Run(rootCtx)
	go syncUC.Run(rootCtx)
	go updateEngineMetrics(rootCtx, engine)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      0,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("server started", slog.String("addr", cfg.HTTPAddr))

	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	handler.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown error", slog.String("error", err.Error()))
	}
	if err := engine.Close(); err != nil {
		logger.Warn("engine close error", slog.String("error", err.Error()))
	}
	if err := mongoClient.Disconnect(context.Background()); err != nil {
		logger.Warn("mongo disconnect error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}

// updateEngineMetrics refreshes the Prometheus gauges from live engine state.
func updateEngineMetrics(ctx context.Context, engine *anacrolix.Engine) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hashes, err := engine.List(ctx)
			if err != nil {
				continue
			}
			metrics.ManagedTorrents.Set(float64(len(hashes)))
			var dlTotal, ulTotal, peersTotal int64
			for _, hash := range hashes {
				state, err := engine.State(ctx, hash)
				if err != nil {
					continue
				}
				dlTotal += state.DownloadRate
				ulTotal += state.UploadRate
				peersTotal += int64(state.Peers)
			}
			metrics.DownloadSpeedBytes.Set(float64(dlTotal))
			metrics.UploadSpeedBytes.Set(float64(ulTotal))
			metrics.PeersConnected.Set(float64(peersTotal))
		}
	}
}

func newLogger(levelRaw, formatRaw string) *slog.Logger {
	level := parseLogLevel(levelRaw)
	options := &slog.HandlerOptions{Level: level}
	format := strings.ToLower(strings.TrimSpace(formatRaw))
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, options))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, options))
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
