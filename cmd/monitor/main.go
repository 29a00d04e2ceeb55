package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/whalewatch/whale-watch/internal/application/services"
	"github.com/whalewatch/whale-watch/internal/config"
	"github.com/whalewatch/whale-watch/internal/infrastructure/database"
	"github.com/whalewatch/whale-watch/internal/infrastructure/providers"
	"github.com/whalewatch/whale-watch/internal/scheduler"
)

func main() {
	// Load .env if present, real environment wins
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg.Log.Level, cfg.Log.Format)
	defer logger.Sync()

	logger.Info("Starting whale monitor",
		zap.Strings("manual_tokens", cfg.Monitor.ManualTokens),
		zap.Duration("poll_interval", cfg.Monitor.PollInterval),
	)

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	db, err := database.NewPostgresDB(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Create repositories
	tokenRepo := database.NewTokenRepo(db.DB())
	snapshotRepo := database.NewSnapshotRepo(db.DB())
	movementRepo := database.NewMovementRepo(db.DB())
	statsRepo := database.NewWalletStatsRepo(db.DB())
	txManager := database.NewTxManager(db.DB())

	// Create providers
	clk := clock.New()
	insidex := providers.NewInsideX(cfg.InsideX, clk, logger)
	blockberry := providers.NewBlockberry(cfg.Blockberry, clk, logger)

	// Create services
	gate := scheduler.NewGate(cfg.Monitor.UpdateInterval, clk)
	watchlistService := services.NewWatchlistService(insidex, tokenRepo, cfg.Monitor, logger)
	statsService := services.NewStatsService(statsRepo, movementRepo, insidex, logger)
	reconcileService := services.NewReconcileService(
		snapshotRepo,
		movementRepo,
		statsService,
		txManager,
		cfg.Monitor.MinWhaleHoldings,
		clk,
		logger,
	)
	alertPolicy := services.NewAlertPolicy(snapshotRepo, cfg.Monitor.UtilityAlertThreshold, logger)
	notifier := services.NewLogNotifier(logger)

	monitorService := services.NewMonitorService(
		watchlistService,
		blockberry,
		reconcileService,
		statsService,
		alertPolicy,
		notifier,
		tokenRepo,
		gate,
		cfg.Monitor,
		clk,
		logger,
	)

	// Start monitor
	monitorService.Start(ctx)

	// Run metrics server alongside until a shutdown signal arrives
	g, gctx := errgroup.WithContext(ctx)

	metricsServer := newMetricsServer(cfg.Monitor.MetricsPort)
	g.Go(func() error {
		logger.Info("Starting metrics server", zap.String("addr", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigCh:
			logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		case <-gctx.Done():
		}

		// Unblock any in-flight provider spacing or backoff waits so the
		// monitor loop can drain before Stop
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Monitor exited with error", zap.Error(err))
	}

	logger.Info("Stopping whale monitor...")
	monitorService.Stop()
	logger.Info("Whale monitor stopped")
}

func newMetricsServer(port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

func setupLogger(level, format string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	encoding := "json"
	encoderConfig := zap.NewProductionEncoderConfig()
	if format == "console" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, _ := config.Build()
	return logger
}
