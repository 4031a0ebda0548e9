package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/foodsafe/fs-indexer/internal/adapter"
	"github.com/foodsafe/fs-indexer/internal/config"
	"github.com/foodsafe/fs-indexer/internal/logger"
	"github.com/foodsafe/fs-indexer/internal/pinning"
	"github.com/foodsafe/fs-indexer/internal/store"
	"github.com/foodsafe/fs-indexer/internal/sweeper"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadSweeperConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "sweeper",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Sweeper")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("dsn", cfg.Database.DSN()))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	// Initialize store
	dataStore := store.NewPGStore(db)

	// Initialize adapters
	httpClient := adapter.NewHTTPClient(cfg.Pinata.HTTPTimeout)
	jsonAdapter := adapter.NewJSON()
	clock := adapter.NewClock()

	// Initialize Pinata pinning client
	pinner := pinning.NewPinataClient(pinning.Config{
		APIKey:       cfg.Pinata.APIKey,
		SecretAPIKey: cfg.Pinata.SecretAPIKey,
		BaseURL:      cfg.Pinata.BaseURL,
		GatewayURL:   cfg.Pinata.GatewayURL,
	}, httpClient, jsonAdapter)

	// Initialize pin health sweeper
	pinSweeperConfig := &sweeper.PinHealthSweeperConfig{
		SweepInterval:  cfg.PinSweeper.Interval,
		BatchSize:      cfg.PinSweeper.BatchSize,
		WorkerPoolSize: cfg.PinSweeper.Worker.WorkerPoolSize,
		RecheckAfter:   cfg.PinSweeper.RecheckAfter,
	}
	pinSweeper := sweeper.NewPinHealthSweeper(pinSweeperConfig, dataStore, pinner, clock)

	logger.InfoCtx(ctx, "Initialized pin health sweeper",
		zap.Duration("interval", cfg.PinSweeper.Interval),
		zap.Int("batch_size", cfg.PinSweeper.BatchSize),
		zap.Int("worker_pool_size", cfg.PinSweeper.Worker.WorkerPoolSize),
		zap.Duration("recheck_after", cfg.PinSweeper.RecheckAfter),
	)

	// Start the sweeper in a goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := pinSweeper.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.ErrorCtx(ctx, err)
	}

	// Cancel context to stop the sweeper
	cancel()

	// Give the sweeper time to shut down gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()

	if err := pinSweeper.Stop(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err)
	}

	logger.InfoCtx(shutdownCtx, "Sweeper stopped")
}
