package main

import (
	"context"
	"errors"
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
	"github.com/foodsafe/fs-indexer/internal/block"
	"github.com/foodsafe/fs-indexer/internal/config"
	"github.com/foodsafe/fs-indexer/internal/indexer"
	"github.com/foodsafe/fs-indexer/internal/logger"
	"github.com/foodsafe/fs-indexer/internal/messaging"
	"github.com/foodsafe/fs-indexer/internal/providers/ethereum"
	"github.com/foodsafe/fs-indexer/internal/providers/jetstream"
	"github.com/foodsafe/fs-indexer/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadIndexerConfig(*configFile, *envPath)
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
			"service": "indexer",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting FoodSafe Indexer")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("dsn", cfg.Database.DSN()))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database")

	// Initialize store
	dataStore := store.NewPGStore(db)

	// Initialize adapters
	clockAdapter := adapter.NewClock()
	jsonAdapter := adapter.NewJSON()
	natsJS := adapter.NewNatsJetStream()

	// Initialize ethereum client
	ethDialer := adapter.NewEthClientDialer()
	ethClient, err := ethDialer.Dial(ctx, cfg.Ethereum.RPCURL)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to dial Ethereum RPC", zap.Error(err), zap.String("rpc_url", cfg.Ethereum.RPCURL))
	}
	defer ethClient.Close()

	// Initialize event decoder
	decoder, err := ethereum.NewDecoder()
	if err != nil {
		logger.FatalCtx(ctx, "Failed to build event decoder", zap.Error(err))
	}

	// Initialize cached block provider for timestamps
	blockFetcher := ethereum.NewBlockFetcher(ethClient)
	blocks := block.NewProvider(blockFetcher, block.Config{TTL: cfg.Ethereum.BlockHeadTTL}, clockAdapter)

	// Initialize chain reader
	reader := ethereum.NewReader(ethClient, cfg.Ethereum.ContractAddress, decoder, blocks)

	// Initialize NATS publisher when a broker is configured. The
	// indexer works without one, downstream consumers just get no
	// change feed.
	var natsPublisher messaging.Publisher
	if cfg.NATS.URL != "" {
		natsPublisher, err = jetstream.NewPublisher(jetstream.Config{
			URL:            cfg.NATS.URL,
			StreamName:     cfg.NATS.StreamName,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectionName: cfg.NATS.ConnectionName,
		}, natsJS, jsonAdapter)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create NATS publisher", zap.Error(err), zap.String("url", cfg.NATS.URL))
		}
		defer natsPublisher.Close()
		logger.InfoCtx(ctx, "Connected to NATS JetStream")
	} else {
		logger.WarnCtx(ctx, "NATS URL not configured, event publishing disabled")
	}

	// Create the reconciliation engine
	engine := indexer.NewIndexer(
		reader,
		dataStore,
		natsPublisher,
		indexer.Config{
			StartBlock:   cfg.Ethereum.StartBlock,
			PollInterval: cfg.Ethereum.PollInterval,
			BatchSize:    cfg.Ethereum.BatchSize,
		},
		clockAdapter,
	)
	defer engine.Close()

	// Channel for engine errors
	errCh := make(chan error, 1)

	// Start the engine
	go func() {
		if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "indexer"))
		cancel()
	}

	// Give some time for graceful shutdown
	time.Sleep(time.Second)

	// Use non-context logger for final shutdown message since context is already canceled
	logger.Info("FoodSafe Indexer stopped")
}
