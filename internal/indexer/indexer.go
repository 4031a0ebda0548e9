package indexer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/foodsafe/fs-indexer/internal/adapter"
	"github.com/foodsafe/fs-indexer/internal/domain"
	"github.com/foodsafe/fs-indexer/internal/logger"
	"github.com/foodsafe/fs-indexer/internal/messaging"
	"github.com/foodsafe/fs-indexer/internal/providers/ethereum"
	"github.com/foodsafe/fs-indexer/internal/store"
)

// Config holds the configuration for the reconciliation engine
type Config struct {
	StartBlock   uint64        // First block to scan when the database is empty
	PollInterval time.Duration // Delay between polling cycles once caught up
	BatchSize    uint64        // Maximum blocks scanned per cycle
}

// MAX_RETRY_INTERVAL caps the backoff between failed cycles
const MAX_RETRY_INTERVAL = time.Minute

// Indexer defines the interface for the reconciliation engine
//
//go:generate mockgen -source=indexer.go -destination=../mocks/indexer.go -package=mocks -mock_names=Indexer=MockIndexer
type Indexer interface {
	// Run starts the polling loop and blocks until the context is canceled
	Run(ctx context.Context) error
	// Close closes the indexer and cleans up resources
	Close()
}

type indexer struct {
	reader    ethereum.Reader
	store     store.Store
	publisher messaging.Publisher
	config    Config
	clock     adapter.Clock
}

// NewIndexer creates a new reconciliation engine
func NewIndexer(
	reader ethereum.Reader,
	st store.Store,
	pub messaging.Publisher,
	cfg Config,
	clock adapter.Clock,
) Indexer {
	return &indexer{
		reader:    reader,
		store:     st,
		publisher: pub,
		config:    cfg,
		clock:     clock,
	}
}

// Run starts the polling loop
func (ix *indexer) Run(ctx context.Context) error {
	nextBlock, err := ix.resumePoint(ctx)
	if err != nil {
		return err
	}

	logger.InfoCtx(ctx, "Starting reconciliation loop",
		zap.Uint64("from_block", nextBlock),
		zap.Uint64("batch_size", ix.config.BatchSize))

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = ix.config.PollInterval
	retry.MaxInterval = MAX_RETRY_INTERVAL
	retry.MaxElapsedTime = 0 // Retry indefinitely, the range must not be skipped

	for {
		delay := ix.config.PollInterval

		advanced, err := ix.runCycle(ctx, &nextBlock)
		switch {
		case err == nil:
			retry.Reset()

			// Keep draining batches without sleeping while behind the head
			if advanced {
				continue
			}
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return err
		case errors.Is(err, domain.ErrConnectivity):
			// Transient upstream failure, retry the same range with backoff
			delay = retry.NextBackOff()
			logger.WarnCtx(ctx, "Connectivity failure, will retry",
				zap.Duration("retry_in", delay),
				zap.Error(err))
		case domain.IsDecodeError(err):
			// Schema drift. Stall at this range rather than skip it; a
			// persistent decode failure needs operator attention.
			delay = retry.NextBackOff()
			logger.ErrorCtx(ctx, err,
				zap.String("component", "indexer"),
				zap.Duration("retry_in", delay))
		default:
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ix.clock.After(delay):
		}
	}
}

// resumePoint determines the first block to scan, preferring the
// database watermark over the configured start block.
func (ix *indexer) resumePoint(ctx context.Context) (uint64, error) {
	maxIndexed, err := ix.store.MaxIndexedBlock(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to derive resume point: %w", err)
	}

	if maxIndexed > 0 {
		logger.InfoCtx(ctx, "Resuming from last indexed block", zap.Uint64("block", maxIndexed+1))
		return maxIndexed + 1, nil
	}

	logger.InfoCtx(ctx, "Starting from configured block", zap.Uint64("block", ix.config.StartBlock))
	return ix.config.StartBlock, nil
}

// runCycle scans at most one batch of blocks. It reports whether the
// cursor advanced so the caller knows to keep going without sleeping.
func (ix *indexer) runCycle(ctx context.Context, nextBlock *uint64) (bool, error) {
	latest, err := ix.reader.LatestBlock(ctx)
	if err != nil {
		return false, err
	}

	if *nextBlock > latest {
		return false, nil
	}

	toBlock := latest
	if ix.config.BatchSize > 0 && toBlock-*nextBlock+1 > ix.config.BatchSize {
		toBlock = *nextBlock + ix.config.BatchSize - 1
	}

	events, err := ix.reader.FilterEvents(ctx, *nextBlock, toBlock)
	if err != nil {
		return false, err
	}

	if len(events) > 0 {
		if err := ix.store.ApplyEvents(ctx, events); err != nil {
			// The transaction rolled back and application is idempotent,
			// so retrying the same range is always safe. Treat the store
			// like any other unreachable upstream.
			return false, fmt.Errorf("%w: failed to apply events for blocks %d-%d: %w",
				domain.ErrConnectivity, *nextBlock, toBlock, err)
		}

		// Publication happens after the database commit. The stream
		// deduplicates by message ID so failures here never hold back
		// the cursor.
		if ix.publisher != nil {
			for _, event := range events {
				if err := ix.publisher.PublishEvent(ctx, event); err != nil {
					logger.WarnCtx(ctx, "Failed to publish event",
						zap.String("tx_hash", event.Position().TxHash),
						zap.Error(err))
				}
			}
		}

		logger.InfoCtx(ctx, "Applied event batch",
			zap.Uint64("from_block", *nextBlock),
			zap.Uint64("to_block", toBlock),
			zap.Int("events", len(events)))
	} else {
		logger.DebugCtx(ctx, "No events in range",
			zap.Uint64("from_block", *nextBlock),
			zap.Uint64("to_block", toBlock))
	}

	*nextBlock = toBlock + 1

	return toBlock < latest, nil
}

// Close closes the indexer and cleans up resources
func (ix *indexer) Close() {
	ix.reader.Close()
}
