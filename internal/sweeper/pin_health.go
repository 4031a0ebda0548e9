package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/foodsafe/fs-indexer/internal/adapter"
	"github.com/foodsafe/fs-indexer/internal/domain"
	"github.com/foodsafe/fs-indexer/internal/logger"
	"github.com/foodsafe/fs-indexer/internal/pinning"
	"github.com/foodsafe/fs-indexer/internal/store"
)

// PinHealthSweeperConfig holds configuration for the pin health sweeper
type PinHealthSweeperConfig struct {
	SweepInterval  time.Duration // Time to sleep between sweep cycles
	BatchSize      int           // Document hashes to check per cycle
	WorkerPoolSize int           // Concurrent workers
	RecheckAfter   time.Duration // Only recheck hashes older than this
}

// pinHealthSweeper re-pins the document hashes referenced by the audit
// trail so they stay retrievable even if the original uploader unpins.
type pinHealthSweeper struct {
	config    *PinHealthSweeperConfig
	store     store.Store
	pinner    pinning.Pinner
	pool      pond.Pool
	clock     adapter.Clock
	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}

	mu          sync.Mutex
	lastChecked map[string]time.Time
}

// NewPinHealthSweeper creates a new pin health sweeper
func NewPinHealthSweeper(
	config *PinHealthSweeperConfig,
	st store.Store,
	pinner pinning.Pinner,
	clock adapter.Clock,
) Sweeper {
	return &pinHealthSweeper{
		config:      config,
		store:       st,
		pinner:      pinner,
		clock:       clock,
		stopChan:    make(chan struct{}),
		stoppedCh:   make(chan struct{}),
		lastChecked: make(map[string]time.Time),
	}
}

// Name returns the sweeper's name
func (s *pinHealthSweeper) Name() string {
	return "pin-health-sweeper"
}

// Start begins the sweeper's main loop
func (s *pinHealthSweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh)
	}()

	logger.InfoCtx(ctx, "Starting pin health sweeper",
		zap.Duration("sweep_interval", s.config.SweepInterval),
		zap.Int("batch_size", s.config.BatchSize),
		zap.Int("worker_pool_size", s.config.WorkerPoolSize),
		zap.Duration("recheck_after", s.config.RecheckAfter),
	)

	for {
		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Pin health sweeper stopping due to context cancellation", zap.Error(ctx.Err()))
			return nil
		case <-s.stopChan:
			logger.InfoCtx(ctx, "Pin health sweeper stop requested")
			return nil
		default:
			if err := s.runSweepCycle(ctx); err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.ErrorCtx(ctx, err)
				}
			}
		}
	}
}

// Stop gracefully stops the sweeper with timeout support
func (s *pinHealthSweeper) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil // Already stopped
	}

	logger.InfoCtx(ctx, "Stopping pin health sweeper")

	close(s.stopChan)

	select {
	case <-s.stoppedCh:
		logger.InfoCtx(ctx, "Pin health sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Pin health sweeper stop interrupted by context timeout")
		return ctx.Err()
	}
}

// runSweepCycle runs a single sweep cycle
func (s *pinHealthSweeper) runSweepCycle(ctx context.Context) error {
	startTime := s.clock.Now()

	hashes, err := s.store.ListDocumentHashes(ctx, s.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to list document hashes: %w", err)
	}

	due := s.dueForCheck(hashes)
	if len(due) == 0 {
		logger.DebugCtx(ctx, "No document hashes due for checking")
		if !s.sleep(ctx, s.config.SweepInterval) {
			return ctx.Err()
		}
		return nil
	}

	logger.InfoCtx(ctx, "Found document hashes to check", zap.Int("count", len(due)))

	var pinnedCount, missingCount, errorCount atomic.Int32

	s.pool = pond.NewPool(
		s.config.WorkerPoolSize,
		pond.WithQueueSize(s.config.BatchSize),
		pond.WithContext(ctx),
	)

	for _, hash := range due {
		s.pool.Submit(func() {
			s.checkHash(ctx, hash, &pinnedCount, &missingCount, &errorCount)
		})
	}

	s.pool.StopAndWait()

	duration := s.clock.Since(startTime)
	logger.InfoCtx(ctx, "Sweep cycle completed",
		zap.Duration("duration", duration),
		zap.Int("total_checked", len(due)),
		zap.Int32("pinned", pinnedCount.Load()),
		zap.Int32("missing", missingCount.Load()),
		zap.Int32("errors", errorCount.Load()),
	)

	if !s.sleep(ctx, s.config.SweepInterval) {
		return ctx.Err()
	}

	return nil
}

// dueForCheck filters out hashes that were checked within RecheckAfter
func (s *pinHealthSweeper) dueForCheck(hashes []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	due := make([]string, 0, len(hashes))
	for _, hash := range hashes {
		if checked, ok := s.lastChecked[hash]; ok && now.Sub(checked) < s.config.RecheckAfter {
			continue
		}
		due = append(due, hash)
	}

	return due
}

func (s *pinHealthSweeper) markChecked(hash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastChecked[hash] = s.clock.Now()
}

// checkHash verifies a single document hash is retrievable and pinned
func (s *pinHealthSweeper) checkHash(ctx context.Context, hash string, pinnedCount, missingCount, errorCount *atomic.Int32) {
	logger.DebugCtx(ctx, "Checking document hash", zap.String("hash", hash))

	if _, err := s.pinner.Fetch(ctx, hash); err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			missingCount.Add(1)
			logger.WarnCtx(ctx, "Document not retrievable through gateway",
				zap.String("hash", hash))
		} else {
			// Transient gateway failure, retry the hash next cycle
			errorCount.Add(1)
			logger.WarnCtx(ctx, "Failed to fetch document, will retry",
				zap.String("hash", hash),
				zap.Error(err))
			return
		}
	}

	// Pin regardless of gateway visibility. For missing content the
	// pinning service keeps searching the network in the background.
	if err := s.pinner.PinByHash(ctx, hash); err != nil {
		errorCount.Add(1)
		logger.WarnCtx(ctx, "Failed to pin document hash, will retry",
			zap.String("hash", hash),
			zap.Error(err))
		return
	}

	pinnedCount.Add(1)
	s.markChecked(hash)
}

// sleep sleeps for the given duration but can be interrupted by context cancellation
// Returns true if sleep completed normally, false if interrupted
func (s *pinHealthSweeper) sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-s.clock.After(duration):
		return true
	case <-ctx.Done():
		return false
	case <-s.stopChan:
		return false
	}
}
