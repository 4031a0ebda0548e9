package block

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/foodsafe/fs-indexer/internal/adapter"
	"github.com/foodsafe/fs-indexer/internal/logger"
)

// HeadInfo represents the cached chain head
type HeadInfo struct {
	Number   uint64
	CachedAt time.Time
}

// Provider provides cached access to the chain head and block
// timestamps. It reduces RPC calls to the node by caching the head
// number for a configurable TTL and a bounded number of block
// timestamps. Confirmed block timestamps never change, so cached
// entries are never invalidated, only evicted for space.
//
//go:generate mockgen -source=block.go -destination=../mocks/block_provider.go -package=mocks -mock_names=Provider=MockBlockProvider
type Provider interface {
	// GetLatestBlock returns the latest block number, potentially from cache
	GetLatestBlock(ctx context.Context) (uint64, error)

	// BlockTimestamp returns the timestamp for a given block number.
	// When the header cannot be fetched it falls back to the wall clock
	// and reports the result as degraded instead of failing the caller.
	BlockTimestamp(ctx context.Context, blockNumber uint64) (time.Time, bool, error)
}

// Fetcher is the interface for fetching block information from the blockchain
//
//go:generate mockgen -source=block.go -destination=../mocks/block_provider.go -package=mocks -mock_names=Fetcher=MockBlockFetcher
type Fetcher interface {
	// FetchLatestBlock fetches the latest block from the blockchain
	FetchLatestBlock(ctx context.Context) (uint64, error)

	// FetchBlockTimestamp fetches the timestamp for a given block number
	FetchBlockTimestamp(ctx context.Context, blockNumber uint64) (time.Time, error)
}

// Config holds configuration for the Provider
type Config struct {
	// TTL is how long to cache the head block number
	TTL time.Duration

	// StaleWindow is how long to keep serving a stale head if fetching fails.
	// If the cached head is older than this and the fetch fails, return error.
	StaleWindow time.Duration

	// TimestampCacheSize caps the number of cached block timestamps.
	// Zero means DEFAULT_TIMESTAMP_CACHE_SIZE.
	TimestampCacheSize int
}

// DEFAULT_TIMESTAMP_CACHE_SIZE bounds the timestamp cache when the
// config does not set a size.
const DEFAULT_TIMESTAMP_CACHE_SIZE = 8192

type provider struct {
	fetcher Fetcher
	config  Config
	clock   adapter.Clock

	mu         sync.RWMutex
	head       *HeadInfo
	timestamps map[uint64]time.Time
}

// NewProvider creates a new Provider with caching
func NewProvider(fetcher Fetcher, config Config, clock adapter.Clock) Provider {
	if config.TimestampCacheSize <= 0 {
		config.TimestampCacheSize = DEFAULT_TIMESTAMP_CACHE_SIZE
	}
	return &provider{
		fetcher:    fetcher,
		config:     config,
		clock:      clock,
		timestamps: make(map[uint64]time.Time),
	}
}

// GetLatestBlock returns the latest block number, using cache if valid
func (p *provider) GetLatestBlock(ctx context.Context) (uint64, error) {
	p.mu.RLock()
	cached := p.head
	p.mu.RUnlock()

	now := p.clock.Now()

	if cached != nil && now.Sub(cached.CachedAt) < p.config.TTL {
		logger.DebugCtx(ctx, "using cached head", zap.Uint64("blockNumber", cached.Number))
		return cached.Number, nil
	}

	blockNumber, err := p.fetcher.FetchLatestBlock(ctx)
	if err != nil {
		// Fetch failed, serve stale head if it is still within the window
		if cached != nil && now.Sub(cached.CachedAt) < p.config.StaleWindow {
			logger.DebugCtx(ctx, "using stale head", zap.Uint64("blockNumber", cached.Number))
			return cached.Number, nil
		}
		return 0, fmt.Errorf("failed to fetch latest block and no valid cache available: %w", err)
	}

	p.mu.Lock()
	p.head = &HeadInfo{Number: blockNumber, CachedAt: now}
	p.mu.Unlock()

	return blockNumber, nil
}

// BlockTimestamp returns the timestamp for a given block number
func (p *provider) BlockTimestamp(ctx context.Context, blockNumber uint64) (time.Time, bool, error) {
	p.mu.RLock()
	cached, ok := p.timestamps[blockNumber]
	p.mu.RUnlock()

	if ok {
		return cached, false, nil
	}

	timestamp, err := p.fetcher.FetchBlockTimestamp(ctx, blockNumber)
	if err != nil {
		// The header is unavailable but the event itself is real. Record
		// it with the wall clock and flag the substitution.
		logger.WarnCtx(ctx, "block header unavailable, degrading to wall clock",
			zap.Uint64("blockNumber", blockNumber),
			zap.Error(err))
		return p.clock.Now(), true, nil
	}

	p.mu.Lock()
	if len(p.timestamps) >= p.config.TimestampCacheSize {
		// Committed blocks are rarely asked for again, so eviction
		// just resets the map instead of tracking recency.
		p.timestamps = make(map[uint64]time.Time)
	}
	p.timestamps[blockNumber] = timestamp
	p.mu.Unlock()

	return timestamp, false, nil
}
