package block_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/foodsafe/fs-indexer/internal/block"
	"github.com/foodsafe/fs-indexer/internal/logger"
	"github.com/foodsafe/fs-indexer/internal/mocks"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

// testProviderMocks contains all the mocks needed for testing the block provider
type testProviderMocks struct {
	ctrl       *gomock.Controller
	fetcher    *mocks.MockBlockFetcher
	clock      *mocks.MockClock
	provider   block.Provider
	testConfig block.Config
}

// setupTest creates all the mocks and block provider for testing
func setupTest(t *testing.T) *testProviderMocks {
	ctrl := gomock.NewController(t)

	mockFetcher := mocks.NewMockBlockFetcher(ctrl)
	mockClock := mocks.NewMockClock(ctrl)

	testConfig := block.Config{
		TTL:         10 * time.Second,
		StaleWindow: 2 * time.Minute,
	}

	provider := block.NewProvider(mockFetcher, testConfig, mockClock)

	return &testProviderMocks{
		ctrl:       ctrl,
		fetcher:    mockFetcher,
		clock:      mockClock,
		provider:   provider,
		testConfig: testConfig,
	}
}

// tearDownTest cleans up the test mocks
func tearDownTest(tm *testProviderMocks) {
	tm.ctrl.Finish()
}

func TestProvider_GetLatestBlock_FirstFetch(t *testing.T) {
	tm := setupTest(t)
	defer tearDownTest(tm)

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tm.clock.EXPECT().Now().Return(now)
	tm.fetcher.EXPECT().FetchLatestBlock(ctx).Return(uint64(1000), nil)

	blockNum, err := tm.provider.GetLatestBlock(ctx)

	assert.NoError(t, err)
	assert.Equal(t, uint64(1000), blockNum)
}

func TestProvider_GetLatestBlock_CachedWithinTTL(t *testing.T) {
	tm := setupTest(t)
	defer tearDownTest(tm)

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// First call populates the cache
	tm.clock.EXPECT().Now().Return(now)
	tm.fetcher.EXPECT().FetchLatestBlock(ctx).Return(uint64(1000), nil)

	blockNum, err := tm.provider.GetLatestBlock(ctx)
	assert.NoError(t, err)
	assert.Equal(t, uint64(1000), blockNum)

	// Second call within TTL serves the cache, no fetch
	tm.clock.EXPECT().Now().Return(now.Add(5 * time.Second))

	blockNum, err = tm.provider.GetLatestBlock(ctx)
	assert.NoError(t, err)
	assert.Equal(t, uint64(1000), blockNum)
}

func TestProvider_GetLatestBlock_TTLExpired(t *testing.T) {
	tm := setupTest(t)
	defer tearDownTest(tm)

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tm.clock.EXPECT().Now().Return(now)
	tm.fetcher.EXPECT().FetchLatestBlock(ctx).Return(uint64(1000), nil)

	_, err := tm.provider.GetLatestBlock(ctx)
	assert.NoError(t, err)

	// TTL expired, fetch again
	tm.clock.EXPECT().Now().Return(now.Add(15 * time.Second))
	tm.fetcher.EXPECT().FetchLatestBlock(ctx).Return(uint64(1010), nil)

	blockNum, err := tm.provider.GetLatestBlock(ctx)
	assert.NoError(t, err)
	assert.Equal(t, uint64(1010), blockNum)
}

func TestProvider_GetLatestBlock_StaleFallback(t *testing.T) {
	tm := setupTest(t)
	defer tearDownTest(tm)

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tm.clock.EXPECT().Now().Return(now)
	tm.fetcher.EXPECT().FetchLatestBlock(ctx).Return(uint64(1000), nil)

	_, err := tm.provider.GetLatestBlock(ctx)
	assert.NoError(t, err)

	// Fetch fails but the cache is within the stale window
	tm.clock.EXPECT().Now().Return(now.Add(30 * time.Second))
	tm.fetcher.EXPECT().FetchLatestBlock(ctx).Return(uint64(0), errors.New("node down"))

	blockNum, err := tm.provider.GetLatestBlock(ctx)
	assert.NoError(t, err)
	assert.Equal(t, uint64(1000), blockNum)
}

func TestProvider_GetLatestBlock_StaleWindowExceeded(t *testing.T) {
	tm := setupTest(t)
	defer tearDownTest(tm)

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tm.clock.EXPECT().Now().Return(now)
	tm.fetcher.EXPECT().FetchLatestBlock(ctx).Return(uint64(1000), nil)

	_, err := tm.provider.GetLatestBlock(ctx)
	assert.NoError(t, err)

	// Fetch fails and the cache is past the stale window
	tm.clock.EXPECT().Now().Return(now.Add(5 * time.Minute))
	tm.fetcher.EXPECT().FetchLatestBlock(ctx).Return(uint64(0), errors.New("node down"))

	_, err = tm.provider.GetLatestBlock(ctx)
	assert.Error(t, err)
}

func TestProvider_BlockTimestamp_FetchAndCache(t *testing.T) {
	tm := setupTest(t)
	defer tearDownTest(tm)

	ctx := context.Background()
	blockTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tm.fetcher.EXPECT().FetchBlockTimestamp(ctx, uint64(500)).Return(blockTime, nil)

	ts, degraded, err := tm.provider.BlockTimestamp(ctx, 500)
	assert.NoError(t, err)
	assert.False(t, degraded)
	assert.Equal(t, blockTime, ts)

	// Second call is served from cache, no fetch
	ts, degraded, err = tm.provider.BlockTimestamp(ctx, 500)
	assert.NoError(t, err)
	assert.False(t, degraded)
	assert.Equal(t, blockTime, ts)
}

func TestProvider_BlockTimestamp_CacheBounded(t *testing.T) {
	tm := setupTest(t)
	defer tearDownTest(tm)

	ctx := context.Background()
	blockTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	// A tiny cap so the third insert evicts the earlier entries
	provider := block.NewProvider(tm.fetcher, block.Config{
		TTL:                tm.testConfig.TTL,
		StaleWindow:        tm.testConfig.StaleWindow,
		TimestampCacheSize: 2,
	}, tm.clock)

	for _, blockNum := range []uint64{500, 501, 502} {
		tm.fetcher.EXPECT().FetchBlockTimestamp(ctx, blockNum).Return(blockTime, nil)

		ts, degraded, err := provider.BlockTimestamp(ctx, blockNum)
		assert.NoError(t, err)
		assert.False(t, degraded)
		assert.Equal(t, blockTime, ts)
	}

	// Block 500 was evicted, so it is fetched again
	tm.fetcher.EXPECT().FetchBlockTimestamp(ctx, uint64(500)).Return(blockTime, nil)

	ts, _, err := provider.BlockTimestamp(ctx, 500)
	assert.NoError(t, err)
	assert.Equal(t, blockTime, ts)
}

func TestProvider_BlockTimestamp_DegradedFallback(t *testing.T) {
	tm := setupTest(t)
	defer tearDownTest(tm)

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tm.fetcher.EXPECT().FetchBlockTimestamp(ctx, uint64(500)).Return(time.Time{}, errors.New("header not found"))
	tm.clock.EXPECT().Now().Return(now)

	ts, degraded, err := tm.provider.BlockTimestamp(ctx, 500)
	assert.NoError(t, err)
	assert.True(t, degraded)
	assert.Equal(t, now, ts)

	// A degraded result is not cached, the next call fetches again
	blockTime := time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)
	tm.fetcher.EXPECT().FetchBlockTimestamp(ctx, uint64(500)).Return(blockTime, nil)

	ts, degraded, err = tm.provider.BlockTimestamp(ctx, 500)
	assert.NoError(t, err)
	assert.False(t, degraded)
	assert.Equal(t, blockTime, ts)
}
