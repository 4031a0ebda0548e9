package indexer_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/foodsafe/fs-indexer/internal/domain"
	"github.com/foodsafe/fs-indexer/internal/indexer"
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

// testIndexerMocks contains all the mocks needed for testing the indexer
type testIndexerMocks struct {
	ctrl      *gomock.Controller
	reader    *mocks.MockChainReader
	store     *mocks.MockStore
	publisher *mocks.MockPublisher
	clock     *mocks.MockClock
}

// setupTestIndexer creates all the mocks for testing
func setupTestIndexer(t *testing.T) *testIndexerMocks {
	ctrl := gomock.NewController(t)

	return &testIndexerMocks{
		ctrl:      ctrl,
		reader:    mocks.NewMockChainReader(ctrl),
		store:     mocks.NewMockStore(ctrl),
		publisher: mocks.NewMockPublisher(ctrl),
		clock:     mocks.NewMockClock(ctrl),
	}
}

// tearDownTestIndexer cleans up the test mocks
func tearDownTestIndexer(tm *testIndexerMocks) {
	tm.ctrl.Finish()
}

func newTestIndexer(tm *testIndexerMocks, cfg indexer.Config) indexer.Indexer {
	return indexer.NewIndexer(tm.reader, tm.store, tm.publisher, cfg, tm.clock)
}

// cancelOnSleep makes the clock cancel the context when the indexer
// goes idle, so Run returns deterministically.
func cancelOnSleep(tm *testIndexerMocks, cancel context.CancelFunc) {
	never := make(chan time.Time)
	tm.clock.
		EXPECT().
		After(gomock.Any()).
		DoAndReturn(func(d time.Duration) <-chan time.Time {
			cancel()
			return never
		}).
		AnyTimes()
}

func testTransfer(lotID uint64, block uint64) *domain.LotTransfer {
	return &domain.LotTransfer{
		ChainPosition: domain.ChainPosition{
			BlockNumber: block,
			TxHash:      fmt.Sprintf("0xtx%d", block),
			LogIndex:    0,
			Timestamp:   time.Now(),
		},
		LotID: lotID,
		From:  "0xfrom",
		To:    "0xto",
	}
}

func TestIndexer_Run_ResumesFromWatermark(t *testing.T) {
	tm := setupTestIndexer(t)
	defer tearDownTestIndexer(tm)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ix := newTestIndexer(tm, indexer.Config{
		StartBlock:   100,
		PollInterval: 5 * time.Second,
		BatchSize:    1000,
	})

	events := []domain.Event{testTransfer(1, 505)}

	// Watermark at 500, so scanning resumes at 501 regardless of the
	// configured start block
	tm.store.EXPECT().MaxIndexedBlock(gomock.Any()).Return(uint64(500), nil)
	tm.reader.EXPECT().LatestBlock(gomock.Any()).Return(uint64(510), nil)
	tm.reader.EXPECT().FilterEvents(gomock.Any(), uint64(501), uint64(510)).Return(events, nil)
	tm.store.EXPECT().ApplyEvents(gomock.Any(), events).Return(nil)
	tm.publisher.EXPECT().PublishEvent(gomock.Any(), events[0]).Return(nil)

	cancelOnSleep(tm, cancel)

	err := ix.Run(ctx)

	assert.Equal(t, context.Canceled, err)
}

func TestIndexer_Run_StartsFromConfiguredBlock(t *testing.T) {
	tm := setupTestIndexer(t)
	defer tearDownTestIndexer(tm)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ix := newTestIndexer(tm, indexer.Config{
		StartBlock:   100,
		PollInterval: 5 * time.Second,
		BatchSize:    1000,
	})

	// Empty database, start block applies
	tm.store.EXPECT().MaxIndexedBlock(gomock.Any()).Return(uint64(0), nil)
	tm.reader.EXPECT().LatestBlock(gomock.Any()).Return(uint64(150), nil)
	tm.reader.EXPECT().FilterEvents(gomock.Any(), uint64(100), uint64(150)).Return(nil, nil)

	cancelOnSleep(tm, cancel)

	err := ix.Run(ctx)

	assert.Equal(t, context.Canceled, err)
}

func TestIndexer_Run_DrainsBatchesWithoutSleeping(t *testing.T) {
	tm := setupTestIndexer(t)
	defer tearDownTestIndexer(tm)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ix := newTestIndexer(tm, indexer.Config{
		StartBlock:   100,
		PollInterval: 5 * time.Second,
		BatchSize:    100,
	})

	tm.store.EXPECT().MaxIndexedBlock(gomock.Any()).Return(uint64(0), nil)

	// The range exceeds the batch size, so two cycles run back to back
	gomock.InOrder(
		tm.reader.EXPECT().LatestBlock(gomock.Any()).Return(uint64(250), nil),
		tm.reader.EXPECT().FilterEvents(gomock.Any(), uint64(100), uint64(199)).Return(nil, nil),
		tm.reader.EXPECT().LatestBlock(gomock.Any()).Return(uint64(250), nil),
		tm.reader.EXPECT().FilterEvents(gomock.Any(), uint64(200), uint64(250)).Return(nil, nil),
	)

	cancelOnSleep(tm, cancel)

	err := ix.Run(ctx)

	assert.Equal(t, context.Canceled, err)
}

func TestIndexer_Run_RetriesOnConnectivityError(t *testing.T) {
	tm := setupTestIndexer(t)
	defer tearDownTestIndexer(tm)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ix := newTestIndexer(tm, indexer.Config{
		StartBlock:   100,
		PollInterval: 5 * time.Second,
		BatchSize:    1000,
	})

	tm.store.EXPECT().MaxIndexedBlock(gomock.Any()).Return(uint64(0), nil)

	// Connectivity failures are retried instead of terminating the loop
	connErr := fmt.Errorf("%w: rpc unavailable", domain.ErrConnectivity)
	gomock.InOrder(
		tm.reader.EXPECT().LatestBlock(gomock.Any()).Return(uint64(0), connErr),
		tm.reader.EXPECT().LatestBlock(gomock.Any()).Return(uint64(150), nil),
	)
	tm.reader.EXPECT().FilterEvents(gomock.Any(), uint64(100), uint64(150)).Return(nil, nil)

	// First sleep retries, second one stops the test
	never := make(chan time.Time)
	fired := make(chan time.Time, 1)
	fired <- time.Now()
	gomock.InOrder(
		tm.clock.EXPECT().After(gomock.Any()).Return(fired),
		tm.clock.EXPECT().After(gomock.Any()).DoAndReturn(func(d time.Duration) <-chan time.Time {
			cancel()
			return never
		}),
	)

	err := ix.Run(ctx)

	assert.Equal(t, context.Canceled, err)
}

func TestIndexer_Run_StallsOnDecodeError(t *testing.T) {
	tm := setupTestIndexer(t)
	defer tearDownTestIndexer(tm)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ix := newTestIndexer(tm, indexer.Config{
		StartBlock:   100,
		PollInterval: 5 * time.Second,
		BatchSize:    1000,
	})

	tm.store.EXPECT().MaxIndexedBlock(gomock.Any()).Return(uint64(0), nil)

	// A decode failure stalls at the same range instead of skipping it
	decodeErr := &domain.DecodeError{Field: "LotStatusUpdated", Reason: "unknown status code", Code: 7}
	gomock.InOrder(
		tm.reader.EXPECT().LatestBlock(gomock.Any()).Return(uint64(150), nil),
		tm.reader.EXPECT().FilterEvents(gomock.Any(), uint64(100), uint64(150)).Return(nil, decodeErr),
		tm.reader.EXPECT().LatestBlock(gomock.Any()).Return(uint64(150), nil),
		tm.reader.EXPECT().FilterEvents(gomock.Any(), uint64(100), uint64(150)).Return(nil, decodeErr),
	)

	fired := make(chan time.Time, 1)
	fired <- time.Now()
	never := make(chan time.Time)
	gomock.InOrder(
		tm.clock.EXPECT().After(gomock.Any()).Return(fired),
		tm.clock.EXPECT().After(gomock.Any()).DoAndReturn(func(d time.Duration) <-chan time.Time {
			cancel()
			return never
		}),
	)

	err := ix.Run(ctx)

	assert.Equal(t, context.Canceled, err)
}

func TestIndexer_Run_RetriesOnStoreFailure(t *testing.T) {
	tm := setupTestIndexer(t)
	defer tearDownTestIndexer(tm)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ix := newTestIndexer(tm, indexer.Config{
		StartBlock:   100,
		PollInterval: 5 * time.Second,
		BatchSize:    1000,
	})

	events := []domain.Event{testTransfer(1, 105)}

	tm.store.EXPECT().MaxIndexedBlock(gomock.Any()).Return(uint64(0), nil)

	// An unreachable database rolls the batch back, so the same range
	// is retried after backoff instead of terminating the loop
	storeErr := fmt.Errorf("dial tcp 127.0.0.1:5432: connect: connection refused")
	gomock.InOrder(
		tm.reader.EXPECT().LatestBlock(gomock.Any()).Return(uint64(150), nil),
		tm.reader.EXPECT().FilterEvents(gomock.Any(), uint64(100), uint64(150)).Return(events, nil),
		tm.store.EXPECT().ApplyEvents(gomock.Any(), events).Return(storeErr),
		tm.reader.EXPECT().LatestBlock(gomock.Any()).Return(uint64(150), nil),
		tm.reader.EXPECT().FilterEvents(gomock.Any(), uint64(100), uint64(150)).Return(events, nil),
		tm.store.EXPECT().ApplyEvents(gomock.Any(), events).Return(nil),
	)
	tm.publisher.EXPECT().PublishEvent(gomock.Any(), events[0]).Return(nil)

	fired := make(chan time.Time, 1)
	fired <- time.Now()
	never := make(chan time.Time)
	gomock.InOrder(
		tm.clock.EXPECT().After(gomock.Any()).Return(fired),
		tm.clock.EXPECT().After(gomock.Any()).DoAndReturn(func(d time.Duration) <-chan time.Time {
			cancel()
			return never
		}),
	)

	err := ix.Run(ctx)

	assert.Equal(t, context.Canceled, err)
}

func TestIndexer_Run_EmptyRangeThenRestartResumesFromWatermark(t *testing.T) {
	tm := setupTestIndexer(t)
	defer tearDownTestIndexer(tm)

	cfg := indexer.Config{
		StartBlock:   10,
		PollInterval: 5 * time.Second,
		BatchSize:    1000,
	}

	// First process: the watermark sits at 18. Scanning the empty range
	// [19,30] advances the in-memory cursor, so the next cycle starts at
	// 31 without consulting the watermark again.
	ctx1, cancel1 := context.WithCancel(context.Background())
	defer cancel1()

	ix1 := newTestIndexer(tm, cfg)

	tm.store.EXPECT().MaxIndexedBlock(gomock.Any()).Return(uint64(18), nil)
	gomock.InOrder(
		tm.reader.EXPECT().LatestBlock(gomock.Any()).Return(uint64(30), nil),
		tm.reader.EXPECT().FilterEvents(gomock.Any(), uint64(19), uint64(30)).Return(nil, nil),
		tm.reader.EXPECT().LatestBlock(gomock.Any()).Return(uint64(40), nil),
		tm.reader.EXPECT().FilterEvents(gomock.Any(), uint64(31), uint64(40)).Return(nil, nil),
	)

	fired := make(chan time.Time, 1)
	fired <- time.Now()
	never := make(chan time.Time)
	gomock.InOrder(
		tm.clock.EXPECT().After(gomock.Any()).Return(fired),
		tm.clock.EXPECT().After(gomock.Any()).DoAndReturn(func(d time.Duration) <-chan time.Time {
			cancel1()
			return never
		}),
	)

	assert.Equal(t, context.Canceled, ix1.Run(ctx1))

	// Restart: the empty range left the watermark at 18, so a fresh
	// process re-scans from 19 exactly once. Idempotent application
	// makes the overlap harmless.
	ctx2, cancel2 := context.WithCancel(context.Background())
	defer cancel2()

	ix2 := newTestIndexer(tm, cfg)

	tm.store.EXPECT().MaxIndexedBlock(gomock.Any()).Return(uint64(18), nil)
	tm.reader.EXPECT().LatestBlock(gomock.Any()).Return(uint64(40), nil)
	tm.reader.EXPECT().FilterEvents(gomock.Any(), uint64(19), uint64(40)).Return(nil, nil)
	tm.clock.EXPECT().After(gomock.Any()).DoAndReturn(func(d time.Duration) <-chan time.Time {
		cancel2()
		return never
	})

	assert.Equal(t, context.Canceled, ix2.Run(ctx2))
}

func TestIndexer_Run_PublishErrorDoesNotHoldBackCursor(t *testing.T) {
	tm := setupTestIndexer(t)
	defer tearDownTestIndexer(tm)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ix := newTestIndexer(tm, indexer.Config{
		StartBlock:   100,
		PollInterval: 5 * time.Second,
		BatchSize:    1000,
	})

	events := []domain.Event{testTransfer(1, 105)}

	tm.store.EXPECT().MaxIndexedBlock(gomock.Any()).Return(uint64(0), nil)
	tm.reader.EXPECT().LatestBlock(gomock.Any()).Return(uint64(150), nil)
	tm.reader.EXPECT().FilterEvents(gomock.Any(), uint64(100), uint64(150)).Return(events, nil)
	tm.store.EXPECT().ApplyEvents(gomock.Any(), events).Return(nil)

	// Publication failure is logged but the loop keeps going
	tm.publisher.EXPECT().PublishEvent(gomock.Any(), events[0]).Return(assert.AnError)

	cancelOnSleep(tm, cancel)

	err := ix.Run(ctx)

	assert.Equal(t, context.Canceled, err)
}

func TestIndexer_Run_MaxIndexedBlockError(t *testing.T) {
	tm := setupTestIndexer(t)
	defer tearDownTestIndexer(tm)

	ix := newTestIndexer(tm, indexer.Config{
		StartBlock:   100,
		PollInterval: 5 * time.Second,
		BatchSize:    1000,
	})

	tm.store.EXPECT().MaxIndexedBlock(gomock.Any()).Return(uint64(0), assert.AnError)

	err := ix.Run(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to derive resume point")
}

func TestIndexer_Close(t *testing.T) {
	tm := setupTestIndexer(t)
	defer tearDownTestIndexer(tm)

	ix := newTestIndexer(tm, indexer.Config{})

	tm.reader.EXPECT().Close()

	ix.Close()
}
