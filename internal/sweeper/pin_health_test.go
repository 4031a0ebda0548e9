package sweeper_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodsafe/fs-indexer/internal/domain"
	"github.com/foodsafe/fs-indexer/internal/logger"
	"github.com/foodsafe/fs-indexer/internal/mocks"
	"github.com/foodsafe/fs-indexer/internal/sweeper"
)

// testSweeperMocks contains all the mocks needed for testing the sweeper
type testSweeperMocks struct {
	ctrl    *gomock.Controller
	store   *mocks.MockStore
	pinner  *mocks.MockPinner
	clock   *mocks.MockClock
	sweeper sweeper.Sweeper
}

// setupTestSweeper creates all the mocks and sweeper for testing
func setupTestSweeper(t *testing.T) *testSweeperMocks {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: true,
	})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	ctrl := gomock.NewController(t)

	tm := &testSweeperMocks{
		ctrl:   ctrl,
		store:  mocks.NewMockStore(ctrl),
		pinner: mocks.NewMockPinner(ctrl),
		clock:  mocks.NewMockClock(ctrl),
	}

	config := &sweeper.PinHealthSweeperConfig{
		SweepInterval:  time.Hour,
		BatchSize:      10,
		WorkerPoolSize: 2,
		RecheckAfter:   24 * time.Hour,
	}

	tm.sweeper = sweeper.NewPinHealthSweeper(
		config,
		tm.store,
		tm.pinner,
		tm.clock,
	)

	return tm
}

// tearDownTestSweeper cleans up the test mocks
func tearDownTestSweeper(mocks *testSweeperMocks) {
	mocks.ctrl.Finish()
}

// expectClock sets the common clock expectations: time queries succeed
// and sleeps complete after a short real delay so Stop can run.
func expectClock(tm *testSweeperMocks) {
	now := time.Now()
	tm.clock.EXPECT().Now().Return(now).AnyTimes()
	tm.clock.EXPECT().Since(gomock.Any()).Return(time.Second).AnyTimes()
	tm.clock.EXPECT().After(gomock.Any()).DoAndReturn(func(d time.Duration) <-chan time.Time {
		ch := make(chan time.Time, 1)
		go func() {
			time.Sleep(50 * time.Millisecond)
			ch <- time.Now()
		}()
		return ch
	}).AnyTimes()
}

func stopAfter(tm *testSweeperMocks, delay time.Duration) {
	go func() {
		time.Sleep(delay)
		_ = tm.sweeper.Stop(context.Background())
	}()
}

func TestPinHealthSweeper_Name(t *testing.T) {
	tm := setupTestSweeper(t)
	defer tearDownTestSweeper(tm)

	assert.Equal(t, "pin-health-sweeper", tm.sweeper.Name())
}

func TestPinHealthSweeper_PinsRetrievableHash(t *testing.T) {
	tm := setupTestSweeper(t)
	defer tearDownTestSweeper(tm)

	expectClock(tm)

	tm.store.EXPECT().
		ListDocumentHashes(gomock.Any(), 10).
		Return([]string{"QmDoc1"}, nil).
		MinTimes(1)

	tm.pinner.EXPECT().
		Fetch(gomock.Any(), "QmDoc1").
		Return([]byte(`{"result":"pass"}`), nil).
		Times(1)

	tm.pinner.EXPECT().
		PinByHash(gomock.Any(), "QmDoc1").
		Return(nil).
		Times(1)

	stopAfter(tm, 200*time.Millisecond)

	err := tm.sweeper.Start(context.Background())
	require.NoError(t, err)
}

func TestPinHealthSweeper_PinsMissingHash(t *testing.T) {
	tm := setupTestSweeper(t)
	defer tearDownTestSweeper(tm)

	expectClock(tm)

	tm.store.EXPECT().
		ListDocumentHashes(gomock.Any(), 10).
		Return([]string{"QmMissing"}, nil).
		MinTimes(1)

	// Gateway cannot serve the content, the pin request still goes out
	// so the pinning service searches the network for it
	tm.pinner.EXPECT().
		Fetch(gomock.Any(), "QmMissing").
		Return(nil, domain.ErrDocumentNotFound).
		Times(1)

	tm.pinner.EXPECT().
		PinByHash(gomock.Any(), "QmMissing").
		Return(nil).
		Times(1)

	stopAfter(tm, 200*time.Millisecond)

	err := tm.sweeper.Start(context.Background())
	require.NoError(t, err)
}

func TestPinHealthSweeper_RetriesTransientFetchError(t *testing.T) {
	tm := setupTestSweeper(t)
	defer tearDownTestSweeper(tm)

	expectClock(tm)

	tm.store.EXPECT().
		ListDocumentHashes(gomock.Any(), 10).
		Return([]string{"QmDoc1"}, nil).
		MinTimes(1)

	// Transient failures skip the pin so the hash stays due next cycle
	tm.pinner.EXPECT().
		Fetch(gomock.Any(), "QmDoc1").
		Return(nil, assert.AnError).
		MinTimes(1)

	stopAfter(tm, 200*time.Millisecond)

	err := tm.sweeper.Start(context.Background())
	require.NoError(t, err)
}

func TestPinHealthSweeper_SkipsRecentlyCheckedHashes(t *testing.T) {
	tm := setupTestSweeper(t)
	defer tearDownTestSweeper(tm)

	expectClock(tm)

	tm.store.EXPECT().
		ListDocumentHashes(gomock.Any(), 10).
		Return([]string{"QmDoc1"}, nil).
		MinTimes(2)

	// The hash is checked exactly once even though the store keeps
	// returning it across cycles
	tm.pinner.EXPECT().
		Fetch(gomock.Any(), "QmDoc1").
		Return([]byte("content"), nil).
		Times(1)

	tm.pinner.EXPECT().
		PinByHash(gomock.Any(), "QmDoc1").
		Return(nil).
		Times(1)

	stopAfter(tm, 300*time.Millisecond)

	err := tm.sweeper.Start(context.Background())
	require.NoError(t, err)
}

func TestPinHealthSweeper_StoreError(t *testing.T) {
	tm := setupTestSweeper(t)
	defer tearDownTestSweeper(tm)

	expectClock(tm)

	tm.store.EXPECT().
		ListDocumentHashes(gomock.Any(), 10).
		Return(nil, assert.AnError).
		MinTimes(1)

	stopAfter(tm, 150*time.Millisecond)

	err := tm.sweeper.Start(context.Background())
	require.NoError(t, err)
}

func TestPinHealthSweeper_DoubleStart(t *testing.T) {
	tm := setupTestSweeper(t)
	defer tearDownTestSweeper(tm)

	expectClock(tm)

	tm.store.EXPECT().
		ListDocumentHashes(gomock.Any(), 10).
		Return([]string{}, nil).
		AnyTimes()

	started := make(chan struct{})
	go func() {
		close(started)
		_ = tm.sweeper.Start(context.Background())
	}()

	<-started
	time.Sleep(50 * time.Millisecond)

	err := tm.sweeper.Start(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already running")

	_ = tm.sweeper.Stop(context.Background())
}
