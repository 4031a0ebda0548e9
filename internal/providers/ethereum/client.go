package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/foodsafe/fs-indexer/internal/adapter"
	"github.com/foodsafe/fs-indexer/internal/domain"
	"github.com/foodsafe/fs-indexer/internal/logger"
)

// TimestampSource resolves block numbers to timestamps. The degraded
// flag is true when the block header was unavailable and a wall-clock
// time was substituted.
type TimestampSource interface {
	BlockTimestamp(ctx context.Context, number uint64) (time.Time, bool, error)
}

// Reader reads decoded contract events from the chain
//
//go:generate mockgen -source=client.go -destination=../../mocks/chain_reader.go -package=mocks -mock_names=Reader=MockChainReader
type Reader interface {
	// LatestBlock returns the number of the chain head
	LatestBlock(ctx context.Context) (uint64, error)

	// FilterEvents returns all decoded contract events in [fromBlock, toBlock],
	// ordered by block number then log index
	FilterEvents(ctx context.Context, fromBlock, toBlock uint64) ([]domain.Event, error)

	// Close closes the underlying connection
	Close()
}

type chainReader struct {
	client     adapter.EthClient
	contract   common.Address
	decoder    *Decoder
	timestamps TimestampSource
}

// NewReader creates a chain reader scoped to a single registry contract
func NewReader(client adapter.EthClient, contractAddress string, decoder *Decoder, timestamps TimestampSource) Reader {
	return &chainReader{
		client:     client,
		contract:   common.HexToAddress(contractAddress),
		decoder:    decoder,
		timestamps: timestamps,
	}
}

// LatestBlock returns the number of the chain head
func (r *chainReader) LatestBlock(ctx context.Context) (uint64, error) {
	header, err := r.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to get latest header: %v", domain.ErrConnectivity, err)
	}
	return header.Number.Uint64(), nil
}

// FilterEvents returns all decoded contract events in [fromBlock, toBlock]
func (r *chainReader) FilterEvents(ctx context.Context, fromBlock, toBlock uint64) ([]domain.Event, error) {
	logs, err := r.getLogsWithRetry(ctx, fromBlock, toBlock, toBlock-fromBlock+1)
	if err != nil {
		return nil, err
	}

	events := make([]domain.Event, 0, len(logs))
	for _, vLog := range logs {
		if vLog.Removed {
			continue
		}

		timestamp, degraded, err := r.timestamps.BlockTimestamp(ctx, vLog.BlockNumber)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to resolve block timestamp: %v", domain.ErrConnectivity, err)
		}

		event, err := r.decoder.Decode(vLog, timestamp, degraded)
		if err != nil {
			if errors.Is(err, domain.ErrUnknownEvent) {
				// Foreign logs on the watched address are skipped, not fatal.
				// A shape mismatch on a known signature propagates instead;
				// swallowing it would silently drop audit history.
				logger.WarnCtx(ctx, "skipping foreign log",
					zap.String("txHash", vLog.TxHash.Hex()),
					zap.Uint64("blockNumber", vLog.BlockNumber),
					zap.Error(err))
				continue
			}
			return nil, err
		}
		events = append(events, event)
	}

	sort.SliceStable(events, func(i, j int) bool {
		pi, pj := events[i].Position(), events[j].Position()
		if pi.BlockNumber != pj.BlockNumber {
			return pi.BlockNumber < pj.BlockNumber
		}
		return pi.LogIndex < pj.LogIndex
	})

	return events, nil
}

// getLogsWithRetry fetches logs in chunks, halving the chunk size when
// the node rejects a range for returning too many results
func (r *chainReader) getLogsWithRetry(ctx context.Context, fromBlock, toBlock, stepSize uint64) ([]types.Log, error) {
	currentStepSize := stepSize

	var allLogs []types.Log
	currentFrom := fromBlock

	for currentFrom <= toBlock {
		currentTo := currentFrom + currentStepSize - 1
		if currentTo > toBlock {
			currentTo = toBlock
		}

		query := ethereum.FilterQuery{
			FromBlock: new(big.Int).SetUint64(currentFrom),
			ToBlock:   new(big.Int).SetUint64(currentTo),
			Addresses: []common.Address{r.contract},
			Topics: [][]common.Hash{{
				lotRegisteredEventSignature,
				transferEventSignature,
				lotStatusUpdatedEventSignature,
				lotRecalledEventSignature,
			}},
		}

		logs, err := r.client.FilterLogs(ctx, query)
		if err == nil {
			allLogs = append(allLogs, logs...)
			currentFrom = currentTo + 1
			continue
		}

		if !isTooManyResultsError(err) {
			return nil, fmt.Errorf("%w: failed to filter logs for range %d-%d: %v", domain.ErrConnectivity, currentFrom, currentTo, err)
		}

		if currentStepSize <= 1 {
			return nil, fmt.Errorf("%w: node rejected single-block log query for block %d: %v", domain.ErrConnectivity, currentFrom, err)
		}
		currentStepSize = currentStepSize / 2

		logger.WarnCtx(ctx, "too many results, reducing step size",
			zap.Uint64("oldStepSize", currentStepSize*2),
			zap.Uint64("newStepSize", currentStepSize),
			zap.Uint64("fromBlock", currentFrom),
			zap.Uint64("toBlock", currentTo))
	}

	return allLogs, nil
}

// Close closes the underlying connection
func (r *chainReader) Close() {
	r.client.Close()
}

// isTooManyResultsError checks if the error is related to too many results
func isTooManyResultsError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	return strings.Contains(errStr, "query returned more than 10000 results") ||
		strings.Contains(errStr, "query timeout exceeded") ||
		strings.Contains(errStr, "too many results") ||
		strings.Contains(errStr, "exceeded maximum")
}
