package ethereum

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodsafe/fs-indexer/internal/domain"
)

var (
	testProducer  = common.HexToAddress("0x396343362be2A4dA1cE0C1C210945346fb82Aa49")
	testRetailer  = common.HexToAddress("0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb1")
	testRegulator = common.HexToAddress("0x1aE0EA34a72D944a8C7603FfB3eC30a6669E454C")
	testTxHash    = common.HexToHash("0xaaaa000000000000000000000000000000000000000000000000000000000001")
	testTime      = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
)

// addrTopic left-pads an address to the 32-byte topic form used for
// indexed address parameters.
func addrTopic(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

func packEventData(t *testing.T, d *Decoder, eventName string, values ...interface{}) []byte {
	t.Helper()
	data, err := d.contractABI.Events[eventName].Inputs.NonIndexed().Pack(values...)
	require.NoError(t, err)
	return data
}

func TestDecoder_Decode_LotRegistered(t *testing.T) {
	d, err := NewDecoder()
	require.NoError(t, err)

	vLog := types.Log{
		Topics: []common.Hash{
			lotRegisteredEventSignature,
			common.BigToHash(big.NewInt(5)),
			addrTopic(testProducer),
		},
		Data:        packEventData(t, d, "LotRegistered", "Organic Lettuce"),
		BlockNumber: 100,
		TxHash:      testTxHash,
		Index:       2,
	}

	event, err := d.Decode(vLog, testTime, false)
	require.NoError(t, err)

	registered, ok := event.(*domain.LotRegistered)
	require.True(t, ok)
	assert.Equal(t, uint64(5), registered.LotID)
	assert.Equal(t, "Organic Lettuce", registered.ProductName)
	assert.Equal(t, testProducer.Hex(), registered.Producer)
	assert.Equal(t, uint64(100), registered.BlockNumber)
	assert.Equal(t, testTxHash.Hex(), registered.TxHash)
	assert.Equal(t, uint(2), registered.LogIndex)
	assert.Equal(t, testTime, registered.Timestamp)
	assert.False(t, registered.TimestampDegraded)
	assert.Equal(t, domain.EventKindLotRegistered, registered.Kind())
}

func TestDecoder_Decode_Transfer(t *testing.T) {
	d, err := NewDecoder()
	require.NoError(t, err)

	vLog := types.Log{
		Topics: []common.Hash{
			transferEventSignature,
			addrTopic(testProducer),
			addrTopic(testRetailer),
			common.BigToHash(big.NewInt(5)),
		},
		BlockNumber: 101,
		TxHash:      testTxHash,
	}

	event, err := d.Decode(vLog, testTime, false)
	require.NoError(t, err)

	transfer, ok := event.(*domain.LotTransfer)
	require.True(t, ok)
	assert.Equal(t, uint64(5), transfer.LotID)
	assert.Equal(t, testProducer.Hex(), transfer.From)
	assert.Equal(t, testRetailer.Hex(), transfer.To)
	assert.False(t, transfer.IsMint())
}

func TestDecoder_Decode_MintTransfer(t *testing.T) {
	d, err := NewDecoder()
	require.NoError(t, err)

	vLog := types.Log{
		Topics: []common.Hash{
			transferEventSignature,
			addrTopic(common.HexToAddress(domain.ETHEREUM_ZERO_ADDRESS)),
			addrTopic(testProducer),
			common.BigToHash(big.NewInt(5)),
		},
		BlockNumber: 100,
		TxHash:      testTxHash,
	}

	event, err := d.Decode(vLog, testTime, false)
	require.NoError(t, err)

	transfer, ok := event.(*domain.LotTransfer)
	require.True(t, ok)
	assert.True(t, transfer.IsMint())
}

func TestDecoder_Decode_ERC20StyleTransferRejected(t *testing.T) {
	d, err := NewDecoder()
	require.NoError(t, err)

	// ERC20 transfers share the signature but carry only 3 topics
	vLog := types.Log{
		Topics: []common.Hash{
			transferEventSignature,
			addrTopic(testProducer),
			addrTopic(testRetailer),
		},
		TxHash: testTxHash,
	}

	_, err = d.Decode(vLog, testTime, false)
	require.Error(t, err)
	assert.True(t, domain.IsDecodeError(err))
}

func TestDecoder_Decode_LotStatusUpdated(t *testing.T) {
	d, err := NewDecoder()
	require.NoError(t, err)

	vLog := types.Log{
		Topics: []common.Hash{
			lotStatusUpdatedEventSignature,
			common.BigToHash(big.NewInt(5)),
			addrTopic(testRetailer),
		},
		Data:        packEventData(t, d, "LotStatusUpdated", uint8(2), "QmShelfCert123"),
		BlockNumber: 102,
		TxHash:      testTxHash,
	}

	event, err := d.Decode(vLog, testTime, false)
	require.NoError(t, err)

	updated, ok := event.(*domain.LotStatusUpdated)
	require.True(t, ok)
	assert.Equal(t, uint64(5), updated.LotID)
	assert.Equal(t, domain.StatusOnShelf, updated.NewStatus)
	assert.Equal(t, "QmShelfCert123", updated.DocumentHash)
	assert.Equal(t, testRetailer.Hex(), updated.Updater)
}

func TestDecoder_Decode_LotStatusUpdated_UnknownStatusCode(t *testing.T) {
	d, err := NewDecoder()
	require.NoError(t, err)

	vLog := types.Log{
		Topics: []common.Hash{
			lotStatusUpdatedEventSignature,
			common.BigToHash(big.NewInt(5)),
			addrTopic(testRetailer),
		},
		Data:   packEventData(t, d, "LotStatusUpdated", uint8(9), "QmHash"),
		TxHash: testTxHash,
	}

	_, err = d.Decode(vLog, testTime, false)
	require.Error(t, err)
	assert.True(t, domain.IsDecodeError(err))
}

func TestDecoder_Decode_LotRecalled(t *testing.T) {
	d, err := NewDecoder()
	require.NoError(t, err)

	vLog := types.Log{
		Topics: []common.Hash{
			lotRecalledEventSignature,
			common.BigToHash(big.NewInt(5)),
			addrTopic(testRegulator),
		},
		BlockNumber: 103,
		TxHash:      testTxHash,
	}

	event, err := d.Decode(vLog, testTime, true)
	require.NoError(t, err)

	recalled, ok := event.(*domain.LotRecalled)
	require.True(t, ok)
	assert.Equal(t, uint64(5), recalled.LotID)
	assert.Equal(t, testRegulator.Hex(), recalled.Regulator)
	assert.True(t, recalled.Position().TimestampDegraded)
}

func TestDecoder_Decode_UnknownSignature(t *testing.T) {
	d, err := NewDecoder()
	require.NoError(t, err)

	vLog := types.Log{
		Topics: []common.Hash{
			common.HexToHash("0xdeadbeef00000000000000000000000000000000000000000000000000000000"),
		},
		TxHash: testTxHash,
	}

	_, err = d.Decode(vLog, testTime, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownEvent)
}

func TestDecoder_Decode_NoTopics(t *testing.T) {
	d, err := NewDecoder()
	require.NoError(t, err)

	_, err = d.Decode(types.Log{TxHash: testTxHash}, testTime, false)
	require.Error(t, err)
	assert.True(t, domain.IsDecodeError(err))
}
