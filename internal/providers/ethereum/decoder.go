package ethereum

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/foodsafe/fs-indexer/internal/domain"
)

// foodLotABI is the event surface of the FoodLot registry contract
const foodLotABI = `[
	{"anonymous":false,"inputs":[{"indexed":true,"name":"lotId","type":"uint256"},{"indexed":false,"name":"productName","type":"string"},{"indexed":true,"name":"producer","type":"address"}],"name":"LotRegistered","type":"event"},
	{"anonymous":false,"inputs":[{"indexed":true,"name":"from","type":"address"},{"indexed":true,"name":"to","type":"address"},{"indexed":true,"name":"tokenId","type":"uint256"}],"name":"Transfer","type":"event"},
	{"anonymous":false,"inputs":[{"indexed":true,"name":"lotId","type":"uint256"},{"indexed":false,"name":"newStatus","type":"uint8"},{"indexed":false,"name":"documentHash","type":"string"},{"indexed":true,"name":"updater","type":"address"}],"name":"LotStatusUpdated","type":"event"},
	{"anonymous":false,"inputs":[{"indexed":true,"name":"lotId","type":"uint256"},{"indexed":true,"name":"regulator","type":"address"}],"name":"LotRecalled","type":"event"}
]`

// Event signatures
var (
	// LotRegistered(uint256 indexed lotId, string productName, address indexed producer)
	lotRegisteredEventSignature = crypto.Keccak256Hash([]byte("LotRegistered(uint256,string,address)"))

	// ERC721 Transfer(address indexed from, address indexed to, uint256 indexed tokenId)
	transferEventSignature = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

	// LotStatusUpdated(uint256 indexed lotId, uint8 newStatus, string documentHash, address indexed updater)
	lotStatusUpdatedEventSignature = crypto.Keccak256Hash([]byte("LotStatusUpdated(uint256,uint8,string,address)"))

	// LotRecalled(uint256 indexed lotId, address indexed regulator)
	lotRecalledEventSignature = crypto.Keccak256Hash([]byte("LotRecalled(uint256,address)"))
)

// Decoder decodes raw contract logs into domain events
type Decoder struct {
	contractABI abi.ABI
}

// NewDecoder creates a decoder for the FoodLot registry event surface
func NewDecoder() (*Decoder, error) {
	contractABI, err := abi.JSON(strings.NewReader(foodLotABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract ABI: %w", err)
	}
	return &Decoder{contractABI: contractABI}, nil
}

// Decode parses a contract log into a domain event. The timestamp is
// resolved by the caller since log entries carry no block time. Decoding
// failures are deterministic, the same log always produces the same error.
func (d *Decoder) Decode(vLog types.Log, timestamp time.Time, degraded bool) (domain.Event, error) {
	if len(vLog.Topics) == 0 {
		return nil, &domain.DecodeError{Field: "topics", Reason: "log has no topics", TxHash: vLog.TxHash.Hex()}
	}

	position := domain.ChainPosition{
		BlockNumber:       vLog.BlockNumber,
		TxHash:            vLog.TxHash.Hex(),
		LogIndex:          vLog.Index,
		Timestamp:         timestamp,
		TimestampDegraded: degraded,
	}

	switch vLog.Topics[0] {
	case lotRegisteredEventSignature:
		return d.decodeLotRegistered(vLog, position)
	case transferEventSignature:
		return d.decodeTransfer(vLog, position)
	case lotStatusUpdatedEventSignature:
		return d.decodeLotStatusUpdated(vLog, position)
	case lotRecalledEventSignature:
		return d.decodeLotRecalled(vLog, position)
	default:
		return nil, fmt.Errorf("%w: signature %s (tx=%s)", domain.ErrUnknownEvent, vLog.Topics[0].Hex(), vLog.TxHash.Hex())
	}
}

func (d *Decoder) decodeLotRegistered(vLog types.Log, position domain.ChainPosition) (domain.Event, error) {
	if len(vLog.Topics) != 3 {
		return nil, &domain.DecodeError{Field: "LotRegistered", Reason: fmt.Sprintf("expected 3 topics, got %d", len(vLog.Topics)), TxHash: position.TxHash}
	}

	lotID, err := lotIDFromTopic(vLog.Topics[1], position.TxHash)
	if err != nil {
		return nil, err
	}

	values, err := d.contractABI.Unpack("LotRegistered", vLog.Data)
	if err != nil {
		return nil, &domain.DecodeError{Field: "LotRegistered", Reason: fmt.Sprintf("unpack data: %v", err), TxHash: position.TxHash}
	}
	productName, ok := values[0].(string)
	if !ok {
		return nil, &domain.DecodeError{Field: "LotRegistered", Reason: "productName is not a string", TxHash: position.TxHash}
	}

	return &domain.LotRegistered{
		ChainPosition: position,
		LotID:         lotID,
		ProductName:   productName,
		Producer:      common.BytesToAddress(vLog.Topics[2].Bytes()).Hex(),
	}, nil
}

func (d *Decoder) decodeTransfer(vLog types.Log, position domain.ChainPosition) (domain.Event, error) {
	// ERC20 transfers share this signature but carry only 3 topics
	if len(vLog.Topics) != 4 {
		return nil, &domain.DecodeError{Field: "Transfer", Reason: fmt.Sprintf("expected 4 topics, got %d", len(vLog.Topics)), TxHash: position.TxHash}
	}

	lotID, err := lotIDFromTopic(vLog.Topics[3], position.TxHash)
	if err != nil {
		return nil, err
	}

	return &domain.LotTransfer{
		ChainPosition: position,
		LotID:         lotID,
		From:          common.BytesToAddress(vLog.Topics[1].Bytes()).Hex(),
		To:            common.BytesToAddress(vLog.Topics[2].Bytes()).Hex(),
	}, nil
}

func (d *Decoder) decodeLotStatusUpdated(vLog types.Log, position domain.ChainPosition) (domain.Event, error) {
	if len(vLog.Topics) != 3 {
		return nil, &domain.DecodeError{Field: "LotStatusUpdated", Reason: fmt.Sprintf("expected 3 topics, got %d", len(vLog.Topics)), TxHash: position.TxHash}
	}

	lotID, err := lotIDFromTopic(vLog.Topics[1], position.TxHash)
	if err != nil {
		return nil, err
	}

	values, err := d.contractABI.Unpack("LotStatusUpdated", vLog.Data)
	if err != nil {
		return nil, &domain.DecodeError{Field: "LotStatusUpdated", Reason: fmt.Sprintf("unpack data: %v", err), TxHash: position.TxHash}
	}
	statusCode, ok := values[0].(uint8)
	if !ok {
		return nil, &domain.DecodeError{Field: "LotStatusUpdated", Reason: "newStatus is not a uint8", TxHash: position.TxHash}
	}
	documentHash, ok := values[1].(string)
	if !ok {
		return nil, &domain.DecodeError{Field: "LotStatusUpdated", Reason: "documentHash is not a string", TxHash: position.TxHash}
	}

	status, err := domain.StatusFromCode(statusCode)
	if err != nil {
		return nil, err
	}

	return &domain.LotStatusUpdated{
		ChainPosition: position,
		LotID:         lotID,
		NewStatus:     status,
		DocumentHash:  documentHash,
		Updater:       common.BytesToAddress(vLog.Topics[2].Bytes()).Hex(),
	}, nil
}

func (d *Decoder) decodeLotRecalled(vLog types.Log, position domain.ChainPosition) (domain.Event, error) {
	if len(vLog.Topics) != 3 {
		return nil, &domain.DecodeError{Field: "LotRecalled", Reason: fmt.Sprintf("expected 3 topics, got %d", len(vLog.Topics)), TxHash: position.TxHash}
	}

	lotID, err := lotIDFromTopic(vLog.Topics[1], position.TxHash)
	if err != nil {
		return nil, err
	}

	return &domain.LotRecalled{
		ChainPosition: position,
		LotID:         lotID,
		Regulator:     common.BytesToAddress(vLog.Topics[2].Bytes()).Hex(),
	}, nil
}

func lotIDFromTopic(topic common.Hash, txHash string) (uint64, error) {
	lotID := new(big.Int).SetBytes(topic.Bytes())
	if !lotID.IsUint64() {
		return 0, &domain.DecodeError{Field: "lotId", Reason: "lot id exceeds uint64 range", TxHash: txHash}
	}
	return lotID.Uint64(), nil
}
