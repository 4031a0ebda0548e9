package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Status represents the lifecycle state of a food lot
type Status string

const (
	StatusCreated   Status = "Created"
	StatusInTransit Status = "InTransit"
	StatusOnShelf   Status = "OnShelf"
	StatusRecalled  Status = "Recalled"
)

// StatusFromCode maps the on-chain uint8 status code to its Status.
// Codes outside the contract's enum are rejected rather than guessed at.
func StatusFromCode(code uint8) (Status, error) {
	switch code {
	case 0:
		return StatusCreated, nil
	case 1:
		return StatusInTransit, nil
	case 2:
		return StatusOnShelf, nil
	case 3:
		return StatusRecalled, nil
	default:
		return "", &DecodeError{Field: "status", Reason: "unknown status code", Code: uint64(code)}
	}
}

// IsValidStatus checks if a status is one of the known lifecycle states
func IsValidStatus(status Status) bool {
	return status == StatusCreated ||
		status == StatusInTransit ||
		status == StatusOnShelf ||
		status == StatusRecalled
}

// EventKind identifies the type of contract event
type EventKind string

const (
	EventKindLotRegistered    EventKind = "lot_registered"
	EventKindTransfer         EventKind = "transfer"
	EventKindLotStatusUpdated EventKind = "lot_status_updated"
	EventKindLotRecalled      EventKind = "lot_recalled"
)

// EventKindOrder lists event kinds in the order they must be applied
// within a block range. Registration precedes transfers, transfers
// precede status updates, and recalls settle last.
var EventKindOrder = []EventKind{
	EventKindLotRegistered,
	EventKindTransfer,
	EventKindLotStatusUpdated,
	EventKindLotRecalled,
}

// Event is a decoded contract event carrying its chain position
type Event interface {
	Kind() EventKind
	Position() ChainPosition
}

// ChainPosition locates an event on chain
type ChainPosition struct {
	BlockNumber uint64    `json:"block_number"`
	TxHash      string    `json:"tx_hash"`
	LogIndex    uint      `json:"log_index"`
	Timestamp   time.Time `json:"timestamp"`
	// TimestampDegraded is true when the block header was unavailable
	// and the wall clock was used instead of the block timestamp
	TimestampDegraded bool `json:"timestamp_degraded,omitempty"`
}

// LotRegistered represents a LotRegistered contract event
type LotRegistered struct {
	ChainPosition
	LotID       uint64 `json:"lot_id"`
	ProductName string `json:"product_name"`
	Producer    string `json:"producer"`
}

func (e *LotRegistered) Kind() EventKind         { return EventKindLotRegistered }
func (e *LotRegistered) Position() ChainPosition { return e.ChainPosition }

// LotTransfer represents an ERC-721 Transfer contract event
type LotTransfer struct {
	ChainPosition
	LotID uint64 `json:"lot_id"`
	From  string `json:"from"`
	To    string `json:"to"`
}

func (e *LotTransfer) Kind() EventKind         { return EventKindTransfer }
func (e *LotTransfer) Position() ChainPosition { return e.ChainPosition }

// IsMint reports whether this transfer is the mint accompanying a
// registration. Mint transfers carry no custody change of their own.
func (e *LotTransfer) IsMint() bool {
	return e.From == ETHEREUM_ZERO_ADDRESS
}

// LotStatusUpdated represents a LotStatusUpdated contract event
type LotStatusUpdated struct {
	ChainPosition
	LotID        uint64 `json:"lot_id"`
	NewStatus    Status `json:"new_status"`
	DocumentHash string `json:"document_hash"`
	Updater      string `json:"updater"`
}

func (e *LotStatusUpdated) Kind() EventKind         { return EventKindLotStatusUpdated }
func (e *LotStatusUpdated) Position() ChainPosition { return e.ChainPosition }

// LotRecalled represents a LotRecalled contract event
type LotRecalled struct {
	ChainPosition
	LotID     uint64 `json:"lot_id"`
	Regulator string `json:"regulator"`
}

func (e *LotRecalled) Kind() EventKind         { return EventKindLotRecalled }
func (e *LotRecalled) Position() ChainPosition { return e.ChainPosition }

// ChecksumAddress normalizes an Ethereum address to its EIP-55 checksummed form
func ChecksumAddress(addr string) string {
	return common.HexToAddress(addr).Hex()
}

// IsValidAddress checks if a string is a valid hex-encoded Ethereum address
func IsValidAddress(addr string) bool {
	return common.IsHexAddress(addr)
}
