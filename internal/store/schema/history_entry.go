package schema

import (
	"time"

	"gorm.io/datatypes"
)

// RecallContentHash is the sentinel content hash recorded on history
// entries produced by recall events, which carry no document.
const RecallContentHash = "recall"

// HistoryEventType tags a history entry with the contract event that produced it
type HistoryEventType string

const (
	HistoryEventLotRegistered    HistoryEventType = "LotRegistered"
	HistoryEventTransfer         HistoryEventType = "Transfer"
	HistoryEventLotStatusUpdated HistoryEventType = "LotStatusUpdated"
	HistoryEventLotRecalled      HistoryEventType = "LotRecalled"
)

// HistoryEntry represents the history_entries table - the append-only
// audit trail of lot lifecycle events
type HistoryEntry struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// LotID references the lot this entry relates to
	LotID int64 `gorm:"column:lot_id;not null;index:idx_history_entries_lot_id"`
	// EventType is the contract event that produced this entry
	EventType HistoryEventType `gorm:"column:event_type;not null;type:varchar(50)"`
	// Actor is the address that triggered the event
	Actor string `gorm:"column:actor;not null;type:varchar(42)"`
	// ContentHash is the pinned document hash, empty when the event carried none
	ContentHash string `gorm:"column:content_hash;not null;default:'';type:varchar(100)"`
	// TransactionHash is the transaction that emitted the event.
	// Its uniqueness is the deduplication authority for re-scanned ranges.
	TransactionHash string `gorm:"column:transaction_hash;not null;uniqueIndex:idx_history_entries_tx_hash;type:varchar(66)"`
	// BlockNumber is the block where the event was recorded
	BlockNumber uint64 `gorm:"column:block_number;not null;index:idx_history_entries_block_number;type:bigint"`
	// LogIndex is the position of the event log within its block
	LogIndex uint `gorm:"column:log_index;not null"`
	// Timestamp is the block timestamp of the event
	Timestamp time.Time `gorm:"column:timestamp;not null;type:timestamptz"`
	// TimestampDegraded is true when the block header was unavailable
	// and the wall clock was recorded instead
	TimestampDegraded bool `gorm:"column:timestamp_degraded;not null;default:false"`
	// Raw contains the complete decoded event as JSON for debugging and analysis
	Raw datatypes.JSON `gorm:"column:raw;type:jsonb"`
	// CreatedAt is the timestamp when this record was indexed
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the HistoryEntry model
func (HistoryEntry) TableName() string {
	return "history_entries"
}
