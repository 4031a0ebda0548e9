package schema

import (
	"time"

	"gorm.io/datatypes"
)

// RecallEvent represents the recall_events table - one row per on-chain recall
type RecallEvent struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// LotID references the recalled lot
	LotID int64 `gorm:"column:lot_id;not null;index:idx_recall_events_lot_id"`
	// RegulatorAddress is the address that issued the recall
	RegulatorAddress string `gorm:"column:regulator_address;not null;type:varchar(42)"`
	// TransactionHash is the transaction that emitted the event
	TransactionHash string `gorm:"column:transaction_hash;not null;uniqueIndex:idx_recall_events_tx_hash;type:varchar(66)"`
	// BlockNumber is the block where the recall was recorded
	BlockNumber uint64 `gorm:"column:block_number;not null;index:idx_recall_events_block_number;type:bigint"`
	// LogIndex is the position of the event log within its block
	LogIndex uint `gorm:"column:log_index;not null"`
	// Timestamp is the block timestamp of the recall
	Timestamp time.Time `gorm:"column:timestamp;not null;type:timestamptz"`
	// TimestampDegraded is true when the block header was unavailable
	// and the wall clock was recorded instead
	TimestampDegraded bool `gorm:"column:timestamp_degraded;not null;default:false"`
	// Raw contains the complete decoded event as JSON for debugging and analysis
	Raw datatypes.JSON `gorm:"column:raw;type:jsonb"`
	// CreatedAt is the timestamp when this record was indexed
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the RecallEvent model
func (RecallEvent) TableName() string {
	return "recall_events"
}
