package dto

import (
	"encoding/json"
	"time"

	"github.com/foodsafe/fs-indexer/internal/domain"
	"github.com/foodsafe/fs-indexer/internal/store/schema"
)

// LotResponse represents a mirrored food lot
type LotResponse struct {
	TokenID         int64         `json:"token_id"`
	ProductName     string        `json:"product_name"`
	ProducerAddress string        `json:"producer_address"`
	OwnerAddress    string        `json:"owner_address"`
	Status          domain.Status `json:"status"`
	IsRecalled      bool          `json:"is_recalled"`
	RegisteredAt    time.Time     `json:"registered_at"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// HistoryEntryResponse represents one entry of a lot's audit trail
type HistoryEntryResponse struct {
	ID                uint64                  `json:"id"`
	LotID             int64                   `json:"lot_id"`
	EventType         schema.HistoryEventType `json:"event_type"`
	Actor             string                  `json:"actor"`
	ContentHash       string                  `json:"content_hash,omitempty"`
	ContentURL        string                  `json:"content_url,omitempty"`
	TransactionHash   string                  `json:"transaction_hash"`
	BlockNumber       uint64                  `json:"block_number"`
	LogIndex          uint                    `json:"log_index"`
	Timestamp         time.Time               `json:"timestamp"`
	TimestampDegraded bool                    `json:"timestamp_degraded"`
	Raw               json.RawMessage         `json:"raw,omitempty"`
}

// RecallEventResponse represents a recall event
type RecallEventResponse struct {
	ID                uint64    `json:"id"`
	LotID             int64     `json:"lot_id"`
	RegulatorAddress  string    `json:"regulator_address"`
	TransactionHash   string    `json:"transaction_hash"`
	BlockNumber       uint64    `json:"block_number"`
	LogIndex          uint      `json:"log_index"`
	Timestamp         time.Time `json:"timestamp"`
	TimestampDegraded bool      `json:"timestamp_degraded"`
}

// RecallStatusResponse answers whether a lot is recalled
type RecallStatusResponse struct {
	TokenID    int64                `json:"token_id"`
	IsRecalled bool                 `json:"is_recalled"`
	Recall     *RecallEventResponse `json:"recall,omitempty"`
}

// ChainStatusResponse reports how far the mirror lags the chain
type ChainStatusResponse struct {
	LatestBlock     uint64 `json:"latest_block"`
	MaxIndexedBlock uint64 `json:"max_indexed_block"`
	BlockLag        uint64 `json:"block_lag"`
}

// PinResponse is returned after pinning a document
type PinResponse struct {
	ContentHash string `json:"content_hash"`
	GatewayURL  string `json:"gateway_url"`
}

// PaginatedLots represents a page of lots
type PaginatedLots struct {
	Items  []LotResponse `json:"items"`
	Offset int           `json:"offset"`
	Total  int64         `json:"total"`
}

// PaginatedHistoryEntries represents a page of audit trail entries
type PaginatedHistoryEntries struct {
	Items  []HistoryEntryResponse `json:"items"`
	Offset int                    `json:"offset"`
	Total  int64                  `json:"total"`
}

// PaginatedRecallEvents represents a page of recall events
type PaginatedRecallEvents struct {
	Items  []RecallEventResponse `json:"items"`
	Offset int                   `json:"offset"`
	Total  int64                 `json:"total"`
}

// FromLot maps a lot record to its response representation
func FromLot(lot *schema.Lot) LotResponse {
	return LotResponse{
		TokenID:         lot.TokenID,
		ProductName:     lot.ProductName,
		ProducerAddress: lot.ProducerAddress,
		OwnerAddress:    lot.OwnerAddress,
		Status:          lot.Status,
		IsRecalled:      lot.IsRecalled,
		RegisteredAt:    lot.RegisteredAt,
		CreatedAt:       lot.CreatedAt,
		UpdatedAt:       lot.UpdatedAt,
	}
}

// FromLots maps a slice of lot records
func FromLots(lots []schema.Lot) []LotResponse {
	items := make([]LotResponse, 0, len(lots))
	for i := range lots {
		items = append(items, FromLot(&lots[i]))
	}
	return items
}

// FromHistoryEntry maps a history record to its response representation.
// contentURL carries the resolved gateway URL, empty when the entry has
// no document.
func FromHistoryEntry(entry *schema.HistoryEntry, contentURL string) HistoryEntryResponse {
	return HistoryEntryResponse{
		ID:                entry.ID,
		LotID:             entry.LotID,
		EventType:         entry.EventType,
		Actor:             entry.Actor,
		ContentHash:       entry.ContentHash,
		ContentURL:        contentURL,
		TransactionHash:   entry.TransactionHash,
		BlockNumber:       entry.BlockNumber,
		LogIndex:          entry.LogIndex,
		Timestamp:         entry.Timestamp,
		TimestampDegraded: entry.TimestampDegraded,
		Raw:               json.RawMessage(entry.Raw),
	}
}

// FromRecallEvent maps a recall record to its response representation
func FromRecallEvent(recall *schema.RecallEvent) RecallEventResponse {
	return RecallEventResponse{
		ID:                recall.ID,
		LotID:             recall.LotID,
		RegulatorAddress:  recall.RegulatorAddress,
		TransactionHash:   recall.TransactionHash,
		BlockNumber:       recall.BlockNumber,
		LogIndex:          recall.LogIndex,
		Timestamp:         recall.Timestamp,
		TimestampDegraded: recall.TimestampDegraded,
	}
}

// FromRecallEvents maps a slice of recall records
func FromRecallEvents(recalls []schema.RecallEvent) []RecallEventResponse {
	items := make([]RecallEventResponse, 0, len(recalls))
	for i := range recalls {
		items = append(items, FromRecallEvent(&recalls[i]))
	}
	return items
}
