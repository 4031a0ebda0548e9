package store

import (
	"context"

	"github.com/foodsafe/fs-indexer/internal/domain"
	"github.com/foodsafe/fs-indexer/internal/store/schema"
)

// LotQueryFilter narrows lot listings
type LotQueryFilter struct {
	// Status filters by lifecycle state when non-empty
	Status domain.Status
	// Recalled filters by the recall flag when non-nil
	Recalled *bool
	// Owner filters by current custodian when non-empty
	Owner string

	Limit  int
	Offset int
}

// StatsResult aggregates registry-wide counters
type StatsResult struct {
	TotalLots       int64                   `json:"total_lots"`
	RecalledLots    int64                   `json:"recalled_lots"`
	LotsByStatus    map[domain.Status]int64 `json:"lots_by_status"`
	HistoryEntries  int64                   `json:"history_entries"`
	MaxIndexedBlock uint64                  `json:"max_indexed_block"`
}

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// ApplyEvents applies a batch of decoded events in a single
	// transaction, ordered by event kind then chain position. Replaying
	// a range that was already applied is a no-op.
	ApplyEvents(ctx context.Context, events []domain.Event) error

	// MaxIndexedBlock derives the resume point from recorded history.
	// Returns 0 when nothing has been indexed yet.
	MaxIndexedBlock(ctx context.Context) (uint64, error)

	// GetLot retrieves a lot by its on-chain token ID
	GetLot(ctx context.Context, tokenID int64) (*schema.Lot, error)

	// ListLots retrieves lots matching the filter, newest registrations first
	ListLots(ctx context.Context, filter LotQueryFilter) ([]schema.Lot, int64, error)

	// GetLotHistory retrieves the audit trail for a lot in chain order
	GetLotHistory(ctx context.Context, tokenID int64, limit, offset int) ([]schema.HistoryEntry, int64, error)

	// ListRecalls retrieves recall events, newest first
	ListRecalls(ctx context.Context, limit, offset int) ([]schema.RecallEvent, int64, error)

	// GetLotRecall retrieves the most recent recall event for a lot.
	// Returns nil when the lot has never been recalled.
	GetLotRecall(ctx context.Context, tokenID int64) (*schema.RecallEvent, error)

	// Stats aggregates registry-wide counters
	Stats(ctx context.Context) (*StatsResult, error)

	// ListDocumentHashes returns distinct pinned document hashes recorded
	// on history entries, excluding sentinel values
	ListDocumentHashes(ctx context.Context, limit int) ([]string, error)

	// Ping verifies database connectivity
	Ping(ctx context.Context) error
}
