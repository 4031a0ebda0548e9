package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/foodsafe/fs-indexer/internal/domain"
	"github.com/foodsafe/fs-indexer/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// It accesses the underlying *sql.DB and sets the pool configuration.
// If any of the pool settings are 0 or empty, reasonable defaults are used:
//   - MaxOpenConns: 20 (if 0)
//   - MaxIdleConns: 5 (if 0)
//   - ConnMaxLifetime: 5 minutes (if 0)
//   - ConnMaxIdleTime: 10 minutes (if 0)
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Defaults (when zero):
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
//
// Notes:
//   - database/sql treats MaxOpenConns=0 as "unlimited"
//   - database/sql treats MaxIdleConns=0 as "no idle connections"
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	// Ensure MaxIdleConns doesn't exceed MaxOpenConns
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// ApplyEvents applies a batch of decoded events in a single transaction.
// Kinds are processed in registration-first priority order so that lot
// rows exist before transfers, status updates, and recalls attach
// history to them, regardless of intra-block log ordering.
func (s *pgStore) ApplyEvents(ctx context.Context, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	byKind := make(map[domain.EventKind][]domain.Event, len(domain.EventKindOrder))
	for _, event := range events {
		byKind[event.Kind()] = append(byKind[event.Kind()], event)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, kind := range domain.EventKindOrder {
			for _, event := range byKind[kind] {
				var err error
				switch e := event.(type) {
				case *domain.LotRegistered:
					err = s.applyLotRegistered(tx, e)
				case *domain.LotTransfer:
					err = s.applyTransfer(tx, e)
				case *domain.LotStatusUpdated:
					err = s.applyStatusUpdated(tx, e)
				case *domain.LotRecalled:
					err = s.applyRecalled(tx, e)
				default:
					err = fmt.Errorf("%w: %T", domain.ErrUnknownEvent, event)
				}
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (s *pgStore) applyLotRegistered(tx *gorm.DB, e *domain.LotRegistered) error {
	lot := schema.Lot{
		TokenID:         int64(e.LotID), //nolint:gosec,G115 // lot ids are registry-assigned counters well within int64
		ProductName:     e.ProductName,
		ProducerAddress: e.Producer,
		OwnerAddress:    e.Producer,
		Status:          domain.StatusCreated,
		RegisteredAt:    e.Timestamp,
	}

	// Redelivered registrations are a no-op
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token_id"}},
		DoNothing: true,
	}).Create(&lot).Error; err != nil {
		return fmt.Errorf("failed to create lot: %w", err)
	}

	_, err := s.insertHistoryIfAbsent(tx, e, schema.HistoryEventLotRegistered, int64(e.LotID), e.Producer, "") //nolint:gosec,G115
	return err
}

func (s *pgStore) applyTransfer(tx *gorm.DB, e *domain.LotTransfer) error {
	// Mint transfers accompany registration and carry no custody change
	if e.IsMint() {
		return nil
	}

	// A transfer for an unregistered lot means the registration was
	// missed. Create a defensive row instead of failing the batch.
	if err := s.ensureLotExists(tx, int64(e.LotID), e.To, domain.StatusInTransit, e.Timestamp); err != nil { //nolint:gosec,G115
		return err
	}

	inserted, err := s.insertHistoryIfAbsent(tx, e, schema.HistoryEventTransfer, int64(e.LotID), e.From, "") //nolint:gosec,G115
	if err != nil {
		return err
	}
	if !inserted {
		return nil
	}

	if err := tx.Model(&schema.Lot{}).
		Where("token_id = ?", int64(e.LotID)). //nolint:gosec,G115
		Update("owner_address", e.To).Error; err != nil {
		return fmt.Errorf("failed to update lot owner: %w", err)
	}

	return nil
}

func (s *pgStore) applyStatusUpdated(tx *gorm.DB, e *domain.LotStatusUpdated) error {
	if err := s.ensureLotExists(tx, int64(e.LotID), e.Updater, e.NewStatus, e.Timestamp); err != nil { //nolint:gosec,G115
		return err
	}

	inserted, err := s.insertHistoryIfAbsent(tx, e, schema.HistoryEventLotStatusUpdated, int64(e.LotID), e.Updater, e.DocumentHash) //nolint:gosec,G115
	if err != nil {
		return err
	}
	if !inserted {
		return nil
	}

	// The updater takes custody along with the status change
	if err := tx.Model(&schema.Lot{}).
		Where("token_id = ?", int64(e.LotID)). //nolint:gosec,G115
		Updates(map[string]interface{}{
			"status":        e.NewStatus,
			"owner_address": e.Updater,
		}).Error; err != nil {
		return fmt.Errorf("failed to update lot status: %w", err)
	}

	return nil
}

func (s *pgStore) applyRecalled(tx *gorm.DB, e *domain.LotRecalled) error {
	if err := s.ensureLotExists(tx, int64(e.LotID), e.Regulator, domain.StatusRecalled, e.Timestamp); err != nil { //nolint:gosec,G115
		return err
	}

	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal recall event: %w", err)
	}

	recall := schema.RecallEvent{
		LotID:             int64(e.LotID), //nolint:gosec,G115
		RegulatorAddress:  e.Regulator,
		TransactionHash:   e.TxHash,
		BlockNumber:       e.BlockNumber,
		LogIndex:          e.LogIndex,
		Timestamp:         e.Timestamp,
		TimestampDegraded: e.TimestampDegraded,
		Raw:               raw,
	}

	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "transaction_hash"}},
		DoNothing: true,
	}).Clauses(clause.Returning{Columns: []clause.Column{}}).
		Create(&recall).Error; err != nil {
		return fmt.Errorf("failed to create recall event: %w", err)
	}

	// Duplicate delivery of the same recall, nothing left to do
	if recall.ID == 0 {
		return nil
	}

	if _, err := s.insertHistoryIfAbsent(tx, e, schema.HistoryEventLotRecalled, int64(e.LotID), e.Regulator, schema.RecallContentHash); err != nil { //nolint:gosec,G115
		return err
	}

	if err := tx.Model(&schema.Lot{}).
		Where("token_id = ?", int64(e.LotID)). //nolint:gosec,G115
		Updates(map[string]interface{}{
			"status":      domain.StatusRecalled,
			"is_recalled": true,
		}).Error; err != nil {
		return fmt.Errorf("failed to mark lot recalled: %w", err)
	}

	return nil
}

// insertHistoryIfAbsent inserts a history entry unless one already
// carries the same transaction hash. Returns whether a row was inserted.
func (s *pgStore) insertHistoryIfAbsent(tx *gorm.DB, event domain.Event, eventType schema.HistoryEventType, lotID int64, actor, contentHash string) (bool, error) {
	raw, err := json.Marshal(event)
	if err != nil {
		return false, fmt.Errorf("failed to marshal event: %w", err)
	}

	position := event.Position()
	entry := schema.HistoryEntry{
		LotID:             lotID,
		EventType:         eventType,
		Actor:             actor,
		ContentHash:       contentHash,
		TransactionHash:   position.TxHash,
		BlockNumber:       position.BlockNumber,
		LogIndex:          position.LogIndex,
		Timestamp:         position.Timestamp,
		TimestampDegraded: position.TimestampDegraded,
		Raw:               raw,
	}

	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "transaction_hash"}},
		DoNothing: true,
	}).Clauses(clause.Returning{Columns: []clause.Column{}}).
		Create(&entry).Error; err != nil {
		return false, fmt.Errorf("failed to create history entry: %w", err)
	}

	return entry.ID != 0, nil
}

// ensureLotExists creates a defensive lot row when an event references
// a lot whose registration was never observed
func (s *pgStore) ensureLotExists(tx *gorm.DB, lotID int64, owner string, status domain.Status, timestamp time.Time) error {
	lot := schema.Lot{
		TokenID:      lotID,
		OwnerAddress: owner,
		Status:       status,
		IsRecalled:   status == domain.StatusRecalled,
		RegisteredAt: timestamp,
	}

	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token_id"}},
		DoNothing: true,
	}).Create(&lot).Error; err != nil {
		return fmt.Errorf("failed to ensure lot exists: %w", err)
	}

	return nil
}

// MaxIndexedBlock derives the resume point from recorded history
func (s *pgStore) MaxIndexedBlock(ctx context.Context) (uint64, error) {
	var maxBlock uint64
	err := s.db.WithContext(ctx).
		Raw(`SELECT GREATEST(
			COALESCE((SELECT MAX(block_number) FROM history_entries), 0),
			COALESCE((SELECT MAX(block_number) FROM recall_events), 0)
		)`).
		Scan(&maxBlock).Error
	if err != nil {
		return 0, fmt.Errorf("failed to derive max indexed block: %w", err)
	}
	return maxBlock, nil
}

// GetLot retrieves a lot by its on-chain token ID
func (s *pgStore) GetLot(ctx context.Context, tokenID int64) (*schema.Lot, error) {
	var lot schema.Lot
	err := s.db.WithContext(ctx).Where("token_id = ?", tokenID).First(&lot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLotNotFound
		}
		return nil, fmt.Errorf("failed to get lot: %w", err)
	}
	return &lot, nil
}

// ListLots retrieves lots matching the filter, newest registrations first
func (s *pgStore) ListLots(ctx context.Context, filter LotQueryFilter) ([]schema.Lot, int64, error) {
	query := s.db.WithContext(ctx).Model(&schema.Lot{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Recalled != nil {
		query = query.Where("is_recalled = ?", *filter.Recalled)
	}
	if filter.Owner != "" {
		query = query.Where("owner_address = ?", filter.Owner)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count lots: %w", err)
	}

	var lots []schema.Lot
	if err := query.
		Order("registered_at DESC, token_id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&lots).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list lots: %w", err)
	}

	return lots, total, nil
}

// GetLotHistory retrieves the audit trail for a lot in chain order
func (s *pgStore) GetLotHistory(ctx context.Context, tokenID int64, limit, offset int) ([]schema.HistoryEntry, int64, error) {
	query := s.db.WithContext(ctx).Model(&schema.HistoryEntry{}).Where("lot_id = ?", tokenID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count history entries: %w", err)
	}

	var entries []schema.HistoryEntry
	if err := query.
		Order("block_number ASC, log_index ASC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list history entries: %w", err)
	}

	return entries, total, nil
}

// ListRecalls retrieves recall events, newest first
func (s *pgStore) ListRecalls(ctx context.Context, limit, offset int) ([]schema.RecallEvent, int64, error) {
	query := s.db.WithContext(ctx).Model(&schema.RecallEvent{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recall events: %w", err)
	}

	var recalls []schema.RecallEvent
	if err := query.
		Order("block_number DESC, log_index DESC").
		Limit(limit).
		Offset(offset).
		Find(&recalls).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list recall events: %w", err)
	}

	return recalls, total, nil
}

// GetLotRecall retrieves the most recent recall event for a lot
func (s *pgStore) GetLotRecall(ctx context.Context, tokenID int64) (*schema.RecallEvent, error) {
	var recall schema.RecallEvent
	err := s.db.WithContext(ctx).
		Where("lot_id = ?", tokenID).
		Order("block_number DESC, log_index DESC").
		First(&recall).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recall for lot %d: %w", tokenID, err)
	}

	return &recall, nil
}

// Stats aggregates registry-wide counters
func (s *pgStore) Stats(ctx context.Context) (*StatsResult, error) {
	result := &StatsResult{
		LotsByStatus: make(map[domain.Status]int64),
	}

	if err := s.db.WithContext(ctx).Model(&schema.Lot{}).Count(&result.TotalLots).Error; err != nil {
		return nil, fmt.Errorf("failed to count lots: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&schema.Lot{}).
		Where("is_recalled = ?", true).
		Count(&result.RecalledLots).Error; err != nil {
		return nil, fmt.Errorf("failed to count recalled lots: %w", err)
	}

	var statusCounts []struct {
		Status domain.Status
		Count  int64
	}
	if err := s.db.WithContext(ctx).Model(&schema.Lot{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, fmt.Errorf("failed to count lots by status: %w", err)
	}
	for _, sc := range statusCounts {
		result.LotsByStatus[sc.Status] = sc.Count
	}

	if err := s.db.WithContext(ctx).Model(&schema.HistoryEntry{}).Count(&result.HistoryEntries).Error; err != nil {
		return nil, fmt.Errorf("failed to count history entries: %w", err)
	}

	maxBlock, err := s.MaxIndexedBlock(ctx)
	if err != nil {
		return nil, err
	}
	result.MaxIndexedBlock = maxBlock

	return result, nil
}

// ListDocumentHashes returns distinct pinned document hashes recorded on history entries
func (s *pgStore) ListDocumentHashes(ctx context.Context, limit int) ([]string, error) {
	var hashes []string
	err := s.db.WithContext(ctx).Model(&schema.HistoryEntry{}).
		Distinct("content_hash").
		Where("content_hash <> ? AND content_hash <> ?", "", schema.RecallContentHash).
		Limit(limit).
		Pluck("content_hash", &hashes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list document hashes: %w", err)
	}
	return hashes, nil
}

// Ping verifies database connectivity
func (s *pgStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
