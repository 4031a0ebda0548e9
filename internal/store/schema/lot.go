package schema

import (
	"time"

	"github.com/foodsafe/fs-indexer/internal/domain"
)

// Lot represents the lots table - the mirrored state of a food lot token
type Lot struct {
	// TokenID is the on-chain lot identifier, also the primary key
	TokenID int64 `gorm:"column:token_id;primaryKey"`
	// ProductName is the human-readable product description from registration
	ProductName string `gorm:"column:product_name;not null;type:text"`
	// ProducerAddress is the address that registered the lot
	ProducerAddress string `gorm:"column:producer_address;not null;type:varchar(42)"`
	// OwnerAddress is the current custodian of the lot
	OwnerAddress string `gorm:"column:owner_address;not null;type:varchar(42);index:idx_lots_owner_address"`
	// Status is the current lifecycle state (Created, InTransit, OnShelf, Recalled)
	Status domain.Status `gorm:"column:status;not null;type:varchar(20);index:idx_lots_status"`
	// IsRecalled is a sticky flag, it never reverts once set
	IsRecalled bool `gorm:"column:is_recalled;not null;default:false;index:idx_lots_is_recalled"`
	// RegisteredAt is the block timestamp of the registration event
	RegisteredAt time.Time `gorm:"column:registered_at;not null;type:timestamptz"`
	// CreatedAt is the timestamp when this record was first indexed
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this record was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`

	// Associations
	HistoryEntries []HistoryEntry `gorm:"foreignKey:LotID;references:TokenID;constraint:OnDelete:CASCADE"`
	RecallEvents   []RecallEvent  `gorm:"foreignKey:LotID;references:TokenID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Lot model
func (Lot) TableName() string {
	return "lots"
}
