package schema

import (
	"time"

	"gorm.io/datatypes"
)

// Log categories for summit_log entries.
const (
	// LogCategoryBattle groups combat activity, including extra-life changes
	LogCategoryBattle = "Battle"
	// LogCategoryBeastUpgrade groups derived stat-increase entries
	LogCategoryBeastUpgrade = "Beast Upgrade"
	// LogCategorySummit groups summit occupancy changes
	LogCategorySummit = "Summit"
	// LogCategoryMarket groups resolved market trades
	LogCategoryMarket = "Market"
)

// Log sub-categories.
const (
	LogSubCategorySummitChange = "Summit Change"
	LogSubCategoryBought       = "Bought"
	LogSubCategorySold         = "Sold"
	LogSubCategoryAttack       = "Attack"
)

// SummitLog represents the summit_log table - the append-only fact feed
// consumed by the game client. Natural key is
// (block_number, tx_hash, event_index, token_id); duplicate inserts are
// silently dropped, which is what makes redelivered blocks harmless.
type SummitLog struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// BlockNumber is the block that produced this entry
	BlockNumber uint64 `gorm:"column:block_number;not null;uniqueIndex:idx_summit_log_natural,priority:1"`
	// TxHash is the transaction that produced this entry
	TxHash string `gorm:"column:tx_hash;not null;type:text;uniqueIndex:idx_summit_log_natural,priority:2"`
	// EventIndex is the flattened composite log index (base*100+sub)
	EventIndex int64 `gorm:"column:event_index;not null;uniqueIndex:idx_summit_log_natural,priority:3"`
	// Category is the coarse entry grouping (Battle, Beast Upgrade, ...)
	Category string `gorm:"column:category;not null;type:text;index"`
	// SubCategory refines the category (Summit Change, Bought, Sold, ...)
	SubCategory string `gorm:"column:sub_category;not null;type:text"`
	// Data is the free-form entry payload
	Data datatypes.JSON `gorm:"column:data;type:jsonb"`
	// Player is the acting address, when one applies
	Player string `gorm:"column:player;type:text;index"`
	// TokenID is the beast involved, zero when none applies
	TokenID uint64 `gorm:"column:token_id;index;uniqueIndex:idx_summit_log_natural,priority:4"`
	// CreatedAt is the block timestamp of the underlying event
	CreatedAt time.Time `gorm:"column:created_at;not null;type:timestamptz"`
	// IndexedAt is the wall-clock time this entry was written
	IndexedAt time.Time `gorm:"column:indexed_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the SummitLog model
func (SummitLog) TableName() string {
	return "summit_log"
}
