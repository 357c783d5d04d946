package schema

import (
	"time"
)

// Consumable represents the consumables table - per-owner balances of
// fungible consumable tokens. Writes apply signed deltas additively with a
// floor at zero; balances never go negative.
type Consumable struct {
	// Owner is the owning address (composite primary key with TokenType)
	Owner string `gorm:"column:owner;primaryKey;type:text"`
	// TokenType identifies the consumable kind
	TokenType uint64 `gorm:"column:token_type;primaryKey"`
	// Balance is the current whole-token balance
	Balance int64 `gorm:"column:balance;not null;default:0"`
	// UpdatedAt is the timestamp when this balance was last merged
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Consumable model
func (Consumable) TableName() string {
	return "consumables"
}

// ConsumableDelta is a signed balance change produced while processing a
// block. Deltas are merged per (owner, token_type) before writing.
type ConsumableDelta struct {
	Owner     string
	TokenType uint64
	Delta     int64
}
