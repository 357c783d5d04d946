package schema

import (
	"time"
)

// PoisonEvent represents the poison_events table - append-only poison
// applications against the summit holder.
type PoisonEvent struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// BlockNumber is the block containing the event
	BlockNumber uint64 `gorm:"column:block_number;not null;uniqueIndex:idx_poison_events_natural,priority:1"`
	// TxHash is the transaction containing the event
	TxHash string `gorm:"column:tx_hash;not null;type:text;uniqueIndex:idx_poison_events_natural,priority:2"`
	// EventIndex is the raw event's index within the block
	EventIndex int64 `gorm:"column:event_index;not null;uniqueIndex:idx_poison_events_natural,priority:3"`
	// TokenID is the poisoned beast
	TokenID uint64 `gorm:"column:token_id;not null;index"`
	// Player is the poisoning address
	Player string `gorm:"column:player;not null;type:text;index"`
	// Count is the number of potions applied
	Count int32 `gorm:"column:count;not null"`
	// CreatedAt is the block timestamp
	CreatedAt time.Time `gorm:"column:created_at;not null;type:timestamptz"`
}

// TableName specifies the table name for the PoisonEvent model
func (PoisonEvent) TableName() string {
	return "poison_events"
}

// CorpseEvent represents the corpse_events table - append-only corpse
// feedings.
type CorpseEvent struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// BlockNumber is the block containing the event
	BlockNumber uint64 `gorm:"column:block_number;not null;uniqueIndex:idx_corpse_events_natural,priority:1"`
	// TxHash is the transaction containing the event
	TxHash string `gorm:"column:tx_hash;not null;type:text;uniqueIndex:idx_corpse_events_natural,priority:2"`
	// EventIndex is the raw event's index within the block
	EventIndex int64 `gorm:"column:event_index;not null;uniqueIndex:idx_corpse_events_natural,priority:3"`
	// TokenID is the fed beast
	TokenID uint64 `gorm:"column:token_id;not null;index"`
	// Player is the feeding address
	Player string `gorm:"column:player;not null;type:text;index"`
	// Health is the bonus health granted
	Health int32 `gorm:"column:health;not null"`
	// CreatedAt is the block timestamp
	CreatedAt time.Time `gorm:"column:created_at;not null;type:timestamptz"`
}

// TableName specifies the table name for the CorpseEvent model
func (CorpseEvent) TableName() string {
	return "corpse_events"
}

// SkullClaimed represents the skulls_claimed table - append-only skull
// claims per entity.
type SkullClaimed struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// BlockNumber is the block containing the event
	BlockNumber uint64 `gorm:"column:block_number;not null;uniqueIndex:idx_skulls_claimed_natural,priority:1"`
	// TxHash is the transaction containing the event
	TxHash string `gorm:"column:tx_hash;not null;type:text;uniqueIndex:idx_skulls_claimed_natural,priority:2"`
	// EventIndex is the raw event's index within the block
	EventIndex int64 `gorm:"column:event_index;not null;uniqueIndex:idx_skulls_claimed_natural,priority:3"`
	// Player is the claiming address
	Player string `gorm:"column:player;not null;type:text;index"`
	// EntityHash is the entity the skulls were claimed for
	EntityHash string `gorm:"column:entity_hash;not null;type:text;index"`
	// Skulls is the number of skulls claimed
	Skulls int64 `gorm:"column:skulls;not null"`
	// CreatedAt is the block timestamp
	CreatedAt time.Time `gorm:"column:created_at;not null;type:timestamptz"`
}

// TableName specifies the table name for the SkullClaimed model
func (SkullClaimed) TableName() string {
	return "skulls_claimed"
}
