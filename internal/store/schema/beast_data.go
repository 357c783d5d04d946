package schema

import (
	"time"
)

// BeastData represents the beast_data table - hash-keyed entity counters.
// adventurers_killed and last_death_timestamp only ever move forward
// (GREATEST merge on write); token_id is filled once and never cleared
// (COALESCE merge on write).
type BeastData struct {
	// EntityHash identifies the entity (primary key)
	EntityHash string `gorm:"column:entity_hash;primaryKey;type:text"`
	// TokenID is the minted token linked to this entity, nil until linked
	TokenID *uint64 `gorm:"column:token_id;uniqueIndex"`
	// AdventurersKilled is the lifetime kill counter
	AdventurersKilled int64 `gorm:"column:adventurers_killed;not null;default:0"`
	// LastDeathTimestamp is the unix time of the entity's latest death
	LastDeathTimestamp int64 `gorm:"column:last_death_timestamp;not null;default:0"`
	// UpdatedAt is the timestamp when this row was last merged
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the BeastData model
func (BeastData) TableName() string {
	return "beast_data"
}
