package schema

import (
	"time"

	"gorm.io/datatypes"
)

// Battle represents the battles table - one append-only row per battle
// event, keyed naturally by (block_number, tx_hash, event_index).
type Battle struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// BlockNumber is the block containing the battle
	BlockNumber uint64 `gorm:"column:block_number;not null;uniqueIndex:idx_battles_natural,priority:1"`
	// TxHash is the transaction containing the battle
	TxHash string `gorm:"column:tx_hash;not null;type:text;uniqueIndex:idx_battles_natural,priority:2"`
	// EventIndex is the raw event's index within the block
	EventIndex int64 `gorm:"column:event_index;not null;uniqueIndex:idx_battles_natural,priority:3"`
	// AttackerTokenID is the attacking beast
	AttackerTokenID uint64 `gorm:"column:attacker_token_id;not null;index"`
	// DefenderHash is the defending entity's hash
	DefenderHash string `gorm:"column:defender_hash;not null;type:text"`
	// Damage is the damage dealt by the attacker
	Damage int32 `gorm:"column:damage;not null"`
	// CounterDamage is the damage taken in return
	CounterDamage int32 `gorm:"column:counter_damage;not null"`
	// AttackStreak is the attacker's streak after this battle
	AttackStreak int32 `gorm:"column:attack_streak;not null"`
	// Raw is the decoded payload retained for diagnosis
	Raw datatypes.JSON `gorm:"column:raw;type:jsonb"`
	// CreatedAt is the block timestamp
	CreatedAt time.Time `gorm:"column:created_at;not null;type:timestamptz"`
}

// TableName specifies the table name for the Battle model
func (Battle) TableName() string {
	return "battles"
}
