package schema

import (
	"time"
)

// RewardEarned represents the rewards_earned table - append-only credit
// events, keyed naturally by (block_number, tx_hash, event_index).
type RewardEarned struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// BlockNumber is the block containing the event
	BlockNumber uint64 `gorm:"column:block_number;not null;uniqueIndex:idx_rewards_earned_natural,priority:1"`
	// TxHash is the transaction containing the event
	TxHash string `gorm:"column:tx_hash;not null;type:text;uniqueIndex:idx_rewards_earned_natural,priority:2"`
	// EventIndex is the raw event's index within the block
	EventIndex int64 `gorm:"column:event_index;not null;uniqueIndex:idx_rewards_earned_natural,priority:3"`
	// TokenID is the beast credited
	TokenID uint64 `gorm:"column:token_id;not null;index"`
	// Amount is the credited amount in whole tokens
	Amount int64 `gorm:"column:amount;not null"`
	// CreatedAt is the block timestamp
	CreatedAt time.Time `gorm:"column:created_at;not null;type:timestamptz"`
}

// TableName specifies the table name for the RewardEarned model
func (RewardEarned) TableName() string {
	return "rewards_earned"
}

// RewardClaimed represents the rewards_claimed table - append-only
// withdrawal events.
type RewardClaimed struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// BlockNumber is the block containing the event
	BlockNumber uint64 `gorm:"column:block_number;not null;uniqueIndex:idx_rewards_claimed_natural,priority:1"`
	// TxHash is the transaction containing the event
	TxHash string `gorm:"column:tx_hash;not null;type:text;uniqueIndex:idx_rewards_claimed_natural,priority:2"`
	// EventIndex is the raw event's index within the block
	EventIndex int64 `gorm:"column:event_index;not null;uniqueIndex:idx_rewards_claimed_natural,priority:3"`
	// TokenID is the beast whose rewards were withdrawn
	TokenID uint64 `gorm:"column:token_id;not null;index"`
	// Player is the claiming address
	Player string `gorm:"column:player;not null;type:text;index"`
	// Amount is the withdrawn amount in whole tokens
	Amount int64 `gorm:"column:amount;not null"`
	// CreatedAt is the block timestamp
	CreatedAt time.Time `gorm:"column:created_at;not null;type:timestamptz"`
}

// TableName specifies the table name for the RewardClaimed model
func (RewardClaimed) TableName() string {
	return "rewards_claimed"
}

// QuestRewardClaimed represents the quest_rewards_claimed table.
type QuestRewardClaimed struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// BlockNumber is the block containing the event
	BlockNumber uint64 `gorm:"column:block_number;not null;uniqueIndex:idx_quest_rewards_natural,priority:1"`
	// TxHash is the transaction containing the event
	TxHash string `gorm:"column:tx_hash;not null;type:text;uniqueIndex:idx_quest_rewards_natural,priority:2"`
	// EventIndex is the raw event's index within the block
	EventIndex int64 `gorm:"column:event_index;not null;uniqueIndex:idx_quest_rewards_natural,priority:3"`
	// Player is the claiming address
	Player string `gorm:"column:player;not null;type:text;index"`
	// QuestID identifies the completed quest
	QuestID uint64 `gorm:"column:quest_id;not null"`
	// Amount is the claimed amount in whole tokens
	Amount int64 `gorm:"column:amount;not null"`
	// CreatedAt is the block timestamp
	CreatedAt time.Time `gorm:"column:created_at;not null;type:timestamptz"`
}

// TableName specifies the table name for the QuestRewardClaimed model
func (QuestRewardClaimed) TableName() string {
	return "quest_rewards_claimed"
}
