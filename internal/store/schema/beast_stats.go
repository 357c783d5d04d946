package schema

import (
	"time"
)

// BeastStats represents the beast_stats table - the latest-state projection of
// each beast's live stats, keyed by token id. Rows are created on the first
// observed stat event and updated in place forever after; never deleted.
type BeastStats struct {
	// TokenID is the beast token id (primary key)
	TokenID uint64 `gorm:"column:token_id;primaryKey"`
	// CurrentHealth is the beast's live health; zero while off the summit
	CurrentHealth int32 `gorm:"column:current_health;not null;default:0"`
	// BonusHealth is extra health granted by fed corpses
	BonusHealth int32 `gorm:"column:bonus_health;not null;default:0"`
	// Spirit is the upgradeable spirit stat
	Spirit int32 `gorm:"column:spirit;not null;default:0"`
	// Luck is the upgradeable luck stat
	Luck int32 `gorm:"column:luck;not null;default:0"`
	// ExtraLives is the number of revives remaining
	ExtraLives int32 `gorm:"column:extra_lives;not null;default:0"`
	// MaxAttackStreak is the best attack streak achieved
	MaxAttackStreak int32 `gorm:"column:max_attack_streak;not null;default:0"`
	// RewardsEarned is the whole-token total of rewards accrued
	RewardsEarned int64 `gorm:"column:rewards_earned;not null;default:0"`
	// RewardsClaimed is the whole-token total of rewards withdrawn
	RewardsClaimed int64 `gorm:"column:rewards_claimed;not null;default:0"`
	// SpecialsUnlocked indicates the specials upgrade was purchased
	SpecialsUnlocked bool `gorm:"column:specials_unlocked;not null;default:false"`
	// WisdomUnlocked indicates the wisdom upgrade was purchased
	WisdomUnlocked bool `gorm:"column:wisdom_unlocked;not null;default:false"`
	// DiplomacyUnlocked indicates the diplomacy upgrade was purchased
	DiplomacyUnlocked bool `gorm:"column:diplomacy_unlocked;not null;default:false"`
	// CapturedSummit indicates the beast has held the summit at least once
	CapturedSummit bool `gorm:"column:captured_summit;not null;default:false"`
	// UsedRevivalPotion indicates a revival potion was ever applied
	UsedRevivalPotion bool `gorm:"column:used_revival_potion;not null;default:false"`
	// UsedAttackPotion indicates an attack potion was ever applied
	UsedAttackPotion bool `gorm:"column:used_attack_potion;not null;default:false"`
	// BlockNumber is the block that produced the current snapshot
	BlockNumber uint64 `gorm:"column:block_number;not null"`
	// UpdatedAt is the timestamp when this snapshot was last written
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the BeastStats model
func (BeastStats) TableName() string {
	return "beast_stats"
}
