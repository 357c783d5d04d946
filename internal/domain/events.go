package domain

import (
	"time"
)

// ZeroAddress is the burn/mint address on the game chain.
var ZeroAddress = Felt{}

// BlockHeader carries the per-block fields the pipeline needs.
type BlockHeader struct {
	Number    uint64    `json:"number"`
	Timestamp time.Time `json:"timestamp"`
}

// Block is the unit of input delivered by the stream transport: a header
// plus the block's raw events in emission order. Empty-event blocks are
// valid and common.
type Block struct {
	Header BlockHeader `json:"header"`
	Events []RawEvent  `json:"events"`
}

// RawEvent is one undecoded on-chain event. Keys[0] is the event selector;
// the remaining keys and data slots are selector-specific.
type RawEvent struct {
	ContractAddress Felt   `json:"contract_address"`
	Keys            []Felt `json:"keys"`
	Data            []Felt `json:"data"`
	TxHash          string `json:"transaction_hash"`
	EventIndex      uint32 `json:"event_index"`
	BlockNumber     uint64 `json:"block_number"`
}

// Selector returns the event selector, or the zero felt if the event has
// no keys.
func (e RawEvent) Selector() Felt {
	if len(e.Keys) == 0 {
		return Felt{}
	}
	return e.Keys[0]
}

// StatField names one tracked stat on a beast. Used by single-stat update
// events and by the derived-event detector.
type StatField string

const (
	StatFieldSpirit            StatField = "spirit"
	StatFieldLuck              StatField = "luck"
	StatFieldSpecials          StatField = "specials_unlocked"
	StatFieldWisdom            StatField = "wisdom_unlocked"
	StatFieldDiplomacy         StatField = "diplomacy_unlocked"
	StatFieldBonusHealth       StatField = "bonus_health"
	StatFieldExtraLives        StatField = "extra_lives"
	StatFieldMaxAttackStreak   StatField = "max_attack_streak"
	StatFieldCurrentHealth     StatField = "current_health"
	StatFieldRewardsEarned     StatField = "rewards_earned"
	StatFieldRewardsClaimed    StatField = "rewards_claimed"
	StatFieldCapturedSummit    StatField = "captured_summit"
	StatFieldUsedRevivalPotion StatField = "used_revival_potion"
	StatFieldUsedAttackPotion  StatField = "used_attack_potion"
)

// BeastStats is the current-state snapshot of one beast as carried inside a
// packed stat word. Field widths follow the packed layout in the decoder.
type BeastStats struct {
	TokenID           uint64
	CurrentHealth     uint16
	BonusHealth       uint16
	Spirit            uint16
	Luck              uint16
	ExtraLives        uint8
	MaxAttackStreak   uint8
	RewardsEarned     uint32
	RewardsClaimed    uint32
	SpecialsUnlocked  bool
	WisdomUnlocked    bool
	DiplomacyUnlocked bool
	CapturedSummit    bool
	UsedRevivalPotion bool
	UsedAttackPotion  bool
}

// DecodedEvent is the closed set of event variants the pipeline understands.
// The unexported marker keeps the set sealed so dispatch sites can switch
// exhaustively; adding a kind is a compile-time-visible change.
type DecodedEvent interface {
	isDecodedEvent()
}

// BeastTransfer is an ownership transfer of a beast token.
type BeastTransfer struct {
	From    Felt
	To      Felt
	TokenID uint64
}

// PackedStatBatch carries full stat snapshots for one or more beasts,
// unpacked from 252-bit words.
type PackedStatBatch struct {
	Stats []BeastStats
}

// SingleStatUpdate sets one stat field of one beast to a new value.
type SingleStatUpdate struct {
	TokenID uint64
	Field   StatField
	Value   uint64
}

// Battle is an attack by a beast against a summit defender.
type Battle struct {
	AttackerTokenID uint64
	DefenderHash    Felt
	Damage          uint32
	CounterDamage   uint32
	AttackStreak    uint8
}

// RewardEarned credits summit rewards to a beast.
type RewardEarned struct {
	TokenID uint64
	Amount  TokenAmount
}

// RewardClaimed is a player withdrawing a beast's accrued rewards.
type RewardClaimed struct {
	TokenID uint64
	Player  Felt
	Amount  TokenAmount
}

// Poison is a poison-potion application against the current summit holder.
type Poison struct {
	TokenID uint64
	Player  Felt
	Count   uint32
}

// Corpse is a corpse fed to a beast for bonus health.
type Corpse struct {
	TokenID uint64
	Player  Felt
	Health  uint32
}

// SkullClaim is a player claiming skulls for a dead entity.
type SkullClaim struct {
	Player     Felt
	EntityHash Felt
	Skulls     uint64
}

// QuestRewardsClaimed is a player claiming quest rewards.
type QuestRewardsClaimed struct {
	Player  Felt
	QuestID uint64
	Amount  TokenAmount
}

// EntityStats carries kill/death counters for a hash-keyed entity. Both
// counters are monotonically non-decreasing on-chain.
type EntityStats struct {
	EntityHash         Felt
	AdventurersKilled  uint64
	LastDeathTimestamp uint64
}

// CollectableEntity links a hash-keyed entity to its minted token id. The
// link is established once and never changes.
type CollectableEntity struct {
	EntityHash Felt
	TokenID    uint64
}

// TokenTransfer is a fungible transfer leg of the tracked reward token.
// Legs feed the market resolver; they are never persisted directly.
type TokenTransfer struct {
	Token  Felt
	From   Felt
	To     Felt
	Amount TokenAmount
}

// ConsumableTransfer moves fungible consumable tokens between owners.
type ConsumableTransfer struct {
	TokenType uint64
	From      Felt
	To        Felt
	Amount    TokenAmount
}

func (BeastTransfer) isDecodedEvent()       {}
func (PackedStatBatch) isDecodedEvent()     {}
func (SingleStatUpdate) isDecodedEvent()    {}
func (Battle) isDecodedEvent()              {}
func (RewardEarned) isDecodedEvent()        {}
func (RewardClaimed) isDecodedEvent()       {}
func (Poison) isDecodedEvent()              {}
func (Corpse) isDecodedEvent()              {}
func (SkullClaim) isDecodedEvent()          {}
func (QuestRewardsClaimed) isDecodedEvent() {}
func (EntityStats) isDecodedEvent()         {}
func (CollectableEntity) isDecodedEvent()   {}
func (TokenTransfer) isDecodedEvent()       {}
func (ConsumableTransfer) isDecodedEvent()  {}
