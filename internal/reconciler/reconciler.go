package reconciler

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/summit-gg/beast-indexer/internal/domain"
	"github.com/summit-gg/beast-indexer/internal/store/schema"
)

// Sub indices assigned to derived log entries. One raw event can carry
// several beast snapshots, so each snapshot slot owns a block of slotStride
// sub indices: tracked stat fields take their 1-based position within the
// block and the summit-change entry takes the last position. These values
// are a stable contract: replaying a block must reproduce identical
// event_index values or the append-only dedup on summit_log breaks.
const (
	slotStride = 10
	// maxSlot is the last slot whose block still fits under
	// domain.MaxLogSubIndex. Later slots clamp to it; the token id in the
	// summit_log natural key keeps their rows distinct.
	maxSlot              = 9
	subIndexSummitChange = slotStride - 1
)

// slotBase returns the first sub index of the given snapshot slot.
func slotBase(slot int) uint32 {
	if slot < 0 {
		slot = 0
	}
	if slot > maxSlot {
		slot = maxSlot
	}
	return uint32(slot) * slotStride
}

// trackedField binds a stat field to its derived-entry sub index and log
// category. Order is load-bearing; append only.
type trackedField struct {
	field    domain.StatField
	category string
}

var trackedFields = []trackedField{
	{domain.StatFieldSpirit, schema.LogCategoryBeastUpgrade},
	{domain.StatFieldLuck, schema.LogCategoryBeastUpgrade},
	{domain.StatFieldSpecials, schema.LogCategoryBeastUpgrade},
	{domain.StatFieldWisdom, schema.LogCategoryBeastUpgrade},
	{domain.StatFieldDiplomacy, schema.LogCategoryBeastUpgrade},
	{domain.StatFieldBonusHealth, schema.LogCategoryBeastUpgrade},
	{domain.StatFieldExtraLives, schema.LogCategoryBattle},
	{domain.StatFieldMaxAttackStreak, schema.LogCategoryBeastUpgrade},
}

// statChangePayload is the JSON body of a derived stat-increase entry.
type statChangePayload struct {
	Field      domain.StatField `json:"field"`
	OldValue   uint64           `json:"old_value"`
	NewValue   uint64           `json:"new_value"`
	Difference uint64           `json:"difference"`
}

// summitChangePayload is the JSON body of a summit-change entry.
type summitChangePayload struct {
	TokenID uint64 `json:"token_id"`
	Health  uint64 `json:"health"`
}

// Reconciler diffs incoming stat snapshots against the previous state of the
// same beast and synthesizes the log entries the chain never emits directly:
// per-field upgrade entries and summit occupancy changes.
type Reconciler struct{}

func New() *Reconciler {
	return &Reconciler{}
}

// Entry is one derived log entry before it is bound to a block position.
type Entry struct {
	Sub      uint32
	Category string
	Data     datatypes.JSON
}

// Reconcile compares prev against next and returns one entry per tracked
// field that increased. slot is the snapshot's position within its raw
// event, so snapshots for different beasts in one event land on disjoint
// sub-index blocks. A nil prev means the beast was never seen; every
// field then diffs against zero, so a first snapshot with nonzero upgrades
// still produces entries. Decreases and unchanged fields produce nothing:
// stats only move up on-chain, so a decrease means events arrived against a
// newer snapshot and must not be double-counted.
func (r *Reconciler) Reconcile(slot int, prev *domain.BeastStats, next domain.BeastStats) []Entry {
	var entries []Entry

	for i, tf := range trackedFields {
		oldVal := uint64(0)
		if prev != nil {
			oldVal = fieldValue(*prev, tf.field)
		}
		newVal := fieldValue(next, tf.field)
		if newVal <= oldVal {
			continue
		}

		payload, _ := json.Marshal(statChangePayload{
			Field:      tf.field,
			OldValue:   oldVal,
			NewValue:   newVal,
			Difference: newVal - oldVal,
		})
		entries = append(entries, Entry{
			Sub:      slotBase(slot) + uint32(i+1),
			Category: tf.category,
			Data:     payload,
		})
	}

	return entries
}

// SummitChange returns a summit-change entry when next shows the beast
// arriving on the summit: health transitions from zero (or from no snapshot
// at all) to a positive value. Health movements while already on the summit
// are battle effects, not occupancy changes.
func (r *Reconciler) SummitChange(slot int, prev *domain.BeastStats, next domain.BeastStats) *Entry {
	if next.CurrentHealth == 0 {
		return nil
	}
	if prev != nil && prev.CurrentHealth > 0 {
		return nil
	}

	payload, _ := json.Marshal(summitChangePayload{
		TokenID: next.TokenID,
		Health:  uint64(next.CurrentHealth),
	})
	return &Entry{
		Sub:      slotBase(slot) + subIndexSummitChange,
		Category: schema.LogCategorySummit,
		Data:     payload,
	}
}

// BindEntries turns derived entries into summit_log rows anchored at the
// base event that produced the snapshot.
func BindEntries(entries []Entry, header domain.BlockHeader, txHash string, eventIndex uint32, tokenID uint64, owner string) []schema.SummitLog {
	rows := make([]schema.SummitLog, 0, len(entries))
	for _, e := range entries {
		subCategory := ""
		if e.Category == schema.LogCategorySummit {
			subCategory = schema.LogSubCategorySummitChange
		}
		rows = append(rows, schema.SummitLog{
			BlockNumber: header.Number,
			TxHash:      txHash,
			EventIndex:  domain.DerivedLogIndex(eventIndex, e.Sub).Value(),
			Category:    e.Category,
			SubCategory: subCategory,
			Data:        e.Data,
			Player:      owner,
			TokenID:     tokenID,
			CreatedAt:   header.Timestamp,
		})
	}
	return rows
}

// ApplySingleStat overlays a single-field update onto a snapshot, returning
// the resulting full snapshot. Unknown fields leave the snapshot unchanged.
func ApplySingleStat(base domain.BeastStats, field domain.StatField, value uint64) domain.BeastStats {
	switch field {
	case domain.StatFieldSpirit:
		base.Spirit = uint16(value)
	case domain.StatFieldLuck:
		base.Luck = uint16(value)
	case domain.StatFieldSpecials:
		base.SpecialsUnlocked = value != 0
	case domain.StatFieldWisdom:
		base.WisdomUnlocked = value != 0
	case domain.StatFieldDiplomacy:
		base.DiplomacyUnlocked = value != 0
	case domain.StatFieldBonusHealth:
		base.BonusHealth = uint16(value)
	case domain.StatFieldExtraLives:
		base.ExtraLives = uint8(value)
	case domain.StatFieldMaxAttackStreak:
		base.MaxAttackStreak = uint8(value)
	case domain.StatFieldCurrentHealth:
		base.CurrentHealth = uint16(value)
	case domain.StatFieldRewardsEarned:
		base.RewardsEarned = uint32(value)
	case domain.StatFieldRewardsClaimed:
		base.RewardsClaimed = uint32(value)
	case domain.StatFieldCapturedSummit:
		base.CapturedSummit = value != 0
	case domain.StatFieldUsedRevivalPotion:
		base.UsedRevivalPotion = value != 0
	case domain.StatFieldUsedAttackPotion:
		base.UsedAttackPotion = value != 0
	}
	return base
}

// fieldValue reads one tracked field as an integer; booleans coerce to 0/1
// so flag unlocks diff like any counter.
func fieldValue(stats domain.BeastStats, field domain.StatField) uint64 {
	switch field {
	case domain.StatFieldSpirit:
		return uint64(stats.Spirit)
	case domain.StatFieldLuck:
		return uint64(stats.Luck)
	case domain.StatFieldSpecials:
		return boolValue(stats.SpecialsUnlocked)
	case domain.StatFieldWisdom:
		return boolValue(stats.WisdomUnlocked)
	case domain.StatFieldDiplomacy:
		return boolValue(stats.DiplomacyUnlocked)
	case domain.StatFieldBonusHealth:
		return uint64(stats.BonusHealth)
	case domain.StatFieldExtraLives:
		return uint64(stats.ExtraLives)
	case domain.StatFieldMaxAttackStreak:
		return uint64(stats.MaxAttackStreak)
	default:
		return 0
	}
}

func boolValue(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
