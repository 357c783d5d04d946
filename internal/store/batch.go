package store

import (
	"github.com/summit-gg/beast-indexer/internal/domain"
	"github.com/summit-gg/beast-indexer/internal/store/schema"
)

// BlockBatch accumulates every row produced while transforming one block,
// grouped by destination table. It is built synchronously in event order
// and handed to the store in one CommitBlockBatch call.
//
// Latest-state tables are pre-deduplicated here keeping the last occurrence
// per key, so within-block supersession is resolved before the upsert runs.
type BlockBatch struct {
	Header domain.BlockHeader

	stats      []schema.BeastStats
	statsIndex map[uint64]int

	owners      []schema.BeastOwner
	ownersIndex map[uint64]int

	beasts      []schema.Beast
	beastsIndex map[uint64]struct{}

	entityData  []schema.BeastData
	entityIndex map[string]int

	consumables      []schema.ConsumableDelta
	consumablesIndex map[consumableKey]int

	Logs           []schema.SummitLog
	Battles        []schema.Battle
	RewardsEarned  []schema.RewardEarned
	RewardsClaimed []schema.RewardClaimed
	Poisons        []schema.PoisonEvent
	Corpses        []schema.CorpseEvent
	Skulls         []schema.SkullClaimed
	QuestRewards   []schema.QuestRewardClaimed
}

type consumableKey struct {
	owner     string
	tokenType uint64
}

// NewBlockBatch creates an empty batch for one block.
func NewBlockBatch(header domain.BlockHeader) *BlockBatch {
	return &BlockBatch{
		Header:           header,
		statsIndex:       make(map[uint64]int),
		ownersIndex:      make(map[uint64]int),
		beastsIndex:      make(map[uint64]struct{}),
		entityIndex:      make(map[string]int),
		consumablesIndex: make(map[consumableKey]int),
	}
}

// AddStats records a stat snapshot. A later snapshot for the same token
// replaces the earlier one (last write within the block wins).
func (b *BlockBatch) AddStats(row schema.BeastStats) {
	if i, ok := b.statsIndex[row.TokenID]; ok {
		b.stats[i] = row
		return
	}
	b.statsIndex[row.TokenID] = len(b.stats)
	b.stats = append(b.stats, row)
}

// AddOwner records an ownership row, keeping the last occurrence per token.
func (b *BlockBatch) AddOwner(row schema.BeastOwner) {
	if i, ok := b.ownersIndex[row.TokenID]; ok {
		b.owners[i] = row
		return
	}
	b.ownersIndex[row.TokenID] = len(b.owners)
	b.owners = append(b.owners, row)
}

// AddBeast records metadata for a newly seen token. Metadata is immutable,
// so the first occurrence wins and repeats are dropped.
func (b *BlockBatch) AddBeast(row schema.Beast) {
	if _, ok := b.beastsIndex[row.TokenID]; ok {
		return
	}
	b.beastsIndex[row.TokenID] = struct{}{}
	b.beasts = append(b.beasts, row)
}

// AddEntityData merges an entity counter row into the batch: counters take
// the maximum seen, the token link is kept once set.
func (b *BlockBatch) AddEntityData(row schema.BeastData) {
	i, ok := b.entityIndex[row.EntityHash]
	if !ok {
		b.entityIndex[row.EntityHash] = len(b.entityData)
		b.entityData = append(b.entityData, row)
		return
	}

	existing := &b.entityData[i]
	existing.AdventurersKilled = max(existing.AdventurersKilled, row.AdventurersKilled)
	existing.LastDeathTimestamp = max(existing.LastDeathTimestamp, row.LastDeathTimestamp)
	if existing.TokenID == nil {
		existing.TokenID = row.TokenID
	}
}

// AddConsumableDelta accumulates a signed balance change, summing deltas
// for the same (owner, token type) within the block.
func (b *BlockBatch) AddConsumableDelta(delta schema.ConsumableDelta) {
	key := consumableKey{owner: delta.Owner, tokenType: delta.TokenType}
	if i, ok := b.consumablesIndex[key]; ok {
		b.consumables[i].Delta += delta.Delta
		return
	}
	b.consumablesIndex[key] = len(b.consumables)
	b.consumables = append(b.consumables, delta)
}

// AddLog appends an append-only log entry.
func (b *BlockBatch) AddLog(row schema.SummitLog) {
	b.Logs = append(b.Logs, row)
}

// Stats returns the deduplicated stat snapshots in first-seen order.
func (b *BlockBatch) Stats() []schema.BeastStats {
	return b.stats
}

// Owners returns the deduplicated ownership rows in first-seen order.
func (b *BlockBatch) Owners() []schema.BeastOwner {
	return b.owners
}

// Beasts returns the metadata rows in first-seen order.
func (b *BlockBatch) Beasts() []schema.Beast {
	return b.beasts
}

// EntityData returns the merged entity counter rows.
func (b *BlockBatch) EntityData() []schema.BeastData {
	return b.entityData
}

// ConsumableDeltas returns the merged per-owner deltas, dropping entries
// that net to zero.
func (b *BlockBatch) ConsumableDeltas() []schema.ConsumableDelta {
	deltas := make([]schema.ConsumableDelta, 0, len(b.consumables))
	for _, d := range b.consumables {
		if d.Delta != 0 {
			deltas = append(deltas, d)
		}
	}
	return deltas
}

// Empty reports whether the batch produced no rows at all, letting the
// driver skip the write step for quiet blocks.
func (b *BlockBatch) Empty() bool {
	return len(b.stats) == 0 && len(b.owners) == 0 && len(b.beasts) == 0 &&
		len(b.entityData) == 0 && len(b.consumables) == 0 && len(b.Logs) == 0 &&
		len(b.Battles) == 0 && len(b.RewardsEarned) == 0 && len(b.RewardsClaimed) == 0 &&
		len(b.Poisons) == 0 && len(b.Corpses) == 0 && len(b.Skulls) == 0 &&
		len(b.QuestRewards) == 0
}
