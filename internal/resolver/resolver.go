package resolver

import (
	"context"
	"fmt"

	"github.com/summit-gg/beast-indexer/internal/domain"
	"github.com/summit-gg/beast-indexer/internal/store"
	"github.com/summit-gg/beast-indexer/internal/store/schema"
)

// BeastContext is everything the event handlers need to know about one beast
// before applying a block: the previous stat snapshot (nil when the beast has
// never produced a stat event), its immutable metadata (nil when the mint has
// not been indexed yet) and the latest known owner.
//
// The driver mutates PrevStats in place as it walks the block so that later
// events in the same block compare against intermediate state, not against
// the start-of-block database snapshot.
type BeastContext struct {
	TokenID   uint64
	PrevStats *domain.BeastStats
	Metadata  *schema.Beast
	Owner     string
}

// ContextResolver batch-loads beast contexts for a block. Per-event database
// lookups are the thing this exists to avoid: one block touches each context
// table at most twice regardless of how many events it carries.
type ContextResolver struct {
	store store.Store
}

func NewContextResolver(s store.Store) *ContextResolver {
	return &ContextResolver{store: s}
}

// ResolveBlock loads contexts for every token id referenced by a block in
// two passes: the primary join against the stats projection, then a fallback
// metadata lookup for tokens with no stat snapshot yet (freshly minted or
// transferred-in beasts). Tokens unknown to both passes still get a context
// with all lookups empty, so handlers never have to null-check the map.
func (r *ContextResolver) ResolveBlock(ctx context.Context, tokenIDs []uint64) (map[uint64]*BeastContext, error) {
	contexts := make(map[uint64]*BeastContext, len(tokenIDs))
	if len(tokenIDs) == 0 {
		return contexts, nil
	}

	primary, err := r.store.GetBeastContexts(ctx, tokenIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve primary contexts: %w", err)
	}

	for _, row := range primary {
		stats := statsFromRow(row.Stats)
		contexts[row.Stats.TokenID] = &BeastContext{
			TokenID:   row.Stats.TokenID,
			PrevStats: &stats,
			Metadata:  row.Beast,
			Owner:     row.Owner,
		}
	}

	var missing []uint64
	for _, id := range tokenIDs {
		if _, ok := contexts[id]; !ok {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		fallback, err := r.store.GetBeastsWithOwners(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve fallback contexts: %w", err)
		}
		for _, row := range fallback {
			contexts[row.TokenID] = &BeastContext{
				TokenID:  row.TokenID,
				Metadata: row.Beast,
				Owner:    row.Owner,
			}
		}
	}

	for _, id := range tokenIDs {
		if _, ok := contexts[id]; !ok {
			contexts[id] = &BeastContext{TokenID: id}
		}
	}

	return contexts, nil
}

// statsFromRow converts a persisted snapshot back into the domain form the
// reconciler compares against.
func statsFromRow(row schema.BeastStats) domain.BeastStats {
	return domain.BeastStats{
		TokenID:           row.TokenID,
		CurrentHealth:     uint16(row.CurrentHealth),
		BonusHealth:       uint16(row.BonusHealth),
		Spirit:            uint16(row.Spirit),
		Luck:              uint16(row.Luck),
		ExtraLives:        uint8(row.ExtraLives),
		MaxAttackStreak:   uint8(row.MaxAttackStreak),
		RewardsEarned:     uint32(row.RewardsEarned),
		RewardsClaimed:    uint32(row.RewardsClaimed),
		SpecialsUnlocked:  row.SpecialsUnlocked,
		WisdomUnlocked:    row.WisdomUnlocked,
		DiplomacyUnlocked: row.DiplomacyUnlocked,
		CapturedSummit:    row.CapturedSummit,
		UsedRevivalPotion: row.UsedRevivalPotion,
		UsedAttackPotion:  row.UsedAttackPotion,
	}
}

// RowFromStats converts a domain snapshot into its persisted form.
func RowFromStats(stats domain.BeastStats, blockNumber uint64) schema.BeastStats {
	return schema.BeastStats{
		TokenID:           stats.TokenID,
		CurrentHealth:     int32(stats.CurrentHealth),
		BonusHealth:       int32(stats.BonusHealth),
		Spirit:            int32(stats.Spirit),
		Luck:              int32(stats.Luck),
		ExtraLives:        int32(stats.ExtraLives),
		MaxAttackStreak:   int32(stats.MaxAttackStreak),
		RewardsEarned:     int64(stats.RewardsEarned),
		RewardsClaimed:    int64(stats.RewardsClaimed),
		SpecialsUnlocked:  stats.SpecialsUnlocked,
		WisdomUnlocked:    stats.WisdomUnlocked,
		DiplomacyUnlocked: stats.DiplomacyUnlocked,
		CapturedSummit:    stats.CapturedSummit,
		UsedRevivalPotion: stats.UsedRevivalPotion,
		UsedAttackPotion:  stats.UsedAttackPotion,
		BlockNumber:       blockNumber,
	}
}
