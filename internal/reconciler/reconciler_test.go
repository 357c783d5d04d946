package reconciler

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/summit-gg/beast-indexer/internal/domain"
	"github.com/summit-gg/beast-indexer/internal/store/schema"
)

func decodePayload(t *testing.T, e Entry) statChangePayload {
	t.Helper()
	var p statChangePayload
	require.NoError(t, json.Unmarshal(e.Data, &p))
	return p
}

func TestReconcileEmitsOnlyIncreases(t *testing.T) {
	r := New()

	prev := &domain.BeastStats{TokenID: 1, Spirit: 10, Luck: 5, BonusHealth: 100}
	next := domain.BeastStats{TokenID: 1, Spirit: 12, Luck: 5, BonusHealth: 100}

	entries := r.Reconcile(0, prev, next)
	require.Len(t, entries, 1)

	assert.Equal(t, uint32(1), entries[0].Sub)
	assert.Equal(t, schema.LogCategoryBeastUpgrade, entries[0].Category)

	p := decodePayload(t, entries[0])
	assert.Equal(t, domain.StatFieldSpirit, p.Field)
	assert.Equal(t, uint64(10), p.OldValue)
	assert.Equal(t, uint64(12), p.NewValue)
	assert.Equal(t, uint64(2), p.Difference)
}

func TestReconcileNilPrevDiffsAgainstZero(t *testing.T) {
	r := New()

	next := domain.BeastStats{
		TokenID:          1,
		Spirit:           3,
		SpecialsUnlocked: true,
	}

	entries := r.Reconcile(0, nil, next)
	require.Len(t, entries, 2)

	spirit := decodePayload(t, entries[0])
	assert.Equal(t, domain.StatFieldSpirit, spirit.Field)
	assert.Equal(t, uint64(0), spirit.OldValue)
	assert.Equal(t, uint64(3), spirit.NewValue)

	specials := decodePayload(t, entries[1])
	assert.Equal(t, domain.StatFieldSpecials, specials.Field)
	assert.Equal(t, uint64(1), specials.NewValue)
	assert.Equal(t, uint64(1), specials.Difference)
}

func TestReconcileIgnoresDecreases(t *testing.T) {
	r := New()

	// A lower snapshot means this event is stale relative to state already
	// applied; emitting entries here would double-count on replay.
	prev := &domain.BeastStats{TokenID: 1, Spirit: 20, ExtraLives: 3}
	next := domain.BeastStats{TokenID: 1, Spirit: 15, ExtraLives: 3}

	assert.Empty(t, r.Reconcile(0, prev, next))
}

func TestReconcileIdenticalSnapshots(t *testing.T) {
	r := New()

	stats := domain.BeastStats{
		TokenID:          1,
		Spirit:           10,
		Luck:             4,
		BonusHealth:      50,
		ExtraLives:       2,
		MaxAttackStreak:  7,
		SpecialsUnlocked: true,
	}

	assert.Empty(t, r.Reconcile(0, &stats, stats))
}

func TestReconcileExtraLivesIsBattleCategory(t *testing.T) {
	r := New()

	prev := &domain.BeastStats{TokenID: 1, ExtraLives: 1}
	next := domain.BeastStats{TokenID: 1, ExtraLives: 2}

	entries := r.Reconcile(0, prev, next)
	require.Len(t, entries, 1)
	assert.Equal(t, schema.LogCategoryBattle, entries[0].Category)
	assert.Equal(t, uint32(7), entries[0].Sub)
}

func TestReconcileSubIndicesAreStable(t *testing.T) {
	r := New()

	// All tracked fields increase at once; sub indices must come out as the
	// 1-based field positions regardless of which fields changed.
	next := domain.BeastStats{
		TokenID:           1,
		Spirit:            1,
		Luck:              1,
		SpecialsUnlocked:  true,
		WisdomUnlocked:    true,
		DiplomacyUnlocked: true,
		BonusHealth:       1,
		ExtraLives:        1,
		MaxAttackStreak:   1,
	}

	entries := r.Reconcile(0, nil, next)
	require.Len(t, entries, 8)
	for i, e := range entries {
		assert.Equal(t, uint32(i+1), e.Sub)
	}
}

func TestReconcileSlotsGetDisjointSubRanges(t *testing.T) {
	r := New()

	// Two beasts in one batch event increasing the same field must not share
	// a sub index, or one of the two log rows would be lost to the
	// append-only dedup.
	first := r.Reconcile(0, nil, domain.BeastStats{TokenID: 1, Spirit: 2})
	second := r.Reconcile(1, nil, domain.BeastStats{TokenID: 2, Spirit: 9})

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, uint32(1), first[0].Sub)
	assert.Equal(t, uint32(11), second[0].Sub)

	sc := r.SummitChange(1, nil, domain.BeastStats{TokenID: 2, CurrentHealth: 70})
	require.NotNil(t, sc)
	assert.Equal(t, uint32(19), sc.Sub)
}

func TestReconcileSlotClampsAtSubIndexCeiling(t *testing.T) {
	r := New()

	// Slots past the last block clamp to it so sub values never spill into
	// the next event's index range; the token id in the log natural key
	// keeps clamped rows distinct.
	entries := r.Reconcile(25, nil, domain.BeastStats{TokenID: 3, MaxAttackStreak: 4})
	require.Len(t, entries, 1)
	assert.Equal(t, uint32(98), entries[0].Sub)

	sc := r.SummitChange(25, nil, domain.BeastStats{TokenID: 3, CurrentHealth: 10})
	require.NotNil(t, sc)
	assert.Equal(t, uint32(domain.MaxLogSubIndex), sc.Sub)
}

func TestSummitChange(t *testing.T) {
	r := New()

	tests := []struct {
		name     string
		prev     *domain.BeastStats
		next     domain.BeastStats
		expected bool
	}{
		{
			name:     "first snapshot with health",
			prev:     nil,
			next:     domain.BeastStats{TokenID: 9, CurrentHealth: 120},
			expected: true,
		},
		{
			name:     "health zero to positive",
			prev:     &domain.BeastStats{TokenID: 9, CurrentHealth: 0},
			next:     domain.BeastStats{TokenID: 9, CurrentHealth: 80},
			expected: true,
		},
		{
			name:     "health moves while on summit",
			prev:     &domain.BeastStats{TokenID: 9, CurrentHealth: 100},
			next:     domain.BeastStats{TokenID: 9, CurrentHealth: 60},
			expected: false,
		},
		{
			name:     "knocked off the summit",
			prev:     &domain.BeastStats{TokenID: 9, CurrentHealth: 40},
			next:     domain.BeastStats{TokenID: 9, CurrentHealth: 0},
			expected: false,
		},
		{
			name:     "first snapshot without health",
			prev:     nil,
			next:     domain.BeastStats{TokenID: 9, CurrentHealth: 0},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := r.SummitChange(0, tt.prev, tt.next)
			if !tt.expected {
				assert.Nil(t, entry)
				return
			}

			require.NotNil(t, entry)
			assert.Equal(t, uint32(subIndexSummitChange), entry.Sub)
			assert.Equal(t, schema.LogCategorySummit, entry.Category)

			var p summitChangePayload
			require.NoError(t, json.Unmarshal(entry.Data, &p))
			assert.Equal(t, tt.next.TokenID, p.TokenID)
			assert.Equal(t, uint64(tt.next.CurrentHealth), p.Health)
		})
	}
}

func TestBindEntries(t *testing.T) {
	r := New()
	header := domain.BlockHeader{
		Number:    500,
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	next := domain.BeastStats{TokenID: 7, Spirit: 2, CurrentHealth: 90}
	entries := r.Reconcile(0, nil, next)
	if sc := r.SummitChange(0, nil, next); sc != nil {
		entries = append(entries, *sc)
	}
	require.Len(t, entries, 2)

	rows := BindEntries(entries, header, "0xabc", 4, 7, "0xowner")
	require.Len(t, rows, 2)

	// Spirit upgrade at sub index 1 under base event 4.
	assert.Equal(t, uint64(500), rows[0].BlockNumber)
	assert.Equal(t, "0xabc", rows[0].TxHash)
	assert.Equal(t, int64(401), rows[0].EventIndex)
	assert.Equal(t, schema.LogCategoryBeastUpgrade, rows[0].Category)
	assert.Empty(t, rows[0].SubCategory)
	assert.Equal(t, "0xowner", rows[0].Player)
	assert.Equal(t, uint64(7), rows[0].TokenID)
	assert.Equal(t, header.Timestamp, rows[0].CreatedAt)

	// Summit change at the last sub index of slot zero's block.
	assert.Equal(t, int64(409), rows[1].EventIndex)
	assert.Equal(t, schema.LogCategorySummit, rows[1].Category)
	assert.Equal(t, schema.LogSubCategorySummitChange, rows[1].SubCategory)
}

func TestApplySingleStat(t *testing.T) {
	base := domain.BeastStats{TokenID: 3, Spirit: 5, CurrentHealth: 100}

	tests := []struct {
		name     string
		field    domain.StatField
		value    uint64
		validate func(*testing.T, domain.BeastStats)
	}{
		{
			name:  "spirit",
			field: domain.StatFieldSpirit,
			value: 9,
			validate: func(t *testing.T, s domain.BeastStats) {
				assert.Equal(t, uint16(9), s.Spirit)
			},
		},
		{
			name:  "specials flag set",
			field: domain.StatFieldSpecials,
			value: 1,
			validate: func(t *testing.T, s domain.BeastStats) {
				assert.True(t, s.SpecialsUnlocked)
			},
		},
		{
			name:  "current health",
			field: domain.StatFieldCurrentHealth,
			value: 0,
			validate: func(t *testing.T, s domain.BeastStats) {
				assert.Equal(t, uint16(0), s.CurrentHealth)
			},
		},
		{
			name:  "rewards earned",
			field: domain.StatFieldRewardsEarned,
			value: 1234,
			validate: func(t *testing.T, s domain.BeastStats) {
				assert.Equal(t, uint32(1234), s.RewardsEarned)
			},
		},
		{
			name:  "unknown field leaves snapshot unchanged",
			field: domain.StatField("unknown_field"),
			value: 99,
			validate: func(t *testing.T, s domain.BeastStats) {
				assert.Equal(t, base, s)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplySingleStat(base, tt.field, tt.value)
			tt.validate(t, got)
			// The input snapshot is passed by value and never mutated.
			assert.Equal(t, uint16(5), base.Spirit)
		})
	}
}
