package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/summit-gg/beast-indexer/internal/domain"
	"github.com/summit-gg/beast-indexer/internal/store/schema"
)

func newTestBatch() *BlockBatch {
	return NewBlockBatch(domain.BlockHeader{
		Number:    100,
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	})
}

func TestBlockBatchStatsLastWriteWins(t *testing.T) {
	b := newTestBatch()

	b.AddStats(schema.BeastStats{TokenID: 1, Spirit: 5})
	b.AddStats(schema.BeastStats{TokenID: 2, Spirit: 1})
	b.AddStats(schema.BeastStats{TokenID: 1, Spirit: 9})

	stats := b.Stats()
	require.Len(t, stats, 2)
	// First-seen order preserved, later snapshot replaced in place.
	assert.Equal(t, uint64(1), stats[0].TokenID)
	assert.Equal(t, int32(9), stats[0].Spirit)
	assert.Equal(t, uint64(2), stats[1].TokenID)
}

func TestBlockBatchOwnersLastWriteWins(t *testing.T) {
	b := newTestBatch()

	b.AddOwner(schema.BeastOwner{TokenID: 7, Owner: "0xa"})
	b.AddOwner(schema.BeastOwner{TokenID: 7, Owner: "0xb"})

	owners := b.Owners()
	require.Len(t, owners, 1)
	assert.Equal(t, "0xb", owners[0].Owner)
}

func TestBlockBatchBeastsFirstWriteWins(t *testing.T) {
	b := newTestBatch()

	b.AddBeast(schema.Beast{TokenID: 3, BeastID: 5})
	b.AddBeast(schema.Beast{TokenID: 3, BeastID: 99})

	beasts := b.Beasts()
	require.Len(t, beasts, 1)
	assert.Equal(t, int32(5), beasts[0].BeastID)
}

func TestBlockBatchEntityDataMerge(t *testing.T) {
	b := newTestBatch()
	tokenID := uint64(42)

	b.AddEntityData(schema.BeastData{
		EntityHash:         "0xhash",
		AdventurersKilled:  3,
		LastDeathTimestamp: 1000,
	})
	b.AddEntityData(schema.BeastData{
		EntityHash:         "0xhash",
		TokenID:            &tokenID,
		AdventurersKilled:  2,
		LastDeathTimestamp: 2000,
	})

	rows := b.EntityData()
	require.Len(t, rows, 1)
	// Counters take the max; token link fills in once.
	assert.Equal(t, int64(3), rows[0].AdventurersKilled)
	assert.Equal(t, int64(2000), rows[0].LastDeathTimestamp)
	require.NotNil(t, rows[0].TokenID)
	assert.Equal(t, tokenID, *rows[0].TokenID)
}

func TestBlockBatchEntityDataTokenLinkKeptOnceSet(t *testing.T) {
	b := newTestBatch()
	first := uint64(1)
	second := uint64(2)

	b.AddEntityData(schema.BeastData{EntityHash: "0xhash", TokenID: &first})
	b.AddEntityData(schema.BeastData{EntityHash: "0xhash", TokenID: &second})

	rows := b.EntityData()
	require.Len(t, rows, 1)
	assert.Equal(t, first, *rows[0].TokenID)
}

func TestBlockBatchConsumableDeltasSum(t *testing.T) {
	b := newTestBatch()

	b.AddConsumableDelta(schema.ConsumableDelta{Owner: "0xa", TokenType: 1, Delta: 5})
	b.AddConsumableDelta(schema.ConsumableDelta{Owner: "0xa", TokenType: 1, Delta: -2})
	b.AddConsumableDelta(schema.ConsumableDelta{Owner: "0xa", TokenType: 2, Delta: 1})
	b.AddConsumableDelta(schema.ConsumableDelta{Owner: "0xb", TokenType: 1, Delta: 4})

	deltas := b.ConsumableDeltas()
	require.Len(t, deltas, 3)
	assert.Equal(t, schema.ConsumableDelta{Owner: "0xa", TokenType: 1, Delta: 3}, deltas[0])
	assert.Equal(t, schema.ConsumableDelta{Owner: "0xa", TokenType: 2, Delta: 1}, deltas[1])
	assert.Equal(t, schema.ConsumableDelta{Owner: "0xb", TokenType: 1, Delta: 4}, deltas[2])
}

func TestBlockBatchConsumableZeroNetDropped(t *testing.T) {
	b := newTestBatch()

	// Acquired and spent in the same block; nothing to write.
	b.AddConsumableDelta(schema.ConsumableDelta{Owner: "0xa", TokenType: 1, Delta: 5})
	b.AddConsumableDelta(schema.ConsumableDelta{Owner: "0xa", TokenType: 1, Delta: -5})

	assert.Empty(t, b.ConsumableDeltas())
}

func TestBlockBatchEmpty(t *testing.T) {
	b := newTestBatch()
	assert.True(t, b.Empty())

	b.AddLog(schema.SummitLog{TxHash: "0x1"})
	assert.False(t, b.Empty())

	b2 := newTestBatch()
	b2.Battles = append(b2.Battles, schema.Battle{})
	assert.False(t, b2.Empty())

	b3 := newTestBatch()
	b3.AddConsumableDelta(schema.ConsumableDelta{Owner: "0xa", TokenType: 1, Delta: 1})
	assert.False(t, b3.Empty())
}

func TestCalculateSafeBatchSize(t *testing.T) {
	tests := []struct {
		name            string
		totalRecords    int
		fieldsPerRecord int
		expected        int
	}{
		{name: "small batch fits whole", totalRecords: 50, fieldsPerRecord: 17, expected: 50},
		{name: "stats-width rows capped by param limit", totalRecords: 100000, fieldsPerRecord: 17, expected: 3796},
		{name: "wide rows", totalRecords: 100000, fieldsPerRecord: 100, expected: 645},
		{name: "absurdly wide rows still make progress", totalRecords: 10, fieldsPerRecord: 70000, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateSafeBatchSize(tt.totalRecords, tt.fieldsPerRecord)
			assert.Equal(t, tt.expected, got)
		})
	}
}
