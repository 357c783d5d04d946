package decoder

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/summit-gg/beast-indexer/internal/domain"
)

var testContracts = Contracts{
	Summit:      domain.MustHexToFelt("0x100"),
	Beasts:      domain.MustHexToFelt("0x200"),
	RewardToken: domain.MustHexToFelt("0x300"),
	Consumables: domain.MustHexToFelt("0x400"),
}

func rawEvent(contract domain.Felt, name string, keys []domain.Felt, data []domain.Felt) domain.RawEvent {
	return domain.RawEvent{
		ContractAddress: contract,
		Keys:            append([]domain.Felt{EventSelector(name)}, keys...),
		Data:            data,
		TxHash:          "0xabc",
		EventIndex:      7,
		BlockNumber:     1000,
	}
}

func felts(values ...uint64) []domain.Felt {
	out := make([]domain.Felt, 0, len(values))
	for _, v := range values {
		out = append(out, domain.FeltFromUint64(v))
	}
	return out
}

func TestEventSelector(t *testing.T) {
	// Selectors are 250-bit truncated keccak hashes: stable, nonzero and
	// distinct per name.
	transfer := EventSelector("Transfer")
	battle := EventSelector("Battle")

	assert.False(t, transfer.IsZero())
	assert.False(t, battle.IsZero())
	assert.False(t, transfer.Equal(battle))

	// Truncation keeps the value under 2^250.
	limit := new(big.Int).Lsh(big.NewInt(1), 250)
	assert.True(t, transfer.Big().Cmp(limit) < 0)

	// Same name always derives the same selector.
	assert.True(t, transfer.Equal(EventSelector("Transfer")))
}

func TestPackBeastStatsRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		stats domain.BeastStats
	}{
		{
			name:  "minimal",
			stats: domain.BeastStats{TokenID: 1},
		},
		{
			name: "typical",
			stats: domain.BeastStats{
				TokenID:           4217,
				CurrentHealth:     511,
				BonusHealth:       120,
				Spirit:            37,
				Luck:              12,
				ExtraLives:        2,
				MaxAttackStreak:   9,
				RewardsEarned:     150_000,
				RewardsClaimed:    120_000,
				SpecialsUnlocked:  true,
				DiplomacyUnlocked: true,
				CapturedSummit:    true,
			},
		},
		{
			name: "all fields at max",
			stats: domain.BeastStats{
				TokenID:           1<<32 - 1,
				CurrentHealth:     1<<16 - 1,
				BonusHealth:       1<<16 - 1,
				Spirit:            1<<16 - 1,
				Luck:              1<<16 - 1,
				ExtraLives:        1<<8 - 1,
				MaxAttackStreak:   1<<8 - 1,
				RewardsEarned:     1<<32 - 1,
				RewardsClaimed:    1<<32 - 1,
				SpecialsUnlocked:  true,
				WisdomUnlocked:    true,
				DiplomacyUnlocked: true,
				CapturedSummit:    true,
				UsedRevivalPotion: true,
				UsedAttackPotion:  true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word := PackBeastStats(tt.stats)
			got, err := UnpackBeastStats(word)
			require.NoError(t, err)
			assert.Equal(t, tt.stats, got)
		})
	}
}

func TestUnpackBeastStatsRejectsReservedBits(t *testing.T) {
	word := PackBeastStats(domain.BeastStats{TokenID: 1})

	// Flip a bit above the packed range.
	dirty := word.Big()
	dirty.SetBit(dirty, packedStatsBits+1, 1)
	f, err := domain.FeltFromBig(dirty)
	require.NoError(t, err)

	_, err = UnpackBeastStats(f)
	assert.ErrorIs(t, err, domain.ErrMalformedEvent)
}

func TestUnpackBeastStatsRejectsZeroTokenID(t *testing.T) {
	word := PackBeastStats(domain.BeastStats{TokenID: 0, Spirit: 5})
	_, err := UnpackBeastStats(word)
	assert.ErrorIs(t, err, domain.ErrMalformedEvent)
}

func TestDecodeUnknownSelector(t *testing.T) {
	d := New(testContracts)

	ev := domain.RawEvent{
		ContractAddress: testContracts.Summit,
		Keys:            []domain.Felt{EventSelector("SomethingElse")},
	}
	_, err := d.Decode(ev)
	assert.ErrorIs(t, err, domain.ErrUnknownSelector)
}

func TestDecodeUnwatchedContract(t *testing.T) {
	d := New(testContracts)

	ev := rawEvent(domain.MustHexToFelt("0x999"), "Transfer",
		felts(1, 2), felts(3))
	_, err := d.Decode(ev)
	assert.ErrorIs(t, err, domain.ErrUnknownSelector)
}

func TestDecodeBeastTransfer(t *testing.T) {
	d := New(testContracts)

	from := domain.MustHexToFelt("0xaa")
	to := domain.MustHexToFelt("0xbb")
	ev := rawEvent(testContracts.Beasts, "Transfer",
		[]domain.Felt{from, to}, felts(42))

	decoded, err := d.Decode(ev)
	require.NoError(t, err)

	transfer, ok := decoded.(domain.BeastTransfer)
	require.True(t, ok)
	assert.True(t, transfer.From.Equal(from))
	assert.True(t, transfer.To.Equal(to))
	assert.Equal(t, uint64(42), transfer.TokenID)
}

func TestDecodeBeastTransferMalformed(t *testing.T) {
	d := New(testContracts)

	// Missing the token id data slot.
	ev := rawEvent(testContracts.Beasts, "Transfer",
		felts(1, 2), nil)
	_, err := d.Decode(ev)
	assert.ErrorIs(t, err, domain.ErrMalformedEvent)
}

func TestDecodePackedStatBatch(t *testing.T) {
	d := New(testContracts)

	first := domain.BeastStats{TokenID: 10, Spirit: 3, CurrentHealth: 100}
	second := domain.BeastStats{TokenID: 11, Luck: 7, CapturedSummit: true}

	ev := rawEvent(testContracts.Summit, "LiveBeastStats", nil, []domain.Felt{
		domain.FeltFromUint64(2),
		PackBeastStats(first),
		PackBeastStats(second),
	})

	decoded, err := d.Decode(ev)
	require.NoError(t, err)

	batch, ok := decoded.(domain.PackedStatBatch)
	require.True(t, ok)
	require.Len(t, batch.Stats, 2)
	assert.Equal(t, first, batch.Stats[0])
	assert.Equal(t, second, batch.Stats[1])
}

func TestDecodePackedStatBatchCountMismatch(t *testing.T) {
	d := New(testContracts)

	ev := rawEvent(testContracts.Summit, "LiveBeastStats", nil, []domain.Felt{
		domain.FeltFromUint64(3),
		PackBeastStats(domain.BeastStats{TokenID: 10}),
	})
	_, err := d.Decode(ev)
	assert.ErrorIs(t, err, domain.ErrMalformedEvent)
}

func TestDecodeSingleStatUpdate(t *testing.T) {
	d := New(testContracts)

	ev := rawEvent(testContracts.Summit, "BeastStatUpdate", nil, felts(42, 0, 17))
	decoded, err := d.Decode(ev)
	require.NoError(t, err)

	update, ok := decoded.(domain.SingleStatUpdate)
	require.True(t, ok)
	assert.Equal(t, uint64(42), update.TokenID)
	assert.Equal(t, domain.StatFieldSpirit, update.Field)
	assert.Equal(t, uint64(17), update.Value)
}

func TestDecodeSingleStatUpdateUnknownField(t *testing.T) {
	d := New(testContracts)

	ev := rawEvent(testContracts.Summit, "BeastStatUpdate", nil, felts(42, 99, 17))
	_, err := d.Decode(ev)
	assert.ErrorIs(t, err, domain.ErrMalformedEvent)
}

func TestDecodeBattle(t *testing.T) {
	d := New(testContracts)

	hash := domain.MustHexToFelt("0xdeadbeef")
	ev := rawEvent(testContracts.Summit, "Battle", nil, []domain.Felt{
		domain.FeltFromUint64(42),
		hash,
		domain.FeltFromUint64(120),
		domain.FeltFromUint64(35),
		domain.FeltFromUint64(4),
	})

	decoded, err := d.Decode(ev)
	require.NoError(t, err)

	battle, ok := decoded.(domain.Battle)
	require.True(t, ok)
	assert.Equal(t, uint64(42), battle.AttackerTokenID)
	assert.True(t, battle.DefenderHash.Equal(hash))
	assert.Equal(t, uint32(120), battle.Damage)
	assert.Equal(t, uint32(35), battle.CounterDamage)
	assert.Equal(t, uint8(4), battle.AttackStreak)
}

func TestDecodeRewardAmounts(t *testing.T) {
	d := New(testContracts)

	// 5 whole tokens at 18 decimals, split into u256 low/high words.
	five := new(big.Int).Mul(big.NewInt(5), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
	low, err := domain.FeltFromBig(five)
	require.NoError(t, err)

	ev := rawEvent(testContracts.Summit, "RewardEarned", nil, []domain.Felt{
		domain.FeltFromUint64(42), low, domain.FeltFromUint64(0),
	})

	decoded, err := d.Decode(ev)
	require.NoError(t, err)

	earned, ok := decoded.(domain.RewardEarned)
	require.True(t, ok)
	assert.Equal(t, uint64(42), earned.TokenID)
	assert.Equal(t, uint64(5), earned.Amount.Whole())
}

func TestDecodeTokenTransferDust(t *testing.T) {
	d := New(testContracts)

	// A sub-whole-unit transfer decodes fine but resolves to zero whole
	// tokens.
	ev := rawEvent(testContracts.RewardToken, "Transfer",
		[]domain.Felt{domain.MustHexToFelt("0xaa"), domain.MustHexToFelt("0xbb")},
		felts(999, 0))

	decoded, err := d.Decode(ev)
	require.NoError(t, err)

	transfer, ok := decoded.(domain.TokenTransfer)
	require.True(t, ok)
	assert.True(t, transfer.Amount.IsZeroWhole())
}

func TestDecodeConsumableTransfer(t *testing.T) {
	d := New(testContracts)

	three := new(big.Int).Mul(big.NewInt(3), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
	low, err := domain.FeltFromBig(three)
	require.NoError(t, err)

	ev := rawEvent(testContracts.Consumables, "Transfer",
		[]domain.Felt{domain.MustHexToFelt("0xaa"), domain.MustHexToFelt("0xbb")},
		[]domain.Felt{domain.FeltFromUint64(2), low, domain.FeltFromUint64(0)})

	decoded, err := d.Decode(ev)
	require.NoError(t, err)

	transfer, ok := decoded.(domain.ConsumableTransfer)
	require.True(t, ok)
	assert.Equal(t, uint64(2), transfer.TokenType)
	assert.Equal(t, uint64(3), transfer.Amount.Whole())
}

func TestDecodeEntityEvents(t *testing.T) {
	d := New(testContracts)

	hash := domain.MustHexToFelt("0xfeed")

	ev := rawEvent(testContracts.Summit, "EntityStats", nil, []domain.Felt{
		hash, domain.FeltFromUint64(12), domain.FeltFromUint64(1700000000),
	})
	decoded, err := d.Decode(ev)
	require.NoError(t, err)
	stats, ok := decoded.(domain.EntityStats)
	require.True(t, ok)
	assert.True(t, stats.EntityHash.Equal(hash))
	assert.Equal(t, uint64(12), stats.AdventurersKilled)
	assert.Equal(t, uint64(1700000000), stats.LastDeathTimestamp)

	ev = rawEvent(testContracts.Summit, "CollectableEntity", nil, []domain.Felt{
		hash, domain.FeltFromUint64(42),
	})
	decoded, err = d.Decode(ev)
	require.NoError(t, err)
	link, ok := decoded.(domain.CollectableEntity)
	require.True(t, ok)
	assert.True(t, link.EntityHash.Equal(hash))
	assert.Equal(t, uint64(42), link.TokenID)
}
