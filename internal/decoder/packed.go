package decoder

import (
	"fmt"
	"math/big"

	"github.com/summit-gg/beast-indexer/internal/domain"
)

// Packed stat word layout. Fields are packed least-significant-first in the
// order below; flags occupy one bit each with 1 meaning true. The layout is
// a contract with the chain and must not be reordered.
//
//	bits   0..31   token_id
//	bits  32..47   current_health
//	bits  48..63   bonus_health
//	bits  64..79   spirit
//	bits  80..95   luck
//	bits  96..103  extra_lives
//	bits 104..111  max_attack_streak
//	bits 112..143  rewards_earned
//	bits 144..175  rewards_claimed
//	bit  176       specials_unlocked
//	bit  177       wisdom_unlocked
//	bit  178       diplomacy_unlocked
//	bit  179       captured_summit
//	bit  180       used_revival_potion
//	bit  181       used_attack_potion
//
// Bits 182..251 are reserved and must be zero.
const (
	tokenIDBits         = 32
	currentHealthBits   = 16
	bonusHealthBits     = 16
	spiritBits          = 16
	luckBits            = 16
	extraLivesBits      = 8
	maxAttackStreakBits = 8
	rewardsEarnedBits   = 32
	rewardsClaimedBits  = 32
	flagBits            = 1

	packedStatsBits = tokenIDBits + currentHealthBits + bonusHealthBits +
		spiritBits + luckBits + extraLivesBits + maxAttackStreakBits +
		rewardsEarnedBits + rewardsClaimedBits + 6*flagBits
)

// packedReader extracts consecutive fixed-width fields from a packed word,
// least-significant-first.
type packedReader struct {
	word *big.Int
	off  uint
}

func newPackedReader(word domain.Felt) *packedReader {
	return &packedReader{word: word.Big()}
}

func (r *packedReader) read(bits uint) uint64 {
	mask := new(big.Int).Lsh(big.NewInt(1), bits)
	mask.Sub(mask, big.NewInt(1))

	v := new(big.Int).Rsh(r.word, r.off)
	v.And(v, mask)
	r.off += bits
	return v.Uint64()
}

func (r *packedReader) readFlag() bool {
	return r.read(flagBits) == 1
}

// remainderZero reports whether every bit above the consumed range is zero.
func (r *packedReader) remainderZero() bool {
	return new(big.Int).Rsh(r.word, r.off).Sign() == 0
}

// UnpackBeastStats decodes one packed stat word into a snapshot. Words with
// nonzero reserved bits are rejected so a layout drift on the chain side
// surfaces as a decode error instead of silent corruption.
func UnpackBeastStats(word domain.Felt) (domain.BeastStats, error) {
	r := newPackedReader(word)

	stats := domain.BeastStats{
		TokenID:         r.read(tokenIDBits),
		CurrentHealth:   uint16(r.read(currentHealthBits)),
		BonusHealth:     uint16(r.read(bonusHealthBits)),
		Spirit:          uint16(r.read(spiritBits)),
		Luck:            uint16(r.read(luckBits)),
		ExtraLives:      uint8(r.read(extraLivesBits)),
		MaxAttackStreak: uint8(r.read(maxAttackStreakBits)),
		RewardsEarned:   uint32(r.read(rewardsEarnedBits)),
		RewardsClaimed:  uint32(r.read(rewardsClaimedBits)),
	}
	stats.SpecialsUnlocked = r.readFlag()
	stats.WisdomUnlocked = r.readFlag()
	stats.DiplomacyUnlocked = r.readFlag()
	stats.CapturedSummit = r.readFlag()
	stats.UsedRevivalPotion = r.readFlag()
	stats.UsedAttackPotion = r.readFlag()

	if !r.remainderZero() {
		return domain.BeastStats{}, fmt.Errorf("%w: reserved bits set in packed stats word", domain.ErrMalformedEvent)
	}
	if stats.TokenID == 0 {
		return domain.BeastStats{}, fmt.Errorf("%w: packed stats word with zero token id", domain.ErrMalformedEvent)
	}

	return stats, nil
}

// packedWriter assembles a packed word field by field, mirroring packedReader.
type packedWriter struct {
	word *big.Int
	off  uint
}

func (w *packedWriter) write(v uint64, bits uint) {
	field := new(big.Int).SetUint64(v)
	field.Lsh(field, w.off)
	w.word.Or(w.word, field)
	w.off += bits
}

func (w *packedWriter) writeFlag(v bool) {
	if v {
		w.write(1, flagBits)
	} else {
		w.write(0, flagBits)
	}
}

// PackBeastStats encodes a snapshot into its packed word form. It is the
// exact inverse of UnpackBeastStats and exists so the layout can be
// round-trip verified; the indexer itself only ever unpacks.
func PackBeastStats(stats domain.BeastStats) domain.Felt {
	w := &packedWriter{word: new(big.Int)}

	w.write(stats.TokenID, tokenIDBits)
	w.write(uint64(stats.CurrentHealth), currentHealthBits)
	w.write(uint64(stats.BonusHealth), bonusHealthBits)
	w.write(uint64(stats.Spirit), spiritBits)
	w.write(uint64(stats.Luck), luckBits)
	w.write(uint64(stats.ExtraLives), extraLivesBits)
	w.write(uint64(stats.MaxAttackStreak), maxAttackStreakBits)
	w.write(uint64(stats.RewardsEarned), rewardsEarnedBits)
	w.write(uint64(stats.RewardsClaimed), rewardsClaimedBits)
	w.writeFlag(stats.SpecialsUnlocked)
	w.writeFlag(stats.WisdomUnlocked)
	w.writeFlag(stats.DiplomacyUnlocked)
	w.writeFlag(stats.CapturedSummit)
	w.writeFlag(stats.UsedRevivalPotion)
	w.writeFlag(stats.UsedAttackPotion)

	f, err := domain.FeltFromBig(w.word)
	if err != nil {
		// packedStatsBits is well below the felt width, so this cannot happen
		panic(err)
	}
	return f
}
