package decoder

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/summit-gg/beast-indexer/internal/domain"
)

// Event names as declared by the game contracts. Selectors are derived from
// these with the chain's keccak variant.
const (
	eventNameTransfer            = "Transfer"
	eventNameLiveBeastStats      = "LiveBeastStats"
	eventNameBeastStatUpdate     = "BeastStatUpdate"
	eventNameBattle              = "Battle"
	eventNameRewardEarned        = "RewardEarned"
	eventNameRewardClaimed       = "RewardClaimed"
	eventNamePoison              = "Poison"
	eventNameCorpse              = "Corpse"
	eventNameSkullClaimed        = "SkullClaimed"
	eventNameQuestRewardsClaimed = "QuestRewardsClaimed"
	eventNameEntityStats         = "EntityStats"
	eventNameCollectableEntity   = "CollectableEntity"
)

// statFieldByID maps the field discriminator carried by BeastStatUpdate
// events to the tracked stat it mutates. IDs are a chain-side contract.
var statFieldByID = map[uint64]domain.StatField{
	0:  domain.StatFieldSpirit,
	1:  domain.StatFieldLuck,
	2:  domain.StatFieldSpecials,
	3:  domain.StatFieldWisdom,
	4:  domain.StatFieldDiplomacy,
	5:  domain.StatFieldBonusHealth,
	6:  domain.StatFieldExtraLives,
	7:  domain.StatFieldMaxAttackStreak,
	8:  domain.StatFieldCurrentHealth,
	9:  domain.StatFieldRewardsEarned,
	10: domain.StatFieldRewardsClaimed,
	11: domain.StatFieldCapturedSummit,
	12: domain.StatFieldUsedRevivalPotion,
	13: domain.StatFieldUsedAttackPotion,
}

// EventSelector derives the on-chain selector for an event name: the
// keccak-256 of the name truncated to the low 250 bits.
func EventSelector(name string) domain.Felt {
	hash := new(big.Int).SetBytes(crypto.Keccak256([]byte(name)))

	mask := new(big.Int).Lsh(big.NewInt(1), 250)
	mask.Sub(mask, big.NewInt(1))
	hash.And(hash, mask)

	f, err := domain.FeltFromBig(hash)
	if err != nil {
		panic(err) // 250-bit values always fit a felt
	}
	return f
}

// Contracts holds the addresses of the game contracts the decoder watches.
// Events from any other contract are rejected as unknown.
type Contracts struct {
	// Summit is the core game contract (stats, battles, rewards, quests).
	Summit domain.Felt
	// Beasts is the beast NFT contract.
	Beasts domain.Felt
	// RewardToken is the fungible reward/market token contract.
	RewardToken domain.Felt
	// Consumables is the fungible consumables contract.
	Consumables domain.Felt
}

// Decoder turns raw events into typed variants based on the emitting
// contract and the event selector.
type Decoder struct {
	contracts Contracts
	selectors map[string]string // selector hex -> event name
}

// New creates a decoder for the given contract set.
func New(contracts Contracts) *Decoder {
	names := []string{
		eventNameTransfer,
		eventNameLiveBeastStats,
		eventNameBeastStatUpdate,
		eventNameBattle,
		eventNameRewardEarned,
		eventNameRewardClaimed,
		eventNamePoison,
		eventNameCorpse,
		eventNameSkullClaimed,
		eventNameQuestRewardsClaimed,
		eventNameEntityStats,
		eventNameCollectableEntity,
	}

	selectors := make(map[string]string, len(names))
	for _, name := range names {
		selectors[EventSelector(name).Hex()] = name
	}

	return &Decoder{contracts: contracts, selectors: selectors}
}

// Decode turns one raw event into its typed variant. Unknown selectors and
// events from unwatched contracts return ErrUnknownSelector; shape
// mismatches return ErrMalformedEvent. Either way the caller skips the
// single event and keeps the block.
func (d *Decoder) Decode(ev domain.RawEvent) (domain.DecodedEvent, error) {
	name, ok := d.selectors[ev.Selector().Hex()]
	if !ok {
		return nil, fmt.Errorf("%w: selector %s", domain.ErrUnknownSelector, ev.Selector().Hex())
	}

	switch {
	case ev.ContractAddress.Equal(d.contracts.Beasts):
		return d.decodeBeasts(name, ev)
	case ev.ContractAddress.Equal(d.contracts.Summit):
		return d.decodeSummit(name, ev)
	case ev.ContractAddress.Equal(d.contracts.RewardToken):
		return d.decodeRewardToken(name, ev)
	case ev.ContractAddress.Equal(d.contracts.Consumables):
		return d.decodeConsumables(name, ev)
	default:
		return nil, fmt.Errorf("%w: unwatched contract %s", domain.ErrUnknownSelector, ev.ContractAddress.Hex())
	}
}

func (d *Decoder) decodeBeasts(name string, ev domain.RawEvent) (domain.DecodedEvent, error) {
	if name != eventNameTransfer {
		return nil, fmt.Errorf("%w: %s on beasts contract", domain.ErrUnknownSelector, name)
	}
	if len(ev.Keys) != 3 || len(ev.Data) != 1 {
		return nil, fmt.Errorf("%w: beast transfer wants 3 keys / 1 data slot, got %d/%d",
			domain.ErrMalformedEvent, len(ev.Keys), len(ev.Data))
	}

	return domain.BeastTransfer{
		From:    ev.Keys[1],
		To:      ev.Keys[2],
		TokenID: ev.Data[0].Uint64(),
	}, nil
}

func (d *Decoder) decodeSummit(name string, ev domain.RawEvent) (domain.DecodedEvent, error) {
	switch name {
	case eventNameLiveBeastStats:
		// data = [count, word...]
		if len(ev.Data) < 1 {
			return nil, fmt.Errorf("%w: empty stat batch", domain.ErrMalformedEvent)
		}
		count := int(ev.Data[0].Uint64())
		if count == 0 || len(ev.Data) != count+1 {
			return nil, fmt.Errorf("%w: stat batch declares %d words, carries %d",
				domain.ErrMalformedEvent, count, len(ev.Data)-1)
		}

		batch := domain.PackedStatBatch{Stats: make([]domain.BeastStats, 0, count)}
		for _, word := range ev.Data[1:] {
			stats, err := UnpackBeastStats(word)
			if err != nil {
				return nil, err
			}
			batch.Stats = append(batch.Stats, stats)
		}
		return batch, nil

	case eventNameBeastStatUpdate:
		if len(ev.Data) != 3 {
			return nil, fmt.Errorf("%w: stat update wants 3 data slots, got %d", domain.ErrMalformedEvent, len(ev.Data))
		}
		field, ok := statFieldByID[ev.Data[1].Uint64()]
		if !ok {
			return nil, fmt.Errorf("%w: unknown stat field id %d", domain.ErrMalformedEvent, ev.Data[1].Uint64())
		}
		return domain.SingleStatUpdate{
			TokenID: ev.Data[0].Uint64(),
			Field:   field,
			Value:   ev.Data[2].Uint64(),
		}, nil

	case eventNameBattle:
		if len(ev.Data) != 5 {
			return nil, fmt.Errorf("%w: battle wants 5 data slots, got %d", domain.ErrMalformedEvent, len(ev.Data))
		}
		return domain.Battle{
			AttackerTokenID: ev.Data[0].Uint64(),
			DefenderHash:    ev.Data[1],
			Damage:          uint32(ev.Data[2].Uint64()),
			CounterDamage:   uint32(ev.Data[3].Uint64()),
			AttackStreak:    uint8(ev.Data[4].Uint64()),
		}, nil

	case eventNameRewardEarned:
		if len(ev.Data) != 3 {
			return nil, fmt.Errorf("%w: reward earned wants 3 data slots, got %d", domain.ErrMalformedEvent, len(ev.Data))
		}
		return domain.RewardEarned{
			TokenID: ev.Data[0].Uint64(),
			Amount:  domain.TokenAmountFromWords(ev.Data[1], ev.Data[2], domain.RewardTokenDecimals),
		}, nil

	case eventNameRewardClaimed:
		if len(ev.Keys) != 2 || len(ev.Data) != 3 {
			return nil, fmt.Errorf("%w: reward claimed wants 2 keys / 3 data slots, got %d/%d",
				domain.ErrMalformedEvent, len(ev.Keys), len(ev.Data))
		}
		return domain.RewardClaimed{
			Player:  ev.Keys[1],
			TokenID: ev.Data[0].Uint64(),
			Amount:  domain.TokenAmountFromWords(ev.Data[1], ev.Data[2], domain.RewardTokenDecimals),
		}, nil

	case eventNamePoison:
		if len(ev.Keys) != 2 || len(ev.Data) != 2 {
			return nil, fmt.Errorf("%w: poison wants 2 keys / 2 data slots, got %d/%d",
				domain.ErrMalformedEvent, len(ev.Keys), len(ev.Data))
		}
		return domain.Poison{
			Player:  ev.Keys[1],
			TokenID: ev.Data[0].Uint64(),
			Count:   uint32(ev.Data[1].Uint64()),
		}, nil

	case eventNameCorpse:
		if len(ev.Keys) != 2 || len(ev.Data) != 2 {
			return nil, fmt.Errorf("%w: corpse wants 2 keys / 2 data slots, got %d/%d",
				domain.ErrMalformedEvent, len(ev.Keys), len(ev.Data))
		}
		return domain.Corpse{
			Player:  ev.Keys[1],
			TokenID: ev.Data[0].Uint64(),
			Health:  uint32(ev.Data[1].Uint64()),
		}, nil

	case eventNameSkullClaimed:
		if len(ev.Keys) != 2 || len(ev.Data) != 2 {
			return nil, fmt.Errorf("%w: skull claim wants 2 keys / 2 data slots, got %d/%d",
				domain.ErrMalformedEvent, len(ev.Keys), len(ev.Data))
		}
		return domain.SkullClaim{
			Player:     ev.Keys[1],
			EntityHash: ev.Data[0],
			Skulls:     ev.Data[1].Uint64(),
		}, nil

	case eventNameQuestRewardsClaimed:
		if len(ev.Keys) != 2 || len(ev.Data) != 3 {
			return nil, fmt.Errorf("%w: quest rewards wants 2 keys / 3 data slots, got %d/%d",
				domain.ErrMalformedEvent, len(ev.Keys), len(ev.Data))
		}
		return domain.QuestRewardsClaimed{
			Player:  ev.Keys[1],
			QuestID: ev.Data[0].Uint64(),
			Amount:  domain.TokenAmountFromWords(ev.Data[1], ev.Data[2], domain.RewardTokenDecimals),
		}, nil

	case eventNameEntityStats:
		if len(ev.Data) != 3 {
			return nil, fmt.Errorf("%w: entity stats wants 3 data slots, got %d", domain.ErrMalformedEvent, len(ev.Data))
		}
		return domain.EntityStats{
			EntityHash:         ev.Data[0],
			AdventurersKilled:  ev.Data[1].Uint64(),
			LastDeathTimestamp: ev.Data[2].Uint64(),
		}, nil

	case eventNameCollectableEntity:
		if len(ev.Data) != 2 {
			return nil, fmt.Errorf("%w: collectable entity wants 2 data slots, got %d", domain.ErrMalformedEvent, len(ev.Data))
		}
		return domain.CollectableEntity{
			EntityHash: ev.Data[0],
			TokenID:    ev.Data[1].Uint64(),
		}, nil

	default:
		return nil, fmt.Errorf("%w: %s on summit contract", domain.ErrUnknownSelector, name)
	}
}

func (d *Decoder) decodeRewardToken(name string, ev domain.RawEvent) (domain.DecodedEvent, error) {
	if name != eventNameTransfer {
		return nil, fmt.Errorf("%w: %s on reward token contract", domain.ErrUnknownSelector, name)
	}
	if len(ev.Keys) != 3 || len(ev.Data) != 2 {
		return nil, fmt.Errorf("%w: token transfer wants 3 keys / 2 data slots, got %d/%d",
			domain.ErrMalformedEvent, len(ev.Keys), len(ev.Data))
	}

	return domain.TokenTransfer{
		Token:  ev.ContractAddress,
		From:   ev.Keys[1],
		To:     ev.Keys[2],
		Amount: domain.TokenAmountFromWords(ev.Data[0], ev.Data[1], domain.RewardTokenDecimals),
	}, nil
}

func (d *Decoder) decodeConsumables(name string, ev domain.RawEvent) (domain.DecodedEvent, error) {
	if name != eventNameTransfer {
		return nil, fmt.Errorf("%w: %s on consumables contract", domain.ErrUnknownSelector, name)
	}
	if len(ev.Keys) != 3 || len(ev.Data) != 3 {
		return nil, fmt.Errorf("%w: consumable transfer wants 3 keys / 3 data slots, got %d/%d",
			domain.ErrMalformedEvent, len(ev.Keys), len(ev.Data))
	}

	return domain.ConsumableTransfer{
		From:      ev.Keys[1],
		To:        ev.Keys[2],
		TokenType: ev.Data[0].Uint64(),
		Amount:    domain.TokenAmountFromWords(ev.Data[1], ev.Data[2], domain.RewardTokenDecimals),
	}, nil
}
