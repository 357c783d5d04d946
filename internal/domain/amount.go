package domain

import (
	"math/big"
)

// RewardTokenDecimals is the fixed decimal count of the game's fungible
// tokens. Raw on-chain amounts are base units scaled by 10^18.
const RewardTokenDecimals = 18

// TokenAmount is a fixed-point token quantity: raw base units plus the
// token's decimal count. Raw values are kept as integers so no precision is
// lost before the caller decides how to round.
type TokenAmount struct {
	raw      *big.Int
	decimals uint32
}

// NewTokenAmount creates an amount from raw base units. The raw value is copied.
func NewTokenAmount(raw *big.Int, decimals uint32) TokenAmount {
	return TokenAmount{raw: new(big.Int).Set(raw), decimals: decimals}
}

// TokenAmountFromWords reassembles a 256-bit amount from its 128-bit
// low/high split (low + high*2^128), as emitted by the chain.
func TokenAmountFromWords(low, high Felt, decimals uint32) TokenAmount {
	raw := high.Big()
	raw.Lsh(raw, 128)
	raw.Add(raw, low.Big())
	return TokenAmount{raw: raw, decimals: decimals}
}

// Raw returns a copy of the raw base-unit value.
func (a TokenAmount) Raw() *big.Int {
	if a.raw == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(a.raw)
}

// Decimals returns the token's decimal count.
func (a TokenAmount) Decimals() uint32 {
	return a.decimals
}

// Whole returns the amount in whole tokens, discarding any fractional
// remainder below one whole unit. Dust transfers therefore resolve to zero.
func (a TokenAmount) Whole() uint64 {
	if a.raw == nil {
		return 0
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(a.decimals)), nil)
	whole := new(big.Int).Quo(a.raw, scale)
	return whole.Uint64()
}

// IsZeroWhole reports whether the amount rounds down to zero whole tokens.
func (a TokenAmount) IsZeroWhole() bool {
	return a.Whole() == 0
}
