package domain

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// feltBits is the width of a field element on the game chain. Words are
// guaranteed by the chain to fit in 252 bits.
const feltBits = 252

var feltMax = new(big.Int).Lsh(big.NewInt(1), feltBits)

// Felt is a single field element as delivered by the chain: a non-negative
// integer below 2^252. It is the unit of every event key and data slot.
// The zero value is the zero element.
type Felt struct {
	value *big.Int
}

// FeltFromUint64 creates a felt from a uint64.
func FeltFromUint64(v uint64) Felt {
	return Felt{value: new(big.Int).SetUint64(v)}
}

// FeltFromBig creates a felt from a big integer. The value is copied.
func FeltFromBig(v *big.Int) (Felt, error) {
	if v.Sign() < 0 || v.Cmp(feltMax) >= 0 {
		return Felt{}, fmt.Errorf("value out of felt range: %s", v.String())
	}
	return Felt{value: new(big.Int).Set(v)}, nil
}

// HexToFelt parses a 0x-prefixed hex string into a felt.
func HexToFelt(s string) (Felt, error) {
	trimmed := strings.TrimPrefix(strings.ToLower(s), "0x")
	if trimmed == "" {
		return Felt{}, fmt.Errorf("empty felt literal %q", s)
	}

	v, ok := new(big.Int).SetString(trimmed, 16)
	if !ok {
		return Felt{}, fmt.Errorf("invalid felt literal %q", s)
	}

	return FeltFromBig(v)
}

// MustHexToFelt parses a hex felt literal and panics on failure.
// Intended for package-level constants and tests.
func MustHexToFelt(s string) Felt {
	f, err := HexToFelt(s)
	if err != nil {
		panic(err)
	}
	return f
}

// Big returns a copy of the underlying integer.
func (f Felt) Big() *big.Int {
	if f.value == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(f.value)
}

// Uint64 returns the felt as a uint64. Values above 64 bits are truncated;
// callers decoding fixed-width fields must mask before converting.
func (f Felt) Uint64() uint64 {
	if f.value == nil {
		return 0
	}
	return f.value.Uint64()
}

// IsZero reports whether the felt is the zero element.
func (f Felt) IsZero() bool {
	return f.value == nil || f.value.Sign() == 0
}

// Equal reports whether two felts hold the same value.
func (f Felt) Equal(other Felt) bool {
	return f.Big().Cmp(other.Big()) == 0
}

// Hex returns the canonical 0x-prefixed lowercase hex representation with
// no leading zeros. This is the form used for address columns.
func (f Felt) Hex() string {
	if f.value == nil {
		return "0x0"
	}
	return "0x" + f.value.Text(16)
}

func (f Felt) String() string {
	return f.Hex()
}

// MarshalJSON encodes the felt as a hex string, matching the wire format of
// the block transport.
func (f Felt) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Hex())
}

// UnmarshalJSON decodes a hex string into the felt.
func (f *Felt) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := HexToFelt(s)
	if err != nil {
		return err
	}

	*f = parsed
	return nil
}
