package domain

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexToFelt(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
		expected    uint64
	}{
		{name: "zero", input: "0x0", expected: 0},
		{name: "simple value", input: "0x2a", expected: 42},
		{name: "uppercase digits", input: "0xFF", expected: 255},
		{name: "no prefix", input: "ff", expected: 255},
		{name: "empty", input: "", expectError: true},
		{name: "bare prefix", input: "0x", expectError: true},
		{name: "invalid digits", input: "0xzz", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := HexToFelt(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f.Uint64())
		})
	}
}

func TestFeltFromBigRange(t *testing.T) {
	// 2^252-1 is the largest felt; 2^252 is out of range.
	max := new(big.Int).Lsh(big.NewInt(1), 252)

	_, err := FeltFromBig(max)
	assert.Error(t, err)

	inRange := new(big.Int).Sub(max, big.NewInt(1))
	f, err := FeltFromBig(inRange)
	require.NoError(t, err)
	assert.Equal(t, inRange, f.Big())

	_, err = FeltFromBig(big.NewInt(-1))
	assert.Error(t, err)
}

func TestFeltZeroValue(t *testing.T) {
	var f Felt

	assert.True(t, f.IsZero())
	assert.Equal(t, uint64(0), f.Uint64())
	assert.Equal(t, "0x0", f.Hex())
	assert.True(t, f.Equal(FeltFromUint64(0)))
}

func TestFeltHex(t *testing.T) {
	assert.Equal(t, "0x2a", FeltFromUint64(42).Hex())
	assert.Equal(t, "0xdeadbeef", MustHexToFelt("0xDEADBEEF").Hex())
}

func TestFeltJSONRoundTrip(t *testing.T) {
	f := MustHexToFelt("0xabc123")

	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, `"0xabc123"`, string(data))

	var got Felt
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, f.Equal(got))
}

func TestRawEventSelector(t *testing.T) {
	sel := MustHexToFelt("0x123")
	ev := RawEvent{Keys: []Felt{sel, FeltFromUint64(1)}}
	assert.True(t, ev.Selector().Equal(sel))

	empty := RawEvent{}
	assert.True(t, empty.Selector().IsZero())
}
