package market

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/summit-gg/beast-indexer/internal/domain"
	"github.com/summit-gg/beast-indexer/internal/logger"
	"github.com/summit-gg/beast-indexer/internal/store/schema"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

var (
	poolAddr  = domain.MustHexToFelt("0xdead")
	payToken  = domain.MustHexToFelt("0xfee")
	itemToken = domain.MustHexToFelt("0x1")
	addrA     = domain.MustHexToFelt("0xa")
	addrB     = domain.MustHexToFelt("0xb")
	router    = domain.MustHexToFelt("0xc")
	zeroAddr  = domain.Felt{}
)

var testHeader = domain.BlockHeader{
	Number:    1000,
	Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
}

func decodeTrade(t *testing.T, row schema.SummitLog) tradePayload {
	t.Helper()
	var p tradePayload
	require.NoError(t, json.Unmarshal(row.Data, &p))
	return p
}

func TestResolveSimpleBuy(t *testing.T) {
	r := NewResolver(poolAddr, payToken)

	// A buys 100 of the item from the pool, paying 40 of the payment token.
	r.AddTransfer("0xtx1", 2, itemToken, poolAddr, addrA, 100)
	r.AddTransfer("0xtx1", 3, payToken, addrA, poolAddr, 40)

	rows := r.Resolve(testHeader)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, schema.LogCategoryMarket, row.Category)
	assert.Equal(t, schema.LogSubCategoryBought, row.SubCategory)
	assert.Equal(t, addrA.Hex(), row.Player)
	assert.Equal(t, "0xtx1", row.TxHash)
	assert.Equal(t, uint64(1000), row.BlockNumber)
	assert.Equal(t, testHeader.Timestamp, row.CreatedAt)
	// Base event 2, first counterparty sub index.
	assert.Equal(t, int64(260), row.EventIndex)

	p := decodeTrade(t, row)
	assert.Equal(t, itemToken.Hex(), p.Token)
	assert.Equal(t, int64(100), p.Amount)
	assert.Equal(t, int64(40), p.Cost)
}

func TestResolveSimpleSell(t *testing.T) {
	r := NewResolver(poolAddr, payToken)

	r.AddTransfer("0xtx1", 0, itemToken, addrA, poolAddr, 25)
	r.AddTransfer("0xtx1", 1, payToken, poolAddr, addrA, 10)

	rows := r.Resolve(testHeader)
	require.Len(t, rows, 1)

	assert.Equal(t, schema.LogSubCategorySold, rows[0].SubCategory)
	p := decodeTrade(t, rows[0])
	assert.Equal(t, int64(25), p.Amount)
	assert.Equal(t, int64(10), p.Cost)
}

func TestResolveRouterPassThroughNetsToZero(t *testing.T) {
	r := NewResolver(poolAddr, payToken)

	// The asset hops pool -> router -> A. The router's legs cancel, so the
	// trade is attributed to A alone.
	r.AddTransfer("0xtx1", 4, itemToken, poolAddr, router, 100)
	r.AddTransfer("0xtx1", 5, itemToken, router, addrA, 100)

	rows := r.Resolve(testHeader)
	require.Len(t, rows, 1)
	assert.Equal(t, addrA.Hex(), rows[0].Player)
	assert.Equal(t, schema.LogSubCategoryBought, rows[0].SubCategory)
	assert.Equal(t, int64(100), decodeTrade(t, rows[0]).Amount)
}

func TestResolveRoundTripEmitsNothing(t *testing.T) {
	r := NewResolver(poolAddr, payToken)

	// A sends to B and B sends it straight back; no pool contact means no
	// trade even though both addresses moved the asset.
	r.AddTransfer("0xtx1", 0, itemToken, addrA, addrB, 50)
	r.AddTransfer("0xtx1", 1, itemToken, addrB, addrA, 50)

	assert.Empty(t, r.Resolve(testHeader))
}

func TestResolveNonPoolTransferIgnored(t *testing.T) {
	r := NewResolver(poolAddr, payToken)

	// A plain transfer between players is not a market trade.
	r.AddTransfer("0xtx1", 0, itemToken, addrA, addrB, 50)

	assert.Empty(t, r.Resolve(testHeader))
}

func TestResolvePaymentTokenGroupSkipped(t *testing.T) {
	r := NewResolver(poolAddr, payToken)

	// Payment-token movement against the pool alone produces no trade rows;
	// it only feeds the cost figure of some traded asset.
	r.AddTransfer("0xtx1", 0, payToken, addrA, poolAddr, 40)

	assert.Empty(t, r.Resolve(testHeader))
}

func TestResolveMintAndBurnExcluded(t *testing.T) {
	r := NewResolver(poolAddr, payToken)

	// Mint into the pool then pool to A. The zero address never appears as a
	// counterparty.
	r.AddTransfer("0xtx1", 0, itemToken, zeroAddr, poolAddr, 500)
	r.AddTransfer("0xtx1", 1, itemToken, poolAddr, addrA, 100)

	rows := r.Resolve(testHeader)
	require.Len(t, rows, 1)
	assert.Equal(t, addrA.Hex(), rows[0].Player)
}

func TestResolveMultipleCounterpartiesSortedByAddress(t *testing.T) {
	r := NewResolver(poolAddr, payToken)

	// B appears in the events before A, but sub indices follow address
	// order so replays produce identical event_index values.
	r.AddTransfer("0xtx1", 2, itemToken, poolAddr, addrB, 30)
	r.AddTransfer("0xtx1", 3, itemToken, poolAddr, addrA, 70)
	r.AddTransfer("0xtx1", 4, payToken, addrA, poolAddr, 7)
	r.AddTransfer("0xtx1", 5, payToken, addrB, poolAddr, 3)

	rows := r.Resolve(testHeader)
	require.Len(t, rows, 2)

	assert.Equal(t, addrA.Hex(), rows[0].Player)
	assert.Equal(t, int64(260), rows[0].EventIndex)
	assert.Equal(t, int64(70), decodeTrade(t, rows[0]).Amount)
	assert.Equal(t, int64(7), decodeTrade(t, rows[0]).Cost)

	assert.Equal(t, addrB.Hex(), rows[1].Player)
	assert.Equal(t, int64(261), rows[1].EventIndex)
	assert.Equal(t, int64(30), decodeTrade(t, rows[1]).Amount)
	assert.Equal(t, int64(3), decodeTrade(t, rows[1]).Cost)
}

func TestResolveSeparateTransactionsStaySeparate(t *testing.T) {
	r := NewResolver(poolAddr, payToken)

	r.AddTransfer("0xtx1", 0, itemToken, poolAddr, addrA, 10)
	r.AddTransfer("0xtx2", 0, itemToken, addrA, poolAddr, 10)

	rows := r.Resolve(testHeader)
	require.Len(t, rows, 2)
	assert.Equal(t, schema.LogSubCategoryBought, rows[0].SubCategory)
	assert.Equal(t, "0xtx1", rows[0].TxHash)
	assert.Equal(t, schema.LogSubCategorySold, rows[1].SubCategory)
	assert.Equal(t, "0xtx2", rows[1].TxHash)
}

func TestResolveCostOmittedWhenNoPaymentFlow(t *testing.T) {
	r := NewResolver(poolAddr, payToken)

	// An airdrop-style pool outflow with no payment leg carries no cost.
	r.AddTransfer("0xtx1", 0, itemToken, poolAddr, addrA, 5)

	rows := r.Resolve(testHeader)
	require.Len(t, rows, 1)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rows[0].Data, &raw))
	assert.NotContains(t, raw, "cost")
}

func TestResolveBaseIndexIsLowestLeg(t *testing.T) {
	r := NewResolver(poolAddr, payToken)

	r.AddTransfer("0xtx1", 9, itemToken, router, addrA, 40)
	r.AddTransfer("0xtx1", 6, itemToken, poolAddr, router, 40)

	rows := r.Resolve(testHeader)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(660), rows[0].EventIndex)
}

func TestResolveCounterpartyCapacityEnforced(t *testing.T) {
	r := NewResolver(poolAddr, payToken)

	// One more counterparty than the sub-index range can hold. The excess
	// is dropped rather than spilling into the next event's index range.
	for i := 0; i <= subIndexCapacity; i++ {
		addr := domain.FeltFromUint64(uint64(0x500 + i))
		r.AddTransfer("0xtx1", uint32(2+i), itemToken, poolAddr, addr, 10)
	}

	rows := r.Resolve(testHeader)
	require.Len(t, rows, subIndexCapacity)

	assert.Equal(t, int64(260), rows[0].EventIndex)
	last := rows[len(rows)-1]
	assert.Equal(t, int64(2*100+domain.MaxLogSubIndex), last.EventIndex)
	// Addresses sort lexicographically, so the highest one is the casualty.
	dropped := domain.FeltFromUint64(uint64(0x500 + subIndexCapacity)).Hex()
	for _, row := range rows {
		assert.NotEqual(t, dropped, row.Player)
	}
}
