package market

import (
	"encoding/json"
	"sort"

	"go.uber.org/zap"

	"github.com/summit-gg/beast-indexer/internal/domain"
	"github.com/summit-gg/beast-indexer/internal/logger"
	"github.com/summit-gg/beast-indexer/internal/store/schema"
)

// Leg is one signed transfer flow collected while walking a block. A single
// Transfer event contributes two legs: a negative one for the sender and a
// positive one for the receiver. Legs are ephemeral; they exist only to be
// netted at end of block and are never persisted.
type Leg struct {
	TxHash       string
	Token        domain.Felt
	Address      domain.Felt
	Amount       int64
	EventIndex   uint32
	PoolInvolved bool
}

// tradePayload is the JSON body of a resolved market log entry.
type tradePayload struct {
	Token  string `json:"token"`
	Amount int64  `json:"amount"`
	Cost   int64  `json:"cost,omitempty"`
}

// subIndexMarketBase offsets market sub indices clear of the stat-field and
// summit-change ranges. Counterparties of one trade group take consecutive
// sub indices in address order, so replaying the block reproduces identical
// event_index values.
const subIndexMarketBase = 60

// subIndexCapacity bounds the counterparties one trade group can index; a
// sub index past domain.MaxLogSubIndex would spill into the next event's
// range.
const subIndexCapacity = domain.MaxLogSubIndex - subIndexMarketBase + 1

// Resolver accumulates transfer legs for one block and resolves them into
// trade log entries once the block's events are all collected.
//
// An AMM swap routes the asset through intermediate hops (pool to router to
// user) and moves the paid asset the opposite way in the same transaction.
// Netting per address collapses the hops: a pure pass-through router nets to
// zero and disappears, leaving only genuine counterparties.
type Resolver struct {
	pool      domain.Felt
	payToken  domain.Felt
	legs      []Leg
	groupPool map[groupKey]bool
}

type groupKey struct {
	txHash string
	token  string
}

// NewResolver creates a resolver for one block. pool is the AMM pool/core
// address; payToken is the asset trades are paid in, used for the cost
// figure.
func NewResolver(pool, payToken domain.Felt) *Resolver {
	return &Resolver{
		pool:      pool,
		payToken:  payToken,
		groupPool: make(map[groupKey]bool),
	}
}

// AddTransfer records both legs of one fungible transfer. Zero-address legs
// (mints and burns) and pool legs are excluded from netting but a pool leg
// still marks its group as a trade.
func (r *Resolver) AddTransfer(txHash string, eventIndex uint32, token, from, to domain.Felt, amount int64) {
	key := groupKey{txHash: txHash, token: token.Hex()}
	if from.Equal(r.pool) || to.Equal(r.pool) {
		r.groupPool[key] = true
	}

	if !from.IsZero() && !from.Equal(r.pool) {
		r.legs = append(r.legs, Leg{
			TxHash: txHash, Token: token, Address: from,
			Amount: -amount, EventIndex: eventIndex,
		})
	}
	if !to.IsZero() && !to.Equal(r.pool) {
		r.legs = append(r.legs, Leg{
			TxHash: txHash, Token: token, Address: to,
			Amount: amount, EventIndex: eventIndex,
		})
	}
}

// Resolve nets the collected legs and returns one log row per
// (transaction, token, counterparty) with nonzero net flow, for groups that
// touched the pool. Positive net means the address acquired the asset
// (Bought); negative means it disposed of it (Sold).
//
// The cost figure is the counterparty's net flow of the payment token in
// the same transaction, per address rather than total pool inflow, so
// multi-trader transactions attribute each trader's own cost.
func (r *Resolver) Resolve(header domain.BlockHeader) []schema.SummitLog {
	type group struct {
		token     domain.Felt
		nets      map[string]int64
		addrs     map[string]domain.Felt
		baseIndex uint32
	}

	groups := make(map[groupKey]*group)
	order := make([]groupKey, 0)

	for _, leg := range r.legs {
		key := groupKey{txHash: leg.TxHash, token: leg.Token.Hex()}
		g, ok := groups[key]
		if !ok {
			g = &group{
				token:     leg.Token,
				nets:      make(map[string]int64),
				addrs:     make(map[string]domain.Felt),
				baseIndex: leg.EventIndex,
			}
			groups[key] = g
			order = append(order, key)
		}
		if leg.EventIndex < g.baseIndex {
			g.baseIndex = leg.EventIndex
		}
		addr := leg.Address.Hex()
		g.nets[addr] += leg.Amount
		g.addrs[addr] = leg.Address
	}

	var rows []schema.SummitLog
	for _, key := range order {
		if !r.groupPool[key] {
			continue
		}
		if key.token == r.payToken.Hex() {
			// Payment-token groups only contribute cost figures.
			continue
		}
		g := groups[key]

		counterparties := make([]string, 0, len(g.nets))
		for addr, net := range g.nets {
			if net != 0 {
				counterparties = append(counterparties, addr)
			}
		}
		sort.Strings(counterparties)

		if len(counterparties) > subIndexCapacity {
			logger.Warn("trade group exceeds counterparty capacity, dropping excess",
				zap.String("tx", key.txHash),
				zap.String("token", key.token),
				zap.Int("counterparties", len(counterparties)),
				zap.Int("capacity", subIndexCapacity))
			counterparties = counterparties[:subIndexCapacity]
		}

		for i, addr := range counterparties {
			net := g.nets[addr]
			subCategory := schema.LogSubCategoryBought
			amount := net
			if net < 0 {
				subCategory = schema.LogSubCategorySold
				amount = -net
			}

			payload, _ := json.Marshal(tradePayload{
				Token:  key.token,
				Amount: amount,
				Cost:   r.paymentNet(key.txHash, addr),
			})

			rows = append(rows, schema.SummitLog{
				BlockNumber: header.Number,
				TxHash:      key.txHash,
				EventIndex:  domain.DerivedLogIndex(g.baseIndex, subIndexMarketBase+uint32(i)).Value(),
				Category:    schema.LogCategoryMarket,
				SubCategory: subCategory,
				Data:        payload,
				Player:      addr,
				CreatedAt:   header.Timestamp,
			})
		}
	}

	return rows
}

// paymentNet returns the magnitude of addr's net payment-token flow within
// tx, the per-address cost of its trade. Zero when the payment asset never
// moved for that address.
func (r *Resolver) paymentNet(txHash string, addr string) int64 {
	var net int64
	for _, leg := range r.legs {
		if leg.TxHash == txHash && leg.Token.Equal(r.payToken) && leg.Address.Hex() == addr {
			net += leg.Amount
		}
	}
	if net < 0 {
		net = -net
	}
	return net
}
