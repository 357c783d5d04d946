package driver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/summit-gg/beast-indexer/internal/decoder"
	"github.com/summit-gg/beast-indexer/internal/domain"
	"github.com/summit-gg/beast-indexer/internal/logger"
	"github.com/summit-gg/beast-indexer/internal/market"
	"github.com/summit-gg/beast-indexer/internal/providers/rpc"
	"github.com/summit-gg/beast-indexer/internal/reconciler"
	"github.com/summit-gg/beast-indexer/internal/resolver"
	"github.com/summit-gg/beast-indexer/internal/store"
	"github.com/summit-gg/beast-indexer/internal/store/schema"
)

// cursorChain names the single chain this indexer follows in the advisory
// block cursor table.
const cursorChain = "game"

// Options configures a driver run.
type Options struct {
	// MetadataPoolSize bounds concurrent metadata RPC fetches per block
	MetadataPoolSize int
	// EntityBackfillLimit caps how many unlinked entities one startup
	// backfill pass attempts to resolve
	EntityBackfillLimit int
	// MarketPool is the AMM pool/core address trades route through
	MarketPool domain.Felt
	// RewardToken is the payment asset for market trades
	RewardToken domain.Felt
}

// State is the driver's explicit cross-block state. Everything that used to
// be implicit process memory lives here so a restart's behavior is easy to
// reason about: fetchedMetadata only suppresses duplicate RPC fetches, never
// correctness, and lastBlock only feeds the gap log line.
type State struct {
	// RunID identifies this process run in logs
	RunID string

	mu sync.Mutex
	// fetchedMetadata remembers token ids whose metadata fetch was already
	// issued this run, successful or not yet committed
	fetchedMetadata map[uint64]struct{}
	// lastBlock is the previous block number this run processed
	lastBlock uint64
}

// NewState creates a fresh run state with a unique run id.
func NewState() *State {
	return &State{
		RunID:           uuid.NewString(),
		fetchedMetadata: make(map[uint64]struct{}),
	}
}

// markFetched records a fetch attempt, returning false if one was already
// issued for the token this run.
func (s *State) markFetched(tokenID uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fetchedMetadata[tokenID]; ok {
		return false
	}
	s.fetchedMetadata[tokenID] = struct{}{}
	return true
}

// unmarkFetched forgets a failed fetch so a later block retries it.
func (s *State) unmarkFetched(tokenID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fetchedMetadata, tokenID)
}

// noteBlock records the block number and reports the previous one.
func (s *State) noteBlock(number uint64) (prev uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev = s.lastBlock
	s.lastBlock = number
	return prev
}

// Driver owns the per-block pipeline: decode every event, batch-resolve
// beast contexts, walk events sequentially building the block batch, resolve
// deferred market legs, then commit everything in one idempotent write.
type Driver struct {
	decoder   *decoder.Decoder
	resolver  *resolver.ContextResolver
	reconcile *reconciler.Reconciler
	store     store.Store
	rpc       rpc.Client
	opts      Options
	state     *State
	metaPool  pond.Pool
}

// New creates a driver. MetadataPoolSize of 0 falls back to a small default.
func New(dec *decoder.Decoder, res *resolver.ContextResolver, st store.Store, rpcClient rpc.Client, opts Options) *Driver {
	poolSize := opts.MetadataPoolSize
	if poolSize <= 0 {
		poolSize = 4
	}

	return &Driver{
		decoder:   dec,
		resolver:  res,
		reconcile: reconciler.New(),
		store:     st,
		rpc:       rpcClient,
		opts:      opts,
		state:     NewState(),
		metaPool:  pond.NewPool(poolSize),
	}
}

// State exposes the run state, mainly for tests.
func (d *Driver) State() *State {
	return d.state
}

// BackfillEntityLinks resolves token links for entities indexed before their
// mint events were in range. Runs once at startup, not per block; per-entity
// failures are logged and skipped so one dead entity cannot wedge startup.
func (d *Driver) BackfillEntityLinks(ctx context.Context) error {
	limit := d.opts.EntityBackfillLimit
	if limit <= 0 {
		limit = 500
	}

	hashes, err := d.store.GetUnlinkedEntityHashes(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list unlinked entities: %w", err)
	}
	if len(hashes) == 0 {
		return nil
	}

	logger.InfoCtx(ctx, "backfilling entity token links",
		zap.Int("count", len(hashes)), zap.String("run_id", d.state.RunID))

	linked := 0
	for _, hash := range hashes {
		felt, err := domain.HexToFelt(hash)
		if err != nil {
			logger.WarnCtx(ctx, "skipping malformed entity hash", zap.String("entity_hash", hash))
			continue
		}

		tokenID, err := d.rpc.TokenIDByEntityHash(ctx, felt)
		if err != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("failed to resolve entity token: %w", err),
				zap.String("entity_hash", hash))
			continue
		}
		if tokenID == 0 {
			// Entity has no collectable token yet; leave it for a later run.
			continue
		}

		if err := d.store.LinkEntityTokenID(ctx, hash, tokenID); err != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("failed to link entity token: %w", err),
				zap.String("entity_hash", hash), zap.Uint64("token_id", tokenID))
			continue
		}
		linked++
	}

	logger.InfoCtx(ctx, "entity link backfill finished",
		zap.Int("linked", linked), zap.Int("scanned", len(hashes)))
	return nil
}

// ProcessBlock runs the full pipeline for one block. It is the transport's
// BlockHandler: returning an error leaves the block unacknowledged for
// redelivery, so everything it writes must be (and is) idempotent.
func (d *Driver) ProcessBlock(ctx context.Context, block *domain.Block) error {
	start := time.Now()
	header := block.Header

	if prev := d.state.noteBlock(header.Number); prev != 0 && header.Number != prev+1 {
		logger.WarnCtx(ctx, "non-contiguous block delivery",
			zap.Uint64("previous", prev), zap.Uint64("current", header.Number))
	}

	decoded := d.decodeEvents(ctx, block)

	contexts, err := d.resolveContexts(ctx, decoded)
	if err != nil {
		return err
	}

	batch := store.NewBlockBatch(header)
	trades := market.NewResolver(d.opts.MarketPool, d.opts.RewardToken)

	var metaGroup pond.TaskGroup
	var metaMu sync.Mutex
	fetched := make(map[uint64]*schema.Beast)

	for _, ev := range decoded {
		switch e := ev.event.(type) {
		case domain.BeastTransfer:
			d.handleBeastTransfer(ctx, e, ev.raw, header, batch, contexts, &metaGroup, &metaMu, fetched)
		case domain.PackedStatBatch:
			for slot, stats := range e.Stats {
				d.applySnapshot(stats, slot, ev.raw, header, batch, contexts)
			}
		case domain.SingleStatUpdate:
			d.handleSingleStat(e, ev.raw, header, batch, contexts)
		case domain.Battle:
			d.handleBattle(e, ev.raw, header, batch, contexts)
		case domain.RewardEarned:
			batch.RewardsEarned = append(batch.RewardsEarned, schema.RewardEarned{
				BlockNumber: header.Number,
				TxHash:      ev.raw.TxHash,
				EventIndex:  domain.PrimaryLogIndex(ev.raw.EventIndex).Value(),
				TokenID:     e.TokenID,
				Amount:      int64(e.Amount.Whole()),
				CreatedAt:   header.Timestamp,
			})
		case domain.RewardClaimed:
			batch.RewardsClaimed = append(batch.RewardsClaimed, schema.RewardClaimed{
				BlockNumber: header.Number,
				TxHash:      ev.raw.TxHash,
				EventIndex:  domain.PrimaryLogIndex(ev.raw.EventIndex).Value(),
				TokenID:     e.TokenID,
				Player:      e.Player.Hex(),
				Amount:      int64(e.Amount.Whole()),
				CreatedAt:   header.Timestamp,
			})
		case domain.Poison:
			batch.Poisons = append(batch.Poisons, schema.PoisonEvent{
				BlockNumber: header.Number,
				TxHash:      ev.raw.TxHash,
				EventIndex:  domain.PrimaryLogIndex(ev.raw.EventIndex).Value(),
				TokenID:     e.TokenID,
				Player:      e.Player.Hex(),
				Count:       int32(e.Count),
				CreatedAt:   header.Timestamp,
			})
		case domain.Corpse:
			batch.Corpses = append(batch.Corpses, schema.CorpseEvent{
				BlockNumber: header.Number,
				TxHash:      ev.raw.TxHash,
				EventIndex:  domain.PrimaryLogIndex(ev.raw.EventIndex).Value(),
				TokenID:     e.TokenID,
				Player:      e.Player.Hex(),
				Health:      int32(e.Health),
				CreatedAt:   header.Timestamp,
			})
		case domain.SkullClaim:
			batch.Skulls = append(batch.Skulls, schema.SkullClaimed{
				BlockNumber: header.Number,
				TxHash:      ev.raw.TxHash,
				EventIndex:  domain.PrimaryLogIndex(ev.raw.EventIndex).Value(),
				Player:      e.Player.Hex(),
				EntityHash:  e.EntityHash.Hex(),
				Skulls:      int64(e.Skulls),
				CreatedAt:   header.Timestamp,
			})
		case domain.QuestRewardsClaimed:
			batch.QuestRewards = append(batch.QuestRewards, schema.QuestRewardClaimed{
				BlockNumber: header.Number,
				TxHash:      ev.raw.TxHash,
				EventIndex:  domain.PrimaryLogIndex(ev.raw.EventIndex).Value(),
				Player:      e.Player.Hex(),
				QuestID:     e.QuestID,
				Amount:      int64(e.Amount.Whole()),
				CreatedAt:   header.Timestamp,
			})
		case domain.EntityStats:
			batch.AddEntityData(schema.BeastData{
				EntityHash:         e.EntityHash.Hex(),
				AdventurersKilled:  int64(e.AdventurersKilled),
				LastDeathTimestamp: int64(e.LastDeathTimestamp),
			})
		case domain.CollectableEntity:
			tokenID := e.TokenID
			batch.AddEntityData(schema.BeastData{
				EntityHash: e.EntityHash.Hex(),
				TokenID:    &tokenID,
			})
		case domain.TokenTransfer:
			trades.AddTransfer(ev.raw.TxHash, ev.raw.EventIndex,
				e.Token, e.From, e.To, int64(e.Amount.Whole()))
		case domain.ConsumableTransfer:
			d.handleConsumableTransfer(e, ev.raw, trades, batch)
		}
	}

	// Market resolution is deferred by construction: legs from every
	// transaction in the block must be collected before netting.
	for _, row := range trades.Resolve(header) {
		batch.AddLog(row)
	}

	if metaGroup != nil {
		if err := metaGroup.Wait(); err != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("metadata fetches failed: %w", err),
				zap.Uint64("block", header.Number))
		}
		metaMu.Lock()
		for _, beast := range fetched {
			batch.AddBeast(*beast)
		}
		metaMu.Unlock()
	}

	if !batch.Empty() {
		if err := d.store.CommitBlockBatch(ctx, batch); err != nil {
			return err
		}
	}

	// The cursor is advisory: idempotent writes make replays harmless, so a
	// cursor write failure is logged rather than failing the block.
	if err := d.store.SetBlockCursor(ctx, cursorChain, header.Number); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to advance block cursor: %w", err),
			zap.Uint64("block", header.Number))
	}

	logger.DebugCtx(ctx, "block processed",
		zap.Uint64("block", header.Number),
		zap.Int("events", len(block.Events)),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// decodedEvent pairs a typed event with the raw event it came from, keeping
// block position available to the handlers.
type decodedEvent struct {
	raw   domain.RawEvent
	event domain.DecodedEvent
}

// decodeEvents decodes the whole block up front. Undecodable events are
// skipped one at a time: unknown selectors are routine (unwatched events
// share contracts with watched ones) and logged at debug, while shape
// mismatches on known selectors are real faults and logged as errors. The
// block itself is never failed for either.
func (d *Driver) decodeEvents(ctx context.Context, block *domain.Block) []decodedEvent {
	decoded := make([]decodedEvent, 0, len(block.Events))
	for _, raw := range block.Events {
		ev, err := d.decoder.Decode(raw)
		if err != nil {
			if errors.Is(err, domain.ErrMalformedEvent) {
				logger.ErrorCtx(ctx, err,
					zap.Uint64("block", raw.BlockNumber),
					zap.String("tx", raw.TxHash),
					zap.Uint32("event_index", raw.EventIndex))
			} else {
				logger.DebugCtx(ctx, "skipping unknown event",
					zap.String("selector", raw.Selector().Hex()),
					zap.String("contract", raw.ContractAddress.Hex()))
			}
			continue
		}
		decoded = append(decoded, decodedEvent{raw: raw, event: ev})
	}
	return decoded
}

// resolveContexts prescans the decoded events for every referenced token id
// and batch-loads their contexts in at most two queries.
func (d *Driver) resolveContexts(ctx context.Context, decoded []decodedEvent) (map[uint64]*resolver.BeastContext, error) {
	idSet := make(map[uint64]struct{})
	for _, ev := range decoded {
		switch e := ev.event.(type) {
		case domain.BeastTransfer:
			idSet[e.TokenID] = struct{}{}
		case domain.PackedStatBatch:
			for _, stats := range e.Stats {
				idSet[stats.TokenID] = struct{}{}
			}
		case domain.SingleStatUpdate:
			idSet[e.TokenID] = struct{}{}
		case domain.Battle:
			idSet[e.AttackerTokenID] = struct{}{}
		case domain.RewardEarned:
			idSet[e.TokenID] = struct{}{}
		case domain.RewardClaimed:
			idSet[e.TokenID] = struct{}{}
		case domain.Poison:
			idSet[e.TokenID] = struct{}{}
		case domain.Corpse:
			idSet[e.TokenID] = struct{}{}
		}
	}

	tokenIDs := make([]uint64, 0, len(idSet))
	for id := range idSet {
		tokenIDs = append(tokenIDs, id)
	}

	contexts, err := d.resolver.ResolveBlock(ctx, tokenIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve block contexts: %w", err)
	}
	return contexts, nil
}

// handleBeastTransfer records the new owner and, on first sight of a token
// with no stored metadata, schedules a concurrent metadata fetch. Fetch
// failures only delay metadata; ownership is recorded regardless.
func (d *Driver) handleBeastTransfer(ctx context.Context, e domain.BeastTransfer, raw domain.RawEvent,
	header domain.BlockHeader, batch *store.BlockBatch, contexts map[uint64]*resolver.BeastContext,
	metaGroup *pond.TaskGroup, metaMu *sync.Mutex, fetched map[uint64]*schema.Beast) {

	owner := e.To.Hex()
	batch.AddOwner(schema.BeastOwner{
		TokenID:     e.TokenID,
		Owner:       owner,
		BlockNumber: header.Number,
	})
	if bc, ok := contexts[e.TokenID]; ok {
		bc.Owner = owner
	}

	needsMetadata := true
	if bc, ok := contexts[e.TokenID]; ok && bc.Metadata != nil {
		needsMetadata = false
	}
	if !needsMetadata || !d.state.markFetched(e.TokenID) {
		return
	}

	if *metaGroup == nil {
		*metaGroup = d.metaPool.NewGroup()
	}
	tokenID := e.TokenID
	(*metaGroup).SubmitErr(func() error {
		beast, err := d.rpc.BeastMetadata(ctx, tokenID)
		if err != nil {
			d.state.unmarkFetched(tokenID)
			return fmt.Errorf("failed to fetch metadata for token %d: %w", tokenID, err)
		}
		metaMu.Lock()
		fetched[tokenID] = beast
		metaMu.Unlock()
		return nil
	})
}

// applySnapshot reconciles one full stat snapshot against the beast's
// previous state, emits derived log entries, stages the new snapshot and
// advances the in-memory context so later events in this block diff against
// it rather than the start-of-block state. slot is the snapshot's position
// within its raw event; batch events carry one snapshot per beast and each
// slot's derived entries must land on distinct event_index values.
func (d *Driver) applySnapshot(stats domain.BeastStats, slot int, raw domain.RawEvent,
	header domain.BlockHeader, batch *store.BlockBatch, contexts map[uint64]*resolver.BeastContext) {

	bc := contexts[stats.TokenID]
	if bc == nil {
		bc = &resolver.BeastContext{TokenID: stats.TokenID}
		contexts[stats.TokenID] = bc
	}

	entries := d.reconcile.Reconcile(slot, bc.PrevStats, stats)
	if sc := d.reconcile.SummitChange(slot, bc.PrevStats, stats); sc != nil {
		entries = append(entries, *sc)
	}
	for _, row := range reconciler.BindEntries(entries, header, raw.TxHash, raw.EventIndex, stats.TokenID, bc.Owner) {
		batch.AddLog(row)
	}

	batch.AddStats(resolver.RowFromStats(stats, header.Number))

	next := stats
	bc.PrevStats = &next
}

// handleSingleStat overlays a one-field update on the beast's current state
// and runs it through the same snapshot path, so single updates and packed
// batches produce identical derived entries.
func (d *Driver) handleSingleStat(e domain.SingleStatUpdate, raw domain.RawEvent,
	header domain.BlockHeader, batch *store.BlockBatch, contexts map[uint64]*resolver.BeastContext) {

	base := domain.BeastStats{TokenID: e.TokenID}
	if bc := contexts[e.TokenID]; bc != nil && bc.PrevStats != nil {
		base = *bc.PrevStats
	}

	next := reconciler.ApplySingleStat(base, e.Field, e.Value)
	d.applySnapshot(next, 0, raw, header, batch, contexts)
}

// handleBattle records the battle row and its log entry.
func (d *Driver) handleBattle(e domain.Battle, raw domain.RawEvent,
	header domain.BlockHeader, batch *store.BlockBatch, contexts map[uint64]*resolver.BeastContext) {

	payload, _ := json.Marshal(map[string]interface{}{
		"attacker_token_id": e.AttackerTokenID,
		"defender_hash":     e.DefenderHash.Hex(),
		"damage":            e.Damage,
		"counter_damage":    e.CounterDamage,
		"attack_streak":     e.AttackStreak,
	})

	batch.Battles = append(batch.Battles, schema.Battle{
		BlockNumber:     header.Number,
		TxHash:          raw.TxHash,
		EventIndex:      domain.PrimaryLogIndex(raw.EventIndex).Value(),
		AttackerTokenID: e.AttackerTokenID,
		DefenderHash:    e.DefenderHash.Hex(),
		Damage:          int32(e.Damage),
		CounterDamage:   int32(e.CounterDamage),
		AttackStreak:    int32(e.AttackStreak),
		Raw:             payload,
		CreatedAt:       header.Timestamp,
	})

	owner := ""
	if bc := contexts[e.AttackerTokenID]; bc != nil {
		owner = bc.Owner
	}
	batch.AddLog(schema.SummitLog{
		BlockNumber: header.Number,
		TxHash:      raw.TxHash,
		EventIndex:  domain.PrimaryLogIndex(raw.EventIndex).Value(),
		Category:    schema.LogCategoryBattle,
		SubCategory: schema.LogSubCategoryAttack,
		Data:        payload,
		Player:      owner,
		TokenID:     e.AttackerTokenID,
		CreatedAt:   header.Timestamp,
	})
}

// handleConsumableTransfer stages balance deltas for both sides of the
// transfer and feeds the legs to the market resolver. Consumable types are
// distinguished as market assets by their type id.
func (d *Driver) handleConsumableTransfer(e domain.ConsumableTransfer, raw domain.RawEvent,
	trades *market.Resolver, batch *store.BlockBatch) {

	amount := int64(e.Amount.Whole())
	if amount == 0 {
		return
	}

	if !e.From.IsZero() {
		batch.AddConsumableDelta(schema.ConsumableDelta{
			Owner:     e.From.Hex(),
			TokenType: e.TokenType,
			Delta:     -amount,
		})
	}
	if !e.To.IsZero() {
		batch.AddConsumableDelta(schema.ConsumableDelta{
			Owner:     e.To.Hex(),
			TokenType: e.TokenType,
			Delta:     amount,
		})
	}

	trades.AddTransfer(raw.TxHash, raw.EventIndex,
		domain.FeltFromUint64(e.TokenType), e.From, e.To, amount)
}
