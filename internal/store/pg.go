package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/alitto/pond/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/summit-gg/beast-indexer/internal/store/schema"
)

// commitConcurrency bounds how many table batches a single block commit
// writes in parallel. Per-table conflict policies are self-contained, so no
// cross-table ordering is required.
const commitConcurrency = 8

type pgStore struct {
	db   *gorm.DB
	pool pond.Pool
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{
		db:   db,
		pool: pond.NewPool(commitConcurrency),
	}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// It accesses the underlying *sql.DB and sets the pool configuration.
// If any of the pool settings are 0 or empty, reasonable defaults are used:
//   - MaxOpenConns: 20 (if 0)
//   - MaxIdleConns: 5 (if 0)
//   - ConnMaxLifetime: 5 minutes (if 0)
//   - ConnMaxIdleTime: 10 minutes (if 0)
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns <= 0 {
		maxOpenConns = 20
	}
	if maxIdleConns <= 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime <= 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime <= 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}
	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// calculateSafeBatchSize computes the batch size for bulk inserts that stays
// under PostgreSQL's 65535-parameter limit for the extended protocol. Each
// record consumes one parameter per field, and ON CONFLICT clauses plus GORM
// bookkeeping add batch-level overhead, reserved as headroom.
func calculateSafeBatchSize(totalRecords int, fieldsPerRecord int) int {
	const maxParams = 65535
	const totalHeadroom = 1000

	safeBatchSize := max((maxParams-totalHeadroom)/fieldsPerRecord, 1)
	if safeBatchSize > totalRecords {
		return totalRecords
	}
	return safeBatchSize
}

// GetBeastContexts batch-loads the current stat projection joined with
// metadata and ownership for every given token in a single query.
func (s *pgStore) GetBeastContexts(ctx context.Context, tokenIDs []uint64) ([]BeastContextRow, error) {
	if len(tokenIDs) == 0 {
		return []BeastContextRow{}, nil
	}

	var results []struct {
		schema.BeastStats
		BeastID     *int32 `gorm:"column:beast_id"`
		Prefix      *int32 `gorm:"column:prefix"`
		Suffix      *int32 `gorm:"column:suffix"`
		Shiny       *bool  `gorm:"column:shiny"`
		Animated    *bool  `gorm:"column:animated"`
		Owner       string `gorm:"column:owner"`
		BeastExists bool   `gorm:"column:beast_exists"`
	}

	err := s.db.WithContext(ctx).
		Table("beast_stats").
		Select(`beast_stats.*,
			beasts.beast_id AS beast_id, beasts.prefix AS prefix, beasts.suffix AS suffix,
			beasts.shiny AS shiny, beasts.animated AS animated,
			COALESCE(beast_owners.owner, '') AS owner,
			(beasts.token_id IS NOT NULL) AS beast_exists`).
		Joins("LEFT JOIN beasts ON beasts.token_id = beast_stats.token_id").
		Joins("LEFT JOIN beast_owners ON beast_owners.token_id = beast_stats.token_id").
		Where("beast_stats.token_id IN ?", tokenIDs).
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get beast contexts: %w", err)
	}

	rows := make([]BeastContextRow, 0, len(results))
	for _, r := range results {
		row := BeastContextRow{
			Stats:    r.BeastStats,
			Owner:    r.Owner,
			HasBeast: r.BeastExists,
		}
		if r.BeastExists {
			row.Beast = &schema.Beast{
				TokenID:  r.BeastStats.TokenID,
				BeastID:  derefOr(r.BeastID, 0),
				Prefix:   derefOr(r.Prefix, 0),
				Suffix:   derefOr(r.Suffix, 0),
				Shiny:    derefOr(r.Shiny, false),
				Animated: derefOr(r.Animated, false),
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func derefOr[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

// GetBeastsWithOwners is the fallback lookup for tokens absent from the
// stats projection: metadata and ownership in one query.
func (s *pgStore) GetBeastsWithOwners(ctx context.Context, tokenIDs []uint64) ([]BeastFallbackRow, error) {
	if len(tokenIDs) == 0 {
		return []BeastFallbackRow{}, nil
	}

	var results []struct {
		schema.Beast
		Owner string `gorm:"column:owner"`
	}

	err := s.db.WithContext(ctx).
		Table("beasts").
		Select("beasts.*, COALESCE(beast_owners.owner, '') AS owner").
		Joins("LEFT JOIN beast_owners ON beast_owners.token_id = beasts.token_id").
		Where("beasts.token_id IN ?", tokenIDs).
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get beasts with owners: %w", err)
	}

	rows := make([]BeastFallbackRow, 0, len(results))
	for _, r := range results {
		beast := r.Beast
		rows = append(rows, BeastFallbackRow{
			TokenID: beast.TokenID,
			Beast:   &beast,
			Owner:   r.Owner,
		})
	}

	return rows, nil
}

// CommitBlockBatch writes every table batch of one block concurrently. Each
// table carries its own conflict policy, so ordering between tables does not
// matter; any single failure fails the whole commit and the block is
// redelivered by the transport.
func (s *pgStore) CommitBlockBatch(ctx context.Context, batch *BlockBatch) error {
	if batch.Empty() {
		return nil
	}

	group := s.pool.NewGroup()

	group.SubmitErr(func() error { return s.upsertStats(ctx, batch.Stats()) })
	group.SubmitErr(func() error { return s.upsertOwners(ctx, batch.Owners()) })
	group.SubmitErr(func() error { return s.insertBeasts(ctx, batch.Beasts()) })
	group.SubmitErr(func() error { return s.mergeEntityData(ctx, batch.EntityData()) })
	group.SubmitErr(func() error { return s.mergeConsumables(ctx, batch.ConsumableDeltas()) })
	group.SubmitErr(func() error { return s.insertLogs(ctx, batch.Logs) })
	group.SubmitErr(func() error { return s.insertBattles(ctx, batch.Battles) })
	group.SubmitErr(func() error { return s.insertRewardsEarned(ctx, batch.RewardsEarned) })
	group.SubmitErr(func() error { return s.insertRewardsClaimed(ctx, batch.RewardsClaimed) })
	group.SubmitErr(func() error { return s.insertPoisons(ctx, batch.Poisons) })
	group.SubmitErr(func() error { return s.insertCorpses(ctx, batch.Corpses) })
	group.SubmitErr(func() error { return s.insertSkulls(ctx, batch.Skulls) })
	group.SubmitErr(func() error { return s.insertQuestRewards(ctx, batch.QuestRewards) })

	if err := group.Wait(); err != nil {
		return fmt.Errorf("failed to commit block %d: %w", batch.Header.Number, err)
	}

	return nil
}

// upsertStats applies the latest-state policy: new snapshot values replace
// old ones unconditionally.
func (s *pgStore) upsertStats(ctx context.Context, rows []schema.BeastStats) error {
	if len(rows) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "token_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"current_health", "bonus_health", "spirit", "luck",
			"extra_lives", "max_attack_streak",
			"rewards_earned", "rewards_claimed",
			"specials_unlocked", "wisdom_unlocked", "diplomacy_unlocked",
			"captured_summit", "used_revival_potion", "used_attack_potion",
			"block_number", "updated_at",
		}),
	}).CreateInBatches(rows, calculateSafeBatchSize(len(rows), 17)).Error
	if err != nil {
		return fmt.Errorf("failed to upsert beast stats: %w", err)
	}

	return nil
}

// upsertOwners applies the latest-state policy to ownership rows.
func (s *pgStore) upsertOwners(ctx context.Context, rows []schema.BeastOwner) error {
	if len(rows) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"owner", "block_number", "updated_at"}),
	}).CreateInBatches(rows, calculateSafeBatchSize(len(rows), 4)).Error
	if err != nil {
		return fmt.Errorf("failed to upsert beast owners: %w", err)
	}

	return nil
}

// insertBeasts inserts immutable metadata rows, skipping tokens already
// recorded.
func (s *pgStore) insertBeasts(ctx context.Context, rows []schema.Beast) error {
	if len(rows) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token_id"}},
		DoNothing: true,
	}).CreateInBatches(rows, calculateSafeBatchSize(len(rows), 7)).Error
	if err != nil {
		return fmt.Errorf("failed to insert beasts: %w", err)
	}

	return nil
}

// mergeEntityData applies the monotonic-max policy to kill counters and
// death timestamps, and keeps an existing token link over an incoming one.
// A redelivered or stale row can never move a counter backward or clear a
// link.
func (s *pgStore) mergeEntityData(ctx context.Context, rows []schema.BeastData) error {
	if len(rows) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "entity_hash"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"adventurers_killed":   gorm.Expr("GREATEST(beast_data.adventurers_killed, EXCLUDED.adventurers_killed)"),
			"last_death_timestamp": gorm.Expr("GREATEST(beast_data.last_death_timestamp, EXCLUDED.last_death_timestamp)"),
			"token_id":             gorm.Expr("COALESCE(beast_data.token_id, EXCLUDED.token_id)"),
			"updated_at":           gorm.Expr("now()"),
		}),
	}).CreateInBatches(rows, calculateSafeBatchSize(len(rows), 5)).Error
	if err != nil {
		return fmt.Errorf("failed to merge entity data: %w", err)
	}

	return nil
}

// mergeConsumables applies signed balance deltas additively with a floor at
// zero, covering both fresh rows and existing balances. GORM's conflict
// clause cannot express the floor for the insert path, so this one runs as
// raw SQL per merged delta.
func (s *pgStore) mergeConsumables(ctx context.Context, deltas []schema.ConsumableDelta) error {
	for _, d := range deltas {
		err := s.db.WithContext(ctx).Exec(`
			INSERT INTO consumables (owner, token_type, balance, updated_at)
			VALUES (?, ?, GREATEST(?, 0), now())
			ON CONFLICT (owner, token_type)
			DO UPDATE SET balance = GREATEST(consumables.balance + ?, 0), updated_at = now()`,
			d.Owner, d.TokenType, d.Delta, d.Delta,
		).Error
		if err != nil {
			return fmt.Errorf("failed to merge consumable balance for %s/%d: %w", d.Owner, d.TokenType, err)
		}
	}

	return nil
}

// insertLogs appends log entries, dropping duplicates on the natural key.
func (s *pgStore) insertLogs(ctx context.Context, rows []schema.SummitLog) error {
	if len(rows) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "block_number"}, {Name: "tx_hash"}, {Name: "event_index"}, {Name: "token_id"}},
		DoNothing: true,
	}).CreateInBatches(rows, calculateSafeBatchSize(len(rows), 10)).Error
	if err != nil {
		return fmt.Errorf("failed to insert summit logs: %w", err)
	}

	return nil
}

func (s *pgStore) insertBattles(ctx context.Context, rows []schema.Battle) error {
	if len(rows) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "block_number"}, {Name: "tx_hash"}, {Name: "event_index"}},
		DoNothing: true,
	}).CreateInBatches(rows, calculateSafeBatchSize(len(rows), 10)).Error
	if err != nil {
		return fmt.Errorf("failed to insert battles: %w", err)
	}

	return nil
}

func (s *pgStore) insertRewardsEarned(ctx context.Context, rows []schema.RewardEarned) error {
	if len(rows) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "block_number"}, {Name: "tx_hash"}, {Name: "event_index"}},
		DoNothing: true,
	}).CreateInBatches(rows, calculateSafeBatchSize(len(rows), 6)).Error
	if err != nil {
		return fmt.Errorf("failed to insert rewards earned: %w", err)
	}

	return nil
}

func (s *pgStore) insertRewardsClaimed(ctx context.Context, rows []schema.RewardClaimed) error {
	if len(rows) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "block_number"}, {Name: "tx_hash"}, {Name: "event_index"}},
		DoNothing: true,
	}).CreateInBatches(rows, calculateSafeBatchSize(len(rows), 7)).Error
	if err != nil {
		return fmt.Errorf("failed to insert rewards claimed: %w", err)
	}

	return nil
}

func (s *pgStore) insertPoisons(ctx context.Context, rows []schema.PoisonEvent) error {
	if len(rows) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "block_number"}, {Name: "tx_hash"}, {Name: "event_index"}},
		DoNothing: true,
	}).CreateInBatches(rows, calculateSafeBatchSize(len(rows), 7)).Error
	if err != nil {
		return fmt.Errorf("failed to insert poison events: %w", err)
	}

	return nil
}

func (s *pgStore) insertCorpses(ctx context.Context, rows []schema.CorpseEvent) error {
	if len(rows) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "block_number"}, {Name: "tx_hash"}, {Name: "event_index"}},
		DoNothing: true,
	}).CreateInBatches(rows, calculateSafeBatchSize(len(rows), 7)).Error
	if err != nil {
		return fmt.Errorf("failed to insert corpse events: %w", err)
	}

	return nil
}

func (s *pgStore) insertSkulls(ctx context.Context, rows []schema.SkullClaimed) error {
	if len(rows) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "block_number"}, {Name: "tx_hash"}, {Name: "event_index"}},
		DoNothing: true,
	}).CreateInBatches(rows, calculateSafeBatchSize(len(rows), 8)).Error
	if err != nil {
		return fmt.Errorf("failed to insert skull claims: %w", err)
	}

	return nil
}

func (s *pgStore) insertQuestRewards(ctx context.Context, rows []schema.QuestRewardClaimed) error {
	if len(rows) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "block_number"}, {Name: "tx_hash"}, {Name: "event_index"}},
		DoNothing: true,
	}).CreateInBatches(rows, calculateSafeBatchSize(len(rows), 8)).Error
	if err != nil {
		return fmt.Errorf("failed to insert quest rewards: %w", err)
	}

	return nil
}

// GetUnlinkedEntityHashes lists entities whose beast_data row has no token
// link yet. Used by the startup backfill.
func (s *pgStore) GetUnlinkedEntityHashes(ctx context.Context, limit int) ([]string, error) {
	var hashes []string
	err := s.db.WithContext(ctx).
		Model(&schema.BeastData{}).
		Where("token_id IS NULL").
		Order("entity_hash").
		Limit(limit).
		Pluck("entity_hash", &hashes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get unlinked entity hashes: %w", err)
	}

	return hashes, nil
}

// LinkEntityTokenID fills an entity's token link. COALESCE keeps a link set
// concurrently; a link is never overwritten or cleared.
func (s *pgStore) LinkEntityTokenID(ctx context.Context, entityHash string, tokenID uint64) error {
	err := s.db.WithContext(ctx).
		Model(&schema.BeastData{}).
		Where("entity_hash = ?", entityHash).
		Update("token_id", gorm.Expr("COALESCE(token_id, ?)", tokenID)).Error
	if err != nil {
		return fmt.Errorf("failed to link entity %s to token %d: %w", entityHash, tokenID, err)
	}

	return nil
}

// GetBlockCursor retrieves the last processed block number
func (s *pgStore) GetBlockCursor(ctx context.Context, chain string) (uint64, error) {
	key := fmt.Sprintf("block_cursor:%s", chain)

	var kv schema.KeyValueStore
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&kv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get block cursor: %w", err)
	}

	blockNumber, err := strconv.ParseUint(kv.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse block cursor: %w", err)
	}

	return blockNumber, nil
}

// SetBlockCursor stores the last processed block number
func (s *pgStore) SetBlockCursor(ctx context.Context, chain string, blockNumber uint64) error {
	kv := schema.KeyValueStore{
		Key:   fmt.Sprintf("block_cursor:%s", chain),
		Value: strconv.FormatUint(blockNumber, 10),
	}

	if err := s.db.WithContext(ctx).Save(&kv).Error; err != nil {
		return fmt.Errorf("failed to set block cursor: %w", err)
	}

	return nil
}
