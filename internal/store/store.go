package store

import (
	"context"

	"github.com/summit-gg/beast-indexer/internal/store/schema"
)

// BeastContextRow is one result of the primary context join: the current
// stat snapshot with its metadata and owner attached when present.
type BeastContextRow struct {
	Stats    schema.BeastStats
	Beast    *schema.Beast
	Owner    string
	HasBeast bool
}

// BeastFallbackRow is one result of the fallback lookup for tokens that
// have no stat snapshot yet.
type BeastFallbackRow struct {
	TokenID uint64
	Beast   *schema.Beast
	Owner   string
}

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// GetBeastContexts batch-loads current stat snapshots joined with
	// metadata and ownership for the given tokens (one query)
	GetBeastContexts(ctx context.Context, tokenIDs []uint64) ([]BeastContextRow, error)
	// GetBeastsWithOwners batch-loads metadata and ownership for tokens
	// that have no stat snapshot yet (one query)
	GetBeastsWithOwners(ctx context.Context, tokenIDs []uint64) ([]BeastFallbackRow, error)
	// CommitBlockBatch writes every table batch of one block with the
	// table's conflict policy; any failure aborts the block
	CommitBlockBatch(ctx context.Context, batch *BlockBatch) error
	// GetUnlinkedEntityHashes returns entity hashes whose beast_data row
	// has no token link yet
	GetUnlinkedEntityHashes(ctx context.Context, limit int) ([]string, error)
	// LinkEntityTokenID fills an entity's token link, preserving an
	// existing link if one was set concurrently
	LinkEntityTokenID(ctx context.Context, entityHash string, tokenID uint64) error
	// GetBlockCursor retrieves the last processed block number
	GetBlockCursor(ctx context.Context, chain string) (uint64, error)
	// SetBlockCursor stores the last processed block number
	SetBlockCursor(ctx context.Context, chain string, blockNumber uint64) error
}
