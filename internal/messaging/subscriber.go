package messaging

import (
	"context"

	"github.com/summit-gg/beast-indexer/internal/domain"
)

// BlockHandler is called once per delivered block, in stream order. A nil
// return acknowledges the block; an error leaves it unacknowledged so the
// transport redelivers it. Handlers must therefore be idempotent.
type BlockHandler func(ctx context.Context, block *domain.Block) error

// BlockSubscriber delivers the chain's block stream to the driver, one
// block at a time and strictly in order.
//
//go:generate mockgen -source=subscriber.go -destination=../mocks/subscriber.go -package=mocks -mock_names=BlockSubscriber=MockBlockSubscriber
type BlockSubscriber interface {
	// Subscribe starts delivering blocks to handler until ctx is cancelled
	// or the subscription fails
	Subscribe(ctx context.Context, handler BlockHandler) error

	// Close closes the connection and cleans up resources
	Close()
}
