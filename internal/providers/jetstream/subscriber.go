package jetstream

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/summit-gg/beast-indexer/internal/adapter"
	"github.com/summit-gg/beast-indexer/internal/domain"
	"github.com/summit-gg/beast-indexer/internal/logger"
	"github.com/summit-gg/beast-indexer/internal/messaging"
)

// Config holds the configuration for NATS JetStream connection
type Config struct {
	URL            string
	StreamName     string
	ConsumerName   string
	Subject        string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
	AckWait        time.Duration
}

type subscriber struct {
	nc       adapter.NatsConn
	js       adapter.JetStream
	cfg      Config
	json     adapter.JSON
	consumeC adapter.ConsumeContext
}

// NewSubscriber connects to NATS and creates a durable pull consumer on the
// block stream. MaxAckPending of 1 is what enforces sequential delivery: the
// next block is not handed out until the previous one is acknowledged.
func NewSubscriber(cfg Config, natsJS adapter.NatsJetStream, jsonAdapter adapter.JSON) (messaging.BlockSubscriber, error) {
	opts := []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, js, err := natsJS.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	return &subscriber{
		nc:   nc,
		js:   js,
		cfg:  cfg,
		json: jsonAdapter,
	}, nil
}

// Subscribe creates or updates the durable consumer and starts consuming.
// Each message is one block; a handler error Naks the message so JetStream
// redelivers it, which is safe because every block write path is idempotent.
func (s *subscriber) Subscribe(ctx context.Context, handler messaging.BlockHandler) error {
	ackWait := s.cfg.AckWait
	if ackWait == 0 {
		ackWait = 2 * time.Minute
	}

	consumer, err := s.js.CreateOrUpdateConsumer(ctx, s.cfg.StreamName, jetstream.ConsumerConfig{
		Durable:       s.cfg.ConsumerName,
		FilterSubject: s.cfg.Subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       ackWait,
		MaxAckPending: 1,
		DeliverPolicy: jetstream.DeliverAllPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	consumeCtx, err := consumer.Consume(func(msg adapter.Message) {
		s.handleMessage(ctx, msg, handler)
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	s.consumeC = consumeCtx

	return nil
}

func (s *subscriber) handleMessage(ctx context.Context, msg adapter.Message, handler messaging.BlockHandler) {
	var block domain.Block
	if err := s.json.Unmarshal(msg.Data(), &block); err != nil {
		// A message that cannot decode will never decode; terminate it
		// instead of looping redeliveries.
		logger.ErrorCtx(ctx, fmt.Errorf("failed to decode block message: %w", err))
		if termErr := msg.Term(); termErr != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("failed to terminate message: %w", termErr))
		}
		return
	}

	if err := handler(ctx, &block); err != nil {
		logger.ErrorCtx(ctx, err, zap.Uint64("block", block.Header.Number))
		if nakErr := msg.Nak(); nakErr != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("failed to nak block message: %w", nakErr))
		}
		return
	}

	if err := msg.Ack(); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to ack block message: %w", err), zap.Uint64("block", block.Header.Number))
	}
}

// Close stops consumption and closes the NATS connection
func (s *subscriber) Close() {
	if s.consumeC != nil {
		s.consumeC.Drain()
	}
	if s.nc != nil {
		s.nc.Close()
	}
}
