package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/summit-gg/beast-indexer/internal/adapter"
	"github.com/summit-gg/beast-indexer/internal/config"
	"github.com/summit-gg/beast-indexer/internal/decoder"
	"github.com/summit-gg/beast-indexer/internal/domain"
	"github.com/summit-gg/beast-indexer/internal/driver"
	"github.com/summit-gg/beast-indexer/internal/logger"
	"github.com/summit-gg/beast-indexer/internal/providers/jetstream"
	"github.com/summit-gg/beast-indexer/internal/providers/rpc"
	"github.com/summit-gg/beast-indexer/internal/resolver"
	"github.com/summit-gg/beast-indexer/internal/store"
)

var (
	configPath = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "", "Path to env file directory")
)

func main() {
	flag.Parse()

	// Relative config/ and env paths resolve against the repository root
	// regardless of where the binary was launched from.
	config.ChdirRepoRoot()

	// Load configuration
	cfg, err := config.LoadIndexerConfig(*configPath, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags:      map[string]string{"service": "beast-indexer"},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	logger.Info("Starting Beast Indexer")

	contracts, pool, err := parseAddresses(cfg.Game)
	if err != nil {
		logger.Fatal("Invalid contract address", zap.Error(err))
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := store.ConfigureConnectionPool(db,
		cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns,
		cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.Fatal("Failed to configure connection pool", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Initialize store and pipeline components
	dataStore := store.NewPGStore(db)

	httpClient := adapter.NewHTTPClient(cfg.Worker.MetadataRPCTimeout)
	rpcClient := rpc.NewClient(cfg.Game.RPCURL, httpClient, contracts.Beasts, contracts.Summit)

	blockDriver := driver.New(
		decoder.New(contracts),
		resolver.NewContextResolver(dataStore),
		dataStore,
		rpcClient,
		driver.Options{
			MetadataPoolSize:    cfg.Worker.MetadataPoolSize,
			EntityBackfillLimit: cfg.Game.EntityBackfillLimit,
			MarketPool:          pool,
			RewardToken:         contracts.RewardToken,
		},
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// One-time startup backfill of entity token links
	if err := blockDriver.BackfillEntityLinks(ctx); err != nil {
		logger.Fatal("Entity link backfill failed", zap.Error(err))
	}

	// Subscribe to the block stream
	subscriber, err := jetstream.NewSubscriber(
		jetstream.Config{
			URL:            cfg.NATS.URL,
			StreamName:     cfg.NATS.StreamName,
			ConsumerName:   cfg.NATS.ConsumerName,
			Subject:        cfg.NATS.Subject,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectionName: cfg.NATS.ConnectionName,
			AckWait:        cfg.NATS.AckWait,
		},
		adapter.NewNatsJetStream(),
		adapter.NewJSON(),
	)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer subscriber.Close()

	if err := subscriber.Subscribe(ctx, blockDriver.ProcessBlock); err != nil {
		logger.Fatal("Failed to subscribe to block stream", zap.Error(err))
	}
	logger.Info("Subscribed to block stream",
		zap.String("stream", cfg.NATS.StreamName),
		zap.String("consumer", cfg.NATS.ConsumerName))

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	cancel()

	// Give some time for graceful shutdown
	time.Sleep(time.Second)
	logger.Flush(5 * time.Second)

	logger.Info("Beast Indexer stopped")
}

// parseAddresses validates and converts the configured contract addresses.
func parseAddresses(game config.GameConfig) (decoder.Contracts, domain.Felt, error) {
	var contracts decoder.Contracts
	var pool domain.Felt

	for _, addr := range []struct {
		name  string
		value string
		dst   *domain.Felt
	}{
		{"summit_address", game.SummitAddress, &contracts.Summit},
		{"beasts_address", game.BeastsAddress, &contracts.Beasts},
		{"reward_token_address", game.RewardTokenAddress, &contracts.RewardToken},
		{"consumables_address", game.ConsumablesAddress, &contracts.Consumables},
		{"market_pool_address", game.MarketPoolAddress, &pool},
	} {
		if addr.value == "" {
			continue
		}
		felt, err := domain.HexToFelt(addr.value)
		if err != nil {
			return contracts, pool, fmt.Errorf("invalid %s: %w", addr.name, err)
		}
		*addr.dst = felt
	}

	return contracts, pool, nil
}
