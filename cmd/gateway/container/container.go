package container

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/redis/go-redis/v9"

	"github.com/justicantus/mediagate/cmd/gateway/service"
	"github.com/justicantus/mediagate/common/bootstrap"
	"github.com/justicantus/mediagate/common/ipfs"
	"github.com/justicantus/mediagate/common/oracle"
	"github.com/justicantus/mediagate/common/ratelimit"
	"github.com/justicantus/mediagate/common/sniff"
)

// Container holds all initialized clients and services (singleton pattern)
type Container struct {
	Components *bootstrap.Components

	// Clients
	Store  *ipfs.Client
	Oracle *oracle.Platform

	// Services
	Ingest *service.IngestService
	Egress *service.EgressService

	// Optional abuse protection
	RateLimiter *ratelimit.Limiter
}

// NewContainer initializes all clients and services once
func NewContainer(components *bootstrap.Components) (*Container, error) {
	cfg := components.Config

	encryptorKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.Oracle.EncryptorKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid encryptor private key: %w", err)
	}

	if !common.IsHexAddress(cfg.Oracle.ContractAddress) {
		return nil, fmt.Errorf("invalid platform contract address %q", cfg.Oracle.ContractAddress)
	}

	ethClient, err := ethclient.Dial(cfg.Oracle.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial oracle RPC: %w", err)
	}
	components.AddCleanup(func() error {
		ethClient.Close()
		return nil
	})

	platform, err := oracle.NewPlatform(
		ethClient,
		common.HexToAddress(cfg.Oracle.ContractAddress),
		encryptorKey,
		cfg.Oracle.CallTimeout,
		components.Logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create platform oracle: %w", err)
	}
	components.Logger.Info("platform oracle ready",
		"contract", cfg.Oracle.ContractAddress,
		"encryptor", platform.Identity().Hex(),
	)

	store := ipfs.New(cfg.Storage, components.Logger)

	c := &Container{
		Components: components,
		Store:      store,
		Oracle:     platform,
		Ingest:     service.NewIngestService(platform, store, components.Logger),
		Egress:     service.NewEgressService(platform, store, sniff.Default(), components.Logger),
	}

	if cfg.RateLimit.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.RateLimit.RedisHost, cfg.RateLimit.RedisPort),
			Password: cfg.RateLimit.RedisPassword,
			DB:       0,
		})
		components.AddCleanup(redisClient.Close)

		c.RateLimiter = ratelimit.New(redisClient, cfg.RateLimit.WindowSeconds, components.Logger)
		components.Logger.Info("rate limiting enabled",
			"global", cfg.RateLimit.GlobalLimit,
			"per_account", cfg.RateLimit.AccountLimit,
			"window_seconds", cfg.RateLimit.WindowSeconds,
		)
	}

	return c, nil
}
