package store

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-console/pkg/config"
	"github.com/ekaya-inc/ekaya-console/pkg/models"
	"github.com/ekaya-inc/ekaya-console/pkg/retry"
)

// NewRedisClient creates a new Redis client with the given configuration.
// Returns nil if Redis is not configured (host is empty).
// The connection is verified with retries so the console can start alongside Redis.
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(config.ResolveHostForDocker(cfg.Host), strconv.Itoa(cfg.Port)),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := retry.Do(ctx, retry.DefaultConfig(), func() error {
		return client.Ping(ctx).Err()
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

type redisTreeStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisTreeStore creates a tree store backed by Redis. Trees are CBOR
// encoded and expire ttl after their last write.
func NewRedisTreeStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) TreeStore {
	return &redisTreeStore{
		client: client,
		ttl:    ttl,
		logger: logger.Named("tree-store"),
	}
}

func (s *redisTreeStore) Get(ctx context.Context, key TreeKey) ([]models.TreeNode, bool, error) {
	data, err := s.client.Get(ctx, key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read tree: %w", err)
	}

	var tree []models.TreeNode
	if err := cbor.Unmarshal(data, &tree); err != nil {
		// A tree written by an incompatible version is dropped, not fatal.
		s.logger.Warn("Discarding undecodable tree",
			zap.String("key", key.String()),
			zap.Error(err))
		_ = s.client.Del(ctx, key.String()).Err()
		return nil, false, nil
	}
	return tree, true, nil
}

func (s *redisTreeStore) Put(ctx context.Context, key TreeKey, tree []models.TreeNode) error {
	data, err := cbor.Marshal(tree)
	if err != nil {
		return fmt.Errorf("failed to encode tree: %w", err)
	}
	if err := s.client.Set(ctx, key.String(), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write tree: %w", err)
	}
	return nil
}

func (s *redisTreeStore) Delete(ctx context.Context, key TreeKey) error {
	if err := s.client.Del(ctx, key.String()).Err(); err != nil {
		return fmt.Errorf("failed to delete tree: %w", err)
	}
	return nil
}

var _ TreeStore = (*redisTreeStore)(nil)
