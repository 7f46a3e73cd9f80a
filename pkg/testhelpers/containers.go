package testhelpers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ekaya-inc/ekaya-console/pkg/retry"
)

// RedisTestImage is the Redis image used for integration tests.
const RedisTestImage = "redis:7-alpine"

// TestRedis holds a shared Redis container and client.
type TestRedis struct {
	Container testcontainers.Container
	Client    *redis.Client
	Host      string
	Port      int
}

var (
	sharedTestRedis     *TestRedis
	sharedTestRedisOnce sync.Once
	sharedTestRedisErr  error
)

// GetTestRedis returns a shared Redis container for integration tests.
// The container is created once and reused across all tests in the run.
// Tests should use unique keys; the database is not flushed between tests.
func GetTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedTestRedisOnce.Do(func() {
		sharedTestRedis, sharedTestRedisErr = setupTestRedis()
	})

	if sharedTestRedisErr != nil {
		t.Fatalf("Failed to setup test redis: %v", sharedTestRedisErr)
	}

	return sharedTestRedis
}

func setupTestRedis() (*TestRedis, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        RedisTestImage,
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForLog("Ready to accept connections").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", host, port.Port()),
	})

	pingCfg := &retry.Config{
		MaxRetries:   10,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
	}
	if err := retry.Do(ctx, pingCfg, func() error { return client.Ping(ctx).Err() }); err != nil {
		_ = client.Close()
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("redis container not answering: %w", err)
	}

	return &TestRedis{
		Container: container,
		Client:    client,
		Host:      host,
		Port:      port.Int(),
	}, nil
}
