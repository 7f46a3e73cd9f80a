//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-console/pkg/config"
	"github.com/ekaya-inc/ekaya-console/pkg/testhelpers"
)

func TestRedisTreeStore_RoundTrip(t *testing.T) {
	testRedis := testhelpers.GetTestRedis(t)
	ctx := context.Background()

	store := NewRedisTreeStore(testRedis.Client, time.Minute, zap.NewNop())
	key := TreeKey{Session: uuid.NewString(), Branch: "main", Kind: "LocationGeneric"}

	_, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, key, sampleTree()))

	tree, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleTree(), tree)

	ttl, err := testRedis.Client.TTL(ctx, key.String()).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, store.Delete(ctx, key))
	_, ok, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisTreeStore_DiscardsUndecodable(t *testing.T) {
	testRedis := testhelpers.GetTestRedis(t)
	ctx := context.Background()

	store := NewRedisTreeStore(testRedis.Client, time.Minute, zap.NewNop())
	key := TreeKey{Session: uuid.NewString(), Branch: "main", Kind: "LocationGeneric"}
	require.NoError(t, testRedis.Client.Set(ctx, key.String(), []byte{0xff, 0x00}, time.Minute).Err())

	_, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	exists, err := testRedis.Client.Exists(ctx, key.String()).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), exists)
}

func TestNewRedisClient(t *testing.T) {
	testRedis := testhelpers.GetTestRedis(t)

	client, err := NewRedisClient(context.Background(), &config.RedisConfig{
		Host: testRedis.Host,
		Port: testRedis.Port,
	})
	require.NoError(t, err)
	require.NotNil(t, client)
	defer client.Close()

	disabled, err := NewRedisClient(context.Background(), &config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, disabled)
}
