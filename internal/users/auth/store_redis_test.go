// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/shopii/internal/platform/apperr"
	"github.com/taibuivan/shopii/internal/users/auth"
)

func newRedisResetStore(t *testing.T) (*auth.RedisResetTokenRepository, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return auth.NewResetTokenRepository(client), server
}

/*
TestRedisResetTokenRepository_ConsumeOnce verifies the key layout and that a
token can only be redeemed once.
*/
func TestRedisResetTokenRepository_ConsumeOnce(t *testing.T) {
	store, server := newRedisResetStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "hash-1", "b1", time.Hour))
	assert.True(t, server.Exists("auth:reset_token:hash-1"))
	assert.Equal(t, time.Hour, server.TTL("auth:reset_token:hash-1"))

	accountID, err := store.Consume(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, "b1", accountID)

	_, err = store.Consume(ctx, "hash-1")
	assert.True(t, apperr.IsNotFound(err))
}

func TestRedisResetTokenRepository_Expiry(t *testing.T) {
	store, server := newRedisResetStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "hash-2", "b1", time.Minute))
	server.FastForward(2 * time.Minute)

	_, err := store.Consume(ctx, "hash-2")
	assert.True(t, apperr.IsNotFound(err))
}

func TestRedisResetTokenRepository_ConnectionError(t *testing.T) {
	store, server := newRedisResetStore(t)
	server.Close()

	_, err := store.Consume(context.Background(), "hash-3")
	require.Error(t, err)
	assert.False(t, apperr.IsNotFound(err))
}
