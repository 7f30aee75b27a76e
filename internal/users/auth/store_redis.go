// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/shopii/internal/platform/apperr"
	"github.com/taibuivan/shopii/internal/platform/constants"
)

// RedisResetTokenRepository implements [ResetTokenRepository] using Redis.
type RedisResetTokenRepository struct {
	client redis.UniversalClient
}

// NewResetTokenRepository creates a new Redis-backed [ResetTokenRepository].
func NewResetTokenRepository(client redis.UniversalClient) *RedisResetTokenRepository {
	return &RedisResetTokenRepository{client: client}
}

func resetTokenKey(tokenHash string) string {
	return constants.RedisPrefixResetToken + tokenHash
}

/*
Set stores a reset token hash with its associated account ID and TTL.

Parameters:
  - ctx: context.Context
  - tokenHash: string
  - accountID: string
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (repository *RedisResetTokenRepository) Set(ctx context.Context, tokenHash string, accountID string, ttl time.Duration) error {
	if err := repository.client.Set(ctx, resetTokenKey(tokenHash), accountID, ttl).Err(); err != nil {
		return fmt.Errorf("redis_reset_token_set_failed: %w", err)
	}
	return nil
}

/*
Consume retrieves and deletes the account ID for a token hash in one GETDEL.

Description: A token can be redeemed exactly once, even under concurrent
submissions. Returns apperr.NotFound if the token is absent or expired.

Parameters:
  - ctx: context.Context
  - tokenHash: string

Returns:
  - string: Account ID
  - error: apperr.NotFound or connectivity errors
*/
func (repository *RedisResetTokenRepository) Consume(ctx context.Context, tokenHash string) (string, error) {
	accountID, err := repository.client.GetDel(ctx, resetTokenKey(tokenHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.NotFound("Reset token")
		}
		return "", fmt.Errorf("redis_reset_token_consume_failed: %w", err)
	}
	return accountID, nil
}
