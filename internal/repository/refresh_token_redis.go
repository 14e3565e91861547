package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"staffchat/internal/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// redisRefreshTokenRepository stores refresh tokens in Redis with a TTL
// matching their expiry, so expired tokens age out on their own and
// DeleteExpired has nothing to do. Used when REDIS_ADDR is configured;
// the mongo repository is the fallback.
type redisRefreshTokenRepository struct {
	client *redis.Client
}

func NewRedisRefreshTokenRepository(client *redis.Client) RefreshTokenRepository {
	return &redisRefreshTokenRepository{
		client: client,
	}
}

func tokenKey(token string) string {
	return "refresh_token:" + token
}

func staffTokensKey(staffId int64) string {
	return fmt.Sprintf("refresh_tokens:staff:%d", staffId)
}

func (r *redisRefreshTokenRepository) Create(ctx context.Context, refreshToken entity.RefreshToken) error {
	refreshToken.Id = uuid.New().String()
	refreshToken.CreatedAt = time.Now()
	refreshToken.IsRevoked = false

	ttl := time.Until(refreshToken.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(refreshToken)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, tokenKey(refreshToken.Token), data, ttl)
	pipe.SAdd(ctx, staffTokensKey(refreshToken.StaffId), refreshToken.Token)
	pipe.Expire(ctx, staffTokensKey(refreshToken.StaffId), ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *redisRefreshTokenRepository) GetByToken(ctx context.Context, token string) (entity.RefreshToken, error) {
	data, err := r.client.Get(ctx, tokenKey(token)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return entity.RefreshToken{}, ErrRefreshTokenNotFound
		}
		return entity.RefreshToken{}, err
	}

	var refreshToken entity.RefreshToken
	if err := json.Unmarshal(data, &refreshToken); err != nil {
		return entity.RefreshToken{}, err
	}

	return refreshToken, nil
}

func (r *redisRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	refreshToken, err := r.GetByToken(ctx, token)
	if err != nil {
		if err == ErrRefreshTokenNotFound {
			return nil
		}
		return err
	}

	now := time.Now()
	refreshToken.IsRevoked = true
	refreshToken.RevokedAt = &now

	ttl := time.Until(refreshToken.ExpiresAt)
	if ttl <= 0 {
		return r.client.Del(ctx, tokenKey(token)).Err()
	}

	data, err := json.Marshal(refreshToken)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, tokenKey(token), data, ttl).Err()
}

func (r *redisRefreshTokenRepository) RevokeAllByStaffId(ctx context.Context, staffId int64) error {
	tokens, err := r.client.SMembers(ctx, staffTokensKey(staffId)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil
		}
		return err
	}

	for _, token := range tokens {
		if err := r.Revoke(ctx, token); err != nil {
			return err
		}
	}

	return nil
}

// DeleteExpired is a no-op: key TTLs already expire tokens.
func (r *redisRefreshTokenRepository) DeleteExpired(ctx context.Context) error {
	return nil
}
