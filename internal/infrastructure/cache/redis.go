package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenCache хранит refresh- и reset-токены в Redis. Ключ — сам токен,
// значение — userID, TTL решает вопрос протухания.
type TokenCache struct {
	client *redis.Client
}

func NewTokenCache(client *redis.Client) *TokenCache {
	return &TokenCache{client: client}
}

func (c *TokenCache) SaveRefresh(ctx context.Context, userID, refreshToken string, ttl time.Duration) error {
	return c.client.Set(ctx, "refresh_token:"+refreshToken, userID, ttl).Err()
}

func (c *TokenCache) CheckRefresh(ctx context.Context, refreshToken string) (string, error) {
	return c.client.Get(ctx, "refresh_token:"+refreshToken).Result()
}

func (c *TokenCache) DeleteRefresh(ctx context.Context, refreshToken string) error {
	return c.client.Del(ctx, "refresh_token:"+refreshToken).Err()
}

func (c *TokenCache) SaveResetToken(ctx context.Context, token, userID string) error {
	// 15 минут на переход по ссылке из письма
	return c.client.Set(ctx, "reset_token:"+token, userID, 15*time.Minute).Err()
}

func (c *TokenCache) GetResetToken(ctx context.Context, token string) (string, error) {
	return c.client.Get(ctx, "reset_token:"+token).Result()
}

func (c *TokenCache) DeleteResetToken(ctx context.Context, token string) error {
	return c.client.Del(ctx, "reset_token:"+token).Err()
}
