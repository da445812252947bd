package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedToken はアクセストークンと有効期限
type CachedToken struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// TokenCache はアクセストークンの保存先
//
// Load はキャッシュが空の場合 (nil, nil) を返す。
type TokenCache interface {
	Load(ctx context.Context) (*CachedToken, error)
	Store(ctx context.Context, token *CachedToken) error
	Clear(ctx context.Context) error
}

// MemoryTokenCache はプロセス内のトークンキャッシュ
type MemoryTokenCache struct {
	mu    sync.Mutex
	token *CachedToken
}

// NewMemoryTokenCache は新しいMemoryTokenCacheを作成
func NewMemoryTokenCache() *MemoryTokenCache {
	return &MemoryTokenCache{}
}

func (c *MemoryTokenCache) Load(_ context.Context) (*CachedToken, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == nil {
		return nil, nil
	}
	tok := *c.token
	return &tok, nil
}

func (c *MemoryTokenCache) Store(_ context.Context, token *CachedToken) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if token == nil {
		c.token = nil
		return nil
	}
	tok := *token
	c.token = &tok
	return nil
}

func (c *MemoryTokenCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = nil
	return nil
}

// RedisTokenCache は複数インスタンスで共有するトークンキャッシュ
type RedisTokenCache struct {
	client *redis.Client
	key    string
}

// NewRedisTokenCache は新しいRedisTokenCacheを作成
func NewRedisTokenCache(client *redis.Client, key string) *RedisTokenCache {
	return &RedisTokenCache{client: client, key: key}
}

func (c *RedisTokenCache) Load(ctx context.Context) (*CachedToken, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token from redis: %w", err)
	}

	var tok CachedToken
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to decode cached token: %w", err)
	}
	return &tok, nil
}

func (c *RedisTokenCache) Store(ctx context.Context, token *CachedToken) error {
	if token == nil {
		return c.Clear(ctx)
	}

	// 期限切れのトークンは保存しない
	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := c.client.Set(ctx, c.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write token to redis: %w", err)
	}
	return nil
}

func (c *RedisTokenCache) Clear(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("failed to delete cached token: %w", err)
	}
	return nil
}
