package translate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Cache wraps a Translator with a redis-backed result cache. Redis failures
// are logged and the call goes straight to the wrapped translator.
type Cache struct {
	next   Translator
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisCache connects to addr and wraps next.
func NewRedisCache(ctx context.Context, next Translator, addr string, ttl time.Duration, log *zap.Logger) (*Cache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewCache(next, client, ttl, log), nil
}

// NewCache wraps next using an existing redis client.
func NewCache(next Translator, client *redis.Client, ttl time.Duration, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{next: next, client: client, ttl: ttl, log: log}
}

func cacheKey(text, from, to string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("translate:%s:%s:%s", from, to, hex.EncodeToString(sum[:]))
}

// Translate implements Translator.
func (c *Cache) Translate(ctx context.Context, text, from, to string) (string, error) {
	key := cacheKey(text, from, to)

	cached, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		return cached, nil
	case !errors.Is(err, redis.Nil):
		c.log.Warn("translation cache read failed", zap.String("key", key), zap.Error(err))
	}

	out, err := c.next.Translate(ctx, text, from, to)
	if err != nil {
		return "", err
	}

	if err := c.client.Set(ctx, key, out, c.ttl).Err(); err != nil {
		c.log.Warn("translation cache write failed", zap.String("key", key), zap.Error(err))
	}
	return out, nil
}

// Close closes the redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}
