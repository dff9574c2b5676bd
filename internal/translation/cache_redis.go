package translation

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache shares translations across instances. Keys are hashed so
// arbitrary message text never ends up verbatim in key space.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) key(text, sourceLang, targetLang string) string {
	sum := sha1.Sum([]byte(cacheKey(text, sourceLang, targetLang)))
	return c.prefix + ":tr:" + hex.EncodeToString(sum[:])
}

func (c *RedisCache) Get(ctx context.Context, text, sourceLang, targetLang string) (string, bool) {
	val, err := c.client.Get(ctx, c.key(text, sourceLang, targetLang)).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, text, sourceLang, targetLang, translated string) {
	_ = c.client.Set(ctx, c.key(text, sourceLang, targetLang), translated, c.ttl).Err()
}
