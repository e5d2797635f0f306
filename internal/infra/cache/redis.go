package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const urlKeyPrefix = "gastos:signed-url:"

// SignedURLCache keeps freshly issued signed URLs in Redis so repeated
// views within one session do not hit the storage gateway. Entries always
// expire before the URL itself does; the caller passes the shortened TTL.
type SignedURLCache struct {
	client *redis.Client
}

func New(addr, password string, db int) *SignedURLCache {
	return &SignedURLCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

// Get returns a cached URL for the stored path, if any. Cache errors are
// treated as misses; the resolver just signs again.
func (c *SignedURLCache) Get(ctx context.Context, path string) (string, bool) {
	v, err := c.client.Get(ctx, urlKeyPrefix+path).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

// Set stores a signed URL under the document's path with the given TTL.
func (c *SignedURLCache) Set(ctx context.Context, path, url string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	_ = c.client.Set(ctx, urlKeyPrefix+path, url, ttl).Err()
}

// Ping for health checks.
func (c *SignedURLCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
