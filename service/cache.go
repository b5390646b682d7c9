// file: service/cache.go

package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ICacheClient defines the contract for a cache client. This abstraction
// decouples services from a concrete Redis implementation, enabling easier
// testing and future flexibility.
type ICacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// channelCacheKey is shared between the channel service (reads) and the user
// service (invalidation on profile mutations).
func channelCacheKey(username string) string {
	return "channel:" + username
}
