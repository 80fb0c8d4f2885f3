package cmd

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/donaldgifford/marketplace-monitor/internal/config"
	"github.com/donaldgifford/marketplace-monitor/internal/store"
)

// openStore connects to the cache backend named by c.
func openStore(ctx context.Context, c config.CacheConfig) (store.Store, error) {
	switch c.Backend {
	case config.CacheRedis:
		prefix := store.WithKeyPrefix(c.Redis.Prefix)
		if c.Redis.URL != "" {
			return store.NewRedisStoreFromURL(ctx, c.Redis.URL, prefix)
		}
		return store.NewRedisStore(ctx, &redis.Options{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		}, prefix)
	case config.CacheBolt:
		return store.NewBoltStore(c.Dir)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", c.Backend)
	}
}
