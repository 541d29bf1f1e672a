package store

import (
	"context"
	"fmt"

	"github.com/unkn0wn-root/msgpackhttp/internal/config"
	pr "github.com/unkn0wn-root/msgpackhttp/provider"
	"github.com/unkn0wn-root/msgpackhttp/provider/bigcache"
	"github.com/unkn0wn-root/msgpackhttp/provider/redis"
	"github.com/unkn0wn-root/msgpackhttp/provider/ristretto"
)

// Open builds the provider named by cfg.Kind and wraps it in a Store.
func Open(ctx context.Context, cfg config.StoreConfig) (*Store, error) {
	var (
		p   pr.Provider
		err error
	)
	switch cfg.Kind {
	case "ristretto":
		p, err = ristretto.New(ristretto.Config{
			NumCounters: 1e6,
			MaxCost:     cfg.MaxCost,
		})
	case "bigcache":
		// MaxEntrySize only sizes the initial shard buffers; keep bigcache's
		// default and bound memory with HardMaxCacheSizeMB instead.
		p, err = bigcache.New(ctx, bigcache.Config{
			LifeWindow:         cfg.TTL,
			MaxEntriesInWindow: 10 << 10,
			HardMaxCacheSizeMB: int(max(cfg.MaxCost>>20, 1)),
		})
	case "redis":
		p, err = redis.Dial(ctx, cfg.RedisAddr, cfg.Prefix)
	default:
		return nil, fmt.Errorf("store: unknown kind %q", cfg.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", cfg.Kind, err)
	}
	return New(p, cfg.TTL, cfg.MaxRecord), nil
}
