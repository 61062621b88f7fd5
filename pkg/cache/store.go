package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/orgadmin/pkg/config"
	"github.com/redis/go-redis/v9"
)

// Store 业务缓存，值以 JSON 存储
type Store interface {
	// GetJSON 读取并反序列化到 dest，未命中返回 false
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// New 按配置创建缓存，redis 驱动需要传入客户端
func New(cfg *config.CacheConfig, client *redis.Client) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryStore(cfg.Prefix, time.Minute), nil
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("cache driver redis requires a redis client")
		}
		return NewRedisStore(client, cfg.Prefix), nil
	default:
		return nil, fmt.Errorf("unsupported cache driver: %s", cfg.Driver)
	}
}

func prefixed(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + ":" + key
}
