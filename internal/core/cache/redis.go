package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache 为 nil 时所有方法直接回源，方便未配置 redis 的环境
type Cache struct {
	RDB    *redis.Client
	Prefix string
	sf     singleflight.Group
}

func New(addr, pass string, db int) *Cache {
	return &Cache{
		RDB:    redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
		Prefix: "wwr:",
	}
}

func (c *Cache) key(k string) string { return c.Prefix + k }

// Loader 回源；返回的 ttl <= 0 表示结果不写缓存
type Loader func(ctx context.Context) (val []byte, ttl time.Duration, err error)

func (c *Cache) GetOrLoad(ctx context.Context, key string, load Loader) ([]byte, error) {
	if c == nil || c.RDB == nil {
		b, _, err := load(ctx)
		return b, err
	}
	if b, err := c.RDB.Get(ctx, c.key(key)).Bytes(); err == nil {
		return b, nil
	}
	// 同一 key 并发回源合并成一次
	v, err, _ := c.sf.Do(key, func() (any, error) {
		b, ttl, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if ttl > 0 {
			_ = c.RDB.Set(ctx, c.key(key), b, ttl).Err()
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Delete 失效若干 key（角色变更、删号时调用）
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if c == nil || c.RDB == nil || len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, c.key(k))
	}
	return c.RDB.Del(ctx, full...).Err()
}

func (c *Cache) Ping(ctx context.Context) error {
	if c == nil || c.RDB == nil {
		return nil
	}
	return c.RDB.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	if c == nil || c.RDB == nil {
		return nil
	}
	return c.RDB.Close()
}

// IdentityKey token → 身份 的缓存 key
func IdentityKey(token string) string { return "auth:token:" + token }
