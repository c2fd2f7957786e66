package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"time"
)

// 查无结果也缓存一小会儿，无效 token 反复请求不会每次打到库上
const missTTL = 30 * time.Second

var null = []byte("null")

// GetOrLoadJSON load 返回 (nil, nil) 表示不存在，同样以 nil 返回给调用方
func GetOrLoadJSON[T any](
	c *Cache,
	ctx context.Context,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) (*T, error),
) (*T, error) {
	loader := func(ctx context.Context) ([]byte, time.Duration, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, 0, err
		}
		if v == nil {
			return null, min(ttl, missTTL), nil
		}
		b, err := json.Marshal(v)
		return b, ttl, err
	}

	b, err := c.GetOrLoad(ctx, key, loader)
	if err != nil {
		return nil, err
	}
	if bytes.Equal(b, null) {
		return nil, nil
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		// 结构变了的旧缓存：删掉直接回源
		_ = c.Delete(ctx, key)
		return load(ctx)
	}
	return &out, nil
}
