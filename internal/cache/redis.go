package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/vale-cashback/api/internal/config"

	"github.com/redis/go-redis/v9"
)

// store 持有客户端与键前缀，Redis 未启用时为 nil
// 包级函数在 store 为 nil 时全部降级为空操作，读取一律视为未命中。
type store struct {
	client *redis.Client
	prefix string
}

var std *store

// InitRedis 按配置初始化 Redis 连接，未启用时保持降级模式
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		std = nil
		return nil
	}

	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = "vcb"
	}

	std = &store{
		client: redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", host, port),
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		prefix: prefix,
	}
	return nil
}

// Enabled 判断缓存是否可用
func Enabled() bool {
	return std != nil && std.client != nil
}

// Client 获取原始 Redis 客户端，未启用时返回 nil
func Client() *redis.Client {
	if !Enabled() {
		return nil
	}
	return std.client
}

func (s *store) key(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.prefix
	}
	return s.prefix + ":" + raw
}

// GetJSON 读取并反序列化缓存值，返回是否命中
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !Enabled() {
		return false, nil
	}
	payload, err := std.client.Get(ctx, std.key(key)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 序列化并写入缓存值
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !Enabled() {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return std.client.Set(ctx, std.key(key), payload, ttl).Err()
}

// Del 删除缓存键
func Del(ctx context.Context, key string) error {
	if !Enabled() {
		return nil
	}
	return std.client.Del(ctx, std.key(key)).Err()
}
