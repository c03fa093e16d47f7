/*
 * @Description: Redis 缓存服务
 * @Author: 安知鱼
 * @Date: 2025-09-20 15:17:47
 * @LastEditTime: 2025-10-26 20:57:56
 * @LastEditors: 安知鱼
 */
package utility

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheService 定义了缓存服务的接口，提供了基础的 Get/Set/Delete 操作
type CacheService interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key ...string) error
	// Scan 使用 SCAN 命令安全地查找匹配的键
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// redisCacheService 是 CacheService 的 Redis 实现
type redisCacheService struct {
	client *redis.Client
}

// NewCacheService 是 redisCacheService 的构造函数，通过依赖注入接收 Redis 客户端
func NewCacheService(client *redis.Client) CacheService {
	return &redisCacheService{
		client: client,
	}
}

// Set 实现了设置缓存的方法
func (s *redisCacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return s.client.Set(ctx, key, value, expiration).Err()
}

// Get 实现了获取缓存的方法
func (s *redisCacheService) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil // Key 不存在，返回空字符串和 nil 错误，这是 Redis 的惯例
	}
	return val, err
}

// Delete 实现了删除缓存的方法
func (s *redisCacheService) Delete(ctx context.Context, key ...string) error {
	return s.client.Del(ctx, key...).Err()
}

// Scan 使用 SCAN 命令安全地遍历所有匹配的键，避免了在生产环境中使用 KEYS 命令。
func (s *redisCacheService) Scan(ctx context.Context, pattern string) ([]string, error) {
	var allKeys []string
	var cursor uint64
	for {
		keys, nextCursor, err := s.client.Scan(ctx, cursor, pattern, 100).Result() // 每次扫描100个
		if err != nil {
			return nil, err
		}
		allKeys = append(allKeys, keys...)
		if nextCursor == 0 { // 遍历完成
			break
		}
		cursor = nextCursor
	}
	return allKeys, nil
}
