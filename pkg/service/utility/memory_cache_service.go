/*
 * @Description: 内存缓存服务实现（用于 Redis 不可用时的降级方案）
 * @Author: 安知鱼
 * @Date: 2025-10-05 00:00:00
 * @LastEditTime: 2025-10-05 20:45:43
 * @LastEditors: 安知鱼
 */
package utility

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"
)

// cacheItem 缓存项结构
type cacheItem struct {
	value      string
	expiration time.Time
	hasExpiry  bool
}

// isExpired 检查是否过期
func (item *cacheItem) isExpired() bool {
	if !item.hasExpiry {
		return false
	}
	return time.Now().After(item.expiration)
}

// memoryCacheService 是基于内存的缓存服务实现
type memoryCacheService struct {
	data   sync.Map
	ticker *time.Ticker
	done   chan bool
}

// NewMemoryCacheService 创建内存缓存服务实例
func NewMemoryCacheService() CacheService {
	svc := &memoryCacheService{
		ticker: time.NewTicker(1 * time.Minute), // 每分钟清理一次过期数据
		done:   make(chan bool),
	}

	// 启动后台清理任务
	go svc.cleanupExpired()

	return svc
}

// cleanupExpired 定期清理过期的缓存项
func (s *memoryCacheService) cleanupExpired() {
	for {
		select {
		case <-s.ticker.C:
			s.data.Range(func(key, value interface{}) bool {
				if item, ok := value.(*cacheItem); ok {
					if item.isExpired() {
						s.data.Delete(key)
					}
				}
				return true
			})
		case <-s.done:
			return
		}
	}
}

// Stop 停止清理任务
func (s *memoryCacheService) Stop() {
	s.ticker.Stop()
	s.done <- true
}

// Set 设置缓存
func (s *memoryCacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	item := &cacheItem{
		value:     fmt.Sprintf("%v", value),
		hasExpiry: expiration > 0,
	}

	if expiration > 0 {
		item.expiration = time.Now().Add(expiration)
	}

	s.data.Store(key, item)
	return nil
}

// Get 获取缓存
func (s *memoryCacheService) Get(ctx context.Context, key string) (string, error) {
	value, ok := s.data.Load(key)
	if !ok {
		return "", nil // Key 不存在，返回空字符串
	}

	item, ok := value.(*cacheItem)
	if !ok {
		return "", nil
	}

	// 检查是否过期
	if item.isExpired() {
		s.data.Delete(key)
		return "", nil
	}

	return item.value, nil
}

// Delete 删除缓存
func (s *memoryCacheService) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		s.data.Delete(key)
	}
	return nil
}

// Scan 查找匹配模式的键，模式语法与 Redis 的 glob 风格保持一致
func (s *memoryCacheService) Scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	s.data.Range(func(key, value interface{}) bool {
		k, ok := key.(string)
		if !ok {
			return true
		}
		item, ok := value.(*cacheItem)
		if ok && item.isExpired() {
			s.data.Delete(key)
			return true
		}
		if matched, err := filepath.Match(pattern, k); err == nil && matched {
			keys = append(keys, k)
		}
		return true
	})
	return keys, nil
}
