/*
 * @Description: 统一监听站点地图相关事件，负责记录统计并让出站缓存失效。
 * @Author: 安知鱼
 * @Date: 2025-09-24 10:30:00
 * @LastEditTime: 2025-10-19 13:22:41
 * @LastEditors: 安知鱼
 */
package listener

import (
	"context"
	"log"

	"github.com/anzhiyu-c/anheyu-sitemap/internal/pkg/event"
	"github.com/anzhiyu-c/anheyu-sitemap/pkg/constant"
	"github.com/anzhiyu-c/anheyu-sitemap/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-sitemap/pkg/service/utility"
)

// SitemapCacheListener 监听生成与删除事件。任何一次写入都会让
// 根索引与对应文档的缓存失效，保证出站内容与存储一致。
type SitemapCacheListener struct {
	cacheSvc utility.CacheService
}

// NewSitemapCacheListener 是 SitemapCacheListener 的构造函数。
// 它订阅全部站点地图事件，并成为缓存失效的唯一入口。
func NewSitemapCacheListener(
	eventBus *event.EventBus,
	cacheSvc utility.CacheService,
) *SitemapCacheListener {
	listener := &SitemapCacheListener{
		cacheSvc: cacheSvc,
	}
	eventBus.Subscribe(event.SitemapGenerated, listener.handleGenerated)
	eventBus.Subscribe(event.SitemapDeleted, listener.handleDeleted)
	eventBus.Subscribe(event.BackfillCompleted, listener.handleBackfillCompleted)
	eventBus.Subscribe(event.BackfillHalted, listener.handleBackfillHalted)
	return listener
}

// handleGenerated 记录单次生成的统计，并清理受影响的缓存。
func (l *SitemapCacheListener) handleGenerated(payload interface{}) {
	evt, ok := payload.(model.SitemapGeneratedEvent)
	if !ok {
		log.Printf("[SitemapCacheListener] 错误：收到的SitemapGenerated事件负载类型不正确")
		return
	}

	log.Printf("[SitemapCacheListener] 收到生成事件 date=%s urls=%d elapsed=%.2fs source=%s",
		evt.Date, evt.URLCount, evt.Elapsed, evt.Source)

	l.invalidate(evt.Date)
}

// handleDeleted 在文档被删除后清理缓存，载荷为日期键。
func (l *SitemapCacheListener) handleDeleted(payload interface{}) {
	dateKey, ok := payload.(string)
	if !ok {
		log.Printf("[SitemapCacheListener] 错误：收到的SitemapDeleted事件负载类型不正确")
		return
	}

	log.Printf("[SitemapCacheListener] 收到删除事件 date=%s", dateKey)
	l.invalidate(dateKey)
}

func (l *SitemapCacheListener) handleBackfillCompleted(payload interface{}) {
	if processed, ok := payload.(int); ok {
		log.Printf("[SitemapCacheListener] 回填完成，共处理 %d 个单元", processed)
	}
	l.invalidate("")
}

func (l *SitemapCacheListener) handleBackfillHalted(payload interface{}) {
	if remaining, ok := payload.(int); ok {
		log.Printf("[SitemapCacheListener] 回填已停止，剩余 %d 个单元", remaining)
	}
}

// invalidate 让根索引与指定日期的缓存失效，dateKey 为空时只清理索引。
func (l *SitemapCacheListener) invalidate(dateKey string) {
	ctx := context.Background()

	keys := []string{constant.SitemapIndexCacheKey, constant.RobotsCacheKey}
	if dateKey != "" {
		keys = append(keys, constant.SitemapFileCachePrefix+dateKey)
		// 同一天的分片共用前缀，保险起见一并扫描清理
		if matched, err := l.cacheSvc.Scan(ctx, constant.SitemapFileCachePrefix+dateKey+"-*"); err == nil && len(matched) > 0 {
			keys = append(keys, matched...)
		}
	}

	if err := l.cacheSvc.Delete(ctx, keys...); err != nil {
		log.Printf("[SitemapCacheListener] 错误: 清理缓存失败: %v", err)
	}
}
