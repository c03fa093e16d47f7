/*
 * @Description: 单个日期分区的站点地图聚合，带条数上限与分片
 * @Author: 安知鱼
 * @Date: 2025-09-21 00:00:00
 * @LastEditTime: 2025-10-08 22:47:02
 * @LastEditors: 安知鱼
 */
package sitemap

import (
	"fmt"

	"github.com/anzhiyu-c/anheyu-sitemap/pkg/constant"
	"github.com/anzhiyu-c/anheyu-sitemap/pkg/domain/model"
)

// DefaultMaxURLsPerFile 是 sitemaps.org 协议规定的单文档 URL 条数上限。
const DefaultMaxURLsPerFile = 50000

// SitemapContent 是一个日期分区内、一份物理文档的有序 URL 条目集合。
// 分区条目超过上限时由调用方开启下一个分片（shard 从 1 开始编号）。
// 聚合本身不去重：同一 loc 不应被加入两次，去重是调用方的责任。
type SitemapContent struct {
	partition model.DatePartitionKey
	shard     int
	ceiling   int
	entries   []UrlEntry
}

// NewSitemapContent 创建一个分区文档聚合。
// shard < 1 按 1 处理，ceiling <= 0 使用协议默认上限。
func NewSitemapContent(partition model.DatePartitionKey, shard, ceiling int) *SitemapContent {
	if shard < 1 {
		shard = 1
	}
	if ceiling <= 0 {
		ceiling = DefaultMaxURLsPerFile
	}
	return &SitemapContent{
		partition: partition,
		shard:     shard,
		ceiling:   ceiling,
	}
}

// AddEntry 追加一个条目，文档已满时返回 constant.ErrCapacityExceeded。
func (c *SitemapContent) AddEntry(entry UrlEntry) error {
	if len(c.entries) >= c.ceiling {
		return fmt.Errorf("%w: %s 第 %d 分片已达 %d 条", constant.ErrCapacityExceeded, c.partition.DateStamp(), c.shard, c.ceiling)
	}
	c.entries = append(c.entries, entry)
	return nil
}

// Entries 返回插入顺序的只读条目视图。
func (c *SitemapContent) Entries() []UrlEntry {
	return c.entries
}

// Len 返回当前条目数。
func (c *SitemapContent) Len() int {
	return len(c.entries)
}

// Partition 返回该文档所属的日期分区。
func (c *SitemapContent) Partition() model.DatePartitionKey {
	return c.partition
}

// Shard 返回分片编号，从 1 开始。
func (c *SitemapContent) Shard() int {
	return c.shard
}

// HasImages 判断是否有任意条目携带图片，决定是否输出 image 命名空间。
func (c *SitemapContent) HasImages() bool {
	for i := range c.entries {
		if len(c.entries[i].Images) > 0 {
			return true
		}
	}
	return false
}

// DateKey 返回该文档的持久化主键：
// 首个分片是裸日期串，后续分片带 -N 后缀。
func (c *SitemapContent) DateKey() string {
	if c.shard <= 1 {
		return c.partition.DateStamp()
	}
	return fmt.Sprintf("%s-%d", c.partition.DateStamp(), c.shard)
}

// FileName 返回该文档对外的文件名，例如 sitemap-2024-02-29.xml。
func (c *SitemapContent) FileName() string {
	return fmt.Sprintf("sitemap-%s.xml", c.DateKey())
}
