/*
 * @Description: 缓存键常量
 * @Author: 安知鱼
 * @Date: 2025-09-24 10:12:30
 * @LastEditTime: 2025-10-12 18:40:09
 * @LastEditors: 安知鱼
 */
package constant

const (
	// SitemapIndexCacheKey 根索引文档的缓存键
	SitemapIndexCacheKey = "sitemap:index"
	// SitemapFileCachePrefix 单个站点地图文档的缓存键前缀，后接日期键
	SitemapFileCachePrefix = "sitemap:file:"
	// RobotsCacheKey robots.txt 的缓存键
	RobotsCacheKey = "sitemap:robots"
)
