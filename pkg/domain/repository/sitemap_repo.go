/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-07-25 10:48:41
 * @LastEditTime: 2025-08-28 13:34:08
 * @LastEditors: 安知鱼
 */
package repository

import (
	"context"

	"github.com/anzhiyu-c/anheyu-sitemap/pkg/domain/model"
)

// SitemapRepository 定义了站点地图文档的持久化接口。
// 文档以日期串为主键（分片文档带 -N 后缀），Upsert 幂等。
// 存储层故障统一包装为 constant.ErrRepositoryUnavailable，
// 由编排器作为致命错误处理。
type SitemapRepository interface {
	// Get 按日期键获取一份文档，不存在时返回 (nil, nil)。
	Get(ctx context.Context, date string) (*model.StoredSitemap, error)

	// Upsert 幂等地写入一份完整渲染好的文档。
	Upsert(ctx context.Context, date string, xml string, urlCount int) error

	// Delete 删除一份文档，不存在时不视为错误。
	Delete(ctx context.Context, date string) error

	// ListDates 返回 [fromYear, toYear] 年份范围内已存储的日期键，升序。
	ListDates(ctx context.Context, fromYear, toYear int) ([]string, error)

	// ListMeta 返回全部已存储文档的元数据（不含 XML 正文），升序，用于渲染根索引。
	ListMeta(ctx context.Context) ([]*model.StoredSitemap, error)
}

// ProgressRepository 持久化后台回填任务的单例进度。
type ProgressRepository interface {
	// Load 读取当前进度，从未保存过时返回 (nil, nil)。
	Load(ctx context.Context) (*model.GenerationProgress, error)

	// Save 覆盖保存进度。
	Save(ctx context.Context, p *model.GenerationProgress) error

	// Clear 清空进度，状态机回到 IDLE。
	Clear(ctx context.Context) error
}
