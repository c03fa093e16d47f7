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
	"time"

	"github.com/anzhiyu-c/anheyu-sitemap/pkg/domain/model"
)

// ContentSource 定义了站点地图生成消费的内容查询接口。
// 它是内容持久化层的抽象，按日期分区做惰性计数和分页，
// 生成管线永远不会一次性拿到全部历史内容。
type ContentSource interface {
	// CountForPartition 返回指定日期分区内符合条件（已发布）的内容条数。
	// 分区可以是天、整月或整年。
	CountForPartition(ctx context.Context, key model.DatePartitionKey) (int, error)

	// MaxModifiedTime 返回分区内内容的最近修改时间，分区为空时返回 nil。
	MaxModifiedTime(ctx context.Context, key model.DatePartitionKey) (*time.Time, error)

	// FetchPage 按插入顺序分页获取分区内的内容条目。
	FetchPage(ctx context.Context, key model.DatePartitionKey, offset, limit int) ([]*model.ContentItem, error)

	// ListModifiedPartitionsSince 返回自 since 以来有内容被修改过的日期分区（按天，升序去重），
	// 用于 "从最新内容生成"。
	ListModifiedPartitionsSince(ctx context.Context, since time.Time) ([]model.DatePartitionKey, error)
}
