/*
 * @Description: 基于文章表的内容源实现
 * @Author: 安知鱼
 * @Date: 2025-09-21 00:00:00
 * @LastEditTime: 2025-10-08 22:47:02
 * @LastEditors: 安知鱼
 */
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/anzhiyu-c/anheyu-sitemap/internal/pkg/utils"
	"github.com/anzhiyu-c/anheyu-sitemap/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-sitemap/pkg/domain/repository"
)

// 只有已发布的文章进入站点地图
const statusPublished = "PUBLISHED"

// articleContentSource 把已发布文章按创建日切分为日期分区。
// 分区边界统一用中国时区计算，与文章的写入时间约定一致。
type articleContentSource struct {
	db      *sqlx.DB
	siteURL string
}

// NewArticleContentSource 创建内容源。siteURL 用于拼接文章永久链接。
func NewArticleContentSource(db *sqlx.DB, siteURL string) repository.ContentSource {
	return &articleContentSource{
		db:      db,
		siteURL: strings.TrimRight(siteURL, "/"),
	}
}

// partitionRange 返回分区对应的 [start, end) 时间区间。
// Day 为 0 时覆盖整月，Month 也为 0 时覆盖整年。
func partitionRange(key model.DatePartitionKey) (time.Time, time.Time) {
	switch {
	case key.IsFullDate():
		start := utils.DayInChina(key.Year, key.Month, key.Day)
		return start, start.AddDate(0, 0, 1)
	case key.Month > 0:
		start := utils.DayInChina(key.Year, key.Month, 1)
		return start, start.AddDate(0, 1, 0)
	default:
		start := utils.DayInChina(key.Year, 1, 1)
		return start, start.AddDate(1, 0, 0)
	}
}

// CountForPartition 统计分区内已发布文章数
func (s *articleContentSource) CountForPartition(ctx context.Context, key model.DatePartitionKey) (int, error) {
	start, end := partitionRange(key)
	var count int
	query := s.db.Rebind(`SELECT COUNT(*) FROM articles WHERE status = ? AND created_at >= ? AND created_at < ?`)
	if err := s.db.GetContext(ctx, &count, query, statusPublished, start, end); err != nil {
		return 0, fmt.Errorf("统计文章失败: %w", err)
	}
	return count, nil
}

// MaxModifiedTime 返回分区内文章的最近修改时间，分区为空时返回 nil
func (s *articleContentSource) MaxModifiedTime(ctx context.Context, key model.DatePartitionKey) (*time.Time, error) {
	start, end := partitionRange(key)
	var maxMod sql.NullTime
	query := s.db.Rebind(`SELECT MAX(updated_at) FROM articles WHERE status = ? AND created_at >= ? AND created_at < ?`)
	if err := s.db.GetContext(ctx, &maxMod, query, statusPublished, start, end); err != nil {
		return nil, fmt.Errorf("查询最大修改时间失败: %w", err)
	}
	if !maxMod.Valid {
		return nil, nil
	}
	t := maxMod.Time
	return &t, nil
}

// articleRow 是文章查询的行结构
type articleRow struct {
	ID        uint      `db:"id"`
	Title     string    `db:"title"`
	Slug      string    `db:"slug"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// imageRow 是文章图片查询的行结构
type imageRow struct {
	ArticleID   uint           `db:"article_id"`
	URL         string         `db:"url"`
	Title       sql.NullString `db:"title"`
	Caption     sql.NullString `db:"caption"`
	GeoLocation sql.NullString `db:"geo_location"`
	License     sql.NullString `db:"license"`
}

// FetchPage 按创建时间升序分页获取分区内的文章，并批量挂载图片。
func (s *articleContentSource) FetchPage(ctx context.Context, key model.DatePartitionKey, offset, limit int) ([]*model.ContentItem, error) {
	start, end := partitionRange(key)

	var rows []articleRow
	query := s.db.Rebind(`SELECT id, title, slug, created_at, updated_at
		FROM articles
		WHERE status = ? AND created_at >= ? AND created_at < ?
		ORDER BY created_at, id
		LIMIT ? OFFSET ?`)
	if err := s.db.SelectContext(ctx, &rows, query, statusPublished, start, end, limit, offset); err != nil {
		return nil, fmt.Errorf("分页查询文章失败: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	items := make([]*model.ContentItem, 0, len(rows))
	index := make(map[uint]*model.ContentItem, len(rows))
	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		item := &model.ContentItem{
			ID:         row.ID,
			Title:      row.Title,
			Permalink:  s.permalinkFor(row),
			CreatedAt:  row.CreatedAt,
			ModifiedAt: row.UpdatedAt,
		}
		items = append(items, item)
		index[row.ID] = item
		ids = append(ids, row.ID)
	}

	if err := s.attachImages(ctx, index, ids); err != nil {
		return nil, err
	}
	return items, nil
}

// attachImages 一次性加载本页文章的全部图片，按 sort_order 挂载。
func (s *articleContentSource) attachImages(ctx context.Context, index map[uint]*model.ContentItem, ids []uint) error {
	query, args, err := sqlx.In(`SELECT article_id, url, title, caption, geo_location, license
		FROM article_images
		WHERE article_id IN (?)
		ORDER BY article_id, sort_order`, ids)
	if err != nil {
		return fmt.Errorf("构建图片查询失败: %w", err)
	}

	var rows []imageRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("查询文章图片失败: %w", err)
	}
	for _, row := range rows {
		item, ok := index[row.ArticleID]
		if !ok {
			continue
		}
		item.Images = append(item.Images, model.ContentImage{
			URL:         row.URL,
			Title:       row.Title.String,
			Caption:     row.Caption.String,
			GeoLocation: row.GeoLocation.String,
			License:     row.License.String,
		})
	}
	return nil
}

// ListModifiedPartitionsSince 返回自 since 以来有文章被修改过的创建日分区，升序去重。
func (s *articleContentSource) ListModifiedPartitionsSince(ctx context.Context, since time.Time) ([]model.DatePartitionKey, error) {
	var createdAts []time.Time
	query := s.db.Rebind(`SELECT created_at FROM articles WHERE status = ? AND updated_at >= ? ORDER BY created_at`)
	if err := s.db.SelectContext(ctx, &createdAts, query, statusPublished, since); err != nil {
		return nil, fmt.Errorf("查询最近修改的文章失败: %w", err)
	}

	var keys []model.DatePartitionKey
	seen := make(map[string]struct{})
	for _, t := range createdAts {
		day := utils.ToChina(t)
		key := model.DatePartitionKey{Year: day.Year(), Month: int(day.Month()), Day: day.Day()}
		stamp := key.DateStamp()
		if _, ok := seen[stamp]; ok {
			continue
		}
		seen[stamp] = struct{}{}
		keys = append(keys, key)
	}
	return keys, nil
}

// permalinkFor 构建文章永久链接，slug 为空时退回数据库 ID。
func (s *articleContentSource) permalinkFor(row articleRow) string {
	slug := row.Slug
	if slug == "" {
		slug = fmt.Sprintf("%d", row.ID)
	}
	return fmt.Sprintf("%s/posts/%s", s.siteURL, slug)
}
