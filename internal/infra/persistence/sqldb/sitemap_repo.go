/*
 * @Description: 站点地图文档的 SQL 存储
 * @Author: 安知鱼
 * @Date: 2025-09-21 00:00:00
 * @LastEditTime: 2025-10-08 22:47:02
 * @LastEditors: 安知鱼
 */
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/anzhiyu-c/anheyu-sitemap/pkg/constant"
	"github.com/anzhiyu-c/anheyu-sitemap/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-sitemap/pkg/domain/repository"
)

// sitemapRepo 以日期键为主键存储渲染完成的站点地图文档。
// 任何底层故障都包装为 constant.ErrRepositoryUnavailable，
// 编排器据此中止整个批次。
type sitemapRepo struct {
	db *sqlx.DB
}

// NewSitemapRepository 创建站点地图存储。
func NewSitemapRepository(db *sqlx.DB) repository.SitemapRepository {
	return &sitemapRepo{db: db}
}

// Get 按日期键获取文档，不存在时返回 (nil, nil)
func (r *sitemapRepo) Get(ctx context.Context, date string) (*model.StoredSitemap, error) {
	var stored model.StoredSitemap
	query := r.db.Rebind(`SELECT date, xml, url_count, updated_at FROM stored_sitemaps WHERE date = ?`)
	err := r.db.GetContext(ctx, &stored, query, date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: 读取 %s 失败: %v", constant.ErrRepositoryUnavailable, date, err)
	}
	return &stored, nil
}

// Upsert 幂等写入：先 UPDATE，未命中再 INSERT。
// 单写者模型下这个两步写法在三种数据库上都成立。
func (r *sitemapRepo) Upsert(ctx context.Context, date string, xml string, urlCount int) error {
	now := time.Now()

	update := r.db.Rebind(`UPDATE stored_sitemaps SET xml = ?, url_count = ?, updated_at = ? WHERE date = ?`)
	res, err := r.db.ExecContext(ctx, update, xml, urlCount, now, date)
	if err != nil {
		return fmt.Errorf("%w: 更新 %s 失败: %v", constant.ErrRepositoryUnavailable, date, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: 更新 %s 失败: %v", constant.ErrRepositoryUnavailable, date, err)
	}
	if affected > 0 {
		return nil
	}

	insert := r.db.Rebind(`INSERT INTO stored_sitemaps (date, xml, url_count, updated_at) VALUES (?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, insert, date, xml, urlCount, now); err != nil {
		return fmt.Errorf("%w: 写入 %s 失败: %v", constant.ErrRepositoryUnavailable, date, err)
	}
	return nil
}

// Delete 删除文档，不存在时静默成功
func (r *sitemapRepo) Delete(ctx context.Context, date string) error {
	query := r.db.Rebind(`DELETE FROM stored_sitemaps WHERE date = ?`)
	if _, err := r.db.ExecContext(ctx, query, date); err != nil {
		return fmt.Errorf("%w: 删除 %s 失败: %v", constant.ErrRepositoryUnavailable, date, err)
	}
	return nil
}

// ListDates 返回年份范围内的日期键，升序
func (r *sitemapRepo) ListDates(ctx context.Context, fromYear, toYear int) ([]string, error) {
	var dates []string
	query := r.db.Rebind(`SELECT date FROM stored_sitemaps WHERE date >= ? AND date < ? ORDER BY date`)
	from := fmt.Sprintf("%04d-01-01", fromYear)
	to := fmt.Sprintf("%04d-01-01", toYear+1)
	if err := r.db.SelectContext(ctx, &dates, query, from, to); err != nil {
		return nil, fmt.Errorf("%w: 列举日期失败: %v", constant.ErrRepositoryUnavailable, err)
	}
	return dates, nil
}

// ListMeta 返回全部文档的元数据（不含 XML 正文），升序
func (r *sitemapRepo) ListMeta(ctx context.Context) ([]*model.StoredSitemap, error) {
	var rows []struct {
		Date      string    `db:"date"`
		URLCount  int       `db:"url_count"`
		UpdatedAt time.Time `db:"updated_at"`
	}
	query := `SELECT date, url_count, updated_at FROM stored_sitemaps ORDER BY date`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("%w: 列举站点地图失败: %v", constant.ErrRepositoryUnavailable, err)
	}

	metas := make([]*model.StoredSitemap, 0, len(rows))
	for _, row := range rows {
		metas = append(metas, &model.StoredSitemap{
			Date:      row.Date,
			URLCount:  row.URLCount,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return metas, nil
}
