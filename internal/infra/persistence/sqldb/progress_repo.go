/*
 * @Description: 回填进度的单行 SQL 存储
 * @Author: 安知鱼
 * @Date: 2025-09-21 00:00:00
 * @LastEditTime: 2025-10-08 22:47:02
 * @LastEditors: 安知鱼
 */
package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/anzhiyu-c/anheyu-sitemap/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-sitemap/pkg/domain/repository"
)

// 进度是进程级单例，固定占用 id=1 这一行
const progressRowID = 1

// progressRepo 将 GenerationProgress 以 JSON 形式存在单行里。
type progressRepo struct {
	db *sqlx.DB
}

// NewProgressRepository 创建进度存储。
func NewProgressRepository(db *sqlx.DB) repository.ProgressRepository {
	return &progressRepo{db: db}
}

// Load 读取进度，从未保存过时返回 (nil, nil)
func (r *progressRepo) Load(ctx context.Context) (*model.GenerationProgress, error) {
	var data string
	query := r.db.Rebind(`SELECT data FROM sitemap_progress WHERE id = ?`)
	err := r.db.GetContext(ctx, &data, query, progressRowID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取进度失败: %w", err)
	}

	var p model.GenerationProgress
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("解析进度数据失败: %w", err)
	}
	return &p, nil
}

// Save 覆盖保存进度
func (r *progressRepo) Save(ctx context.Context, p *model.GenerationProgress) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("编码进度数据失败: %w", err)
	}
	now := time.Now()

	update := r.db.Rebind(`UPDATE sitemap_progress SET data = ?, updated_at = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, update, string(data), now, progressRowID)
	if err != nil {
		return fmt.Errorf("保存进度失败: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("保存进度失败: %w", err)
	}
	if affected > 0 {
		return nil
	}

	insert := r.db.Rebind(`INSERT INTO sitemap_progress (id, data, updated_at) VALUES (?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, insert, progressRowID, string(data), now); err != nil {
		return fmt.Errorf("保存进度失败: %w", err)
	}
	return nil
}

// Clear 清空进度
func (r *progressRepo) Clear(ctx context.Context) error {
	query := r.db.Rebind(`DELETE FROM sitemap_progress WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, progressRowID); err != nil {
		return fmt.Errorf("清理进度失败: %w", err)
	}
	return nil
}
