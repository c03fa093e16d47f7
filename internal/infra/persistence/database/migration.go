/*
 * @Description: 数据库迁移服务（建表，跨 mysql/postgres/sqlite）
 * @Author: 安知鱼
 * @Date: 2025-12-08
 */
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
)

// MigrationService 数据库迁移服务
type MigrationService struct {
	db     *sql.DB
	dbType string
}

// NewMigrationService 创建迁移服务
func NewMigrationService(db *sql.DB, dbType string) *MigrationService {
	return &MigrationService{
		db:     db,
		dbType: dbType,
	}
}

// RunMigrations 执行所有迁移。
// 建表语句只使用三种数据库共有的类型，时间戳精确到秒。
func (m *MigrationService) RunMigrations(ctx context.Context) error {
	log.Println("📋 开始执行数据库迁移...")

	statements := []struct {
		name string
		ddl  string
	}{
		{
			name: "articles",
			ddl: `CREATE TABLE IF NOT EXISTS articles (
				id BIGINT PRIMARY KEY,
				title VARCHAR(255) NOT NULL,
				slug VARCHAR(255) NOT NULL,
				status VARCHAR(32) NOT NULL,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`,
		},
		{
			name: "article_images",
			ddl: `CREATE TABLE IF NOT EXISTS article_images (
				id BIGINT PRIMARY KEY,
				article_id BIGINT NOT NULL,
				url VARCHAR(2048) NOT NULL,
				title VARCHAR(255),
				caption VARCHAR(1024),
				geo_location VARCHAR(255),
				license VARCHAR(2048),
				sort_order INT NOT NULL DEFAULT 0
			)`,
		},
		{
			name: "stored_sitemaps",
			ddl: `CREATE TABLE IF NOT EXISTS stored_sitemaps (
				date VARCHAR(16) PRIMARY KEY,
				xml TEXT NOT NULL,
				url_count INT NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`,
		},
		{
			name: "sitemap_progress",
			ddl: `CREATE TABLE IF NOT EXISTS sitemap_progress (
				id INT PRIMARY KEY,
				data TEXT NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`,
		},
	}

	for _, stmt := range statements {
		if _, err := m.db.ExecContext(ctx, stmt.ddl); err != nil {
			return fmt.Errorf("建表 %s 失败: %w", stmt.name, err)
		}
		log.Printf("  ✓ 表 %s 就绪", stmt.name)
	}

	// 按日期范围过滤文章的索引，回填扫描全靠它
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_articles_status_created ON articles (status, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_status_updated ON articles (status, updated_at)`,
		`CREATE INDEX IF NOT EXISTS idx_article_images_article ON article_images (article_id)`,
	}
	for _, ddl := range indexes {
		// MySQL 不支持 CREATE INDEX IF NOT EXISTS，重复建索引的报错直接忽略
		if _, err := m.db.ExecContext(ctx, m.rewriteIndexDDL(ddl)); err != nil {
			log.Printf("  - 跳过索引创建: %v", err)
		}
	}

	log.Println("✅ 数据库迁移完成")
	return nil
}

// rewriteIndexDDL 为不支持 IF NOT EXISTS 索引语法的 MySQL 去掉该子句。
func (m *MigrationService) rewriteIndexDDL(ddl string) string {
	if m.dbType == "mysql" {
		return strings.Replace(ddl, "IF NOT EXISTS ", "", 1)
	}
	return ddl
}
