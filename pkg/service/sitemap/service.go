/*
 * @Description: 站点地图生成编排服务
 * @Author: 安知鱼
 * @Date: 2025-09-21 00:00:00
 * @LastEditTime: 2025-10-08 22:47:02
 * @LastEditors: 安知鱼
 */
package sitemap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/anzhiyu-c/anheyu-sitemap/internal/pkg/event"
	"github.com/anzhiyu-c/anheyu-sitemap/pkg/constant"
	"github.com/anzhiyu-c/anheyu-sitemap/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-sitemap/pkg/domain/repository"
)

// Options 是编排服务的运行参数。
type Options struct {
	// SiteURL 站点根地址，不以斜杠结尾
	SiteURL string
	// MaxURLsPerFile 单文档条数上限，<=0 时使用协议默认值
	MaxURLsPerFile int
	// QueryBatchSize 内容分页大小，<=0 时使用 500
	QueryBatchSize int
	// StalenessTolerance 过期判定的时钟偏差容忍，
	// 仅当内容修改时间超出存储 lastmod 该幅度时才视为过期
	StalenessTolerance time.Duration
	// IncludeImages 是否在条目中携带图片
	IncludeImages bool
}

// Service 站点地图编排服务接口
type Service interface {
	// GenerateForDateQueries 为一组日期查询（重新）生成站点地图。
	// force 为 false 时跳过未过期的已有文档；单个分区的失败不会中止批次，
	// 只有存储不可用才会立即以失败结果返回。
	GenerateForDateQueries(ctx context.Context, queries []model.DateQuery, force bool, source string) *model.SitemapOperationResult

	// GenerateFromLatest 为最近 window 内被修改过的内容所在分区生成站点地图。
	GenerateFromLatest(ctx context.Context, window time.Duration, source string) *model.SitemapOperationResult

	// GenerateIndex 渲染根索引文档。
	GenerateIndex(ctx context.Context) (string, error)

	// GetStored 获取一份已存储的文档，dateKey 可以带分片后缀。
	GetStored(ctx context.Context, dateKey string) (*model.StoredSitemap, error)

	// DeleteDate 删除一份已存储的文档。
	DeleteDate(ctx context.Context, dateKey string) *model.SitemapOperationResult

	// GenerateRobots 生成指向根索引的 robots.txt。
	GenerateRobots() string
}

// service 站点地图编排服务实现
type service struct {
	content   repository.ContentSource
	store     repository.SitemapRepository
	builder   *UrlEntryBuilder
	formatter *Formatter
	bus       *event.EventBus
	opts      Options
}

// NewService 创建编排服务。bus 允许为 nil（不发布通知）。
func NewService(
	content repository.ContentSource,
	store repository.SitemapRepository,
	bus *event.EventBus,
	opts Options,
) Service {
	opts.SiteURL = strings.TrimRight(opts.SiteURL, "/")
	if opts.MaxURLsPerFile <= 0 {
		opts.MaxURLsPerFile = DefaultMaxURLsPerFile
	}
	if opts.QueryBatchSize <= 0 {
		opts.QueryBatchSize = 500
	}
	return &service{
		content: content,
		store:   store,
		builder: NewUrlEntryBuilder(BuilderOptions{
			IncludeImages: opts.IncludeImages,
		}),
		formatter: NewFormatter(),
		bus:       bus,
		opts:      opts,
	}
}

// GenerateForDateQueries 为一组日期查询生成站点地图
func (s *service) GenerateForDateQueries(ctx context.Context, queries []model.DateQuery, force bool, source string) *model.SitemapOperationResult {
	// 校验在任何 I/O 之前完成
	if err := validateQueries(queries); err != nil {
		return model.NewFailureResult(err.Error(), constant.CodeValidationFailed)
	}

	start := time.Now()
	var (
		generated int
		skipped   int
		urlTotal  int
		doneDates []string
		failures  []string
	)

	for _, q := range queries {
		partitions, err := s.expandQuery(ctx, q)
		if err != nil {
			if errors.Is(err, constant.ErrRepositoryUnavailable) {
				return model.NewFailureResult(err.Error(), constant.CodeRepositoryUnavailable)
			}
			failures = append(failures, fmt.Sprintf("%04d-%02d-%02d: %v", q.Year, q.Month, q.Day, err))
			continue
		}

		for _, key := range partitions {
			regenerated, urlCount, err := s.processPartition(ctx, key, force)
			if err != nil {
				if errors.Is(err, constant.ErrRepositoryUnavailable) {
					return model.NewFailureResult(err.Error(), constant.CodeRepositoryUnavailable)
				}
				// 单个分区失败：记录并继续
				failures = append(failures, fmt.Sprintf("%s: %v", key.DateStamp(), err))
				continue
			}
			if regenerated {
				generated++
				urlTotal += urlCount
				doneDates = append(doneDates, key.DateStamp())
			} else {
				skipped++
			}
		}
	}

	elapsed := time.Since(start)
	if generated > 0 && s.bus != nil {
		// 通知发布不阻塞也不影响结果
		s.bus.Publish(event.SitemapGenerated, model.SitemapGeneratedEvent{
			Date:     summarizeDates(doneDates),
			URLCount: urlTotal,
			Elapsed:  elapsed.Seconds(),
			Source:   source,
		})
	}

	message := fmt.Sprintf("生成 %d 个站点地图，跳过 %d 个，共 %d 条 URL，耗时 %.2fs", generated, skipped, urlTotal, elapsed.Seconds())
	if len(failures) > 0 {
		message = fmt.Sprintf("%s；%d 个分区失败: %s", message, len(failures), strings.Join(failures, "; "))
	}
	return model.NewSuccessResult(generated, message)
}

// GenerateFromLatest 为最近被修改的内容分区生成站点地图
func (s *service) GenerateFromLatest(ctx context.Context, window time.Duration, source string) *model.SitemapOperationResult {
	keys, err := s.content.ListModifiedPartitionsSince(ctx, time.Now().Add(-window))
	if err != nil {
		return model.NewFailureResult(fmt.Sprintf("查询最近修改的分区失败: %v", err), constant.CodeInternalError)
	}
	if len(keys) == 0 {
		return model.NewSuccessResult(0, "近期没有内容变更，无需生成")
	}
	queries := make([]model.DateQuery, 0, len(keys))
	for _, key := range keys {
		queries = append(queries, model.DateQuery{Year: key.Year, Month: key.Month, Day: key.Day})
	}
	return s.GenerateForDateQueries(ctx, queries, false, source)
}

// expandQuery 将一个日期查询展开为具体的天分区。
// 仅年份的查询展开为该年所有有内容的月的天，年+月展开为有内容的天；
// 完整日期不做内容预检，直接作为一个分区。
func (s *service) expandQuery(ctx context.Context, q model.DateQuery) ([]model.DatePartitionKey, error) {
	if q.Day > 0 {
		return []model.DatePartitionKey{{Year: q.Year, Month: q.Month, Day: q.Day}}, nil
	}

	months := make([]int, 0, 12)
	if q.Month > 0 {
		months = append(months, q.Month)
	} else {
		yearCount, err := s.content.CountForPartition(ctx, model.DatePartitionKey{Year: q.Year})
		if err != nil {
			return nil, fmt.Errorf("统计 %d 年内容失败: %w", q.Year, err)
		}
		if yearCount == 0 {
			return nil, nil
		}
		for m := 1; m <= 12; m++ {
			months = append(months, m)
		}
	}

	var partitions []model.DatePartitionKey
	for _, m := range months {
		monthKey := model.DatePartitionKey{Year: q.Year, Month: m}
		monthCount, err := s.content.CountForPartition(ctx, monthKey)
		if err != nil {
			return nil, fmt.Errorf("统计 %s 内容失败: %w", monthKey.MonthStamp(), err)
		}
		if monthCount == 0 {
			continue
		}
		for d := 1; d <= DaysInMonth(q.Year, m); d++ {
			dayKey := model.DatePartitionKey{Year: q.Year, Month: m, Day: d}
			dayCount, err := s.content.CountForPartition(ctx, dayKey)
			if err != nil {
				return nil, fmt.Errorf("统计 %s 内容失败: %w", dayKey.DateStamp(), err)
			}
			if dayCount > 0 {
				partitions = append(partitions, dayKey)
			}
		}
	}
	return partitions, nil
}

// processPartition 处理一个天分区：判断新旧、拉取内容、构建条目、
// 序列化并落库。返回是否重新生成及本次写入的 URL 总数。
func (s *service) processPartition(ctx context.Context, key model.DatePartitionKey, force bool) (bool, int, error) {
	stamp := key.DateStamp()

	stored, err := s.store.Get(ctx, stamp)
	if err != nil {
		return false, 0, err
	}
	if stored != nil && !force {
		stale, err := s.isStale(ctx, key, stored)
		if err != nil {
			return false, 0, err
		}
		if !stale {
			// 已是最新，按无操作跳过
			return false, 0, nil
		}
	}

	total, err := s.content.CountForPartition(ctx, key)
	if err != nil {
		return false, 0, fmt.Errorf("%w: %s: %v", constant.ErrPartitionGenerationFailed, stamp, err)
	}
	if total == 0 {
		return false, 0, nil
	}

	docs, urlCount, err := s.buildDocuments(ctx, key, total)
	if err != nil {
		return false, 0, err
	}

	// 先完成全部序列化，任何一份失败都不落库，绝不持久化残缺 XML
	rendered := make([]string, len(docs))
	for i, doc := range docs {
		xmlStr, err := s.formatter.Format(doc)
		if err != nil {
			return false, 0, fmt.Errorf("%w: %s: %v", constant.ErrPartitionGenerationFailed, stamp, err)
		}
		rendered[i] = xmlStr
	}
	for i, doc := range docs {
		if err := s.store.Upsert(ctx, doc.DateKey(), rendered[i], doc.Len()); err != nil {
			return false, 0, err
		}
	}
	if err := s.pruneSurplusShards(ctx, key, len(docs)); err != nil {
		return false, 0, err
	}

	log.Printf("[sitemap] 已生成 %s: %d 条 URL，%d 个文档", stamp, urlCount, len(docs))
	return true, urlCount, nil
}

// pruneSurplusShards 删除早先生成、本次不再需要的分片文档。
// 内容收缩后残留的分片会继续出现在根索引里，必须随重新生成一并清理。
func (s *service) pruneSurplusShards(ctx context.Context, key model.DatePartitionKey, kept int) error {
	stamp := key.DateStamp()
	for n := kept + 1; ; n++ {
		shardKey := fmt.Sprintf("%s-%d", stamp, n)
		stored, err := s.store.Get(ctx, shardKey)
		if err != nil {
			return err
		}
		if stored == nil {
			return nil
		}
		if err := s.store.Delete(ctx, shardKey); err != nil {
			return err
		}
		log.Printf("[sitemap] 已清理多余分片 %s", shardKey)
	}
}

// buildDocuments 分页拉取分区内容并构建文档，超过上限时自动开启下一分片。
func (s *service) buildDocuments(ctx context.Context, key model.DatePartitionKey, total int) ([]*SitemapContent, int, error) {
	stamp := key.DateStamp()
	doc := NewSitemapContent(key, 1, s.opts.MaxURLsPerFile)
	docs := []*SitemapContent{doc}
	urlCount := 0

	for offset := 0; offset < total; offset += s.opts.QueryBatchSize {
		items, err := s.content.FetchPage(ctx, key, offset, s.opts.QueryBatchSize)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %s: %v", constant.ErrPartitionGenerationFailed, stamp, err)
		}
		if len(items) == 0 {
			break
		}
		for _, item := range items {
			entry, err := s.builder.Build(item)
			if err != nil {
				if errors.Is(err, constant.ErrInvalidContentItem) {
					// 无法解析永久链接的条目：跳过，分区继续
					log.Printf("[sitemap] 跳过无效条目: %v", err)
					continue
				}
				return nil, 0, fmt.Errorf("%w: %s: %v", constant.ErrPartitionGenerationFailed, stamp, err)
			}
			if err := doc.AddEntry(*entry); err != nil {
				if !errors.Is(err, constant.ErrCapacityExceeded) {
					return nil, 0, fmt.Errorf("%w: %s: %v", constant.ErrPartitionGenerationFailed, stamp, err)
				}
				// 当前分片已满，开启下一分片
				doc = NewSitemapContent(key, doc.Shard()+1, s.opts.MaxURLsPerFile)
				docs = append(docs, doc)
				if err := doc.AddEntry(*entry); err != nil {
					return nil, 0, fmt.Errorf("%w: %s: %v", constant.ErrPartitionGenerationFailed, stamp, err)
				}
			}
			urlCount++
		}
	}
	return docs, urlCount, nil
}

// isStale 判断已存储文档相对分区内容是否过期。
// 比较带时钟偏差容忍：内容修改时间超出存储 lastmod 容忍幅度才算过期。
func (s *service) isStale(ctx context.Context, key model.DatePartitionKey, stored *model.StoredSitemap) (bool, error) {
	maxMod, err := s.content.MaxModifiedTime(ctx, key)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %v", constant.ErrPartitionGenerationFailed, key.DateStamp(), err)
	}
	if maxMod == nil {
		return false, nil
	}
	return maxMod.After(stored.UpdatedAt.Add(s.opts.StalenessTolerance)), nil
}

// GenerateIndex 渲染根索引文档
func (s *service) GenerateIndex(ctx context.Context) (string, error) {
	metas, err := s.store.ListMeta(ctx)
	if err != nil {
		return "", err
	}

	collection := NewSitemapIndexCollection()
	for _, meta := range metas {
		lastMod := meta.UpdatedAt
		entry, err := NewSitemapIndexEntry(fmt.Sprintf("%s/sitemaps/sitemap-%s.xml", s.opts.SiteURL, meta.Date), &lastMod)
		if err != nil {
			return "", fmt.Errorf("构建索引条目 %s 失败: %w", meta.Date, err)
		}
		collection.Add(entry)
	}
	return s.formatter.FormatIndex(collection)
}

// GetStored 获取一份已存储的文档
func (s *service) GetStored(ctx context.Context, dateKey string) (*model.StoredSitemap, error) {
	stored, err := s.store.Get(ctx, dateKey)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("%w: 站点地图 %s", constant.ErrNotFound, dateKey)
	}
	return stored, nil
}

// DeleteDate 删除一份已存储的文档
func (s *service) DeleteDate(ctx context.Context, dateKey string) *model.SitemapOperationResult {
	if err := validateDateKey(dateKey); err != nil {
		return model.NewFailureResult(err.Error(), constant.CodeValidationFailed)
	}
	if err := s.store.Delete(ctx, dateKey); err != nil {
		return model.NewFailureResult(err.Error(), constant.CodeRepositoryUnavailable)
	}
	if s.bus != nil {
		s.bus.Publish(event.SitemapDeleted, dateKey)
	}
	return model.NewSuccessResult(1, fmt.Sprintf("已删除站点地图 %s", dateKey))
}

// GenerateRobots 生成 robots.txt
func (s *service) GenerateRobots() string {
	return fmt.Sprintf(`User-agent: *
Allow: /

# 站点地图
Sitemap: %s/sitemap.xml
`, s.opts.SiteURL)
}

// validateQueries 校验日期查询，不做任何 I/O。
func validateQueries(queries []model.DateQuery) error {
	if len(queries) == 0 {
		return fmt.Errorf("%w: 日期查询不能为空", constant.ErrValidationFailed)
	}
	currentYear := time.Now().Year()
	for _, q := range queries {
		if q.Year < FirstSitemapYear || q.Year > currentYear {
			return fmt.Errorf("%w: 年份 %d 不在 [%d, %d] 范围内", constant.ErrValidationFailed, q.Year, FirstSitemapYear, currentYear)
		}
		if q.Month < 0 || q.Month > 12 {
			return fmt.Errorf("%w: 月份 %d 非法", constant.ErrValidationFailed, q.Month)
		}
		if q.Day < 0 {
			return fmt.Errorf("%w: 日 %d 非法", constant.ErrValidationFailed, q.Day)
		}
		if q.Day > 0 {
			if q.Month == 0 {
				return fmt.Errorf("%w: 指定日 %d 时必须同时指定月份", constant.ErrValidationFailed, q.Day)
			}
			if !IsValidDate(q.Year, q.Month, q.Day) {
				return fmt.Errorf("%w: %04d-%02d-%02d 不是合法日期", constant.ErrValidationFailed, q.Year, q.Month, q.Day)
			}
		}
	}
	return nil
}

// validateDateKey 校验持久化日期键（YYYY-MM-DD，分片为 YYYY-MM-DD-N 且 N>=2）。
func validateDateKey(dateKey string) error {
	stamp := dateKey
	if len(dateKey) > 10 {
		if dateKey[10] != '-' {
			return fmt.Errorf("%w: 非法的日期键 %q", constant.ErrValidationFailed, dateKey)
		}
		shard, err := strconv.Atoi(dateKey[11:])
		if err != nil || shard < 2 {
			return fmt.Errorf("%w: 非法的分片后缀 %q", constant.ErrValidationFailed, dateKey)
		}
		stamp = dateKey[:10]
	}
	if _, _, _, err := ParseDateStamp(stamp); err != nil {
		return fmt.Errorf("%w: %v", constant.ErrValidationFailed, err)
	}
	return nil
}

// summarizeDates 将本次处理的日期归纳为事件里的 date 字段。
func summarizeDates(dates []string) string {
	switch len(dates) {
	case 0:
		return ""
	case 1:
		return dates[0]
	default:
		return fmt.Sprintf("%s~%s", dates[0], dates[len(dates)-1])
	}
}
