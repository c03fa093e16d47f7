/*
 * @Description: 缺失/过期站点地图探测
 * @Author: 安知鱼
 * @Date: 2025-09-21 00:00:00
 * @LastEditTime: 2025-10-08 22:47:02
 * @LastEditors: 安知鱼
 */
package sitemap

import (
	"context"
	"fmt"
	"time"

	"github.com/anzhiyu-c/anheyu-sitemap/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-sitemap/pkg/domain/repository"
)

// DetectionReport 是一次扫描的纯报告，本身不触发任何生成。
type DetectionReport struct {
	// AllDatesToGenerate 有内容但没有对应站点地图的日期分区
	AllDatesToGenerate []string `json:"all_dates_to_generate"`
	// DatesNeedingUpdates 已有站点地图但内容在其 lastmod 之后被修改过的日期分区
	DatesNeedingUpdates []string `json:"dates_needing_updates"`
}

// Detector 在 [1970-01-01, 今天] 的闭区间上逐分区惰性扫描：
// 只做计数和最大修改时间查询，从不把内容本身载入内存。
type Detector struct {
	content   repository.ContentSource
	store     repository.SitemapRepository
	tolerance time.Duration
}

// NewDetector 创建探测器。tolerance 含义与编排服务的过期判定一致。
func NewDetector(content repository.ContentSource, store repository.SitemapRepository, tolerance time.Duration) *Detector {
	return &Detector{
		content:   content,
		store:     store,
		tolerance: tolerance,
	}
}

// Detect 扫描全部历史，报告缺失与过期的日期分区。
// 空的年/月在计数层被整体跳过，扫描成本与有内容的天数成正比。
func (d *Detector) Detect(ctx context.Context) (*DetectionReport, error) {
	report := &DetectionReport{
		AllDatesToGenerate:  []string{},
		DatesNeedingUpdates: []string{},
	}

	now := time.Now()
	for year := FirstSitemapYear; year <= now.Year(); year++ {
		yearCount, err := d.content.CountForPartition(ctx, model.DatePartitionKey{Year: year})
		if err != nil {
			return nil, fmt.Errorf("统计 %d 年内容失败: %w", year, err)
		}
		if yearCount == 0 {
			continue
		}

		lastMonth := 12
		if year == now.Year() {
			lastMonth = int(now.Month())
		}
		for month := 1; month <= lastMonth; month++ {
			monthKey := model.DatePartitionKey{Year: year, Month: month}
			monthCount, err := d.content.CountForPartition(ctx, monthKey)
			if err != nil {
				return nil, fmt.Errorf("统计 %s 内容失败: %w", monthKey.MonthStamp(), err)
			}
			if monthCount == 0 {
				continue
			}

			lastDay := DaysInMonth(year, month)
			if year == now.Year() && month == int(now.Month()) {
				lastDay = now.Day()
			}
			for day := 1; day <= lastDay; day++ {
				if err := d.inspectDay(ctx, model.DatePartitionKey{Year: year, Month: month, Day: day}, report); err != nil {
					return nil, err
				}
			}
		}
	}
	return report, nil
}

// inspectDay 检查单个天分区，将缺失或过期者记入报告。
func (d *Detector) inspectDay(ctx context.Context, key model.DatePartitionKey, report *DetectionReport) error {
	count, err := d.content.CountForPartition(ctx, key)
	if err != nil {
		return fmt.Errorf("统计 %s 内容失败: %w", key.DateStamp(), err)
	}
	if count == 0 {
		return nil
	}

	stamp := key.DateStamp()
	stored, err := d.store.Get(ctx, stamp)
	if err != nil {
		return fmt.Errorf("读取站点地图 %s 失败: %w", stamp, err)
	}
	if stored == nil {
		report.AllDatesToGenerate = append(report.AllDatesToGenerate, stamp)
		return nil
	}

	maxMod, err := d.content.MaxModifiedTime(ctx, key)
	if err != nil {
		return fmt.Errorf("查询 %s 最大修改时间失败: %w", stamp, err)
	}
	if maxMod != nil && maxMod.After(stored.UpdatedAt.Add(d.tolerance)) {
		report.DatesNeedingUpdates = append(report.DatesNeedingUpdates, stamp)
	}
	return nil
}
