/*
 * @Description: 站点地图领域模型：日期分区、存储文档、生成进度
 * @Author: 安知鱼
 * @Date: 2025-09-21 00:00:00
 * @LastEditTime: 2025-10-08 22:47:02
 * @LastEditors: 安知鱼
 */
package model

import (
	"fmt"
	"time"
)

// DatePartitionKey 标识一个日期分区。
// Day 为 0 表示整月分区，Month 和 Day 同时为 0 表示整年分区。
type DatePartitionKey struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// DateStamp 返回完整分区的 YYYY-MM-DD 日期串。
func (k DatePartitionKey) DateStamp() string {
	return fmt.Sprintf("%04d-%02d-%02d", k.Year, k.Month, k.Day)
}

// MonthStamp 返回 YYYY-MM 月份串。
func (k DatePartitionKey) MonthStamp() string {
	return fmt.Sprintf("%04d-%02d", k.Year, k.Month)
}

// IsFullDate 判断该分区是否精确到天。
func (k DatePartitionKey) IsFullDate() bool {
	return k.Month > 0 && k.Day > 0
}

// DateQuery 是一次生成请求中的日期条件。
// Month、Day 为 0 表示未指定：仅年份的查询会展开为该年所有有内容的天，
// 年+月的查询展开为该月的天。
type DateQuery struct {
	Year  int `json:"year" binding:"required"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// StoredSitemap 是持久化的一份站点地图文档及其元数据。
// UpdatedAt 即该文档对外表现的 lastmod。
type StoredSitemap struct {
	Date      string    `json:"date" db:"date"`
	XML       string    `json:"xml,omitempty" db:"xml"`
	URLCount  int       `json:"url_count" db:"url_count"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// 后台生成状态机的状态。COMPLETED 是瞬时态，完成后进度被清空回到 IDLE。
const (
	GenerationStateIdle      = "IDLE"
	GenerationStateRunning   = "RUNNING"
	GenerationStateHalting   = "HALTING"
	GenerationStateHalted    = "HALTED"
	GenerationStateCompleted = "COMPLETED"
)

// GenerationProgress 是后台回填任务的持久化进度。
// 三个待处理队列按粒度从粗到细存放：年份、YYYY-MM 月份串、YYYY-MM-DD 日期串。
// StopRequested 是协作式停止标志，只在处理单元的边界被检查，
// 绝不会打断正在进行中的单元。
type GenerationProgress struct {
	InProgress      bool     `json:"in_progress"`
	YearsToProcess  []int    `json:"years_to_process"`
	MonthsToProcess []string `json:"months_to_process"`
	DaysToProcess   []string `json:"days_to_process"`
	StopRequested   bool     `json:"stop_requested"`
}

// PendingUnits 返回尚未处理的单元总数（不展开年月）。
func (p *GenerationProgress) PendingUnits() int {
	return len(p.YearsToProcess) + len(p.MonthsToProcess) + len(p.DaysToProcess)
}

// State 根据进度字段推导当前状态机状态。
func (p *GenerationProgress) State() string {
	if p == nil {
		return GenerationStateIdle
	}
	switch {
	case p.InProgress && p.StopRequested:
		return GenerationStateHalting
	case p.InProgress:
		return GenerationStateRunning
	case p.PendingUnits() > 0:
		return GenerationStateHalted
	default:
		return GenerationStateIdle
	}
}

// SitemapGeneratedEvent 是一次成功生成后发布的通知载荷。
type SitemapGeneratedEvent struct {
	Date     string  `json:"date"`
	URLCount int     `json:"url_count"`
	Elapsed  float64 `json:"generation_time"`
	Source   string  `json:"source"`
}
