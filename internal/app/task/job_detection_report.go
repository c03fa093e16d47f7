/*
 * @Description: 缺失/过期检测任务，巡检存储与内容的覆盖差距
 * @Author: 安知鱼
 * @Date: 2025-09-24 09:41:30
 * @LastEditTime: 2025-10-18 21:36:47
 * @LastEditors: 安知鱼
 */
package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/anzhiyu-c/anheyu-sitemap/pkg/service/sitemap"
)

// DetectionReportJob 全量对比内容与已存储文档，
// 输出缺失与过期日期的数量，便于监控覆盖情况。
type DetectionReportJob struct {
	detector *sitemap.Detector
	logger   *slog.Logger
}

// NewDetectionReportJob 创建检测任务。
func NewDetectionReportJob(detector *sitemap.Detector, logger *slog.Logger) *DetectionReportJob {
	return &DetectionReportJob{detector: detector, logger: logger}
}

func (j *DetectionReportJob) Name() string {
	return "DetectionReportJob"
}

func (j *DetectionReportJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	report, err := j.detector.Detect(ctx)
	if err != nil {
		j.logger.Error("覆盖检测失败", slog.Any("error", err))
		return
	}

	j.logger.Info("覆盖检测完成",
		slog.Int("missing", len(report.AllDatesToGenerate)),
		slog.Int("outdated", len(report.DatesNeedingUpdates)),
	)
}
