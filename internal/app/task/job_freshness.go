/*
 * @Description: 内容新鲜度任务，定期刷新近期有更新的日期分片
 * @Author: 安知鱼
 * @Date: 2025-09-23 14:02:55
 * @LastEditTime: 2025-10-18 21:35:12
 * @LastEditors: 安知鱼
 */
package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/anzhiyu-c/anheyu-sitemap/pkg/service/sitemap"
)

// FreshnessJob 扫描最近一段时间内发布过内容的日期，
// 重新生成其中已过期的站点地图文档。
type FreshnessJob struct {
	svc    sitemap.Service
	window time.Duration
	logger *slog.Logger
}

// NewFreshnessJob 创建新鲜度任务，window 为回看窗口。
func NewFreshnessJob(svc sitemap.Service, window time.Duration, logger *slog.Logger) *FreshnessJob {
	return &FreshnessJob{svc: svc, window: window, logger: logger}
}

func (j *FreshnessJob) Name() string {
	return "FreshnessJob"
}

func (j *FreshnessJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	result := j.svc.GenerateFromLatest(ctx, j.window, "cron")
	if !result.Success() {
		j.logger.Error("新鲜度刷新失败",
			slog.String("message", result.Message()),
			slog.String("error_code", result.ErrorCode()),
		)
		return
	}
	j.logger.Info("新鲜度刷新完成",
		slog.Int("generated", result.Count()),
		slog.String("message", result.Message()),
	)
}
