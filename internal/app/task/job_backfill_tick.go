/*
 * @Description: 回填推进任务，每次运行消费有限数量的待处理天单元
 * @Author: 安知鱼
 * @Date: 2025-09-23 11:20:18
 * @LastEditTime: 2025-10-18 21:33:40
 * @LastEditors: 安知鱼
 */
package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/anzhiyu-c/anheyu-sitemap/pkg/service/sitemap"
)

// 单次运行最多推进的天单元数，避免一次 cron 触发占用过久。
const maxUnitsPerRun = 30

// BackfillTickJob 驱动回填状态机。每次运行至多处理 maxUnitsPerRun 个
// 天单元；遇到停止请求或队列清空则立刻停手，剩余工作留给下一次触发。
type BackfillTickJob struct {
	manager *sitemap.ProgressManager
	logger  *slog.Logger
}

// NewBackfillTickJob 创建回填推进任务。
func NewBackfillTickJob(manager *sitemap.ProgressManager, logger *slog.Logger) *BackfillTickJob {
	return &BackfillTickJob{manager: manager, logger: logger}
}

func (j *BackfillTickJob) Name() string {
	return "BackfillTickJob"
}

func (j *BackfillTickJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	processed := 0
	for i := 0; i < maxUnitsPerRun; i++ {
		outcome, err := j.manager.Tick(ctx)
		if err != nil {
			j.logger.Error("回填推进失败", slog.Any("error", err), slog.Int("processed", processed))
			return
		}

		switch outcome {
		case sitemap.TickProcessed:
			processed++
			continue
		case sitemap.TickCompleted:
			j.logger.Info("回填已全部完成", slog.Int("processed", processed))
			return
		case sitemap.TickHalted:
			j.logger.Info("回填已按请求停止", slog.Int("processed", processed))
			return
		default: // TickIdle
			if processed > 0 {
				j.logger.Info("本轮回填推进结束", slog.Int("processed", processed))
			}
			return
		}
	}

	j.logger.Info("达到单轮处理上限，剩余单元等待下次触发", slog.Int("processed", processed))
}
