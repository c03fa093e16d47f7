/*
 * @Description: 可恢复的后台回填状态机
 * @Author: 安知鱼
 * @Date: 2025-09-21 00:00:00
 * @LastEditTime: 2025-10-08 22:47:02
 * @LastEditors: 安知鱼
 */
package sitemap

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/anzhiyu-c/anheyu-sitemap/internal/pkg/event"
	"github.com/anzhiyu-c/anheyu-sitemap/pkg/constant"
	"github.com/anzhiyu-c/anheyu-sitemap/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-sitemap/pkg/domain/repository"
)

// TickOutcome 是一次 tick 的结果。
type TickOutcome string

const (
	// TickIdle 没有进行中的任务
	TickIdle TickOutcome = "idle"
	// TickProcessed 处理了一个天单元
	TickProcessed TickOutcome = "processed"
	// TickHalted 响应停止请求，队列原样保留
	TickHalted TickOutcome = "halted"
	// TickCompleted 队列清空，回填完成
	TickCompleted TickOutcome = "completed"
)

// ProgressManager 驱动分块、可恢复的历史回填。
// 每次 tick 只处理一个天单元，进度持久化在 ProgressRepository 里，
// 进程重启后可以原地续跑。停止是协作式的：RequestHalt 只设置标志，
// 下一次 tick 在单元边界上让出，绝不打断进行中的单元。
type ProgressManager struct {
	progressRepo repository.ProgressRepository
	content      repository.ContentSource
	svc          Service
	bus          *event.EventBus
}

// NewProgressManager 创建状态机。bus 允许为 nil。
func NewProgressManager(
	progressRepo repository.ProgressRepository,
	content repository.ContentSource,
	svc Service,
	bus *event.EventBus,
) *ProgressManager {
	return &ProgressManager{
		progressRepo: progressRepo,
		content:      content,
		svc:          svc,
		bus:          bus,
	}
}

// StartFromAllArticles 启动全量回填：把 1970 到当前年的每一年入队。
// 已有任务在进行中时返回 constant.ErrGenerationInProgress。
func (m *ProgressManager) StartFromAllArticles(ctx context.Context) error {
	if err := m.ensureNotRunning(ctx); err != nil {
		return err
	}

	currentYear := time.Now().Year()
	years := make([]int, 0, currentYear-FirstSitemapYear+1)
	for y := FirstSitemapYear; y <= currentYear; y++ {
		years = append(years, y)
	}
	p := &model.GenerationProgress{
		InProgress:     true,
		YearsToProcess: years,
	}
	if err := m.progressRepo.Save(ctx, p); err != nil {
		return fmt.Errorf("保存回填进度失败: %w", err)
	}
	log.Printf("[sitemap] 全量回填已启动: %d 个年份入队", len(years))
	return nil
}

// StartFromLatest 启动增量回填：只把最近 window 内被修改过的内容所在的天入队。
func (m *ProgressManager) StartFromLatest(ctx context.Context, window time.Duration) error {
	if err := m.ensureNotRunning(ctx); err != nil {
		return err
	}

	keys, err := m.content.ListModifiedPartitionsSince(ctx, time.Now().Add(-window))
	if err != nil {
		return fmt.Errorf("查询最近修改的分区失败: %w", err)
	}
	days := make([]string, 0, len(keys))
	for _, key := range keys {
		days = append(days, key.DateStamp())
	}
	p := &model.GenerationProgress{
		InProgress:    true,
		DaysToProcess: days,
	}
	if err := m.progressRepo.Save(ctx, p); err != nil {
		return fmt.Errorf("保存回填进度失败: %w", err)
	}
	log.Printf("[sitemap] 增量回填已启动: %d 个日期入队", len(days))
	return nil
}

// Tick 执行一次有界的处理：
// 响应停止请求，或取出下一个天单元交给编排器处理，然后持久化队列。
// 取单元时按需把月展开为天、把年展开为月，空的月/年被直接丢弃，
// 但单次 tick 实际生成的内容始终不超过一天。
func (m *ProgressManager) Tick(ctx context.Context) (TickOutcome, error) {
	p, err := m.progressRepo.Load(ctx)
	if err != nil {
		return TickIdle, fmt.Errorf("读取回填进度失败: %w", err)
	}
	if p == nil || !p.InProgress {
		return TickIdle, nil
	}

	if p.StopRequested {
		// 协作式停止：清除标志、退出运行态，队列原样保留以便恢复
		p.StopRequested = false
		p.InProgress = false
		if err := m.progressRepo.Save(ctx, p); err != nil {
			return TickIdle, fmt.Errorf("保存回填进度失败: %w", err)
		}
		if m.bus != nil {
			m.bus.Publish(event.BackfillHalted, p.PendingUnits())
		}
		log.Printf("[sitemap] 回填已停止，剩余 %d 个待处理单元", p.PendingUnits())
		return TickHalted, nil
	}

	stamp, ok, err := m.nextDay(ctx, p)
	if err != nil {
		// 展开失败也要把已消费的队列状态保存下来
		if saveErr := m.progressRepo.Save(ctx, p); saveErr != nil {
			log.Printf("[sitemap] 保存回填进度失败: %v", saveErr)
		}
		return TickIdle, err
	}
	if !ok {
		// 队列清空，回填完成
		if err := m.progressRepo.Clear(ctx); err != nil {
			return TickIdle, fmt.Errorf("清理回填进度失败: %w", err)
		}
		if m.bus != nil {
			m.bus.Publish(event.BackfillCompleted, 0)
		}
		log.Println("[sitemap] 回填完成，队列已清空")
		return TickCompleted, nil
	}

	year, month, day, err := ParseDateStamp(stamp)
	if err != nil {
		return TickIdle, err
	}
	result := m.svc.GenerateForDateQueries(ctx, []model.DateQuery{{Year: year, Month: month, Day: day}}, false, "backfill")
	if !result.Success() {
		// 单元失败：该天已出队，记录错误后继续推进，失败的天可由探测报告兜底
		log.Printf("[sitemap] 回填 %s 失败: %s", stamp, result.Message())
	}

	if p.PendingUnits() == 0 {
		if err := m.progressRepo.Clear(ctx); err != nil {
			return TickIdle, fmt.Errorf("清理回填进度失败: %w", err)
		}
		if m.bus != nil {
			m.bus.Publish(event.BackfillCompleted, 0)
		}
		log.Println("[sitemap] 回填完成")
		return TickCompleted, nil
	}
	if err := m.progressRepo.Save(ctx, p); err != nil {
		return TickIdle, fmt.Errorf("保存回填进度失败: %w", err)
	}
	return TickProcessed, nil
}

// nextDay 从队列中取出下一个天单元，必要时把月展开为天、把年展开为月。
// 没有内容的月和年在计数层被整体丢弃。返回 ok=false 表示队列已空。
func (m *ProgressManager) nextDay(ctx context.Context, p *model.GenerationProgress) (string, bool, error) {
	for {
		if len(p.DaysToProcess) > 0 {
			stamp := p.DaysToProcess[0]
			p.DaysToProcess = p.DaysToProcess[1:]
			return stamp, true, nil
		}

		if len(p.MonthsToProcess) > 0 {
			monthStamp := p.MonthsToProcess[0]
			p.MonthsToProcess = p.MonthsToProcess[1:]

			year, month, err := ParseMonthStamp(monthStamp)
			if err != nil {
				return "", false, err
			}
			count, err := m.content.CountForPartition(ctx, model.DatePartitionKey{Year: year, Month: month})
			if err != nil {
				// 查询失败的月放回队首，瞬时故障不会丢掉整月
				p.MonthsToProcess = append([]string{monthStamp}, p.MonthsToProcess...)
				return "", false, fmt.Errorf("统计 %s 内容失败: %w", monthStamp, err)
			}
			if count == 0 {
				continue
			}
			for d := 1; d <= DaysInMonth(year, month); d++ {
				p.DaysToProcess = append(p.DaysToProcess, FormatDateStamp(year, month, d))
			}
			continue
		}

		if len(p.YearsToProcess) > 0 {
			year := p.YearsToProcess[0]
			p.YearsToProcess = p.YearsToProcess[1:]

			count, err := m.content.CountForPartition(ctx, model.DatePartitionKey{Year: year})
			if err != nil {
				// 查询失败的年放回队首，瞬时故障不会丢掉整年
				p.YearsToProcess = append([]int{year}, p.YearsToProcess...)
				return "", false, fmt.Errorf("统计 %d 年内容失败: %w", year, err)
			}
			if count == 0 {
				continue
			}
			for mo := 1; mo <= 12; mo++ {
				p.MonthsToProcess = append(p.MonthsToProcess, FormatMonthStamp(year, mo))
			}
			continue
		}

		return "", false, nil
	}
}

// RequestHalt 设置协作式停止标志，在下一次 tick 的单元边界生效。
func (m *ProgressManager) RequestHalt(ctx context.Context) error {
	p, err := m.progressRepo.Load(ctx)
	if err != nil {
		return fmt.Errorf("读取回填进度失败: %w", err)
	}
	if p == nil || !p.InProgress {
		return fmt.Errorf("%w: 当前没有进行中的回填任务", constant.ErrValidationFailed)
	}
	p.StopRequested = true
	if err := m.progressRepo.Save(ctx, p); err != nil {
		return fmt.Errorf("保存回填进度失败: %w", err)
	}
	log.Println("[sitemap] 已请求停止回填，将在下一个单元边界生效")
	return nil
}

// Resume 让处于 HALTED 状态的任务原队列继续运行。
func (m *ProgressManager) Resume(ctx context.Context) error {
	p, err := m.progressRepo.Load(ctx)
	if err != nil {
		return fmt.Errorf("读取回填进度失败: %w", err)
	}
	if p == nil || p.PendingUnits() == 0 {
		return fmt.Errorf("%w: 没有可恢复的回填任务", constant.ErrValidationFailed)
	}
	if p.InProgress {
		return constant.ErrGenerationInProgress
	}
	p.InProgress = true
	if err := m.progressRepo.Save(ctx, p); err != nil {
		return fmt.Errorf("保存回填进度失败: %w", err)
	}
	log.Printf("[sitemap] 回填已恢复，剩余 %d 个待处理单元", p.PendingUnits())
	return nil
}

// Reset 清空全部队列与标志，状态机回到 IDLE。
func (m *ProgressManager) Reset(ctx context.Context) error {
	if err := m.progressRepo.Clear(ctx); err != nil {
		return fmt.Errorf("清理回填进度失败: %w", err)
	}
	log.Println("[sitemap] 回填进度已重置")
	return nil
}

// Status 返回当前进度快照，从未启动时返回空进度。
func (m *ProgressManager) Status(ctx context.Context) (*model.GenerationProgress, error) {
	p, err := m.progressRepo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取回填进度失败: %w", err)
	}
	if p == nil {
		p = &model.GenerationProgress{}
	}
	return p, nil
}

// ensureNotRunning 拒绝在已有任务运行时启动新任务。
func (m *ProgressManager) ensureNotRunning(ctx context.Context) error {
	p, err := m.progressRepo.Load(ctx)
	if err != nil {
		return fmt.Errorf("读取回填进度失败: %w", err)
	}
	if p != nil && p.InProgress {
		return constant.ErrGenerationInProgress
	}
	return nil
}
