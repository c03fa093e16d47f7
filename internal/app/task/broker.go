// internal/app/task/broker.go
package task

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/anzhiyu-c/anheyu-sitemap/pkg/service/sitemap"
)

// Broker 是整个后台任务模块的核心协调者。
type Broker struct {
	cron       *cron.Cron
	logger     *slog.Logger
	jobQueue   chan Job
	sitemapSvc sitemap.Service
	manager    *sitemap.ProgressManager
	detector   *sitemap.Detector
	window     time.Duration
}

// NewBroker 是 Broker 的构造函数。
func NewBroker(
	sitemapSvc sitemap.Service,
	manager *sitemap.ProgressManager,
	detector *sitemap.Detector,
	freshnessWindow time.Duration,
) *Broker {

	slogHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(slogHandler).With("system", "task_broker")

	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(
			NewPanicRecoveryWrapper(logger),
			NewLoggingWrapper(logger),
			cron.DelayIfStillRunning(cron.DefaultLogger),
		),
	)

	jobQueue := make(chan Job, 1000)

	broker := &Broker{
		cron:       c,
		logger:     logger,
		jobQueue:   jobQueue,
		sitemapSvc: sitemapSvc,
		manager:    manager,
		detector:   detector,
		window:     freshnessWindow,
	}

	broker.startWorkerPool()

	return broker
}

// startWorkerPool 启动固定数量的 worker goroutine 来处理任务。
func (b *Broker) startWorkerPool() {
	workerCount := runtime.NumCPU()
	if workerCount <= 0 {
		workerCount = 4
	}
	b.logger.Info("Starting task worker pool", "concurrency", workerCount)

	for i := 0; i < workerCount; i++ {
		workerID := i + 1
		go func() {
			b.logger.Info("Worker started", "worker_id", workerID)
			for job := range b.jobQueue {
				jobWithWrappers := cron.NewChain(
					NewPanicRecoveryWrapper(b.logger),
					NewLoggingWrapper(b.logger),
				).Then(job)

				b.logger.Info("Worker picked up a job", "worker_id", workerID, "job_name", job.Name())
				jobWithWrappers.Run()
				b.logger.Info("Worker finished a job", "worker_id", workerID, "job_name", job.Name())
			}
			b.logger.Info("Worker stopped", "worker_id", workerID)
		}()
	}
}

// RegisterCronJobs 注册所有周期性任务。
func (b *Broker) RegisterCronJobs() {
	b.logger.Info("Registering all periodic jobs...")

	// 回填推进任务 - 每30秒检查一次待处理队列
	backfillJob := NewBackfillTickJob(b.manager, b.logger)
	_, err := b.cron.AddJob("*/30 * * * * *", backfillJob)
	if err != nil {
		b.logger.Error("Failed to add 'BackfillTickJob'", slog.Any("error", err))
		os.Exit(1)
	}
	b.logger.Info("-> Successfully registered 'BackfillTickJob'", "schedule", "every 30 seconds")

	// 新鲜度刷新任务 - 每天凌晨2点执行
	freshnessJob := NewFreshnessJob(b.sitemapSvc, b.window, b.logger)
	_, err = b.cron.AddJob("0 0 2 * * *", freshnessJob)
	if err != nil {
		b.logger.Error("Failed to add 'FreshnessJob'", slog.Any("error", err))
		os.Exit(1)
	}
	b.logger.Info("-> Successfully registered 'FreshnessJob'", "schedule", "every day at 2:00:00 AM")

	// 覆盖检测任务 - 每天凌晨3点执行
	detectionJob := NewDetectionReportJob(b.detector, b.logger)
	_, err = b.cron.AddJob("0 0 3 * * *", detectionJob)
	if err != nil {
		b.logger.Error("Failed to add 'DetectionReportJob'", slog.Any("error", err))
		os.Exit(1)
	}
	b.logger.Info("-> Successfully registered 'DetectionReportJob'", "schedule", "every day at 3:00:00 AM")

	b.logger.Info("All periodic jobs registered.")
}

// Dispatch 将任务发送到队列中。
func (b *Broker) Dispatch(job Job) {
	b.jobQueue <- job
}

// DispatchDetectionReport 创建一次覆盖检测任务并派发到后台执行。
func (b *Broker) DispatchDetectionReport() {
	job := NewDetectionReportJob(b.detector, b.logger)
	b.Dispatch(job)
	b.logger.Info("Successfully queued detection report job")
}

// Start 启动 cron 调度器。
func (b *Broker) Start() {
	b.logger.Info("Task broker started.")
	b.cron.Start()

	// 启动时检查是否存在未完成的回填队列，有则交由周期任务继续推进
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		progress, err := b.manager.Status(ctx)
		if err != nil {
			b.logger.Error("检查回填进度失败", slog.Any("error", err))
			return
		}
		if progress == nil || (!progress.InProgress && progress.PendingUnits() == 0) {
			b.logger.Info("未发现进行中的回填任务")
			return
		}
		b.logger.Info("发现未完成的回填任务，将由周期任务继续推进",
			slog.String("state", progress.State()),
			slog.Int("pending_units", progress.PendingUnits()),
		)
	}()
}

// Stop 优雅地停止 cron 调度器和所有 worker。
func (b *Broker) Stop() {
	b.logger.Info("Stopping task broker...")
	ctx := b.cron.Stop()
	<-ctx.Done()
	close(b.jobQueue)
	b.logger.Info("Task broker gracefully stopped.")
}
