/*
 * @Description: cron 任务的日志与 panic 恢复装饰器
 * @Author: 安知鱼
 * @Date: 2025-09-22 22:36:09
 * @LastEditTime: 2025-10-14 00:32:02
 * @LastEditors: 安知鱼
 */
package task

import (
	"log/slog"
	"reflect"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// JobWrapper 是 cron.JobWrapper 的类型别名。
type JobWrapper = cron.JobWrapper

// NewLoggingWrapper 为每次任务执行生成唯一的 execution_id，
// 用结构化日志记录起止与耗时，便于按任务名和执行 ID 追踪回填进展。
func NewLoggingWrapper(logger *slog.Logger) JobWrapper {
	return func(j cron.Job) cron.Job {
		return cron.FuncJob(func() {
			jobLogger := logger.With(
				slog.String("job_name", getJobName(j)),
				slog.String("execution_id", uuid.New().String()),
			)

			start := time.Now()
			jobLogger.Info("Job execution started")
			j.Run()
			jobLogger.Info("Job execution finished", slog.Duration("duration", time.Since(start)))
		})
	}
}

// NewPanicRecoveryWrapper 捕获任务中的 panic 并记录堆栈，
// 保证单个回填或探测任务崩溃不会拖垮调度器进程。
func NewPanicRecoveryWrapper(logger *slog.Logger) JobWrapper {
	return func(j cron.Job) cron.Job {
		return cron.FuncJob(func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Job panicked",
						slog.String("job_name", getJobName(j)),
						slog.Any("panic", r),
						slog.String("stack_trace", string(debug.Stack())),
					)
				}
			}()
			j.Run()
		})
	}
}

// getJobName 优先使用任务自带的 Name()，否则反射出类型名。
func getJobName(j cron.Job) string {
	if named, ok := j.(interface{ Name() string }); ok {
		return named.Name()
	}
	t := reflect.TypeOf(j)
	if t.Kind() == reflect.Ptr {
		return t.Elem().String()
	}
	return t.String()
}
