/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-06-27 12:08:15
 * @LastEditTime: 2025-08-11 19:06:30
 * @LastEditors: 安知鱼
 */
package constant

import "errors"

// 定义业务逻辑相关的标准错误
var (
	// ErrNotFound 表示资源未找到，可以由 Handler 转换为 404
	ErrNotFound = errors.New("资源未找到")

	// ErrConflict 表示资源冲突，可以由 Handler 转换为 409
	ErrConflict = errors.New("资源冲突")

	// ErrInternalServer 表示服务器内部错误，可以由 Handler 转换为 500
	ErrInternalServer = errors.New("内部服务器错误")

	// ErrValidationFailed 表示命令输入不合法。校验在任何 I/O 之前完成，
	// 可以由 Handler 转换为 400
	ErrValidationFailed = errors.New("参数校验失败")

	// ErrInvalidContentItem 表示内容条目无法解析出有效的永久链接。
	// 生成流程跳过该条目并继续处理当前日期分区
	ErrInvalidContentItem = errors.New("内容条目无效")

	// ErrCapacityExceeded 表示单个站点地图文档已达到 URL 条数上限。
	// 调用方需要开启新的分片文档，这不算操作失败
	ErrCapacityExceeded = errors.New("站点地图文档容量已满")

	// ErrRepositoryUnavailable 表示站点地图存储不可用。
	// 这是致命错误，整个批次立即中止
	ErrRepositoryUnavailable = errors.New("站点地图存储不可用")

	// ErrPartitionGenerationFailed 表示单个日期分区生成失败。
	// 该失败会被记录并汇总，批次继续处理后续分区
	ErrPartitionGenerationFailed = errors.New("日期分区生成失败")

	// ErrGenerationInProgress 表示已有一个后台生成任务在运行，可以由 Handler 转换为 409
	ErrGenerationInProgress = errors.New("已有生成任务正在进行中")
)

// 错误码，随 SitemapOperationResult 返回给 CLI/REST 调用方
const (
	CodeValidationFailed      = "validation_failed"
	CodeRepositoryUnavailable = "repository_unavailable"
	CodeGenerationInProgress  = "generation_in_progress"
	CodeInternalError         = "internal_error"
)
