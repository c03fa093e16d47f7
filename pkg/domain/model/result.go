/*
 * @Description: 站点地图操作结果
 * @Author: 安知鱼
 * @Date: 2025-09-21 00:00:00
 * @LastEditTime: 2025-10-08 22:47:02
 * @LastEditors: 安知鱼
 */
package model

import "encoding/json"

// SitemapOperationResult 是生成/删除等操作返回给调用方的结构化结果。
// 字段不可导出，只能通过 NewSuccessResult / NewFailureResult 构造：
// 失败结果的 count 恒为 0，成功结果不携带错误码。
type SitemapOperationResult struct {
	success   bool
	count     int
	message   string
	errorCode string
}

// NewSuccessResult 构造一个成功结果。
func NewSuccessResult(count int, message string) *SitemapOperationResult {
	return &SitemapOperationResult{
		success: true,
		count:   count,
		message: message,
	}
}

// NewFailureResult 构造一个失败结果。
func NewFailureResult(message, errorCode string) *SitemapOperationResult {
	return &SitemapOperationResult{
		success:   false,
		message:   message,
		errorCode: errorCode,
	}
}

func (r *SitemapOperationResult) Success() bool { return r.success }

// Count 返回本次操作（重新）生成的分区数量。
func (r *SitemapOperationResult) Count() int { return r.count }

func (r *SitemapOperationResult) Message() string { return r.message }

// ErrorCode 失败时返回机器可读的错误码，成功时为空串。
func (r *SitemapOperationResult) ErrorCode() string { return r.errorCode }

// MarshalJSON 让结果可以直接作为 API 响应的 data 字段输出。
func (r *SitemapOperationResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Success   bool   `json:"success"`
		Count     int    `json:"count"`
		Message   string `json:"message"`
		ErrorCode string `json:"error_code,omitempty"`
	}{
		Success:   r.success,
		Count:     r.count,
		Message:   r.message,
		ErrorCode: r.errorCode,
	})
}
