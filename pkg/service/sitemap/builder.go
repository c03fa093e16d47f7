/*
 * @Description: 将内容条目映射为站点地图 URL 条目
 * @Author: 安知鱼
 * @Date: 2025-09-21 00:00:00
 * @LastEditTime: 2025-10-08 22:47:02
 * @LastEditors: 安知鱼
 */
package sitemap

import (
	"fmt"
	"net/url"
	"time"

	"github.com/anzhiyu-c/anheyu-sitemap/pkg/constant"
	"github.com/anzhiyu-c/anheyu-sitemap/pkg/domain/model"
)

// DefaultMaxURLLength 是 loc 字段的默认长度上限，与根索引条目的协议上限一致。
const DefaultMaxURLLength = 2048

// BuilderOptions 控制条目构建的策略。
type BuilderOptions struct {
	// IncludeImages 为 true 时输出内容条目携带的图片
	IncludeImages bool
	// MaxURLLength 超过该长度的永久链接视为非法条目，<=0 时使用默认值
	MaxURLLength int
}

// UrlEntryBuilder 是一个无副作用的纯转换器：
// 一个内容条目进，恰好一个 URL 条目出，或因永久链接不可解析而失败。
type UrlEntryBuilder struct {
	opts BuilderOptions
}

// NewUrlEntryBuilder 创建条目构建器。
func NewUrlEntryBuilder(opts BuilderOptions) *UrlEntryBuilder {
	if opts.MaxURLLength <= 0 {
		opts.MaxURLLength = DefaultMaxURLLength
	}
	return &UrlEntryBuilder{opts: opts}
}

// Build 将一个内容条目转换为 URL 条目。
// 永久链接为空、非绝对 URL 或超长时返回 constant.ErrInvalidContentItem。
func (b *UrlEntryBuilder) Build(item *model.ContentItem) (*UrlEntry, error) {
	if item.Permalink == "" {
		return nil, fmt.Errorf("%w: 条目 %d 缺少永久链接", constant.ErrInvalidContentItem, item.ID)
	}
	if len(item.Permalink) > b.opts.MaxURLLength {
		return nil, fmt.Errorf("%w: 条目 %d 的永久链接超过 %d 字符", constant.ErrInvalidContentItem, item.ID, b.opts.MaxURLLength)
	}
	parsed, err := url.Parse(item.Permalink)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return nil, fmt.Errorf("%w: 条目 %d 的永久链接 %q 不是合法的绝对 URL", constant.ErrInvalidContentItem, item.ID, item.Permalink)
	}

	freq, priority := policyFor(item.ModifiedAt)
	entry := &UrlEntry{
		Location:     item.Permalink,
		LastModified: item.ModifiedAt,
		ChangeFreq:   freq,
		Priority:     priority,
	}
	if b.opts.IncludeImages {
		entry.Images = imageEntriesFrom(item.Images)
	}
	return entry, nil
}

// policyFor 根据内容的更新时间确定更新频率和优先级：
// 越近更新的内容权重越高。
func policyFor(modifiedAt time.Time) (ChangeFrequency, float32) {
	timeSinceUpdate := time.Since(modifiedAt)
	switch {
	case timeSinceUpdate < 24*time.Hour:
		return ChangeFreqDaily, 0.9
	case timeSinceUpdate < 7*24*time.Hour:
		return ChangeFreqWeekly, 0.8
	case timeSinceUpdate < 30*24*time.Hour:
		return ChangeFreqMonthly, 0.7
	default:
		return ChangeFreqYearly, 0.6
	}
}
