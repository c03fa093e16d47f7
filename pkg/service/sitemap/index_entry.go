/*
 * @Description: 根索引条目，构造即校验
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
)

// MaxIndexLocationLength 是根索引条目 loc 的长度上限。
const MaxIndexLocationLength = 2048

// SitemapIndexEntry 是根索引中的一条记录。
// 字段不可导出：loc 的非空、格式与长度校验发生在构造时，
// 不存在携带非法 loc 的实例。
type SitemapIndexEntry struct {
	loc     string
	lastMod *time.Time
}

// NewSitemapIndexEntry 构造并校验一条索引记录。
// loc 为空、非绝对 URL 或超过 2048 字符时返回 constant.ErrValidationFailed。
func NewSitemapIndexEntry(loc string, lastMod *time.Time) (*SitemapIndexEntry, error) {
	if loc == "" {
		return nil, fmt.Errorf("%w: 索引条目的 loc 不能为空", constant.ErrValidationFailed)
	}
	if len(loc) > MaxIndexLocationLength {
		return nil, fmt.Errorf("%w: 索引条目的 loc 超过 %d 字符", constant.ErrValidationFailed, MaxIndexLocationLength)
	}
	parsed, err := url.Parse(loc)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return nil, fmt.Errorf("%w: 索引条目的 loc %q 不是合法的绝对 URL", constant.ErrValidationFailed, loc)
	}
	entry := &SitemapIndexEntry{loc: loc}
	if lastMod != nil {
		t := *lastMod
		entry.lastMod = &t
	}
	return entry, nil
}

// Location 返回 loc。
func (e *SitemapIndexEntry) Location() string {
	return e.loc
}

// LastModified 返回 lastmod，未提供时为 nil。
func (e *SitemapIndexEntry) LastModified() *time.Time {
	if e.lastMod == nil {
		return nil
	}
	t := *e.lastMod
	return &t
}

// Equals 判断两条索引记录是否相等：
// loc 逐字符相等且 lastmod 相等（双方都未提供也算相等）。
func (e *SitemapIndexEntry) Equals(other *SitemapIndexEntry) bool {
	if other == nil {
		return false
	}
	if e.loc != other.loc {
		return false
	}
	if e.lastMod == nil && other.lastMod == nil {
		return true
	}
	if e.lastMod == nil || other.lastMod == nil {
		return false
	}
	return e.lastMod.Equal(*other.lastMod)
}

// toXML 转换为 XML 输出结构，lastmod 未提供时整体省略。
func (e *SitemapIndexEntry) toXML() IndexSitemap {
	s := IndexSitemap{Location: e.loc}
	if e.lastMod != nil {
		s.LastModified = e.lastMod.Format("2006-01-02")
	}
	return s
}

// SitemapIndexCollection 是根索引文档的有序条目集合。
type SitemapIndexCollection struct {
	entries []*SitemapIndexEntry
}

// NewSitemapIndexCollection 创建空集合。
func NewSitemapIndexCollection() *SitemapIndexCollection {
	return &SitemapIndexCollection{}
}

// Add 追加一条记录，保持插入顺序。
func (c *SitemapIndexCollection) Add(entry *SitemapIndexEntry) {
	c.entries = append(c.entries, entry)
}

// Entries 返回插入顺序的只读视图。
func (c *SitemapIndexCollection) Entries() []*SitemapIndexEntry {
	return c.entries
}

// Len 返回条目数。
func (c *SitemapIndexCollection) Len() int {
	return len(c.entries)
}
