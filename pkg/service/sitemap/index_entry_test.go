package sitemap

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/anzhiyu-c/anheyu-sitemap/pkg/constant"
)

func TestNewSitemapIndexEntryValidation(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		loc     string
		lastMod *time.Time
		wantErr bool
	}{
		{
			name:    "合法条目",
			loc:     "https://example.com/sitemaps/sitemap-2024-02-29.xml",
			lastMod: &now,
			wantErr: false,
		},
		{
			name:    "lastmod 可以缺省",
			loc:     "https://example.com/sitemaps/sitemap-2024-03-01.xml",
			lastMod: nil,
			wantErr: false,
		},
		{
			name:    "空 loc",
			loc:     "",
			wantErr: true,
		},
		{
			name:    "相对路径",
			loc:     "/sitemaps/sitemap-2024-03-01.xml",
			wantErr: true,
		},
		{
			name:    "超长 loc",
			loc:     "https://example.com/" + strings.Repeat("x", MaxIndexLocationLength),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := NewSitemapIndexEntry(tt.loc, tt.lastMod)
			if tt.wantErr {
				if !errors.Is(err, constant.ErrValidationFailed) {
					t.Errorf("应返回 ErrValidationFailed, 实际: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewSitemapIndexEntry() 返回错误: %v", err)
			}
			if entry.Location() != tt.loc {
				t.Errorf("Location() = %q, 期望 %q", entry.Location(), tt.loc)
			}
		})
	}
}

func TestSitemapIndexEntryEquals(t *testing.T) {
	loc := "https://example.com/sitemaps/sitemap-2024-07-15.xml"
	ts := time.Date(2024, 7, 15, 8, 30, 0, 0, time.UTC)
	later := ts.Add(time.Hour)

	mustEntry := func(loc string, lastMod *time.Time) *SitemapIndexEntry {
		t.Helper()
		entry, err := NewSitemapIndexEntry(loc, lastMod)
		if err != nil {
			t.Fatalf("构造索引条目失败: %v", err)
		}
		return entry
	}

	tests := []struct {
		name     string
		a        *SitemapIndexEntry
		b        *SitemapIndexEntry
		expected bool
	}{
		{
			name:     "loc 与 lastmod 都相等",
			a:        mustEntry(loc, &ts),
			b:        mustEntry(loc, &ts),
			expected: true,
		},
		{
			name:     "双方都没有 lastmod",
			a:        mustEntry(loc, nil),
			b:        mustEntry(loc, nil),
			expected: true,
		},
		{
			name:     "仅一方有 lastmod",
			a:        mustEntry(loc, &ts),
			b:        mustEntry(loc, nil),
			expected: false,
		},
		{
			name:     "lastmod 不同",
			a:        mustEntry(loc, &ts),
			b:        mustEntry(loc, &later),
			expected: false,
		},
		{
			name:     "loc 不同",
			a:        mustEntry(loc, &ts),
			b:        mustEntry("https://example.com/sitemaps/sitemap-2024-07-16.xml", &ts),
			expected: false,
		},
		{
			name:     "与 nil 比较",
			a:        mustEntry(loc, &ts),
			b:        nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equals(tt.b); got != tt.expected {
				t.Errorf("Equals() = %v, 期望 %v", got, tt.expected)
			}
		})
	}
}

func TestSitemapIndexEntryLastModifiedCopy(t *testing.T) {
	ts := time.Date(2024, 7, 15, 8, 30, 0, 0, time.UTC)
	entry, err := NewSitemapIndexEntry("https://example.com/sitemap.xml", &ts)
	if err != nil {
		t.Fatalf("构造索引条目失败: %v", err)
	}

	// 修改返回值不应影响内部状态
	got := entry.LastModified()
	*got = got.Add(48 * time.Hour)

	if !entry.LastModified().Equal(ts) {
		t.Error("LastModified() 应返回内部时间的副本")
	}
}

func TestSitemapIndexCollection(t *testing.T) {
	c := NewSitemapIndexCollection()
	if c.Len() != 0 {
		t.Fatalf("新集合 Len() = %d, 期望 0", c.Len())
	}

	locs := []string{
		"https://example.com/sitemaps/sitemap-2024-07-14.xml",
		"https://example.com/sitemaps/sitemap-2024-07-15.xml",
	}
	for _, loc := range locs {
		entry, err := NewSitemapIndexEntry(loc, nil)
		if err != nil {
			t.Fatalf("构造索引条目失败: %v", err)
		}
		c.Add(entry)
	}

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, 期望 2", c.Len())
	}
	for i, loc := range locs {
		if c.Entries()[i].Location() != loc {
			t.Errorf("第 %d 条 loc = %q, 期望 %q", i, c.Entries()[i].Location(), loc)
		}
	}
}
