package sitemap

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/anzhiyu-c/anheyu-sitemap/pkg/constant"
	"github.com/anzhiyu-c/anheyu-sitemap/pkg/domain/model"
)

func TestSitemapContentDateKey(t *testing.T) {
	partition := model.DatePartitionKey{Year: 2024, Month: 2, Day: 29}

	tests := []struct {
		name         string
		shard        int
		expectedKey  string
		expectedFile string
	}{
		{
			name:         "首个分片使用裸日期串",
			shard:        1,
			expectedKey:  "2024-02-29",
			expectedFile: "sitemap-2024-02-29.xml",
		},
		{
			name:         "第二分片带后缀",
			shard:        2,
			expectedKey:  "2024-02-29-2",
			expectedFile: "sitemap-2024-02-29-2.xml",
		},
		{
			name:         "分片小于1按1处理",
			shard:        0,
			expectedKey:  "2024-02-29",
			expectedFile: "sitemap-2024-02-29.xml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewSitemapContent(partition, tt.shard, 0)
			if got := c.DateKey(); got != tt.expectedKey {
				t.Errorf("DateKey() = %q, 期望 %q", got, tt.expectedKey)
			}
			if got := c.FileName(); got != tt.expectedFile {
				t.Errorf("FileName() = %q, 期望 %q", got, tt.expectedFile)
			}
		})
	}
}

func TestSitemapContentCapacity(t *testing.T) {
	partition := model.DatePartitionKey{Year: 2024, Month: 7, Day: 15}
	c := NewSitemapContent(partition, 1, 3)

	for i := 0; i < 3; i++ {
		entry := UrlEntry{Location: fmt.Sprintf("https://example.com/posts/%d", i)}
		if err := c.AddEntry(entry); err != nil {
			t.Fatalf("第 %d 条写入失败: %v", i+1, err)
		}
	}
	if c.Len() != 3 {
		t.Fatalf("Len() = %d, 期望 3", c.Len())
	}

	err := c.AddEntry(UrlEntry{Location: "https://example.com/posts/overflow"})
	if !errors.Is(err, constant.ErrCapacityExceeded) {
		t.Errorf("超出容量时应返回 ErrCapacityExceeded, 实际: %v", err)
	}
	if c.Len() != 3 {
		t.Errorf("失败的写入不应改变条目数, Len() = %d", c.Len())
	}
}

func TestSitemapContentOrderPreserved(t *testing.T) {
	partition := model.DatePartitionKey{Year: 2024, Month: 7, Day: 15}
	c := NewSitemapContent(partition, 1, 0)

	locs := []string{
		"https://example.com/posts/alpha",
		"https://example.com/posts/beta",
		"https://example.com/posts/gamma",
	}
	for _, loc := range locs {
		if err := c.AddEntry(UrlEntry{Location: loc}); err != nil {
			t.Fatalf("写入 %q 失败: %v", loc, err)
		}
	}

	entries := c.Entries()
	for i, loc := range locs {
		if entries[i].Location != loc {
			t.Errorf("第 %d 条为 %q, 期望 %q", i, entries[i].Location, loc)
		}
	}
}

func TestSitemapContentHasImages(t *testing.T) {
	partition := model.DatePartitionKey{Year: 2024, Month: 7, Day: 15}

	c := NewSitemapContent(partition, 1, 0)
	_ = c.AddEntry(UrlEntry{Location: "https://example.com/a", LastModified: time.Now()})
	if c.HasImages() {
		t.Error("没有图片条目时 HasImages() 应为 false")
	}

	_ = c.AddEntry(UrlEntry{
		Location: "https://example.com/b",
		Images:   []ImageEntry{{Location: "https://example.com/b.webp"}},
	})
	if !c.HasImages() {
		t.Error("存在图片条目时 HasImages() 应为 true")
	}
}
