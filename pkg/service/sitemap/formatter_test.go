package sitemap

import (
	"strings"
	"testing"
	"time"

	"github.com/anzhiyu-c/anheyu-sitemap/pkg/domain/model"
)

func TestFormatterFormat(t *testing.T) {
	partition := model.DatePartitionKey{Year: 2024, Month: 7, Day: 15}
	content := NewSitemapContent(partition, 1, 0)

	modified := time.Date(2024, 7, 15, 9, 0, 0, 0, time.FixedZone("CST", 8*3600))
	entries := []UrlEntry{
		{Location: "https://example.com/posts/first", LastModified: modified, ChangeFreq: ChangeFreqWeekly, Priority: 0.8},
		{Location: "https://example.com/posts/second", LastModified: modified, ChangeFreq: ChangeFreqMonthly, Priority: 0.7},
		{Location: "https://example.com/posts/third", LastModified: modified, ChangeFreq: ChangeFreqYearly, Priority: 0.6},
	}
	for _, e := range entries {
		if err := content.AddEntry(e); err != nil {
			t.Fatalf("写入条目失败: %v", err)
		}
	}

	xml, err := NewFormatter().Format(content)
	if err != nil {
		t.Fatalf("Format() 返回错误: %v", err)
	}

	if !strings.HasPrefix(xml, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Error("输出应以 XML 声明开头")
	}
	if !strings.Contains(xml, `xmlns="`+XmlnsSitemap+`"`) {
		t.Error("输出应声明 sitemaps.org 命名空间")
	}
	if strings.Contains(xml, "xmlns:image") {
		t.Error("没有图片条目时不应声明 image 命名空间")
	}
	if got := strings.Count(xml, "<url>"); got != 3 {
		t.Errorf("<url> 块数 = %d, 期望 3", got)
	}
	for _, e := range entries {
		if !strings.Contains(xml, "<loc>"+e.Location+"</loc>") {
			t.Errorf("输出缺少 loc %q", e.Location)
		}
	}
	if !strings.Contains(xml, "<lastmod>2024-07-15T09:00:00+08:00</lastmod>") {
		t.Error("lastmod 应使用带时区偏移的完整时间格式")
	}
	// 条目按插入顺序输出
	if strings.Index(xml, "posts/first") > strings.Index(xml, "posts/second") {
		t.Error("条目应保持插入顺序")
	}
}

func TestFormatterFormatWithImages(t *testing.T) {
	partition := model.DatePartitionKey{Year: 2024, Month: 7, Day: 15}
	content := NewSitemapContent(partition, 1, 0)

	err := content.AddEntry(UrlEntry{
		Location:   "https://example.com/posts/gallery",
		ChangeFreq: ChangeFreqWeekly,
		Priority:   0.8,
		Images: []ImageEntry{
			{
				Location:    "https://example.com/cover.webp",
				Title:       "封面",
				Caption:     "文章封面",
				GeoLocation: "Hangzhou, China",
				License:     "https://creativecommons.org/licenses/by/4.0/",
			},
		},
	})
	if err != nil {
		t.Fatalf("写入条目失败: %v", err)
	}

	xml, err := NewFormatter().Format(content)
	if err != nil {
		t.Fatalf("Format() 返回错误: %v", err)
	}

	if !strings.Contains(xml, `xmlns:image="`+XmlnsImage+`"`) {
		t.Error("存在图片时应声明 image 命名空间")
	}
	for _, fragment := range []string{
		"<image:loc>https://example.com/cover.webp</image:loc>",
		"<image:title>封面</image:title>",
		"<image:caption>文章封面</image:caption>",
		"<image:geo_location>Hangzhou, China</image:geo_location>",
		"<image:license>https://creativecommons.org/licenses/by/4.0/</image:license>",
	} {
		if !strings.Contains(xml, fragment) {
			t.Errorf("输出缺少图片字段 %q", fragment)
		}
	}
}

func TestFormatterEscapesText(t *testing.T) {
	partition := model.DatePartitionKey{Year: 2024, Month: 7, Day: 15}
	content := NewSitemapContent(partition, 1, 0)

	if err := content.AddEntry(UrlEntry{Location: "https://example.com/posts/a?b=1&c=2"}); err != nil {
		t.Fatalf("写入条目失败: %v", err)
	}

	xml, err := NewFormatter().Format(content)
	if err != nil {
		t.Fatalf("Format() 返回错误: %v", err)
	}
	if !strings.Contains(xml, "b=1&amp;c=2") {
		t.Error("loc 中的 & 应被转义为 &amp;")
	}
}

func TestFormatterFormatIndex(t *testing.T) {
	collection := NewSitemapIndexCollection()
	ts := time.Date(2024, 7, 15, 23, 10, 0, 0, time.UTC)

	withMod, err := NewSitemapIndexEntry("https://example.com/sitemaps/sitemap-2024-07-15.xml", &ts)
	if err != nil {
		t.Fatalf("构造索引条目失败: %v", err)
	}
	withoutMod, err := NewSitemapIndexEntry("https://example.com/sitemaps/sitemap-2024-07-16.xml", nil)
	if err != nil {
		t.Fatalf("构造索引条目失败: %v", err)
	}
	collection.Add(withMod)
	collection.Add(withoutMod)

	xml, err := NewFormatter().FormatIndex(collection)
	if err != nil {
		t.Fatalf("FormatIndex() 返回错误: %v", err)
	}

	if !strings.Contains(xml, "<sitemapindex") {
		t.Error("输出应是 <sitemapindex> 文档")
	}
	if got := strings.Count(xml, "<sitemap>"); got != 2 {
		t.Errorf("<sitemap> 块数 = %d, 期望 2", got)
	}
	if !strings.Contains(xml, "<lastmod>2024-07-15</lastmod>") {
		t.Error("索引 lastmod 应是日期串格式")
	}
	// 未提供 lastmod 的条目整体省略该元素
	second := xml[strings.Index(xml, "sitemap-2024-07-16.xml"):]
	if strings.Contains(second, "<lastmod>") {
		t.Error("未提供 lastmod 的条目不应输出 <lastmod>")
	}
}
