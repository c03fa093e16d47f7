package sitemap

import (
	"context"
	"testing"
	"time"

	"github.com/anzhiyu-c/anheyu-sitemap/pkg/domain/model"
)

func TestDetectorMissingAndStale(t *testing.T) {
	content := newFakeContentSource()
	store := newFakeSitemapStore()
	now := time.Now()

	// 缺失：有内容但从未生成过
	addArticle(content, "2023-05-10", 1, now.Add(-24*time.Hour))

	// 过期：已生成但内容在 lastmod 之后被修改
	addArticle(content, "2023-08-01", 2, now.Add(-time.Hour))
	store.docs["2023-08-01"] = &model.StoredSitemap{
		Date:      "2023-08-01",
		URLCount:  1,
		UpdatedAt: now.Add(-48 * time.Hour),
	}

	// 最新：已生成且内容没有更新的变化
	addArticle(content, "2023-09-15", 3, now.Add(-72*time.Hour))
	store.docs["2023-09-15"] = &model.StoredSitemap{
		Date:      "2023-09-15",
		URLCount:  1,
		UpdatedAt: now.Add(-time.Hour),
	}

	detector := NewDetector(content, store, 5*time.Second)
	report, err := detector.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect() 返回错误: %v", err)
	}

	if len(report.AllDatesToGenerate) != 1 || report.AllDatesToGenerate[0] != "2023-05-10" {
		t.Errorf("缺失日期 = %v, 期望 [2023-05-10]", report.AllDatesToGenerate)
	}
	if len(report.DatesNeedingUpdates) != 1 || report.DatesNeedingUpdates[0] != "2023-08-01" {
		t.Errorf("过期日期 = %v, 期望 [2023-08-01]", report.DatesNeedingUpdates)
	}
}

func TestDetectorEmptyContent(t *testing.T) {
	detector := NewDetector(newFakeContentSource(), newFakeSitemapStore(), 5*time.Second)
	report, err := detector.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect() 返回错误: %v", err)
	}

	// 报告字段初始化为空切片而不是 nil，保证 JSON 输出为 []
	if report.AllDatesToGenerate == nil || len(report.AllDatesToGenerate) != 0 {
		t.Errorf("AllDatesToGenerate = %v, 期望空切片", report.AllDatesToGenerate)
	}
	if report.DatesNeedingUpdates == nil || len(report.DatesNeedingUpdates) != 0 {
		t.Errorf("DatesNeedingUpdates = %v, 期望空切片", report.DatesNeedingUpdates)
	}
}

func TestDetectorToleranceSuppressesJitter(t *testing.T) {
	content := newFakeContentSource()
	store := newFakeSitemapStore()
	now := time.Now()

	// 内容修改时间只比 lastmod 晚 2 秒，在容忍范围内，不算过期
	addArticle(content, "2023-06-20", 1, now.Add(-time.Hour).Add(2*time.Second))
	store.docs["2023-06-20"] = &model.StoredSitemap{
		Date:      "2023-06-20",
		URLCount:  1,
		UpdatedAt: now.Add(-time.Hour),
	}

	detector := NewDetector(content, store, 5*time.Second)
	report, err := detector.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect() 返回错误: %v", err)
	}
	if len(report.DatesNeedingUpdates) != 0 {
		t.Errorf("容忍范围内的偏差不应计为过期: %v", report.DatesNeedingUpdates)
	}
}
