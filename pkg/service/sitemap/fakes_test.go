package sitemap

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/anzhiyu-c/anheyu-sitemap/pkg/constant"
	"github.com/anzhiyu-c/anheyu-sitemap/pkg/domain/model"
)

// fakeContentSource 是内存实现的内容源，条目按天日期串归桶。
type fakeContentSource struct {
	items map[string][]*model.ContentItem

	countErr  error
	fetchErr  error
	maxModErr error
	listErr   error
}

func newFakeContentSource() *fakeContentSource {
	return &fakeContentSource{items: make(map[string][]*model.ContentItem)}
}

func (s *fakeContentSource) addItem(stamp string, item *model.ContentItem) {
	s.items[stamp] = append(s.items[stamp], item)
}

// matchStamps 返回落在指定分区内的全部天日期串。
func (s *fakeContentSource) matchStamps(key model.DatePartitionKey) []string {
	var prefix string
	switch {
	case key.Day > 0:
		prefix = key.DateStamp()
	case key.Month > 0:
		prefix = key.MonthStamp() + "-"
	default:
		prefix = fmt.Sprintf("%04d-", key.Year)
	}

	var stamps []string
	for stamp := range s.items {
		if key.Day > 0 {
			if stamp == prefix {
				stamps = append(stamps, stamp)
			}
			continue
		}
		if strings.HasPrefix(stamp, prefix) {
			stamps = append(stamps, stamp)
		}
	}
	sort.Strings(stamps)
	return stamps
}

func (s *fakeContentSource) CountForPartition(ctx context.Context, key model.DatePartitionKey) (int, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	total := 0
	for _, stamp := range s.matchStamps(key) {
		total += len(s.items[stamp])
	}
	return total, nil
}

func (s *fakeContentSource) MaxModifiedTime(ctx context.Context, key model.DatePartitionKey) (*time.Time, error) {
	if s.maxModErr != nil {
		return nil, s.maxModErr
	}
	var max *time.Time
	for _, stamp := range s.matchStamps(key) {
		for _, item := range s.items[stamp] {
			t := item.ModifiedAt
			if max == nil || t.After(*max) {
				max = &t
			}
		}
	}
	return max, nil
}

func (s *fakeContentSource) FetchPage(ctx context.Context, key model.DatePartitionKey, offset, limit int) ([]*model.ContentItem, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	items := s.items[key.DateStamp()]
	if offset >= len(items) {
		return nil, nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end], nil
}

func (s *fakeContentSource) ListModifiedPartitionsSince(ctx context.Context, since time.Time) ([]model.DatePartitionKey, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	stamps := make(map[string]bool)
	for stamp, items := range s.items {
		for _, item := range items {
			if item.ModifiedAt.After(since) {
				stamps[stamp] = true
				break
			}
		}
	}
	sorted := make([]string, 0, len(stamps))
	for stamp := range stamps {
		sorted = append(sorted, stamp)
	}
	sort.Strings(sorted)

	keys := make([]model.DatePartitionKey, 0, len(sorted))
	for _, stamp := range sorted {
		y, m, d, err := ParseDateStamp(stamp)
		if err != nil {
			return nil, err
		}
		keys = append(keys, model.DatePartitionKey{Year: y, Month: m, Day: d})
	}
	return keys, nil
}

// fakeSitemapStore 是内存实现的文档存储，记录写入次数。
type fakeSitemapStore struct {
	docs    map[string]*model.StoredSitemap
	upserts int
	deletes int

	unavailable bool
}

func newFakeSitemapStore() *fakeSitemapStore {
	return &fakeSitemapStore{docs: make(map[string]*model.StoredSitemap)}
}

func (s *fakeSitemapStore) failure() error {
	return fmt.Errorf("%w: 连接被拒绝", constant.ErrRepositoryUnavailable)
}

func (s *fakeSitemapStore) Get(ctx context.Context, date string) (*model.StoredSitemap, error) {
	if s.unavailable {
		return nil, s.failure()
	}
	doc, ok := s.docs[date]
	if !ok {
		return nil, nil
	}
	copied := *doc
	return &copied, nil
}

func (s *fakeSitemapStore) Upsert(ctx context.Context, date string, xml string, urlCount int) error {
	if s.unavailable {
		return s.failure()
	}
	s.upserts++
	s.docs[date] = &model.StoredSitemap{
		Date:      date,
		XML:       xml,
		URLCount:  urlCount,
		UpdatedAt: time.Now(),
	}
	return nil
}

func (s *fakeSitemapStore) Delete(ctx context.Context, date string) error {
	if s.unavailable {
		return s.failure()
	}
	s.deletes++
	delete(s.docs, date)
	return nil
}

func (s *fakeSitemapStore) ListDates(ctx context.Context, fromYear, toYear int) ([]string, error) {
	if s.unavailable {
		return nil, s.failure()
	}
	var dates []string
	for date := range s.docs {
		y, _, _, err := ParseDateStamp(date[:10])
		if err != nil {
			continue
		}
		if y >= fromYear && y <= toYear {
			dates = append(dates, date)
		}
	}
	sort.Strings(dates)
	return dates, nil
}

func (s *fakeSitemapStore) ListMeta(ctx context.Context) ([]*model.StoredSitemap, error) {
	if s.unavailable {
		return nil, s.failure()
	}
	var dates []string
	for date := range s.docs {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	metas := make([]*model.StoredSitemap, 0, len(dates))
	for _, date := range dates {
		doc := s.docs[date]
		metas = append(metas, &model.StoredSitemap{
			Date:      doc.Date,
			URLCount:  doc.URLCount,
			UpdatedAt: doc.UpdatedAt,
		})
	}
	return metas, nil
}

// fakeProgressRepo 通过 JSON 往返模拟持久化，避免测试共享内部切片。
type fakeProgressRepo struct {
	data  []byte
	saves int

	loadErr error
	saveErr error
}

func (r *fakeProgressRepo) Load(ctx context.Context) (*model.GenerationProgress, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	if r.data == nil {
		return nil, nil
	}
	var p model.GenerationProgress
	if err := json.Unmarshal(r.data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *fakeProgressRepo) Save(ctx context.Context, p *model.GenerationProgress) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	r.data = data
	r.saves++
	return nil
}

func (r *fakeProgressRepo) Clear(ctx context.Context) error {
	r.data = nil
	return nil
}
