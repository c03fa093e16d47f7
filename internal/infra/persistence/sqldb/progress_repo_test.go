package sqldb

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/anzhiyu-c/anheyu-sitemap/pkg/domain/model"
)

func TestProgressRepoLoad(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProgressRepository(db)

	t.Run("从未保存过时返回 nil, nil", func(t *testing.T) {
		mock.ExpectQuery("SELECT data FROM sitemap_progress WHERE id = ?").
			WithArgs(progressRowID).
			WillReturnRows(sqlmock.NewRows([]string{"data"}))

		p, err := repo.Load(context.Background())
		if err != nil {
			t.Fatalf("Load() 返回错误: %v", err)
		}
		if p != nil {
			t.Errorf("空库应返回 nil, 实际: %+v", p)
		}
	})

	t.Run("反序列化已保存的进度", func(t *testing.T) {
		saved := &model.GenerationProgress{
			InProgress:     true,
			YearsToProcess: []int{2024, 2025},
			DaysToProcess:  []string{"2023-06-15"},
		}
		data, _ := json.Marshal(saved)
		mock.ExpectQuery("SELECT data FROM sitemap_progress WHERE id = ?").
			WithArgs(progressRowID).
			WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow(string(data)))

		p, err := repo.Load(context.Background())
		if err != nil {
			t.Fatalf("Load() 返回错误: %v", err)
		}
		if p == nil || !p.InProgress || len(p.YearsToProcess) != 2 || len(p.DaysToProcess) != 1 {
			t.Errorf("Load() = %+v, 与保存内容不符", p)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("存在未满足的期望: %v", err)
	}
}

func TestProgressRepoSave(t *testing.T) {
	t.Run("行已存在时走更新", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewProgressRepository(db)

		mock.ExpectExec("UPDATE sitemap_progress SET").
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), progressRowID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := repo.Save(context.Background(), &model.GenerationProgress{InProgress: true}); err != nil {
			t.Fatalf("Save() 返回错误: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("存在未满足的期望: %v", err)
		}
	})

	t.Run("首次保存时回退为插入", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewProgressRepository(db)

		mock.ExpectExec("UPDATE sitemap_progress SET").
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), progressRowID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO sitemap_progress").
			WithArgs(progressRowID, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		if err := repo.Save(context.Background(), &model.GenerationProgress{}); err != nil {
			t.Fatalf("Save() 返回错误: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("存在未满足的期望: %v", err)
		}
	})
}

func TestProgressRepoClear(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProgressRepository(db)

	mock.ExpectExec("DELETE FROM sitemap_progress WHERE id = ?").
		WithArgs(progressRowID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Clear(context.Background()); err != nil {
		t.Fatalf("Clear() 返回错误: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("存在未满足的期望: %v", err)
	}
}
