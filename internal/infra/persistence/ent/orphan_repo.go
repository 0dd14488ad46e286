package ent

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"

	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/repository"
	"github.com/anzhiyu-c/anheyu-photos/pkg/idgen"
)

type entOrphanRepository struct {
	base
}

// NewEntOrphanRepository 是待清理存储对象仓储的构造函数
func NewEntOrphanRepository(drv dialect.Driver) repository.OrphanRepository {
	return &entOrphanRepository{base{drv: drv}}
}

func (r *entOrphanRepository) Record(ctx context.Context, storagePath, lastError string) error {
	now := time.Now().UTC()
	q := r.builder().Insert(tableOrphans).
		Columns("id", "storage_path", "attempts", "last_error", "created_at", "updated_at").
		Values(idgen.NewID(), storagePath, 0, lastError, now, now)
	if _, err := r.exec(ctx, q); err != nil {
		return fmt.Errorf("记录待清理对象失败: %w", err)
	}
	return nil
}

func (r *entOrphanRepository) ListPending(ctx context.Context, maxAttempts, limit int) ([]*model.StorageOrphan, error) {
	b := r.builder()
	q := b.Select("id", "storage_path", "attempts", "last_error", "created_at").
		From(b.Table(tableOrphans)).
		Where(sql.LT("attempts", maxAttempts)).
		OrderBy("created_at").
		Limit(limit)
	var rows []struct {
		ID          string    `sql:"id"`
		StoragePath string    `sql:"storage_path"`
		Attempts    int       `sql:"attempts"`
		LastError   string    `sql:"last_error"`
		CreatedAt   time.Time `sql:"created_at"`
	}
	if err := r.scan(ctx, q, &rows); err != nil {
		return nil, err
	}
	out := make([]*model.StorageOrphan, 0, len(rows))
	for _, row := range rows {
		out = append(out, &model.StorageOrphan{
			ID:          row.ID,
			StoragePath: row.StoragePath,
			Attempts:    row.Attempts,
			LastError:   row.LastError,
			CreatedAt:   row.CreatedAt,
		})
	}
	return out, nil
}

func (r *entOrphanRepository) MarkFailed(ctx context.Context, id, lastError string) error {
	q := r.builder().Update(tableOrphans).
		Add("attempts", 1).
		Set("last_error", lastError).
		Set("updated_at", time.Now().UTC()).
		Where(sql.EQ("id", id))
	_, err := r.exec(ctx, q)
	return err
}

func (r *entOrphanRepository) Delete(ctx context.Context, id string) error {
	_, err := r.exec(ctx, r.builder().Delete(tableOrphans).Where(sql.EQ("id", id)))
	return err
}
