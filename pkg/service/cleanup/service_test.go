package cleanup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anzhiyu-c/anheyu-photos/internal/infra/persistence/ent"
	"github.com/anzhiyu-c/anheyu-photos/internal/infra/persistence/testdb"
	"github.com/anzhiyu-c/anheyu-photos/internal/infra/storage/storagetest"
)

func TestRemovePhotoObjectsAndSweep(t *testing.T) {
	ctx := context.Background()
	repos := ent.NewRepositories(testdb.Open(t))
	fake := storagetest.NewFakeProvider()
	fake.Objects["u/a/1.jpg"] = []byte("x")
	fake.Objects["u/a/1.jpg_thumb.jpg"] = []byte("t")
	svc := NewService(fake, repos.Orphan)

	// 删除失败时记录到孤儿表
	fake.SetFailAllDeletes(true)
	svc.RemovePhotoObjects(ctx, "u/a/1.jpg")

	pending, err := repos.Orphan.ListPending(ctx, MaxAttempts, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	res, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Failed: 2}, *res)

	fake.SetFailAllDeletes(false)
	res, err = svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Removed: 2}, *res)
	assert.Empty(t, fake.Keys())

	pending, err = repos.Orphan.ListPending(ctx, MaxAttempts, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSweepGivesUpAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	repos := ent.NewRepositories(testdb.Open(t))
	fake := storagetest.NewFakeProvider()
	fake.SetFailAllDeletes(true)
	svc := NewService(fake, repos.Orphan)

	require.NoError(t, repos.Orphan.Record(ctx, "u/a/stuck.jpg", "boom"))
	for i := 0; i < MaxAttempts; i++ {
		_, err := svc.Sweep(ctx)
		require.NoError(t, err)
	}

	res, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{}, *res, "达到上限后不再重试")
}
