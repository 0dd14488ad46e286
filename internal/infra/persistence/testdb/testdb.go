// Package testdb 为测试提供一个已完成迁移的临时 SQLite 数据库
package testdb

import (
	"context"
	stdsql "database/sql"
	"path/filepath"
	"testing"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/anzhiyu-c/anheyu-photos/internal/infra/persistence/database"
	"github.com/anzhiyu-c/anheyu-photos/internal/infra/persistence/migrate"
)

// Open 在 t.TempDir() 下创建数据库文件并执行迁移，测试结束时自动关闭
func Open(t testing.TB) dialect.Driver {
	t.Helper()
	db, err := stdsql.Open("sqlite3", database.SQLiteDSN(filepath.Join(t.TempDir(), "test.db")))
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	drv := entsql.OpenDB(dialect.SQLite, db)
	if err := migrate.Create(context.Background(), drv); err != nil {
		t.Fatalf("迁移测试数据库失败: %v", err)
	}
	return drv
}
