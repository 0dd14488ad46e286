/*
 * @Description: 数据库连接管理 (支持多种数据库)
 * @Author: 安知鱼
 * @Date: 2025-07-12 16:09:46
 * @LastEditTime: 2025-10-05 21:18:37
 * @LastEditors: 安知鱼
 */
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"go.uber.org/zap"

	"github.com/anzhiyu-c/anheyu-photos/internal/infra/config"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DialectFromType 把配置中的数据库类型转换为 ent 方言名，空值默认 postgres
func DialectFromType(dbType string) (string, error) {
	switch dbType {
	case "", "postgres", "postgresql":
		return dialect.Postgres, nil
	case "mysql":
		return dialect.MySQL, nil
	case "sqlite", "sqlite3":
		return dialect.SQLite, nil
	default:
		return "", fmt.Errorf("不支持的数据库驱动: %s (支持: postgres, mysql, sqlite)", dbType)
	}
}

// SQLiteDSN 返回启用外键约束的 SQLite 连接串
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
}

// NewSQLDB 创建并返回一个标准的 *sql.DB 连接池
func NewSQLDB(cfg *config.Config) (*sql.DB, error) {
	dialectName, err := DialectFromType(cfg.GetString(config.KeyDBType))
	if err != nil {
		return nil, err
	}

	dbUser := cfg.GetString(config.KeyDBUser)
	dbPass := cfg.GetString(config.KeyDBPassword)
	dbHost := cfg.GetString(config.KeyDBHost)
	dbPort := cfg.GetString(config.KeyDBPort)
	dbName := cfg.GetString(config.KeyDBName)

	var dsn, driverName string
	switch dialectName {
	case dialect.MySQL:
		driverName = "mysql"
		if dbUser == "" || dbHost == "" || dbPort == "" || dbName == "" {
			return nil, fmt.Errorf("MySQL 连接参数不完整 (需要 User, Host, Port, Name)")
		}
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			dbUser, dbPass, dbHost, dbPort, dbName)
	case dialect.Postgres:
		driverName = "postgres"
		if dbUser == "" || dbHost == "" || dbPort == "" || dbName == "" {
			return nil, fmt.Errorf("PostgreSQL 连接参数不完整 (需要 User, Host, Port, Name)")
		}
		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			dbHost, dbPort, dbUser, dbPass, dbName)
	case dialect.SQLite:
		driverName = "sqlite3"
		dataDir := "./data"
		if err := os.MkdirAll(dataDir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("无法创建 data 目录: %w", err)
		}
		if dbName == "" {
			dbName = "anheyu_photos.db"
		}
		finalPath := filepath.Join(dataDir, dbName)
		zap.S().Infof("【提示】SQLite 数据库路径: %s", finalPath)
		dsn = SQLiteDSN(finalPath)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("打开 sql.DB 连接失败 (驱动: %s): %w", driverName, err)
	}

	db.SetMaxIdleConns(10)
	db.SetMaxOpenConns(100)
	db.SetConnMaxLifetime(time.Hour)
	if dialectName == dialect.SQLite {
		// SQLite 只允许单写者
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("无法 Ping 通数据库 (驱动: %s): %w", driverName, err)
	}

	zap.S().Infof("✅ %s 数据库连接池创建成功！", dialectName)
	return db, nil
}

// NewDriver 用 ent 的 SQL 驱动包装连接池，开启 Database.Debug 时打印所有 SQL
func NewDriver(db *sql.DB, cfg *config.Config) (dialect.Driver, error) {
	dialectName, err := DialectFromType(cfg.GetString(config.KeyDBType))
	if err != nil {
		return nil, err
	}

	var drv dialect.Driver = entsql.OpenDB(dialectName, db)
	if cfg.GetBool(config.KeyDBDebug) {
		drv = dialect.Debug(drv, func(args ...any) {
			zap.S().Debug(args...)
		})
		zap.S().Info("【数据库】Debug 模式已开启，将打印所有执行的SQL语句。")
	}
	return drv, nil
}

// Ping 检查数据库连通性，用于健康检查
func Ping(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}
