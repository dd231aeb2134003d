// Package testutil 测试用的 sqlite 数据库
package testutil

import (
	"fmt"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"line-auth/app/server/models"
	"path/filepath"
	"testing"
)

// NewDB 在临时目录中创建一个已迁移的 sqlite 数据库。
// 只开放一个连接，并发调用会在连接池上排队，与 postgres 唯一索引的行为一致。
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", filepath.Join(t.TempDir(), "test.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}
