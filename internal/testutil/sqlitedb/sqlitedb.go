// Package sqlitedb opens an in-memory sqlite database with the workflow
// schema for tests.
package sqlitedb

import (
	"testing"

	"registrar-workflow/internal/domain/audit"
	"registrar-workflow/internal/domain/payment"
	"registrar-workflow/internal/domain/request"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a fresh database. The pool is pinned to one connection: every
// connection to ":memory:" would otherwise see its own empty database, and
// concurrent transactions queue on the pool the way row locks queue them on
// MySQL.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&request.Request{}, &payment.Payment{}, &audit.Entry{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}
