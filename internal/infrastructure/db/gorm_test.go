package db

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"registrar-workflow/internal/domain/audit"
	"registrar-workflow/internal/infrastructure/observability"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
)

func TestOpenGormWithDialector_Success(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer sqlDB.Close()

	mock.ExpectPing()

	var logs bytes.Buffer
	prev := observability.GlobalLogger
	observability.GlobalLogger = observability.NewLogger(&logs, "info")
	t.Cleanup(func() { observability.GlobalLogger = prev })

	dial := mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true, // don't query @@version
	})

	gdb, err := OpenGormWithDialector(dial)
	if err != nil {
		t.Fatalf("OpenGormWithDialector error: %v", err)
	}
	if gdb == nil {
		t.Fatalf("got nil gorm.DB")
	}
	// exactly one ping: ours, after the pool is tuned
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
	if got := sqlDB.Stats().MaxOpenConnections; got != 30 {
		t.Fatalf("MaxOpenConnections = %d, want 30", got)
	}
	if !strings.Contains(logs.String(), `"msg":"database connected"`) || !strings.Contains(logs.String(), `"driver":"mysql"`) {
		t.Fatalf("expected JSON connect log, got %q", logs.String())
	}
}

func TestOpenGormWithDialector_PingFails(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer sqlDB.Close()

	// gorm's automatic ping is off, so this failure comes from our own check
	mock.ExpectPing().WillReturnError(errors.New("no ping"))

	dial := mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	})

	gdb, err := OpenGormWithDialector(dial)
	if err == nil {
		t.Fatalf("expected error, got nil (gdb=%v)", gdb)
	}
	if err.Error() != "no ping" {
		t.Fatalf("err = %v, want the ping error", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDialector(t *testing.T) {
	for _, driver := range []string{"mysql", "postgres", "sqlite", ""} {
		d, err := Dialector(driver, "dsn")
		if err != nil || d == nil {
			t.Fatalf("Dialector(%q): %v", driver, err)
		}
	}
	if _, err := Dialector("oracle", "dsn"); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestOpenGorm_SQLiteAndMigrate(t *testing.T) {
	gdb, err := OpenGorm("sqlite", filepath.Join(t.TempDir(), "registrar.db"))
	if err != nil {
		t.Fatalf("OpenGorm: %v", err)
	}
	sqlDB, _ := gdb.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := Migrate(gdb, &audit.Entry{}); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if !gdb.Migrator().HasTable("audit_entries") {
		t.Fatalf("audit_entries table missing after migrate")
	}
}
