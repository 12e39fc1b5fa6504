package db

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestOpenGorm_ClosesConnectionWhenMigrationFails(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	// no query is expected, so the migration fails on its first statement
	mock.ExpectClose()

	var buf bytes.Buffer
	dialector := postgres.New(postgres.Config{Conn: sqlDB, DriverName: "postgres"})

	db, err := openGorm(dialector, newGormLogger(log.New(&buf, "", 0)))
	if err == nil {
		t.Fatalf("expected migration error")
	}
	if db != nil {
		t.Fatalf("expected nil *gorm.DB on failure")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("connection was not closed: %v", err)
	}
}

func TestGormLogger_SkipsRecordNotFound(t *testing.T) {
	var buf bytes.Buffer
	l := newGormLogger(log.New(&buf, "", 0))
	query := func() (string, int64) { return `SELECT * FROM "users" WHERE username = 'bob'`, 0 }

	l.Trace(context.Background(), time.Now(), query, gorm.ErrRecordNotFound)
	if buf.Len() != 0 {
		t.Fatalf("record not found must not be logged, got %q", buf.String())
	}

	l.Trace(context.Background(), time.Now(), query, errors.New("connection reset"))
	if !bytes.Contains(buf.Bytes(), []byte("connection reset")) {
		t.Fatalf("expected real errors to be logged, got %q", buf.String())
	}
}
