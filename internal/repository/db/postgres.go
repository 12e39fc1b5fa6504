package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"session_auth/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newGormLogger logs warnings and errors only. A username lookup miss is a
// normal outcome, so record-not-found is not reported.
func newGormLogger(w logger.Writer) logger.Interface {
	return logger.New(w, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// OpenPostgres connects to Postgres through gorm and migrates the users table.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	return openGorm(postgres.Open(dsn), newGormLogger(log.New(os.Stdout, "\r\n", log.LstdFlags)))
}

func openGorm(dialector gorm.Dialector, gormLogger logger.Interface) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, fmt.Errorf("migrate users table: %w", err)
	}
	return db, nil
}
