// File: internal/platform/database/gorm.go
package database

import (
	"fmt"
	"log" // Standard log for critical connection errors
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ShIIIrochka/SecondStagePROD/internal/company"
	"github.com/ShIIIrochka/SecondStagePROD/internal/config"
	"github.com/ShIIIrochka/SecondStagePROD/internal/promo"
	"github.com/ShIIIrochka/SecondStagePROD/internal/user"
)

// NewGORM creates a new GORM database instance. The driver follows the
// configuration: Postgres when POSTGRES_HOST is set, the sqlite fallback
// otherwise.
func NewGORM(cfg *config.Config) (*gorm.DB, error) {
	var gormLogLevel gormlogger.LogLevel
	switch cfg.DBLogLevel {
	case "silent":
		gormLogLevel = gormlogger.Silent
	case "error":
		gormLogLevel = gormlogger.Error
	case "warn", "warning":
		gormLogLevel = gormlogger.Warn
	case "info", "debug":
		gormLogLevel = gormlogger.Info
	default:
		gormLogLevel = gormlogger.Warn
	}

	newLogger := gormlogger.New(
		log.New(log.Writer(), "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  cfg.GinMode != "release",
		},
	)

	var dialector gorm.Dialector
	if cfg.UsesSQLite() {
		dialector = sqlite.Open(cfg.DatabaseDSN())
	} else {
		dialector = postgres.Open(cfg.DatabaseDSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:      newLogger,
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	if err = sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// New connects and brings the schema up to date: versioned SQL migrations on
// Postgres, AutoMigrate on the sqlite fallback.
func New(cfg *config.Config) (*gorm.DB, error) {
	db, err := NewGORM(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.UsesSQLite() {
		if err := AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("sqlite auto-migration failed: %w", err)
		}
		return db, nil
	}
	if err := RunMigrations(cfg); err != nil {
		return nil, err
	}
	return db, nil
}

// AutoMigrate creates or updates the schema for every persisted model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&user.User{},
		&company.Company{},
		&promo.Promocode{},
		&promo.PromoCategory{},
		&promo.PromoUniqueCode{},
		&promo.PromoLike{},
		&promo.PromoActivation{},
		&promo.PromoComment{},
	)
}

// CloseGORMDB closes the GORM database connection.
func CloseGORMDB(db *gorm.DB) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying SQL DB for closing: %v\n", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v\n", err)
	}
}
