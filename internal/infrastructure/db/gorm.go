package db

import (
	"fmt"
	"time"

	"geofence-attendance/internal/config"
	"geofence-attendance/internal/domain/employee"
	"geofence-attendance/internal/domain/geofence"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open picks the dialector for cfg.DBDriver.
func Open(cfg *config.Config) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case config.DriverMySQL:
		return OpenGorm(cfg.MySQLDSN())
	case config.DriverSQLite:
		gdb, err := OpenGormWithDialector(sqlite.Open(cfg.SQLitePath))
		if err != nil {
			return nil, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		// single writer
		sqlDB.SetMaxOpenConns(1)
		return gdb, nil
	default:
		return nil, fmt.Errorf("db: unsupported driver %q", cfg.DBDriver)
	}
}

func OpenGorm(dsn string) (*gorm.DB, error) {
	return OpenGormWithDialector(mysql.Open(dsn))
}

func OpenGormWithDialector(dial gorm.Dialector) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Warn),
		DisableAutomaticPing: true,
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	log.Info().Str("dialect", dial.Name()).Msg("gorm: connected")
	return db, nil
}

// AutoMigrate creates or updates the service tables. The employees table is
// owned by the HR directory; it is migrated only for local/sqlite setups.
func AutoMigrate(db *gorm.DB, withDirectory bool) error {
	models := []any{&geofence.Event{}, &geofence.Policy{}}
	if withDirectory {
		models = append(models, &employee.Employee{})
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("db.AutoMigrate: %w", err)
	}
	return nil
}
