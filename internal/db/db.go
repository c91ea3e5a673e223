package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"cadash/config"
	"cadash/internal/model"
)

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs the schema migrations for the inventory models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Vendor{},
		&model.VendorConfig{},
		&model.Location{},
		&model.LocationConfig{},
		&model.MhCluster{},
		&model.Ca{},
		&model.Role{},
		&model.RoleConfig{},
		&model.EpiphanChannel{},
		&model.EpiphanRecorder{},
		&model.MhpearlConfig{},
		&model.AkamaiStreamingConfig{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return nil
}
