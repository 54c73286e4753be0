package database

import (
	"fmt"

	"mimo-api/internal/domain/billing"
	"mimo-api/internal/domain/catalog"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to Postgres. TranslateError turns unique violations into
// gorm.ErrDuplicatedKey, which the catalog store relies on.
func Open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DB_URL not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate enables pgcrypto (gen_random_uuid) and creates or updates every
// table.
func Migrate(db *gorm.DB) error {
	// REQUIRED for UUID generation
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		return fmt.Errorf("failed to enable pgcrypto extension: %w", err)
	}

	if err := db.AutoMigrate(
		// catalog
		&catalog.Creator{},
		&catalog.PackageRow{},
		&catalog.FeatureRow{},
		&catalog.MediaRow{},

		// billing
		&billing.Transaction{},
		&billing.Reward{},
		&billing.Withdrawal{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	log.Info("database migrated")
	return nil
}
