package infra

import (
	"fmt"
	"time"

	"cotizador/internal/migrations"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and brings the
// schema up to date. The schema is owned by the goose migrations in
// internal/migrations; AutoMigrate is never used because it cannot express
// the partial unique indexes that keep one current version per item.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations applies pending goose migrations on the connection behind db.
func RunMigrations(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if err := migrations.Up(sqlDB); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	version, err := migrations.Version(sqlDB)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	log.Info().Int64("version", version).Msg("esquema actualizado")
	return nil
}
