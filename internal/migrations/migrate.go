package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var archivos embed.FS

const postgresDialect = "postgres"

// Up runs all pending SQL migrations embedded in the binary.
func Up(db *sql.DB) error {
	goose.SetBaseFS(archivos)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(postgresDialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.Up(db, "sql"); err != nil {
		return fmt.Errorf("run goose up migrations: %w", err)
	}

	return nil
}

// Version returns the schema version currently applied.
func Version(db *sql.DB) (int64, error) {
	goose.SetBaseFS(archivos)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(postgresDialect); err != nil {
		return 0, fmt.Errorf("set goose dialect: %w", err)
	}
	return goose.GetDBVersion(db)
}
