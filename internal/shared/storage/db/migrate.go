package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"

	"flash-backend/internal/shared/telemetry"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationsDir = "migrations"

// MigrationStatus compares the schema version in the database with the
// newest embedded migration.
type MigrationStatus struct {
	Applied int64
	Latest  int64
}

// Pending reports whether the database is behind the embedded schema.
func (s MigrationStatus) Pending() bool { return s.Applied < s.Latest }

func useEmbeddedMigrations() error {
	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return nil
}

// LatestMigration returns the newest embedded migration version.
func LatestMigration() (int64, error) {
	if err := useEmbeddedMigrations(); err != nil {
		return 0, err
	}
	migrations, err := goose.CollectMigrations(migrationsDir, 0, goose.MaxVersion)
	if err != nil {
		return 0, fmt.Errorf("collect migrations: %w", err)
	}
	last, err := migrations.Last()
	if err != nil {
		return 0, fmt.Errorf("collect migrations: %w", err)
	}
	return last.Version, nil
}

// Status reads the applied version without migrating.
func Status(ctx context.Context, database *sql.DB) (MigrationStatus, error) {
	if database == nil {
		return MigrationStatus{}, errors.New("status: no database")
	}
	latest, err := LatestMigration()
	if err != nil {
		return MigrationStatus{}, err
	}
	applied, err := goose.GetDBVersionContext(ctx, database)
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("read schema version: %w", err)
	}
	return MigrationStatus{Applied: applied, Latest: latest}, nil
}

// RunMigrations applies the embedded documents schema. A nil database is a
// no-op for the memory-backed document store.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	if database == nil {
		return nil
	}
	if err := useEmbeddedMigrations(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, database, migrationsDir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	version, err := goose.GetDBVersionContext(ctx, database)
	if err == nil {
		telemetry.Info("db.migrated", map[string]any{"version": version})
	}
	return nil
}
