package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/allisson/tokenacl/internal/config"
)

// MigrationsInput selects the schema directory and how far to move.
// Steps of zero applies everything pending; a negative value rolls back.
type MigrationsInput struct {
	Driver           string
	ConnectionString string
	Dir              string
	Steps            int
}

// migrationSource maps a driver onto its file:// source and the database URL
// golang-migrate expects. MySQL DSNs carry no scheme, so one is added.
func migrationSource(in MigrationsInput) (source, databaseURL string) {
	subdir, databaseURL := "postgresql", in.ConnectionString
	if in.Driver == config.DBDriverMySQL {
		subdir, databaseURL = "mysql", "mysql://"+in.ConnectionString
	}
	return "file://" + filepath.ToSlash(filepath.Join(in.Dir, subdir)), databaseURL
}

// RunMigrations moves the account and transaction record schema. The memory
// driver keeps no schema, so it is a no-op.
func RunMigrations(logger *slog.Logger, in MigrationsInput) error {
	if in.Driver == config.DBDriverMemory {
		logger.Info("memory driver has no schema, skipping migrations")
		return nil
	}
	if in.Dir == "" {
		in.Dir = "migrations"
	}

	// Determine migration path based on driver
	source, databaseURL := migrationSource(in)
	logger.Info("running database migrations",
		slog.String("driver", in.Driver),
		slog.String("source", source),
		slog.Int("steps", in.Steps),
	)

	m, err := migrate.New(source, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	// Zero steps means everything pending
	if in.Steps == 0 {
		err = m.Up()
	} else {
		err = m.Steps(in.Steps)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		logger.Info("migrations completed, schema is empty")
	case err != nil:
		return fmt.Errorf("failed to read schema version: %w", err)
	default:
		logger.Info("migrations completed", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
	}
	return nil
}
