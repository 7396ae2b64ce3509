// Package migrations embeds the schema and applies it with golang-migrate.
package migrations

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed sql/*.sql
var files embed.FS

// ErrDirty means an earlier migration stopped partway. The schema has to be
// repaired by hand and the version forced with the migrate CLI.
var ErrDirty = errors.New("schema is dirty")

// Up applies every pending migration to the database at databaseURL.
// It refuses to touch a dirty schema.
func Up(databaseURL string, logger *zap.Logger) error {
	source, err := iofs.New(files, "sql")
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn("failed to close migrator", zap.NamedError("source", srcErr), zap.NamedError("database", dbErr))
		}
	}()

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read schema version: %w", err)
	}

	if dirty {
		logger.Error("schema is dirty, migration stopped partway", zap.Uint("version", version))

		return fmt.Errorf("version %d: %w", version, ErrDirty)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("schema up to date", zap.Uint("version", version))

			return nil
		}

		return fmt.Errorf("apply migrations: %w", err)
	}

	version, _, _ = m.Version()
	logger.Info("schema migrated", zap.Uint("version", version))

	return nil
}
