package storage

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations applies pending schema migrations. It opens a separate
// connection so the migrate instance can close it without touching the
// repository's main connection.
func RunMigrations(backend Backend, dsn string) error {
	driverName := "sqlite"
	if backend == Postgres {
		driverName = "postgres"
	}

	migrateDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	var driver database.Driver
	switch backend {
	case Postgres:
		driver, err = postgres.WithInstance(migrateDB, &postgres.Config{})
	default:
		driver, err = sqlite.WithInstance(migrateDB, &sqlite.Config{})
	}
	if err != nil {
		return fmt.Errorf("create %s driver: %w", driverName, err)
	}

	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, driverName, driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}
