package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationFiles embed.FS

// Migrator applies the embedded schema migrations for one driver.
type Migrator struct {
	m *migrate.Migrate
}

// NewMigrator opens its own connection so that closing the migrator never
// closes the application's pool.
func NewMigrator(config Config) (*Migrator, error) {
	if config.Driver == "" {
		config.Driver = DriverSQLite
	}

	dsn, err := config.DSN()
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(config.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open migration connection: %w", err)
	}

	var (
		dir    string
		driver migratedb.Driver
	)
	switch config.Driver {
	case DriverSQLite:
		dir = "migrations/sqlite"
		driver, err = migratesqlite.WithInstance(conn, &migratesqlite.Config{})
	case DriverPostgres:
		dir = "migrations/postgres"
		driver, err = migratepostgres.WithInstance(conn, &migratepostgres.Config{})
	}
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationFiles, dir)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, config.Driver, driver)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return &Migrator{m: m}, nil
}

// Up executes all pending migrations.
func (m *Migrator) Up() error {
	if err := m.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Down rolls back the most recent migration.
func (m *Migrator) Down() error {
	if err := m.m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}

// Status returns the current schema version. A zero version means no
// migration has been applied yet.
func (m *Migrator) Status() (version uint, dirty bool, err error) {
	version, dirty, err = m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// Close releases the source and the migration connection.
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	return dbErr
}
