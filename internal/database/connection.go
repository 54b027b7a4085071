package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"event-ticketing-api/internal/config"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// DB wraps the sqlx handle together with the configuration it was opened with.
type DB struct {
	*sqlx.DB
	config Config
}

// Config mirrors config.DatabaseConfig so callers can convert between the two.
type Config struct {
	Driver     string // "sqlite3" or "postgres"
	URL        string // Full database URL
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

// ConfigFrom converts the application database settings
func ConfigFrom(c config.DatabaseConfig) Config {
	return Config{
		Driver:     c.Driver,
		URL:        c.URL,
		Host:       c.Host,
		Port:       c.Port,
		User:       c.User,
		Password:   c.Password,
		DBName:     c.DBName,
		SSLMode:    c.SSLMode,
		SQLitePath: c.SQLitePath,
	}
}

// NewConnection opens and pings a database connection pool.
func NewConnection(config Config) (*DB, error) {
	if config.Driver == "" {
		config.Driver = DriverSQLite
	}

	dsn, err := config.DSN()
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(config.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	switch config.Driver {
	case DriverSQLite:
		// A single connection serializes writers; concurrent purchases queue
		// here instead of failing with SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	default:
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, config: config}, nil
}

// DSN builds the driver-specific data source name.
func (c Config) DSN() (string, error) {
	switch c.Driver {
	case DriverSQLite, "":
		path := c.SQLitePath
		if path == "" {
			path = "event_ticketing.db"
		}
		return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL", path), nil
	case DriverPostgres:
		// Use full URL if available, otherwise construct from components
		if c.URL != "" {
			return c.URL, nil
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode), nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", c.Driver)
	}
}

// Config returns the configuration the connection was opened with.
func (db *DB) Config() Config {
	return db.config
}

func (db *DB) Close() error {
	return db.DB.Close()
}

// RunMigrations applies all pending migrations on a dedicated connection.
func (db *DB) RunMigrations() error {
	migrator, err := NewMigrator(db.config)
	if err != nil {
		return err
	}
	defer migrator.Close()

	return migrator.Up()
}
