package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DB wraps sqlx.DB
type DB struct {
	*sqlx.DB
}

// New opens a connection to Postgres using the given connection string
func New(dsn string) (*DB, error) {
	return NewWithDriver("postgres", dsn)
}

// NewWithDriver opens a connection with an explicit driver name.
// Tests use it to run the repository against sqlite.
func NewWithDriver(driver, dsn string) (*DB, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{db}, nil
}

// Migrate creates the schema for the active driver
func (db *DB) Migrate(ctx context.Context) error {
	schema := schemaPostgres
	if db.DriverName() == "sqlite3" {
		schema = schemaSQLite
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
