package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/msomdec/attendance-tracker/internal/domain"
	"github.com/msomdec/attendance-tracker/internal/repository/sqlite/migrations"
	_ "modernc.org/sqlite"
)

var _ domain.Database = (*DB)(nil)

// DB wraps a SQLite connection and hands out repositories backed by it.
type DB struct {
	SqlDB *sql.DB
}

// New opens a SQLite database at the given path and configures it for use.
// It enables WAL mode and foreign keys.
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL keeps the file readable while a snapshot is being rewritten.
	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	// PRAGMAs are per connection; a single connection keeps them in effect.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{SqlDB: db}, nil
}

// Migrate applies all pending schema migrations.
func (d *DB) Migrate(ctx context.Context) error {
	return migrations.Run(ctx, d.SqlDB)
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	return d.SqlDB.Close()
}

// Students returns the student repository for this database.
func (d *DB) Students() *StudentRepository {
	return NewStudentRepository(d)
}
