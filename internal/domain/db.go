package domain

import "context"

// Database defines lifecycle operations for a database-backed repository.
// Each implementation (SQLite, Badger) owns its own migration strategy.
type Database interface {
	Migrate(ctx context.Context) error
	Close() error
}
