// Package repository opens the configured student storage backend.
package repository

import (
	"context"
	"fmt"
	"io"

	"github.com/msomdec/attendance-tracker/internal/config"
	"github.com/msomdec/attendance-tracker/internal/domain"
	"github.com/msomdec/attendance-tracker/internal/repository/badgerdb"
	"github.com/msomdec/attendance-tracker/internal/repository/sqlite"
	"github.com/msomdec/attendance-tracker/internal/repository/textfile"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns the student repository for backend at path, plus a closer
// releasing whatever the backend holds open. Database backends are migrated
// before they are returned.
func Open(ctx context.Context, backend, path string) (domain.StudentRepository, io.Closer, error) {
	switch backend {
	case config.BackendText:
		return textfile.NewStudentRepository(path), nopCloser{}, nil

	case config.BackendSQLite:
		db, err := sqlite.New(path)
		if err != nil {
			return nil, nil, err
		}
		if err := migrate(ctx, db); err != nil {
			return nil, nil, err
		}
		return db.Students(), db, nil

	case config.BackendBadger:
		db, err := badgerdb.Open(path)
		if err != nil {
			return nil, nil, err
		}
		if err := migrate(ctx, db); err != nil {
			return nil, nil, err
		}
		return db.Students(), db, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", backend)
}

func migrate(ctx context.Context, db domain.Database) error {
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
