package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/msomdec/attendance-tracker/internal/domain"
)

var _ domain.Database = (*DB)(nil)

// DB wraps a Badger key-value store.
type DB struct {
	db *badger.DB
}

// Open opens (or creates) a Badger store in dir.
func Open(dir string) (*DB, error) {
	opts := badger.DefaultOptions(dir).WithLogger(newSlogLogger(slog.Default()))
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &DB{db: db}, nil
}

// schemaVersion is the layout of the students/<id> JSON values.
const schemaVersion = 1

var schemaVersionKey = []byte("meta/schema_version")

// Migrate stamps a new store with the current schema version and refuses
// stores written by a newer version.
func (d *DB) Migrate(ctx context.Context) error {
	return d.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(schemaVersionKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			slog.Info("badger schema initialized", "version", schemaVersion)
			return txn.Set(schemaVersionKey, []byte(strconv.Itoa(schemaVersion)))
		}
		if err != nil {
			return fmt.Errorf("get schema version: %w", err)
		}

		var version int
		if err := item.Value(func(value []byte) error {
			version, err = strconv.Atoi(string(value))
			return err
		}); err != nil {
			return fmt.Errorf("parse schema version: %w", err)
		}
		if version > schemaVersion {
			return fmt.Errorf("store schema version %d is newer than supported version %d", version, schemaVersion)
		}
		return nil
	})
}

// SchemaVersion returns the version recorded by Migrate, or 0 for an
// unmigrated store.
func (d *DB) SchemaVersion() (int, error) {
	var version int
	if err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(schemaVersionKey)
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			_, err := fmt.Sscanf(string(value), "%d", &version)
			return err
		})
	}); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return version, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Students returns the student repository for this store.
func (d *DB) Students() *StudentRepository {
	return NewStudentRepository(d.db)
}

var _ badger.Logger = (*slogLogger)(nil)

// slogLogger routes Badger's internal logging through slog. Badger is chatty
// at info level, so its info messages are demoted to debug.
type slogLogger struct {
	logger *slog.Logger
}

func newSlogLogger(logger *slog.Logger) *slogLogger {
	return &slogLogger{logger: logger.With("component", "badger")}
}

func (l *slogLogger) Errorf(format string, args ...any) {
	l.logger.Error(message(format, args...))
}

func (l *slogLogger) Warningf(format string, args ...any) {
	l.logger.Warn(message(format, args...))
}

func (l *slogLogger) Infof(format string, args ...any) {
	l.logger.Debug(message(format, args...))
}

func (l *slogLogger) Debugf(format string, args ...any) {
	l.logger.Debug(message(format, args...))
}

func message(format string, args ...any) string {
	return strings.TrimSpace(fmt.Sprintf(format, args...))
}
