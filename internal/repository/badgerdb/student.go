package badgerdb

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/msomdec/attendance-tracker/internal/domain"
)

var studentsPrefix = []byte("students/")

type student struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	AttendanceCount int      `json:"attendance_count"`
	Records         []string `json:"records"`
}

func studentKey(id int64) []byte {
	return []byte(fmt.Sprintf("students/%d", id))
}

// StudentRepository implements domain.StudentRepository on Badger.
type StudentRepository struct {
	db *badger.DB
}

func NewStudentRepository(db *badger.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

func (r *StudentRepository) LoadAll(ctx context.Context) ([]domain.Student, error) {
	students := make([]domain.Student, 0)
	if err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(studentsPrefix); it.ValidForPrefix(studentsPrefix); it.Next() {
			var s student
			if err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &s)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			records := s.Records
			if records == nil {
				records = []string{}
			}
			students = append(students, domain.Student{
				ID:              s.ID,
				Name:            s.Name,
				AttendanceCount: s.AttendanceCount,
				Records:         records,
			})
		}
		return nil
	}); err != nil {
		return nil, err
	}

	// Keys sort lexically, so "students/10" precedes "students/2".
	slices.SortFunc(students, func(a, b domain.Student) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return students, nil
}

// SaveAll drops every stored student and writes the given snapshot in one transaction.
func (r *StudentRepository) SaveAll(ctx context.Context, students []domain.Student) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var stale [][]byte
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: false})
		for it.Seek(studentsPrefix); it.ValidForPrefix(studentsPrefix); it.Next() {
			stale = append(stale, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, key := range stale {
			if err := txn.Delete(key); err != nil {
				return fmt.Errorf("delete %s: %w", key, err)
			}
		}

		for _, s := range students {
			data, err := json.Marshal(student{
				ID:              s.ID,
				Name:            s.Name,
				AttendanceCount: s.AttendanceCount,
				Records:         s.Records,
			})
			if err != nil {
				return err
			}
			if err := txn.Set(studentKey(s.ID), data); err != nil {
				return fmt.Errorf("set student %d: %w", s.ID, err)
			}
		}
		return nil
	})
}
