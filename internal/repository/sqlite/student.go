package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/msomdec/attendance-tracker/internal/domain"
)

// StudentRepository implements domain.StudentRepository using SQLite.
type StudentRepository struct {
	db *sql.DB
}

// NewStudentRepository creates a new SQLite-backed StudentRepository.
func NewStudentRepository(db *DB) *StudentRepository {
	return &StudentRepository{db: db.SqlDB}
}

func (r *StudentRepository) LoadAll(ctx context.Context) ([]domain.Student, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, attendance_count FROM students ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query students: %w", err)
	}
	defer rows.Close()

	var students []domain.Student
	index := make(map[int64]int)
	for rows.Next() {
		s := domain.Student{Records: []string{}}
		if err := rows.Scan(&s.ID, &s.Name, &s.AttendanceCount); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		index[s.ID] = len(students)
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate students: %w", err)
	}
	// Release the only connection before the second query.
	rows.Close()

	recRows, err := r.db.QueryContext(ctx,
		`SELECT student_id, marked_at FROM attendance_records ORDER BY student_id, seq`)
	if err != nil {
		return nil, fmt.Errorf("query attendance records: %w", err)
	}
	defer recRows.Close()

	for recRows.Next() {
		var studentID int64
		var markedAt string
		if err := recRows.Scan(&studentID, &markedAt); err != nil {
			return nil, fmt.Errorf("scan attendance record: %w", err)
		}
		i, ok := index[studentID]
		if !ok {
			continue
		}
		students[i].Records = append(students[i].Records, markedAt)
	}
	if err := recRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance records: %w", err)
	}

	return students, nil
}

// SaveAll replaces every stored student and record in a single transaction.
func (r *StudentRepository) SaveAll(ctx context.Context, students []domain.Student) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM attendance_records`); err != nil {
		return fmt.Errorf("clear attendance records: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM students`); err != nil {
		return fmt.Errorf("clear students: %w", err)
	}

	studentStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO students (id, name, attendance_count) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert student: %w", err)
	}
	defer studentStmt.Close()

	recordStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO attendance_records (student_id, seq, marked_at) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert record: %w", err)
	}
	defer recordStmt.Close()

	for _, s := range students {
		if _, err := studentStmt.ExecContext(ctx, s.ID, s.Name, s.AttendanceCount); err != nil {
			return fmt.Errorf("insert student %d: %w", s.ID, err)
		}
		for seq, markedAt := range s.Records {
			if _, err := recordStmt.ExecContext(ctx, s.ID, seq, markedAt); err != nil {
				return fmt.Errorf("insert record for student %d: %w", s.ID, err)
			}
		}
	}

	return tx.Commit()
}
