package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/msomdec/attendance-tracker/internal/domain"
)

// LoadMode controls how persisted students are reconstructed by Load.
type LoadMode string

const (
	// LoadModeReseed rebuilds every student from id and name only and marks
	// them present once at load time. Persisted counts and history are discarded.
	LoadModeReseed LoadMode = "reseed"
	// LoadModeRestore keeps the persisted history.
	LoadModeRestore LoadMode = "restore"
)

// AttendanceService owns the in-memory student map and writes the whole map
// through the repository after every mutation.
type AttendanceService struct {
	students domain.StudentRepository
	byID     map[int64]*domain.Student
	loadMode LoadMode
	now      func() time.Time
}

// NewAttendanceService creates an empty AttendanceService. A nil now uses time.Now.
func NewAttendanceService(students domain.StudentRepository, loadMode LoadMode, now func() time.Time) *AttendanceService {
	if now == nil {
		now = time.Now
	}
	return &AttendanceService{
		students: students,
		byID:     make(map[int64]*domain.Student),
		loadMode: loadMode,
		now:      now,
	}
}

// Load replaces the in-memory map with the persisted students. If the
// repository cannot be read the map is left empty and the returned error
// wraps domain.ErrStoreUnreadable.
func (s *AttendanceService) Load(ctx context.Context) error {
	s.byID = make(map[int64]*domain.Student)

	persisted, err := s.students.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnreadable, err)
	}

	for _, p := range persisted {
		var student *domain.Student
		switch s.loadMode {
		case LoadModeRestore:
			student = domain.NewStudent(p.ID, p.Name)
			student.Records = append(student.Records, p.Records...)
			student.AttendanceCount = len(student.Records)
			if p.AttendanceCount != len(p.Records) {
				slog.Warn("persisted attendance count disagrees with history",
					"student_id", p.ID, "count", p.AttendanceCount, "records", len(p.Records))
			}
		default:
			student = domain.NewStudent(p.ID, p.Name)
			student.MarkAttendance(s.now())
		}
		s.byID[p.ID] = student
	}

	slog.Info("attendance records loaded", "students", len(s.byID), "mode", string(s.loadMode))
	return nil
}

// AddStudent registers a new student and persists the store. If only the
// save fails, the student stays registered and the error wraps
// domain.ErrSaveFailed.
func (s *AttendanceService) AddStudent(ctx context.Context, id int64, name string) (*domain.Student, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if _, ok := s.byID[id]; ok {
		return nil, domain.ErrDuplicateID
	}

	student := domain.NewStudent(id, name)
	s.byID[id] = student

	if err := s.save(ctx); err != nil {
		return student, err
	}
	return student, nil
}

// MarkAttendance records one attendance event for the student and persists
// the store. It returns the student and the recorded timestamp. As with
// AddStudent, a failed save keeps the mark and wraps domain.ErrSaveFailed.
func (s *AttendanceService) MarkAttendance(ctx context.Context, id int64) (*domain.Student, string, error) {
	student, ok := s.byID[id]
	if !ok {
		return nil, "", domain.ErrNotFound
	}

	ts := student.MarkAttendance(s.now())

	if err := s.save(ctx); err != nil {
		return student, ts, err
	}
	return student, ts, nil
}

// Report returns copies of all students ordered by id.
func (s *AttendanceService) Report() []domain.Student {
	report := make([]domain.Student, 0, len(s.byID))
	for _, student := range s.byID {
		report = append(report, student.Clone())
	}
	slices.SortFunc(report, func(a, b domain.Student) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return report
}

func (s *AttendanceService) save(ctx context.Context) error {
	if err := s.students.SaveAll(ctx, s.Report()); err != nil {
		slog.Error("save attendance records", "error", err)
		return fmt.Errorf("%w: %w", domain.ErrSaveFailed, err)
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: student name is required", domain.ErrInvalidInput)
	}
	if strings.ContainsAny(name, ",\r\n") {
		return fmt.Errorf("%w: student name must not contain commas or line breaks", domain.ErrInvalidInput)
	}
	return nil
}
