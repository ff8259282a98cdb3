// Package textfile stores students in a flat comma-delimited text file,
// one student per line:
//
//	<id>,<name>,<count>,<ts1> | <ts2> | ...
package textfile

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/msomdec/attendance-tracker/internal/domain"
)

const (
	// minFields is the fewest comma-separated fields a line needs to be loaded.
	minFields = 3
	// maxLineSize bounds a single student's line, history included.
	maxLineSize = 4 << 20
	// newFileMode applies when the file does not exist yet.
	newFileMode os.FileMode = 0o644
)

// StudentRepository implements domain.StudentRepository on a single text file.
type StudentRepository struct {
	path string
}

// NewStudentRepository creates a repository backed by the file at path.
// The file does not have to exist yet.
func NewStudentRepository(path string) *StudentRepository {
	return &StudentRepository{path: path}
}

func (r *StudentRepository) LoadAll(ctx context.Context) ([]domain.Student, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open attendance file: %w", err)
	}
	defer f.Close()

	var students []domain.Student
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lineNo++
		student, ok, err := ParseLine(scanner.Text())
		if err != nil {
			slog.Warn("skipping malformed attendance line", "path", r.path, "line", lineNo, "error", err)
			continue
		}
		if !ok {
			continue
		}
		students = append(students, student)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read attendance file: %w", err)
	}
	return students, nil
}

// SaveAll rewrites the whole file, one line per student in id order.
// The new content is written to a temporary file and renamed into place,
// keeping the permissions of the file it replaces.
func (r *StudentRepository) SaveAll(ctx context.Context, students []domain.Student) error {
	sorted := slices.Clone(students)
	slices.SortFunc(sorted, func(a, b domain.Student) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})

	mode := newFileMode
	if info, err := os.Stat(r.path); err == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	w := bufio.NewWriter(tmp)
	for i := range sorted {
		if err := ctx.Err(); err != nil {
			tmp.Close()
			return err
		}
		if _, err := w.WriteString(sorted[i].Serialize() + "\n"); err != nil {
			tmp.Close()
			return fmt.Errorf("write student %d: %w", sorted[i].ID, err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush temp file: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, r.path); err != nil {
		return fmt.Errorf("replace attendance file: %w", err)
	}
	return nil
}

// ParseLine decodes one line of the attendance file. Trailing empty fields
// are dropped before counting, so ok is false for lines such as "5,Bob,"
// that have fewer than three fields left; they are skipped without error. A line with
// a non-integer id is an error. A non-integer count falls back to the number
// of recorded timestamps.
func ParseLine(line string) (student domain.Student, ok bool, err error) {
	fields := strings.Split(line, ",")
	for len(fields) > 0 && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	if len(fields) < minFields {
		return domain.Student{}, false, nil
	}

	id, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
	if err != nil {
		return domain.Student{}, false, fmt.Errorf("%w: student id %q", domain.ErrInvalidInput, fields[0])
	}

	records := []string{}
	if len(fields) > minFields {
		if history := strings.Join(fields[minFields:], ","); history != "" {
			records = strings.Split(history, domain.RecordSeparator)
		}
	}

	count, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil || count < 0 {
		count = len(records)
	}

	return domain.Student{
		ID:              id,
		Name:            fields[1],
		AttendanceCount: count,
		Records:         records,
	}, true, nil
}
