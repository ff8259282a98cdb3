package domain

import (
	"context"
	"strconv"
	"strings"
	"time"
)

const (
	// TimestampLayout is the format of every recorded attendance timestamp.
	TimestampLayout = "2006-01-02 15:04:05"
	// RecordSeparator joins attendance timestamps in reports and in the text file.
	RecordSeparator = " | "
)

// Student is a tracked student and their attendance history.
type Student struct {
	ID              int64
	Name            string
	AttendanceCount int
	Records         []string // Append-only, oldest first
}

// NewStudent creates a student with no attendance recorded.
func NewStudent(id int64, name string) *Student {
	return &Student{
		ID:      id,
		Name:    name,
		Records: []string{},
	}
}

// MarkAttendance records one attendance event at the given time and returns
// the formatted timestamp.
func (s *Student) MarkAttendance(at time.Time) string {
	ts := at.Format(TimestampLayout)
	s.Records = append(s.Records, ts)
	s.AttendanceCount++
	return ts
}

// History returns all attendance timestamps joined by RecordSeparator.
func (s *Student) History() string {
	return strings.Join(s.Records, RecordSeparator)
}

// Serialize renders the student as a single line: id,name,count,history.
func (s *Student) Serialize() string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(s.ID, 10))
	b.WriteByte(',')
	b.WriteString(s.Name)
	b.WriteByte(',')
	b.WriteString(strconv.Itoa(s.AttendanceCount))
	b.WriteByte(',')
	b.WriteString(s.History())
	return b.String()
}

// Clone returns a deep copy so callers cannot mutate the store's records.
func (s *Student) Clone() Student {
	c := *s
	c.Records = append([]string(nil), s.Records...)
	return c
}

// StudentRepository persists the full set of students as one snapshot.
// SaveAll replaces whatever was stored before.
type StudentRepository interface {
	LoadAll(ctx context.Context) ([]Student, error)
	SaveAll(ctx context.Context, students []Student) error
}
