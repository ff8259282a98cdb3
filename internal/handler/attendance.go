package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/msomdec/attendance-tracker/internal/domain"
)

func (c *Console) handleAddStudent(ctx context.Context) {
	id, ok := c.promptID(ctx, "Enter Student ID (integer): ")
	if !ok {
		return
	}
	c.print("Enter Student Name: ")
	name, ok := c.readLine(ctx)
	if !ok {
		return
	}

	student, err := c.attendance.AddStudent(ctx, id, name)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrDuplicateID):
		c.println("Student ID already exists!")
		return
	case errors.Is(err, domain.ErrInvalidInput):
		c.println("Invalid student name: names must be non-empty and must not contain commas.")
		return
	case errors.Is(err, domain.ErrSaveFailed):
		c.println("Error saving attendance records.")
	default:
		slog.Error("add student", "error", err)
		c.println("An unexpected error occurred.")
		return
	}

	slog.Info("student added", "student_id", student.ID)
	c.println("Student added successfully!")
}

func (c *Console) handleMarkAttendance(ctx context.Context) {
	id, ok := c.promptID(ctx, "Enter Student ID to mark attendance: ")
	if !ok {
		return
	}

	student, ts, err := c.attendance.MarkAttendance(ctx, id)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		c.println("Student not found!")
		return
	case errors.Is(err, domain.ErrSaveFailed):
		c.println("Error saving attendance records.")
	default:
		slog.Error("mark attendance", "error", err)
		c.println("An unexpected error occurred.")
		return
	}

	slog.Info("attendance marked", "student_id", student.ID, "count", student.AttendanceCount)
	c.printf("Attendance marked for %s at %s\n", student.Name, ts)
}

func (c *Console) handleReport() {
	report := c.attendance.Report()
	if len(report) == 0 {
		c.println("No students found.")
		return
	}

	c.println("\nAttendance Report:")
	c.println("ID\tName\t\tAttendance\tLast Marked")
	c.println("------------------------------------------------------")
	for _, s := range report {
		c.printf("%d\t%s\t\t%d\t\t%s\n", s.ID, s.Name, s.AttendanceCount, s.History())
	}
}
