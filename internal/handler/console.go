// Package handler drives the interactive attendance console.
package handler

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/msomdec/attendance-tracker/internal/service"
)

// Menu choices.
const (
	choiceAddStudent     = 1
	choiceMarkAttendance = 2
	choiceReport         = 3
	choiceExit           = 4
)

// Console reads commands from in and writes prompts and results to out.
// It is not safe for concurrent use.
type Console struct {
	in         *bufio.Scanner
	out        io.Writer
	auth       *service.AuthService
	attendance *service.AttendanceService
	token      string

	lines   chan string
	scanErr error // Valid once lines is closed
}

// NewConsole creates a new Console.
func NewConsole(in io.Reader, out io.Writer, auth *service.AuthService, attendance *service.AttendanceService) *Console {
	return &Console{
		in:         bufio.NewScanner(in),
		out:        out,
		auth:       auth,
		attendance: attendance,
	}
}

// Run asks for the admin password and then serves the menu until the admin
// exits, input ends, the session expires or ctx is cancelled. Cancellation
// interrupts a pending prompt. A wrong password ends the session immediately.
func (c *Console) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	c.lines = make(chan string)
	go c.scan(done)

	if ok := c.login(ctx); !ok {
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			c.println("\nInterrupted. Goodbye!")
			return nil
		}

		c.printMenu()
		line, ok := c.readLine(ctx)
		if !ok {
			if ctx.Err() != nil {
				continue
			}
			c.println("\nExiting... Goodbye!")
			return c.scanErr
		}

		choice, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			c.println("Invalid input! Please enter a number.")
			continue
		}

		switch choice {
		case choiceAddStudent:
			if !c.requireSession(func() { c.handleAddStudent(ctx) }) {
				return nil
			}
		case choiceMarkAttendance:
			if !c.requireSession(func() { c.handleMarkAttendance(ctx) }) {
				return nil
			}
		case choiceReport:
			if !c.requireSession(c.handleReport) {
				return nil
			}
		case choiceExit:
			c.println("Exiting... Goodbye!")
			return nil
		default:
			c.println("Invalid choice! Try again.")
		}
	}
}

// scan feeds input lines to c.lines until input ends or done is closed.
// The blocking read lives here so that a prompt can give up on ctx.
func (c *Console) scan(done <-chan struct{}) {
	defer close(c.lines)
	for c.in.Scan() {
		select {
		case c.lines <- strings.TrimRight(c.in.Text(), "\r"):
		case <-done:
			return
		}
	}
	c.scanErr = c.in.Err()
}

func (c *Console) printMenu() {
	c.println("\nAttendance Management System")
	c.println("1. Add Student")
	c.println("2. Mark Attendance")
	c.println("3. View Attendance Report")
	c.println("4. Exit")
	c.print("Choose an option: ")
}

// readLine returns the next input line. ok is false when input ended or
// ctx was cancelled while waiting.
func (c *Console) readLine(ctx context.Context) (string, bool) {
	if ctx.Err() != nil {
		return "", false
	}
	select {
	case line, ok := <-c.lines:
		return line, ok
	case <-ctx.Done():
		return "", false
	}
}

// promptID asks for a student id. ok is false when input ended or the
// answer was not an integer.
func (c *Console) promptID(ctx context.Context, prompt string) (id int64, ok bool) {
	c.print(prompt)
	line, ok := c.readLine(ctx)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
	if err != nil {
		c.println("Invalid student ID. Please enter an integer.")
		return 0, false
	}
	return id, true
}

func (c *Console) print(s string) {
	if _, err := io.WriteString(c.out, s); err != nil {
		slog.Error("write console output", "error", err)
	}
}

func (c *Console) println(s string) {
	c.print(s + "\n")
}

func (c *Console) printf(format string, args ...any) {
	c.print(fmt.Sprintf(format, args...))
}
