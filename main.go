package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/msomdec/attendance-tracker/internal/config"
	"github.com/msomdec/attendance-tracker/internal/handler"
	"github.com/msomdec/attendance-tracker/internal/repository"
	"github.com/msomdec/attendance-tracker/internal/service"
)

func main() {
	cfg, err := config.Load(os.Getenv("ATTENDANCE_CONFIG"))
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logFile, err := setupLogger(cfg)
	if err != nil {
		slog.Error("failed to set up logging", "error", err)
		os.Exit(1)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	passwordHash := cfg.Admin.PasswordHash
	if passwordHash == "" {
		passwordHash, err = service.HashPassword(cfg.Admin.Password, cfg.Admin.BcryptCost)
		if err != nil {
			slog.Error("failed to hash admin password", "error", err)
			os.Exit(1)
		}
	}

	sessionSecret := cfg.Admin.SessionSecret
	if sessionSecret == "" {
		sessionSecret, err = randomSecret()
		if err != nil {
			slog.Error("failed to generate session secret", "error", err)
			os.Exit(1)
		}
		slog.Debug("generated per-process session secret")
	}

	// Cancel on SIGINT/SIGTERM; the console stops at its next prompt.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	students, closer, err := repository.Open(ctx, cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		slog.Error("failed to open storage", "backend", cfg.Storage.Backend, "path", cfg.Storage.Path, "error", err)
		os.Exit(1)
	}
	defer closer.Close()
	slog.Info("storage opened", "backend", cfg.Storage.Backend, "path", cfg.Storage.Path)

	authService := service.NewAuthService(passwordHash, sessionSecret, cfg.Admin.SessionTTL)
	attendanceService := service.NewAttendanceService(students, service.LoadMode(cfg.Storage.LoadMode), nil)

	// Unreadable storage is not fatal: the store starts empty.
	if err := attendanceService.Load(ctx); err != nil {
		slog.Info("no previous attendance records", "error", err)
		fmt.Println("No previous records found. Starting fresh.")
	}

	console := handler.NewConsole(os.Stdin, os.Stdout, authService, attendanceService)
	if err := console.Run(ctx); err != nil {
		slog.Error("console error", "error", err)
	}
}

// setupLogger installs the default slog logger: text on stderr, plus JSON
// lines appended to the configured log file when one is set.
func setupLogger(cfg *config.Config) (*os.File, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	logOpts := &slog.HandlerOptions{Level: level}
	text := slog.NewTextHandler(os.Stderr, logOpts)

	if cfg.Logging.File == "" {
		slog.SetDefault(slog.New(text))
		return nil, nil
	}

	f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewMultiHandler(
		text,
		slog.NewJSONHandler(f, logOpts),
	)))
	return f, nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
