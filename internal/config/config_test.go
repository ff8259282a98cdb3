package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/msomdec/attendance-tracker/internal/config"
)

// clearEnv blanks every ATTENDANCE_* variable; empty values count as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ATTENDANCE_ADMIN_PASSWORD", "ATTENDANCE_ADMIN_PASSWORD_HASH", "ATTENDANCE_SESSION_SECRET",
		"ATTENDANCE_SESSION_TTL", "ATTENDANCE_BCRYPT_COST", "ATTENDANCE_STORAGE_BACKEND",
		"ATTENDANCE_STORAGE_PATH", "ATTENDANCE_LOAD_MODE", "ATTENDANCE_LOG_LEVEL", "ATTENDANCE_LOG_FILE",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("ATTENDANCE_ADMIN_PASSWORD", "s3cret")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Backend != config.BackendText {
		t.Fatalf("expected text backend, got %q", cfg.Storage.Backend)
	}
	if cfg.Storage.Path != "attendance_data.txt" {
		t.Fatalf("expected default text path, got %q", cfg.Storage.Path)
	}
	if cfg.Storage.LoadMode != config.LoadModeReseed {
		t.Fatalf("expected reseed load mode, got %q", cfg.Storage.LoadMode)
	}
	if cfg.Admin.SessionTTL != 8*time.Hour {
		t.Fatalf("expected 8h session ttl, got %s", cfg.Admin.SessionTTL)
	}
	if cfg.Admin.BcryptCost != 12 {
		t.Fatalf("expected bcrypt cost 12, got %d", cfg.Admin.BcryptCost)
	}
}

func TestLoad_RequiresPassword(t *testing.T) {
	clearEnv(t)
	_, err := config.Load("")
	if err == nil || !strings.Contains(err.Error(), "admin password") {
		t.Fatalf("expected missing password error, got %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
admin:
  password_hash: "$2a$04$abcdefghijklmnopqrstuv"
  session_ttl: 30m
storage:
  backend: sqlite
  load_mode: restore
logging:
  level: debug
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Backend != config.BackendSQLite || cfg.Storage.Path != "attendance.db" {
		t.Fatalf("unexpected storage %+v", cfg.Storage)
	}
	if cfg.Storage.LoadMode != config.LoadModeRestore {
		t.Fatalf("expected restore mode, got %q", cfg.Storage.LoadMode)
	}
	if cfg.Admin.SessionTTL != 30*time.Minute {
		t.Fatalf("expected 30m ttl, got %s", cfg.Admin.SessionTTL)
	}
	level, err := cfg.LogLevel()
	if err != nil {
		t.Fatalf("LogLevel: %v", err)
	}
	if level != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v", level)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
admin:
  password: from-file
storage:
  backend: sqlite
  path: file.db
`)
	t.Setenv("ATTENDANCE_STORAGE_BACKEND", "badger")
	t.Setenv("ATTENDANCE_STORAGE_PATH", "/tmp/data.badger")
	t.Setenv("ATTENDANCE_BCRYPT_COST", "5")
	t.Setenv("ATTENDANCE_SESSION_TTL", "1h")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Admin.Password != "from-file" {
		t.Fatalf("expected file password to survive, got %q", cfg.Admin.Password)
	}
	if cfg.Storage.Backend != config.BackendBadger || cfg.Storage.Path != "/tmp/data.badger" {
		t.Fatalf("unexpected storage %+v", cfg.Storage)
	}
	if cfg.Admin.BcryptCost != 5 || cfg.Admin.SessionTTL != time.Hour {
		t.Fatalf("unexpected admin settings %+v", cfg.Admin)
	}
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown backend", map[string]string{"ATTENDANCE_STORAGE_BACKEND": "csv"}},
		{"unknown load mode", map[string]string{"ATTENDANCE_LOAD_MODE": "merge"}},
		{"bcrypt cost too low", map[string]string{"ATTENDANCE_BCRYPT_COST": "3"}},
		{"bcrypt cost not a number", map[string]string{"ATTENDANCE_BCRYPT_COST": "high"}},
		{"short session secret", map[string]string{"ATTENDANCE_SESSION_SECRET": "short"}},
		{"bad session ttl", map[string]string{"ATTENDANCE_SESSION_TTL": "soon"}},
		{"negative session ttl", map[string]string{"ATTENDANCE_SESSION_TTL": "-1h"}},
		{"bad log level", map[string]string{"ATTENDANCE_LOG_LEVEL": "loud"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("ATTENDANCE_ADMIN_PASSWORD", "s3cret")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := config.Load(""); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("ATTENDANCE_ADMIN_PASSWORD", "s3cret")

	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
