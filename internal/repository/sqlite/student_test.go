package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/msomdec/attendance-tracker/internal/domain"
	"github.com/msomdec/attendance-tracker/internal/repository/sqlite"
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStudentRepository_LoadAll_Empty(t *testing.T) {
	db := newTestDB(t)
	repo := db.Students()

	students, err := repo.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(students) != 0 {
		t.Fatalf("expected no students, got %d", len(students))
	}
}

func TestStudentRepository_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewStudentRepository(db)
	ctx := context.Background()

	saved := []domain.Student{
		{ID: 5, Name: "Bob", AttendanceCount: 0, Records: []string{}},
		{ID: 1, Name: "Alice", AttendanceCount: 2, Records: []string{"2024-01-01 10:00:00", "2024-01-02 10:00:00"}},
	}
	if err := repo.SaveAll(ctx, saved); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	loaded, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 students, got %d", len(loaded))
	}

	alice := loaded[0]
	if alice.ID != 1 || alice.Name != "Alice" || alice.AttendanceCount != 2 {
		t.Fatalf("unexpected first student %+v", alice)
	}
	if alice.Records[0] != "2024-01-01 10:00:00" || alice.Records[1] != "2024-01-02 10:00:00" {
		t.Fatalf("records out of order: %v", alice.Records)
	}
	if loaded[1].ID != 5 || len(loaded[1].Records) != 0 {
		t.Fatalf("unexpected second student %+v", loaded[1])
	}
}

func TestStudentRepository_SaveAll_ReplacesSnapshot(t *testing.T) {
	db := newTestDB(t)
	repo := db.Students()
	ctx := context.Background()

	if err := repo.SaveAll(ctx, []domain.Student{
		{ID: 1, Name: "Alice", AttendanceCount: 1, Records: []string{"2024-01-01 10:00:00"}},
		{ID: 2, Name: "Bob", Records: []string{}},
	}); err != nil {
		t.Fatalf("first SaveAll: %v", err)
	}

	if err := repo.SaveAll(ctx, []domain.Student{
		{ID: 2, Name: "Bob", AttendanceCount: 1, Records: []string{"2024-02-01 09:00:00"}},
	}); err != nil {
		t.Fatalf("second SaveAll: %v", err)
	}

	loaded, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(loaded) != 1 || loaded[0].ID != 2 {
		t.Fatalf("expected only student 2, got %+v", loaded)
	}
	if len(loaded[0].Records) != 1 || loaded[0].Records[0] != "2024-02-01 09:00:00" {
		t.Fatalf("unexpected records %v", loaded[0].Records)
	}
}

func TestStudentRepository_SaveAll_DuplicateIDRollsBack(t *testing.T) {
	db := newTestDB(t)
	repo := db.Students()
	ctx := context.Background()

	if err := repo.SaveAll(ctx, []domain.Student{{ID: 1, Name: "Alice", Records: []string{}}}); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	err := repo.SaveAll(ctx, []domain.Student{
		{ID: 3, Name: "Cy", Records: []string{}},
		{ID: 3, Name: "Cy again", Records: []string{}},
	})
	if err == nil {
		t.Fatal("expected duplicate primary key to fail")
	}

	loaded, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Name != "Alice" {
		t.Fatalf("expected previous snapshot to survive, got %+v", loaded)
	}
}
