package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/worawit/breaklog/internal/ledger"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}

	inserted, err := s.InsertEntry(ctx, ledger.EntryDraft{
		EmployeeID: "1001",
		Date:       "2024-03-01",
		StartTime:  "08:30:00",
		Activity:   ledger.ActivityBreak,
	})
	if err != nil {
		t.Fatal(err)
	}
	minutes := 45
	if err := s.CloseEntry(ctx, inserted.ID, "09:15:00", &minutes); err != nil {
		t.Fatal(err)
	}

	// A second store over the same directory sees the persisted rows.
	reopened, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	entries, err := reopened.ListEntries(ctx, ledger.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	got := entries[0]
	if got.ID != inserted.ID || got.EndTime != "09:15:00" {
		t.Errorf("entry = %+v, want closed copy of %+v", got, inserted)
	}
	if got.DurationMinutes == nil || *got.DurationMinutes != 45 {
		t.Errorf("duration = %v, want 45", got.DurationMinutes)
	}
}

func TestFindOpenEntry(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	entry, err := s.InsertEntry(ctx, ledger.EntryDraft{
		EmployeeID: "1001",
		Date:       "2024-03-01",
		StartTime:  "08:00:00",
		Activity:   ledger.ActivityWork,
	})
	if err != nil {
		t.Fatal(err)
	}

	found, err := s.FindOpenEntry(ctx, "1001", "2024-03-01")
	if err != nil {
		t.Fatal(err)
	}
	if found == nil || found.ID != entry.ID {
		t.Fatalf("expected %+v, got %+v", entry, found)
	}

	if err := s.CloseEntry(ctx, entry.ID, "09:00:00", nil); err != nil {
		t.Fatal(err)
	}
	found, err = s.FindOpenEntry(ctx, "1001", "2024-03-01")
	if err != nil {
		t.Fatal(err)
	}
	if found != nil {
		t.Fatalf("expected no open entry after close, got %+v", found)
	}
}

func TestDeleteEntry(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	entry, err := s.InsertEntry(ctx, ledger.EntryDraft{
		EmployeeID: "1001",
		Date:       "2024-03-01",
		StartTime:  "08:00:00",
		Activity:   ledger.ActivityToilet,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteEntry(ctx, entry.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteEntry(ctx, entry.ID); err != ledger.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCorruptLogBackedUp(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "time_logs.csv")
	if err := os.WriteFile(path, []byte("id,employee_id\n\"unterminated\n"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err = s.ListEntries(ctx, ledger.Filter{})
	if err == nil {
		t.Fatal("expected an error for a corrupt log file")
	}
	if !strings.Contains(err.Error(), "corrupt CSV") {
		t.Errorf("error = %v, want corrupt CSV mention", err)
	}
	if _, statErr := os.Stat(path + ".corrupt"); statErr != nil {
		t.Errorf("expected backup at %s.corrupt: %v", path, statErr)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Errorf("expected original to be moved away, stat err = %v", statErr)
	}
}

func TestUnparseableDurationDegradesToAbsent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}

	content := "id,employee_id,date,start_time,end_time,activity_type,duration_minutes\n" +
		"abc,1001,2024-03-01,08:00:00,08:30:00,Break,garbage\n"
	if err := os.WriteFile(filepath.Join(dir, "time_logs.csv"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	entries, err := s.ListEntries(ctx, ledger.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].DurationMinutes != nil {
		t.Errorf("duration = %d, want nil for unparseable cell", *entries[0].DurationMinutes)
	}
}

func TestRegisterEmployeeIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if err := s.RegisterEmployee(ctx, "1001", "Alice"); err != nil {
		t.Fatal(err)
	}
	if err := s.RegisterEmployee(ctx, "1001", ""); err != nil {
		t.Fatal(err)
	}

	employees, err := s.ListEmployees(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(employees) != 1 {
		t.Fatalf("expected 1 employee, got %d", len(employees))
	}
	if employees[0].Name != "Alice" {
		t.Errorf("name = %q, want the first registration to stick", employees[0].Name)
	}
}

func TestMissingFilesMeanEmptyStore(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	entries, err := s.ListEntries(ctx, ledger.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}

	employees, err := s.ListEmployees(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(employees) != 0 {
		t.Errorf("expected no employees, got %d", len(employees))
	}
}

func TestNoTempFileLeftBehind(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.InsertEntry(ctx, ledger.EntryDraft{
		EmployeeID: "1001",
		Date:       "2024-03-01",
		StartTime:  "08:00:00",
		Activity:   ledger.ActivityWork,
	}); err != nil {
		t.Fatal(err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}
