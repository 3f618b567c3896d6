package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/worawit/breaklog/internal/ledger"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "breaklog.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInsertAndFindOpenEntry(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	inserted, err := db.InsertEntry(ctx, ledger.EntryDraft{
		EmployeeID: "1001",
		Date:       "2024-03-01",
		StartTime:  "08:30:00",
		Activity:   ledger.ActivityBreak,
	})
	if err != nil {
		t.Fatal(err)
	}
	if inserted.ID == "" {
		t.Fatal("expected a generated id")
	}

	found, err := db.FindOpenEntry(ctx, "1001", "2024-03-01")
	if err != nil {
		t.Fatal(err)
	}
	if found == nil {
		t.Fatal("expected an open entry")
	}
	if found.ID != inserted.ID || found.Activity != ledger.ActivityBreak {
		t.Errorf("got %+v, want inserted entry %+v", found, inserted)
	}
	if found.DurationMinutes != nil {
		t.Errorf("expected nil duration on open entry, got %d", *found.DurationMinutes)
	}
}

func TestFindOpenEntryScopedByEmployeeAndDate(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	mustInsert(t, db, "1001", "2024-03-01", "08:00:00", ledger.ActivityWork)

	for _, tc := range []struct{ employee, date string }{
		{"2002", "2024-03-01"},
		{"1001", "2024-03-02"},
	} {
		found, err := db.FindOpenEntry(ctx, tc.employee, tc.date)
		if err != nil {
			t.Fatal(err)
		}
		if found != nil {
			t.Errorf("FindOpenEntry(%q, %q) = %+v, want nil", tc.employee, tc.date, found)
		}
	}
}

func TestCloseEntryPersistsDuration(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	entry := mustInsert(t, db, "1001", "2024-03-01", "08:30:00", ledger.ActivityBreak)
	minutes := 45
	if err := db.CloseEntry(ctx, entry.ID, "09:15:00", &minutes); err != nil {
		t.Fatal(err)
	}

	entries, err := db.ListEntries(ctx, ledger.Filter{EmployeeID: "1001"})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	got := entries[0]
	if got.EndTime != "09:15:00" {
		t.Errorf("end time = %q, want 09:15:00", got.EndTime)
	}
	if got.DurationMinutes == nil || *got.DurationMinutes != 45 {
		t.Errorf("duration = %v, want 45", got.DurationMinutes)
	}
	if got.Open() {
		t.Error("entry should no longer be open")
	}
}

func TestCloseEntryNilDurationStaysNull(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	entry := mustInsert(t, db, "1001", "2024-03-01", "08:30:00", ledger.ActivityToilet)
	if err := db.CloseEntry(ctx, entry.ID, "08:40:00", nil); err != nil {
		t.Fatal(err)
	}

	entries, err := db.ListEntries(ctx, ledger.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].DurationMinutes != nil {
		t.Errorf("duration = %d, want nil", *entries[0].DurationMinutes)
	}
}

func TestDeleteEntry(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	entry := mustInsert(t, db, "1001", "2024-03-01", "08:30:00", ledger.ActivityBreak)
	if err := db.DeleteEntry(ctx, entry.ID); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteEntry(ctx, entry.ID); err != ledger.ErrNotFound {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestListEntriesFilterAndOrder(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	mustInsert(t, db, "1001", "2024-03-01", "08:00:00", ledger.ActivityWork)
	mustInsert(t, db, "1001", "2024-03-02", "07:00:00", ledger.ActivityBreak)
	mustInsert(t, db, "1001", "2024-03-02", "12:00:00", ledger.ActivitySmoking)
	mustInsert(t, db, "2002", "2024-03-02", "09:00:00", ledger.ActivityWork)

	entries, err := db.ListEntries(ctx, ledger.Filter{EmployeeID: "1001", DateFrom: "2024-03-02"})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].StartTime != "12:00:00" || entries[1].StartTime != "07:00:00" {
		t.Errorf("expected newest first, got %q then %q", entries[0].StartTime, entries[1].StartTime)
	}
}

func TestRegisterEmployeeConflictIsNoop(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	if err := db.RegisterEmployee(ctx, "1001", "Alice"); err != nil {
		t.Fatal(err)
	}
	if err := db.RegisterEmployee(ctx, "1001", "Bob"); err != nil {
		t.Fatal(err)
	}
	if err := db.RegisterEmployee(ctx, "2002", ""); err != nil {
		t.Fatal(err)
	}

	employees, err := db.ListEmployees(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(employees) != 2 {
		t.Fatalf("expected 2 employees, got %d", len(employees))
	}
	if employees[0].EmployeeID != "1001" || employees[0].Name != "Alice" {
		t.Errorf("employee = %+v, want 1001/Alice", employees[0])
	}
	if employees[1].EmployeeID != "2002" || employees[1].Name != "" {
		t.Errorf("employee = %+v, want 2002 with empty name", employees[1])
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "breaklog.db")

	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	mustInsert(t, db, "1001", "2024-03-01", "08:00:00", ledger.ActivityWork)
	db.Close()

	// Reopening runs migrations again and keeps existing rows.
	db, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	entries, err := db.ListEntries(ctx, ledger.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after reopen, got %d", len(entries))
	}
}

func mustInsert(t *testing.T, db *DB, employeeID, date, start, activity string) *ledger.LogEntry {
	t.Helper()
	entry, err := db.InsertEntry(context.Background(), ledger.EntryDraft{
		EmployeeID: employeeID,
		Date:       date,
		StartTime:  start,
		Activity:   activity,
	})
	if err != nil {
		t.Fatal(err)
	}
	return entry
}
