// Package ledger implements the activity log business rules: at most one open
// entry per employee, closed by the next start or an explicit end, with
// durations computed from wall-clock times. It is storage-agnostic; backends
// implement the Storage contract.
package ledger

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by storage backends when an entry ID does not exist.
var ErrNotFound = errors.New("entry not found")

// Storage is the persistence contract the ledger drives. Implementations live
// under internal/storage. FindOpenEntry must be deterministic even when more
// than one open entry exists for the pair (external tampering): it returns the
// one with the latest start time. RegisterEmployee has insert-or-ignore
// semantics and must not error on duplicates. CloseEntry takes a nil duration
// when it could not be computed, which persists as absent, not zero.
type Storage interface {
	FindOpenEntry(ctx context.Context, employeeID, date string) (*LogEntry, error)
	InsertEntry(ctx context.Context, draft EntryDraft) (*LogEntry, error)
	CloseEntry(ctx context.Context, id, endTime string, durationMinutes *int) error
	DeleteEntry(ctx context.Context, id string) error
	ListEntries(ctx context.Context, filter Filter) ([]LogEntry, error)
	RegisterEmployee(ctx context.Context, employeeID, name string) error
	ListEmployees(ctx context.Context) ([]KnownEmployee, error)
	Close() error
}

// Ledger coordinates start/end/delete actions against a storage backend.
// It holds no entry state of its own: every operation re-reads the open-entry
// state so it never acts on a stale snapshot.
type Ledger struct {
	store Storage
}

func New(store Storage) *Ledger {
	return &Ledger{store: store}
}

// StartActivity closes the employee's open entry (if any) at atTime, registers
// the employee ID, and opens a new entry for the given activity. The new start
// time doubles as the previous entry's end time, which is how the
// one-open-entry-per-employee rule is kept. Having no prior open entry is the
// common case, not a failure.
//
// An empty employeeID is a contract violation; callers validate before calling.
func (l *Ledger) StartActivity(ctx context.Context, employeeID, activity, atDate, atTime string) (*LogEntry, error) {
	if employeeID == "" {
		return nil, errors.New("employee ID must not be empty")
	}

	if _, err := l.EndActivity(ctx, employeeID, atDate, atTime); err != nil {
		return nil, fmt.Errorf("closing previous activity: %w", err)
	}

	if err := l.store.RegisterEmployee(ctx, employeeID, ""); err != nil {
		return nil, fmt.Errorf("registering employee: %w", err)
	}

	entry, err := l.store.InsertEntry(ctx, EntryDraft{
		EmployeeID: employeeID,
		Date:       atDate,
		StartTime:  atTime,
		Activity:   activity,
	})
	if err != nil {
		return nil, fmt.Errorf("inserting entry: %w", err)
	}
	return entry, nil
}

// EndActivity closes the open entry for the employee on the given date,
// setting its end time and duration. It returns false when nothing is open,
// which is a normal outcome (the user pressed "end" with nothing active), not
// an error.
func (l *Ledger) EndActivity(ctx context.Context, employeeID, atDate, atTime string) (bool, error) {
	open, err := l.store.FindOpenEntry(ctx, employeeID, atDate)
	if err != nil {
		return false, fmt.Errorf("finding open entry: %w", err)
	}
	if open == nil {
		return false, nil
	}

	var duration *int
	if minutes, ok := ComputeDuration(open.StartTime, atTime); ok {
		duration = &minutes
	}

	if err := l.store.CloseEntry(ctx, open.ID, atTime, duration); err != nil {
		return false, fmt.Errorf("closing entry: %w", err)
	}
	return true, nil
}

// DeleteEntry removes the entry unconditionally. Deleting an open entry just
// leaves the employee with no active activity, which is a valid state.
// A missing ID returns false without error so callers can surface a warning.
func (l *Ledger) DeleteEntry(ctx context.Context, id string) (bool, error) {
	err := l.store.DeleteEntry(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("deleting entry: %w", err)
	}
	return true, nil
}

// RegisterEmployee records an employee ID (with an optional display name) in
// the known-employee registry. Safe to call for IDs already present.
func (l *Ledger) RegisterEmployee(ctx context.Context, employeeID, name string) error {
	if employeeID == "" {
		return errors.New("employee ID must not be empty")
	}
	return l.store.RegisterEmployee(ctx, employeeID, name)
}

// ListEntries returns log rows matching the filter, newest first.
func (l *Ledger) ListEntries(ctx context.Context, filter Filter) ([]LogEntry, error) {
	return l.store.ListEntries(ctx, filter)
}

// ListEmployees returns the known-employee registry sorted by ID.
func (l *Ledger) ListEmployees(ctx context.Context) ([]KnownEmployee, error) {
	return l.store.ListEmployees(ctx)
}
