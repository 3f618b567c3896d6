// Package memory is an in-memory storage backend used by tests and for
// running without any persistence at all.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/worawit/breaklog/internal/ledger"
)

type Store struct {
	mu        sync.RWMutex
	entries   []ledger.LogEntry
	employees map[string]string
}

func NewStore() *Store {
	return &Store{employees: make(map[string]string)}
}

func (s *Store) FindOpenEntry(_ context.Context, employeeID, date string) (*ledger.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *ledger.LogEntry
	for i := range s.entries {
		e := s.entries[i]
		if e.EmployeeID != employeeID || e.Date != date || !e.Open() {
			continue
		}
		// Latest start time wins when the one-open-entry rule was violated
		// behind our back.
		if found == nil || e.StartTime > found.StartTime {
			copied := e
			found = &copied
		}
	}
	return found, nil
}

func (s *Store) InsertEntry(_ context.Context, draft ledger.EntryDraft) (*ledger.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := ledger.LogEntry{
		ID:         uuid.NewString(),
		EmployeeID: draft.EmployeeID,
		Date:       draft.Date,
		StartTime:  draft.StartTime,
		Activity:   draft.Activity,
	}
	s.entries = append(s.entries, entry)
	return &entry, nil
}

func (s *Store) CloseEntry(_ context.Context, id, endTime string, durationMinutes *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries[i].EndTime = endTime
			s.entries[i].DurationMinutes = durationMinutes
			return nil
		}
	}
	return ledger.ErrNotFound
}

func (s *Store) DeleteEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return ledger.ErrNotFound
}

func (s *Store) ListEntries(_ context.Context, filter ledger.Filter) ([]ledger.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []ledger.LogEntry
	for _, e := range s.entries {
		if filter.EmployeeID != "" && e.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.DateFrom != "" && e.Date < filter.DateFrom {
			continue
		}
		if filter.DateTo != "" && e.Date > filter.DateTo {
			continue
		}
		result = append(result, e)
	}

	// newest first
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date > result[j].Date
		}
		return result[i].StartTime > result[j].StartTime
	})
	return result, nil
}

func (s *Store) RegisterEmployee(_ context.Context, employeeID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.employees[employeeID]; exists {
		return nil
	}
	s.employees[employeeID] = name
	return nil
}

func (s *Store) ListEmployees(_ context.Context) ([]ledger.KnownEmployee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	employees := make([]ledger.KnownEmployee, 0, len(s.employees))
	for id, name := range s.employees {
		employees = append(employees, ledger.KnownEmployee{EmployeeID: id, Name: name})
	}
	sort.Slice(employees, func(i, j int) bool {
		return employees[i].EmployeeID < employees[j].EmployeeID
	})
	return employees, nil
}

func (s *Store) Close() error {
	return nil
}
