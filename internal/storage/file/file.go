// Package file is a flat-file storage backend: the log and the known-employee
// registry live in two CSV files under a data directory. Every operation
// re-reads the file, mutates in memory, and writes back atomically
// (temp file + rename), so crashes never leave a half-written log.
package file

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"github.com/worawit/breaklog/internal/ledger"
)

const (
	logFile   = "time_logs.csv"
	usersFile = "users.csv"
)

var logHeader = []string{"id", "employee_id", "date", "start_time", "end_time", "activity_type", "duration_minutes"}
var usersHeader = []string{"employee_id", "name"}

type Store struct {
	dir string
}

// Open prepares the data directory. The CSV files are created lazily on the
// first write.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) FindOpenEntry(_ context.Context, employeeID, date string) (*ledger.LogEntry, error) {
	entries, err := s.loadEntries()
	if err != nil {
		return nil, err
	}

	var found *ledger.LogEntry
	for i := range entries {
		e := entries[i]
		if e.EmployeeID != employeeID || e.Date != date || !e.Open() {
			continue
		}
		if found == nil || e.StartTime > found.StartTime {
			copied := e
			found = &copied
		}
	}
	return found, nil
}

func (s *Store) InsertEntry(_ context.Context, draft ledger.EntryDraft) (*ledger.LogEntry, error) {
	entries, err := s.loadEntries()
	if err != nil {
		return nil, err
	}

	entry := ledger.LogEntry{
		ID:         uuid.NewString(),
		EmployeeID: draft.EmployeeID,
		Date:       draft.Date,
		StartTime:  draft.StartTime,
		Activity:   draft.Activity,
	}
	entries = append(entries, entry)

	if err := s.saveEntries(entries); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *Store) CloseEntry(_ context.Context, id, endTime string, durationMinutes *int) error {
	entries, err := s.loadEntries()
	if err != nil {
		return err
	}

	for i := range entries {
		if entries[i].ID == id {
			entries[i].EndTime = endTime
			entries[i].DurationMinutes = durationMinutes
			return s.saveEntries(entries)
		}
	}
	return ledger.ErrNotFound
}

func (s *Store) DeleteEntry(_ context.Context, id string) error {
	entries, err := s.loadEntries()
	if err != nil {
		return err
	}

	for i := range entries {
		if entries[i].ID == id {
			entries = append(entries[:i], entries[i+1:]...)
			return s.saveEntries(entries)
		}
	}
	return ledger.ErrNotFound
}

func (s *Store) ListEntries(_ context.Context, filter ledger.Filter) ([]ledger.LogEntry, error) {
	entries, err := s.loadEntries()
	if err != nil {
		return nil, err
	}

	var result []ledger.LogEntry
	for _, e := range entries {
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

	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date > result[j].Date
		}
		return result[i].StartTime > result[j].StartTime
	})
	return result, nil
}

func (s *Store) RegisterEmployee(_ context.Context, employeeID, name string) error {
	employees, err := s.loadEmployees()
	if err != nil {
		return err
	}

	for _, e := range employees {
		if e.EmployeeID == employeeID {
			return nil
		}
	}
	employees = append(employees, ledger.KnownEmployee{EmployeeID: employeeID, Name: name})
	return s.saveEmployees(employees)
}

func (s *Store) ListEmployees(_ context.Context) ([]ledger.KnownEmployee, error) {
	employees, err := s.loadEmployees()
	if err != nil {
		return nil, err
	}
	sort.Slice(employees, func(i, j int) bool {
		return employees[i].EmployeeID < employees[j].EmployeeID
	})
	return employees, nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) loadEntries() ([]ledger.LogEntry, error) {
	records, err := s.readCSV(logFile)
	if err != nil {
		return nil, err
	}

	var entries []ledger.LogEntry
	for _, rec := range records {
		if len(rec) < len(logHeader) {
			continue
		}
		e := ledger.LogEntry{
			ID:         rec[0],
			EmployeeID: rec[1],
			Date:       rec[2],
			StartTime:  rec[3],
			EndTime:    rec[4],
			Activity:   rec[5],
		}
		// A duration that does not parse degrades to absent.
		if rec[6] != "" {
			if minutes, err := strconv.Atoi(rec[6]); err == nil {
				e.DurationMinutes = &minutes
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *Store) saveEntries(entries []ledger.LogEntry) error {
	records := make([][]string, 0, len(entries)+1)
	records = append(records, logHeader)
	for _, e := range entries {
		duration := ""
		if e.DurationMinutes != nil {
			duration = strconv.Itoa(*e.DurationMinutes)
		}
		records = append(records, []string{
			e.ID, e.EmployeeID, e.Date, e.StartTime, e.EndTime, e.Activity, duration,
		})
	}
	return s.writeCSV(logFile, records)
}

func (s *Store) loadEmployees() ([]ledger.KnownEmployee, error) {
	records, err := s.readCSV(usersFile)
	if err != nil {
		return nil, err
	}

	var employees []ledger.KnownEmployee
	for _, rec := range records {
		if len(rec) < 1 || rec[0] == "" {
			continue
		}
		e := ledger.KnownEmployee{EmployeeID: rec[0]}
		if len(rec) > 1 {
			e.Name = rec[1]
		}
		employees = append(employees, e)
	}
	return employees, nil
}

func (s *Store) saveEmployees(employees []ledger.KnownEmployee) error {
	records := make([][]string, 0, len(employees)+1)
	records = append(records, usersHeader)
	for _, e := range employees {
		records = append(records, []string{e.EmployeeID, e.Name})
	}
	return s.writeCSV(usersFile, records)
}

// readCSV reads all data rows of the named file, skipping the header.
// A missing file is an empty store. A file that does not parse is backed up
// next to the original and reported, rather than silently dropped.
func (s *Store) readCSV(name string) ([][]string, error) {
	path := filepath.Join(s.dir, name)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		return nil, fmt.Errorf("corrupt CSV in %s (backed up to %s): %w", path, backupPath, err)
	}

	if len(records) == 0 {
		return nil, nil
	}
	return records[1:], nil
}

// writeCSV atomically replaces the named file: write to a temp file, then
// rename over the original.
func (s *Store) writeCSV(name string, records [][]string) error {
	path := filepath.Join(s.dir, name)
	tmpPath := path + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.WriteAll(records); err != nil {
		f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", tmpPath, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
