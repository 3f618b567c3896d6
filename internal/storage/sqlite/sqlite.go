// Package sqlite is the default storage backend, a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"

	"github.com/worawit/breaklog/internal/ledger"
)

type DB struct {
	*sql.DB
}

// Open opens (and if needed creates) the database at path and runs migrations.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	store := &DB{db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return store, nil
}

func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS time_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			employee_id TEXT NOT NULL,
			date TEXT NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT,
			activity_type TEXT NOT NULL,
			duration_minutes INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_time_logs_employee_date
			ON time_logs(employee_id, date)`,
		`CREATE TABLE IF NOT EXISTS users (
			employee_id TEXT PRIMARY KEY,
			name TEXT
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}

	return nil
}

const entryColumns = "id, employee_id, date, start_time, end_time, activity_type, duration_minutes"

func (db *DB) FindOpenEntry(ctx context.Context, employeeID, date string) (*ledger.LogEntry, error) {
	entries, err := db.queryEntries(ctx,
		`SELECT `+entryColumns+`
		 FROM time_logs
		 WHERE employee_id = ? AND date = ? AND end_time IS NULL
		 ORDER BY start_time DESC
		 LIMIT 1`,
		employeeID, date,
	)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

func (db *DB) InsertEntry(ctx context.Context, draft ledger.EntryDraft) (*ledger.LogEntry, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO time_logs (employee_id, date, start_time, activity_type)
		 VALUES (?, ?, ?, ?)`,
		draft.EmployeeID, draft.Date, draft.StartTime, draft.Activity,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading inserted id: %w", err)
	}

	return &ledger.LogEntry{
		ID:         strconv.FormatInt(id, 10),
		EmployeeID: draft.EmployeeID,
		Date:       draft.Date,
		StartTime:  draft.StartTime,
		Activity:   draft.Activity,
	}, nil
}

func (db *DB) CloseEntry(ctx context.Context, id, endTime string, durationMinutes *int) error {
	_, err := db.ExecContext(ctx,
		"UPDATE time_logs SET end_time = ?, duration_minutes = ? WHERE id = ?",
		endTime, durationMinutes, id,
	)
	if err != nil {
		return fmt.Errorf("closing entry: %w", err)
	}
	return nil
}

func (db *DB) DeleteEntry(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, "DELETE FROM time_logs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (db *DB) ListEntries(ctx context.Context, filter ledger.Filter) ([]ledger.LogEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM time_logs`
	var conditions []string
	var args []interface{}

	if filter.EmployeeID != "" {
		conditions = append(conditions, "employee_id = ?")
		args = append(args, filter.EmployeeID)
	}
	if filter.DateFrom != "" {
		conditions = append(conditions, "date >= ?")
		args = append(args, filter.DateFrom)
	}
	if filter.DateTo != "" {
		conditions = append(conditions, "date <= ?")
		args = append(args, filter.DateTo)
	}

	for i, c := range conditions {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY date DESC, start_time DESC"

	return db.queryEntries(ctx, query, args...)
}

func (db *DB) RegisterEmployee(ctx context.Context, employeeID, name string) error {
	var stored sql.NullString
	if name != "" {
		stored = sql.NullString{String: name, Valid: true}
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO users (employee_id, name) VALUES (?, ?)
		 ON CONFLICT(employee_id) DO NOTHING`,
		employeeID, stored,
	)
	if err != nil {
		return fmt.Errorf("registering employee: %w", err)
	}
	return nil
}

func (db *DB) ListEmployees(ctx context.Context) ([]ledger.KnownEmployee, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT employee_id, name FROM users ORDER BY employee_id")
	if err != nil {
		return nil, fmt.Errorf("querying employees: %w", err)
	}
	defer rows.Close()

	var employees []ledger.KnownEmployee
	for rows.Next() {
		var e ledger.KnownEmployee
		var name sql.NullString
		if err := rows.Scan(&e.EmployeeID, &name); err != nil {
			return nil, fmt.Errorf("scanning employee: %w", err)
		}
		e.Name = name.String
		employees = append(employees, e)
	}

	return employees, rows.Err()
}

func (db *DB) queryEntries(ctx context.Context, query string, args ...interface{}) ([]ledger.LogEntry, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []ledger.LogEntry
	for rows.Next() {
		var e ledger.LogEntry
		var id int64
		var endTime sql.NullString
		var duration sql.NullInt64

		if err := rows.Scan(
			&id, &e.EmployeeID, &e.Date, &e.StartTime, &endTime, &e.Activity, &duration,
		); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}

		e.ID = strconv.FormatInt(id, 10)
		e.EndTime = endTime.String
		if duration.Valid {
			minutes := int(duration.Int64)
			e.DurationMinutes = &minutes
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}
