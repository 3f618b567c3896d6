// Package export renders log entries for download: CSV for spreadsheets and
// iCalendar for calendar apps.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/worawit/breaklog/internal/ledger"
)

// csvHeader matches the LogEntry field names.
var csvHeader = []string{"id", "employee_id", "date", "start_time", "end_time", "activity_type", "duration_minutes"}

// WriteCSV writes entries as UTF-8 CSV prefixed with a byte-order mark, which
// spreadsheet applications need to pick up non-ASCII employee IDs correctly.
// Open entries get empty end_time and duration_minutes cells.
func WriteCSV(w io.Writer, entries []ledger.LogEntry) error {
	if _, err := io.WriteString(w, "\ufeff"); err != nil {
		return fmt.Errorf("writing BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, e := range entries {
		duration := ""
		if e.DurationMinutes != nil {
			duration = strconv.Itoa(*e.DurationMinutes)
		}
		record := []string{e.ID, e.EmployeeID, e.Date, e.StartTime, e.EndTime, e.Activity, duration}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing entry %s: %w", e.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
