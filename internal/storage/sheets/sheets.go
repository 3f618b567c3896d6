package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/worawit/breaklog/internal/ledger"
)

const (
	logsTable  = "time_logs"
	usersTable = "users"
)

// Store implements the ledger storage contract on top of the row service.
type Store struct {
	client *Client
	cache  *entryCache
}

func NewStore(baseURL, token string, cacheTTL time.Duration, logger *slog.Logger) *Store {
	return &Store{
		client: NewClient(baseURL, token, logger),
		cache:  newEntryCache(cacheTTL),
	}
}

// FindOpenEntry deliberately bypasses the cache: the open-entry state feeds
// start/end decisions and must be a fresh read.
func (s *Store) FindOpenEntry(ctx context.Context, employeeID, date string) (*ledger.LogEntry, error) {
	params := url.Values{}
	params.Set("employee_id", employeeID)
	params.Set("date", date)
	params.Set("open", "true")

	var resp rowsResponse
	if err := s.client.getRows(ctx, logsTable, params, &resp); err != nil {
		return nil, fmt.Errorf("finding open entry: %w", err)
	}
	if len(resp.Rows) == 0 {
		return nil, nil
	}

	// Latest start time wins if the service holds more than one open row.
	sort.Slice(resp.Rows, func(i, j int) bool {
		return resp.Rows[i].StartTime > resp.Rows[j].StartTime
	})
	entry := resp.Rows[0].toEntry()
	return &entry, nil
}

func (s *Store) InsertEntry(ctx context.Context, draft ledger.EntryDraft) (*ledger.LogEntry, error) {
	row := logRow{
		EmployeeID: draft.EmployeeID,
		Date:       draft.Date,
		StartTime:  draft.StartTime,
		Activity:   draft.Activity,
	}

	data, _, err := s.client.doRequest(ctx, http.MethodPost, "/tables/"+logsTable+"/rows", row)
	if err != nil {
		return nil, fmt.Errorf("inserting entry: %w", err)
	}

	var created logRow
	if err := json.Unmarshal(data, &created); err != nil {
		return nil, fmt.Errorf("parsing inserted row: %w", err)
	}

	s.cache.Invalidate()
	entry := created.toEntry()
	return &entry, nil
}

func (s *Store) CloseEntry(ctx context.Context, id, endTime string, durationMinutes *int) error {
	patch := map[string]interface{}{
		"end_time":         endTime,
		"duration_minutes": durationMinutes,
	}

	_, _, err := s.client.doRequest(ctx, http.MethodPatch, "/tables/"+logsTable+"/rows/"+url.PathEscape(id), patch)
	if err != nil {
		return fmt.Errorf("closing entry: %w", err)
	}

	s.cache.Invalidate()
	return nil
}

func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	_, status, err := s.client.doRequest(ctx, http.MethodDelete, "/tables/"+logsTable+"/rows/"+url.PathEscape(id), nil)
	if status == http.StatusNotFound {
		return ledger.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}

	s.cache.Invalidate()
	return nil
}

func (s *Store) ListEntries(ctx context.Context, filter ledger.Filter) ([]ledger.LogEntry, error) {
	entries := s.cache.Get()
	if entries == nil {
		var resp rowsResponse
		if err := s.client.getRows(ctx, logsTable, nil, &resp); err != nil {
			return nil, fmt.Errorf("listing entries: %w", err)
		}

		entries = make([]ledger.LogEntry, 0, len(resp.Rows))
		for _, row := range resp.Rows {
			entries = append(entries, row.toEntry())
		}
		s.cache.Set(entries)
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

// RegisterEmployee posts to the users table, which carries a uniqueness
// constraint on employee_id. A conflict means the ID is already registered
// and is not an error.
func (s *Store) RegisterEmployee(ctx context.Context, employeeID, name string) error {
	row := userRow{EmployeeID: employeeID, Name: name}

	_, status, err := s.client.doRequest(ctx, http.MethodPost, "/tables/"+usersTable+"/rows", row)
	if status == http.StatusConflict {
		return nil
	}
	if err != nil {
		return fmt.Errorf("registering employee: %w", err)
	}
	return nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]ledger.KnownEmployee, error) {
	var resp usersResponse
	if err := s.client.getRows(ctx, usersTable, nil, &resp); err != nil {
		return nil, fmt.Errorf("listing employees: %w", err)
	}

	employees := make([]ledger.KnownEmployee, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		employees = append(employees, ledger.KnownEmployee{EmployeeID: row.EmployeeID, Name: row.Name})
	}
	sort.Slice(employees, func(i, j int) bool {
		return employees[i].EmployeeID < employees[j].EmployeeID
	})
	return employees, nil
}

func (s *Store) Close() error {
	return nil
}
