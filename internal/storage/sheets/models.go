package sheets

import (
	"strconv"

	"github.com/worawit/breaklog/internal/ledger"
)

// logRow is the wire shape of one time_logs row. The duration is a pointer so
// an absent cell and a zero can be told apart on both ends.
type logRow struct {
	ID              rowID  `json:"id"`
	EmployeeID      string `json:"employee_id"`
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time,omitempty"`
	Activity        string `json:"activity_type"`
	DurationMinutes *int   `json:"duration_minutes,omitempty"`
}

type userRow struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name,omitempty"`
}

type rowsResponse struct {
	Rows []logRow `json:"rows"`
}

type usersResponse struct {
	Rows []userRow `json:"rows"`
}

// rowID tolerates row IDs arriving as either JSON numbers or strings,
// which varies by sheet provider.
type rowID string

func (j *rowID) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		*j = rowID(s[1 : len(s)-1])
		return nil
	}
	*j = rowID(s)
	return nil
}

func (j rowID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(string(j))), nil
}

func (r logRow) toEntry() ledger.LogEntry {
	return ledger.LogEntry{
		ID:              string(r.ID),
		EmployeeID:      r.EmployeeID,
		Date:            r.Date,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		Activity:        r.Activity,
		DurationMinutes: r.DurationMinutes,
	}
}
