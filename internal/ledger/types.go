package ledger

// Common activity labels. The ledger treats the label as an opaque string;
// these are just the ones the kiosk buttons produce.
const (
	ActivityBreak   = "Break"
	ActivitySmoking = "Smoking"
	ActivityToilet  = "Toilet"
	ActivityWork    = "Work"
)

// LogEntry is one row of the time log. Dates are "2006-01-02" strings and
// times are wall-clock "15:04:05" strings, matching how they were captured.
type LogEntry struct {
	ID              string `json:"id"`
	EmployeeID      string `json:"employee_id"`
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time,omitempty"`
	Activity        string `json:"activity_type"`
	DurationMinutes *int   `json:"duration_minutes,omitempty"`
}

// Open reports whether the entry has not been closed out yet.
func (e LogEntry) Open() bool {
	return e.EndTime == ""
}

// EntryDraft is a new, still-open entry before storage assigns its ID.
type EntryDraft struct {
	EmployeeID string
	Date       string
	StartTime  string
	Activity   string
}

// KnownEmployee is a previously seen employee ID with an optional display name.
type KnownEmployee struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name,omitempty"`
}

// DisplayName returns the name, or "N/A" when none was recorded.
func (k KnownEmployee) DisplayName() string {
	if k.Name == "" {
		return "N/A"
	}
	return k.Name
}

// Filter narrows a log listing. Zero values mean "no constraint".
// Dates are inclusive "2006-01-02" bounds.
type Filter struct {
	DateFrom   string
	DateTo     string
	EmployeeID string
}
