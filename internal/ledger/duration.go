package ledger

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the calendar-date form entries are stored with.
	DateLayout = "2006-01-02"
	// ClockLayout is the wall-clock form entries are stored with.
	ClockLayout = "15:04:05"
)

var clockLayouts = []string{"15:04:05", "15:04"}

// parseClock parses a wall-clock time of day and returns it as seconds since
// midnight. Accepts HH:MM:SS and HH:MM.
func parseClock(s string) (int, bool) {
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour()*3600 + t.Minute()*60 + t.Second(), true
		}
	}
	return 0, false
}

// ComputeDuration returns the whole minutes elapsed between two wall-clock
// times. When end is earlier than start the activity is assumed to have
// crossed midnight and a day is added; a genuine >24h activity and a clock
// error on the same day are indistinguishable here. The result is never
// negative. ok is false when either input is missing or unparseable; that is
// an undefined duration, not the same as zero minutes.
func ComputeDuration(startTime, endTime string) (minutes int, ok bool) {
	start, okStart := parseClock(startTime)
	end, okEnd := parseClock(endTime)
	if !okStart || !okEnd {
		return 0, false
	}
	if end < start {
		end += 24 * 3600
	}
	minutes = (end - start) / 60
	if minutes < 0 {
		minutes = 0
	}
	return minutes, true
}

// Stamp splits an instant into the date and clock strings entries are keyed by.
func Stamp(t time.Time) (date, clock string) {
	return t.Format(DateLayout), t.Format(ClockLayout)
}

// FormatClock renders a stored time as HH:MM for display. Empty or
// unparseable values render as "N/A" rather than failing the row.
func FormatClock(s string) string {
	if s == "" {
		return "N/A"
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04")
		}
	}
	return "N/A"
}

// FormatMinutes renders a duration as HH:MM. A nil duration is undefined and
// renders as "N/A"; negative values clamp to 00:00.
func FormatMinutes(minutes *int) string {
	if minutes == nil {
		return "N/A"
	}
	m := *minutes
	if m < 0 {
		m = 0
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
