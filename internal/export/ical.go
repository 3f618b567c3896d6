package export

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"

	"github.com/worawit/breaklog/internal/ledger"
)

// WriteICS writes closed entries as an iCalendar with one VEVENT per entry.
// Open entries have no end and are skipped, as are entries whose stored times
// no longer parse.
func WriteICS(w io.Writer, entries []ledger.LogEntry, loc *time.Location) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, "-//breaklog//breaklog//EN")
	cal.Props.SetText(ical.PropVersion, "2.0")

	now := time.Now().In(loc)
	for _, e := range entries {
		if e.Open() {
			continue
		}

		start, err := time.ParseInLocation(ledger.DateLayout+" "+ledger.ClockLayout, e.Date+" "+e.StartTime, loc)
		if err != nil {
			continue
		}
		end, err := time.ParseInLocation(ledger.DateLayout+" "+ledger.ClockLayout, e.Date+" "+e.EndTime, loc)
		if err != nil {
			continue
		}
		// End before start means the activity ran past midnight.
		if end.Before(start) {
			end = end.AddDate(0, 0, 1)
		}

		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, e.ID+"@breaklog")
		event.Props.SetDateTime(ical.PropDateTimeStamp, now)
		event.Props.SetDateTime(ical.PropDateTimeStart, start)
		event.Props.SetDateTime(ical.PropDateTimeEnd, end)
		event.Props.SetText(ical.PropSummary, fmt.Sprintf("%s - %s", e.Activity, e.EmployeeID))
		cal.Children = append(cal.Children, event.Component)
	}

	return ical.NewEncoder(w).Encode(cal)
}
