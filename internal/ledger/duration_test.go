package ledger_test

import (
	"testing"
	"time"

	"github.com/worawit/breaklog/internal/ledger"
)

func TestComputeDuration(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		want    int
		wantOK  bool
	}{
		{"plain interval", "09:00:00", "09:45:00", 45, true},
		{"midnight rollover", "23:50:00", "00:10:00", 20, true},
		{"zero minutes", "10:00:00", "10:00:00", 0, true},
		{"short form", "09:00", "10:30", 90, true},
		{"mixed forms", "09:00", "09:15:00", 15, true},
		{"seconds truncate", "09:00:30", "09:01:00", 0, true},
		{"missing start", "", "10:00:00", 0, false},
		{"missing end", "10:00:00", "", 0, false},
		{"garbage start", "not-a-time", "10:00:00", 0, false},
		{"out of range", "25:61:00", "10:00:00", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ledger.ComputeDuration(tt.start, tt.end)
			if ok != tt.wantOK {
				t.Fatalf("ComputeDuration(%q, %q) ok = %v, want %v", tt.start, tt.end, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ComputeDuration(%q, %q) = %d, want %d", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestComputeDurationUndefinedIsNotZero(t *testing.T) {
	// An unparseable input must come back as undefined, which callers must
	// treat differently from a legitimate zero-minute duration.
	_, okUndefined := ledger.ComputeDuration("", "10:00:00")
	zero, okZero := ledger.ComputeDuration("10:00:00", "10:00:00")

	if okUndefined {
		t.Error("expected undefined result for missing start time")
	}
	if !okZero || zero != 0 {
		t.Errorf("expected defined zero duration, got %d (ok=%v)", zero, okZero)
	}
}

func TestStamp(t *testing.T) {
	at := time.Date(2026, 8, 29, 9, 5, 7, 0, time.UTC)
	date, clock := ledger.Stamp(at)
	if date != "2026-08-29" {
		t.Errorf("date = %q, want %q", date, "2026-08-29")
	}
	if clock != "09:05:07" {
		t.Errorf("clock = %q, want %q", clock, "09:05:07")
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"09:45:30", "09:45"},
		{"09:45", "09:45"},
		{"", "N/A"},
		{"garbage", "N/A"},
	}
	for _, tt := range tests {
		if got := ledger.FormatClock(tt.input); got != tt.want {
			t.Errorf("FormatClock(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatMinutes(t *testing.T) {
	minutes := func(m int) *int { return &m }

	tests := []struct {
		input *int
		want  string
	}{
		{nil, "N/A"},
		{minutes(0), "00:00"},
		{minutes(75), "01:15"},
		{minutes(-5), "00:00"},
	}
	for _, tt := range tests {
		if got := ledger.FormatMinutes(tt.input); got != tt.want {
			t.Errorf("FormatMinutes(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
