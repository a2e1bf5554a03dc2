package hierarchy

import (
	"testing"
	"time"

	"calimport/internal/model"
)

func TestDeriveISOWeek(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		wantWeek model.WeekKey
	}{
		{name: "mid-year", date: "2026-02-23", wantWeek: model.WeekKey{Year: 2026, Week: 9}},
		{name: "year boundary belongs to next iso year", date: "2025-12-29", wantWeek: model.WeekKey{Year: 2026, Week: 1}},
		{name: "january belongs to previous iso year", date: "2027-01-01", wantWeek: model.WeekKey{Year: 2026, Week: 53}},
		{name: "first thursday rule", date: "2026-01-01", wantWeek: model.WeekKey{Year: 2026, Week: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := time.Parse("2006-01-02", tt.date)
			if err != nil {
				t.Fatalf("bad test date: %v", err)
			}
			b := Derive(ts)
			if b.Week != tt.wantWeek {
				t.Fatalf("Derive(%s).Week = %v, want %v", tt.date, b.Week, tt.wantWeek)
			}
		})
	}
}

func TestDeriveKeysMatchCalendarDate(t *testing.T) {
	ts := time.Date(2025, time.December, 29, 10, 30, 0, 0, time.UTC)
	b := Derive(ts)

	if b.Year != (model.YearKey{Year: 2025}) {
		t.Fatalf("Year = %v, want 2025", b.Year)
	}
	if b.Month != (model.MonthKey{Year: 2025, Month: 12}) {
		t.Fatalf("Month = %v, want 2025-12", b.Month)
	}
	if b.Day != (model.DayKey{Year: 2025, Month: 12, Day: 29}) {
		t.Fatalf("Day = %v, want 2025-12-29", b.Day)
	}
	// The week crosses the year boundary: iso year differs from calendar year.
	if b.Week != (model.WeekKey{Year: 2026, Week: 1}) {
		t.Fatalf("Week = %v, want 2026-W01", b.Week)
	}
}

func TestDeriveDeterministic(t *testing.T) {
	ts := time.Date(2026, time.February, 23, 8, 0, 0, 0, time.UTC)
	if Derive(ts) != Derive(ts) {
		t.Fatal("Derive is not deterministic for identical input")
	}
}

func TestWeekBounds(t *testing.T) {
	tests := []struct {
		name      string
		week      model.WeekKey
		wantStart string
		wantEnd   string
	}{
		{name: "boundary week starts in previous year", week: model.WeekKey{Year: 2026, Week: 1}, wantStart: "2025-12-29", wantEnd: "2026-01-04"},
		{name: "cross-month week", week: model.WeekKey{Year: 2026, Week: 9}, wantStart: "2026-02-23", wantEnd: "2026-03-01"},
		{name: "week 53", week: model.WeekKey{Year: 2026, Week: 53}, wantStart: "2026-12-28", wantEnd: "2027-01-03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := WeekBounds(tt.week)
			if start.String() != tt.wantStart || end.String() != tt.wantEnd {
				t.Fatalf("WeekBounds(%v) = %s..%s, want %s..%s", tt.week, start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestWeekStartIsMonday(t *testing.T) {
	for week := 1; week <= 52; week++ {
		s := WeekStart(model.WeekKey{Year: 2026, Week: week}, time.UTC)
		if ISOWeekday(s) != 1 {
			t.Fatalf("WeekStart(2026-W%02d) = %s, not a Monday", week, s.Format("2006-01-02"))
		}
	}
}

func TestLocaleTables(t *testing.T) {
	if got := MonthName(2); got != "Februar" {
		t.Fatalf("MonthName(2) = %q, want Februar", got)
	}
	if got := MonthName(3); got != "März" {
		t.Fatalf("MonthName(3) = %q, want März", got)
	}
	if got := MonthName(0); got != "" {
		t.Fatalf("MonthName(0) = %q, want empty", got)
	}

	monday := time.Date(2026, time.February, 23, 0, 0, 0, 0, time.UTC)
	if got := WeekdayName(monday); got != "Montag" {
		t.Fatalf("WeekdayName(2026-02-23) = %q, want Montag", got)
	}
	sunday := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	if got := ISOWeekday(sunday); got != 7 {
		t.Fatalf("ISOWeekday(sunday) = %d, want 7", got)
	}
	if got := WeekdayName(sunday); got != "Sonntag" {
		t.Fatalf("WeekdayName(2026-03-01) = %q, want Sonntag", got)
	}
}
