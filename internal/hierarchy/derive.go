package hierarchy

import (
	"time"

	"calimport/internal/model"
)

// Buckets holds all bucket keys derived from one event start timestamp.
type Buckets struct {
	Year  model.YearKey
	Month model.MonthKey
	Week  model.WeekKey
	Day   model.DayKey
}

// Derive computes the bucket keys for a timestamp.
//
// The Week key uses ISO-8601 week numbering (Monday-first; week 1 is the
// week containing the year's first Thursday), so Week.Year may differ from
// the calendar year near year boundaries: 2025-12-29 derives to week
// 2026-W01 while its Day/Month/Year keys stay in 2025. Derivation is a pure
// function of the timestamp's local date.
func Derive(t time.Time) Buckets {
	isoYear, isoWeek := t.ISOWeek()
	return Buckets{
		Year:  model.YearKey{Year: t.Year()},
		Month: model.MonthKey{Year: t.Year(), Month: int(t.Month())},
		Week:  model.WeekKey{Year: isoYear, Week: isoWeek},
		Day:   DayKeyOf(t),
	}
}

// DayKeyOf returns the calendar-date key for t.
func DayKeyOf(t time.Time) model.DayKey {
	return model.DayKey{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// WeekStart returns the Monday of the given ISO week in loc.
//
// January 4th is always inside ISO week 1 of its year, so the Monday of
// week 1 is Jan 4 minus (weekday-1) days and week N starts 7*(N-1) days
// later.
func WeekStart(k model.WeekKey, loc *time.Location) time.Time {
	jan4 := time.Date(k.Year, time.January, 4, 0, 0, 0, 0, loc)
	week1Monday := jan4.AddDate(0, 0, -(ISOWeekday(jan4) - 1))
	return week1Monday.AddDate(0, 0, 7*(k.Week-1))
}

// WeekBounds returns the Monday and Sunday dates of the given ISO week.
func WeekBounds(k model.WeekKey) (start, end model.DayKey) {
	s := WeekStart(k, time.UTC)
	return DayKeyOf(s), DayKeyOf(s.AddDate(0, 0, 6))
}
