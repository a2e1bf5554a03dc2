package query

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"calimport/internal/model"
)

// ErrInvalidDateFormat marks user input that does not match the expected
// pattern for the selected query kind. It is recoverable: the prompt loop
// reports it and asks again.
var ErrInvalidDateFormat = errors.New("invalid date format")

var (
	dayPattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	// Week (YYYY-WW) and month (YYYY-MM) input share one shape; the query
	// kind picked in the menu decides the interpretation.
	yearPairPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
	yearPattern     = regexp.MustCompile(`^(\d{4})$`)
)

// ParseDay validates YYYY-MM-DD input, rejecting impossible dates such as
// 2026-13-01 or 2026-02-30.
func ParseDay(s string) (model.DayKey, error) {
	if !dayPattern.MatchString(s) {
		return model.DayKey{}, fmt.Errorf("%w: %q (expected YYYY-MM-DD)", ErrInvalidDateFormat, s)
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return model.DayKey{}, fmt.Errorf("%w: %q (expected YYYY-MM-DD)", ErrInvalidDateFormat, s)
	}
	return model.DayKey{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, nil
}

// ParseWeek validates YYYY-WW input with an ISO week number of 1..53.
func ParseWeek(s string) (model.WeekKey, error) {
	m := yearPairPattern.FindStringSubmatch(s)
	if m == nil {
		return model.WeekKey{}, fmt.Errorf("%w: %q (expected YYYY-WW)", ErrInvalidDateFormat, s)
	}
	year, _ := strconv.Atoi(m[1])
	week, _ := strconv.Atoi(m[2])
	if week < 1 || week > 53 {
		return model.WeekKey{}, fmt.Errorf("%w: %q (week must be 01..53)", ErrInvalidDateFormat, s)
	}
	return model.WeekKey{Year: year, Week: week}, nil
}

// ParseMonth validates YYYY-MM input with a month of 1..12.
func ParseMonth(s string) (model.MonthKey, error) {
	m := yearPairPattern.FindStringSubmatch(s)
	if m == nil {
		return model.MonthKey{}, fmt.Errorf("%w: %q (expected YYYY-MM)", ErrInvalidDateFormat, s)
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return model.MonthKey{}, fmt.Errorf("%w: %q (month must be 01..12)", ErrInvalidDateFormat, s)
	}
	return model.MonthKey{Year: year, Month: month}, nil
}

// ParseYear validates YYYY input.
func ParseYear(s string) (model.YearKey, error) {
	if !yearPattern.MatchString(s) {
		return model.YearKey{}, fmt.Errorf("%w: %q (expected YYYY)", ErrInvalidDateFormat, s)
	}
	year, _ := strconv.Atoi(s)
	return model.YearKey{Year: year}, nil
}
