package hierarchy

import "time"

// Fixed German display tables. Output must not depend on the locale
// environment, so the names are compiled in.

var monthNames = [12]string{
	"Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember",
}

var weekdayNames = [7]string{
	"Montag", "Dienstag", "Mittwoch", "Donnerstag",
	"Freitag", "Samstag", "Sonntag",
}

// MonthName returns the German name for month 1..12, "" otherwise.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}

// ISOWeekday returns the ISO-8601 weekday number: Monday = 1 ... Sunday = 7.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// WeekdayName returns the German weekday name for t.
func WeekdayName(t time.Time) string {
	return weekdayNames[ISOWeekday(t)-1]
}
