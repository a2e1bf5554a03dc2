package query

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Rendering is intentionally plain text in German, mirroring the product's
// display language. Each day is a header with weekday and DD.MM.YYYY date,
// a count line, then one block per event with times, duration, summary and
// the stored object's URL.

// RenderDays writes a day-grouped event listing.
func RenderDays(w io.Writer, days []DayEvents) {
	total := 0
	for _, d := range days {
		total += len(d.Events)
	}
	if total == 0 {
		fmt.Fprintln(w, "Keine Termine gefunden.")
		return
	}

	for _, d := range days {
		if len(d.Events) == 0 {
			continue
		}
		weekday := d.Weekday
		if weekday == "" {
			weekday = weekdayOf(d.Date)
		}
		fmt.Fprintf(w, "\n%s, %s\n", weekday, displayDate(d.Date))
		fmt.Fprintf(w, "(%d %s)\n", len(d.Events), pluralTermin(len(d.Events)))
		fmt.Fprintln(w, strings.Repeat("-", 60))
		for _, ev := range d.Events {
			fmt.Fprintf(w, "  %s - %s (%d min)\n", ev.StartTime, ev.EndTime, ev.DurationMinutes)
			fmt.Fprintf(w, "     %s\n", ev.Summary)
			if ev.ObjectURL != "" {
				fmt.Fprintf(w, "     %s\n", ev.ObjectURL)
			}
			fmt.Fprintln(w)
		}
	}
}

// RenderMonths writes a month-grouped listing, skipping empty months.
func RenderMonths(w io.Writer, months []MonthEvents) {
	any := false
	for _, m := range months {
		n := 0
		for _, d := range m.Days {
			n += len(d.Events)
		}
		if n == 0 {
			continue
		}
		any = true
		fmt.Fprintf(w, "\n%s\n", m.Name)
		fmt.Fprintln(w, strings.Repeat("=", 60))
		RenderDays(w, m.Days)
	}
	if !any {
		fmt.Fprintln(w, "Keine Termine gefunden.")
	}
}

// RenderYears writes the full listing grouped by year.
func RenderYears(w io.Writer, years []YearEvents) {
	any := false
	for _, y := range years {
		n := 0
		for _, m := range y.Months {
			for _, d := range m.Days {
				n += len(d.Events)
			}
		}
		if n == 0 {
			continue
		}
		any = true
		fmt.Fprintf(w, "\nJahr %d\n", y.Year)
		fmt.Fprintln(w, strings.Repeat("#", 60))
		RenderMonths(w, y.Months)
	}
	if !any {
		fmt.Fprintln(w, "Keine Termine gefunden.")
	}
}

func displayDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("02.01.2006")
}

func pluralTermin(n int) string {
	if n == 1 {
		return "Termin"
	}
	return "Termine"
}
