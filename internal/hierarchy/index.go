package hierarchy

import (
	"sort"

	"calimport/internal/model"
)

// YearChildren lists the child buckets of a Year node. Months and Weeks are
// parallel containment paths down to the same Day/Event leaves.
type YearChildren struct {
	Months []model.MonthKey
	Weeks  []model.WeekKey
}

// Index is the derived read index over an Event set: four bucket mappings
// plus per-bucket event counts. It is a pure value rebuilt from scratch on
// every import run; nothing in here is incrementally patched, so counts can
// never drift from the underlying Event set.
type Index struct {
	// Days maps a date to its events, sorted by (start, uid) ascending.
	Days map[model.DayKey][]model.Event
	// Weeks / Months map to their sorted child day lists.
	Weeks  map[model.WeekKey][]model.DayKey
	Months map[model.MonthKey][]model.DayKey
	// Years maps to sorted child month and week lists.
	Years map[model.YearKey]YearChildren

	ordered []model.Event

	weekCounts  map[model.WeekKey]int
	monthCounts map[model.MonthKey]int
	yearCounts  map[model.YearKey]int
}

// Build constructs the index from a flat event list.
//
// Events are deduplicated by UID first (last occurrence wins, mirroring
// upsert semantics), then bucketed. All child lists are sorted so that
// identical input always produces an identical index.
func Build(events []model.Event) *Index {
	ix := &Index{
		Days:        make(map[model.DayKey][]model.Event),
		Weeks:       make(map[model.WeekKey][]model.DayKey),
		Months:      make(map[model.MonthKey][]model.DayKey),
		Years:       make(map[model.YearKey]YearChildren),
		weekCounts:  make(map[model.WeekKey]int),
		monthCounts: make(map[model.MonthKey]int),
		yearCounts:  make(map[model.YearKey]int),
	}

	ix.ordered = dedupeByUID(events)
	for _, ev := range ix.ordered {
		b := Derive(ev.Start)

		ix.Days[b.Day] = append(ix.Days[b.Day], ev)

		if !containsDay(ix.Weeks[b.Week], b.Day) {
			ix.Weeks[b.Week] = append(ix.Weeks[b.Week], b.Day)
		}
		if !containsDay(ix.Months[b.Month], b.Day) {
			ix.Months[b.Month] = append(ix.Months[b.Month], b.Day)
		}

		yc := ix.Years[b.Year]
		if !containsMonth(yc.Months, b.Month) {
			yc.Months = append(yc.Months, b.Month)
		}
		ix.Years[b.Year] = yc

		// A boundary week belongs to the Year of its ISO year, which may
		// not be the event's calendar year.
		wy := model.YearKey{Year: b.Week.Year}
		wc := ix.Years[wy]
		if !containsWeek(wc.Weeks, b.Week) {
			wc.Weeks = append(wc.Weeks, b.Week)
		}
		ix.Years[wy] = wc
	}

	ix.sortChildren()
	ix.computeCounts()
	return ix
}

// DayCount returns the number of events on a day.
func (ix *Index) DayCount(k model.DayKey) int { return len(ix.Days[k]) }

// WeekCount returns the number of events reachable through a week's days.
func (ix *Index) WeekCount(k model.WeekKey) int { return ix.weekCounts[k] }

// MonthCount returns the number of events reachable through a month's days.
func (ix *Index) MonthCount(k model.MonthKey) int { return ix.monthCounts[k] }

// YearCount returns the number of distinct events reachable through the
// year's months and weeks. Month and week paths overlap, so events are
// counted once by UID.
func (ix *Index) YearCount(k model.YearKey) int { return ix.yearCounts[k] }

// TotalEvents returns the number of events in the index.
func (ix *Index) TotalEvents() int {
	n := 0
	for _, evs := range ix.Days {
		n += len(evs)
	}
	return n
}

// OrderedEvents returns the deduplicated events in file order. The importer
// persists them in exactly this order.
func (ix *Index) OrderedEvents() []model.Event { return ix.ordered }

// SortedDays returns all day keys ascending.
func (ix *Index) SortedDays() []model.DayKey {
	out := make([]model.DayKey, 0, len(ix.Days))
	for k := range ix.Days {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// dedupeByUID keeps one event per UID. The last occurrence wins but events
// keep the position of their first occurrence, so file order is preserved.
func dedupeByUID(events []model.Event) []model.Event {
	pos := make(map[string]int, len(events))
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if i, ok := pos[ev.UID]; ok {
			out[i] = ev
			continue
		}
		pos[ev.UID] = len(out)
		out = append(out, ev)
	}
	return out
}

func (ix *Index) sortChildren() {
	for k, evs := range ix.Days {
		sort.SliceStable(evs, func(i, j int) bool {
			if !evs[i].Start.Equal(evs[j].Start) {
				return evs[i].Start.Before(evs[j].Start)
			}
			return evs[i].UID < evs[j].UID
		})
		ix.Days[k] = evs
	}
	for k, days := range ix.Weeks {
		sortDays(days)
		ix.Weeks[k] = days
	}
	for k, days := range ix.Months {
		sortDays(days)
		ix.Months[k] = days
	}
	for k, yc := range ix.Years {
		sort.Slice(yc.Months, func(i, j int) bool { return yc.Months[i].Month < yc.Months[j].Month })
		sort.Slice(yc.Weeks, func(i, j int) bool { return yc.Weeks[i].Week < yc.Weeks[j].Week })
		ix.Years[k] = yc
	}
}

// computeCounts aggregates event counts bottom-up: day counts are list
// lengths, week/month counts sum their days, year counts take the distinct
// UID set over both child paths.
func (ix *Index) computeCounts() {
	for k, days := range ix.Weeks {
		n := 0
		for _, d := range days {
			n += len(ix.Days[d])
		}
		ix.weekCounts[k] = n
	}
	for k, days := range ix.Months {
		n := 0
		for _, d := range days {
			n += len(ix.Days[d])
		}
		ix.monthCounts[k] = n
	}
	for k, yc := range ix.Years {
		seen := make(map[string]struct{})
		for _, m := range yc.Months {
			for _, d := range ix.Months[m] {
				for _, ev := range ix.Days[d] {
					seen[ev.UID] = struct{}{}
				}
			}
		}
		for _, w := range yc.Weeks {
			for _, d := range ix.Weeks[w] {
				for _, ev := range ix.Days[d] {
					seen[ev.UID] = struct{}{}
				}
			}
		}
		ix.yearCounts[k] = len(seen)
	}
}

func sortDays(days []model.DayKey) {
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
}

func containsDay(days []model.DayKey, k model.DayKey) bool {
	for _, d := range days {
		if d == k {
			return true
		}
	}
	return false
}

func containsMonth(months []model.MonthKey, k model.MonthKey) bool {
	for _, m := range months {
		if m == k {
			return true
		}
	}
	return false
}

func containsWeek(weeks []model.WeekKey, k model.WeekKey) bool {
	for _, w := range weeks {
		if w == k {
			return true
		}
	}
	return false
}
