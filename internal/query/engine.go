// Package query answers day/week/month/year/all queries over the imported
// hierarchy, reading exclusively through the store interface. Queries are
// read-only and safely repeatable.
package query

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"calimport/internal/hierarchy"
	"calimport/internal/importer"
	"calimport/internal/model"
	"calimport/internal/store"
)

// EventView is the read-side projection of one event, assembled from the
// graph node attributes written at import time.
type EventView struct {
	UID             string
	Date            string
	StartTime       string
	EndTime         string
	DurationMinutes int
	Summary         string
	Status          string
	ObjectURL       string
}

// DayEvents groups the events of one date, sorted by (start time, uid).
type DayEvents struct {
	Date    string
	Weekday string
	Events  []EventView
}

// MonthEvents groups a month's days.
type MonthEvents struct {
	Name string // e.g. "2026-02 (Februar)"
	Days []DayEvents
}

// YearEvents groups a year's months.
type YearEvents struct {
	Year   int
	Months []MonthEvents
}

// Engine resolves bucket keys to events via the store.
type Engine struct {
	st store.Store
}

// NewEngine creates a query engine over the given store.
func NewEngine(st store.Store) *Engine {
	return &Engine{st: st}
}

// Day returns the events of one date. A date with no imported events
// returns an empty (not nil-dated) DayEvents.
func (e *Engine) Day(ctx context.Context, k model.DayKey) (DayEvents, error) {
	out := DayEvents{Date: k.String(), Weekday: hierarchy.WeekdayName(k.Time(nil))}

	nodes, err := e.st.FindNodes(ctx, importer.ClassDay, []store.Filter{store.Eq("date", k.String())})
	if err != nil {
		return out, err
	}
	if len(nodes) == 0 {
		return out, nil
	}
	events, err := e.dayEvents(ctx, nodes[0].ID)
	if err != nil {
		return out, err
	}
	out.Events = events
	return out, nil
}

// Week returns the events of one ISO week grouped by day, days ascending.
// The day set spans the week's Monday..Sunday range, including days in a
// neighboring month when the week crosses a month boundary.
func (e *Engine) Week(ctx context.Context, k model.WeekKey) ([]DayEvents, error) {
	nodes, err := e.st.FindNodes(ctx, importer.ClassWeek, []store.Filter{
		store.Eq("year", strconv.Itoa(k.Year)),
		store.Eq("week", strconv.Itoa(k.Week)),
	})
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	return e.containedDays(ctx, nodes[0].ID)
}

// Month returns the events of one month grouped by day, days ascending.
func (e *Engine) Month(ctx context.Context, k model.MonthKey) ([]DayEvents, error) {
	nodes, err := e.st.FindNodes(ctx, importer.ClassMonth, []store.Filter{
		store.Eq("year", strconv.Itoa(k.Year)),
		store.Eq("month", strconv.Itoa(k.Month)),
	})
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	return e.containedDays(ctx, nodes[0].ID)
}

// Year returns the events of one year grouped by month and day.
func (e *Engine) Year(ctx context.Context, k model.YearKey) ([]MonthEvents, error) {
	nodes, err := e.st.FindNodes(ctx, importer.ClassYear, []store.Filter{
		store.Eq("year", strconv.Itoa(k.Year)),
	})
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	return e.yearMonths(ctx, nodes[0].ID)
}

// All returns every imported event grouped by year, month and day.
func (e *Engine) All(ctx context.Context) ([]YearEvents, error) {
	nodes, err := e.st.FindNodes(ctx, importer.ClassYear, nil)
	if err != nil {
		return nil, err
	}
	out := make([]YearEvents, 0, len(nodes))
	for _, n := range nodes {
		months, err := e.yearMonths(ctx, n.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, YearEvents{Year: attrInt(n.Attributes, "year"), Months: months})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out, nil
}

func (e *Engine) yearMonths(ctx context.Context, yearNodeID string) ([]MonthEvents, error) {
	related, err := e.st.Related(ctx, yearNodeID)
	if err != nil {
		return nil, err
	}
	var out []MonthEvents
	for _, r := range related {
		if r.Relationship != importer.EdgeContainsMonth {
			continue
		}
		days, err := e.containedDays(ctx, r.Node.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, MonthEvents{Name: r.Node.Name, Days: days})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// containedDays collects the contains_day children of a week or month node
// and their events, sorted by date.
func (e *Engine) containedDays(ctx context.Context, nodeID string) ([]DayEvents, error) {
	related, err := e.st.Related(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	var out []DayEvents
	for _, r := range related {
		if r.Relationship != importer.EdgeContainsDay {
			continue
		}
		date := attrString(r.Node.Attributes, "date")
		events, err := e.dayEvents(ctx, r.Node.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, DayEvents{
			Date:    date,
			Weekday: attrString(r.Node.Attributes, "weekday"),
			Events:  events,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (e *Engine) dayEvents(ctx context.Context, dayNodeID string) ([]EventView, error) {
	related, err := e.st.Related(ctx, dayNodeID)
	if err != nil {
		return nil, err
	}
	var events []EventView
	for _, r := range related {
		if r.Relationship != importer.EdgeHasEvent {
			continue
		}
		a := r.Node.Attributes
		events = append(events, EventView{
			UID:             attrString(a, "uid"),
			Date:            attrString(a, "date"),
			StartTime:       attrString(a, "start_time"),
			EndTime:         attrString(a, "end_time"),
			DurationMinutes: attrInt(a, "duration_minutes"),
			Summary:         attrString(a, "summary"),
			Status:          attrString(a, "status"),
			ObjectURL:       attrString(a, "object_url"),
		})
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].StartTime != events[j].StartTime {
			return events[i].StartTime < events[j].StartTime
		}
		return events[i].UID < events[j].UID
	})
	return events, nil
}

func attrString(attrs map[string]any, key string) string {
	v, ok := attrs[key]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func attrInt(attrs map[string]any, key string) int {
	switch v := attrs[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}

// weekdayOf recomputes the German weekday for a YYYY-MM-DD string; used when
// a day group was assembled without its node attributes.
func weekdayOf(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	return hierarchy.WeekdayName(t)
}
