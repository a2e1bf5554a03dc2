// Package importer persists a parsed event set into the object store and
// graph layer. The import is a sequential fold over the event list: one
// outstanding request at a time, per-event failures collected rather than
// aborting the batch, and all writes keyed so that re-running the same
// import converges instead of duplicating.
package importer

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/google/uuid"

	"calimport/internal/hierarchy"
	appLog "calimport/internal/log"
	"calimport/internal/model"
	"calimport/internal/store"
)

// Graph node classes.
const (
	ClassYear  = "Year"
	ClassMonth = "Month"
	ClassWeek  = "Week"
	ClassDay   = "Day"
	ClassEvent = "Event"
)

// Containment edge types.
const (
	EdgeContainsMonth = "contains_month"
	EdgeContainsWeek  = "contains_week"
	EdgeContainsDay   = "contains_day"
	EdgeHasEvent      = "has_event"
)

// Failure records one event that could not be persisted.
type Failure struct {
	UID     string
	Summary string
	Err     error
}

// Result summarizes one import run.
type Result struct {
	RunID    string
	Parsed   int
	Imported int
	Failed   int

	Years  int
	Months int
	Weeks  int
	Days   int

	Failures []Failure
}

// Importer writes events and their bucket hierarchy through a Store.
type Importer struct {
	st store.Store

	// Per-run node id caches so ancestry buckets are resolved once.
	yearNodes  map[model.YearKey]string
	monthNodes map[model.MonthKey]string
	weekNodes  map[model.WeekKey]string
	dayNodes   map[model.DayKey]string
}

// New creates an Importer on top of the given store.
func New(st store.Store) *Importer {
	return &Importer{
		st:         st,
		yearNodes:  make(map[model.YearKey]string),
		monthNodes: make(map[model.MonthKey]string),
		weekNodes:  make(map[model.WeekKey]string),
		dayNodes:   make(map[model.DayKey]string),
	}
}

// Run imports the given events. The full index is built before the first
// write so every bucket node is created with its final event_count; nothing
// is patched incrementally afterwards.
//
// A failed event is reported in the result and the fold continues with the
// next one. The returned error is non-nil only for failures that make the
// whole run pointless (schema registration).
func (imp *Importer) Run(ctx context.Context, events []model.Event) (Result, error) {
	res := Result{RunID: uuid.NewString(), Parsed: len(events)}

	ix := hierarchy.Build(events)
	res.Years = len(ix.Years)
	res.Months = len(ix.Months)
	res.Weeks = len(ix.Weeks)
	res.Days = len(ix.Days)

	appLog.Info("import run starting",
		"run_id", res.RunID,
		"events", len(ix.OrderedEvents()),
		"years", res.Years, "months", res.Months, "weeks", res.Weeks, "days", res.Days,
	)

	if err := imp.registerSchemas(ctx); err != nil {
		return res, err
	}

	for _, ev := range ix.OrderedEvents() {
		if err := imp.importEvent(ctx, ev, ix); err != nil {
			appLog.Error("event import failed", err, "run_id", res.RunID, "uid", ev.UID, "summary", ev.Summary)
			res.Failed++
			res.Failures = append(res.Failures, Failure{UID: ev.UID, Summary: ev.Summary, Err: err})
			continue
		}
		res.Imported++
		appLog.Debug("event imported", "run_id", res.RunID, "uid", ev.UID, "summary", ev.Summary)
	}

	appLog.Info("import run finished",
		"run_id", res.RunID,
		"imported", res.Imported,
		"failed", res.Failed,
	)
	return res, nil
}

// importEvent persists one event: the JSON object first, then the graph
// node, then the bucket ancestry and containment edges. An event node that
// already exists (matched by uid) short-circuits the object write; its
// ancestry is still refreshed so counts stay recomputed.
func (imp *Importer) importEvent(ctx context.Context, ev model.Event, ix *hierarchy.Index) error {
	b := hierarchy.Derive(ev.Start)

	dayNodeID, err := imp.ensureDay(ctx, b, ix)
	if err != nil {
		return err
	}

	existing, err := imp.st.FindNodes(ctx, ClassEvent, []store.Filter{store.Eq("uid", ev.UID)})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		// Already imported in a previous run; the edge set below is
		// deduplicated by the upsert-only-on-create rule, so just make sure
		// the day still points at it.
		return imp.st.CreateEdge(ctx, dayNodeID, existing[0].ID, EdgeHasEvent)
	}

	payload, err := json.MarshalIndent(model.NewStoredEvent(ev), "", "  ")
	if err != nil {
		return err
	}
	ref, err := imp.st.PutObject(ctx, payload, store.ObjectMeta{
		Type:    "calendar_event",
		UID:     ev.UID,
		Summary: ev.Summary,
		Date:    b.Day.String(),
	})
	if err != nil {
		return err
	}

	eventNodeID, err := imp.st.CreateNode(ctx, ClassEvent, ev.Summary, map[string]any{
		"uid":              ev.UID,
		"date":             b.Day.String(),
		"start_time":       ev.Start.Format("15:04"),
		"end_time":         ev.End.Format("15:04"),
		"duration_minutes": ev.DurationMinutes(),
		"summary":          ev.Summary,
		"status":           ev.Status,
		"object_store_id":  ref.ID,
		"object_url":       ref.URL,
	})
	if err != nil {
		return err
	}

	return imp.st.CreateEdge(ctx, dayNodeID, eventNodeID, EdgeHasEvent)
}

func (imp *Importer) ensureYear(ctx context.Context, k model.YearKey, ix *hierarchy.Index) (string, error) {
	if id, ok := imp.yearNodes[k]; ok {
		return id, nil
	}
	id, _, err := store.UpsertNode(ctx, imp.st, ClassYear, k.String(),
		[]store.Filter{store.Eq("year", strconv.Itoa(k.Year))},
		map[string]any{
			"year":        k.Year,
			"event_count": ix.YearCount(k),
		})
	if err != nil {
		return "", err
	}
	imp.yearNodes[k] = id
	return id, nil
}

func (imp *Importer) ensureMonth(ctx context.Context, k model.MonthKey, ix *hierarchy.Index) (string, error) {
	if id, ok := imp.monthNodes[k]; ok {
		return id, nil
	}
	name := k.String() + " (" + hierarchy.MonthName(k.Month) + ")"
	id, created, err := store.UpsertNode(ctx, imp.st, ClassMonth, name,
		[]store.Filter{
			store.Eq("year", strconv.Itoa(k.Year)),
			store.Eq("month", strconv.Itoa(k.Month)),
		},
		map[string]any{
			"year":        k.Year,
			"month":       k.Month,
			"month_name":  hierarchy.MonthName(k.Month),
			"event_count": ix.MonthCount(k),
		})
	if err != nil {
		return "", err
	}
	imp.monthNodes[k] = id

	// The year is upserted on every run so its event_count is rewritten
	// even when this month already existed; only the edge is creation-gated.
	yearID, err := imp.ensureYear(ctx, model.YearKey{Year: k.Year}, ix)
	if err != nil {
		return "", err
	}
	if created {
		if err := imp.st.CreateEdge(ctx, yearID, id, EdgeContainsMonth); err != nil {
			return "", err
		}
	}
	return id, nil
}

func (imp *Importer) ensureWeek(ctx context.Context, k model.WeekKey, ix *hierarchy.Index) (string, error) {
	if id, ok := imp.weekNodes[k]; ok {
		return id, nil
	}
	start, end := hierarchy.WeekBounds(k)
	id, created, err := store.UpsertNode(ctx, imp.st, ClassWeek, k.String(),
		[]store.Filter{
			store.Eq("year", strconv.Itoa(k.Year)),
			store.Eq("week", strconv.Itoa(k.Week)),
		},
		map[string]any{
			"year":        k.Year,
			"week":        k.Week,
			"start_date":  start.String(),
			"end_date":    end.String(),
			"event_count": ix.WeekCount(k),
		})
	if err != nil {
		return "", err
	}
	imp.weekNodes[k] = id

	// The week hangs off its ISO year, which for boundary weeks is not
	// the calendar year of every contained day.
	yearID, err := imp.ensureYear(ctx, model.YearKey{Year: k.Year}, ix)
	if err != nil {
		return "", err
	}
	if created {
		if err := imp.st.CreateEdge(ctx, yearID, id, EdgeContainsWeek); err != nil {
			return "", err
		}
	}
	return id, nil
}

func (imp *Importer) ensureDay(ctx context.Context, b hierarchy.Buckets, ix *hierarchy.Index) (string, error) {
	if id, ok := imp.dayNodes[b.Day]; ok {
		return id, nil
	}
	dayTime := b.Day.Time(nil)
	id, created, err := store.UpsertNode(ctx, imp.st, ClassDay, b.Day.String(),
		[]store.Filter{store.Eq("date", b.Day.String())},
		map[string]any{
			"date":        b.Day.String(),
			"year":        b.Day.Year,
			"month":       b.Day.Month,
			"day":         b.Day.Day,
			"weekday":     hierarchy.WeekdayName(dayTime),
			"event_count": ix.DayCount(b.Day),
		})
	if err != nil {
		return "", err
	}
	imp.dayNodes[b.Day] = id

	// Ancestors are upserted unconditionally so every run rewrites the
	// freshly computed event_count at every level. A re-imported day with a
	// new event would otherwise leave its containing month, week and year
	// holding the previous run's counts. Only the containment edges are
	// gated on node creation.
	monthID, err := imp.ensureMonth(ctx, b.Month, ix)
	if err != nil {
		return "", err
	}
	weekID, err := imp.ensureWeek(ctx, b.Week, ix)
	if err != nil {
		return "", err
	}
	if created {
		if err := imp.st.CreateEdge(ctx, monthID, id, EdgeContainsDay); err != nil {
			return "", err
		}
		if err := imp.st.CreateEdge(ctx, weekID, id, EdgeContainsDay); err != nil {
			return "", err
		}
	}
	return id, nil
}

func (imp *Importer) registerSchemas(ctx context.Context) error {
	schemas := []store.Schema{
		{
			ClassName:   ClassYear,
			Attributes:  map[string]string{"year": "int", "event_count": "int"},
			Description: "Calendar year",
		},
		{
			ClassName: ClassMonth,
			Attributes: map[string]string{
				"year": "int", "month": "int", "month_name": "string", "event_count": "int",
			},
			Description: "Calendar month",
		},
		{
			ClassName: ClassWeek,
			Attributes: map[string]string{
				"year": "int", "week": "int", "start_date": "string", "end_date": "string", "event_count": "int",
			},
			Description: "ISO calendar week",
		},
		{
			ClassName: ClassDay,
			Attributes: map[string]string{
				"date": "string", "year": "int", "month": "int", "day": "int", "weekday": "string", "event_count": "int",
			},
			Description: "Calendar day",
		},
		{
			ClassName: ClassEvent,
			Attributes: map[string]string{
				"uid": "string", "date": "string", "start_time": "string", "end_time": "string",
				"duration_minutes": "int", "summary": "string", "status": "string",
				"object_store_id": "string", "object_url": "string",
			},
			Description: "Calendar event",
		},
	}
	for _, s := range schemas {
		if err := imp.st.RegisterSchema(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
