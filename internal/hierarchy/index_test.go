package hierarchy

import (
	"reflect"
	"testing"
	"time"

	"calimport/internal/model"
)

func mkEvent(uid, start string) model.Event {
	ts, err := time.Parse(time.RFC3339, start)
	if err != nil {
		panic(err)
	}
	return model.Event{
		UID:     uid,
		Summary: "event " + uid,
		Status:  "CONFIRMED",
		Start:   ts,
		End:     ts.Add(time.Hour),
	}
}

func TestBuildCountsBottomUp(t *testing.T) {
	events := []model.Event{
		mkEvent("a", "2026-02-23T08:00:00Z"),
		mkEvent("b", "2026-02-23T10:00:00Z"),
		mkEvent("c", "2026-02-24T09:00:00Z"),
		mkEvent("d", "2026-03-01T09:00:00Z"), // same ISO week as a/b/c, next month
	}
	ix := Build(events)

	if got := ix.DayCount(model.DayKey{Year: 2026, Month: 2, Day: 23}); got != 2 {
		t.Fatalf("DayCount(2026-02-23) = %d, want 2", got)
	}
	if got := ix.WeekCount(model.WeekKey{Year: 2026, Week: 9}); got != 4 {
		t.Fatalf("WeekCount(2026-W09) = %d, want 4", got)
	}
	if got := ix.MonthCount(model.MonthKey{Year: 2026, Month: 2}); got != 3 {
		t.Fatalf("MonthCount(2026-02) = %d, want 3", got)
	}
	if got := ix.MonthCount(model.MonthKey{Year: 2026, Month: 3}); got != 1 {
		t.Fatalf("MonthCount(2026-03) = %d, want 1", got)
	}
	// Year reaches all four events through both month and week paths;
	// each event is counted once.
	if got := ix.YearCount(model.YearKey{Year: 2026}); got != 4 {
		t.Fatalf("YearCount(2026) = %d, want 4", got)
	}
	if got := ix.TotalEvents(); got != 4 {
		t.Fatalf("TotalEvents = %d, want 4", got)
	}
}

func TestBuildBoundaryWeekAttachesToISOYear(t *testing.T) {
	ix := Build([]model.Event{mkEvent("x", "2025-12-29T09:00:00Z")})

	// The day and month live in 2025, the ISO week in 2026.
	y2025 := ix.Years[model.YearKey{Year: 2025}]
	if len(y2025.Months) != 1 || len(y2025.Weeks) != 0 {
		t.Fatalf("Years[2025] = %+v, want one month and no weeks", y2025)
	}
	y2026 := ix.Years[model.YearKey{Year: 2026}]
	if len(y2026.Weeks) != 1 || y2026.Weeks[0] != (model.WeekKey{Year: 2026, Week: 1}) {
		t.Fatalf("Years[2026].Weeks = %+v, want [2026-W01]", y2026.Weeks)
	}
	// The event is reachable from both years.
	if got := ix.YearCount(model.YearKey{Year: 2025}); got != 1 {
		t.Fatalf("YearCount(2025) = %d, want 1", got)
	}
	if got := ix.YearCount(model.YearKey{Year: 2026}); got != 1 {
		t.Fatalf("YearCount(2026) = %d, want 1", got)
	}
}

func TestBuildSortsEventsWithinDay(t *testing.T) {
	events := []model.Event{
		mkEvent("late", "2026-02-23T15:00:00Z"),
		mkEvent("z-early", "2026-02-23T08:00:00Z"),
		mkEvent("a-early", "2026-02-23T08:00:00Z"), // same start, uid breaks the tie
	}
	ix := Build(events)

	day := ix.Days[model.DayKey{Year: 2026, Month: 2, Day: 23}]
	var uids []string
	for _, ev := range day {
		uids = append(uids, ev.UID)
	}
	want := []string{"a-early", "z-early", "late"}
	if !reflect.DeepEqual(uids, want) {
		t.Fatalf("day order = %v, want %v", uids, want)
	}
}

func TestBuildDedupesByUID(t *testing.T) {
	first := mkEvent("dup", "2026-02-23T08:00:00Z")
	second := mkEvent("dup", "2026-02-23T09:00:00Z")
	ix := Build([]model.Event{first, mkEvent("other", "2026-02-24T08:00:00Z"), second})

	if got := ix.TotalEvents(); got != 2 {
		t.Fatalf("TotalEvents = %d, want 2 after dedupe", got)
	}
	ordered := ix.OrderedEvents()
	if len(ordered) != 2 || ordered[0].UID != "dup" || ordered[1].UID != "other" {
		t.Fatalf("OrderedEvents = %+v, want dup (last version, first position) then other", ordered)
	}
	// Last occurrence wins.
	if !ordered[0].Start.Equal(second.Start) {
		t.Fatalf("deduped event start = %v, want the later version %v", ordered[0].Start, second.Start)
	}
}

func TestBuildDeterministic(t *testing.T) {
	events := []model.Event{
		mkEvent("a", "2026-02-23T08:00:00Z"),
		mkEvent("b", "2026-03-01T09:00:00Z"),
		mkEvent("c", "2025-12-29T10:00:00Z"),
	}
	first := Build(events)
	second := Build(events)

	if !reflect.DeepEqual(first.SortedDays(), second.SortedDays()) {
		t.Fatal("SortedDays differ between identical builds")
	}
	if !reflect.DeepEqual(first.Weeks, second.Weeks) {
		t.Fatal("Weeks differ between identical builds")
	}
	if !reflect.DeepEqual(first.Years, second.Years) {
		t.Fatal("Years differ between identical builds")
	}
}
