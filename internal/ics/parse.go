package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "calimport/internal/log"
	"calimport/internal/model"
)

// ParseError describes a single malformed VEVENT block. A block that fails
// to parse is skipped; the rest of the document is still processed.
type ParseError struct {
	// Index is the zero-based position of the VEVENT in the document.
	Index int
	// UID is the block's UID when present, "" otherwise.
	UID    string
	Reason string
}

func (e *ParseError) Error() string {
	if e.UID != "" {
		return fmt.Sprintf("ics: event %d (uid %s): %s", e.Index, e.UID, e.Reason)
	}
	return fmt.Sprintf("ics: event %d: %s", e.Index, e.Reason)
}

// Parse decodes an iCal document into flat Event records in file order.
//
//   - Start/End are converted into loc, which becomes the canonical zone for
//     all downstream bucket derivation.
//   - description defaults to "" and status to "CONFIRMED" when absent.
//   - A block missing UID or DTSTART yields a ParseError and is skipped;
//     parsing continues with the remaining blocks.
//
// The returned error is non-nil only when the document itself is unreadable.
func Parse(body []byte, loc *time.Location) ([]model.Event, []*ParseError, error) {
	if len(body) == 0 {
		return nil, nil, errors.New("empty iCal body")
	}
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("parse calendar: %w", err)
	}

	events := make([]model.Event, 0)
	failures := make([]*ParseError, 0)

	for i, comp := range cal.Events() {
		ev, perr := parseVEvent(i, comp, loc)
		if perr != nil {
			// Log and skip this event, but keep parsing others.
			appLog.Error("ics vevent parse failed", perr, "index", i, "uid", perr.UID)
			failures = append(failures, perr)
			continue
		}
		events = append(events, ev)
	}

	appLog.Info("ics parse completed", "event_count", len(events), "skipped", len(failures))
	return events, failures, nil
}

func parseVEvent(idx int, ve *ical.VEvent, loc *time.Location) (model.Event, *ParseError) {
	var out model.Event

	// UID
	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, &ParseError{Index: idx, Reason: "missing UID"}
	}
	out.UID = uidProp.Value

	// Summary / Description / Status
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	// Use raw property name to avoid constant mismatch across library versions.
	out.Status = "CONFIRMED"
	if p := ve.GetProperty("STATUS"); p != nil && p.Value != "" {
		out.Status = p.Value
	}

	// DTSTART / DTEND via the library's timezone-aware helpers.
	start, err := ve.GetStartAt()
	if err != nil || start.IsZero() {
		return out, &ParseError{Index: idx, UID: out.UID, Reason: "missing or invalid DTSTART"}
	}
	out.Start = start.In(loc)

	end, err := ve.GetEndAt()
	if err != nil || end.IsZero() {
		// No DTEND: treat as a zero-length event.
		end = start
	}
	out.End = end.In(loc)

	// CREATED / LAST-MODIFIED are optional metadata.
	if p := ve.GetProperty("CREATED"); p != nil {
		if t, terr := parseICSTime(p.Value); terr == nil {
			t = t.In(loc)
			out.Created = &t
		}
	}
	if p := ve.GetProperty("LAST-MODIFIED"); p != nil {
		if t, terr := parseICSTime(p.Value); terr == nil {
			t = t.In(loc)
			out.LastModified = &t
		}
	}

	return out, nil
}

// parseICSTime parses a basic ICS date/date-time string into time.Time.
func parseICSTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}

	// UTC form, e.g., 20250101T090000Z
	if strings.HasSuffix(v, "Z") {
		const layout = "20060102T150405Z"
		return time.Parse(layout, v)
	}

	// Local date-time, e.g., 20250101T090000
	if strings.Contains(v, "T") {
		const layout = "20060102T150405"
		return time.ParseInLocation(layout, v, time.Local)
	}

	// Date-only, e.g., 20250101
	const layoutDate = "20060102"
	return time.ParseInLocation(layoutDate, v, time.Local)
}
