package model

import (
	"fmt"
	"time"
)

// offsetLayout always renders a numeric UTC offset (e.g. "+00:00"), matching
// the persisted object format of the original system. time.RFC3339 would
// render UTC as "Z" instead.
const offsetLayout = "2006-01-02T15:04:05-07:00"

// Event is a single calendar appointment as parsed from an iCal VEVENT.
// Events are immutable once parsed and are identified by UID; re-importing
// the same file upserts by UID rather than duplicating.
type Event struct {
	UID         string
	Summary     string
	Description string

	// Status is the iCal STATUS value (CONFIRMED, TENTATIVE, CANCELLED, ...).
	// Defaults to "CONFIRMED" when the source block omits it.
	Status string

	// Start / End carry the event's timezone (converted to the configured
	// display zone by the parser).
	Start time.Time
	End   time.Time

	// Created / LastModified are optional iCal metadata timestamps.
	Created      *time.Time
	LastModified *time.Time
}

// DurationMinutes returns the event length in whole minutes.
func (e Event) DurationMinutes() int {
	return int(e.End.Sub(e.Start).Minutes())
}

// StoredEvent is the JSON document persisted to the object store, one per
// Event. Field names and timestamp formats are part of the wire contract.
type StoredEvent struct {
	UID             string  `json:"uid"`
	Summary         string  `json:"summary"`
	Description     string  `json:"description"`
	Status          string  `json:"status"`
	Start           string  `json:"start"`
	End             string  `json:"end"`
	DurationMinutes int     `json:"duration_minutes"`
	Created         *string `json:"created"`
	LastModified    *string `json:"last_modified"`
}

// NewStoredEvent converts an Event into its persisted shape.
func NewStoredEvent(e Event) StoredEvent {
	return StoredEvent{
		UID:             e.UID,
		Summary:         e.Summary,
		Description:     e.Description,
		Status:          e.Status,
		Start:           e.Start.Format(offsetLayout),
		End:             e.End.Format(offsetLayout),
		DurationMinutes: e.DurationMinutes(),
		Created:         formatOptional(e.Created),
		LastModified:    formatOptional(e.LastModified),
	}
}

func formatOptional(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(offsetLayout)
	return &s
}

// YearKey identifies a Year bucket.
type YearKey struct {
	Year int
}

func (k YearKey) String() string {
	return fmt.Sprintf("%04d", k.Year)
}

// MonthKey identifies a Month bucket within a calendar year.
type MonthKey struct {
	Year  int
	Month int // 1..12
}

func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, k.Month)
}

// WeekKey identifies an ISO-8601 week. Year here is the ISO week-numbering
// year, which may differ from the calendar year of days near a year
// boundary (e.g. 2025-12-29 belongs to week 2026-W01).
type WeekKey struct {
	Year int
	Week int // 1..53
}

func (k WeekKey) String() string {
	return fmt.Sprintf("%04d-W%02d", k.Year, k.Week)
}

// DayKey identifies a calendar date.
type DayKey struct {
	Year  int
	Month int // 1..12
	Day   int // 1..31
}

func (k DayKey) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", k.Year, k.Month, k.Day)
}

// Time returns midnight of the day in the given location (UTC when nil).
func (k DayKey) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(k.Year, time.Month(k.Month), k.Day, 0, 0, 0, 0, loc)
}

// Before reports whether k is an earlier date than other.
func (k DayKey) Before(other DayKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	if k.Month != other.Month {
		return k.Month < other.Month
	}
	return k.Day < other.Day
}
