package checkin

import (
	"strconv"
	"strings"
	"time"

	"coachsync/wellness-app/internal/domain"
)

// WindowStatus classifies when a submission lands relative to the check-in
// window. It is attached to results for client-facing messaging only; a
// submission is never rejected because of it.
type WindowStatus string

const (
	WindowDisabled WindowStatus = "disabled"
	WindowBefore   WindowStatus = "beforeWindow"
	WindowWithin   WindowStatus = "withinWindow"
	WindowAfter    WindowStatus = "afterWindow"
)

// Offsets from Monday, the anchor weekday.
var weekdayOffsets = map[string]int{
	"monday":    0,
	"tuesday":   1,
	"wednesday": 2,
	"thursday":  3,
	"friday":    4,
	"saturday":  5,
	"sunday":    6,
}

// Classify resolves the window's start and end against the calendar week
// containing dueDate and places now relative to them. Both ends resolve into
// the same anchor week; when the configured start does not precede the end
// (a Friday-to-Monday window), the start shifts back seven days so that
// start < end always holds.
//
// A disabled or malformed window classifies as disabled, which callers treat
// as always open.
func Classify(w domain.CheckInWindow, dueDate, now time.Time) WindowStatus {
	if !w.Enabled {
		return WindowDisabled
	}

	anchor := weekAnchor(dueDate)

	start, ok := resolve(anchor, w.StartDay, w.StartTime)
	if !ok {
		return WindowDisabled
	}
	end, ok := resolve(anchor, w.EndDay, w.EndTime)
	if !ok {
		return WindowDisabled
	}
	if !start.Before(end) {
		start = start.AddDate(0, 0, -7)
	}

	switch {
	case now.Before(start):
		return WindowBefore
	case now.Before(end):
		return WindowWithin
	default:
		return WindowAfter
	}
}

// weekAnchor returns Monday 00:00 UTC of the week containing t.
func weekAnchor(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -offset)
}

func resolve(anchor time.Time, day, clock string) (time.Time, bool) {
	offset, ok := weekdayOffsets[strings.ToLower(strings.TrimSpace(day))]
	if !ok {
		return time.Time{}, false
	}
	hour, minute, ok := parseClock(clock)
	if !ok {
		return time.Time{}, false
	}
	return anchor.AddDate(0, 0, offset).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute), true
}

func parseClock(s string) (hour, minute int, ok bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}
