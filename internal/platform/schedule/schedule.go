// Package schedule decides whether an automatic post should run at a given
// moment: inside the posting window, under the daily target, automation on.
package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	// Embed tzdata for environments without zoneinfo.
	_ "time/tzdata"
)

const (
	minutesPerHour = 60
	maxHour        = 23
	maxMinute      = 59

	// DefaultTimezone is where the service area lives.
	DefaultTimezone = "Asia/Seoul"
)

// Static errors for window validation.
var (
	ErrTimeFormat       = errors.New("time must be HH:MM")
	ErrInvalidHour      = errors.New("invalid hour")
	ErrInvalidMinute    = errors.New("invalid minute")
	ErrMidnightCrossing = errors.New("posting window crosses midnight")
)

// Window is a same-day posting window in minutes since midnight. The start
// is inclusive, the end exclusive.
type Window struct {
	start int
	end   int
}

// ParseWindow builds a Window from "HH:MM" bounds.
func ParseWindow(start, end string) (Window, error) {
	s, err := parseMinutes(start)
	if err != nil {
		return Window{}, fmt.Errorf("start time: %w", err)
	}

	e, err := parseMinutes(end)
	if err != nil {
		return Window{}, fmt.Errorf("end time: %w", err)
	}

	if e < s {
		return Window{}, ErrMidnightCrossing
	}

	return Window{start: s, end: e}, nil
}

// Contains reports whether t falls inside the window, using t's location.
func (w Window) Contains(t time.Time) bool {
	minutes := t.Hour()*minutesPerHour + t.Minute()

	return minutes >= w.start && minutes < w.end
}

func parseMinutes(value string) (int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrTimeFormat, value)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > maxHour {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHour, value)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > maxMinute {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMinute, value)
	}

	return hour*minutesPerHour + minute, nil
}

// Location resolves the service-area timezone, falling back to UTC when
// the zone database is unavailable.
func Location() *time.Location {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}

	return loc
}

// Decision explains a gate outcome.
type Decision struct {
	Run    bool
	Reason string
}

// Gate reasons.
const (
	ReasonInactive     = "automation inactive"
	ReasonTargetMet    = "daily target reached"
	ReasonOutsideHours = "outside posting window"
	ReasonBadWindow    = "invalid posting window"
	ReasonDue          = "due"
)

// ShouldRun applies the automation gate for one tick. successesToday is the
// number of successful runs since local midnight.
func ShouldRun(active bool, dailyTarget int, startTime, endTime string, successesToday int, now time.Time) Decision {
	if !active {
		return Decision{Reason: ReasonInactive}
	}

	if dailyTarget > 0 && successesToday >= dailyTarget {
		return Decision{Reason: ReasonTargetMet}
	}

	window, err := ParseWindow(startTime, endTime)
	if err != nil {
		return Decision{Reason: ReasonBadWindow}
	}

	if !window.Contains(now) {
		return Decision{Reason: ReasonOutsideHours}
	}

	return Decision{Run: true, Reason: ReasonDue}
}
