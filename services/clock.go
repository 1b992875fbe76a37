package services

import (
	"fmt"
	"time"
)

// Clock is injected everywhere the core reads wall-clock time, so cutoff and
// scheduling behavior is testable without real waits.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func SystemClock() Clock { return systemClock{} }

// TimeOfDay is a daily wall-clock instant such as the order cutoff or the
// dispatch time.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var t TimeOfDay
	if _, err := fmt.Sscanf(s, "%d:%d", &t.Hour, &t.Minute); err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
	}
	return t, nil
}

// On returns the instant of t on the same calendar day as ref, in ref's
// location.
func (t TimeOfDay) On(ref time.Time) time.Time {
	return time.Date(ref.Year(), ref.Month(), ref.Day(), t.Hour, t.Minute, 0, 0, ref.Location())
}

// Next returns the first occurrence of t strictly after now.
func (t TimeOfDay) Next(now time.Time) time.Time {
	next := t.On(now)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
