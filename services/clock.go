package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// TimeService is the single time source for every time-dependent decision
// in the core. It wraps a clockwork.Clock plus a mutable offset so that
// non-production deployments can shift "now" without touching the real
// clock; tests pass a clockwork fake instead.
type TimeService struct {
	clock        clockwork.Clock
	controllable bool

	mu     sync.RWMutex
	offset time.Duration
}

// NewTimeService wraps clock. controllable enables the offset controls
// (dev/staging only).
func NewTimeService(clock clockwork.Clock, controllable bool) *TimeService {
	return &TimeService{clock: clock, controllable: controllable}
}

// Now returns the current instant, offset included.
func (t *TimeService) Now() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.clock.Now().Add(t.offset)
}

// SetTime shifts the virtual clock so Now() reports target.
func (t *TimeService) SetTime(target time.Time) error {
	if !t.controllable {
		return ErrTimeControlDisabled
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.offset = target.Sub(t.clock.Now())
	return nil
}

// FastForward advances the virtual clock by d relative to its current
// (already offset) position.
func (t *TimeService) FastForward(d time.Duration) error {
	if !t.controllable {
		return ErrTimeControlDisabled
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.offset += d
	return nil
}

// Reset drops the offset, returning to the wrapped clock's time.
func (t *TimeService) Reset() error {
	if !t.controllable {
		return ErrTimeControlDisabled
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.offset = 0
	return nil
}

// Status reports the virtual-clock state for the dev endpoint.
func (t *TimeService) Status() map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return map[string]any{
		"controllable": t.controllable,
		"current_time": t.clock.Now().Add(t.offset),
		"real_time":    t.clock.Now(),
		"offset_ms":    t.offset.Milliseconds(),
	}
}

// --- calendar helpers (local time, Monday-start week, Sunday = 7) ---

// DateString formats an instant as a local YYYY-MM-DD date.
func DateString(at time.Time) string {
	return at.Format("2006-01-02")
}

// DayOfWeek returns the weekday index 1 (Monday) .. 7 (Sunday).
func DayOfWeek(at time.Time) int {
	wd := int(at.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// WeekMonday returns the Monday of the week containing at, local midnight.
func WeekMonday(at time.Time) time.Time {
	day := StartOfDay(at)
	return day.AddDate(0, 0, 1-DayOfWeek(at))
}

// WeekSunday returns the Sunday of the week containing at, local midnight.
func WeekSunday(at time.Time) time.Time {
	return WeekMonday(at).AddDate(0, 0, 6)
}

// StartOfDay truncates to local midnight.
func StartOfDay(at time.Time) time.Time {
	y, m, d := at.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, at.Location())
}

// NextMidnight returns the first local midnight strictly after at.
func NextMidnight(at time.Time) time.Time {
	return StartOfDay(at).AddDate(0, 0, 1)
}

// DayBounds returns the inclusive start and end of at's local calendar day
// for range queries on clock-driven timestamps.
func DayBounds(at time.Time) (time.Time, time.Time) {
	start := StartOfDay(at)
	return start, start.Add(24*time.Hour - time.Nanosecond)
}

// FormatMonthDay renders a recurring month/day pair in year for sorting
// and display, e.g. "2026-03-31".
func FormatMonthDay(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}
