// Package recurrence decides whether a periodic schedule is due on a given
// calendar date. All functions are pure: same inputs, same answer, no I/O.
package recurrence

import (
	"time"

	"github.com/rpfaria/fundpulse-backend/internal/domain"
)

// IsDue reports whether candidate is a due date for the schedule.
//
// The schedule's start date is its ValidFrom, adjusted for MONTHS and YEARS
// schedules to the OnDay/OnMonth anchor; if the literal anchor falls before
// ValidFrom the start is pushed forward by one period. A candidate before the
// start date, a non-positive interval, a missing ValidFrom, or an anchor day
// that does not exist in ValidFrom's month all yield false rather than an
// error: a schedule that cannot be evaluated is simply never due.
func IsDue(s domain.RecurrenceSchedule, candidate time.Time) bool {
	if s.Interval <= 0 || s.ValidFrom.IsZero() || candidate.IsZero() {
		return false
	}

	start, ok := anchorStart(s)
	if !ok {
		return false
	}

	check := dateOnly(candidate)
	if check.Before(start) {
		return false
	}

	switch s.Frequency {
	case domain.FrequencyDays:
		return daysBetween(start, check)%s.Interval == 0
	case domain.FrequencyWeeks:
		return daysBetween(start, check)%(7*s.Interval) == 0
	case domain.FrequencyMonths:
		return monthlyMatch(start, check, s.Interval)
	case domain.FrequencyYears:
		return yearlyMatch(start, check, s.Interval)
	default:
		return false
	}
}

// anchorStart computes the schedule's effective start date. For DAYS and
// WEEKS this is ValidFrom itself; MONTHS and YEARS substitute the anchor
// day (and month), pushing forward one period when the literal anchor
// precedes ValidFrom.
func anchorStart(s domain.RecurrenceSchedule) (time.Time, bool) {
	validFrom := dateOnly(s.ValidFrom)

	switch s.Frequency {
	case domain.FrequencyMonths:
		start, ok := withDayOfMonth(validFrom, s.OnDay)
		if !ok {
			return time.Time{}, false
		}
		if start.Before(validFrom) {
			start = addMonthsClamped(start, 1)
		}
		return start, true
	case domain.FrequencyYears:
		start, ok := withDayOfMonth(validFrom, s.OnDay)
		if !ok {
			return time.Time{}, false
		}
		start, ok = withMonthClamped(start, s.OnMonth)
		if !ok {
			return time.Time{}, false
		}
		if start.Before(validFrom) {
			start = addYearsClamped(start, 1)
		}
		return start, true
	default:
		return validFrom, true
	}
}

func monthlyMatch(start, check time.Time, interval int) bool {
	if check.Day() != start.Day() {
		return false
	}
	months := (check.Year()-start.Year())*12 + int(check.Month()) - int(start.Month())
	return months >= 0 && months%interval == 0
}

func yearlyMatch(start, check time.Time, interval int) bool {
	if check.Day() != start.Day() || check.Month() != start.Month() {
		return false
	}
	years := check.Year() - start.Year()
	return years >= 0 && years%interval == 0
}

// dateOnly truncates a timestamp to a UTC calendar date so that day
// arithmetic is exact regardless of the input location or time of day.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(start, end time.Time) int {
	return int(end.Sub(start).Hours() / 24)
}

func daysIn(year int, month time.Month) int {
	// day zero of the following month
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// withDayOfMonth substitutes the day of month without normalization: a day
// that does not exist in t's month reports false instead of rolling over
// into the next month.
func withDayOfMonth(t time.Time, day int) (time.Time, bool) {
	if day < 1 || day > daysIn(t.Year(), t.Month()) {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), day, 0, 0, 0, 0, time.UTC), true
}

// withMonthClamped substitutes the month of year, clamping the day to the
// last day of the target month when needed (Jan 31 -> Apr 30).
func withMonthClamped(t time.Time, month time.Month) (time.Time, bool) {
	if month < time.January || month > time.December {
		return time.Time{}, false
	}
	day := t.Day()
	if last := daysIn(t.Year(), month); day > last {
		day = last
	}
	return time.Date(t.Year(), month, day, 0, 0, 0, 0, time.UTC), true
}

// addMonthsClamped advances by whole months, clamping the day to the target
// month's length (Jan 31 + 1 month -> Feb 28/29, never Mar 2/3).
func addMonthsClamped(t time.Time, n int) time.Time {
	months := int(t.Month()) - 1 + n
	year := t.Year() + months/12
	month := time.Month(months%12 + 1)
	day := t.Day()
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// addYearsClamped advances by whole years, clamping Feb 29 to Feb 28 in
// non-leap target years.
func addYearsClamped(t time.Time, n int) time.Time {
	year := t.Year() + n
	day := t.Day()
	if last := daysIn(year, t.Month()); day > last {
		day = last
	}
	return time.Date(year, t.Month(), day, 0, 0, 0, 0, time.UTC)
}
