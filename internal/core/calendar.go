// Package core holds the domain types and pure date utilities the
// analytics engine is built on. All calendar arithmetic is done in UTC,
// which has no DST ambiguity.
package core

import "time"

// StartOfDay truncates t to UTC midnight.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays shifts t by n whole calendar days in UTC. n may be negative.
func AddDays(t time.Time, n int) time.Time {
	return t.UTC().AddDate(0, 0, n)
}

// DaysInMonth returns the number of days in t's UTC month (28-31).
func DaysInMonth(t time.Time) int {
	y, m, _ := t.UTC().Date()
	// Day zero of the next month is the last day of this one.
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DayKey formats t's UTC day as YYYY-MM-DD, the canonical day identifier
// used across storage, messages, and API payloads.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
