package core

import (
	"errors"
	"strings"
	"time"
)

// RangeKey is the closed set of symbolic dashboard ranges.
type RangeKey string

const (
	Range7D  RangeKey = "7D"
	Range30D RangeKey = "30D"
	RangeMTD RangeKey = "MTD"
)

var ErrUnknownRange = errors.New("unknown date range")

// ParseRangeKey maps a case-insensitive range name to the closed enum.
func ParseRangeKey(s string) (RangeKey, error) {
	switch k := RangeKey(strings.ToUpper(strings.TrimSpace(s))); k {
	case Range7D, Range30D, RangeMTD:
		return k, nil
	default:
		return "", ErrUnknownRange
	}
}

// DateWindow is an inclusive day interval plus the equal-length interval
// immediately preceding it, used for period-over-period comparison.
type DateWindow struct {
	Start     time.Time
	End       time.Time
	PrevStart time.Time
	PrevEnd   time.Time
}

// Days returns the inclusive day count of the current window.
func (w DateWindow) Days() int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

// ResolveWindow maps a range key and a reference instant to a concrete
// window. The previous window always has the same day count as the current
// one and ends the day before it starts, so comparisons are like-for-like.
// Any reference time is valid.
func ResolveWindow(key RangeKey, now time.Time) DateWindow {
	end := StartOfDay(now)

	var start time.Time
	switch key {
	case RangeMTD:
		y, m, _ := now.UTC().Date()
		start = time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	case Range7D:
		start = AddDays(end, -6)
	default: // Range30D
		start = AddDays(end, -29)
	}

	numDays := int(end.Sub(start).Hours()/24) + 1
	prevEnd := AddDays(start, -1)
	prevStart := AddDays(prevEnd, -(numDays - 1))

	return DateWindow{Start: start, End: end, PrevStart: prevStart, PrevEnd: prevEnd}
}
