// Package dateparse resolves the relative, Dutch-localized date strings the
// search API reports ("Vandaag 14:30", "Gisteren 09:15", "20 jan") into
// absolute timestamps. The upstream never sends a machine timestamp, so
// freshness filtering depends on this heuristic.
package dateparse

import (
	"strconv"
	"strings"
	"time"
)

var dutchMonths = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mrt": time.March,
	"maa": time.March, "apr": time.April, "mei": time.May,
	"jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "okt": time.October, "nov": time.November,
	"dec": time.December,
}

// Parse converts a listing date string to an absolute timestamp relative to
// now. Total function: any unparseable input yields now in UTC, never an
// error.
func Parse(raw string, now time.Time) time.Time {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return now.UTC()
	}

	if rest, ok := strings.CutPrefix(s, "vandaag"); ok {
		return atTime(now, rest, now)
	}
	if rest, ok := strings.CutPrefix(s, "gisteren"); ok {
		yesterday := now.AddDate(0, 0, -1)
		return atTime(yesterday, rest, yesterday)
	}

	if t, ok := parseDayMonth(s, now); ok {
		return t
	}

	return now.UTC()
}

// atTime combines day's date with an "HH:MM" fragment. When the time part
// does not parse, fallback is returned unchanged.
func atTime(day time.Time, timePart string, fallback time.Time) time.Time {
	t, err := time.Parse("15:04", strings.TrimSpace(timePart))
	if err != nil {
		return fallback
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location())
}

// parseDayMonth handles the "DD mon" shorthand. The upstream omits the
// year; a day/month strictly in the future relative to now belongs to the
// previous year.
func parseDayMonth(s string, now time.Time) (time.Time, bool) {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return time.Time{}, false
	}

	day, err := strconv.Atoi(fields[0])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	month, ok := dutchMonths[fields[1]]
	if !ok {
		return time.Time{}, false
	}

	year := now.Year()
	if month > now.Month() || (month == now.Month() && day > now.Day()) {
		year--
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	if t.Month() != month {
		// day overflowed the month, e.g. "31 feb"
		return time.Time{}, false
	}
	return t, true
}
