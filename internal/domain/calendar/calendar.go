// Package calendar holds the club's business-day rules. The club runs on a
// fixed UTC+6 offset with no daylight saving.
package calendar

import "time"

// Zone is the business time zone.
var Zone = time.FixedZone("UTC+6", 6*60*60)

const stampLayout = "2006-01-02 15:04:05"

// Clock returns the current instant.
type Clock func() time.Time

// Day returns the business date containing t, as midnight UTC of that date.
func Day(t time.Time) time.Time {
	y, m, d := t.In(Zone).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Stamp renders t in the business zone for receipts.
func Stamp(t time.Time) string {
	return t.In(Zone).Format(stampLayout)
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the
// calendar date it names.
func ParseDate(s string) (time.Time, bool) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}
