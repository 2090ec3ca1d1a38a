// Package dateutil handles the calendar conventions used across the booking
// domain: dates are plain YYYY-MM-DD strings with no timezone, and clock
// times are zero-padded HH:MM[:SS] strings compared lexicographically.
package dateutil

import (
	"regexp"
	"time"
)

const dateLayout = "2006-01-02"

var clockRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9](:[0-5][0-9])?$`)

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// ValidDate reports whether s is a well-formed YYYY-MM-DD date.
func ValidDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

// ValidClock reports whether s is a zero-padded HH:MM or HH:MM:SS time.
func ValidClock(s string) bool {
	return clockRe.MatchString(s)
}

// NormalizeClock pads HH:MM to HH:MM:SS so stored values stay comparable as
// strings. Input is assumed to have passed ValidClock.
func NormalizeClock(s string) string {
	if len(s) == 5 {
		return s + ":00"
	}
	return s
}

// ValidMonth reports whether s is a well-formed YYYY-MM month key.
func ValidMonth(s string) bool {
	_, err := time.Parse("2006-01", s)
	return err == nil
}

// Weekday returns the weekday index for a date, 0=Sunday through 6=Saturday.
func Weekday(date time.Time) int {
	return int(date.Weekday())
}

// MonthKey returns the YYYY-MM ledger key for a YYYY-MM-DD date.
func MonthKey(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}
