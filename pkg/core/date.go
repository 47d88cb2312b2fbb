package core

import (
	"fmt"
	"time"
)

// DateLayout is the canonical date key format (zero-padded).
const DateLayout = "2006-01-02"

// ParseDate validates a date key and returns the calendar day it names.
// Only the canonical zero-padded YYYY-MM-DD form is accepted.
func ParseDate(key string) (time.Time, error) {
	t, err := time.Parse(DateLayout, key)
	if err != nil || t.Format(DateLayout) != key {
		return time.Time{}, fmt.Errorf("%w: invalid date key %q", ErrValidation, key)
	}
	return t, nil
}

// FormatDate builds the canonical key for a calendar day.
// It returns an error for days that do not exist (e.g. February 30th).
func FormatDate(year int, month time.Month, day int) (string, error) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return "", fmt.Errorf("%w: %04d-%02d-%02d is not a calendar day", ErrValidation, year, int(month), day)
	}
	return t.Format(DateLayout), nil
}

// DateOf returns the key of the day t falls on, in t's location.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// monthPrefix returns the "YYYY-MM" prefix for a 0-indexed month.
func monthPrefix(year, month0 int) string {
	return fmt.Sprintf("%04d-%02d", year, month0+1)
}
