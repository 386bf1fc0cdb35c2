// Package utils provides utility functions for the application.
package utils

import (
	"time"
)

// ISODateLayout is the layout used for date-only values exchanged with the UI
const ISODateLayout = "2006-01-02"

// UTCNow returns the current time in UTC
func UTCNow() time.Time {
	return time.Now().UTC()
}

// UTCNowPtr returns a pointer to the current time in UTC
func UTCNowPtr() *time.Time {
	now := UTCNow()
	return &now
}

// SameDay reports whether a and b fall on the same calendar day in loc
func SameDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// DaysAgo subtracts calendar days from t, keeping the wall clock in t's location
func DaysAgo(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, -days)
}

// ParseISODate parses a date-only or RFC3339 value and returns it normalized to YYYY-MM-DD
func ParseISODate(value string) (string, error) {
	if t, err := time.Parse(ISODateLayout, value); err == nil {
		return t.Format(ISODateLayout), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return "", err
	}
	return t.Format(ISODateLayout), nil
}
