package scheduling

import (
	"errors"
	"strings"
	"time"
)

// Field validation failures, comparable with errors.Is.
var (
	ErrRequired       = errors.New("value is required")
	ErrInvalidFormat  = errors.New("value is not a valid timestamp")
	ErrInPast         = errors.New("value must not be in the past")
	ErrEndBeforeStart = errors.New("end must be strictly after start")
)

// ValidateNotPast parses value as RFC 3339 and rejects timestamps before now.
// Both sides are compared at second granularity. Pure; safe to re-run on every
// field change.
func ValidateNotPast(value string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, ErrRequired
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, ErrInvalidFormat
	}
	if t.Truncate(time.Second).Before(now.Truncate(time.Second)) {
		return t, ErrInPast
	}
	return t, nil
}

// NotPast is ValidateNotPast for an already-parsed timestamp.
func NotPast(t, now time.Time) error {
	if t.Truncate(time.Second).Before(now.Truncate(time.Second)) {
		return ErrInPast
	}
	return nil
}

// ValidateTimeOrder requires end to be strictly after start; equal timestamps
// are invalid.
func ValidateTimeOrder(start, end time.Time) error {
	if !end.After(start) {
		return ErrEndBeforeStart
	}
	return nil
}
