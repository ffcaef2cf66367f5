/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package timeofday models a point within a single day, with no date and no
// timezone. Values are whole seconds since midnight.
package timeofday

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
)

// ErrInvalid is returned when a time of day cannot be parsed.
var ErrInvalid = errors.New("invalid time of day")

// Time is a timezone-agnostic time of day with second precision.
//
// Add does not wrap at midnight, so a Time may exceed 24:00. Ordering stays
// monotonic which keeps fit checks near the end of the day correct.
type Time struct {
	sec int64
}

// Midnight is the start of the day.
var Midnight = Time{}

// EndOfDay is 24:00, the exclusive end of the day.
var EndOfDay = Time{sec: secondsPerDay}

// New builds a Time from hours, minutes and seconds. Out-of-range components
// are normalised arithmetically (New(0, 90, 0) is 01:30).
func New(hour, min, sec int) Time {
	return Time{sec: int64(hour)*secondsPerHour + int64(min)*secondsPerMinute + int64(sec)}
}

// Parse reads "HH:MM" or "HH:MM:SS". The latest accepted value is 24:00.
func Parse(s string) (Time, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Time{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}

	var fields [3]int
	for i, part := range parts {
		if len(part) == 0 || len(part) > 2 || !allDigits(part) {
			return Time{}, fmt.Errorf("%w: %q", ErrInvalid, s)
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return Time{}, fmt.Errorf("%w: %q", ErrInvalid, s)
		}
		fields[i] = n
	}

	h, m, sec := fields[0], fields[1], fields[2]
	if h > 24 || m > 59 || sec > 59 {
		return Time{}, fmt.Errorf("%w: %q out of range", ErrInvalid, s)
	}
	t := New(h, m, sec)
	if t.After(EndOfDay) {
		return Time{}, fmt.Errorf("%w: %q is past 24:00", ErrInvalid, s)
	}
	return t, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level fixtures.
func MustParse(s string) Time {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Seconds returns the number of seconds since midnight.
func (t Time) Seconds() int64 {
	return t.sec
}

// Clock returns the hour, minute and second components.
func (t Time) Clock() (hour, min, sec int) {
	s := t.sec
	hour = int(s / secondsPerHour)
	s %= secondsPerHour
	min = int(s / secondsPerMinute)
	sec = int(s % secondsPerMinute)
	return hour, min, sec
}

// Add returns t shifted by d. Fractions of a second in d are dropped.
func (t Time) Add(d time.Duration) Time {
	return Time{sec: t.sec + int64(d/time.Second)}
}

// Sub returns the duration t-u.
func (t Time) Sub(u Time) time.Duration {
	return time.Duration(t.sec-u.sec) * time.Second
}

// Compare returns -1, 0 or +1 depending on whether t is before, equal to or
// after u.
func (t Time) Compare(u Time) int {
	switch {
	case t.sec < u.sec:
		return -1
	case t.sec > u.sec:
		return 1
	default:
		return 0
	}
}

// Before reports whether t is before u.
func (t Time) Before(u Time) bool { return t.sec < u.sec }

// After reports whether t is after u.
func (t Time) After(u Time) bool { return t.sec > u.sec }

// Equal reports whether t and u are the same time of day.
func (t Time) Equal(u Time) bool { return t.sec == u.sec }

// String renders HH:MM, or HH:MM:SS when seconds are present.
func (t Time) String() string {
	sign := ""
	v := t
	if v.sec < 0 {
		sign = "-"
		v.sec = -v.sec
	}
	h, m, s := v.Clock()
	if s != 0 {
		return fmt.Sprintf("%s%02d:%02d:%02d", sign, h, m, s)
	}
	return fmt.Sprintf("%s%02d:%02d", sign, h, m)
}

// MarshalText implements encoding.TextMarshaler.
func (t Time) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Time) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
