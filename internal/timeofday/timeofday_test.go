/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package timeofday

import (
	"errors"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "hours and minutes", input: "09:30", want: 9*3600 + 30*60},
		{name: "with seconds", input: "09:30:15", want: 9*3600 + 30*60 + 15},
		{name: "single digit hour", input: "7:05", want: 7*3600 + 5*60},
		{name: "midnight", input: "00:00", want: 0},
		{name: "end of day", input: "24:00", want: 24 * 3600},
		{name: "surrounding space", input: " 12:00 ", want: 12 * 3600},
		{name: "past end of day", input: "24:01", wantErr: true},
		{name: "minutes out of range", input: "10:60", wantErr: true},
		{name: "seconds out of range", input: "10:00:60", wantErr: true},
		{name: "hour out of range", input: "25:00", wantErr: true},
		{name: "missing minutes", input: "10", wantErr: true},
		{name: "too many fields", input: "10:00:00:00", wantErr: true},
		{name: "not a number", input: "ab:cd", wantErr: true},
		{name: "negative", input: "-1:00", wantErr: true},
		{name: "empty field", input: "10::00", wantErr: true},
		{name: "plus signs", input: "+9:+0", wantErr: true},
		{name: "plus sign on seconds", input: "09:00:+5", wantErr: true},
		{name: "inner space", input: "9: 30", wantErr: true},
		{name: "non-ascii digit", input: "٩:30", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) = %v, want error", tt.input, got)
				}
				if !errors.Is(err, ErrInvalid) {
					t.Fatalf("Parse(%q) error = %v, want ErrInvalid", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			if got.Seconds() != tt.want {
				t.Fatalf("Parse(%q) = %d seconds, want %d", tt.input, got.Seconds(), tt.want)
			}
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, s := range []string{"00:00", "09:05", "13:45:30", "24:00"} {
		if got := MustParse(s).String(); got != s {
			t.Errorf("MustParse(%q).String() = %q", s, got)
		}
	}
}

func TestAddTruncatesSubSecond(t *testing.T) {
	start := MustParse("09:00")

	got := start.Add(90*time.Second + 999*time.Millisecond)
	if want := MustParse("09:01:30"); !got.Equal(want) {
		t.Fatalf("Add() = %v, want %v", got, want)
	}
}

func TestAddDoesNotWrapAtMidnight(t *testing.T) {
	late := MustParse("23:30")
	got := late.Add(time.Hour)

	if !got.After(EndOfDay) {
		t.Fatalf("Add() = %v, want a value after 24:00", got)
	}
	if got.String() != "24:30" {
		t.Fatalf("String() = %q, want 24:30", got.String())
	}
}

func TestOrdering(t *testing.T) {
	a := MustParse("08:00")
	b := MustParse("08:00:01")

	if !a.Before(b) || b.Before(a) {
		t.Fatal("expected 08:00 before 08:00:01")
	}
	if !b.After(a) {
		t.Fatal("expected 08:00:01 after 08:00")
	}
	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Fatalf("Compare mismatch: %d %d %d", a.Compare(b), b.Compare(a), a.Compare(a))
	}
	if b.Sub(a) != time.Second {
		t.Fatalf("Sub() = %v, want 1s", b.Sub(a))
	}
}

func TestNewNormalises(t *testing.T) {
	if got := New(0, 90, 0); !got.Equal(MustParse("01:30")) {
		t.Fatalf("New(0, 90, 0) = %v, want 01:30", got)
	}
	h, m, s := New(10, 4, 2).Clock()
	if h != 10 || m != 4 || s != 2 {
		t.Fatalf("Clock() = %d:%d:%d, want 10:4:2", h, m, s)
	}
}

func TestTextMarshalling(t *testing.T) {
	var got Time
	if err := got.UnmarshalText([]byte("18:15")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	b, err := got.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	if string(b) != "18:15" {
		t.Fatalf("MarshalText() = %q, want 18:15", b)
	}
	if err := got.UnmarshalText([]byte("nope")); err == nil {
		t.Fatal("expected UnmarshalText to reject garbage")
	}
}
