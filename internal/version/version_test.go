/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.2.3", "1.2.3", 0},
		{"1.2.3", "1.10.0", -1},
		{"v2.0.0", "1.9.9", 1},
		{"1.2", "1.2.0", 0},
		{"1.2.3-rc1", "1.2.3", 0},
	}
	for _, tt := range tests {
		if got := Compare(tt.a, tt.b); got != tt.want {
			t.Fatalf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCheckerDetectsNewRelease(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name":"v99.0.0","html_url":"https://example.test/r"}`))
	}))
	defer srv.Close()

	c := NewChecker(zerolog.Nop())
	c.releasesURL = srv.URL
	c.check(context.Background())

	info := c.Info()
	if !info.UpdateAvailable || info.LatestVersion != "99.0.0" || info.ReleaseURL != "https://example.test/r" {
		t.Fatalf("info = %+v", info)
	}
}

func TestCheckerKeepsStateOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewChecker(zerolog.Nop())
	c.releasesURL = srv.URL
	c.check(context.Background())

	info := c.Info()
	if info.UpdateAvailable || info.LatestVersion != "" || info.CurrentVersion != Version {
		t.Fatalf("info = %+v", info)
	}
}

func TestCheckReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewChecker(zerolog.Nop())
	c.releasesURL = srv.URL
	if _, err := c.Check(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}
