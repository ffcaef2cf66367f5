/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/friendsincode/mealclock/internal/config"
	"github.com/friendsincode/mealclock/internal/logbuffer"
	"github.com/friendsincode/mealclock/internal/version"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv, err := New(&config.Config{
		Environment: "test",
		HTTPBind:    "127.0.0.1",
		HTTPPort:    8080,
		DBBackend:   config.DatabaseSQLite,
		DBDSN:       "file::memory:",
	}, logbuffer.New(100), zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		if err := srv.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return srv
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp healthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.Version != version.Version || resp.Database != "ok" || resp.Cache != "disabled" {
		t.Fatalf("health = %+v", resp)
	}
	if resp.Update != nil {
		t.Fatal("update info should be omitted when checking is off")
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("security headers missing from healthz")
	}
}

func TestRoutesAreMounted(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{method: http.MethodGet, path: "/metrics", want: http.StatusOK},
		{method: http.MethodGet, path: "/api/v1/health", want: http.StatusOK},
		{method: http.MethodGet, path: "/api/v1/foods", want: http.StatusOK},
		{method: http.MethodPost, path: "/api/v1/foods", body: `{}`, want: http.StatusUnauthorized},
		{method: http.MethodPost, path: "/api/v1/blocks/prepend", body: `{"start":"09:00","end":"10:00","food_id":"toast"}`, want: http.StatusNotFound},
		{method: http.MethodGet, path: "/api/v1/system/integrity", want: http.StatusUnauthorized},
		{method: http.MethodGet, path: "/nope", want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			if rr.Code != tt.want {
				t.Fatalf("status = %d, want %d body=%s", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestHTTPServerUsesConfiguredAddr(t *testing.T) {
	srv := newTestServer(t)
	if srv.HTTPServer().Addr != "127.0.0.1:8080" {
		t.Fatalf("Addr = %q", srv.HTTPServer().Addr)
	}
}

func TestNewFailsOnBadBackend(t *testing.T) {
	_, err := New(&config.Config{DBBackend: "oracle", DBDSN: "x"}, nil, zerolog.Nop())
	if err == nil {
		t.Fatal("expected New to fail for an unknown backend")
	}
}
