/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package db

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/friendsincode/mealclock/internal/config"
	"github.com/friendsincode/mealclock/internal/models"
	"github.com/friendsincode/mealclock/internal/telemetry"
)

func TestConnectMigrateSQLite(t *testing.T) {
	cfg := &config.Config{
		Environment: "test",
		DBBackend:   config.DatabaseSQLite,
		DBDSN:       "file::memory:",
	}

	database, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer Close(database)

	if err := Migrate(database); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	rec := models.NewFoodRecord("rice", models.FoodKindRaw)
	rec.Names["en"] = "Rice"
	if err := database.Create(rec).Error; err != nil {
		t.Fatalf("create: %v", err)
	}

	var got models.FoodRecord
	if err := database.First(&got, "short_code = ?", "rice").Error; err != nil {
		t.Fatalf("first: %v", err)
	}
	if got.Names["en"] != "Rice" {
		t.Fatalf("names = %v, want serialized map to round trip", got.Names)
	}

	if testutil.CollectAndCount(telemetry.DatabaseQueryDuration) == 0 {
		t.Fatal("expected query duration samples from callbacks")
	}

	UpdateConnectionMetrics(database)
	if v := testutil.ToFloat64(telemetry.DatabaseConnectionsActive); v < 1 {
		t.Fatalf("connections active = %v, want at least 1", v)
	}
}

func TestConnectRejectsUnknownBackend(t *testing.T) {
	if _, err := Connect(&config.Config{DBBackend: "oracle", DBDSN: "x"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
