package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/friendsincode/mealclock/internal/block"
	"github.com/friendsincode/mealclock/internal/config"
	"github.com/friendsincode/mealclock/internal/db"
	"github.com/friendsincode/mealclock/internal/models"
)

const testCatalog = `
foods:
  - short_code: oats
    kind: recipe
    names: {en: Porridge}
    default_lang: en
    serving: {unit: bowl, amount: "1"}
    time: "20"
  - short_code: pancakes
    kind: recipe
    names: {en: Pancakes}
    default_lang: en
    serving: {unit: piece, amount: "3"}
    time: "40"
`

// setupCLI points the commands at a fresh sqlite file.
func setupCLI(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("MEALCLOCK_ENV", "test")
	t.Setenv("MEALCLOCK_DB_BACKEND", "sqlite")
	t.Setenv("MEALCLOCK_DB_DSN", "file:"+filepath.Join(dir, "mealclock.db"))
	t.Setenv("MEALCLOCK_JWT_SIGNING_KEY", "test-secret")

	path := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(path, []byte(testCatalog), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	prependOccupant = ""
	apiKeyOwner = ""
	tokenScopes = nil
	apiKeyScopes = nil

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCatalogAndPrependCommands(t *testing.T) {
	path := setupCLI(t)

	out, err := execute(t, "catalog", "import", path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "Imported: 2") {
		t.Fatalf("import output = %q", out)
	}

	out, err = execute(t, "catalog", "import", path)
	if err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if !strings.Contains(out, "Skipped:  2") {
		t.Fatalf("re-import output = %q", out)
	}

	out, err = execute(t, "catalog", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "oats") || !strings.Contains(out, "2 foods") {
		t.Fatalf("list output = %q", out)
	}

	out, err = execute(t, "catalog", "show", "oats")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "Porridge") || !strings.Contains(out, "20m0s") {
		t.Fatalf("show output = %q", out)
	}

	out, err = execute(t, "prepend", "--start", "09:00", "--end", "10:00", "--occupant", "pancakes", "--food", "oats")
	if err != nil {
		t.Fatalf("prepend: %v", err)
	}
	want := "split\n  [09:00, 09:20) Porridge\n  [09:20, 10:00) Pancakes\n"
	if out != want {
		t.Fatalf("prepend output = %q, want %q", out, want)
	}

	_, err = execute(t, "prepend", "--start", "09:00", "--end", "09:30", "--occupant", "pancakes", "--food", "oats")
	if !errors.Is(err, block.ErrNoFit) {
		t.Fatalf("prepend into short block: err = %v, want ErrNoFit", err)
	}

	if _, err := execute(t, "catalog", "delete", "pancakes"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := execute(t, "catalog", "show", "pancakes"); err == nil {
		t.Fatal("expected show of deleted food to fail")
	}
}

func TestAPIKeyCommandsAreAudited(t *testing.T) {
	setupCLI(t)

	out, err := execute(t, "apikey", "create", "--owner", "alice", "--name", "laptop", "--scope", "catalog:write")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.Contains(out, "Key:     mc_") {
		t.Fatalf("create output = %q", out)
	}
	id := strings.TrimSpace(strings.TrimPrefix(strings.Split(out, "\n")[0], "ID:"))

	if _, err := execute(t, "apikey", "revoke", id); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	out, err = execute(t, "apikey", "list", "--owner", "alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "revoked") {
		t.Fatalf("list output = %q", out)
	}

	if _, err := execute(t, "apikey", "create", "--owner", "alice", "--name", "x", "--scope", "root"); err == nil {
		t.Fatal("expected unknown scope to be rejected")
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	database, err := db.Connect(cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer db.Close(database)

	var actions []models.AuditAction
	if err := database.Model(&models.AuditLog{}).Order("timestamp").Pluck("action", &actions).Error; err != nil {
		t.Fatalf("load audit log: %v", err)
	}
	if len(actions) != 2 || actions[0] != models.AuditActionAPIKeyCreate || actions[1] != models.AuditActionAPIKeyRevoke {
		t.Fatalf("audit actions = %v", actions)
	}
}

func TestTokenCommand(t *testing.T) {
	setupCLI(t)

	out, err := execute(t, "token", "--subject", "alice", "--scope", "audit:read")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if strings.Count(strings.TrimSpace(out), ".") != 2 {
		t.Fatalf("token output = %q, want a JWT", out)
	}

	if _, err := execute(t, "token", "--subject", "alice", "--scope", "everything"); err == nil {
		t.Fatal("expected unknown scope to be rejected")
	}
}

func TestCheckCommand(t *testing.T) {
	path := setupCLI(t)

	if _, err := execute(t, "catalog", "import", path); err != nil {
		t.Fatalf("import: %v", err)
	}
	out, err := execute(t, "check")
	if err != nil {
		t.Fatalf("check on clean catalog: %v", err)
	}
	if !strings.Contains(out, "no findings") {
		t.Fatalf("check output = %q", out)
	}
}
