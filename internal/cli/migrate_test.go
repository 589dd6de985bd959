package cli

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/terraincognita07/fortuna/internal/db"
	embeddedmigrations "github.com/terraincognita07/fortuna/migrations"
)

func TestMigrateCommandReportsUpToDateSchema(t *testing.T) {
	database := openTestDatabase(t)

	var out bytes.Buffer
	source, err := embeddedmigrations.ForDriver(db.DriverSQLite)
	if err != nil {
		t.Fatalf("embedded migrations: %v", err)
	}
	if err := RunMigrateCommand(database, db.DriverSQLite, source, &out); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out.String(), "Schema is up to date") {
		t.Fatalf("expected up to date summary, got %q", out.String())
	}
	if !strings.Contains(out.String(), "Successful: 0  Failed: 0") {
		t.Fatalf("expected counts in summary, got %q", out.String())
	}
}

func TestMigrateCommandAppliesAndStopsOnFailure(t *testing.T) {
	database := openTestDatabase(t)

	source := fstest.MapFS{
		"101_create_notes.sql": {Data: []byte("CREATE TABLE cli_notes (id TEXT PRIMARY KEY);")},
		"102_broken.sql":       {Data: []byte("CREATE TABLE ;")},
	}

	var out bytes.Buffer
	err := RunMigrateCommand(database, db.DriverSQLite, source, &out)
	if err == nil {
		t.Fatal("expected broken migration to fail")
	}
	if !strings.Contains(err.Error(), "102_broken.sql") {
		t.Fatalf("expected failed file in error, got %v", err)
	}
	if !database.Migrator().HasTable("cli_notes") {
		t.Fatal("expected first migration to be applied before the failure")
	}
	if !strings.Contains(out.String(), "101_create_notes.sql") {
		t.Fatalf("expected applied file in output, got %q", out.String())
	}
	if !strings.Contains(out.String(), "Successful: 1  Failed: 1  Skipped: 0  Total: 2") {
		t.Fatalf("expected counts after failure, got %q", out.String())
	}
}
