package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/storeopshq/storeops-backend/pkg/migrate"
)

func TestLedgerMigrationContainsTables(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_udhar_and_followup.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no ledger migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS udhar",
		"status TEXT NOT NULL DEFAULT 'Pending'",
		"CREATE TABLE IF NOT EXISTS followup",
		"status TEXT NOT NULL DEFAULT 'Open'",
		"CREATE INDEX IF NOT EXISTS idx_udhar_date_given ON udhar (date_given)",
		"CREATE INDEX IF NOT EXISTS idx_followup_followup_date ON followup (followup_date)",
		"DROP TABLE IF EXISTS udhar",
		"DROP TABLE IF EXISTS followup",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
