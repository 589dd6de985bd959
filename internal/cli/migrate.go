package cli

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/terraincognita07/fortuna/internal/db"
	"gorm.io/gorm"
)

// RunMigrateCommand applies pending migrations from source and prints one
// line per file.
func RunMigrateCommand(database *gorm.DB, driver string, source fs.FS, out io.Writer) error {
	report, err := db.ApplyMigrations(database, driver, source)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	printHeading(out, fmt.Sprintf("Migrations (%s)", driver))
	for _, name := range report.Skipped {
		printMuted(out, "  = %s", name)
	}
	for _, name := range report.Applied {
		printSuccess(out, "%s", name)
	}
	if !report.Succeeded() {
		printFailure(out, "%s: %v", report.Failed, report.Err)
		printMigrationCounts(out, report)
		return fmt.Errorf("migration %s failed: %w", report.Failed, report.Err)
	}
	printMigrationCounts(out, report)

	if len(report.Applied) == 0 {
		printMuted(out, "Schema is up to date (%d files).", report.Total)
		return nil
	}
	printSuccess(out, "Applied %d of %d migrations.", len(report.Applied), report.Total)
	return nil
}

func printMigrationCounts(out io.Writer, report db.MigrationReport) {
	failed := 0
	if !report.Succeeded() {
		failed = 1
	}
	printMuted(out, "Successful: %d  Failed: %d  Skipped: %d  Total: %d",
		len(report.Applied), failed, len(report.Skipped), report.Total)
}
