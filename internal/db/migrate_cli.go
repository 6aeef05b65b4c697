package db

import (
	"fmt"
	"io"
	"io/fs"
	"log"
	"strconv"
)

// RunMigrateCommand dispatches a migrate action against the database at dbPath
// using the embedded migrations.
func RunMigrateCommand(args []string, dbPath string, out io.Writer) error {
	if len(args) < 1 {
		PrintMigrateHelp(out)
		return fmt.Errorf("missing migrate action")
	}
	action := args[0]
	if action == "help" {
		PrintMigrateHelp(out)
		return nil
	}

	database, err := OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	migrationsFS := MigrationsFS()

	switch action {
	case "up":
		return handleMigrateUp(database, migrationsFS, out)
	case "down":
		return handleMigrateDown(database, migrationsFS, out)
	case "status":
		return handleMigrateStatus(database, migrationsFS, out)
	case "version":
		if len(args) < 2 {
			return fmt.Errorf("usage: habitat-migrate version <version_number>")
		}
		return handleMigrateVersion(database, migrationsFS, args[1])
	case "force":
		if len(args) < 2 {
			return fmt.Errorf("usage: habitat-migrate force <version_number>")
		}
		return handleMigrateForce(database, migrationsFS, args[1])
	default:
		PrintMigrateHelp(out)
		return fmt.Errorf("unknown migrate action: %s", action)
	}
}

func handleMigrateUp(database *DB, migrationsFS fs.FS, out io.Writer) error {
	log.Printf("[migrate] running migrations")
	if err := database.MigrateUp(migrationsFS); err != nil {
		return err
	}
	version, dirty, err := database.MigrateVersion(migrationsFS)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "All migrations applied. Current version: %d (dirty: %v)\n", version, dirty)
	return nil
}

func handleMigrateDown(database *DB, migrationsFS fs.FS, out io.Writer) error {
	log.Printf("[migrate] rolling back one migration")
	if err := database.MigrateDown(migrationsFS); err != nil {
		return err
	}
	version, dirty, err := database.MigrateVersion(migrationsFS)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Rolled back. Current version: %d (dirty: %v)\n", version, dirty)
	return nil
}

func handleMigrateStatus(database *DB, migrationsFS fs.FS, out io.Writer) error {
	status, err := database.GetMigrationStatus(migrationsFS)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "=== Migration Status ===")
	fmt.Fprintf(out, "Current version: %d\n", status.Current)
	fmt.Fprintf(out, "Latest available: %d\n", status.Latest)
	fmt.Fprintf(out, "Dirty: %v\n", status.Dirty)

	switch {
	case status.Dirty:
		fmt.Fprintln(out, "A migration failed mid-execution. Inspect the database, then run: habitat-migrate force <version>")
	case status.Pending() > 0:
		fmt.Fprintf(out, "%d migration(s) pending. Run: habitat-migrate up\n", status.Pending())
	default:
		fmt.Fprintln(out, "Database is up to date.")
	}
	return nil
}

func handleMigrateVersion(database *DB, migrationsFS fs.FS, versionStr string) error {
	target, err := strconv.ParseUint(versionStr, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid version number: %s", versionStr)
	}
	log.Printf("[migrate] migrating to version %d", target)
	return database.MigrateTo(migrationsFS, uint(target))
}

func handleMigrateForce(database *DB, migrationsFS fs.FS, versionStr string) error {
	version, err := strconv.Atoi(versionStr)
	if err != nil {
		return fmt.Errorf("invalid version number: %s", versionStr)
	}
	log.Printf("[migrate] forcing version to %d", version)
	return database.MigrateForce(migrationsFS, version)
}

// PrintMigrateHelp writes the usage of the migrate actions.
func PrintMigrateHelp(out io.Writer) {
	fmt.Fprint(out, `Database Migration Commands

Usage: habitat-migrate [-db-path <path>] <command> [args]

Commands:
  up              Apply all pending migrations
  down            Roll back one migration
  status          Show current and latest migration version
  version <N>     Migrate up or down to version N
  force <N>       Set the recorded version to N (recovery only)
  help            Show this help message
`)
}
