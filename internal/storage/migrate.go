package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

// SchemaVersion is stamped into PRAGMA user_version once all up migrations
// have been applied.
const SchemaVersion = 2

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate brings the database to SchemaVersion. A database stamped with any
// other non-zero version is wiped and recreated; stored reminders do not
// survive a schema change.
func Migrate(db *sql.DB) error {
	current, err := UserVersion(db)
	if err != nil {
		return err
	}
	if current == SchemaVersion {
		return nil
	}
	if current != 0 {
		if err := MigrateDown(db); err != nil {
			return fmt.Errorf("destructive reset from version %d: %w", current, err)
		}
	}
	if err := MigrateUp(db); err != nil {
		return err
	}
	return setUserVersion(db, SchemaVersion)
}

func MigrateUp(db *sql.DB) error {
	return applyMigrations(db, ".up.sql", false)
}

func MigrateDown(db *sql.DB) error {
	if err := applyMigrations(db, ".down.sql", true); err != nil {
		return err
	}
	return setUserVersion(db, 0)
}

// UserVersion reads the schema version stamp.
func UserVersion(db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read user_version: %w", err)
	}
	return v, nil
}

func setUserVersion(db *sql.DB, v int) error {
	// PRAGMA does not take bound parameters.
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", v)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

func applyMigrations(db *sql.DB, suffix string, reverse bool) error {
	entries, err := fs.Glob(migrationFiles, "migrations/*"+suffix)
	if err != nil {
		return fmt.Errorf("glob migrations: %w", err)
	}
	sort.Strings(entries)
	if reverse {
		sort.Sort(sort.Reverse(sort.StringSlice(entries)))
	}
	for _, name := range entries {
		sqlBytes, readErr := migrationFiles.ReadFile(name)
		if readErr != nil {
			return fmt.Errorf("read migration %s: %w", name, readErr)
		}
		if _, execErr := db.Exec(string(sqlBytes)); execErr != nil {
			return fmt.Errorf("apply migration %s: %w", name, execErr)
		}
	}
	return nil
}
