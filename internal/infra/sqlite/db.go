// Package sqlite persists solved plans and validation issues so the API and
// CLI layers can serve history without re-solving.
package sqlite

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps a single SQLite connection plus the schema migrations run at
// Open time. All query methods hang off *DB rather than the raw *sql.DB so
// callers never see the driver name or DSN.
type DB struct {
	db *sql.DB
}

// Open opens (creating if needed) plan.db under dir and brings it up to the
// current schema.
func Open(dir string) (*DB, error) {
	path := filepath.Join(dir, "plan.db")
	sdb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sdb.SetMaxOpenConns(1) // modernc.org/sqlite serializes writers; avoid SQLITE_BUSY churn

	db := &DB{db: sdb}
	if err := db.migrate(); err != nil {
		sdb.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close releases the underlying connection.
func (db *DB) Close() error {
	return db.db.Close()
}

func (db *DB) migrate() error {
	for _, stmt := range PlanMigrations() {
		if _, err := db.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}
