// Package catalog stores marketplace listings in SQLite and answers
// full-text queries for the search coordinator.
package catalog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Store is the listing catalog
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the catalog database at path
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create catalog directory: %w", err)
		}
	}

	// Pragmas in the connection string apply to every pooled connection
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies schema migrations based on user_version
func migrate(db *sql.DB) error {
	version, err := getUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: listings plus the external-content FTS index
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS listings (
		  seq         INTEGER PRIMARY KEY AUTOINCREMENT,
		  id          TEXT NOT NULL UNIQUE,
		  title       TEXT NOT NULL,
		  description TEXT NOT NULL DEFAULT '',
		  category    TEXT NOT NULL DEFAULT '',
		  seller      TEXT NOT NULL DEFAULT '',
		  price_cents INTEGER NOT NULL,
		  currency    TEXT NOT NULL,
		  posted_at   INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_listings_posted_at ON listings(posted_at DESC);

		CREATE VIRTUAL TABLE IF NOT EXISTS listings_fts USING fts5(
		  title, description, category,
		  content='listings', content_rowid='seq',
		  tokenize='unicode61 remove_diacritics 2'
		);

		CREATE TRIGGER IF NOT EXISTS listings_ai AFTER INSERT ON listings BEGIN
		  INSERT INTO listings_fts(rowid, title, description, category)
		  VALUES (new.seq, new.title, new.description, new.category);
		END;

		CREATE TRIGGER IF NOT EXISTS listings_ad AFTER DELETE ON listings BEGIN
		  INSERT INTO listings_fts(listings_fts, rowid, title, description, category)
		  VALUES ('delete', old.seq, old.title, old.description, old.category);
		END;

		CREATE TRIGGER IF NOT EXISTS listings_au AFTER UPDATE ON listings BEGIN
		  INSERT INTO listings_fts(listings_fts, rowid, title, description, category)
		  VALUES ('delete', old.seq, old.title, old.description, old.category);
		  INSERT INTO listings_fts(rowid, title, description, category)
		  VALUES (new.seq, new.title, new.description, new.category);
		END;
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := setUserVersion(db, 1); err != nil {
			return err
		}
	}

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string)
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

func getUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

func setUserVersion(db *sql.DB, version int) error {
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version)); err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
