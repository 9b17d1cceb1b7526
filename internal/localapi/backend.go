// Package localapi is an offline reporting backend on SQLite. It answers the
// same calls as the HTTP backend from a seeded fixture, which makes the TUI
// usable without a server and gives tests a realistic collaborator.
package localapi

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/supervisitor20/myreports/internal/ids"
)

// Backend implements api.Client on a SQLite database. Safe for concurrent use.
type Backend struct {
	db  *sql.DB
	mu  sync.RWMutex
	ids ids.Generator
	now func() time.Time
}

// Open opens or creates the database at dbPath. ":memory:" gives a private
// in-memory database.
func Open(dbPath string) (*Backend, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Each connection to ":memory:" is a separate database; keep exactly one.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	b := &Backend{db: db, ids: ids.UUID{}, now: time.Now}
	if err := b.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return b, nil
}

// SetIDGenerator replaces the generator used for report handles.
func (b *Backend) SetIDGenerator(g ids.Generator) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ids = g
}

// SetClock replaces the clock used for default names and run timestamps.
func (b *Backend) SetClock(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
}

func (b *Backend) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS report_types (
		id TEXT PRIMARY KEY,
		intention_value TEXT NOT NULL,
		intention_display TEXT NOT NULL,
		category_value TEXT NOT NULL,
		category_display TEXT NOT NULL,
		data_set_value TEXT NOT NULL,
		data_set_display TEXT NOT NULL,
		default_name TEXT NOT NULL DEFAULT '',
		filters_json TEXT NOT NULL,
		default_filter_json TEXT NOT NULL DEFAULT '{}'
	);

	CREATE TABLE IF NOT EXISTS partners (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS contacts (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		partner_id INTEGER NOT NULL REFERENCES partners(id),
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS contact_tags (
		contact_id INTEGER NOT NULL REFERENCES contacts(id),
		tag TEXT NOT NULL,
		PRIMARY KEY (contact_id, tag)
	);

	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		report_data_id TEXT NOT NULL,
		name TEXT NOT NULL,
		filter_json TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_contacts_partner ON contacts(partner_id);
	CREATE INDEX IF NOT EXISTS idx_contacts_state ON contacts(state);
	`
	if _, err := b.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.db.Close()
}
