package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/emergent-company/planmcp/internal/plan"
)

// SQLite is a Store persisted to a single SQLite database. Each template is
// one row holding its wire-form JSON, so the on-disk format round-trips
// through the same codec as library export.
type SQLite struct {
	mu sync.RWMutex
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS templates (
	id   TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	doc  TEXT NOT NULL
);
`

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy_timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal_mode: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Get returns the template with the given ID.
func (s *SQLite) Get(id plan.TemplateID) (*plan.Template, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(id)
}

func (s *SQLite) get(id plan.TemplateID) (*plan.Template, bool) {
	var doc string
	err := s.db.QueryRow("SELECT doc FROM templates WHERE id = ?", string(id)).Scan(&doc)
	if err != nil {
		return nil, false
	}
	var t plan.Template
	if err := json.Unmarshal([]byte(doc), &t); err != nil {
		return nil, false
	}
	return &t, true
}

// Contains reports whether the ID is present.
func (s *SQLite) Contains(id plan.TemplateID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	if err := s.db.QueryRow("SELECT COUNT(1) FROM templates WHERE id = ?", string(id)).Scan(&n); err != nil {
		return false
	}
	return n > 0
}

// Insert adds a new template, rejecting duplicate IDs.
func (s *SQLite) Insert(t *plan.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encoding template %s: %w", t.ID, err)
	}
	res, err := s.db.Exec(
		"INSERT INTO templates (id, kind, doc) VALUES (?, ?, ?) ON CONFLICT(id) DO NOTHING",
		string(t.ID), string(t.Kind), string(doc))
	if err != nil {
		return fmt.Errorf("inserting template %s: %w", t.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
	}
	return nil
}

// Replace overwrites an existing template.
func (s *SQLite) Replace(t *plan.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encoding template %s: %w", t.ID, err)
	}
	res, err := s.db.Exec(
		"UPDATE templates SET kind = ?, doc = ? WHERE id = ?",
		string(t.Kind), string(doc), string(t.ID))
	if err != nil {
		return fmt.Errorf("replacing template %s: %w", t.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, t.ID)
	}
	return nil
}

// Snapshot loads the whole collection.
func (s *SQLite) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(Snapshot)
	rows, err := s.db.Query("SELECT id, doc FROM templates")
	if err != nil {
		return snap
	}
	defer rows.Close()
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			continue
		}
		var t plan.Template
		if err := json.Unmarshal([]byte(doc), &t); err != nil {
			continue
		}
		snap[plan.TemplateID(id)] = &t
	}
	return snap
}

// Commit upserts the batch inside one transaction.
func (s *SQLite) Commit(batch map[plan.TemplateID]*plan.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning commit: %w", err)
	}
	for id, t := range batch {
		doc, err := json.Marshal(t)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("encoding template %s: %w", id, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO templates (id, kind, doc) VALUES (?, ?, ?) ON CONFLICT(id) DO UPDATE SET kind = excluded.kind, doc = excluded.doc",
			string(id), string(t.Kind), string(doc)); err != nil {
			tx.Rollback()
			return fmt.Errorf("committing template %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	return nil
}

// Delete removes a template. Missing IDs are a no-op.
func (s *SQLite) Delete(id plan.TemplateID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec("DELETE FROM templates WHERE id = ?", string(id)); err != nil {
		return fmt.Errorf("deleting template %s: %w", id, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error { return s.db.Close() }
