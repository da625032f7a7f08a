package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/saviobatista/rpas-logbook/internal/types"
)

// SQLite is the durable Store implementation, an embedded database file so
// the tool works offline with no external services.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at the given path.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL keeps the single writer from blocking dashboard reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := createSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// NewSQLiteWithDB wraps an existing database handle (useful for testing).
func NewSQLiteWithDB(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS missions (
		id TEXT PRIMARY KEY,
		created TEXT NOT NULL,
		start TEXT,
		doc TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_missions_created ON missions(created);
	CREATE INDEX IF NOT EXISTS idx_missions_start ON missions(start);

	CREATE TABLE IF NOT EXISTS settings (
		name TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *SQLite) Close() error {
	return s.db.Close()
}

// ListMissions retrieves all mission records
func (s *SQLite) ListMissions(ctx context.Context) ([]types.Mission, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM missions`)
	if err != nil {
		return nil, fmt.Errorf("failed to list missions: %w", err)
	}
	defer rows.Close()

	var missions []types.Mission
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan mission: %w", err)
		}
		var m types.Mission
		if err := json.Unmarshal([]byte(doc), &m); err != nil {
			return nil, fmt.Errorf("failed to decode mission: %w", err)
		}
		missions = append(missions, m)
	}
	return missions, rows.Err()
}

// GetMission retrieves one mission by id
func (s *SQLite) GetMission(ctx context.Context, id string) (*types.Mission, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM missions WHERE id = ?`, id).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mission: %w", err)
	}

	var m types.Mission
	if err := json.Unmarshal([]byte(doc), &m); err != nil {
		return nil, fmt.Errorf("failed to decode mission: %w", err)
	}
	return &m, nil
}

// PutMission inserts or replaces a mission by id
func (s *SQLite) PutMission(ctx context.Context, m types.Mission) error {
	doc, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode mission: %w", err)
	}

	query := `
		INSERT INTO missions (id, created, start, doc) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET created = excluded.created,
			start = excluded.start, doc = excluded.doc
	`
	if _, err := s.db.ExecContext(ctx, query, m.ID, m.Created, m.Start, string(doc)); err != nil {
		return fmt.Errorf("failed to put mission: %w", err)
	}
	return nil
}

// DeleteMission removes a mission by id
func (s *SQLite) DeleteMission(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM missions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete mission: %w", err)
	}
	return nil
}

// ReplaceMissions clears the mission table and bulk-inserts the given set
// inside one transaction.
func (s *SQLite) ReplaceMissions(ctx context.Context, missions []types.Mission) error {
	return s.restoreTx(ctx, missions, nil)
}

// GetLists retrieves the suggestion-list store from the settings table.
// A missing setting yields an empty store, not an error.
func (s *SQLite) GetLists(ctx context.Context) (types.SuggestionLists, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE name = ?`, SettingLists).Scan(&value)
	if err == sql.ErrNoRows {
		return types.SuggestionLists{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lists: %w", err)
	}

	var ls types.SuggestionLists
	if err := json.Unmarshal([]byte(value), &ls); err != nil {
		return nil, fmt.Errorf("failed to decode lists: %w", err)
	}
	return ls, nil
}

// PutLists stores the suggestion-list store in the settings table
func (s *SQLite) PutLists(ctx context.Context, ls types.SuggestionLists) error {
	value, err := json.Marshal(ls)
	if err != nil {
		return fmt.Errorf("failed to encode lists: %w", err)
	}

	query := `
		INSERT INTO settings (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value
	`
	if _, err := s.db.ExecContext(ctx, query, SettingLists, string(value)); err != nil {
		return fmt.Errorf("failed to put lists: %w", err)
	}
	return nil
}

// Restore wholesale-replaces the mission set and, when ls is non-nil, the
// suggestion-list store. Clear, bulk insert and the settings write run in a
// single transaction so a mid-sequence failure leaves the store untouched.
func (s *SQLite) Restore(ctx context.Context, missions []types.Mission, ls types.SuggestionLists) error {
	return s.restoreTx(ctx, missions, ls)
}

func (s *SQLite) restoreTx(ctx context.Context, missions []types.Mission, ls types.SuggestionLists) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM missions`); err != nil {
		return fmt.Errorf("failed to clear missions: %w", err)
	}

	for _, m := range missions {
		doc, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("failed to encode mission: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO missions (id, created, start, doc) VALUES (?, ?, ?, ?)`,
			m.ID, m.Created, m.Start, string(doc)); err != nil {
			return fmt.Errorf("failed to insert mission: %w", err)
		}
	}

	if ls != nil {
		value, err := json.Marshal(ls)
		if err != nil {
			return fmt.Errorf("failed to encode lists: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO settings (name, value) VALUES (?, ?)
			ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
			SettingLists, string(value)); err != nil {
			return fmt.Errorf("failed to write lists: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit restore: %w", err)
	}
	return nil
}
