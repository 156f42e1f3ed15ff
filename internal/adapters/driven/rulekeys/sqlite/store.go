// Package sqlite provides a SQLite-backed rule-key artifact store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/secops-tools/socrag-cli/internal/core/domain"
	"github.com/secops-tools/socrag-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.RuleKeyStore = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS rule_keys (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	rule_id    TEXT NOT NULL,
	alert_name TEXT NOT NULL DEFAULT '',
	source     TEXT NOT NULL DEFAULT '',
	row_index  INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_rule_keys_rule_id ON rule_keys(rule_id);
`

// Store persists rule-key records in a SQLite database. Records keep
// their insertion order; Replace swaps the whole artifact in one
// transaction so readers never see a half-written mapping.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the rule-key database at the given path.
func NewStore(path string) (*Store, error) {
	// WAL mode for better concurrency between the index build and
	// concurrent searches.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Load returns all rule-key records in their stored order. An empty
// table is not an error.
func (s *Store) Load(ctx context.Context) ([]domain.RuleKey, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT rule_id, alert_name, source, row_index FROM rule_keys ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("querying rule keys: %w", err)
	}
	defer rows.Close()

	var keys []domain.RuleKey
	for rows.Next() {
		var k domain.RuleKey
		if err := rows.Scan(&k.RuleID, &k.AlertName, &k.Source, &k.RowIndex); err != nil {
			return nil, fmt.Errorf("scanning rule key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rule keys: %w", err)
	}
	return keys, nil
}

// Replace overwrites the artifact with the given records atomically.
func (s *Store) Replace(ctx context.Context, keys []domain.RuleKey) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rule_keys`); err != nil {
		return fmt.Errorf("clearing rule keys: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO rule_keys (rule_id, alert_name, source, row_index) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, k := range keys {
		if _, err := stmt.ExecContext(ctx, k.RuleID, k.AlertName, k.Source, k.RowIndex); err != nil {
			return fmt.Errorf("inserting rule key %s: %w", k.RuleID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing rule keys: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
