package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/cognicore/pruner/pkg/pruner/internalerr"
	"github.com/cognicore/pruner/pkg/pruner/language"
	"github.com/cognicore/pruner/pkg/pruner/oracle"
	"github.com/cognicore/pruner/pkg/pruner/oracle/memstore"
)

// Store keeps reference word-frequency tables in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens a SQLite database with WAL mode enabled and creates the schema
// if needed.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS word_freq (
	lang TEXT NOT NULL,
	token TEXT NOT NULL,
	freq REAL NOT NULL,
	PRIMARY KEY(lang, token)
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// ImportCounts replaces the table for lang with counts normalized to
// probabilities. It returns the number of stored tokens.
func (s *Store) ImportCounts(ctx context.Context, lang language.Identity, counts map[string]float64) (int, error) {
	return s.ImportFrequencies(ctx, lang, oracle.Normalize(counts))
}

// ImportFrequencies replaces the table for lang with freqs, keyed by
// oracle.NormalizeTokens.
func (s *Store) ImportFrequencies(ctx context.Context, lang language.Identity, freqs map[string]float64) (int, error) {
	if lang.IsZero() {
		return 0, fmt.Errorf("import frequencies: no language: %w", internalerr.ErrInvalidInput)
	}
	freqs = oracle.NormalizeTokens(lang, freqs)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM word_freq WHERE lang = ?`, lang.Code3); err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO word_freq (lang, token, freq) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for token, f := range freqs {
		if _, err := stmt.ExecContext(ctx, lang.Code3, token, f); err != nil {
			return 0, fmt.Errorf("insert %q: %w", token, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(freqs), nil
}

// LoadInto copies the stored table for lang into o. It returns
// internalerr.ErrNotFound when the database has no rows for lang.
func (s *Store) LoadInto(ctx context.Context, o *memstore.Oracle, lang language.Identity) (int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT token, freq FROM word_freq WHERE lang = ?`, lang.Code3)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	freqs := make(map[string]float64)
	for rows.Next() {
		var token string
		var f float64
		if err := rows.Scan(&token, &f); err != nil {
			return 0, err
		}
		freqs[token] = f
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if len(freqs) == 0 {
		return 0, fmt.Errorf("frequencies for %s: %w", lang.Code3, internalerr.ErrNotFound)
	}

	o.SetFrequencies(lang, freqs)
	return len(freqs), nil
}

// Count returns the number of tokens stored for lang.
func (s *Store) Count(ctx context.Context, lang language.Identity) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM word_freq WHERE lang = ?`, lang.Code3).Scan(&n)
	return n, err
}

// Languages returns the ISO 639-2 codes that have stored tables.
func (s *Store) Languages(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT lang FROM word_freq ORDER BY lang`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var langs []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		langs = append(langs, code)
	}
	return langs, rows.Err()
}
