// CLAUDE:SUMMARY SQLite catalog of dictionary sources: seeded URLs, operator overrides, availability checks, import history.
package importer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sourcesDDL = `CREATE TABLE IF NOT EXISTS dict_sources (
	adapter_id   TEXT PRIMARY KEY,
	dict_id      TEXT NOT NULL,
	description  TEXT NOT NULL,
	source_url   TEXT NOT NULL,
	license      TEXT NOT NULL DEFAULT '',
	checked_at   INTEGER,
	check_status INTEGER,
	check_error  TEXT,
	imported_at  INTEGER,
	import_rows  INTEGER,
	updated_at   INTEGER NOT NULL
)`

// Source is one row of the source catalog. Zero times mean "never".
type Source struct {
	AdapterID   string
	DictID      string
	Description string
	URL         string
	License     string
	CheckedAt   time.Time
	CheckStatus int
	CheckError  string
	ImportedAt  time.Time
	ImportRows  int
	UpdatedAt   time.Time
}

// Reachable reports whether the last availability check got a 2xx or 3xx.
func (s Source) Reachable() bool {
	return s.CheckStatus >= 200 && s.CheckStatus < 400
}

// SourceDB persists the source catalog in SQLite.
type SourceDB struct {
	db *sql.DB
}

// OpenSourceDB opens (or creates) the database at path, creating its
// directory if needed.
func OpenSourceDB(path string) (*SourceDB, error) {
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("open source db: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open source db: %w", err)
	}
	if _, err := db.Exec(sourcesDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create dict_sources table: %w", err)
	}
	return &SourceDB{db: db}, nil
}

// Close closes the database.
func (s *SourceDB) Close() error {
	return s.db.Close()
}

// Seed inserts a row for every adapter that has none yet. Existing rows,
// including URL overrides, are left untouched.
func (s *SourceDB) Seed(ctx context.Context, adapters []Adapter) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO dict_sources
		(adapter_id, dict_id, description, source_url, license, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, a := range adapters {
		if _, err := stmt.ExecContext(ctx, a.ID(), a.DictID(), a.Description(), a.DefaultURL(), a.License(), now); err != nil {
			return fmt.Errorf("seed %s: %w", a.ID(), err)
		}
	}
	return tx.Commit()
}

// GetURL returns the URL an import of adapterID should download.
func (s *SourceDB) GetURL(ctx context.Context, adapterID string) (string, error) {
	var url string
	err := s.db.QueryRowContext(ctx, `SELECT source_url FROM dict_sources WHERE adapter_id = ?`, adapterID).Scan(&url)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %q", ErrUnknownSource, adapterID)
	}
	if err != nil {
		return "", fmt.Errorf("get url for %s: %w", adapterID, err)
	}
	return url, nil
}

// SetURL overrides the source URL of adapterID.
func (s *SourceDB) SetURL(ctx context.Context, adapterID, url string) error {
	return s.update(ctx, adapterID,
		`UPDATE dict_sources SET source_url = ?, updated_at = ? WHERE adapter_id = ?`,
		url, time.Now().Unix(), adapterID)
}

// RecordCheck stores the outcome of an availability check. status is 0
// when the request never got a response.
func (s *SourceDB) RecordCheck(ctx context.Context, adapterID string, status int, checkErr error) error {
	var msg sql.NullString
	if checkErr != nil {
		msg = sql.NullString{String: checkErr.Error(), Valid: true}
	}
	return s.update(ctx, adapterID,
		`UPDATE dict_sources SET checked_at = ?, check_status = ?, check_error = ? WHERE adapter_id = ?`,
		time.Now().Unix(), status, msg, adapterID)
}

// RecordImport stores a successful import.
func (s *SourceDB) RecordImport(ctx context.Context, r *Report) error {
	return s.update(ctx, r.AdapterID,
		`UPDATE dict_sources SET imported_at = ?, import_rows = ? WHERE adapter_id = ?`,
		time.Now().Unix(), r.Rows, r.AdapterID)
}

func (s *SourceDB) update(ctx context.Context, adapterID, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", adapterID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %q", ErrUnknownSource, adapterID)
	}
	return nil
}

// List returns every source ordered by adapter ID.
func (s *SourceDB) List(ctx context.Context) ([]Source, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT adapter_id, dict_id, description, source_url, license,
		checked_at, check_status, check_error, imported_at, import_rows, updated_at
		FROM dict_sources ORDER BY adapter_id`)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var out []Source
	for rows.Next() {
		var (
			src                   Source
			checkedAt, importedAt sql.NullInt64
			status, importRows    sql.NullInt64
			checkErr              sql.NullString
			updatedAt             int64
		)
		if err := rows.Scan(&src.AdapterID, &src.DictID, &src.Description, &src.URL, &src.License,
			&checkedAt, &status, &checkErr, &importedAt, &importRows, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		src.CheckedAt = unixOrZero(checkedAt)
		src.CheckStatus = int(status.Int64)
		src.CheckError = checkErr.String
		src.ImportedAt = unixOrZero(importedAt)
		src.ImportRows = int(importRows.Int64)
		src.UpdatedAt = time.Unix(updatedAt, 0)
		out = append(out, src)
	}
	return out, rows.Err()
}

func unixOrZero(v sql.NullInt64) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	return time.Unix(v.Int64, 0)
}
