// Package store persists analysis results in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/dgallion1/pdfstruct/internal/structure"
)

// ErrNotFound is returned when no analysis matches.
var ErrNotFound = errors.New("analysis not found")

// Fixed-width timestamps keep created_at sortable as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL,
	doc_id       TEXT NOT NULL,
	filename     TEXT NOT NULL,
	format       TEXT NOT NULL DEFAULT '',
	content_hash TEXT NOT NULL,
	title        TEXT NOT NULL DEFAULT '',
	pages        INTEGER NOT NULL DEFAULT 0,
	result_json  TEXT NOT NULL,
	raw_text     TEXT NOT NULL DEFAULT '',
	created_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analyses_user_hash ON analyses(user_id, content_hash);
CREATE INDEX IF NOT EXISTS idx_analyses_user_created ON analyses(user_id, created_at);
`

// Analysis is one stored analysis result.
type Analysis struct {
	ID          string                    `json:"id"`
	UserID      string                    `json:"user_id"`
	DocID       string                    `json:"doc_id"`
	Filename    string                    `json:"filename"`
	Format      string                    `json:"format"`
	ContentHash string                    `json:"content_hash"`
	CreatedAt   time.Time                 `json:"created_at"`
	Result      *structure.AnalysisResult `json:"result"`
	RawText     string                    `json:"raw_text,omitempty"`
}

// Store is a SQLite-backed analysis repository.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path with WAL, a busy timeout and
// foreign keys enabled. Use ":memory:" for an in-process database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if path == ":memory:" {
		// Each connection to ":memory:" is a separate database.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: schema: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts a, assigning an ID and creation time when unset.
func (s *Store) Save(ctx context.Context, a *Analysis) error {
	if a.Result == nil {
		return fmt.Errorf("save analysis: missing result")
	}
	if a.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate id: %w", err)
		}
		a.ID = id.String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(a.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analyses (id, user_id, doc_id, filename, format, content_hash, title, pages, result_json, raw_text, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.DocID, a.Filename, a.Format, a.ContentHash,
		a.Result.Metadata.Title, a.Result.Metadata.Pages, string(data), a.RawText,
		a.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

const selectCols = `id, user_id, doc_id, filename, format, content_hash, result_json, raw_text, created_at`

// Get returns the analysis with id, including its raw text.
func (s *Store) Get(ctx context.Context, id string) (*Analysis, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectCols+` FROM analyses WHERE id = ?`, id)
	return scanAnalysis(row)
}

// FindByHash returns the newest analysis of the same content for a user.
func (s *Store) FindByHash(ctx context.Context, userID, hash string) (*Analysis, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectCols+` FROM analyses
		WHERE user_id = ? AND content_hash = ?
		ORDER BY created_at DESC LIMIT 1`, userID, hash)
	return scanAnalysis(row)
}

// List returns a user's analyses, newest first, without raw text.
func (s *Store) List(ctx context.Context, userID string, limit int) ([]*Analysis, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectCols+` FROM analyses
		WHERE user_id = ?
		ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	out := []*Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		a.RawText = ""
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	return out, nil
}

// Delete removes an analysis. It returns ErrNotFound if id does not exist.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete analysis: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete analysis: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row scanner) (*Analysis, error) {
	var a Analysis
	var resultJSON, created string
	err := row.Scan(&a.ID, &a.UserID, &a.DocID, &a.Filename, &a.Format, &a.ContentHash, &resultJSON, &a.RawText, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan analysis: %w", err)
	}
	a.Result = structure.NewResult()
	if err := json.Unmarshal([]byte(resultJSON), a.Result); err != nil {
		return nil, fmt.Errorf("decode result %s: %w", a.ID, err)
	}
	if t, err := time.Parse(timeLayout, created); err == nil {
		a.CreatedAt = t
	}
	return &a, nil
}
