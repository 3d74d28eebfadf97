// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records extraction runs in a SQLite database and indexes
// page text for full-text search.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/fieldguide/internal/pipeline"
)

const (
	indexDir = "index"
	dbFile   = "extraction.db"

	defaultLimit = 20
)

// Run is one recorded extraction.
type Run struct {
	ID         string    `json:"id" yaml:"id"`
	RadioID    string    `json:"radio_id" yaml:"radio_id"`
	Method     string    `json:"method" yaml:"method"`
	PageCount  int       `json:"page_count" yaml:"page_count"`
	TOCCount   int       `json:"toc_count" yaml:"toc_count"`
	MenuCount  int       `json:"menu_count" yaml:"menu_count"`
	PDFPath    string    `json:"pdf_path" yaml:"pdf_path"`
	PDFModTime time.Time `json:"pdf_mod_time" yaml:"pdf_mod_time"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
}

// Hit is a page matching a search query.
type Hit struct {
	RunID   string `json:"run_id" yaml:"run_id"`
	RadioID string `json:"radio_id" yaml:"radio_id"`
	Page    int    `json:"page" yaml:"page"`
	Snippet string `json:"snippet" yaml:"snippet"`
}

// Ledger manages the extraction database.
type Ledger struct {
	db  *sql.DB
	now func() time.Time
}

var _ pipeline.Recorder = (*Ledger)(nil)

// Path returns the database location for an output directory.
func Path(outputDir string) string {
	return filepath.Join(outputDir, indexDir, dbFile)
}

// Open opens or creates the ledger at outputDir/index/extraction.db and
// creates the schema if it does not exist.
func Open(outputDir string) (*Ledger, error) {
	dbPath := Path(outputDir)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	l := &Ledger{db: db, now: time.Now}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return l, nil
}

// Close releases the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			radio_id TEXT NOT NULL,
			method TEXT NOT NULL,
			page_count INTEGER NOT NULL,
			toc_count INTEGER NOT NULL,
			menu_count INTEGER NOT NULL,
			pdf_path TEXT,
			pdf_mod_time TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_radio_id ON runs(radio_id)`,
		`CREATE TABLE IF NOT EXISTS pages (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			radio_id TEXT NOT NULL,
			page INTEGER NOT NULL,
			text TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pages_radio_id ON pages(radio_id)`,
	}
	for _, stmt := range statements {
		if _, err := l.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := l.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='pages_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		return nil
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE pages_fts USING fts5(text, content=pages, content_rowid=rowid)`,
		`CREATE TRIGGER pages_ai AFTER INSERT ON pages BEGIN
			INSERT INTO pages_fts(rowid, text) VALUES (new.rowid, new.text);
		END`,
		`CREATE TRIGGER pages_ad AFTER DELETE ON pages BEGIN
			INSERT INTO pages_fts(pages_fts, rowid, text) VALUES('delete', old.rowid, old.text);
		END`,
		`CREATE TRIGGER pages_au AFTER UPDATE ON pages BEGIN
			INSERT INTO pages_fts(pages_fts, rowid, text) VALUES('delete', old.rowid, old.text);
			INSERT INTO pages_fts(rowid, text) VALUES (new.rowid, new.text);
		END`,
	}
	for _, stmt := range ftsStatements {
		if _, err := l.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	return nil
}

// Record stores a finished run and replaces the radio's indexed pages with
// the run's pages.
func (l *Ledger) Record(ctx context.Context, res pipeline.Result) error {
	_, err := l.RecordRun(ctx, res)
	return err
}

// RecordRun is Record returning the stored run.
func (l *Ledger) RecordRun(ctx context.Context, res pipeline.Result) (Run, error) {
	run := Run{
		ID:        uuid.NewString(),
		RadioID:   res.Manual.ID,
		Method:    res.Method.String(),
		PageCount: len(res.Pages),
		TOCCount:  len(res.Structure.TOC),
		MenuCount: len(res.Structure.Menu),
		PDFPath:   res.PDFPath,
		CreatedAt: l.now().UTC(),
	}
	if info, err := os.Stat(res.PDFPath); err == nil {
		run.PDFModTime = info.ModTime().UTC()
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM pages WHERE radio_id = ?`, run.RadioID); err != nil {
		return Run{}, fmt.Errorf("deleting old pages: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, radio_id, method, page_count, toc_count, menu_count, pdf_path, pdf_mod_time, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.RadioID, run.Method, run.PageCount, run.TOCCount, run.MenuCount,
		run.PDFPath, formatTime(run.PDFModTime), formatTime(run.CreatedAt),
	)
	if err != nil {
		return Run{}, fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO pages (run_id, radio_id, page, text) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return Run{}, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range res.Pages {
		if _, err := stmt.ExecContext(ctx, run.ID, run.RadioID, p.Number, p.Text); err != nil {
			return Run{}, fmt.Errorf("inserting page %d: %w", p.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("committing run: %w", err)
	}
	return run, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}
