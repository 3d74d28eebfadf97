// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Search runs an FTS5 query over indexed page text, optionally restricted
// to one radio. Hits are ranked by relevance.
func (l *Ledger) Search(ctx context.Context, query, radioID string, limit int) ([]Hit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query required")
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	var (
		qb   strings.Builder
		args = []any{query}
	)
	qb.WriteString(
		`SELECT p.run_id, p.radio_id, p.page, snippet(pages_fts, 0, '[', ']', '...', 12)
		FROM pages_fts
		JOIN pages p ON p.rowid = pages_fts.rowid
		WHERE pages_fts MATCH ?`)
	if radioID != "" {
		qb.WriteString(` AND p.radio_id = ?`)
		args = append(args, radioID)
	}
	qb.WriteString(` ORDER BY pages_fts.rank LIMIT ?`)
	args = append(args, limit)

	rows, err := l.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("searching pages: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.RunID, &h.RadioID, &h.Page, &h.Snippet); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

const runColumns = `id, radio_id, method, page_count, toc_count, menu_count, pdf_path, pdf_mod_time, created_at`

func scanRun(sc interface{ Scan(...any) error }) (Run, error) {
	var (
		r                  Run
		pdfPath            sql.NullString
		modTime, createdAt sql.NullString
	)
	if err := sc.Scan(&r.ID, &r.RadioID, &r.Method, &r.PageCount, &r.TOCCount, &r.MenuCount,
		&pdfPath, &modTime, &createdAt); err != nil {
		return Run{}, err
	}
	r.PDFPath = pdfPath.String
	r.PDFModTime = parseTime(modTime)
	r.CreatedAt = parseTime(createdAt)
	return r, nil
}

// Runs lists recorded runs, newest first.
func (l *Ledger) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Latest returns the newest run for radioID. ok is false when the radio has
// never been recorded.
func (l *Ledger) Latest(ctx context.Context, radioID string) (run Run, ok bool, err error) {
	row := l.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE radio_id = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`, radioID)
	run, err = scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, fmt.Errorf("looking up run: %w", err)
	}
	return run, true, nil
}

// Current reports whether the newest run for radioID was made from a PDF
// with the given modification time, meaning re-extraction would repeat it.
func (l *Ledger) Current(ctx context.Context, radioID string, pdfModTime time.Time) (bool, error) {
	run, ok, err := l.Latest(ctx, radioID)
	if err != nil || !ok {
		return false, err
	}
	return !run.PDFModTime.IsZero() && run.PDFModTime.Equal(pdfModTime.UTC()), nil
}
