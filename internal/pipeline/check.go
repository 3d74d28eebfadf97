// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdiddy/fieldguide/internal/classify"
	"github.com/pdiddy/fieldguide/pkg/types"
)

// CheckResult is one row of the diagnostic report.
type CheckResult struct {
	Manual   types.Manual
	Path     string
	Missing  bool
	SizeMB   float64
	Decision classify.Decision
	Err      error
}

// Method returns the report's method column.
func (c CheckResult) Method() string {
	switch {
	case c.Missing:
		return "missing"
	case c.Err != nil:
		return "error"
	}
	return c.Decision.Method.Label()
}

// Notes returns the report's notes column.
func (c CheckResult) Notes() string {
	switch {
	case c.Missing:
		return "PDF not downloaded"
	case c.Err != nil:
		msg := []rune(c.Err.Error())
		if len(msg) > 30 {
			msg = msg[:30]
		}
		return string(msg)
	}
	return c.Decision.Notes()
}

// Check classifies each manual without extracting and writes a table of
// radio id, PDF size, method and notes to w.
func (r *Runner) Check(ctx context.Context, manuals []types.Manual, pdfDir string, w io.Writer) []CheckResult {
	fmt.Fprintf(w, "%-25s %10s %-10s %s\n", "Radio ID", "PDF Size", "Method", "Notes")
	fmt.Fprintln(w, strings.Repeat("-", 70))

	rows := make([]CheckResult, 0, len(manuals))
	for _, m := range manuals {
		if ctx.Err() != nil {
			break
		}
		row := r.check(m, PDFPath(pdfDir, m))
		rows = append(rows, row)

		size := "N/A"
		if !row.Missing {
			size = fmt.Sprintf("%9.1fM", row.SizeMB)
		}
		fmt.Fprintf(w, "%-25s %10s %-10s %s\n", m.ID, size, row.Method(), row.Notes())
	}
	return rows
}

func (r *Runner) check(m types.Manual, path string) CheckResult {
	row := CheckResult{Manual: m, Path: path}
	info, err := os.Stat(path)
	if err != nil {
		row.Missing = true
		return row
	}
	row.SizeMB = float64(info.Size()) / (1024 * 1024)

	doc, err := r.Opener.Open(path)
	if err != nil {
		row.Err = err
		return row
	}
	defer doc.Close()

	row.Decision, row.Err = classify.Classify(doc, r.Classifier)
	return row
}
