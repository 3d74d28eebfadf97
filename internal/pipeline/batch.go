// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/fieldguide/pkg/types"
)

// BatchResult holds the outcome of a batch extraction run.
type BatchResult struct {
	Extracted int
	Missing   int
	Failed    int

	// Results holds successful runs in catalog order.
	Results []Result

	// Errors maps radio ids to their failure.
	Errors map[string]error
}

// Total returns the total number of manuals processed.
func (r BatchResult) Total() int {
	return r.Extracted + r.Missing + r.Failed
}

// HasFailures reports whether any manual failed extraction.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// PDFPath returns where the manual's PDF is expected under pdfDir.
func PDFPath(pdfDir string, m types.Manual) string {
	return filepath.Join(pdfDir, m.Filename)
}

// RunBatch extracts every manual whose PDF exists under pdfDir, writing
// per-manual status lines and a summary to w. A failing manual never stops
// the batch. With jobs > 1 manuals are processed concurrently; the lines of
// one manual are never interleaved with another's.
func (r *Runner) RunBatch(ctx context.Context, manuals []types.Manual, pdfDir string, jobs int, w io.Writer) BatchResult {
	if jobs < 1 {
		jobs = 1
	}

	var (
		mu      sync.Mutex
		result  = BatchResult{Errors: map[string]error{}}
		results = make([]*Result, len(manuals))
	)
	report := func(format string, a ...any) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, format, a...)
	}

	var g errgroup.Group
	g.SetLimit(jobs)
	for i, m := range manuals {
		g.Go(func() error {
			path := PDFPath(pdfDir, m)
			if _, err := os.Stat(path); err != nil {
				report("missing:   %s (%s)\n", m.ID, path)
				mu.Lock()
				result.Missing++
				mu.Unlock()
				return nil
			}

			res, err := r.Run(ctx, m, path)
			if err != nil {
				report("failed:    %s (%v)\n", m.ID, Describe(err))
				mu.Lock()
				result.Failed++
				result.Errors[m.ID] = err
				mu.Unlock()
				return nil
			}

			report("extracted: %s (%s, %d pages, %d toc, %d menu) -> %s\n",
				m.ID, res.Method, len(res.Pages), len(res.Structure.TOC), len(res.Structure.Menu), res.SkeletonPath)
			mu.Lock()
			result.Extracted++
			results[i] = &res
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	for _, res := range results {
		if res != nil {
			result.Results = append(result.Results, *res)
		}
	}

	fmt.Fprintf(w, "\nBatch summary: %d extracted, %d missing, %d failed (total: %d)\n",
		result.Extracted, result.Missing, result.Failed, result.Total())
	return result
}

// Describe renders a run error as "<stage>: <cause>" without repeating the
// radio id the status line already names.
func Describe(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return fmt.Sprintf("%s: %v", se.Stage, se.Err)
	}
	return err.Error()
}
