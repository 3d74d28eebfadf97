// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfdoc opens PDF manuals and exposes the per-page operations the
// extraction pipeline needs: the embedded text layer, the embedded image
// inventory, and raster rendering for OCR.
package pdfdoc

import (
	"context"
	"errors"
	"fmt"
	"image"
)

// Document is an open PDF. Page numbers are 1-based. Implementations are not
// safe for concurrent use; each pipeline run owns its document exclusively.
type Document interface {
	// Path returns the file the document was opened from.
	Path() string

	// NumPages returns the number of pages.
	NumPages() int

	// PageText returns the embedded text layer of page n verbatim.
	PageText(n int) (string, error)

	// PageImages returns the number of raster images embedded in page n.
	PageImages(n int) (int, error)

	// RenderPage rasterizes page n at the given resolution.
	RenderPage(ctx context.Context, n int, dpi float64) (image.Image, error)

	// Close releases the document.
	Close() error
}

// Opener opens a Document from a file path.
type Opener interface {
	Open(path string) (Document, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(path string) (Document, error)

// Open calls f(path).
func (f OpenerFunc) Open(path string) (Document, error) { return f(path) }

// OpenError reports a file that is missing, unreadable, or not a valid PDF.
// The remedy is to re-download the manual.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("opening document %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// IsOpenError reports whether err is, or wraps, an *OpenError.
func IsOpenError(err error) bool {
	var oe *OpenError
	return errors.As(err, &oe)
}

// checkPage validates a 1-based page number against the page count.
func checkPage(n, total int) error {
	if n < 1 || n > total {
		return fmt.Errorf("page %d out of range (document has %d pages)", n, total)
	}
	return nil
}
