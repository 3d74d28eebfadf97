// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify decides whether a PDF's embedded text layer is usable or
// whether the document is a scan that needs OCR.
package classify

import (
	"fmt"
	"strings"

	"github.com/pdiddy/fieldguide/internal/pdfdoc"
	"github.com/pdiddy/fieldguide/pkg/types"
)

// DefaultMinTextChars is the trimmed text length below which a document
// carrying images is treated as image-only.
const DefaultMinTextChars = 500

// Decision is the classifier verdict together with the measurements it was
// based on.
type Decision struct {
	Method types.ExtractionMethod

	// Pages is the document page count.
	Pages int

	// TextChars is the summed length of each page's trimmed text layer.
	TextChars int

	// Images is the number of embedded raster images across all pages. It is
	// only counted when TextChars falls below the threshold, and is zero
	// otherwise.
	Images int
}

// NeedsOCR reports whether the verdict is OCR.
func (d Decision) NeedsOCR() bool { return d.Method == types.MethodOCR }

// Notes returns a short human description for the check report.
func (d Decision) Notes() string {
	if d.NeedsOCR() {
		return "image-based"
	}
	return "text-based"
}

// Classify inspects doc and returns Native or OCR. A document is OCR only when
// its trimmed text totals fewer than cfg.MinTextChars characters and it
// embeds at least one image; a short document without images stays Native.
// Images are not inspected when the text layer alone settles the verdict.
// The document is only read.
func Classify(doc pdfdoc.Document, cfg types.ClassifierConfig) (Decision, error) {
	minChars := cfg.MinTextChars
	if minChars <= 0 {
		minChars = DefaultMinTextChars
	}

	d := Decision{Method: types.MethodNative, Pages: doc.NumPages()}
	for n := 1; n <= d.Pages; n++ {
		text, err := doc.PageText(n)
		if err != nil {
			return Decision{}, fmt.Errorf("classifying page %d: %w", n, err)
		}
		d.TextChars += len(strings.TrimSpace(text))
	}
	if d.TextChars >= minChars {
		return d, nil
	}

	for n := 1; n <= d.Pages; n++ {
		images, err := doc.PageImages(n)
		if err != nil {
			return Decision{}, fmt.Errorf("counting images on page %d: %w", n, err)
		}
		d.Images += images
	}
	if d.Images > 0 {
		d.Method = types.MethodOCR
	}
	return d, nil
}
