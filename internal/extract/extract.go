// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract produces ordered per-page text from an open PDF, either
// from the embedded text layer or by rendering each page and running OCR.
package extract

import (
	"context"
	"fmt"

	"github.com/pdiddy/fieldguide/internal/pdfdoc"
	"github.com/pdiddy/fieldguide/pkg/types"
)

// Extractor turns a document into pages numbered 1..N in document order.
// NativeExtractor and OCRExtractor implement it; the classifier picks one.
type Extractor interface {
	// Method reports which extraction path this extractor implements.
	Method() types.ExtractionMethod

	// Extract returns one Page per document page.
	Extract(ctx context.Context, doc pdfdoc.Document) ([]types.Page, error)
}

// NativeExtractor reads the embedded text layer.
type NativeExtractor struct{}

func (NativeExtractor) Method() types.ExtractionMethod { return types.MethodNative }

// Extract returns each page's text layer verbatim. Line breaks and
// whitespace are preserved because structural inference is line-anchored.
func (NativeExtractor) Extract(ctx context.Context, doc pdfdoc.Document) ([]types.Page, error) {
	n := doc.NumPages()
	pages := make([]types.Page, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := doc.PageText(i)
		if err != nil {
			return nil, &pdfdoc.OpenError{Path: doc.Path(), Err: fmt.Errorf("page %d: %w", i, err)}
		}
		pages = append(pages, types.Page{Number: i, Text: text})
	}
	return pages, nil
}
