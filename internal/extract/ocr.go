// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"

	"github.com/pdiddy/fieldguide/internal/ocr"
	"github.com/pdiddy/fieldguide/internal/pdfdoc"
	"github.com/pdiddy/fieldguide/pkg/types"
)

const (
	// DefaultDPI is the OCR rendering resolution: the lowest that keeps
	// recognition accurate on manual typography (scale 150/72).
	DefaultDPI = 150.0

	// DefaultLanguage is the tesseract language model.
	DefaultLanguage = "eng"
)

// Progress reports a finished OCR page.
type Progress struct {
	Page  int
	Total int
	Chars int
}

// ProgressFunc receives progress after each recognized page.
type ProgressFunc func(Progress)

// RecognitionError reports a page the engine could not process. It aborts
// the whole document: downstream inference needs a contiguous page run.
type RecognitionError struct {
	Page int
	Err  error
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("recognizing page %d: %v", e.Page, e.Err)
}

func (e *RecognitionError) Unwrap() error { return e.Err }

// OCRExtractor renders each page and runs text recognition on it.
type OCRExtractor struct {
	Engine   ocr.Engine
	DPI      float64
	Language string

	// Progress, when set, is called after every page.
	Progress ProgressFunc
}

func (x *OCRExtractor) Method() types.ExtractionMethod { return types.MethodOCR }

// Extract checks the engine before touching the document, then renders and
// recognizes pages in order. An engine that is not installed yields an error
// wrapping ocr.ErrEngineUnavailable; a failing page yields *RecognitionError.
func (x *OCRExtractor) Extract(ctx context.Context, doc pdfdoc.Document) ([]types.Page, error) {
	if x.Engine == nil {
		return nil, fmt.Errorf("%w: no engine configured", ocr.ErrEngineUnavailable)
	}
	dpi := x.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	lang := x.Language
	if lang == "" {
		lang = DefaultLanguage
	}

	if err := x.Engine.Check(ctx, lang); err != nil {
		return nil, err
	}

	total := doc.NumPages()
	pages := make([]types.Page, 0, total)
	var buf bytes.Buffer
	for n := 1; n <= total; n++ {
		img, err := doc.RenderPage(ctx, n, dpi)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, &RecognitionError{Page: n, Err: err}
		}

		buf.Reset()
		if err := png.Encode(&buf, img); err != nil {
			return nil, &RecognitionError{Page: n, Err: fmt.Errorf("encoding PNG: %w", err)}
		}

		text, err := x.Engine.Recognize(ctx, buf.Bytes(), lang)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if errors.Is(err, ocr.ErrEngineUnavailable) {
				return nil, err
			}
			return nil, &RecognitionError{Page: n, Err: err}
		}

		pages = append(pages, types.Page{Number: n, Text: text})
		if x.Progress != nil {
			x.Progress(Progress{Page: n, Total: total, Chars: len(text)})
		}
	}
	return pages, nil
}
