// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one manual through open, classify, extract, infer,
// assemble and write, and drives batches of manuals.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/pdiddy/fieldguide/internal/classify"
	"github.com/pdiddy/fieldguide/internal/extract"
	"github.com/pdiddy/fieldguide/internal/infer"
	"github.com/pdiddy/fieldguide/internal/ocr"
	"github.com/pdiddy/fieldguide/internal/output"
	"github.com/pdiddy/fieldguide/internal/pdfdoc"
	"github.com/pdiddy/fieldguide/internal/skeleton"
	"github.com/pdiddy/fieldguide/pkg/types"
)

// Stage names the pipeline step an error came from.
type Stage string

const (
	StageOpen     Stage = "open"
	StageClassify Stage = "classify"
	StageExtract  Stage = "extract"
	StageWrite    Stage = "write"
	StageAssemble Stage = "assemble"
	StageRecord   Stage = "record"
)

// StageError attributes a failure to a manual and a stage.
type StageError struct {
	RadioID string
	Stage   Stage
	Err     error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.RadioID, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// StageOf returns the stage of the first StageError in err's chain.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}

// Recorder persists a finished run. The extraction ledger implements it.
type Recorder interface {
	Record(ctx context.Context, res Result) error
}

// Result is everything one run produced.
type Result struct {
	Manual       types.Manual
	PDFPath      string
	Decision     classify.Decision
	Method       types.ExtractionMethod
	Pages        []types.Page
	Structure    infer.Structure
	Skeleton     types.Skeleton
	RawTextPath  string
	SkeletonPath string
}

// Runner holds the collaborators of a pipeline run. Runner is safe for
// concurrent use when its Opener, extractors and Recorder are.
type Runner struct {
	Opener pdfdoc.Opener
	Native extract.Extractor

	// OCR is copied per run so each document gets its own progress
	// callback. A nil OCR makes every OCR-bound document fail with
	// ocr.ErrEngineUnavailable.
	OCR *extract.OCRExtractor

	Classifier types.ClassifierConfig

	// Rules defaults to infer.DefaultRules when either pattern is unset.
	Rules infer.Rules

	Template  skeleton.Template
	OutputDir string

	// ForceOCR routes every document through OCR regardless of the
	// classifier verdict.
	ForceOCR bool

	// Progress, when set, receives OCR page progress tagged with the radio id.
	Progress func(radioID string, p extract.Progress)

	// Recorder, when set, is called after outputs are written.
	Recorder Recorder

	Logger *slog.Logger
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (r *Runner) rules() infer.Rules {
	if r.Rules.TOC == nil || r.Rules.MenuHeader == nil {
		return infer.DefaultRules()
	}
	return r.Rules
}

func (r *Runner) extractor(radioID string, method types.ExtractionMethod) (extract.Extractor, error) {
	if method == types.MethodNative {
		if r.Native == nil {
			return extract.NativeExtractor{}, nil
		}
		return r.Native, nil
	}
	if r.OCR == nil {
		return nil, fmt.Errorf("%w: no OCR extractor configured", ocr.ErrEngineUnavailable)
	}
	x := *r.OCR
	if r.Progress != nil {
		x.Progress = func(p extract.Progress) { r.Progress(radioID, p) }
	}
	return &x, nil
}

// Run processes the manual stored at pdfPath. The document is closed on
// every return path. Errors are *StageError values.
func (r *Runner) Run(ctx context.Context, m types.Manual, pdfPath string) (Result, error) {
	log := r.logger().With("radio", m.ID)
	res := Result{Manual: m, PDFPath: pdfPath}
	fail := func(stage Stage, err error) (Result, error) {
		return Result{}, &StageError{RadioID: m.ID, Stage: stage, Err: err}
	}

	doc, err := r.Opener.Open(pdfPath)
	if err != nil {
		return fail(StageOpen, err)
	}
	defer doc.Close()

	res.Decision, err = classify.Classify(doc, r.Classifier)
	if err != nil {
		return fail(StageClassify, err)
	}
	res.Method = res.Decision.Method
	if r.ForceOCR || m.ForceOCR {
		res.Method = types.MethodOCR
	}
	log.Debug("classified",
		"verdict", res.Decision.Method,
		"method", res.Method,
		"pages", res.Decision.Pages,
		"text_chars", res.Decision.TextChars,
		"images", res.Decision.Images)

	x, err := r.extractor(m.ID, res.Method)
	if err != nil {
		return fail(StageExtract, err)
	}
	res.Pages, err = x.Extract(ctx, doc)
	if err != nil {
		return fail(StageExtract, err)
	}

	res.RawTextPath = output.RawTextPath(r.OutputDir, m.ID, res.Method)
	if err := output.SaveRawText(res.RawTextPath, res.Pages); err != nil {
		return fail(StageWrite, err)
	}

	res.Structure = infer.Infer(res.Pages, r.rules())
	for _, rej := range res.Structure.Rejected {
		log.Debug("rejected menu candidate", "page", rej.Page, "name", rej.Name, "reason", rej.Reason)
	}

	tmpl := r.Template
	if len(tmpl) == 0 {
		tmpl = skeleton.TemplateFrom(nil)
	}
	var opts []skeleton.Option
	if len(res.Structure.Menu) > 0 {
		opts = append(opts, skeleton.WithMenuEntries(res.Structure.Menu))
	}
	res.Skeleton = tmpl.Assemble(m.Radio(), res.Pages, res.Structure.TOC, res.Method, opts...)
	data, err := output.MarshalSkeleton(res.Skeleton)
	if err != nil {
		return fail(StageAssemble, err)
	}

	res.SkeletonPath = output.SkeletonPath(r.OutputDir, m.ID, res.Method)
	if err := output.WriteFile(res.SkeletonPath, data); err != nil {
		return fail(StageWrite, err)
	}

	if r.Recorder != nil {
		if err := r.Recorder.Record(ctx, res); err != nil {
			return fail(StageRecord, err)
		}
	}

	log.Info("extracted",
		"method", res.Method,
		"pages", len(res.Pages),
		"toc", len(res.Structure.TOC),
		"menu", len(res.Structure.Menu))
	return res, nil
}
