// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/fieldguide/internal/extract"
	"github.com/pdiddy/fieldguide/internal/infer"
	"github.com/pdiddy/fieldguide/internal/ocr"
	"github.com/pdiddy/fieldguide/internal/output"
	"github.com/pdiddy/fieldguide/internal/pdfdoc"
	"github.com/pdiddy/fieldguide/internal/pdfdoc/pdfdoctest"
	"github.com/pdiddy/fieldguide/internal/skeleton"
	"github.com/pdiddy/fieldguide/pkg/types"
)

// stubEngine recognizes every page as the same text.
type stubEngine struct {
	checkErr error
	text     string

	mu    sync.Mutex
	calls int
}

func (s *stubEngine) Name() string { return "stub" }

func (s *stubEngine) Check(ctx context.Context, lang string) error { return s.checkErr }

func (s *stubEngine) Recognize(ctx context.Context, png []byte, lang string) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.text, nil
}

type fakeRecorder struct {
	err     error
	results []Result
}

func (f *fakeRecorder) Record(ctx context.Context, res Result) error {
	if f.err != nil {
		return f.err
	}
	f.results = append(f.results, res)
	return nil
}

const (
	menuPage = "MENU SYSTEM\n\nCW SPEED - Sets keying speed.\n"
	tocPage  = "Table of Contents\nOperation.......... 3\n"
)

func manual(id, filename string) types.Manual {
	return types.Manual{ID: id, Manufacturer: "Elecraft", Name: strings.ToUpper(id), Revision: "A", Filename: filename}
}

// scannedDoc is a document with images and almost no text.
func scannedDoc(name string, pages int) *pdfdoctest.Doc {
	d := &pdfdoctest.Doc{Name: name}
	for i := 0; i < pages; i++ {
		d.Pages = append(d.Pages, pdfdoctest.Page{Text: " ", Images: 1})
	}
	return d
}

func newRunner(t *testing.T, opener pdfdoc.Opener, engine ocr.Engine) *Runner {
	t.Helper()
	r := &Runner{
		Opener:    opener,
		Native:    extract.NativeExtractor{},
		Rules:     infer.DefaultRules(),
		OutputDir: t.TempDir(),
	}
	if engine != nil {
		r.OCR = &extract.OCRExtractor{Engine: engine}
	}
	return r
}

func TestRun_NativeEndToEnd(t *testing.T) {
	doc := pdfdoctest.New("kx2.pdf", menuPage, tocPage)
	opener := &pdfdoctest.Opener{Docs: map[string]*pdfdoctest.Doc{"kx2.pdf": doc}}
	rec := &fakeRecorder{}
	r := newRunner(t, opener, nil)
	r.Recorder = rec

	res, err := r.Run(context.Background(), manual("elecraft-kx2", "kx2.pdf"), "kx2.pdf")
	require.NoError(t, err)

	assert.True(t, doc.Closed)
	assert.Equal(t, types.MethodNative, res.Method)
	assert.Equal(t, types.MethodNative, res.Skeleton.ExtractionMethod)
	assert.Equal(t, 2, res.Skeleton.PageCount)
	assert.Equal(t, []types.TOCEntry{{Title: "Operation", Page: 3}}, res.Skeleton.ExtractedTOC)
	assert.Equal(t, []types.MenuEntry{{Type: types.MenuEntryType, Name: "CW SPEED", Description: "Sets keying speed."}}, res.Skeleton.ExtractedMenu)
	require.Len(t, res.Skeleton.Sections, 8)
	assert.Equal(t, "elecraft-kx2-operation-basics", res.Skeleton.Sections[0].ID)

	assert.Equal(t, filepath.Join(r.OutputDir, "elecraft-kx2_raw_text.txt"), res.RawTextPath)
	assert.Equal(t, filepath.Join(r.OutputDir, "elecraft-kx2_skeleton.json"), res.SkeletonPath)

	raw, err := os.ReadFile(res.RawTextPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "PAGE 2\n")
	assert.Contains(t, string(raw), tocPage)

	written, err := output.ReadSkeleton(res.SkeletonPath)
	require.NoError(t, err)
	assert.Equal(t, res.Skeleton, written)

	require.Len(t, rec.results, 1)
	assert.Equal(t, "elecraft-kx2", rec.results[0].Manual.ID)
}

func TestRun_OCRPath(t *testing.T) {
	doc := scannedDoc("sw6b.pdf", 3)
	opener := &pdfdoctest.Opener{Docs: map[string]*pdfdoctest.Doc{"sw6b.pdf": doc}}
	engine := &stubEngine{text: "POWER - Sets the output power level.\n"}
	r := newRunner(t, opener, engine)

	var progress []string
	r.Progress = func(id string, p extract.Progress) {
		progress = append(progress, fmt.Sprintf("%s %d/%d", id, p.Page, p.Total))
	}

	res, err := r.Run(context.Background(), manual("venus-sw6b", "sw6b.pdf"), "sw6b.pdf")
	require.NoError(t, err)

	assert.True(t, res.Decision.NeedsOCR())
	assert.Equal(t, types.MethodOCR, res.Method)
	assert.Equal(t, types.MethodOCR, res.Skeleton.ExtractionMethod)
	assert.Equal(t, 3, engine.calls)
	assert.Equal(t, []string{"venus-sw6b 1/3", "venus-sw6b 2/3", "venus-sw6b 3/3"}, progress)
	assert.Len(t, res.Structure.Menu, 3)
	assert.True(t, strings.HasSuffix(res.RawTextPath, "venus-sw6b_raw_text_ocr.txt"))
	assert.True(t, strings.HasSuffix(res.SkeletonPath, "venus-sw6b_skeleton_ocr.json"))
	assert.Equal(t, "[TODO: Extract Operation Basics content from OCR text]", res.Skeleton.Sections[0].Blocks[0].Text)
	assert.Nil(t, r.OCR.Progress, "per-run progress must not leak into the shared extractor")
}

func TestRun_ForceOCR(t *testing.T) {
	tests := []struct {
		name        string
		runnerForce bool
		manualForce bool
		want        types.ExtractionMethod
	}{
		{"classifier verdict", false, false, types.MethodNative},
		{"runner flag", true, false, types.MethodOCR},
		{"catalog flag", false, true, types.MethodOCR},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := pdfdoctest.New("a.pdf", strings.Repeat("text ", 200))
			opener := &pdfdoctest.Opener{Docs: map[string]*pdfdoctest.Doc{"a.pdf": doc}}
			r := newRunner(t, opener, &stubEngine{text: "ocr"})
			r.ForceOCR = tt.runnerForce
			m := manual("a", "a.pdf")
			m.ForceOCR = tt.manualForce

			res, err := r.Run(context.Background(), m, "a.pdf")
			require.NoError(t, err)
			assert.Equal(t, types.MethodNative, res.Decision.Method)
			assert.Equal(t, tt.want, res.Method)
			assert.Equal(t, tt.want, res.Skeleton.ExtractionMethod)
		})
	}
}

func TestRun_Errors(t *testing.T) {
	pageErr := errors.New("corrupt content stream")

	tests := []struct {
		name      string
		doc       *pdfdoctest.Doc
		engine    ocr.Engine
		recordErr error
		wantStage Stage
		check     func(t *testing.T, err error)
	}{
		{
			name:      "open failure",
			doc:       nil,
			wantStage: StageOpen,
			check: func(t *testing.T, err error) {
				assert.True(t, pdfdoc.IsOpenError(err))
			},
		},
		{
			name:      "classify failure",
			doc:       &pdfdoctest.Doc{Name: "x.pdf", Pages: []pdfdoctest.Page{{Text: "a"}}, TextErr: map[int]error{1: pageErr}},
			wantStage: StageClassify,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, pageErr)
			},
		},
		{
			name:      "engine unavailable",
			doc:       scannedDoc("x.pdf", 2),
			engine:    &stubEngine{checkErr: fmt.Errorf("%w: tesseract not found", ocr.ErrEngineUnavailable)},
			wantStage: StageExtract,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ocr.ErrEngineUnavailable)
			},
		},
		{
			name:      "no OCR extractor",
			doc:       scannedDoc("x.pdf", 1),
			wantStage: StageExtract,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ocr.ErrEngineUnavailable)
			},
		},
		{
			name:      "record failure",
			doc:       pdfdoctest.New("x.pdf", "text"),
			recordErr: errors.New("database is locked"),
			wantStage: StageRecord,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opener := &pdfdoctest.Opener{Docs: map[string]*pdfdoctest.Doc{}}
			if tt.doc != nil {
				opener.Docs["x.pdf"] = tt.doc
			}
			r := newRunner(t, opener, tt.engine)
			if tt.recordErr != nil {
				r.Recorder = &fakeRecorder{err: tt.recordErr}
			}

			_, err := r.Run(context.Background(), manual("x", "x.pdf"), "x.pdf")
			require.Error(t, err)

			var se *StageError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, "x", se.RadioID)
			assert.Equal(t, tt.wantStage, se.Stage)
			stage, ok := StageOf(err)
			assert.True(t, ok)
			assert.Equal(t, tt.wantStage, stage)
			if tt.check != nil {
				tt.check(t, err)
			}
			if tt.doc != nil {
				assert.True(t, tt.doc.Closed, "document closed on failure")
			}
		})
	}
}

func TestRun_EngineUnavailableBeforeRender(t *testing.T) {
	doc := scannedDoc("x.pdf", 2)
	opener := &pdfdoctest.Opener{Docs: map[string]*pdfdoctest.Doc{"x.pdf": doc}}
	r := newRunner(t, opener, &stubEngine{checkErr: ocr.ErrEngineUnavailable})

	_, err := r.Run(context.Background(), manual("x", "x.pdf"), "x.pdf")
	require.Error(t, err)
	assert.Empty(t, doc.Rendered)
	assert.NoFileExists(t, filepath.Join(r.OutputDir, "x_raw_text_ocr.txt"))
}

func TestRun_ZeroValueRunnerUsesDefaults(t *testing.T) {
	doc := pdfdoctest.New("kx2.pdf", menuPage, tocPage)
	opener := &pdfdoctest.Opener{Docs: map[string]*pdfdoctest.Doc{"kx2.pdf": doc}}
	r := &Runner{Opener: opener, OutputDir: t.TempDir()}

	res, err := r.Run(context.Background(), manual("elecraft-kx2", "kx2.pdf"), "kx2.pdf")
	require.NoError(t, err)
	assert.Equal(t, []types.TOCEntry{{Title: "Operation", Page: 3}}, res.Structure.TOC)
	require.Len(t, res.Structure.Menu, 1)
	assert.Equal(t, "CW SPEED", res.Structure.Menu[0].Name)
	assert.Len(t, res.Skeleton.Sections, len(skeleton.DefaultSections))
	assert.FileExists(t, res.SkeletonPath)
}

func TestRun_WriteFailure(t *testing.T) {
	doc := pdfdoctest.New("x.pdf", "text")
	opener := &pdfdoctest.Opener{Docs: map[string]*pdfdoctest.Doc{"x.pdf": doc}}
	r := newRunner(t, opener, nil)

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	r.OutputDir = filepath.Join(blocker, "out")

	_, err := r.Run(context.Background(), manual("x", "x.pdf"), "x.pdf")
	stage, ok := StageOf(err)
	require.True(t, ok)
	assert.Equal(t, StageWrite, stage)
	assert.True(t, doc.Closed)
}

func TestStageErrorMessage(t *testing.T) {
	err := &StageError{RadioID: "yaesu-ft710", Stage: StageExtract, Err: errors.New("boom")}
	assert.Equal(t, "yaesu-ft710: extract: boom", err.Error())
	assert.Equal(t, "extract: boom", Describe(err))
	assert.Equal(t, "plain", Describe(errors.New("plain")))

	_, ok := StageOf(errors.New("plain"))
	assert.False(t, ok)
}

// batchFixture creates PDF placeholder files for the given names and serves
// matching fake documents keyed by full path.
func batchFixture(t *testing.T, docs map[string]*pdfdoctest.Doc) (string, *pdfdoctest.Opener) {
	t.Helper()
	dir := t.TempDir()
	opener := &pdfdoctest.Opener{Docs: map[string]*pdfdoctest.Doc{}}
	for name, d := range docs {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7"), 0o644))
		if d != nil {
			opener.Docs[path] = d
		}
	}
	return dir, opener
}

func TestRunBatch(t *testing.T) {
	dir, opener := batchFixture(t, map[string]*pdfdoctest.Doc{
		"good.pdf":    pdfdoctest.New("good.pdf", menuPage, tocPage),
		"corrupt.pdf": nil,
	})
	r := newRunner(t, opener, nil)
	manuals := []types.Manual{
		manual("good", "good.pdf"),
		manual("corrupt", "corrupt.pdf"),
		manual("absent", "absent.pdf"),
	}

	var buf bytes.Buffer
	result := r.RunBatch(context.Background(), manuals, dir, 1, &buf)

	assert.Equal(t, 1, result.Extracted)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Missing)
	assert.Equal(t, 3, result.Total())
	assert.True(t, result.HasFailures())
	require.Len(t, result.Results, 1)
	assert.Equal(t, "good", result.Results[0].Manual.ID)
	assert.True(t, pdfdoc.IsOpenError(result.Errors["corrupt"]))

	out := buf.String()
	assert.Contains(t, out, "extracted: good (native, 2 pages, 1 toc, 1 menu)")
	assert.Contains(t, out, "failed:    corrupt (open: ")
	assert.Contains(t, out, "missing:   absent (")
	assert.Contains(t, out, "Batch summary: 1 extracted, 1 missing, 1 failed (total: 3)")
}

func TestRunBatch_Parallel(t *testing.T) {
	docs := map[string]*pdfdoctest.Doc{}
	var manuals []types.Manual
	for i := 0; i < 6; i++ {
		name := fmt.Sprintf("r%d.pdf", i)
		docs[name] = pdfdoctest.New(name, menuPage)
		manuals = append(manuals, manual(fmt.Sprintf("r%d", i), name))
	}
	dir, opener := batchFixture(t, docs)
	r := newRunner(t, &lockedOpener{inner: opener}, nil)

	var buf bytes.Buffer
	result := r.RunBatch(context.Background(), manuals, dir, 3, &buf)

	assert.Equal(t, 6, result.Extracted)
	assert.False(t, result.HasFailures())
	require.Len(t, result.Results, 6)
	for i, res := range result.Results {
		assert.Equal(t, fmt.Sprintf("r%d", i), res.Manual.ID, "results keep catalog order")
	}
	for _, d := range docs {
		assert.True(t, d.Closed)
	}
	assert.Equal(t, 6, strings.Count(buf.String(), "extracted: "))
}

// lockedOpener serializes access to the test opener's bookkeeping.
type lockedOpener struct {
	mu    sync.Mutex
	inner *pdfdoctest.Opener
}

func (o *lockedOpener) Open(path string) (pdfdoc.Document, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inner.Open(path)
}

func TestRunBatch_ZeroJobsIsSequential(t *testing.T) {
	dir, opener := batchFixture(t, map[string]*pdfdoctest.Doc{"a.pdf": pdfdoctest.New("a.pdf", "x")})
	r := newRunner(t, opener, nil)
	var buf bytes.Buffer
	result := r.RunBatch(context.Background(), []types.Manual{manual("a", "a.pdf")}, dir, 0, &buf)
	assert.Equal(t, 1, result.Extracted)
}

func TestCheckResultNotes_TruncatesRunes(t *testing.T) {
	c := CheckResult{Err: errors.New(strings.Repeat("é", 29) + "—ünreadable xref")}
	notes := c.Notes()
	assert.True(t, utf8.ValidString(notes))
	assert.Equal(t, 30, utf8.RuneCountInString(notes))
	assert.Equal(t, strings.Repeat("é", 29)+"—", notes)

	short := CheckResult{Err: errors.New("bad xref")}
	assert.Equal(t, "bad xref", short.Notes())
}

func TestCheck(t *testing.T) {
	dir, opener := batchFixture(t, map[string]*pdfdoctest.Doc{
		"text.pdf":    pdfdoctest.New("text.pdf", strings.Repeat("a", 600)),
		"scan.pdf":    scannedDoc("scan.pdf", 4),
		"corrupt.pdf": nil,
	})
	r := newRunner(t, opener, nil)
	manuals := []types.Manual{
		manual("text-radio", "text.pdf"),
		manual("scan-radio", "scan.pdf"),
		manual("absent-radio", "absent.pdf"),
		manual("corrupt-radio", "corrupt.pdf"),
	}

	var buf bytes.Buffer
	rows := r.Check(context.Background(), manuals, dir, &buf)
	require.Len(t, rows, 4)

	assert.Equal(t, "native", rows[0].Method())
	assert.Equal(t, "text-based", rows[0].Notes())
	assert.Equal(t, "OCR", rows[1].Method())
	assert.Equal(t, "image-based", rows[1].Notes())
	assert.True(t, rows[2].Missing)
	assert.Equal(t, "missing", rows[2].Method())
	assert.Equal(t, "PDF not downloaded", rows[2].Notes())
	assert.Equal(t, "error", rows[3].Method())
	assert.LessOrEqual(t, utf8.RuneCountInString(rows[3].Notes()), 30)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "Radio ID"))
	assert.Equal(t, strings.Repeat("-", 70), lines[1])
	assert.Contains(t, lines[2], "0.0M native")
	assert.Contains(t, lines[4], "N/A missing")

	for _, d := range opener.Docs {
		assert.True(t, d.Closed)
	}
}
