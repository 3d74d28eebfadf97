// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfdoc

import (
	"context"
	"fmt"
	"image"
	"os"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// FileOpener opens PDFs from disk. Text and rendering come from MuPDF (via
// go-fitz); the embedded image inventory comes from pdfcpu, which is loaded
// on first use so native extraction never pays for it.
type FileOpener struct{}

// Open opens the PDF at path.
func (FileOpener) Open(path string) (Document, error) {
	return Open(path)
}

// Open opens the PDF at path. Any failure is returned as an *OpenError.
func Open(path string) (Document, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	doc, err := fitz.New(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	return &fitzDocument{path: path, doc: doc, pages: doc.NumPage()}, nil
}

type fitzDocument struct {
	path   string
	doc    *fitz.Document
	pages  int
	images []int // per-page image counts, index 0 is page 1; nil until loaded
}

func (d *fitzDocument) Path() string { return d.path }

func (d *fitzDocument) NumPages() int { return d.pages }

func (d *fitzDocument) PageText(n int) (string, error) {
	if err := checkPage(n, d.pages); err != nil {
		return "", err
	}
	text, err := d.doc.Text(n - 1)
	if err != nil {
		return "", fmt.Errorf("reading text layer of page %d: %w", n, err)
	}
	return text, nil
}

func (d *fitzDocument) PageImages(n int) (int, error) {
	if err := checkPage(n, d.pages); err != nil {
		return 0, err
	}
	if d.images == nil {
		counts, err := imageInventory(d.path)
		if err != nil {
			return 0, &OpenError{Path: d.path, Err: err}
		}
		d.images = counts
	}
	if n > len(d.images) {
		return 0, nil
	}
	return d.images[n-1], nil
}

func (d *fitzDocument) RenderPage(ctx context.Context, n int, dpi float64) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkPage(n, d.pages); err != nil {
		return nil, err
	}
	img, err := d.doc.ImageDPI(n-1, dpi)
	if err != nil {
		return nil, fmt.Errorf("rendering page %d at %.0f DPI: %w", n, dpi, err)
	}
	return img, nil
}

func (d *fitzDocument) Close() error {
	return d.doc.Close()
}

// imageInventory counts the image XObjects referenced by each page.
func imageInventory(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	counts := make([]int, ctx.PageCount)
	if ctx.Optimize == nil {
		return counts, nil
	}
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		counts[pageNr-1] = len(pdfcpu.ImageObjNrs(ctx, pageNr))
	}
	return counts, nil
}
