// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfdoctest provides an in-memory pdfdoc.Document for tests.
package pdfdoctest

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/pdiddy/fieldguide/internal/pdfdoc"
)

// Page describes one page of a fake document.
type Page struct {
	Text   string
	Images int
}

// Doc is an in-memory pdfdoc.Document. It records how it was used so tests
// can assert on side effects such as closing and rendering.
type Doc struct {
	Name  string
	Pages []Page

	// TextErr, when set, is returned by PageText for the given page.
	TextErr map[int]error

	// ImagesErr, when set, is returned by PageImages for the given page.
	ImagesErr map[int]error

	// RenderErr, when set, is returned by RenderPage for the given page.
	RenderErr map[int]error

	Closed   bool
	Rendered []float64 // DPI of each RenderPage call, in call order
}

var _ pdfdoc.Document = (*Doc)(nil)

// New returns a document with the given page texts and no images.
func New(name string, texts ...string) *Doc {
	d := &Doc{Name: name}
	for _, t := range texts {
		d.Pages = append(d.Pages, Page{Text: t})
	}
	return d
}

func (d *Doc) Path() string { return d.Name }

func (d *Doc) NumPages() int { return len(d.Pages) }

func (d *Doc) PageText(n int) (string, error) {
	if err := d.check(n); err != nil {
		return "", err
	}
	if err := d.TextErr[n]; err != nil {
		return "", err
	}
	return d.Pages[n-1].Text, nil
}

func (d *Doc) PageImages(n int) (int, error) {
	if err := d.check(n); err != nil {
		return 0, err
	}
	if err := d.ImagesErr[n]; err != nil {
		return 0, err
	}
	return d.Pages[n-1].Images, nil
}

// RenderPage returns a small blank image whose width encodes the page number,
// so recognizers under test can tell pages apart.
func (d *Doc) RenderPage(ctx context.Context, n int, dpi float64) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := d.check(n); err != nil {
		return nil, err
	}
	d.Rendered = append(d.Rendered, dpi)
	if err := d.RenderErr[n]; err != nil {
		return nil, err
	}
	img := image.NewGray(image.Rect(0, 0, n, 1))
	img.SetGray(0, 0, color.Gray{Y: 255})
	return img, nil
}

func (d *Doc) Close() error {
	d.Closed = true
	return nil
}

func (d *Doc) check(n int) error {
	if n < 1 || n > len(d.Pages) {
		return fmt.Errorf("page %d out of range", n)
	}
	return nil
}

// Opener serves fake documents by path. Paths missing from Docs fail with an
// *pdfdoc.OpenError.
type Opener struct {
	Docs   map[string]*Doc
	Opened []string
}

// Open returns the document registered for path.
func (o *Opener) Open(path string) (pdfdoc.Document, error) {
	o.Opened = append(o.Opened, path)
	d, ok := o.Docs[path]
	if !ok {
		return nil, &pdfdoc.OpenError{Path: path, Err: fmt.Errorf("not a PDF")}
	}
	return d, nil
}
