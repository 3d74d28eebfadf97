// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ocr wraps the tesseract recognition engine. Tesseract runs either
// from a local binary or from a container image; both take a PNG on stdin
// and write plain text to stdout.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/fieldguide/internal/container"
	"github.com/pdiddy/fieldguide/pkg/types"
)

// ErrEngineUnavailable reports that no usable recognition engine is installed.
// The remedy is to install tesseract (with its language data) or pull the
// tesseract container image, not to re-download the manual.
var ErrEngineUnavailable = errors.New("OCR engine unavailable")

// installHint is appended to unavailability errors.
const installHint = "install tesseract (brew install tesseract, apt install tesseract-ocr) or provide the tesseract container image"

// Engine recognizes text in a single page image.
type Engine interface {
	// Name identifies the engine in logs and reports.
	Name() string

	// Check verifies that the engine can run with the given language model.
	// It returns an error wrapping ErrEngineUnavailable when it cannot.
	Check(ctx context.Context, lang string) error

	// Recognize returns the text found in a PNG-encoded image.
	Recognize(ctx context.Context, png []byte, lang string) (string, error)
}

// args builds the tesseract command line for stdin-to-stdout recognition.
func args(lang string) []string {
	return []string{"stdin", "stdout", "-l", lang}
}

func unavailable(format string, a ...any) error {
	return fmt.Errorf("%w: %s; %s", ErrEngineUnavailable, fmt.Sprintf(format, a...), installHint)
}

// Tesseract runs a locally installed tesseract binary.
type Tesseract struct {
	bin  string
	exec container.Executor
}

// NewTesseract returns an engine for the given binary name or path.
func NewTesseract(bin string, exec container.Executor) *Tesseract {
	if bin == "" {
		bin = "tesseract"
	}
	if exec == nil {
		exec = container.OSExecutor{}
	}
	return &Tesseract{bin: bin, exec: exec}
}

func (t *Tesseract) Name() string { return t.bin }

// Check confirms the binary is on PATH and the language model is installed.
func (t *Tesseract) Check(ctx context.Context, lang string) error {
	if _, err := t.exec.LookPath(t.bin); err != nil {
		return unavailable("%s not found on PATH", t.bin)
	}
	var out bytes.Buffer
	if err := t.exec.RunPiped(ctx, t.bin, []string{"--list-langs"}, nil, &out); err != nil {
		return unavailable("%s --list-langs failed: %v", t.bin, err)
	}
	if !hasLanguage(out.String(), lang) {
		return unavailable("%s has no %q language data", t.bin, lang)
	}
	return nil
}

func (t *Tesseract) Recognize(ctx context.Context, png []byte, lang string) (string, error) {
	var out bytes.Buffer
	if err := t.exec.RunPiped(ctx, t.bin, args(lang), bytes.NewReader(png), &out); err != nil {
		return "", fmt.Errorf("running %s: %w", t.bin, err)
	}
	return out.String(), nil
}

// hasLanguage scans `tesseract --list-langs` output for lang. The first line
// is a header ("List of available languages ...").
func hasLanguage(listing, lang string) bool {
	for _, line := range strings.Split(listing, "\n") {
		if strings.TrimSpace(line) == lang {
			return true
		}
	}
	return false
}

// Containerized runs tesseract from a container image whose entrypoint is
// the tesseract binary.
type Containerized struct {
	runtime container.Runtime
	image   string
}

// NewContainerized returns an engine backed by the given runtime and image.
func NewContainerized(rt container.Runtime, image string) *Containerized {
	return &Containerized{runtime: rt, image: image}
}

func (c *Containerized) Name() string { return c.runtime.Name() + ":" + c.image }

// Check confirms the image is present locally. Language data ships inside
// the image, so lang is not probed.
func (c *Containerized) Check(ctx context.Context, lang string) error {
	if err := c.runtime.ImageExists(ctx, c.image); err != nil {
		return unavailable("%v", err)
	}
	return nil
}

func (c *Containerized) Recognize(ctx context.Context, png []byte, lang string) (string, error) {
	var out bytes.Buffer
	if err := c.runtime.Run(ctx, c.image, args(lang), bytes.NewReader(png), &out); err != nil {
		return "", err
	}
	return out.String(), nil
}

// Detect returns a checked engine according to cfg.Engine. With
// types.EngineAuto the local binary is preferred and the container image is
// the fallback. Every failure wraps ErrEngineUnavailable.
func Detect(ctx context.Context, cfg types.OCRConfig, exec container.Executor) (Engine, error) {
	if exec == nil {
		exec = container.OSExecutor{}
	}
	lang := cfg.Language
	if lang == "" {
		lang = "eng"
	}

	local := func() (Engine, error) {
		t := NewTesseract(cfg.Binary, exec)
		if err := t.Check(ctx, lang); err != nil {
			return nil, err
		}
		return t, nil
	}
	containerized := func() (Engine, error) {
		rt, err := container.DetectRuntimeWith(ctx, exec)
		if err != nil {
			return nil, unavailable("%v", err)
		}
		c := NewContainerized(rt, cfg.Image)
		if err := c.Check(ctx, lang); err != nil {
			return nil, err
		}
		return c, nil
	}

	switch cfg.Engine {
	case types.EngineTesseract:
		return local()
	case types.EngineContainer:
		return containerized()
	case types.EngineAuto, "":
		e, localErr := local()
		if localErr == nil {
			return e, nil
		}
		e, containerErr := containerized()
		if containerErr == nil {
			return e, nil
		}
		return nil, errors.Join(localErr, containerErr)
	default:
		return nil, fmt.Errorf("unknown OCR engine %q (want auto, tesseract, or container)", cfg.Engine)
	}
}
