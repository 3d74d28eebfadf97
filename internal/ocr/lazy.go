// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"context"
	"sync"
)

// Lazy defers engine detection until the first document that needs OCR.
// Batches made only of text-layer manuals never probe for tesseract. A
// detected engine is kept for the process lifetime; a failed detection is
// retried on the next document, so a long-running watch picks up an engine
// installed after start.
type Lazy struct {
	detect func(ctx context.Context) (Engine, error)

	mu     sync.Mutex
	engine Engine
}

// NewLazy returns an engine that calls detect on first use and keeps the
// first engine it returns.
func NewLazy(detect func(ctx context.Context) (Engine, error)) *Lazy {
	return &Lazy{detect: detect}
}

func (l *Lazy) resolve(ctx context.Context) (Engine, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.engine != nil {
		return l.engine, nil
	}
	e, err := l.detect(ctx)
	if err != nil {
		return nil, err
	}
	l.engine = e
	return e, nil
}

func (l *Lazy) Name() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.engine != nil {
		return l.engine.Name()
	}
	return "ocr"
}

// Check resolves the engine. The language was fixed when detect was built,
// so lang is not re-probed here.
func (l *Lazy) Check(ctx context.Context, lang string) error {
	_, err := l.resolve(ctx)
	return err
}

func (l *Lazy) Recognize(ctx context.Context, png []byte, lang string) (string, error) {
	e, err := l.resolve(ctx)
	if err != nil {
		return "", err
	}
	return e.Recognize(ctx, png, lang)
}
