// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch re-runs extraction when catalog PDFs appear or change in the
// PDF directory.
package watch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pdiddy/fieldguide/internal/catalog"
	"github.com/pdiddy/fieldguide/pkg/types"
)

// DefaultDebounce is how long a file must stay quiet before it is handled.
// Downloads and copies arrive as bursts of write events.
const DefaultDebounce = 2 * time.Second

// HandlerFunc processes a settled manual PDF.
type HandlerFunc func(ctx context.Context, m types.Manual, path string)

// Watcher observes a PDF directory.
type Watcher struct {
	Dir      string
	Catalog  *catalog.Catalog
	Debounce time.Duration
	Handle   HandlerFunc
	Logger   *slog.Logger
}

func (w *Watcher) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// handleEvent maps a filesystem event to a catalog manual. Only creates and
// writes of known PDF file names are of interest.
func (w *Watcher) handleEvent(ev fsnotify.Event) (types.Manual, bool) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return types.Manual{}, false
	}
	name := filepath.Base(ev.Name)
	if strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return types.Manual{}, false
	}
	return w.Catalog.ByFilename(name)
}

// Run watches until ctx is cancelled. Handlers run one at a time on the
// watching goroutine.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.Dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.Dir, err)
	}

	delay := w.Debounce
	if delay <= 0 {
		delay = DefaultDebounce
	}
	log := w.logger()
	log.Info("watching", "dir", w.Dir, "manuals", w.Catalog.Len())

	d := newDebouncer(delay)
	tick := time.NewTicker(delay / 4)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			m, ok := w.handleEvent(ev)
			if !ok {
				log.Debug("ignoring event", "file", ev.Name, "op", ev.Op.String())
				continue
			}
			d.add(m.ID, pending{manual: m, path: ev.Name}, time.Now())

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "error", err)

		case now := <-tick.C:
			for _, p := range d.due(now) {
				if ctx.Err() != nil {
					return nil
				}
				w.Handle(ctx, p.manual, p.path)
			}
		}
	}
}

type pending struct {
	manual types.Manual
	path   string
}

// debouncer tracks the last event per key and releases keys that have been
// quiet for at least delay.
type debouncer struct {
	delay time.Duration
	last  map[string]time.Time
	items map[string]pending
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay: delay,
		last:  map[string]time.Time{},
		items: map[string]pending{},
	}
}

// add records an event for key at the given time, replacing any earlier
// pending item.
func (d *debouncer) add(key string, p pending, at time.Time) {
	d.last[key] = at
	d.items[key] = p
}

// due removes and returns settled items, ordered by key.
func (d *debouncer) due(now time.Time) []pending {
	var keys []string
	for k, at := range d.last {
		if now.Sub(at) >= d.delay {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := make([]pending, 0, len(keys))
	for _, k := range keys {
		out = append(out, d.items[k])
		delete(d.last, k)
		delete(d.items, k)
	}
	return out
}
