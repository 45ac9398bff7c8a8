// SPDX-License-Identifier: MIT

// Package watch ingests raw instrument files dropped into an inbox
// directory. Each route watches inbox/<observatory>/<instrument>/; a
// file appearing there is renamed into the canonical timestamp grammar
// and uploaded to the observatory's raw container, then removed from
// disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/rinman24/arcobs/internal/access/blob"
	"github.com/rinman24/arcobs/internal/chrono"
	"github.com/rinman24/arcobs/internal/engine/format"
	"github.com/rinman24/arcobs/internal/log"
	"github.com/rinman24/arcobs/internal/metrics"
)

// Route binds one inbox subdirectory to an upload destination.
type Route struct {
	Observatory string
	Instrument  string
	// Format names the raw filename encoding. Empty means arriving
	// names already carry the canonical stamp.
	Format string
	// Year is the hint for encodings that omit it.
	Year int
}

func (r Route) dir() string {
	return filepath.Join(r.Observatory, r.Instrument)
}

// Watcher moves inbox files into blob storage as they appear.
type Watcher struct {
	inbox  string
	store  blob.Access
	routes map[string]Route
	settle time.Duration
	logger zerolog.Logger

	fw *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]struct{}
	wg      sync.WaitGroup
}

// Option adjusts watcher behaviour.
type Option func(*Watcher)

// WithSettle sets how long a file must sit unchanged before ingest.
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) { w.settle = d }
}

// New builds a watcher over inbox for the given routes. The per-route
// subdirectories are created if missing.
func New(inbox string, store blob.Access, routes []Route, opts ...Option) (*Watcher, error) {
	if len(routes) == 0 {
		return nil, fmt.Errorf("watch: no routes configured")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	w := &Watcher{
		inbox:   inbox,
		store:   store,
		routes:  make(map[string]Route, len(routes)),
		settle:  200 * time.Millisecond,
		logger:  log.WithComponent("watch"),
		fw:      fw,
		pending: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	for _, r := range routes {
		dir := filepath.Join(inbox, r.dir())
		if err := os.MkdirAll(dir, 0o750); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("watch: create %s: %w", dir, err)
		}
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("watch: watch %s: %w", dir, err)
		}
		w.routes[r.dir()] = r
	}
	return w, nil
}

// Start runs the event loop until ctx is cancelled or Close is called.
// Files already sitting in the inbox are ingested first.
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.sweep(ctx)
		w.loop(ctx)
	}()
}

// Close stops watching and waits for in-flight ingests to finish.
func (w *Watcher) Close() error {
	err := w.fw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.dispatch(ctx, event.Name)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("fsnotify error")
		}
	}
}

// sweep picks up files that landed before the watcher started.
func (w *Watcher) sweep(ctx context.Context) {
	for key := range w.routes {
		dir := filepath.Join(w.inbox, key)
		entries, err := os.ReadDir(dir)
		if err != nil {
			w.logger.Warn().Err(err).Str("dir", dir).Msg("inbox sweep failed")
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			w.dispatch(ctx, filepath.Join(dir, entry.Name()))
		}
	}
}

// dispatch debounces one path and ingests it once it stops growing.
func (w *Watcher) dispatch(ctx context.Context, path string) {
	w.mu.Lock()
	if _, busy := w.pending[path]; busy {
		w.mu.Unlock()
		return
	}
	w.pending[path] = struct{}{}
	w.mu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			delete(w.pending, path)
			w.mu.Unlock()
		}()
		if !w.await(ctx, path) {
			return
		}
		if err := w.ingest(ctx, path); err != nil {
			metrics.IncWatcherEvent("failure")
			w.logger.Error().Err(err).Str("path", path).Msg("ingest failed")
		}
	}()
}

// await returns once path has held the same size and mtime for a full
// settle window, or false when the file vanished or ctx ended.
func (w *Watcher) await(ctx context.Context, path string) bool {
	for {
		before, err := os.Stat(path)
		if err != nil {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(w.settle):
		}
		after, err := os.Stat(path)
		if err != nil {
			return false
		}
		if after.Size() == before.Size() && after.ModTime().Equal(before.ModTime()) {
			return true
		}
	}
}

func (w *Watcher) ingest(ctx context.Context, path string) error {
	rel, err := filepath.Rel(w.inbox, path)
	if err != nil {
		return err
	}
	key := filepath.Dir(rel)
	route, ok := w.routes[filepath.ToSlash(key)]
	if !ok {
		metrics.IncWatcherEvent("skipped")
		w.logger.Warn().Str("path", path).Msg("no route for file")
		return nil
	}

	name, dt, err := w.canonical(filepath.Base(path), route)
	if err != nil {
		metrics.IncWatcherEvent("skipped")
		w.logger.Warn().Err(err).Str("path", path).Msg("unrecognised file name")
		return nil
	}

	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return err
	}
	if err := w.store.CreateContainer(ctx, route.Observatory); err != nil {
		return err
	}
	dest := fmt.Sprintf("%s/raw/%04d/%s", route.Instrument, dt.Year, name)
	err = w.store.Put(ctx, route.Observatory, dest, data)
	metrics.RecordUpload(route.Observatory, err)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return err
	}
	metrics.IncWatcherEvent("ingested")
	w.logger.Info().
		Str("observatory", route.Observatory).
		Str("instrument", route.Instrument).
		Str("blob", dest).
		Msg("file ingested")
	return nil
}

// canonical renames base into the timestamp grammar. Names that already
// carry a full stamp pass through unchanged.
func (w *Watcher) canonical(base string, route Route) (string, chrono.DateTime, error) {
	if dt, err := chrono.Extract(base, chrono.ToSecond); err == nil {
		return base, dt, nil
	}
	if route.Format == "" {
		return "", chrono.DateTime{}, fmt.Errorf("no stamp in %q and no format on route", base)
	}
	strategy, err := format.ByName(route.Format)
	if err != nil {
		return "", chrono.DateTime{}, err
	}
	renamed, err := format.Reformat(base, fmt.Sprintf("%04d", route.Year), strategy)
	if err != nil {
		return "", chrono.DateTime{}, err
	}
	dt, err := chrono.Extract(renamed, chrono.ToSecond)
	if err != nil {
		return "", chrono.DateTime{}, err
	}
	if !strings.HasSuffix(renamed, ".ncdf") {
		renamed += ".ncdf"
	}
	return renamed, dt, nil
}
