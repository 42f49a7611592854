// Copyright © 2025 jackelyj <dreamerlyj@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
//

// Package watcher re-reads a workflow source file whenever it changes on
// disk. Change notifications come from fsnotify on the containing
// directory (editors commonly replace files instead of writing in place),
// debounced so rapid save bursts deliver one event.
package watcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 200 * time.Millisecond

// Event carries the re-read source after a change settles.
type Event struct {
	Path   string
	Source string
}

// Watcher delivers file change events for one workflow source file.
type Watcher struct {
	debounce time.Duration
	log      *zap.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the settle window for save bursts.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithLogger attaches a zap logger.
func WithLogger(log *zap.Logger) Option {
	return func(w *Watcher) { w.log = log }
}

// New creates a Watcher.
func New(opts ...Option) *Watcher {
	w := &Watcher{
		debounce: defaultDebounce,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch blocks delivering change events for path to fn until ctx is
// cancelled. fn runs on the watch goroutine; the initial file content is
// delivered immediately before watching starts. Unchanged rewrites (same
// content hash) are suppressed.
func (w *Watcher) Watch(ctx context.Context, path string, fn func(Event)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving watch path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	var lastHash [sha256.Size]byte
	deliver := func() {
		data, err := os.ReadFile(abs)
		if err != nil {
			w.log.Warn("reading watched file", zap.String("path", abs), zap.Error(err))
			return
		}
		sum := sha256.Sum256(data)
		if sum == lastHash {
			return
		}
		lastHash = sum
		w.log.Debug("source changed", zap.String("path", abs), zap.Int("bytes", len(data)))
		fn(Event{Path: abs, Source: string(data)})
	}

	deliver()

	// The timer is armed on every relevant fs event and fires once the
	// burst settles.
	settle := time.NewTimer(w.debounce)
	if !settle.Stop() {
		<-settle.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !settle.Stop() {
				select {
				case <-settle.C:
				default:
				}
			}
			settle.Reset(w.debounce)

		case <-settle.C:
			deliver()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}
