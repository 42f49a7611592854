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

package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchDeliversInitialContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wf.a2e")
	require.NoError(t, os.WriteFile(path, []byte("workflow \"one\"\n"), 0o644))

	events := make(chan Event, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- New(WithDebounce(20 * time.Millisecond)).Watch(ctx, path, func(ev Event) {
			events <- ev
		})
	}()

	select {
	case ev := <-events:
		assert.Equal(t, "workflow \"one\"\n", ev.Source)
	case <-time.After(5 * time.Second):
		t.Fatal("no initial event")
	}

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestWatchDeliversChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wf.a2e")
	require.NoError(t, os.WriteFile(path, []byte("workflow \"one\"\n"), 0o644))

	events := make(chan Event, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = New(WithDebounce(20 * time.Millisecond)).Watch(ctx, path, func(ev Event) {
			events <- ev
		})
	}()

	// Initial delivery.
	select {
	case <-events:
	case <-time.After(5 * time.Second):
		t.Fatal("no initial event")
	}

	// Let the watch loop register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("workflow \"two\"\n"), 0o644))

	select {
	case ev := <-events:
		assert.Equal(t, "workflow \"two\"\n", ev.Source)
	case <-time.After(5 * time.Second):
		t.Fatal("no change event")
	}
}

func TestWatchSuppressesUnchangedContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wf.a2e")
	content := []byte("workflow \"same\"\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	events := make(chan Event, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = New(WithDebounce(20 * time.Millisecond)).Watch(ctx, path, func(ev Event) {
			events <- ev
		})
	}()

	select {
	case <-events:
	case <-time.After(5 * time.Second):
		t.Fatal("no initial event")
	}

	time.Sleep(100 * time.Millisecond)
	// Rewriting identical bytes must not produce an event.
	require.NoError(t, os.WriteFile(path, content, 0o644))

	select {
	case ev := <-events:
		t.Fatalf("unexpected event for unchanged content: %q", ev.Source)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatchMissingDir(t *testing.T) {
	err := New().Watch(context.Background(), "/nonexistent/dir/wf.a2e", func(Event) {})
	assert.Error(t, err)
}
