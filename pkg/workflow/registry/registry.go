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

// Package registry is a local flat-file store for sharing workflow
// definitions. A registry directory holds an index.json with metadata and
// a workflows/ directory with one .a2e source file per published workflow.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const indexVersion = "1.0.0"

// Entry is one published workflow with its metadata and source.
type Entry struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Version     string    `json:"version"`
	Author      string    `json:"author,omitempty"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// SummaryLine renders the entry as a single human-readable line.
func (e *Entry) SummaryLine() string {
	author := e.Author
	if author == "" {
		author = "?"
	}
	tags := "—"
	if len(e.Tags) > 0 {
		tags = strings.Join(e.Tags, ", ")
	}
	return fmt.Sprintf("%s v%s by %s [%s]", e.Name, e.Version, author, tags)
}

// Metadata carries the optional fields of a publish call.
type Metadata struct {
	Version     string
	Author      string
	Description string
	Tags        []string
}

type index struct {
	Version   string  `json:"version"`
	Workflows []Entry `json:"workflows"`
}

// Registry is a directory-backed workflow store. Safe for concurrent use
// within one process; the on-disk index is rewritten whole on every change.
type Registry struct {
	root string
	now  func() time.Time

	mu      sync.RWMutex
	entries map[string]Entry
}

// Open loads (or initializes) a registry rooted at dir. An empty dir
// defaults to ~/.a2e/registry. A missing or corrupt index starts empty.
func Open(dir string) (*Registry, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving registry dir: %w", err)
		}
		dir = filepath.Join(home, ".a2e", "registry")
	}

	r := &Registry{
		root:    dir,
		now:     time.Now,
		entries: make(map[string]Entry),
	}

	data, err := os.ReadFile(r.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("reading registry index: %w", err)
	}

	var idx index
	if err := json.Unmarshal(data, &idx); err != nil {
		// Corrupt index is not fatal; the next save replaces it.
		return r, nil
	}
	for _, entry := range idx.Workflows {
		r.entries[entry.Name] = entry
	}
	return r, nil
}

// Root returns the registry directory.
func (r *Registry) Root() string { return r.root }

func (r *Registry) indexPath() string { return filepath.Join(r.root, "index.json") }

func (r *Registry) sourcePath(name string) string {
	return filepath.Join(r.root, "workflows", name+".a2e")
}

// Publish stores a workflow under name, replacing any previous version.
func (r *Registry) Publish(name, source string, meta Metadata) (Entry, error) {
	if name == "" {
		return Entry{}, fmt.Errorf("workflow name must not be empty")
	}
	if meta.Version == "" {
		meta.Version = "1.0.0"
	}

	entry := Entry{
		ID:          uuid.NewString(),
		Name:        name,
		Version:     meta.Version,
		Author:      meta.Author,
		Description: meta.Description,
		Tags:        meta.Tags,
		Source:      source,
		PublishedAt: r.now().UTC(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Join(r.root, "workflows"), 0o755); err != nil {
		return Entry{}, fmt.Errorf("creating registry dirs: %w", err)
	}
	if err := os.WriteFile(r.sourcePath(name), []byte(source), 0o644); err != nil {
		return Entry{}, fmt.Errorf("writing workflow source: %w", err)
	}

	r.entries[name] = entry
	if err := r.saveLocked(); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Get returns the entry for name.
func (r *Registry) Get(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[name]
	return entry, ok
}

// GetSource returns the published source for name.
func (r *Registry) GetSource(name string) (string, bool) {
	entry, ok := r.Get(name)
	if !ok {
		return "", false
	}
	return entry.Source, true
}

// Search matches query against names, tags and descriptions,
// case-insensitively, and returns the hits sorted by name.
func (r *Registry) Search(query string) []Entry {
	q := strings.ToLower(query)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []Entry
	for _, entry := range r.entries {
		if r.matches(entry, q) {
			results = append(results, entry)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results
}

func (r *Registry) matches(entry Entry, q string) bool {
	if strings.Contains(strings.ToLower(entry.Name), q) {
		return true
	}
	for _, tag := range entry.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(entry.Description), q)
}

// List returns all entries sorted by name.
func (r *Registry) List() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// Remove deletes a workflow and its source file. Returns false when the
// name is not published.
func (r *Registry) Remove(name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[name]; !ok {
		return false, nil
	}
	delete(r.entries, name)

	if err := os.Remove(r.sourcePath(name)); err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("removing workflow source: %w", err)
	}
	if err := r.saveLocked(); err != nil {
		return false, err
	}
	return true, nil
}

// Summary renders the registry contents for human consumption.
func (r *Registry) Summary() string {
	entries := r.List()
	if len(entries) == 0 {
		return "Registry is empty"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Workflow Registry (%d workflows):", len(entries))
	for i := range entries {
		sb.WriteString("\n  • " + entries[i].SummaryLine())
	}
	return sb.String()
}

func (r *Registry) saveLocked() error {
	if err := os.MkdirAll(r.root, 0o755); err != nil {
		return fmt.Errorf("creating registry dir: %w", err)
	}

	idx := index{Version: indexVersion, Workflows: make([]Entry, 0, len(r.entries))}
	for _, entry := range r.entries {
		idx.Workflows = append(idx.Workflows, entry)
	}
	sort.Slice(idx.Workflows, func(i, j int) bool {
		return idx.Workflows[i].Name < idx.Workflows[j].Name
	})

	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding registry index: %w", err)
	}
	if err := os.WriteFile(r.indexPath(), data, 0o644); err != nil {
		return fmt.Errorf("writing registry index: %w", err)
	}
	return nil
}
