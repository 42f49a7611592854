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

// Package plugin lets callers extend the workflow language with custom
// operation types. A Registry is injected into the validator (so custom
// types pass type checking) and into the engine (so custom types execute
// their handlers). Registries are plain values; there is no global state.
package plugin

import (
	"fmt"
	"sort"
	"sync"

	"github.com/MauricioPerera/a2e-lang/pkg/workflow/engine"
)

// Spec describes one custom operation type.
type Spec struct {
	// Name is the operation type as written in workflow source.
	Name string

	// RequiredProperties must be declared on every operation of this type.
	RequiredProperties []string

	// OptionalProperties documents accepted but non-mandatory keys.
	OptionalProperties []string

	// Description is a short human-readable summary for tooling.
	Description string

	// Handler executes operations of this type. Optional; a spec without
	// a handler validates but falls back to the engine's pass-through.
	Handler engine.Handler
}

// Registry holds registered custom operation types. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]Spec
}

// NewRegistry returns an empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]Spec)}
}

// Register adds a custom operation type. Names must be unique.
func (r *Registry) Register(spec Spec) error {
	if spec.Name == "" {
		return fmt.Errorf("plugin name must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.specs[spec.Name]; exists {
		return fmt.Errorf("plugin '%s' is already registered", spec.Name)
	}
	r.specs[spec.Name] = spec
	return nil
}

// Unregister removes a plugin; unknown names are a no-op.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.specs, name)
}

// Get returns a registered spec by name.
func (r *Registry) Get(name string) (Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[name]
	return spec, ok
}

// Known reports whether name is a registered custom operation type. It
// satisfies the validator's extension lookup.
func (r *Registry) Known(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.specs[name]
	return ok
}

// List returns all registered specs sorted by name.
func (r *Registry) List() []Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]Spec, 0, len(r.specs))
	for _, spec := range r.specs {
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs
}

// OpTypes returns the registered type names sorted.
func (r *Registry) OpTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Handlers returns the handler table for specs that carry one, keyed by
// operation type. The result is suitable for engine.WithHandlers.
func (r *Registry) Handlers() map[string]engine.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	table := make(map[string]engine.Handler)
	for name, spec := range r.specs {
		if spec.Handler != nil {
			table[name] = spec.Handler
		}
	}
	return table
}
