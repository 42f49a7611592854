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

// Package validator performs semantic validation of workflow ASTs. Validation
// never stops at the first defect; all checks run and their errors accumulate
// so callers can surface everything at once.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MauricioPerera/a2e-lang/pkg/workflow/ast"
)

// ValidationError is one semantic defect with a best-effort source location.
// Line 0 means the location is unknown.
type ValidationError struct {
	Message string
	Line    int
	Column  int
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		if e.Column > 0 {
			return fmt.Sprintf("%s (line %d, col %d)", e.Message, e.Line, e.Column)
		}
		return fmt.Sprintf("%s (line %d)", e.Message, e.Line)
	}
	return e.Message
}

// Limits holds optional complexity ceilings. A zero field disables that check.
type Limits struct {
	// MaxOperations caps the total operation count.
	MaxOperations int

	// MaxConditions caps the where-clause length of any single operation.
	MaxConditions int

	// MaxDepth caps conditional nesting: a Conditional whose branch target
	// is itself a Conditional adds one level.
	MaxDepth int
}

// ExtensionLookup reports whether an operation type was registered by a
// plugin. The built-in types are always known without consulting it.
type ExtensionLookup interface {
	Known(opType string) bool
}

// Validator checks a workflow AST for semantic correctness.
type Validator struct {
	limits     Limits
	extensions ExtensionLookup
}

// Option configures a Validator.
type Option func(*Validator)

// WithLimits enables complexity ceilings.
func WithLimits(limits Limits) Option {
	return func(v *Validator) { v.limits = limits }
}

// WithExtensions makes plugin-registered operation types pass the
// type-legality check.
func WithExtensions(ext ExtensionLookup) Option {
	return func(v *Validator) { v.extensions = ext }
}

// New creates a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs all checks and returns the accumulated errors.
// An empty slice means the workflow is valid.
func (v *Validator) Validate(wf *ast.Workflow) []*ValidationError {
	var errs []*ValidationError
	errs = append(errs, v.checkUniqueIDs(wf)...)
	errs = append(errs, v.checkOpTypes(wf)...)
	errs = append(errs, v.checkRequiredProperties(wf)...)
	errs = append(errs, v.checkRequiredClauses(wf)...)
	errs = append(errs, v.checkConditionalTargets(wf)...)
	errs = append(errs, v.checkLoopOperations(wf)...)
	errs = append(errs, v.checkExecutionOrder(wf)...)
	errs = append(errs, v.checkNoCycles(wf)...)
	errs = append(errs, v.checkComplexity(wf)...)
	return errs
}

func (v *Validator) checkUniqueIDs(wf *ast.Workflow) []*ValidationError {
	var errs []*ValidationError
	seen := make(map[string]int)
	for _, op := range wf.Operations {
		if first, dup := seen[op.ID]; dup {
			errs = append(errs, &ValidationError{
				Message: fmt.Sprintf("Duplicate operation ID '%s' (first defined at line %d)", op.ID, first),
				Line:    op.Line,
				Column:  op.Column,
			})
		}
		seen[op.ID] = op.Line
	}
	return errs
}

func (v *Validator) knownType(opType string) bool {
	if _, ok := ast.BuiltinType(opType); ok {
		return true
	}
	return v.extensions != nil && v.extensions.Known(opType)
}

func (v *Validator) checkOpTypes(wf *ast.Workflow) []*ValidationError {
	var errs []*ValidationError
	for _, op := range wf.Operations {
		if !v.knownType(op.OpType) {
			errs = append(errs, &ValidationError{
				Message: fmt.Sprintf("Unknown operation type '%s' for '%s'. Valid types: %s",
					op.OpType, op.ID, strings.Join(ast.BuiltinTypeNames(), ", ")),
				Line:   op.Line,
				Column: op.Column,
			})
		}
	}
	return errs
}

func (v *Validator) checkRequiredProperties(wf *ast.Workflow) []*ValidationError {
	var errs []*ValidationError
	for _, op := range wf.Operations {
		spec, ok := ast.BuiltinType(op.OpType)
		if !ok {
			continue
		}
		var missing []string
		for _, req := range spec.RequiredProperties {
			if _, found := op.Property(req); !found {
				missing = append(missing, req)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			errs = append(errs, &ValidationError{
				Message: fmt.Sprintf("Operation '%s' (%s) missing required properties: %s",
					op.ID, op.OpType, strings.Join(missing, ", ")),
				Line:   op.Line,
				Column: op.Column,
			})
		}
	}
	return errs
}

func (v *Validator) checkRequiredClauses(wf *ast.Workflow) []*ValidationError {
	var errs []*ValidationError
	for i := range wf.Operations {
		op := &wf.Operations[i]
		spec, ok := ast.BuiltinType(op.OpType)
		if !ok {
			continue
		}
		if spec.RequiresInput && op.InputPath == "" {
			errs = append(errs, &ValidationError{
				Message: fmt.Sprintf("Operation '%s' (%s) requires a 'from' clause", op.ID, op.OpType),
				Line:    op.Line,
				Column:  op.Column,
			})
		}
		if spec.RequiresOutput && op.OutputPath == "" {
			errs = append(errs, &ValidationError{
				Message: fmt.Sprintf("Operation '%s' (%s) requires an output arrow (->)", op.ID, op.OpType),
				Line:    op.Line,
				Column:  op.Column,
			})
		}
		if op.OpType == ast.OpFilterData && len(op.Conditions) == 0 {
			errs = append(errs, &ValidationError{
				Message: fmt.Sprintf("Operation '%s' (FilterData) requires a 'where' clause", op.ID),
				Line:    op.Line,
				Column:  op.Column,
			})
		}
		if op.OpType == ast.OpConditional && op.If == nil {
			errs = append(errs, &ValidationError{
				Message: fmt.Sprintf("Operation '%s' (Conditional) requires an 'if' clause", op.ID),
				Line:    op.Line,
				Column:  op.Column,
			})
		}
	}
	return errs
}

func (v *Validator) checkConditionalTargets(wf *ast.Workflow) []*ValidationError {
	var errs []*ValidationError
	ids := opIDSet(wf)
	for i := range wf.Operations {
		op := &wf.Operations[i]
		if op.If == nil {
			continue
		}
		for _, target := range op.If.IfTrue {
			if !ids[target] {
				errs = append(errs, &ValidationError{
					Message: fmt.Sprintf("Conditional '%s': 'then' target '%s' not found", op.ID, target),
					Line:    op.Line,
				})
			}
		}
		for _, target := range op.If.IfFalse {
			if !ids[target] {
				errs = append(errs, &ValidationError{
					Message: fmt.Sprintf("Conditional '%s': 'else' target '%s' not found", op.ID, target),
					Line:    op.Line,
				})
			}
		}
	}
	return errs
}

func (v *Validator) checkLoopOperations(wf *ast.Workflow) []*ValidationError {
	var errs []*ValidationError
	ids := opIDSet(wf)
	for i := range wf.Operations {
		op := &wf.Operations[i]
		if op.OpType != ast.OpLoop {
			continue
		}
		val, ok := op.Property("operations")
		if !ok {
			continue
		}
		arr, ok := val.(ast.Array)
		if !ok {
			continue
		}
		for _, item := range arr.Items {
			ref, ok := item.(ast.String)
			if !ok {
				continue
			}
			if !ids[string(ref)] {
				errs = append(errs, &ValidationError{
					Message: fmt.Sprintf("Loop '%s': operation '%s' not found", op.ID, ref),
					Line:    op.Line,
				})
			}
		}
	}
	return errs
}

func (v *Validator) checkExecutionOrder(wf *ast.Workflow) []*ValidationError {
	var errs []*ValidationError
	if len(wf.ExecutionOrder) == 0 {
		return nil
	}
	ids := opIDSet(wf)
	for _, id := range wf.ExecutionOrder {
		if !ids[id] {
			errs = append(errs, &ValidationError{
				Message: fmt.Sprintf("Execution order references unknown operation '%s'", id),
			})
		}
	}
	return errs
}

// checkNoCycles builds a data-flow graph (an edge A -> B means A reads a path
// that B writes) and runs a three-color DFS over it. Only the first cycle
// found is reported.
func (v *Validator) checkNoCycles(wf *ast.Workflow) []*ValidationError {
	writes := make(map[string]string)
	for i := range wf.Operations {
		op := &wf.Operations[i]
		if op.OutputPath != "" {
			writes[op.OutputPath] = op.ID
		}
	}

	graph := make(map[string][]string, len(wf.Operations))
	order := make([]string, 0, len(wf.Operations))
	for i := range wf.Operations {
		op := &wf.Operations[i]
		graph[op.ID] = nil
		order = append(order, op.ID)
		for _, rp := range readPaths(op) {
			if writer, ok := writes[rp]; ok && writer != op.ID {
				graph[op.ID] = append(graph[op.ID], writer)
			}
		}
	}

	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(graph))

	var dfs func(node string) string
	dfs = func(node string) string {
		color[node] = gray
		for _, dep := range graph[node] {
			if _, known := graph[dep]; !known {
				continue
			}
			switch color[dep] {
			case gray:
				return fmt.Sprintf("Cycle detected involving '%s' -> '%s'", node, dep)
			case white:
				if msg := dfs(dep); msg != "" {
					return msg
				}
			}
		}
		color[node] = black
		return ""
	}

	for _, id := range order {
		if color[id] != white {
			continue
		}
		if msg := dfs(id); msg != "" {
			return []*ValidationError{{Message: msg}}
		}
	}
	return nil
}

// readPaths lists every data-store path an operation reads: the from clause,
// the if-clause path, and any path items in a sources array property.
func readPaths(op *ast.Operation) []string {
	var paths []string
	if op.InputPath != "" {
		paths = append(paths, op.InputPath)
	}
	if op.If != nil {
		paths = append(paths, op.If.Path)
	}
	if val, ok := op.Property("sources"); ok {
		if arr, isArr := val.(ast.Array); isArr {
			for _, item := range arr.Items {
				if p, isPath := item.(ast.PathRef); isPath {
					paths = append(paths, p.Raw)
				}
			}
		}
	}
	return paths
}

func (v *Validator) checkComplexity(wf *ast.Workflow) []*ValidationError {
	var errs []*ValidationError

	if v.limits.MaxOperations > 0 && len(wf.Operations) > v.limits.MaxOperations {
		errs = append(errs, &ValidationError{
			Message: fmt.Sprintf("Workflow has %d operations, maximum allowed is %d",
				len(wf.Operations), v.limits.MaxOperations),
		})
	}

	if v.limits.MaxConditions > 0 {
		for i := range wf.Operations {
			op := &wf.Operations[i]
			if len(op.Conditions) > v.limits.MaxConditions {
				errs = append(errs, &ValidationError{
					Message: fmt.Sprintf("Operation '%s' has %d conditions, maximum allowed is %d",
						op.ID, len(op.Conditions), v.limits.MaxConditions),
					Line:   op.Line,
					Column: op.Column,
				})
			}
		}
	}

	if v.limits.MaxDepth > 0 {
		depths := conditionalDepths(wf)
		for i := range wf.Operations {
			op := &wf.Operations[i]
			if d := depths[op.ID]; d > v.limits.MaxDepth {
				errs = append(errs, &ValidationError{
					Message: fmt.Sprintf("Conditional '%s' has nesting depth %d, maximum allowed is %d",
						op.ID, d, v.limits.MaxDepth),
					Line:   op.Line,
					Column: op.Column,
				})
			}
		}
	}

	return errs
}

// conditionalDepths computes, per Conditional operation, the length of the
// longest chain of Conditionals reachable through its branch targets.
// A lone Conditional has depth 1. Cyclic target chains are cut off instead
// of recursing forever.
func conditionalDepths(wf *ast.Workflow) map[string]int {
	byID := make(map[string]*ast.Operation, len(wf.Operations))
	for i := range wf.Operations {
		byID[wf.Operations[i].ID] = &wf.Operations[i]
	}

	depths := make(map[string]int)
	visiting := make(map[string]bool)

	var depth func(id string) int
	depth = func(id string) int {
		op, ok := byID[id]
		if !ok || op.OpType != ast.OpConditional || op.If == nil {
			return 0
		}
		if d, done := depths[id]; done {
			return d
		}
		if visiting[id] {
			return 0
		}
		visiting[id] = true
		max := 0
		for _, target := range append(append([]string{}, op.If.IfTrue...), op.If.IfFalse...) {
			if d := depth(target); d > max {
				max = d
			}
		}
		visiting[id] = false
		depths[id] = max + 1
		return depths[id]
	}

	for i := range wf.Operations {
		depth(wf.Operations[i].ID)
	}
	return depths
}

func opIDSet(wf *ast.Workflow) map[string]bool {
	ids := make(map[string]bool, len(wf.Operations))
	for i := range wf.Operations {
		ids[wf.Operations[i].ID] = true
	}
	return ids
}
