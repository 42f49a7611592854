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

// Package ast defines the immutable abstract syntax tree for a2e-lang
// workflows. Nodes are constructed once by the parser and shared read-only
// across the validator, compiler, decompiler, and execution engine.
package ast

// Value is the tagged union of all literal value forms that may appear in
// an operation body: primitives, path references, credential references,
// and inline objects and arrays.
type Value interface {
	isValue()
}

// String is a quoted string literal, or a bare identifier used in value
// position (e.g. storage: localStorage).
type String string

// Int is an integer numeric literal (no decimal point).
type Int int64

// Float is a floating numeric literal (contains a decimal point).
type Float float64

// Bool is a true/false literal.
type Bool bool

// Null is the null literal.
type Null struct{}

// PathRef references a slot in the run-scoped data store, e.g. /workflow/users.
type PathRef struct {
	// Raw is the full path string including the leading slash.
	Raw string
}

// CredentialRef is an opaque named secret handle: credential("api-token").
// The secret value itself never appears in the AST or on the wire.
type CredentialRef struct {
	ID string
}

// Object is an inline object literal: { key: value, ... }.
// Key order is preserved.
type Object struct {
	Properties []Property
}

// Array is an inline array literal: [v1, v2, ...].
type Array struct {
	Items []Value
}

func (String) isValue()        {}
func (Int) isValue()           {}
func (Float) isValue()         {}
func (Bool) isValue()          {}
func (Null) isValue()          {}
func (PathRef) isValue()       {}
func (CredentialRef) isValue() {}
func (Object) isValue()        {}
func (Array) isValue()         {}

// Property is a key/value pair inside an operation body or object literal.
type Property struct {
	Key   string
	Value Value
}

// Condition is a single filter predicate from a where clause:
// field operator value. Value is nil for unary operators (exists, empty).
type Condition struct {
	Field    string
	Operator string
	Value    Value
}

// IfClause is a conditional branch: if /path op value then targets else targets.
// Value is nil for unary operators. IfFalse is nil when no else branch was
// declared.
type IfClause struct {
	Path     string
	Operator string
	Value    Value
	IfTrue   []string
	IfFalse  []string
}

// Operation is a single operation definition: id = OpType { ... }.
type Operation struct {
	ID         string
	OpType     string
	Properties []Property

	// InputPath comes from the from clause; empty when absent.
	InputPath string

	// OutputPath comes from the -> clause; empty when absent.
	OutputPath string

	// Conditions come from the where clause; nil when absent.
	Conditions []Condition

	// If comes from the if/then/else clause; nil when absent.
	If *IfClause

	// Line and Column locate the operation's id token in the source.
	Line   int
	Column int
}

// Property returns the value of the named property and whether it exists.
func (op *Operation) Property(key string) (Value, bool) {
	for _, p := range op.Properties {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// Workflow is the root AST node.
type Workflow struct {
	Name       string
	Operations []Operation

	// ExecutionOrder comes from the trailing run: clause; nil when absent.
	ExecutionOrder []string
}

// EffectiveOrder returns the declared run: order when present, otherwise
// the operation declaration order.
func (w *Workflow) EffectiveOrder() []string {
	if len(w.ExecutionOrder) > 0 {
		return w.ExecutionOrder
	}
	order := make([]string, len(w.Operations))
	for i := range w.Operations {
		order[i] = w.Operations[i].ID
	}
	return order
}

// Operation returns the operation with the given id, or nil.
func (w *Workflow) Operation(id string) *Operation {
	for i := range w.Operations {
		if w.Operations[i].ID == id {
			return &w.Operations[i]
		}
	}
	return nil
}
