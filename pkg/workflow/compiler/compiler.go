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

// Package compiler turns workflow ASTs into line-delimited JSON wire messages
// and back. Two layouts exist: the bundled layout (one operationUpdate message
// carrying every operation, then a beginExecution message naming the root) and
// the per-operation layout (one operationUpdate message per operation, then a
// beginExecution message carrying the full order). The decompiler accepts
// either layout and reconstructs equivalent DSL source.
package compiler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MauricioPerera/a2e-lang/pkg/workflow/ast"
)

// CompileError reports an AST value of unrecognized shape reaching the
// compiler. Unreachable for workflows that passed validation.
type CompileError struct {
	Message string
}

func (e *CompileError) Error() string { return e.Message }

// Compiler emits the bundled wire layout: exactly two messages.
type Compiler struct{}

// Compile returns compact line-delimited JSON, one message per line.
func (c *Compiler) Compile(wf *ast.Workflow) (string, error) {
	msgs, err := c.messages(wf)
	if err != nil {
		return "", err
	}
	return joinCompact(msgs)
}

// CompilePretty returns each message indented by two spaces, messages
// separated by a blank line. Semantic content is identical to Compile.
func (c *Compiler) CompilePretty(wf *ast.Workflow) (string, error) {
	msgs, err := c.messages(wf)
	if err != nil {
		return "", err
	}
	return joinPretty(msgs)
}

func (c *Compiler) messages(wf *ast.Workflow) ([]*orderedObject, error) {
	ops := make([]interface{}, 0, len(wf.Operations))
	for i := range wf.Operations {
		entry, err := compileOperationEntry(&wf.Operations[i], false)
		if err != nil {
			return nil, err
		}
		ops = append(ops, entry)
	}

	order := wf.EffectiveOrder()
	root := ""
	if len(order) > 0 {
		root = order[0]
	}

	update := newOrderedObject()
	updateBody := newOrderedObject()
	updateBody.set("workflowId", wf.Name)
	updateBody.set("operations", ops)
	update.set("operationUpdate", updateBody)

	begin := newOrderedObject()
	beginBody := newOrderedObject()
	beginBody.set("workflowId", wf.Name)
	beginBody.set("root", root)
	begin.set("beginExecution", beginBody)

	return []*orderedObject{update, begin}, nil
}

// SpecCompiler emits the per-operation wire layout.
type SpecCompiler struct{}

// Compile returns compact line-delimited JSON, one message per operation
// plus a final beginExecution message.
func (c *SpecCompiler) Compile(wf *ast.Workflow) (string, error) {
	msgs, err := c.messages(wf)
	if err != nil {
		return "", err
	}
	return joinCompact(msgs)
}

// CompilePretty returns the per-operation layout pretty-printed.
func (c *SpecCompiler) CompilePretty(wf *ast.Workflow) (string, error) {
	msgs, err := c.messages(wf)
	if err != nil {
		return "", err
	}
	return joinPretty(msgs)
}

func (c *SpecCompiler) messages(wf *ast.Workflow) ([]*orderedObject, error) {
	var msgs []*orderedObject
	for i := range wf.Operations {
		op := &wf.Operations[i]
		config, err := compileConfig(op, true)
		if err != nil {
			return nil, err
		}
		wrapper := newOrderedObject()
		wrapper.set(op.OpType, config)

		msg := newOrderedObject()
		msg.set("type", "operationUpdate")
		msg.set("operationId", op.ID)
		msg.set("operation", wrapper)
		msgs = append(msgs, msg)
	}

	order := wf.EffectiveOrder()
	orderVals := make([]interface{}, len(order))
	for i, id := range order {
		orderVals[i] = id
	}

	begin := newOrderedObject()
	begin.set("type", "beginExecution")
	begin.set("executionId", wf.Name)
	begin.set("operationOrder", orderVals)
	msgs = append(msgs, begin)

	return msgs, nil
}

// compileOperationEntry builds {"id": ..., "operation": {OpType: config}}
// for the bundled layout.
func compileOperationEntry(op *ast.Operation, alwaysArrayTargets bool) (*orderedObject, error) {
	config, err := compileConfig(op, alwaysArrayTargets)
	if err != nil {
		return nil, err
	}
	wrapper := newOrderedObject()
	wrapper.set(op.OpType, config)

	entry := newOrderedObject()
	entry.set("id", op.ID)
	entry.set("operation", wrapper)
	return entry, nil
}

// compileConfig builds the per-type config object: structural fields first
// (inputPath, outputPath, conditions, condition, ifTrue, ifFalse) then the
// declared properties in source order. In the bundled layout a single branch
// target serializes as a bare string; the per-operation layout always uses
// arrays.
func compileConfig(op *ast.Operation, alwaysArrayTargets bool) (*orderedObject, error) {
	config := newOrderedObject()

	if op.InputPath != "" {
		config.set("inputPath", op.InputPath)
	}
	if op.OutputPath != "" {
		config.set("outputPath", op.OutputPath)
	}

	if len(op.Conditions) > 0 {
		conds := make([]interface{}, 0, len(op.Conditions))
		for i := range op.Conditions {
			c, err := compileCondition(&op.Conditions[i])
			if err != nil {
				return nil, err
			}
			conds = append(conds, c)
		}
		config.set("conditions", conds)
	}

	if op.If != nil {
		cond := newOrderedObject()
		cond.set("path", op.If.Path)
		cond.set("operator", op.If.Operator)
		if op.If.Value != nil {
			v, err := compileValue(op.If.Value)
			if err != nil {
				return nil, err
			}
			cond.set("value", v)
		}
		config.set("condition", cond)

		config.set("ifTrue", targetList(op.If.IfTrue, alwaysArrayTargets))
		if len(op.If.IfFalse) > 0 {
			config.set("ifFalse", targetList(op.If.IfFalse, alwaysArrayTargets))
		}
	}

	for _, prop := range op.Properties {
		v, err := compileValue(prop.Value)
		if err != nil {
			return nil, err
		}
		config.set(prop.Key, v)
	}

	return config, nil
}

func compileCondition(cond *ast.Condition) (*orderedObject, error) {
	obj := newOrderedObject()
	obj.set("field", cond.Field)
	obj.set("operator", cond.Operator)
	if cond.Value != nil {
		v, err := compileValue(cond.Value)
		if err != nil {
			return nil, err
		}
		obj.set("value", v)
	}
	return obj, nil
}

func compileValue(value ast.Value) (interface{}, error) {
	switch v := value.(type) {
	case ast.String:
		return string(v), nil
	case ast.Int:
		return int64(v), nil
	case ast.Float:
		return float64(v), nil
	case ast.Bool:
		return bool(v), nil
	case ast.Null:
		return nil, nil
	case ast.PathRef:
		return v.Raw, nil
	case ast.CredentialRef:
		inner := newOrderedObject()
		inner.set("id", v.ID)
		ref := newOrderedObject()
		ref.set("credentialRef", inner)
		return ref, nil
	case ast.Object:
		obj := newOrderedObject()
		for _, prop := range v.Properties {
			pv, err := compileValue(prop.Value)
			if err != nil {
				return nil, err
			}
			obj.set(prop.Key, pv)
		}
		return obj, nil
	case ast.Array:
		items := make([]interface{}, 0, len(v.Items))
		for _, item := range v.Items {
			iv, err := compileValue(item)
			if err != nil {
				return nil, err
			}
			items = append(items, iv)
		}
		return items, nil
	}
	return nil, &CompileError{Message: fmt.Sprintf("Unknown value type: %T", value)}
}

func targetList(targets []string, alwaysArray bool) interface{} {
	if !alwaysArray && len(targets) == 1 {
		return targets[0]
	}
	out := make([]interface{}, len(targets))
	for i, t := range targets {
		out[i] = t
	}
	return out
}

func joinCompact(msgs []*orderedObject) (string, error) {
	lines := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		b, err := msg.MarshalJSON()
		if err != nil {
			return "", err
		}
		lines = append(lines, string(b))
	}
	return strings.Join(lines, "\n"), nil
}

func joinPretty(msgs []*orderedObject) (string, error) {
	blocks := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		compact, err := msg.MarshalJSON()
		if err != nil {
			return "", err
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, compact, "", "  "); err != nil {
			return "", err
		}
		blocks = append(blocks, buf.String())
	}
	return strings.Join(blocks, "\n\n"), nil
}
