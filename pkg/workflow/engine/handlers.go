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

package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/MauricioPerera/a2e-lang/pkg/workflow/ast"
)

// Handler executes one operation against the run context. Returning an error
// triggers the retry policy; a non-nil value is written to the operation's
// outputPath when one is declared.
type Handler func(op *ast.Operation, ctx *Context) (interface{}, error)

// Builtins returns the default handler table. The semantics are illustrative
// and non-networked: handlers simulate their effect against the in-memory
// data store. Callers may replace or extend any entry.
func Builtins() map[string]Handler {
	return map[string]Handler{
		ast.OpWait:               handleWait,
		ast.OpStoreData:          handleStoreData,
		ast.OpFilterData:         handleFilterData,
		ast.OpTransformData:      handleTransformData,
		ast.OpMergeData:          handleMergeData,
		ast.OpGetCurrentDateTime: handleGetDateTime,
		ast.OpCalculate:          handleCalculate,
		ast.OpFormatText:         handleFormatText,
	}
}

// handleNoop is the pass-through default for types without a richer native
// behavior: it forwards the input data unchanged.
func handleNoop(op *ast.Operation, ctx *Context) (interface{}, error) {
	if op.InputPath == "" {
		return nil, nil
	}
	return ctx.Get(op.InputPath), nil
}

func handleWait(op *ast.Operation, ctx *Context) (interface{}, error) {
	duration := propValue(op, "duration")
	if ms, ok := toFloat(duration); ok {
		ctx.sleep(time.Duration(ms) * time.Millisecond)
	}
	return map[string]interface{}{"waited_ms": duration}, nil
}

func handleStoreData(op *ast.Operation, ctx *Context) (interface{}, error) {
	var input interface{}
	if op.InputPath != "" {
		input = ctx.Get(op.InputPath)
	}
	return map[string]interface{}{
		"stored":  true,
		"key":     propValue(op, "key"),
		"storage": propValue(op, "storage"),
		"data":    input,
	}, nil
}

func handleFilterData(op *ast.Operation, ctx *Context) (interface{}, error) {
	var input interface{}
	if op.InputPath != "" {
		input = ctx.Get(op.InputPath)
	}
	records, ok := input.([]interface{})
	if !ok {
		return input, nil
	}
	if len(op.Conditions) == 0 {
		return records, nil
	}

	results := make([]interface{}, 0, len(records))
	for _, item := range records {
		record, isMap := item.(map[string]interface{})
		if !isMap {
			continue
		}
		match := true
		for i := range op.Conditions {
			cond := &op.Conditions[i]
			if !EvalCondition(record[cond.Field], cond.Operator, ResolveValue(cond.Value)) {
				match = false
				break
			}
		}
		if match {
			results = append(results, record)
		}
	}
	return results, nil
}

func handleTransformData(op *ast.Operation, ctx *Context) (interface{}, error) {
	var input interface{}
	if op.InputPath != "" {
		input = ctx.Get(op.InputPath)
	}
	transform, _ := propValue(op, "transform").(string)

	if records, ok := input.([]interface{}); ok && transform == "sort" {
		sorted := make([]interface{}, len(records))
		copy(sorted, records)
		sort.SliceStable(sorted, func(i, j int) bool {
			return fmt.Sprintf("%v", sorted[i]) < fmt.Sprintf("%v", sorted[j])
		})
		return sorted, nil
	}
	return input, nil
}

func handleMergeData(op *ast.Operation, ctx *Context) (interface{}, error) {
	sources, ok := propValue(op, "sources").([]interface{})
	if !ok {
		return nil, nil
	}

	merged := make([]interface{}, 0)
	for _, src := range sources {
		path, isStr := src.(string)
		if !isStr {
			continue
		}
		data := ctx.Get(path)
		if records, isList := data.([]interface{}); isList {
			merged = append(merged, records...)
		} else if data != nil {
			merged = append(merged, data)
		}
	}
	return merged, nil
}

func handleGetDateTime(op *ast.Operation, ctx *Context) (interface{}, error) {
	return ctx.now().UTC().Format(time.RFC3339Nano), nil
}

func handleCalculate(op *ast.Operation, ctx *Context) (interface{}, error) {
	return map[string]interface{}{
		"expression": propValue(op, "expression"),
		"result":     nil,
	}, nil
}

func handleFormatText(op *ast.Operation, ctx *Context) (interface{}, error) {
	template := propValue(op, "template")
	return map[string]interface{}{
		"template":  template,
		"formatted": template,
	}, nil
}

// propValue resolves a declared property to a plain Go value; nil when the
// property is absent.
func propValue(op *ast.Operation, key string) interface{} {
	v, ok := op.Property(key)
	if !ok {
		return nil
	}
	return ResolveValue(v)
}
