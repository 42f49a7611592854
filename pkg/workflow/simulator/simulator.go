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

// Package simulator traces a workflow without side effects: no waits, no
// calls, no storage. Conditions evaluate against caller-provided mock data,
// so the trace shows which operations would run, which branches would be
// taken, and which data paths would be written.
package simulator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MauricioPerera/a2e-lang/pkg/workflow/ast"
	"github.com/MauricioPerera/a2e-lang/pkg/workflow/engine"
)

// maxBranchDepth cuts off branch graphs the validator was not asked about.
const maxBranchDepth = 100

// Result is a dry-run trace.
type Result struct {
	Executed     []string
	PathsWritten map[string]interface{}
	Branches     []string
	Skipped      []string
	Warnings     []string
}

// Summary renders the trace for human consumption.
func (r *Result) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Operations executed: %d", len(r.Executed))
	for _, id := range r.Executed {
		sb.WriteString("\n  ✓ " + id)
	}
	if len(r.Skipped) > 0 {
		fmt.Fprintf(&sb, "\nOperations skipped: %d", len(r.Skipped))
		for _, id := range r.Skipped {
			sb.WriteString("\n  ✗ " + id)
		}
	}
	if len(r.Branches) > 0 {
		sb.WriteString("\nBranches:")
		for _, b := range r.Branches {
			sb.WriteString("\n  → " + b)
		}
	}
	fmt.Fprintf(&sb, "\nPaths written: %d", len(r.PathsWritten))
	paths := make([]string, 0, len(r.PathsWritten))
	for path := range r.PathsWritten {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		sb.WriteString("\n  " + path)
	}
	if len(r.Warnings) > 0 {
		fmt.Fprintf(&sb, "\nWarnings: %d", len(r.Warnings))
		for _, w := range r.Warnings {
			sb.WriteString("\n  ⚠ " + w)
		}
	}
	return sb.String()
}

// Simulate traces wf against the given mock data (path to value).
func Simulate(wf *ast.Workflow, input map[string]interface{}) *Result {
	result := &Result{PathsWritten: make(map[string]interface{})}

	data := make(map[string]interface{}, len(input))
	for k, v := range input {
		data[k] = v
	}

	opMap := make(map[string]*ast.Operation, len(wf.Operations))
	for i := range wf.Operations {
		opMap[wf.Operations[i].ID] = &wf.Operations[i]
	}

	for _, opID := range wf.EffectiveOrder() {
		op, ok := opMap[opID]
		if !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Unknown operation '%s' in execution order", opID))
			continue
		}
		simulateOperation(op, data, result, opMap, 0)
	}

	executed := make(map[string]bool, len(result.Executed))
	for _, id := range result.Executed {
		executed[id] = true
	}
	for i := range wf.Operations {
		if !executed[wf.Operations[i].ID] {
			result.Skipped = append(result.Skipped, wf.Operations[i].ID)
		}
	}

	return result
}

func simulateOperation(op *ast.Operation, data map[string]interface{}, result *Result, opMap map[string]*ast.Operation, depth int) {
	if depth > maxBranchDepth {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s: branch depth limit exceeded", op.ID))
		return
	}

	if op.OpType == ast.OpConditional && op.If != nil {
		taken := engine.EvalCondition(data[op.If.Path], op.If.Operator, engine.ResolveValue(op.If.Value))
		result.Executed = append(result.Executed, op.ID)

		targets := op.If.IfFalse
		if taken {
			result.Branches = append(result.Branches, op.ID+": then (condition met)")
			targets = op.If.IfTrue
		} else {
			result.Branches = append(result.Branches, op.ID+": else (condition not met)")
		}
		for _, target := range targets {
			if next, ok := opMap[target]; ok {
				simulateOperation(next, data, result, opMap, depth+1)
			}
		}
		return
	}

	result.Executed = append(result.Executed, op.ID)

	switch op.OpType {
	case ast.OpWait:
		duration := propValue(op, "duration")
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s: Would wait %vms", op.ID, duration))

	case ast.OpApiCall:
		if op.OutputPath == "" {
			return
		}
		if mock, ok := data[op.OutputPath]; ok {
			result.PathsWritten[op.OutputPath] = mock
			return
		}
		placeholder := map[string]interface{}{
			"_simulated": true,
			"method":     propValue(op, "method"),
			"url":        propValue(op, "url"),
		}
		data[op.OutputPath] = placeholder
		result.PathsWritten[op.OutputPath] = placeholder
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s: No mock data for %s, using placeholder", op.ID, op.OutputPath))

	case ast.OpFilterData:
		var input interface{}
		if op.InputPath != "" {
			input = data[op.InputPath]
		}
		if records, isList := input.([]interface{}); isList && len(op.Conditions) > 0 {
			filtered := applyFilters(records, op.Conditions)
			if op.OutputPath != "" {
				data[op.OutputPath] = filtered
				result.PathsWritten[op.OutputPath] = filtered
			}
			return
		}
		if op.OutputPath != "" {
			data[op.OutputPath] = input
			result.PathsWritten[op.OutputPath] = input
			if input == nil && op.InputPath != "" {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("%s: Input path %s has no data", op.ID, op.InputPath))
			}
		}

	case ast.OpLoop:
		var input interface{}
		if op.InputPath != "" {
			input = data[op.InputPath]
		}
		if records, isList := input.([]interface{}); isList {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s: Would loop over %d items", op.ID, len(records)))
		} else {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s: Loop input is not a list or not available", op.ID))
		}

	default:
		if op.InputPath != "" && op.OutputPath != "" {
			v := data[op.InputPath]
			data[op.OutputPath] = v
			result.PathsWritten[op.OutputPath] = v
			return
		}
		if op.OutputPath != "" {
			placeholder := map[string]interface{}{"_simulated": true, "op": op.OpType}
			data[op.OutputPath] = placeholder
			result.PathsWritten[op.OutputPath] = placeholder
		}
	}
}

func applyFilters(records []interface{}, conditions []ast.Condition) []interface{} {
	filtered := make([]interface{}, 0, len(records))
	for _, item := range records {
		record, isMap := item.(map[string]interface{})
		if !isMap {
			continue
		}
		match := true
		for i := range conditions {
			cond := &conditions[i]
			if !engine.EvalCondition(record[cond.Field], cond.Operator, engine.ResolveValue(cond.Value)) {
				match = false
				break
			}
		}
		if match {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

func propValue(op *ast.Operation, key string) interface{} {
	v, ok := op.Property(key)
	if !ok {
		return nil
	}
	return engine.ResolveValue(v)
}
