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

// Package graph renders workflow ASTs as Mermaid flowcharts. Edges carry
// data-flow (who writes the path an operation reads), branch targets, loop
// bodies and the explicit execution order.
package graph

import (
	"fmt"
	"strings"

	"github.com/MauricioPerera/a2e-lang/pkg/workflow/ast"
)

// Node style by operation type; unlisted types get defaultStyle.
var opStyles = map[string]string{
	ast.OpApiCall:       "fill:#1e40af,stroke:#3b82f6,color:#e2e8f0",
	ast.OpFilterData:    "fill:#7c3aed,stroke:#8b5cf6,color:#e2e8f0",
	ast.OpTransformData: "fill:#7c3aed,stroke:#8b5cf6,color:#e2e8f0",
	ast.OpConditional:   "fill:#b45309,stroke:#f59e0b,color:#e2e8f0",
	ast.OpLoop:          "fill:#b45309,stroke:#f59e0b,color:#e2e8f0",
	ast.OpStoreData:     "fill:#065f46,stroke:#10b981,color:#e2e8f0",
	ast.OpWait:          "fill:#64748b,stroke:#94a3b8,color:#e2e8f0",
	ast.OpMergeData:     "fill:#065f46,stroke:#10b981,color:#e2e8f0",
}

const defaultStyle = "fill:#1e293b,stroke:#64748b,color:#e2e8f0"

// Mermaid renders the workflow as a Mermaid "graph TD" flowchart.
func Mermaid(wf *ast.Workflow) string {
	lines := []string{"graph TD"}

	writers := make(map[string]string)
	for i := range wf.Operations {
		op := &wf.Operations[i]
		if op.OutputPath != "" {
			writers[op.OutputPath] = op.ID
		}
	}

	for i := range wf.Operations {
		op := &wf.Operations[i]
		lines = append(lines, "    "+op.ID+nodeShape(op))
	}

	lines = append(lines, "")

	for i := range wf.Operations {
		op := &wf.Operations[i]
		for _, path := range readPaths(op) {
			if source, ok := writers[path]; ok && source != op.ID {
				lines = append(lines, fmt.Sprintf("    %s -->|%s| %s", source, path, op.ID))
			}
		}
	}

	for i := range wf.Operations {
		op := &wf.Operations[i]
		if op.If == nil {
			continue
		}
		for _, target := range op.If.IfTrue {
			lines = append(lines, fmt.Sprintf("    %s -->|then| %s", op.ID, target))
		}
		for _, target := range op.If.IfFalse {
			lines = append(lines, fmt.Sprintf("    %s -->|else| %s", op.ID, target))
		}
	}

	for i := range wf.Operations {
		op := &wf.Operations[i]
		if op.OpType != ast.OpLoop {
			continue
		}
		body, ok := op.Property("operations")
		if !ok {
			continue
		}
		if arr, isArr := body.(ast.Array); isArr {
			for _, item := range arr.Items {
				if s, isStr := item.(ast.String); isStr {
					lines = append(lines, fmt.Sprintf("    %s -->|loop| %s", op.ID, string(s)))
				}
			}
		}
	}

	if len(wf.ExecutionOrder) > 1 {
		lines = append(lines, "", "    %% Execution order")
		for i := 0; i < len(wf.ExecutionOrder)-1; i++ {
			lines = append(lines, fmt.Sprintf("    %s -.->|next| %s",
				wf.ExecutionOrder[i], wf.ExecutionOrder[i+1]))
		}
	}

	lines = append(lines, "")

	for i := range wf.Operations {
		op := &wf.Operations[i]
		style, ok := opStyles[op.OpType]
		if !ok {
			style = defaultStyle
		}
		lines = append(lines, fmt.Sprintf("    style %s %s", op.ID, style))
	}

	return strings.Join(lines, "\n")
}

// nodeShape picks the Mermaid node delimiters for an operation: diamond for
// branches, circle for loops, parallelogram for calls, rectangle otherwise.
func nodeShape(op *ast.Operation) string {
	label := op.ID + "\\n" + op.OpType
	switch op.OpType {
	case ast.OpConditional:
		return "{" + label + "}"
	case ast.OpLoop:
		return "((" + label + "))"
	case ast.OpApiCall:
		return "[/" + label + "/]"
	default:
		return "[" + label + "]"
	}
}

// readPaths lists the data paths an operation consumes.
func readPaths(op *ast.Operation) []string {
	var paths []string
	if op.InputPath != "" {
		paths = append(paths, op.InputPath)
	}
	if op.If != nil {
		paths = append(paths, op.If.Path)
	}
	if sources, ok := op.Property("sources"); ok {
		if arr, isArr := sources.(ast.Array); isArr {
			for _, item := range arr.Items {
				if p, isPath := item.(ast.PathRef); isPath {
					paths = append(paths, p.Raw)
				}
			}
		}
	}
	return paths
}
