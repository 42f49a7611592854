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

// Package recovery repairs common machine-generated syntax mistakes before
// parsing. Generated workflow source frequently carries habits from other
// languages (semicolons, Python booleans, arrow variants); an ordered fix
// list rewrites those into valid syntax and reports what it changed.
package recovery

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/MauricioPerera/a2e-lang/pkg/workflow/ast"
	"github.com/MauricioPerera/a2e-lang/pkg/workflow/parser"
)

type fix struct {
	pattern     *regexp.Regexp
	replacement string
	description string
}

// Ordering matters: the colon fix must run before the quote fix would see
// the name, and keyword rewrites before arrow rewrites.
var fixes = []fix{
	{
		// workflow: "name"  ->  workflow "name"
		regexp.MustCompile(`(?m)^(\s*workflow)\s*:\s*`),
		"$1 ",
		"Removed colon after 'workflow'",
	},
	{
		// workflow my-pipeline  ->  workflow "my-pipeline"
		regexp.MustCompile(`(?m)^(\s*workflow\s+)([a-zA-Z_][a-zA-Z0-9_-]*)\s*$`),
		`$1"$2"`,
		"Added quotes around workflow name",
	},
	{
		regexp.MustCompile(`(?m);\s*$`),
		"",
		"Removed trailing semicolons",
	},
	{
		// method: string = "GET"  ->  method: "GET"
		regexp.MustCompile(`:\s*(?:string|number|boolean|int|float)\s*=\s*`),
		": ",
		"Removed type annotations",
	},
	{
		// fetch = operation ApiCall {  ->  fetch = ApiCall {
		regexp.MustCompile(`=\s*(?:operation|op)\s+([A-Z]\w+)`),
		"= $1",
		"Removed 'operation' keyword prefix",
	},
	{
		// => /out  ->  -> /out  (but never touch ==)
		regexp.MustCompile(`(^|[^=])\s*=>\s*(/\S+)`),
		"$1 -> $2",
		"Converted => to ->",
	},
	{
		regexp.MustCompile(`-->\s*(/\S+)`),
		"-> $1",
		"Converted --> to ->",
	},
	{
		// input /data  ->  from /data
		regexp.MustCompile(`(?m)^\s*input\s+(/\S+)`),
		"  from $1",
		"Converted 'input' to 'from'",
	},
	{
		// output /result  ->  -> /result
		regexp.MustCompile(`(?m)^\s*output\s+(/\S+)`),
		"  -> $1",
		"Converted 'output' to '->'",
	},
	{
		// execute: a -> b  ->  run: a -> b
		regexp.MustCompile(`(?m)^(\s*)(?:execute|order)\s*:`),
		"${1}run:",
		"Converted 'execute'/'order' to 'run'",
	},
	{
		// { key: "val", }  ->  { key: "val" }
		regexp.MustCompile(`,\s*(\})`),
		" $1",
		"Removed trailing commas",
	},
	{
		regexp.MustCompile(`\bTrue\b`),
		"true",
		"Converted Python 'True' to 'true'",
	},
	{
		regexp.MustCompile(`\bFalse\b`),
		"false",
		"Converted Python 'False' to 'false'",
	},
	{
		regexp.MustCompile(`\bNone\b`),
		"null",
		"Converted Python 'None' to 'null'",
	},
	{
		// method: 'GET'  ->  method: "GET"
		regexp.MustCompile(`(:\s)'([^']*)'`),
		`$1"$2"`,
		"Converted single quotes to double quotes",
	},
}

// Result reports what recovery did to a source text.
type Result struct {
	// Source is the repaired text; equal to Original when nothing matched.
	Source string

	// Original is the input as given.
	Original string

	// Fixes lists the descriptions of applied rewrites in order.
	Fixes []string
}

// Modified reports whether any fix changed the source.
func (r *Result) Modified() bool { return r.Source != r.Original }

// Summary renders the applied fixes for human consumption.
func (r *Result) Summary() string {
	if len(r.Fixes) == 0 {
		return "No fixes needed"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Applied %d fix(es):", len(r.Fixes))
	for _, f := range r.Fixes {
		sb.WriteString("\n  • " + f)
	}
	return sb.String()
}

// Recover applies the fix list to source and reports every rewrite that
// changed the text. It never parses; callers decide what to do with the
// repaired source.
func Recover(source string) *Result {
	result := &Result{Original: source}

	current := source
	for _, f := range fixes {
		repaired := f.pattern.ReplaceAllString(current, f.replacement)
		if repaired != current {
			result.Fixes = append(result.Fixes, f.description)
			current = repaired
		}
	}

	result.Source = current
	return result
}

// ParseWithRecovery parses source, and on a parse error retries once with
// the repaired text. The returned Result records the fixes that made the
// second attempt possible; when the first parse succeeds it is empty.
func ParseWithRecovery(source string) (*ast.Workflow, *Result, error) {
	wf, err := parser.Parse(source)
	if err == nil {
		return wf, &Result{Source: source, Original: source}, nil
	}

	result := Recover(source)
	if !result.Modified() {
		return nil, result, err
	}

	wf, retryErr := parser.Parse(result.Source)
	if retryErr != nil {
		return nil, result, retryErr
	}
	return wf, result, nil
}
