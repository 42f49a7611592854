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

package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MauricioPerera/a2e-lang/pkg/workflow/parser"
)

func render(t *testing.T, source string) string {
	t.Helper()
	wf, err := parser.Parse(source)
	require.NoError(t, err)
	return Mermaid(wf)
}

func TestMermaidNodeShapes(t *testing.T) {
	out := render(t, `
workflow "shapes"

fetch = ApiCall { method: "GET" url: "https://x" -> /data }
check = Conditional { if /data exists then store else store }
iterate = Loop { operations: [store] from /data }
store = StoreData { key: "k" from /data }
`)

	assert.True(t, strings.HasPrefix(out, "graph TD"))
	assert.Contains(t, out, `fetch[/fetch\nApiCall/]`)
	assert.Contains(t, out, `check{check\nConditional}`)
	assert.Contains(t, out, `iterate((iterate\nLoop))`)
	assert.Contains(t, out, `store[store\nStoreData]`)
}

func TestMermaidDataFlowEdges(t *testing.T) {
	out := render(t, `
workflow "flow"

fetch = ApiCall { method: "GET" url: "https://x" -> /users }
filter = FilterData { from /users where active == true -> /active }
`)

	assert.Contains(t, out, "fetch -->|/users| filter")
	// Writes to a path nobody reads produce no edge.
	assert.NotContains(t, out, "|/active|")
}

func TestMermaidBranchAndLoopEdges(t *testing.T) {
	out := render(t, `
workflow "branches"

check = Conditional { if /n > 0 then a else b }
loop = Loop { operations: [a, b] from /n }
a = Wait { duration: 1 }
b = Wait { duration: 1 }
`)

	assert.Contains(t, out, "check -->|then| a")
	assert.Contains(t, out, "check -->|else| b")
	assert.Contains(t, out, "loop -->|loop| a")
	assert.Contains(t, out, "loop -->|loop| b")
}

func TestMermaidExecutionOrderEdges(t *testing.T) {
	out := render(t, `
workflow "ordered"

a = Wait { duration: 1 }
b = Wait { duration: 1 }
c = Wait { duration: 1 }

run: a -> b -> c
`)

	assert.Contains(t, out, "%% Execution order")
	assert.Contains(t, out, "a -.->|next| b")
	assert.Contains(t, out, "b -.->|next| c")
}

func TestMermaidOmitsOrderForSingleStep(t *testing.T) {
	out := render(t, `
workflow "single"

a = Wait { duration: 1 }

run: a
`)
	assert.NotContains(t, out, "%% Execution order")
}

func TestMermaidStyles(t *testing.T) {
	out := render(t, `
workflow "styled"

fetch = ApiCall { method: "GET" url: "https://x" -> /d }
custom = SendEmail { to: "a@b.c" from /d }
`)

	assert.Contains(t, out, "style fetch fill:#1e40af")
	// Unlisted types fall back to the default style.
	assert.Contains(t, out, "style custom fill:#1e293b")
}
