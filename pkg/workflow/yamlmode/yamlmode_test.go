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

package yamlmode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MauricioPerera/a2e-lang/pkg/workflow/ast"
	"github.com/MauricioPerera/a2e-lang/pkg/workflow/compiler"
	"github.com/MauricioPerera/a2e-lang/pkg/workflow/parser"
)

func TestParseMinimalWorkflow(t *testing.T) {
	doc, err := Parse(`
workflow: user_pipeline
steps:
  - id: fetch_users
    type: fetch
    method: GET
    url: https://api.example.com/users
    output: /users
`)
	require.NoError(t, err)
	assert.Equal(t, "user_pipeline", doc.Name)
	require.Len(t, doc.Steps, 1)
	assert.Equal(t, "fetch", doc.Steps[0]["type"])
}

func TestParseStructuralErrors(t *testing.T) {
	cases := []struct {
		name    string
		source  string
		message string
	}{
		{"not yaml", "workflow: [unclosed", "Invalid YAML"},
		{"empty", "", "Root must be a YAML mapping"},
		{"no workflow key", "steps:\n  - id: a\n    type: fetch", "Missing 'workflow' key"},
		{"no steps", "workflow: x", "Missing 'steps' list"},
		{"empty steps", "workflow: x\nsteps: []", "at least one step"},
		{"missing id", "workflow: x\nsteps:\n  - type: fetch", "Step 0: missing 'id'"},
		{"missing type", "workflow: x\nsteps:\n  - id: a", "Step 0 (a): missing 'type'"},
		{"unknown type", "workflow: x\nsteps:\n  - id: a\n    type: teleport", "unknown type 'teleport'"},
		{"duplicate id", "workflow: x\nsteps:\n  - id: a\n    type: merge\n    sources: [/x]\n  - id: a\n    type: merge\n    sources: [/x]", "duplicate id 'a'"},
		{"missing required", "workflow: x\nsteps:\n  - id: a\n    type: fetch\n    method: GET", "type 'fetch' requires 'url'"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.source)
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Message, tc.message)
		})
	}
}

func TestKeySynonymsNormalized(t *testing.T) {
	doc, err := Parse(`
workflow: synonyms
steps:
  - id: shape
    type: transform
    source: /raw
    using: sort
    to: /sorted
`)
	require.NoError(t, err)

	step := doc.Steps[0]
	assert.Equal(t, "/raw", step["input"])
	assert.Equal(t, "sort", step["transform"])
	assert.Equal(t, "/sorted", step["output"])
}

func TestMergeNumberedInputs(t *testing.T) {
	doc, err := Parse(`
workflow: merging
steps:
  - id: combine
    type: merge
    input1: /a
    input2: /b
    output: /all
`)
	require.NoError(t, err)

	sources, ok := doc.Steps[0]["sources"].([]interface{})
	require.True(t, ok)
	assert.Equal(t, []interface{}{"/a", "/b"}, sources)
}

func TestTransformObjectFlattened(t *testing.T) {
	doc, err := Parse(`
workflow: flatten
steps:
  - id: shape
    type: transform
    input: /raw
    transform:
      type: sort
      field: price
`)
	require.NoError(t, err)

	step := doc.Steps[0]
	assert.Equal(t, "sort", step["transform"])
	config, ok := step["config"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "price", config["field"])
}

func TestWhereClauseParsing(t *testing.T) {
	conditions, err := parseWhere("price >= 50")
	require.NoError(t, err)
	require.Len(t, conditions, 1)
	assert.Equal(t, "price", conditions[0].Field)
	assert.Equal(t, ">=", conditions[0].Operator)
	assert.Equal(t, ast.Int(50), conditions[0].Value)

	conditions, err = parseWhere([]interface{}{"status == active", "score > 1.5"})
	require.NoError(t, err)
	require.Len(t, conditions, 2)
	assert.Equal(t, ast.String("active"), conditions[0].Value)
	assert.Equal(t, ast.Float(1.5), conditions[1].Value)

	_, err = parseWhere("not a condition")
	assert.Error(t, err)
}

func TestConditionParsing(t *testing.T) {
	path, op, value := parseCondition("count > 0")
	assert.Equal(t, "count", path)
	assert.Equal(t, ">", op)
	assert.Equal(t, ast.Int(0), value)

	path, op, value = parseCondition("/data/temp >= 30")
	assert.Equal(t, "/data/temp", path)
	assert.Equal(t, ">=", op)
	assert.Equal(t, ast.Int(30), value)

	path, op, value = parseCondition("ready")
	assert.Equal(t, "ready", path)
	assert.Equal(t, "==", op)
	assert.Equal(t, ast.Bool(true), value)
}

func TestCoerceValue(t *testing.T) {
	assert.Equal(t, ast.String("quoted"), coerceValue(`"quoted"`))
	assert.Equal(t, ast.Bool(true), coerceValue("True"))
	assert.Equal(t, ast.Int(42), coerceValue("42"))
	assert.Equal(t, ast.Float(1.5), coerceValue("1.5"))
	assert.Equal(t, ast.String("plain"), coerceValue("plain"))
}

func TestCompileMatchesBundledCompiler(t *testing.T) {
	yamlSource := `
workflow: users
steps:
  - id: keep_active
    type: filter
    input: /users
    where: active == true
    output: /active
`
	dslSource := `workflow "users"

keep_active = FilterData {
    from /users
    where active == true
    -> /active
}

run: keep_active
`
	fromYAML, err := Compile(yamlSource)
	require.NoError(t, err)

	wf, err := parser.Parse(dslSource)
	require.NoError(t, err)
	fromDSL, err := (&compiler.Compiler{}).Compile(wf)
	require.NoError(t, err)

	assert.Equal(t, fromDSL, fromYAML)
}

func TestCompileFetchWithCredentialHeader(t *testing.T) {
	out, err := Compile(`
workflow: secure
steps:
  - id: call
    type: fetch
    method: GET
    url: https://api.example.com/v1
    headers:
      Authorization: credential:api_token
    output: /data
`)
	require.NoError(t, err)
	assert.Contains(t, out, `"Authorization":{"credentialRef":{"id":"api_token"}}`)
	assert.Contains(t, out, `"outputPath":"/data"`)
}

func TestCompileBranchAndStoreDefaults(t *testing.T) {
	out, err := Compile(`
workflow: decide
steps:
  - id: check
    type: branch
    condition: /count > 10
    then: archive
    else: [keep, archive]
  - id: archive
    type: store
    input: /count
    key: archived
`)
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"condition":{"path":"/count","operator":">","value":10}`)
	assert.Contains(t, lines[0], `"ifTrue":"archive"`)
	assert.Contains(t, lines[0], `"ifFalse":["keep","archive"]`)
	assert.Contains(t, lines[0], `"storage":"localStorage"`)
	assert.Contains(t, lines[1], `"root":"check"`)
}

func TestCompilePrettyIndents(t *testing.T) {
	out, err := CompilePretty(`
workflow: pretty
steps:
  - id: combine
    type: merge
    sources: [/a, /b]
    output: /all
`)
	require.NoError(t, err)
	assert.Contains(t, out, "{\n  \"operationUpdate\": {")
	assert.Contains(t, out, "\n\n")
}
