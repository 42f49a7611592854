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

package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MauricioPerera/a2e-lang/pkg/workflow/ast"
)

func mustParse(t *testing.T, source string) *ast.Workflow {
	t.Helper()
	wf, err := Parse(source)
	require.NoError(t, err)
	return wf
}

func findProperty(t *testing.T, op *ast.Operation, key string) ast.Value {
	t.Helper()
	v, ok := op.Property(key)
	require.True(t, ok, "property %q not found", key)
	return v
}

func TestParseWorkflowName(t *testing.T) {
	wf := mustParse(t, `workflow "my-workflow"`)
	assert.Equal(t, "my-workflow", wf.Name)
	assert.Empty(t, wf.Operations)
	assert.Nil(t, wf.ExecutionOrder)

	wf = mustParse(t, `workflow "hello world"`)
	assert.Equal(t, "hello world", wf.Name)
}

func TestParseSimpleOperation(t *testing.T) {
	wf := mustParse(t, `
	workflow "t"
	fetch = ApiCall {
		method: "GET"
		url: "https://example.com"
		-> /workflow/data
	}
	`)
	require.Len(t, wf.Operations, 1)
	op := wf.Operations[0]
	assert.Equal(t, "fetch", op.ID)
	assert.Equal(t, ast.OpApiCall, op.OpType)
	assert.Equal(t, "/workflow/data", op.OutputPath)
	assert.Equal(t, ast.String("GET"), findProperty(t, &op, "method"))
	assert.Equal(t, 3, op.Line)
}

func TestParseFromAndWhere(t *testing.T) {
	wf := mustParse(t, `
	workflow "t"
	f = FilterData {
		from /workflow/data
		where points > 100, status == "active"
		-> /workflow/out
	}
	`)
	op := wf.Operations[0]
	assert.Equal(t, "/workflow/data", op.InputPath)
	require.Len(t, op.Conditions, 2)
	assert.Equal(t, ast.Condition{Field: "points", Operator: ">", Value: ast.Int(100)}, op.Conditions[0])
	assert.Equal(t, ast.Condition{Field: "status", Operator: "==", Value: ast.String("active")}, op.Conditions[1])
}

func TestParseUnaryCondition(t *testing.T) {
	wf := mustParse(t, `
	workflow "t"
	f = FilterData {
		from /workflow/data
		where email exists, name empty
		-> /workflow/out
	}
	`)
	op := wf.Operations[0]
	require.Len(t, op.Conditions, 2)
	assert.Equal(t, "exists", op.Conditions[0].Operator)
	assert.Nil(t, op.Conditions[0].Value)
	assert.Equal(t, "empty", op.Conditions[1].Operator)
}

func TestParseIfThenElse(t *testing.T) {
	wf := mustParse(t, `
	workflow "t"
	check = Conditional {
		if /workflow/data > 0
		then process, notify
		else fallback
	}
	`)
	op := wf.Operations[0]
	require.NotNil(t, op.If)
	assert.Equal(t, "/workflow/data", op.If.Path)
	assert.Equal(t, ">", op.If.Operator)
	assert.Equal(t, ast.Int(0), op.If.Value)
	assert.Equal(t, []string{"process", "notify"}, op.If.IfTrue)
	assert.Equal(t, []string{"fallback"}, op.If.IfFalse)
}

func TestParseIfWithoutElse(t *testing.T) {
	wf := mustParse(t, `
	workflow "t"
	check = Conditional {
		if /workflow/data exists
		then process
	}
	`)
	op := wf.Operations[0]
	require.NotNil(t, op.If)
	assert.Equal(t, "exists", op.If.Operator)
	assert.Nil(t, op.If.Value)
	assert.Nil(t, op.If.IfFalse)
}

func TestParseValueForms(t *testing.T) {
	wf := mustParse(t, `
	workflow "t"
	op = ApiCall {
		method: "GET"
		url: "https://example.com"
		timeout: 30
		ratio: 3.14
		retry: true
		cache: false
		body: null
		storage: localStorage
		headers: { "Content-Type": "application/json", Authorization: credential("my-key") }
		sources: [/workflow/a, /workflow/b]
		-> /workflow/out
	}
	`)
	op := wf.Operations[0]
	assert.Equal(t, ast.Int(30), findProperty(t, &op, "timeout"))
	assert.Equal(t, ast.Float(3.14), findProperty(t, &op, "ratio"))
	assert.Equal(t, ast.Bool(true), findProperty(t, &op, "retry"))
	assert.Equal(t, ast.Bool(false), findProperty(t, &op, "cache"))
	assert.Equal(t, ast.Null{}, findProperty(t, &op, "body"))
	assert.Equal(t, ast.String("localStorage"), findProperty(t, &op, "storage"))

	headers, ok := findProperty(t, &op, "headers").(ast.Object)
	require.True(t, ok)
	require.Len(t, headers.Properties, 2)
	assert.Equal(t, "Content-Type", headers.Properties[0].Key)
	assert.Equal(t, ast.String("application/json"), headers.Properties[0].Value)
	assert.Equal(t, ast.CredentialRef{ID: "my-key"}, headers.Properties[1].Value)

	sources, ok := findProperty(t, &op, "sources").(ast.Array)
	require.True(t, ok)
	require.Len(t, sources.Items, 2)
	assert.Equal(t, ast.PathRef{Raw: "/workflow/a"}, sources.Items[0])
}

func TestParseStringEscapes(t *testing.T) {
	wf := mustParse(t, `
	workflow "t"
	op = Wait {
		duration: 1
		note: "say \"hi\" and a back\\slash"
	}
	`)
	op := wf.Operations[0]
	assert.Equal(t, ast.String(`say "hi" and a back\slash`), findProperty(t, &op, "note"))
}

func TestParseRunDecl(t *testing.T) {
	wf := mustParse(t, `
	workflow "t"
	a = Wait { duration: 1 }
	b = Wait { duration: 2 }
	run: a -> b
	`)
	assert.Equal(t, []string{"a", "b"}, wf.ExecutionOrder)

	wf = mustParse(t, `
	workflow "t"
	op = Wait { duration: 1 }
	run: op
	`)
	assert.Equal(t, []string{"op"}, wf.ExecutionOrder)
}

func TestParseSingleLineBody(t *testing.T) {
	wf := mustParse(t, `workflow "t"
	op = StoreData { from /workflow/d storage: "localStorage" key: "k" }`)
	op := wf.Operations[0]
	assert.Equal(t, "/workflow/d", op.InputPath)
	assert.Equal(t, ast.String("k"), findProperty(t, &op, "key"))
}

func TestParseCommentsIgnored(t *testing.T) {
	wf := mustParse(t, `
	# leading comment
	workflow "t"
	# between
	op = Wait { duration: 100 } # trailing
	# end
	`)
	assert.Equal(t, "t", wf.Name)
	assert.Len(t, wf.Operations, 1)
}

func TestParseAllBuiltinTypes(t *testing.T) {
	sources := map[string]string{
		ast.OpApiCall:            `op = ApiCall { method: "GET" url: "https://x.com" -> /workflow/r }`,
		ast.OpFilterData:         `op = FilterData { from /workflow/d where x == 1 -> /workflow/r }`,
		ast.OpTransformData:      `op = TransformData { from /workflow/d transform: "sort" -> /workflow/r }`,
		ast.OpConditional:        `op = Conditional { if /workflow/d > 0 then op }`,
		ast.OpLoop:               `op = Loop { from /workflow/d operations: [x] -> /workflow/r }`,
		ast.OpStoreData:          `op = StoreData { from /workflow/d storage: "localStorage" key: "k" }`,
		ast.OpWait:               `op = Wait { duration: 5000 }`,
		ast.OpMergeData:          `op = MergeData { sources: [/workflow/a] strategy: "concat" -> /workflow/r }`,
		ast.OpGetCurrentDateTime: `op = GetCurrentDateTime { timezone: "UTC" -> /workflow/r }`,
		ast.OpConvertTimezone:    `op = ConvertTimezone { from /workflow/d toTimezone: "US/Pacific" -> /workflow/r }`,
		ast.OpDateCalculation:    `op = DateCalculation { from /workflow/d operation: "add" days: 7 -> /workflow/r }`,
		ast.OpFormatText:         `op = FormatText { from /workflow/d format: "upper" -> /workflow/r }`,
		ast.OpExtractText:        `op = ExtractText { from /workflow/d pattern: "[0-9]+" -> /workflow/r }`,
		ast.OpValidateData:       `op = ValidateData { from /workflow/d validationType: "email" -> /workflow/r }`,
		ast.OpCalculate:          `op = Calculate { from /workflow/d operation: "sum" -> /workflow/r }`,
		ast.OpEncodeDecode:       `op = EncodeDecode { from /workflow/d operation: "encode" encoding: "base64" -> /workflow/r }`,
	}
	for opType, body := range sources {
		wf := mustParse(t, "workflow \"t\"\n"+body)
		require.Len(t, wf.Operations, 1, opType)
		assert.Equal(t, opType, wf.Operations[0].OpType)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name   string
		source string
	}{
		{"missing workflow decl", `op = Wait { duration: 100 }`},
		{"unclosed brace", "workflow \"t\"\nop = Wait { duration: 100"},
		{"invalid characters", "workflow \"t\"\n!!invalid!!"},
		{"unterminated string", `workflow "t`},
		{"missing then", "workflow \"t\"\nop = Conditional { if /workflow/d > 0 }"},
		{"property without value", "workflow \"t\"\nop = Wait { duration: }"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.source)
			require.Error(t, err)
			var perr *ParseError
			assert.True(t, errors.As(err, &perr))
		})
	}
}

func TestParseErrorCarriesLocation(t *testing.T) {
	_, err := Parse("workflow \"t\"\nop = Wait { duration: }")
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Line)
	assert.Contains(t, err.Error(), "(line 2")
}
