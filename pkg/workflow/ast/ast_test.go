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

package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveOrderDefaultsToDeclarationOrder(t *testing.T) {
	wf := &Workflow{
		Name: "test",
		Operations: []Operation{
			{ID: "fetch", OpType: OpApiCall},
			{ID: "filter", OpType: OpFilterData},
		},
	}
	assert.Equal(t, []string{"fetch", "filter"}, wf.EffectiveOrder())

	wf.ExecutionOrder = []string{"filter", "fetch"}
	assert.Equal(t, []string{"filter", "fetch"}, wf.EffectiveOrder())
}

func TestWorkflowOperationLookup(t *testing.T) {
	wf := &Workflow{
		Operations: []Operation{
			{ID: "a", OpType: OpWait},
			{ID: "b", OpType: OpStoreData},
		},
	}
	op := wf.Operation("b")
	require.NotNil(t, op)
	assert.Equal(t, OpStoreData, op.OpType)
	assert.Nil(t, wf.Operation("missing"))
}

func TestOperationPropertyLookup(t *testing.T) {
	op := &Operation{
		ID:     "fetch",
		OpType: OpApiCall,
		Properties: []Property{
			{Key: "method", Value: String("GET")},
			{Key: "timeout", Value: Int(30)},
		},
	}

	v, ok := op.Property("method")
	require.True(t, ok)
	assert.Equal(t, String("GET"), v)

	_, ok = op.Property("url")
	assert.False(t, ok)
}

func TestBuiltinTypeCatalog(t *testing.T) {
	names := BuiltinTypeNames()
	assert.Len(t, names, 16)
	assert.Contains(t, names, OpApiCall)
	assert.Contains(t, names, OpEncodeDecode)

	spec, ok := BuiltinType(OpApiCall)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"method", "url"}, spec.RequiredProperties)
	assert.False(t, spec.RequiresInput)
	assert.True(t, spec.RequiresOutput)

	spec, ok = BuiltinType(OpStoreData)
	require.True(t, ok)
	assert.True(t, spec.RequiresInput)
	assert.False(t, spec.RequiresOutput)

	_, ok = BuiltinType("Bogus")
	assert.False(t, ok)
}

func TestOperatorSets(t *testing.T) {
	assert.True(t, BinaryOperators["=="])
	assert.True(t, BinaryOperators["startsWith"])
	assert.True(t, UnaryOperators["exists"])
	assert.False(t, UnaryOperators["=="])
}
