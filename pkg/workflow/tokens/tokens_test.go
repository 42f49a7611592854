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

package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("ab"))
	assert.Equal(t, 1, EstimateTokens("abcd"))
	assert.Equal(t, 25, EstimateTokens(strings.Repeat("x", 100)))
}

func TestCalculateBudget(t *testing.T) {
	source := `workflow "budget"

fetch = ApiCall {
    method: "GET"
    url: "https://api.example.com/users"
    -> /users
}
`
	budget, err := Calculate(source)
	require.NoError(t, err)

	assert.Equal(t, len(source), budget.DSLChars)
	assert.Equal(t, EstimateTokens(source), budget.DSLTokens)
	assert.Greater(t, budget.JSONLChars, 0)
	assert.Greater(t, budget.JSONLTokens, 0)

	// The wire form carries structural overhead the DSL does not.
	assert.GreaterOrEqual(t, budget.JSONLChars, budget.DSLChars/2)
	assert.Equal(t, budget.JSONLTokens-budget.DSLTokens, budget.SavingsTokens())
}

func TestCalculateRejectsBadSource(t *testing.T) {
	_, err := Calculate("not a workflow")
	assert.Error(t, err)
}

func TestSummaryFormat(t *testing.T) {
	b := Budget{DSLChars: 400, DSLTokens: 100, JSONLChars: 1200, JSONLTokens: 300}

	assert.Equal(t, 200, b.SavingsTokens())
	assert.InDelta(t, 66.6, b.SavingsPct(), 0.1)
	assert.InDelta(t, 3.0, b.CompressionRatio(), 0.001)

	out := b.Summary()
	assert.Contains(t, out, "Token Budget Analysis")
	assert.Contains(t, out, "100 tokens")
	assert.Contains(t, out, "3.0x")
}

func TestZeroBudgetRatios(t *testing.T) {
	var b Budget
	assert.Equal(t, 0.0, b.SavingsPct())
	assert.Equal(t, 0.0, b.CompressionRatio())
}
