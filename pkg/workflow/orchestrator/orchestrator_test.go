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

package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const filterStep = `workflow "filter_step"

keep_active = FilterData {
    from /users
    where active == true
    -> /active
}
`

const storeStep = `workflow "store_step"

persist = StoreData {
    from /to_store
    key: "results"
    -> /stored
}
`

func noSleep(time.Duration) {}

func TestSequentialChainMapsOutputs(t *testing.T) {
	users := []interface{}{
		map[string]interface{}{"name": "ada", "active": true},
		map[string]interface{}{"name": "bob", "active": false},
	}

	result := New(WithSleep(noSleep)).
		AddStep(Step{Name: "filter", Source: filterStep}).
		AddStep(Step{
			Name:         "store",
			Source:       storeStep,
			InputMapping: map[string]string{"/to_store": "/active"},
		}).
		Run(map[string]interface{}{"/users": users})

	require.True(t, result.Success)
	assert.Equal(t, 2, result.StepsCompleted)
	require.Len(t, result.Steps, 2)
	assert.NotEmpty(t, result.Steps[0].RunID)

	stored, ok := result.Data["/stored"].(map[string]interface{})
	require.True(t, ok)
	data, ok := stored["data"].([]interface{})
	require.True(t, ok)
	assert.Len(t, data, 1)
}

func TestConditionalStepSkipped(t *testing.T) {
	result := New(WithSleep(noSleep)).
		AddStep(Step{
			Name:      "maybe",
			Source:    storeStep,
			Mode:      Conditional,
			Condition: "/flag",
		}).
		Run(map[string]interface{}{"/flag": false})

	require.True(t, result.Success)
	require.Len(t, result.Steps, 1)
	assert.True(t, result.Steps[0].Skipped)
	assert.Contains(t, result.Steps[0].Reason, "/flag")
	// A skipped step still counts toward completion.
	assert.Equal(t, 1, result.StepsCompleted)
}

func TestConditionalStepRuns(t *testing.T) {
	result := New(WithSleep(noSleep)).
		AddStep(Step{
			Name:      "maybe",
			Source:    storeStep,
			Mode:      Conditional,
			Condition: "/flag",
		}).
		Run(map[string]interface{}{"/flag": true})

	require.True(t, result.Success)
	assert.False(t, result.Steps[0].Skipped)
	assert.NotNil(t, result.Data["/stored"])
}

func TestParseFailureStopsChain(t *testing.T) {
	result := New(WithSleep(noSleep)).
		AddStep(Step{Name: "broken", Source: "not a workflow"}).
		AddStep(Step{Name: "never", Source: storeStep}).
		Run(nil)

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.StepsCompleted)
	// The chain stops at the broken step.
	require.Len(t, result.Steps, 1)
	assert.Contains(t, result.Error, "broken")
}

func TestValidationFailureStopsChain(t *testing.T) {
	invalid := `workflow "invalid"

call = ApiCall { method: "GET" }
`
	result := New(WithSleep(noSleep)).
		AddStep(Step{Name: "invalid", Source: invalid}).
		Run(nil)

	assert.False(t, result.Success)
	require.Len(t, result.Steps, 1)
	assert.Contains(t, result.Steps[0].Error, "Validation:")
	assert.Contains(t, result.Error, "failed validation")
}

func TestSummary(t *testing.T) {
	result := New(WithSleep(noSleep)).
		AddStep(Step{Name: "filter", Source: filterStep}).
		Run(map[string]interface{}{"/users": []interface{}{}})

	out := result.Summary()
	assert.Contains(t, out, "Orchestration succeeded")
	assert.Contains(t, out, "Steps: 1/1 completed")
	assert.Contains(t, out, "filter")
}
