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

package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MauricioPerera/a2e-lang/pkg/workflow/retry"
)

func TestGetConfigMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := GetConfig()
	require.NoError(t, err)
	assert.Equal(t, retry.DefaultPolicy, cfg.RetryPolicy())
	assert.Zero(t, cfg.ValidatorLimits().MaxOperations)
	assert.Empty(t, cfg.RegistryDir())
}

func TestGetConfigReadsYaml(t *testing.T) {
	t.Chdir(t.TempDir())
	yaml := `retry:
  max_retries: 7
  base_delay_ms: 250
limits:
  max_operations: 20
  max_depth: 3
registry:
  dir: /tmp/reg
`
	require.NoError(t, os.WriteFile("a2e.yaml", []byte(yaml), 0o644))

	cfg, err := GetConfig()
	require.NoError(t, err)

	policy := cfg.RetryPolicy()
	assert.Equal(t, 7, policy.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, policy.BaseDelay)
	// Untouched fields keep the default policy values.
	assert.Equal(t, retry.DefaultPolicy.MaxDelay, policy.MaxDelay)

	limits := cfg.ValidatorLimits()
	assert.Equal(t, 20, limits.MaxOperations)
	assert.Equal(t, 3, limits.MaxDepth)
	assert.Zero(t, limits.MaxConditions)

	assert.Equal(t, "/tmp/reg", cfg.RegistryDir())
}

func TestGetConfigRejectsMalformedFile(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("a2e.yaml", []byte("retry: [not a mapping"), 0o644))

	_, err := GetConfig()
	assert.Error(t, err)
}
