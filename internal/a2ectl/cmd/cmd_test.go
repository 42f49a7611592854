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

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeWorkflow(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flow.a2e")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

const validSource = `
workflow "smoke"
pause = Wait { duration: 10 }
run: pause
`

func TestNewRootA2ECommand(t *testing.T) {
	t.Run("root command properties", func(t *testing.T) {
		cmd := NewRootA2ECommand()
		assert.NotNil(t, cmd)
		assert.Equal(t, "a2e", cmd.Use)
		assert.Equal(t, "0.1.0", cmd.Version)
		assert.False(t, cmd.HasParent())
	})

	t.Run("subcommands", func(t *testing.T) {
		cmd := NewRootA2ECommand()
		names := make(map[string]bool)
		for _, sub := range cmd.Commands() {
			names[sub.Name()] = true
		}
		for _, want := range []string{
			"compile", "validate", "run", "simulate", "decompile", "graph",
			"tokens", "recover", "yaml", "watch", "webhook", "registry",
		} {
			assert.True(t, names[want], "missing subcommand %s", want)
		}
	})

	t.Run("unknown command", func(t *testing.T) {
		_, _, err := execute(NewRootA2ECommand(), "no-such-command")
		assert.Error(t, err)
	})
}

func TestCompileCommand(t *testing.T) {
	path := writeWorkflow(t, validSource)

	stdout, _, err := execute(NewRootA2ECommand(), "compile", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"operationUpdate"`)
	assert.Contains(t, stdout, `"beginExecution"`)
}

func TestCompileCommandRejectsInvalidSource(t *testing.T) {
	path := writeWorkflow(t, `
	workflow "broken"
	fetch = ApiCall { method: "GET" }
	`)

	_, _, err := execute(NewRootA2ECommand(), "compile", path)
	assert.Error(t, err)
}

func TestValidateCommand(t *testing.T) {
	path := writeWorkflow(t, validSource)

	_, _, err := execute(NewRootA2ECommand(), "validate", path)
	assert.NoError(t, err)
}

func TestGraphCommand(t *testing.T) {
	path := writeWorkflow(t, validSource)

	stdout, _, err := execute(NewRootA2ECommand(), "graph", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "graph TD")
	assert.Contains(t, stdout, "pause")
}

func TestTokensCommand(t *testing.T) {
	path := writeWorkflow(t, validSource)

	stdout, _, err := execute(NewRootA2ECommand(), "tokens", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Token Budget Analysis")
}

func TestSimulateCommand(t *testing.T) {
	path := writeWorkflow(t, validSource)

	stdout, _, err := execute(NewRootA2ECommand(), "simulate", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Operations executed: 1")
	assert.Contains(t, stdout, "Would wait 10ms")
}

func TestRunCommand(t *testing.T) {
	path := writeWorkflow(t, `
	workflow "copy"
	store = StoreData { from /in storage: "localStorage" key: "saved" }
	run: store
	`)
	input := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(input, []byte(`{"/in": "payload"}`), 0o644))

	stdout, _, err := execute(NewRootA2ECommand(), "run", path, "--input", input, "--no-retry")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"success": true`)
	assert.Contains(t, stdout, `"run_id"`)
}

func TestDecompileRoundTrip(t *testing.T) {
	path := writeWorkflow(t, validSource)
	compiledPath := filepath.Join(t.TempDir(), "flow.jsonl")

	_, _, err := execute(NewRootA2ECommand(), "compile", path, "--output", compiledPath)
	require.NoError(t, err)

	stdout, _, err := execute(NewRootA2ECommand(), "decompile", compiledPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, `workflow "smoke"`)
	assert.Contains(t, stdout, "pause = Wait")
}

func TestRecoverCommand(t *testing.T) {
	path := writeWorkflow(t, "workflow: smoke\npause = Wait { duration: 10 }\nrun: pause\n")

	stdout, _, err := execute(NewRootA2ECommand(), "recover", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Applied")
	assert.Contains(t, stdout, `workflow "smoke"`)
}

func TestYamlCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flow.yaml")
	source := `workflow: pipeline
steps:
  - id: keep
    type: filter
    input: /users
    where: active == true
    output: /active
`
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))

	stdout, _, err := execute(NewRootA2ECommand(), "yaml", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"workflowId":"pipeline"`)
	assert.Contains(t, stdout, `"FilterData"`)
}

func TestRegistryCommands(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("a2e.yaml", []byte("registry:\n  dir: ./reg\n"), 0o644))
	path := writeWorkflow(t, validSource)

	_, _, err := execute(NewRootA2ECommand(), "registry", "publish", path,
		"--author", "ops", "--tag", "smoke", "--desc", "smoke test flow")
	require.NoError(t, err)

	stdout, _, err := execute(NewRootA2ECommand(), "registry", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "smoke v1.0.0 by ops")

	stdout, _, err = execute(NewRootA2ECommand(), "registry", "search", "smoke")
	require.NoError(t, err)
	assert.Contains(t, stdout, "smoke")

	stdout, _, err = execute(NewRootA2ECommand(), "registry", "show", "smoke")
	require.NoError(t, err)
	assert.Contains(t, stdout, `workflow "smoke"`)

	_, _, err = execute(NewRootA2ECommand(), "registry", "remove", "smoke")
	require.NoError(t, err)

	_, _, err = execute(NewRootA2ECommand(), "registry", "remove", "smoke")
	assert.Error(t, err)
}
