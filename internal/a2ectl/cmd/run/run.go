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

package run

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MauricioPerera/a2e-lang/internal/a2ectl/cmd/compile"
	"github.com/MauricioPerera/a2e-lang/internal/a2ectl/config"
	"github.com/MauricioPerera/a2e-lang/pkg/logger"
	"github.com/MauricioPerera/a2e-lang/pkg/workflow/engine"
	"github.com/MauricioPerera/a2e-lang/pkg/workflow/retry"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	var (
		inputFile string
		noRetry   bool
	)

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Execute a workflow with the native engine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			wf, errs := compile.ParseAndValidate(string(data))
			if len(errs) > 0 {
				for _, e := range errs {
					color.Red("✗ %v", e)
				}
				return errors.New("workflow is invalid")
			}

			input, err := readInput(inputFile)
			if err != nil {
				return err
			}

			policy := retry.NoRetry
			if !noRetry {
				cfg, err := config.GetConfig()
				if err != nil {
					return err
				}
				policy = cfg.RetryPolicy()
			}

			eng := engine.New(
				engine.WithRetryPolicy(policy),
				engine.WithInput(input),
				engine.WithLogger(logger.GetLogger().Named("engine")),
			)
			result := eng.Execute(wf)

			report, err := json.MarshalIndent(struct {
				Success bool                   `json:"success"`
				RunID   string                 `json:"run_id"`
				Data    map[string]interface{} `json:"data"`
				Log     *engine.PipelineLog    `json:"log"`
				Error   string                 `json:"error,omitempty"`
			}{result.Success, result.RunID, result.Data, result.Log, result.Error}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(report))

			if !result.Success {
				return errors.New("execution failed")
			}
			color.Green("✓ Workflow '%s' completed", wf.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "JSON file with initial data (path to value)")
	cmd.Flags().BoolVar(&noRetry, "no-retry", false, "disable retries and backoff")
	return cmd
}

func readInput(path string) (map[string]interface{}, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var input map[string]interface{}
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("invalid input file %s: %v", path, err)
	}
	return input, nil
}
