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

package simulate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MauricioPerera/a2e-lang/pkg/workflow/parser"
	"github.com/MauricioPerera/a2e-lang/pkg/workflow/simulator"
	"github.com/MauricioPerera/a2e-lang/pkg/workflow/validator"
)

// NewSimulateCmd creates the simulate command.
func NewSimulateCmd() *cobra.Command {
	var (
		inputFile     string
		maxOperations int
		maxDepth      int
		maxConditions int
	)

	cmd := &cobra.Command{
		Use:   "simulate <file>",
		Short: "Dry-run a workflow without executing side effects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			wf, err := parser.Parse(string(data))
			if err != nil {
				color.Red("✗ %v", err)
				return errors.New("workflow is invalid")
			}

			limits := validator.Limits{
				MaxOperations: maxOperations,
				MaxDepth:      maxDepth,
				MaxConditions: maxConditions,
			}
			if verrs := validator.New(validator.WithLimits(limits)).Validate(wf); len(verrs) > 0 {
				for _, e := range verrs {
					color.Red("✗ %v", e)
				}
				return fmt.Errorf("found %d error(s)", len(verrs))
			}

			var input map[string]interface{}
			if inputFile != "" {
				raw, err := os.ReadFile(inputFile)
				if err != nil {
					return err
				}
				if err := json.Unmarshal(raw, &input); err != nil {
					return fmt.Errorf("invalid input file %s: %v", inputFile, err)
				}
			}

			result := simulator.Simulate(wf, input)
			fmt.Fprintln(cmd.OutOrStdout(), result.Summary())
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "JSON file with mock data (path to value)")
	cmd.Flags().IntVar(&maxOperations, "max-operations", 0, "max operations limit (0 disables)")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "max nesting depth limit (0 disables)")
	cmd.Flags().IntVar(&maxConditions, "max-conditions", 0, "max conditions per operation (0 disables)")
	return cmd
}
