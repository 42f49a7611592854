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

package compile

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MauricioPerera/a2e-lang/internal/a2ectl/config"
	"github.com/MauricioPerera/a2e-lang/pkg/workflow/ast"
	"github.com/MauricioPerera/a2e-lang/pkg/workflow/compiler"
	"github.com/MauricioPerera/a2e-lang/pkg/workflow/parser"
	"github.com/MauricioPerera/a2e-lang/pkg/workflow/validator"
)

// NewCompileCmd creates the compile command.
func NewCompileCmd() *cobra.Command {
	var (
		pretty bool
		spec   bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "compile <file>",
		Short: "Compile a workflow to the JSONL wire format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			wf, errs := ParseAndValidate(string(data))
			if len(errs) > 0 {
				for _, e := range errs {
					color.Red("✗ %v", e)
				}
				return errors.New("workflow is invalid")
			}

			compiled, err := compileWorkflow(wf, spec, pretty)
			if err != nil {
				return err
			}

			if output != "" {
				if err := os.WriteFile(output, []byte(compiled+"\n"), 0o644); err != nil {
					return err
				}
				color.Green("✓ Compiled to %s", output)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), compiled)
			return nil
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent each message")
	cmd.Flags().BoolVar(&spec, "spec", false, "emit the per-operation layout")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write output to a file instead of stdout")
	return cmd
}

// ParseAndValidate parses source and validates it against the configured
// limits. It returns the workflow plus any parse or validation errors.
func ParseAndValidate(source string) (*ast.Workflow, []error) {
	wf, err := parser.Parse(source)
	if err != nil {
		return nil, []error{err}
	}

	v := validator.New(limitOptions()...)
	verrs := v.Validate(wf)
	if len(verrs) == 0 {
		return wf, nil
	}
	errs := make([]error, len(verrs))
	for i, e := range verrs {
		errs[i] = e
	}
	return wf, errs
}

func limitOptions() []validator.Option {
	cfg, err := config.GetConfig()
	if err != nil {
		return nil
	}
	return []validator.Option{validator.WithLimits(cfg.ValidatorLimits())}
}

func compileWorkflow(wf *ast.Workflow, spec, pretty bool) (string, error) {
	if spec {
		c := &compiler.SpecCompiler{}
		if pretty {
			return c.CompilePretty(wf)
		}
		return c.Compile(wf)
	}
	c := &compiler.Compiler{}
	if pretty {
		return c.CompilePretty(wf)
	}
	return c.Compile(wf)
}
