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

package yaml

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MauricioPerera/a2e-lang/pkg/workflow/yamlmode"
)

// NewYamlCmd creates the yaml command.
func NewYamlCmd() *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:   "yaml <file>",
		Short: "Compile a YAML workflow to the JSONL wire format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var compiled string
			if pretty {
				compiled, err = yamlmode.CompilePretty(string(data))
			} else {
				compiled, err = yamlmode.Compile(string(data))
			}
			if err != nil {
				color.Red("✗ %v", err)
				return fmt.Errorf("YAML workflow is invalid")
			}
			fmt.Fprintln(cmd.OutOrStdout(), compiled)
			return nil
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent each message")
	return cmd
}
