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

package recover

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MauricioPerera/a2e-lang/pkg/workflow/recovery"
)

// NewRecoverCmd creates the recover command.
func NewRecoverCmd() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "recover <file>",
		Short: "Repair common syntax mistakes in workflow source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			wf, res, err := recovery.ParseWithRecovery(string(data))
			if err != nil {
				color.Red("✗ %v", err)
				return fmt.Errorf("source could not be repaired")
			}

			fmt.Fprintln(cmd.OutOrStdout(), res.Summary())
			if !res.Modified() {
				color.Green("✓ Workflow '%s' parses without repair", wf.Name)
				return nil
			}

			if write {
				if err := os.WriteFile(args[0], []byte(res.Source), 0o644); err != nil {
					return err
				}
				color.Green("✓ Repaired source written to %s", args[0])
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Source)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "overwrite the file with the repaired source")
	return cmd
}
