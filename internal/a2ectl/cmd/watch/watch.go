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

package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MauricioPerera/a2e-lang/internal/a2ectl/cmd/compile"
	"github.com/MauricioPerera/a2e-lang/pkg/logger"
	"github.com/MauricioPerera/a2e-lang/pkg/workflow/compiler"
	"github.com/MauricioPerera/a2e-lang/pkg/workflow/watcher"
)

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	var (
		pretty bool
		spec   bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Recompile a workflow whenever the file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			w := watcher.New(watcher.WithLogger(logger.GetLogger().Named("watcher")))
			err := w.Watch(ctx, args[0], func(ev watcher.Event) {
				recompile(cmd, ev, pretty, spec, output)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent each message")
	cmd.Flags().BoolVar(&spec, "spec", false, "emit the per-operation layout")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write compiled output to a file")
	return cmd
}

func recompile(cmd *cobra.Command, ev watcher.Event, pretty, spec bool, output string) {
	wf, errs := compile.ParseAndValidate(ev.Source)
	if len(errs) > 0 {
		for _, e := range errs {
			color.Red("✗ %v", e)
		}
		return
	}

	var (
		compiled string
		err      error
	)
	if spec {
		c := &compiler.SpecCompiler{}
		if pretty {
			compiled, err = c.CompilePretty(wf)
		} else {
			compiled, err = c.Compile(wf)
		}
	} else {
		c := &compiler.Compiler{}
		if pretty {
			compiled, err = c.CompilePretty(wf)
		} else {
			compiled, err = c.Compile(wf)
		}
	}
	if err != nil {
		color.Red("✗ %v", err)
		return
	}

	if output != "" {
		if err := os.WriteFile(output, []byte(compiled+"\n"), 0o644); err != nil {
			color.Red("✗ %v", err)
			return
		}
		color.Green("✓ %s compiled to %s", ev.Path, output)
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), compiled)
	color.Green("✓ %s compiled", ev.Path)
}
