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
	"github.com/spf13/cobra"

	"github.com/MauricioPerera/a2e-lang/internal/a2ectl/cmd/compile"
	"github.com/MauricioPerera/a2e-lang/internal/a2ectl/cmd/decompile"
	"github.com/MauricioPerera/a2e-lang/internal/a2ectl/cmd/graph"
	recovercmd "github.com/MauricioPerera/a2e-lang/internal/a2ectl/cmd/recover"
	registrycmd "github.com/MauricioPerera/a2e-lang/internal/a2ectl/cmd/registry"
	"github.com/MauricioPerera/a2e-lang/internal/a2ectl/cmd/run"
	"github.com/MauricioPerera/a2e-lang/internal/a2ectl/cmd/simulate"
	tokenscmd "github.com/MauricioPerera/a2e-lang/internal/a2ectl/cmd/tokens"
	"github.com/MauricioPerera/a2e-lang/internal/a2ectl/cmd/validate"
	"github.com/MauricioPerera/a2e-lang/internal/a2ectl/cmd/watch"
	webhookcmd "github.com/MauricioPerera/a2e-lang/internal/a2ectl/cmd/webhook"
	yamlcmd "github.com/MauricioPerera/a2e-lang/internal/a2ectl/cmd/yaml"
	"github.com/MauricioPerera/a2e-lang/pkg/logger"
)

// NewRootA2ECommand assembles the a2e command tree.
func NewRootA2ECommand() *cobra.Command {
	var verbose bool

	cmds := &cobra.Command{
		Use:     "a2e",
		Short:   "a2e is a command-line toolchain for automation workflows",
		Version: "0.1.0",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				logger.InitDevelopmentLogger()
			} else {
				logger.InitLogger()
			}
			return nil
		},
		SilenceUsage: true,
	}
	cmds.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	cmds.AddCommand(compile.NewCompileCmd())
	cmds.AddCommand(validate.NewValidateCmd())
	cmds.AddCommand(run.NewRunCmd())
	cmds.AddCommand(simulate.NewSimulateCmd())
	cmds.AddCommand(decompile.NewDecompileCmd())
	cmds.AddCommand(graph.NewGraphCmd())
	cmds.AddCommand(tokenscmd.NewTokensCmd())
	cmds.AddCommand(recovercmd.NewRecoverCmd())
	cmds.AddCommand(yamlcmd.NewYamlCmd())
	cmds.AddCommand(watch.NewWatchCmd())
	cmds.AddCommand(webhookcmd.NewWebhookCmd())
	cmds.AddCommand(registrycmd.NewRegistryCmd())
	return cmds
}
