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

package webhook

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MauricioPerera/a2e-lang/internal/a2ectl/cmd/compile"
	"github.com/MauricioPerera/a2e-lang/internal/a2ectl/config"
	"github.com/MauricioPerera/a2e-lang/pkg/logger"
	wfwebhook "github.com/MauricioPerera/a2e-lang/pkg/workflow/webhook"
)

// NewWebhookCmd creates the webhook command.
func NewWebhookCmd() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "webhook <file>",
		Short: "Serve a workflow as an HTTP webhook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			// Reject broken source before binding the port.
			if _, errs := compile.ParseAndValidate(string(data)); len(errs) > 0 {
				for _, e := range errs {
					color.Red("✗ %v", e)
				}
				return errors.New("workflow is invalid")
			}

			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}

			addr := fmt.Sprintf("%s:%d", host, port)
			color.Green("✓ Serving workflow webhook on %s", addr)
			srv := wfwebhook.New(string(data),
				wfwebhook.WithRetryPolicy(cfg.RetryPolicy()),
				wfwebhook.WithLogger(logger.GetLogger().Named("webhook")),
			)
			return srv.Run(addr)
		},
	}

	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "server host")
	cmd.Flags().IntVar(&port, "port", 8080, "server port")
	return cmd
}
