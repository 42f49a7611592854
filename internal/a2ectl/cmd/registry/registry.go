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

package registry

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MauricioPerera/a2e-lang/internal/a2ectl/cmd/compile"
	"github.com/MauricioPerera/a2e-lang/internal/a2ectl/config"
	wfregistry "github.com/MauricioPerera/a2e-lang/pkg/workflow/registry"
)

// NewRegistryCmd creates the registry command and its subcommands.
func NewRegistryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Manage the local workflow registry",
	}
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newPublishCmd())
	cmd.AddCommand(newRemoveCmd())
	return cmd
}

func open() (*wfregistry.Registry, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, err
	}
	return wfregistry.Open(cfg.RegistryDir())
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List published workflows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := open()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reg.Summary())
			return nil
		},
	}
}

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search workflows by name, tag, or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := open()
			if err != nil {
				return err
			}
			matches := reg.Search(args[0])
			if len(matches) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No workflows matching '%s'\n", args[0])
				return nil
			}
			for _, entry := range matches {
				fmt.Fprintln(cmd.OutOrStdout(), "  • "+entry.SummaryLine())
			}
			return nil
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a published workflow and its source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := open()
			if err != nil {
				return err
			}
			entry, ok := reg.Get(args[0])
			if !ok {
				return fmt.Errorf("workflow '%s' not found", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), entry.SummaryLine())
			if entry.Description != "" {
				fmt.Fprintln(cmd.OutOrStdout(), entry.Description)
			}
			if source, ok := reg.GetSource(args[0]); ok {
				fmt.Fprintln(cmd.OutOrStdout())
				fmt.Fprintln(cmd.OutOrStdout(), source)
			}
			return nil
		},
	}
}

func newPublishCmd() *cobra.Command {
	var (
		name    string
		version string
		author  string
		tags    []string
		desc    string
	)

	cmd := &cobra.Command{
		Use:   "publish <file>",
		Short: "Publish a workflow to the registry",
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
			if name == "" {
				name = wf.Name
			}

			reg, err := open()
			if err != nil {
				return err
			}
			entry, err := reg.Publish(name, string(data), wfregistry.Metadata{
				Version:     version,
				Author:      author,
				Description: desc,
				Tags:        tags,
			})
			if err != nil {
				return err
			}
			color.Green("✓ Published %s", entry.SummaryLine())
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "registry name (defaults to the workflow name)")
	cmd.Flags().StringVar(&version, "version", "", "semantic version")
	cmd.Flags().StringVar(&author, "author", "", "author name")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "tag (repeatable)")
	cmd.Flags().StringVar(&desc, "desc", "", "description")
	return cmd
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a workflow from the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := open()
			if err != nil {
				return err
			}
			removed, err := reg.Remove(args[0])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("workflow '%s' not found", args[0])
			}
			color.Green("✓ Removed '%s'", args[0])
			return nil
		},
	}
}
