// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/msoukhomlinov/autotask-mcp/pkg/entity"
	"github.com/msoukhomlinov/autotask-mcp/pkg/mcp/adapter"
	"github.com/msoukhomlinov/autotask-mcp/pkg/mcp/protocol"
)

// withApp wires the app, registers the tool set and runs fn.
func (c *cli) withApp(ctx context.Context, fn func(a *app, provider *adapter.ShuttleProvider) error) error {
	a, err := c.newApp(ctx, c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	a.register(ctx)
	return fn(a, adapter.NewShuttleProvider(a.registry, a.exec, c.logger.Named("adapter")))
}

func (c *cli) toolsCmd() *cobra.Command {
	var namesOnly bool
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the synthesized tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd.Context(), func(_ *app, provider *adapter.ShuttleProvider) error {
				tools, err := provider.ListTools(cmd.Context())
				if err != nil {
					return err
				}
				if namesOnly {
					for _, t := range tools {
						fmt.Fprintln(cmd.OutOrStdout(), t.Name)
					}
					return nil
				}
				return writeJSON(cmd.OutOrStdout(), tools)
			})
		},
	}
	cmd.Flags().BoolVar(&namesOnly, "names", false, "print tool names only")
	return cmd
}

func (c *cli) describeCmd() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "describe <resource>",
		Short: "Print the normalized field metadata of a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := entity.ParseMode(mode)
			if err != nil {
				return err
			}
			return c.withApp(cmd.Context(), func(a *app, _ *adapter.ShuttleProvider) error {
				fields, err := a.catalog.GetFields(cmd.Context(), args[0], m)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), fields)
			})
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "read", "field mode (read, write)")
	return cmd
}

func (c *cli) callCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "call <tool> [json-arguments]",
		Short: "Invoke one tool and print its result",
		Example: `  autotask-mcp call autotask_ticket_get '{"id": 12345}'
  autotask-mcp call autotask_company_getMany '{"filter": [{"field": "isActive", "op": "eq", "value": true}]}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]interface{}{}
			if len(args) == 2 && strings.TrimSpace(args[1]) != "" {
				if err := json.Unmarshal([]byte(args[1]), &params); err != nil {
					return fmt.Errorf("arguments must be a JSON object: %w", err)
				}
			}
			return c.withApp(cmd.Context(), func(_ *app, provider *adapter.ShuttleProvider) error {
				if strict {
					if err := validateArgs(cmd.Context(), provider, args[0], params); err != nil {
						return err
					}
				}
				result, err := provider.CallTool(cmd.Context(), args[0], params)
				if err != nil {
					return err
				}
				for _, content := range result.Content {
					fmt.Fprintln(cmd.OutOrStdout(), content.Text)
				}
				if result.IsError {
					return fmt.Errorf("tool %s failed", args[0])
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "validate arguments against the input schema first")
	return cmd
}

func validateArgs(ctx context.Context, provider *adapter.ShuttleProvider, name string, params map[string]interface{}) error {
	tools, err := provider.ListTools(ctx)
	if err != nil {
		return err
	}
	for _, t := range tools {
		if t.Name == name {
			return protocol.ValidateToolArguments(t, params)
		}
	}
	return fmt.Errorf("tool not found: %s", name)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
