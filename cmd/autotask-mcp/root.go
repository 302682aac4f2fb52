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
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/msoukhomlinov/autotask-mcp/internal/log"
	"github.com/msoukhomlinov/autotask-mcp/internal/version"
	"github.com/msoukhomlinov/autotask-mcp/pkg/config"
)

const serverName = "autotask-mcp"

// cli holds state shared by the subcommands of one invocation.
type cli struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger

	// newApp is replaced in tests.
	newApp func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error)
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New(), newApp: newApp}

	root := &cobra.Command{
		Use:   serverName,
		Short: "Autotask PSA tools for AI agents over MCP",
		Long: `autotask-mcp exposes configured Autotask resources as MCP tools. Parameter
schemas, descriptions and error guidance are synthesized from the live
entity metadata, so agents need no prior knowledge of the API.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = c.logger.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default: $AUTOTASK_MCP_DATA_DIR/autotask-mcp.yaml)")

	flags.String("base-url", "", "Autotask zone REST url, e.g. https://webservices5.autotask.net/ATServicesRest/V1.0")
	flags.String("username", "", "API user name")
	flags.String("integration-code", "", "API tracking identifier")
	flags.String("secret", "", "API secret (or use keyring/env)")

	flags.String("namespace", "autotask", "tool name prefix")
	flags.Bool("write-enabled", false, "expose create, update and delete tools")
	flags.Bool("dry-run", false, "return write requests instead of sending them")

	flags.String("metadata-source", "api", "field metadata source (api, files)")
	flags.String("metadata-dir", "", "directory of <resource>.yaml metadata files")
	flags.String("cache", "sqlite", "metadata cache (none, memory, sqlite, redis, postgres)")

	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "json", "log format (json, console)")
	flags.String("log-file", "", "log file (default: stderr)")
	flags.String("tracer", "noop", "tracer (noop, otel)")

	bind := map[string]string{
		"autotask.base_url":         "base-url",
		"autotask.username":         "username",
		"autotask.integration_code": "integration-code",
		"autotask.secret":           "secret",
		"tools.namespace":           "namespace",
		"tools.write_enabled":       "write-enabled",
		"autotask.dry_run":          "dry-run",
		"metadata.source":           "metadata-source",
		"metadata.dir":              "metadata-dir",
		"metadata.cache.backend":    "cache",
		"logging.level":             "log-level",
		"logging.format":            "log-format",
		"logging.file":              "log-file",
		"observability.tracer":      "tracer",
	}
	for key, flag := range bind {
		_ = c.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		c.serveCmd(),
		c.toolsCmd(),
		c.describeCmd(),
		c.callCmd(),
		c.secretCmd(),
		versionCmd(),
	)
	return root
}

// init loads the configuration and builds the logger.
func (c *cli) init() error {
	cfg, err := config.LoadConfig(c.v, c.cfgFile)
	if err != nil {
		return err
	}
	logger, err := log.New(log.Options{
		File:   cfg.Logging.File,
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return err
	}
	log.SetLogger(logger)
	c.cfg, c.logger = cfg, logger
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", serverName, version.String())
		},
	}
}
