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
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/msoukhomlinov/autotask-mcp/internal/version"
	"github.com/msoukhomlinov/autotask-mcp/pkg/config"
	"github.com/msoukhomlinov/autotask-mcp/pkg/mcp/adapter"
	"github.com/msoukhomlinov/autotask-mcp/pkg/mcp/server"
	"github.com/msoukhomlinov/autotask-mcp/pkg/mcp/transport"
	"github.com/msoukhomlinov/autotask-mcp/pkg/metacache"
	servertls "github.com/msoukhomlinov/autotask-mcp/pkg/tls"
)

const instructions = `Each configured Autotask resource has tools named <namespace>_<resource>_<operation>.
Call <namespace>_<resource>_describeFields before writing, and
<namespace>_<resource>_listPicklistValues to find valid picklist ids.
Failures return {"error": {"kind", "message", "nextAction"}}; follow nextAction.`

func (c *cli) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			watch, _ := cmd.Flags().GetBool("watch")
			return c.serve(ctx, watch)
		},
	}
	cmd.Flags().String("transport", "stdio", "transport (stdio, http)")
	cmd.Flags().String("http-addr", "127.0.0.1:8080", "listen address for the http transport")
	cmd.Flags().String("tls-mode", "off", "TLS for the http transport (off, manual, self-signed)")
	cmd.Flags().Bool("watch", true, "rebuild the tool set when the config file changes")
	_ = c.v.BindPFlag("server.transport", cmd.Flags().Lookup("transport"))
	_ = c.v.BindPFlag("server.http_addr", cmd.Flags().Lookup("http-addr"))
	_ = c.v.BindPFlag("server.tls.mode", cmd.Flags().Lookup("tls-mode"))
	return cmd
}

func (c *cli) serve(ctx context.Context, watch bool) error {
	logger := c.logger
	logger.Info("Starting autotask-mcp",
		zap.String("version", version.String()),
		zap.String("transport", c.cfg.Server.Transport),
		zap.String("namespace", c.cfg.Tools.Namespace),
		zap.Bool("write_enabled", c.cfg.Tools.WriteEnabled))

	a, err := c.newApp(ctx, c.cfg, logger)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	n := a.register(ctx)
	logger.Info("Tools registered", zap.Int("tools", n))

	mcpServer := server.NewMCPServer(serverName, version.Get(), logger.Named("mcp"),
		server.WithToolProvider(adapter.NewShuttleProvider(a.registry, a.exec, logger.Named("adapter"))),
		server.WithResourceProvider(adapter.NewMetadataResources(a.catalog, a.resourceNames())),
		server.WithInstructions(instructions),
		server.WithTracer(a.tracer))

	if a.cached != nil && c.cfg.Metadata.RefreshSchedule != "" {
		warmer, err := metacache.NewWarmer(a.cached, a.resourceNames(), c.cfg.Metadata.RefreshSchedule,
			logger.Named("warmer"), a.tracer)
		if err != nil {
			return err
		}
		if err := warmer.Start(ctx); err != nil {
			return err
		}
		defer warmer.Stop()
	}

	if watch && c.v.ConfigFileUsed() != "" {
		watcher, err := config.NewWatcher(c.v, func(cfg *config.Config) {
			a.reload(ctx, cfg)
			mcpServer.NotifyToolListChanged()
			mcpServer.NotifyResourceListChanged()
		}, config.WithWatcherLogger(logger.Named("config")))
		if err != nil {
			logger.Warn("Config hot reload disabled", zap.Error(err))
		} else {
			watcher.Start(ctx)
			defer func() { _ = watcher.Stop() }()
		}
	}

	switch c.cfg.Server.Transport {
	case "http":
		return serveHTTP(ctx, mcpServer, c.cfg.Server, logger)
	default:
		logger.Info("MCP server ready on stdio")
		err := mcpServer.Serve(ctx, transport.NewStdioServerTransport(os.Stdin, os.Stdout))
		if ctx.Err() != nil {
			logger.Info("Server stopped")
			return nil
		}
		return err
	}
}

func serveHTTP(ctx context.Context, mcpServer *server.MCPServer, cfg config.ServerConfig, logger *zap.Logger) error {
	handler, err := transport.NewStreamableHTTPServer(transport.StreamableHTTPServerConfig{
		Handler:        mcpServer.HandleMessage,
		Logger:         logger.Named("http"),
		AuthToken:      cfg.AuthToken,
		RequireSession: cfg.RequireSession,
		SessionTTL:     cfg.SessionTTL,
	})
	if err != nil {
		return err
	}
	defer handler.Close()

	mux := http.NewServeMux()
	mux.Handle(cfg.HTTPPath, handler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.TLS.Enabled() {
		certs, err := servertls.NewManager(cfg.TLS)
		if err != nil {
			return err
		}
		srv.TLSConfig = certs.TLSConfig()
		status := certs.Status()
		logger.Info("TLS enabled",
			zap.String("mode", status.Mode),
			zap.Strings("domains", status.Domains),
			zap.Time("expires_at", status.ExpiresAt))
	}

	transport.WarnIfNotLocalhost(logger, cfg.HTTPAddr, cfg.AuthToken != "")
	errCh := make(chan error, 1)
	go func() {
		logger.Info("MCP server ready",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("path", cfg.HTTPPath),
			zap.Bool("tls", srv.TLSConfig != nil))
		if srv.TLSConfig != nil {
			errCh <- srv.ListenAndServeTLS("", "")
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	}
}
