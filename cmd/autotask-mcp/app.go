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
	"reflect"
	"sync"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/msoukhomlinov/autotask-mcp/internal/pgxdriver"
	"github.com/msoukhomlinov/autotask-mcp/pkg/agenttools"
	"github.com/msoukhomlinov/autotask-mcp/pkg/autotask"
	"github.com/msoukhomlinov/autotask-mcp/pkg/bridge"
	"github.com/msoukhomlinov/autotask-mcp/pkg/config"
	"github.com/msoukhomlinov/autotask-mcp/pkg/entity"
	"github.com/msoukhomlinov/autotask-mcp/pkg/metacache"
	"github.com/msoukhomlinov/autotask-mcp/pkg/observability"
	"github.com/msoukhomlinov/autotask-mcp/pkg/operation"
	"github.com/msoukhomlinov/autotask-mcp/pkg/shuttle"
)

// errNotConnected is returned by tools when no Autotask credentials are
// configured, e.g. when browsing fixture metadata offline.
var errNotConnected = errors.New("autotask connection is not configured (set autotask.base_url, username, integration_code and secret)")

// app is the wired server: metadata, bridge, tool set and registry.
type app struct {
	logger *zap.Logger
	tracer observability.Tracer

	client   *autotask.Client // nil when offline
	cache    metacache.Cache  // nil when caching is off
	cached   *metacache.CachedSource
	catalog  *entity.Catalog
	executor bridge.Executor
	host     *bridge.Host

	registry *shuttle.Registry
	exec     *shuttle.InstrumentedExecutor

	mu      sync.Mutex
	cfg     *config.Config
	toolset *agenttools.Toolset

	closers []func(context.Context) error
}

// newApp wires every component from cfg. The caller must call close.
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &app{logger: logger, cfg: cfg, registry: shuttle.NewRegistry()}

	tracer, shutdown, err := buildTracer(ctx, cfg.Observability)
	if err != nil {
		return nil, err
	}
	a.tracer = tracer
	a.closers = append(a.closers, shutdown)

	if hasCredentials(cfg.Autotask) {
		httpClient := &http.Client{Timeout: cfg.Autotask.Timeout}
		if cfg.Observability.Tracer == "otel" {
			httpClient.Transport = otelhttp.NewTransport(http.DefaultTransport)
		}
		a.client, err = autotask.NewClient(autotask.Config{
			BaseURL:         cfg.Autotask.BaseURL,
			Username:        cfg.Autotask.Username,
			IntegrationCode: cfg.Autotask.IntegrationCode,
			Secret:          cfg.Autotask.Secret,
			RateLimit:       cfg.Autotask.RateLimit,
			Burst:           cfg.Autotask.Burst,
			RetryAttempts:   cfg.Autotask.RetryAttempts,
			Timeout:         cfg.Autotask.Timeout,
			MaxRecords:      cfg.Autotask.MaxRecords,
		},
			autotask.WithHTTPClient(httpClient),
			autotask.WithClientLogger(logger.Named("autotask")),
			autotask.WithClientTracer(tracer))
		if err != nil {
			a.close(ctx)
			return nil, err
		}
	}

	var source entity.Source
	switch cfg.Metadata.Source {
	case "files":
		source = entity.NewFileSource(cfg.Metadata.Dir)
	default:
		if a.client == nil {
			a.close(ctx)
			return nil, fmt.Errorf("metadata.source api needs a connection: %w", errNotConnected)
		}
		source = autotask.NewMetadataSource(a.client)
	}

	a.cache, err = openCache(ctx, cfg.Metadata.Cache, tracer)
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	if a.cache != nil {
		a.cached = metacache.NewCachedSource(source, a.cache,
			metacache.WithTTL(cfg.Metadata.Cache.TTL),
			metacache.WithLogger(logger.Named("metacache")),
			metacache.WithTracer(tracer))
		source = a.cached
		a.closers = append(a.closers, func(context.Context) error { return a.cache.Close() })
	}
	a.catalog = entity.NewCatalog(source)

	if a.client != nil {
		a.executor = autotask.NewExecutor(a.client, a.catalog, logger.Named("executor"))
	} else {
		a.executor = bridge.ExecutorFunc(func(context.Context, bridge.ParameterSource) ([]entity.Record, error) {
			return nil, errNotConnected
		})
	}
	a.host = bridge.NewHost(nil)

	a.exec = shuttle.NewInstrumentedExecutor(shuttle.NewExecutor(a.registry, logger.Named("shuttle")), tracer)
	a.toolset = a.newToolset(cfg)
	return a, nil
}

func hasCredentials(c config.AutotaskConfig) bool {
	return c.BaseURL != "" && c.Username != "" && c.IntegrationCode != "" && c.Secret != ""
}

// openCache opens the configured metadata cache, or returns nil for "none".
func openCache(ctx context.Context, c config.CacheConfig, tracer observability.Tracer) (metacache.Cache, error) {
	switch c.Backend {
	case "none":
		return nil, nil
	case "memory":
		return metacache.NewMemoryCache(), nil
	case "redis":
		return metacache.DialRedis(ctx, c.RedisAddr, c.RedisPrefix)
	case "postgres":
		return metacache.DialPostgres(ctx, pgxdriver.Config{DSN: c.PostgresDSN, Schema: c.PostgresSchema}, tracer)
	default:
		return metacache.NewSQLiteCache(metacache.SQLiteOptions{Path: c.SQLitePath, Passphrase: c.Passphrase})
	}
}

// buildTracer returns the configured tracer and its shutdown function.
// The otel tracer exports over OTLP/HTTP; the endpoint comes from the
// standard OTEL_EXPORTER_OTLP_* environment variables.
func buildTracer(ctx context.Context, c config.ObservabilityConfig) (observability.Tracer, func(context.Context) error, error) {
	if c.Tracer != "otel" {
		return observability.NewNoOpTracer(), func(context.Context) error { return nil }, nil
	}
	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", c.ServiceName))),
	)
	otel.SetTracerProvider(tp)
	return observability.NewOTelTracerWithProvider(tp, c.ServiceName), tp.Shutdown, nil
}

// newToolset builds the bridge and tool set for the tool settings of cfg.
func (a *app) newToolset(cfg *config.Config) *agenttools.Toolset {
	b := bridge.New(a.host, a.executor, a.catalog,
		bridge.WithNamespace(cfg.Tools.Namespace),
		bridge.WithWriteEnabled(cfg.Tools.WriteEnabled),
		bridge.WithDryRun(cfg.Autotask.DryRun),
		bridge.WithLogger(a.logger.Named("bridge")),
		bridge.WithTracer(a.tracer))
	return agenttools.NewToolset(b, a.catalog,
		agenttools.WithNamespace(cfg.Tools.Namespace),
		agenttools.WithWriteEnabled(cfg.Tools.WriteEnabled),
		agenttools.WithLogger(a.logger.Named("toolset")),
		agenttools.WithTracer(a.tracer))
}

// register (re)builds the tool set into the registry and returns the
// number of tools.
func (a *app) register(ctx context.Context) int {
	a.mu.Lock()
	toolset, cfg := a.toolset, a.cfg
	a.mu.Unlock()
	return toolset.Register(ctx, a.registry, resourceSpecs(cfg.Tools.Resources, a.logger))
}

// reload applies new tool settings and rebuilds the registry. Connection,
// metadata and server settings only take effect on restart.
func (a *app) reload(ctx context.Context, cfg *config.Config) int {
	ctx, span := a.tracer.StartSpan(ctx, observability.SpanConfigReload)
	defer a.tracer.EndSpan(span)
	logger := a.logger.With(zap.String(observability.AttrTraceID, span.TraceID))

	a.mu.Lock()
	restart := cfg.Autotask != a.cfg.Autotask || cfg.Metadata != a.cfg.Metadata || !reflect.DeepEqual(cfg.Server, a.cfg.Server)
	if restart {
		logger.Warn("Connection, metadata or server settings changed; restart to apply them")
	}
	a.cfg = cfg
	a.toolset = a.newToolset(cfg)
	a.mu.Unlock()

	n := a.register(ctx)
	span.SetAttribute(observability.AttrToolCount, n)
	span.SetAttribute(observability.AttrRestartRequired, restart)
	span.Status = observability.Status{Code: observability.StatusOK}
	logger.Info("Tool set rebuilt", zap.Int("tools", n),
		zap.String("namespace", cfg.Tools.Namespace),
		zap.Bool("write_enabled", cfg.Tools.WriteEnabled))
	return n
}

// resourceNames lists the configured resources.
func (a *app) resourceNames() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	names := make([]string, 0, len(a.cfg.Tools.Resources))
	for _, r := range a.cfg.Tools.Resources {
		names = append(names, r.Name)
	}
	return names
}

func (a *app) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.logger.Warn("Shutdown step failed", zap.Error(err))
		}
	}
	a.closers = nil
}

// resourceSpecs converts configured resources, dropping unknown resources
// and operations the resource does not support.
func resourceSpecs(resources []config.ResourceConfig, logger *zap.Logger) []agenttools.ResourceSpec {
	specs := make([]agenttools.ResourceSpec, 0, len(resources))
	for _, rc := range resources {
		r, ok := autotask.LookupResource(rc.Name)
		if !ok {
			logger.Warn("Skipping unknown resource", zap.String("resource", rc.Name))
			continue
		}
		spec := agenttools.ResourceSpec{Name: r.Name}
		for _, name := range rc.Operations {
			op, err := operation.Parse(name)
			if err != nil {
				logger.Warn("Skipping unknown operation", zap.String("resource", r.Name), zap.String("operation", name))
				continue
			}
			if !r.Supports(op) {
				logger.Warn("Skipping unsupported operation", zap.String("resource", r.Name), zap.String("operation", name))
				continue
			}
			spec.Operations = append(spec.Operations, op)
		}
		specs = append(specs, spec)
	}
	return specs
}
