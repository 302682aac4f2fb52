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

package agenttools

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/msoukhomlinov/autotask-mcp/pkg/entity"
	"github.com/msoukhomlinov/autotask-mcp/pkg/naming"
	"github.com/msoukhomlinov/autotask-mcp/pkg/observability"
	"github.com/msoukhomlinov/autotask-mcp/pkg/operation"
	"github.com/msoukhomlinov/autotask-mcp/pkg/shuttle"
	"github.com/msoukhomlinov/autotask-mcp/pkg/synth"
)

// ResourceSpec selects the operations exposed for one resource.
type ResourceSpec struct {
	Name       string
	Operations []operation.Kind
}

// Toolset synthesizes and caches the tools of configured resources.
type Toolset struct {
	caller       Caller
	provider     entity.Provider
	picklists    entity.PicklistProvider
	namespace    string
	writeEnabled bool
	logger       *zap.Logger
	tracer       observability.Tracer

	mu    sync.Mutex
	cache map[string][]shuttle.Tool
}

// ToolsetOption configures a Toolset.
type ToolsetOption func(*Toolset)

// WithNamespace sets the tool-name namespace.
func WithNamespace(ns string) ToolsetOption { return func(t *Toolset) { t.namespace = ns } }

// WithWriteEnabled exposes create, update and delete tools.
func WithWriteEnabled(enabled bool) ToolsetOption {
	return func(t *Toolset) { t.writeEnabled = enabled }
}

// WithPicklists sets the provider behind listPicklistValues. Without one
// the companion is not registered.
func WithPicklists(p entity.PicklistProvider) ToolsetOption {
	return func(t *Toolset) { t.picklists = p }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) ToolsetOption { return func(t *Toolset) { t.logger = logger } }

// WithTracer sets the tracer.
func WithTracer(tracer observability.Tracer) ToolsetOption {
	return func(t *Toolset) { t.tracer = tracer }
}

// NewToolset creates a toolset whose resource tools call caller and whose
// schemas come from provider.
func NewToolset(caller Caller, provider entity.Provider, opts ...ToolsetOption) *Toolset {
	t := &Toolset{
		caller:    caller,
		provider:  provider,
		namespace: naming.DefaultNamespace,
		logger:    zap.NewNop(),
		tracer:    observability.NewNoOpTracer(),
		cache:     make(map[string][]shuttle.Tool),
	}
	if p, ok := provider.(entity.PicklistProvider); ok {
		t.picklists = p
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Namespace returns the tool-name namespace.
func (t *Toolset) Namespace() string { return t.namespace }

// WriteEnabled reports whether write tools are exposed.
func (t *Toolset) WriteEnabled() bool { return t.writeEnabled }

// ResourceTools returns the tools of one resource: one per enabled
// operation plus the companions. Results are cached per resource,
// operation list and write setting. A metadata failure still yields
// callable tools with permissive schemas, but that set is not cached.
func (t *Toolset) ResourceTools(ctx context.Context, spec ResourceSpec) []shuttle.Tool {
	ops := t.enabled(spec.Operations)
	key := t.cacheKey(spec.Name, ops)

	t.mu.Lock()
	cached, ok := t.cache[key]
	t.mu.Unlock()
	if ok {
		return append([]shuttle.Tool(nil), cached...)
	}

	ctx, span := t.tracer.StartSpan(ctx, observability.SpanToolsetBuild)
	defer t.tracer.EndSpan(span)
	span.SetAttribute(observability.AttrResource, spec.Name)

	in := synth.Input{Namespace: t.namespace, Resource: spec.Name}
	complete := true

	read, err := t.provider.GetFields(ctx, spec.Name, entity.ModeRead)
	if err != nil {
		t.logger.Warn("Read metadata unavailable, synthesizing permissive schemas",
			zap.String("resource", spec.Name), zap.Error(err))
		complete = false
	}
	in.ReadFields = read

	if needsWriteFields(ops) {
		write, err := t.provider.GetFields(ctx, spec.Name, entity.ModeWrite)
		if err != nil {
			t.logger.Warn("Write metadata unavailable, synthesizing permissive schemas",
				zap.String("resource", spec.Name), zap.Error(err))
			complete = false
		}
		in.WriteFields = write
	}

	tools := make([]shuttle.Tool, 0, len(ops)+2)
	for _, desc := range synth.SynthesizeAll(in, ops) {
		tools = append(tools, NewResourceTool(desc, t.caller))
	}
	tools = append(tools, NewDescribeFieldsTool(in, t.provider))
	if t.picklists != nil {
		tools = append(tools, NewListPicklistValuesTool(in, t.picklists))
	}

	span.SetAttribute("toolset.tools", len(tools))
	if complete {
		t.mu.Lock()
		t.cache[key] = tools
		t.mu.Unlock()
		span.Status = observability.Status{Code: observability.StatusOK}
	}
	return append([]shuttle.Tool(nil), tools...)
}

// Build returns the tools of every configured resource sorted by name.
func (t *Toolset) Build(ctx context.Context, specs []ResourceSpec) []shuttle.Tool {
	var all []shuttle.Tool
	for _, spec := range specs {
		all = append(all, t.ResourceTools(ctx, spec)...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name() < all[j].Name() })
	return all
}

// Register builds every configured resource and swaps the registry contents in one step.
// It returns the number of registered tools.
func (t *Toolset) Register(ctx context.Context, registry *shuttle.Registry, specs []ResourceSpec) int {
	tools := t.Build(ctx, specs)
	registry.Replace(tools)
	t.logger.Info("Tool set registered",
		zap.Int("resources", len(specs)),
		zap.Int("tools", len(tools)),
		zap.Bool("write_enabled", t.writeEnabled))
	return len(tools)
}

// Invalidate drops every cached tool set.
func (t *Toolset) Invalidate() {
	t.mu.Lock()
	t.cache = make(map[string][]shuttle.Tool)
	t.mu.Unlock()
}

// enabled removes duplicates and, unless writes are enabled, write kinds.
func (t *Toolset) enabled(ops []operation.Kind) []operation.Kind {
	seen := make(map[operation.Kind]struct{}, len(ops))
	out := make([]operation.Kind, 0, len(ops))
	for _, op := range ops {
		if op.IsWrite() && !t.writeEnabled {
			continue
		}
		if _, dup := seen[op]; dup {
			continue
		}
		seen[op] = struct{}{}
		out = append(out, op)
	}
	return out
}

func (t *Toolset) cacheKey(resource string, ops []operation.Kind) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = string(op)
	}
	return strings.ToLower(resource) + "|" + strconv.FormatBool(t.writeEnabled) + "|" + strings.Join(parts, ",")
}

func needsWriteFields(ops []operation.Kind) bool {
	for _, op := range ops {
		if op == operation.Create || op == operation.Update {
			return true
		}
	}
	return false
}
