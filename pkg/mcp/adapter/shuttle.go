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

// Package adapter exposes the shuttle tool registry and the field metadata
// catalog to the MCP server.
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/msoukhomlinov/autotask-mcp/pkg/mcp/protocol"
	"github.com/msoukhomlinov/autotask-mcp/pkg/mcp/server"
	"github.com/msoukhomlinov/autotask-mcp/pkg/shuttle"
)

// ShuttleProvider serves the tools of a shuttle registry over MCP. The
// registry is read on every call, so replacing its tools is immediately
// visible to tools/list.
type ShuttleProvider struct {
	registry *shuttle.Registry
	executor *shuttle.InstrumentedExecutor
	logger   *zap.Logger
}

// NewShuttleProvider creates a provider over registry. Calls go through
// executor so they are traced and their parameter names normalized.
func NewShuttleProvider(registry *shuttle.Registry, executor *shuttle.InstrumentedExecutor, logger *zap.Logger) *ShuttleProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShuttleProvider{registry: registry, executor: executor, logger: logger}
}

// ListTools describes every registered tool, sorted by name.
func (p *ShuttleProvider) ListTools(_ context.Context) ([]protocol.Tool, error) {
	tools := p.registry.ListTools()
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name() < tools[j].Name() })

	out := make([]protocol.Tool, 0, len(tools))
	for _, tool := range tools {
		desc, err := ToProtocolTool(tool)
		if err != nil {
			p.logger.Warn("Skipping tool with unusable schema", zap.String("tool", tool.Name()), zap.Error(err))
			continue
		}
		out = append(out, desc)
	}
	return out, nil
}

// CallTool executes the named tool. Failed executions are returned as
// results with IsError set; only an unknown tool or an executor fault is
// an error.
func (p *ShuttleProvider) CallTool(ctx context.Context, name string, args map[string]interface{}) (*protocol.CallToolResult, error) {
	if _, ok := p.registry.Get(name); !ok {
		return nil, fmt.Errorf("tool not found: %s", name)
	}
	if args == nil {
		args = map[string]interface{}{}
	}

	result, err := p.executor.Execute(ctx, name, args)
	if err != nil {
		return nil, err
	}
	return ToCallToolResult(result)
}

// ToProtocolTool converts a shuttle tool to its MCP description.
func ToProtocolTool(tool shuttle.Tool) (protocol.Tool, error) {
	schema := shuttle.EnsureObjectSchema(tool.InputSchema())
	m, err := schema.ToMap()
	if err != nil {
		return protocol.Tool{}, fmt.Errorf("failed to encode input schema: %w", err)
	}
	// Some clients reject object schemas without a properties member.
	if _, ok := m["properties"]; !ok {
		m["properties"] = map[string]interface{}{}
	}

	desc := protocol.Tool{
		Name:        tool.Name(),
		Description: tool.Description(),
		InputSchema: m,
	}
	if hinted, ok := tool.(shuttle.HintedTool); ok {
		h := hinted.Hints()
		desc.Annotations = &protocol.ToolAnnotations{
			ReadOnlyHint:    protocol.Bool(h.ReadOnly),
			DestructiveHint: protocol.Bool(h.Destructive),
			IdempotentHint:  protocol.Bool(h.Idempotent),
			OpenWorldHint:   protocol.Bool(true),
		}
	}
	return desc, nil
}

// ToCallToolResult renders a shuttle result as MCP content. The payload is
// sent both as JSON text and, when it is an object, as structured content.
func ToCallToolResult(result *shuttle.Result) (*protocol.CallToolResult, error) {
	if result == nil {
		return nil, fmt.Errorf("tool returned no result")
	}

	payload := result.Data
	if payload == nil && result.Error != nil {
		payload = map[string]interface{}{"error": map[string]interface{}{
			"kind":    result.Error.Code,
			"message": result.Error.Message,
		}}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tool result: %w", err)
	}

	out := &protocol.CallToolResult{
		Content: []protocol.Content{protocol.TextContent(string(raw))},
		IsError: !result.Success,
	}
	var structured map[string]interface{}
	if json.Unmarshal(raw, &structured) == nil && structured != nil {
		out.StructuredContent = structured
	}
	return out, nil
}

var _ server.ToolProvider = (*ShuttleProvider)(nil)
