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

package server

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/msoukhomlinov/autotask-mcp/pkg/mcp/protocol"
	"github.com/msoukhomlinov/autotask-mcp/pkg/observability"
)

func (s *MCPServer) toolsList(p ToolProvider) MethodHandler {
	return func(ctx context.Context, _ json.RawMessage, _ json.RawMessage) (interface{}, error) {
		ctx, span := s.tracer.StartSpan(ctx, observability.SpanMCPToolsList)
		defer s.tracer.EndSpan(span)

		tools, err := p.ListTools(ctx)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("list tools: %w", err)
		}
		if tools == nil {
			tools = []protocol.Tool{}
		}
		span.SetAttribute("mcp.tools", len(tools))
		return protocol.ToolListResult{Tools: tools}, nil
	}
}

func (s *MCPServer) toolsCall(p ToolProvider) MethodHandler {
	return func(ctx context.Context, _ json.RawMessage, params json.RawMessage) (interface{}, error) {
		var call protocol.CallToolParams
		if err := json.Unmarshal(params, &call); err != nil {
			return nil, protocol.NewError(protocol.InvalidParams, fmt.Sprintf("invalid tool call params: %v", err), nil)
		}
		if call.Name == "" {
			return nil, protocol.NewError(protocol.InvalidParams, "tool name is required", nil)
		}

		ctx, span := s.tracer.StartSpan(ctx, observability.SpanMCPToolsCall,
			observability.WithAttribute(observability.AttrToolName, call.Name))
		defer s.tracer.EndSpan(span)

		result, err := p.CallTool(ctx, call.Name, call.Arguments)
		if err != nil {
			span.RecordError(err)
			s.logger.Warn("Tool call could not run", zap.String("tool", call.Name), zap.Error(err))
			return &protocol.CallToolResult{
				Content: []protocol.Content{protocol.TextContent(err.Error())},
				IsError: true,
			}, nil
		}
		if !result.IsError {
			span.Status = observability.Status{Code: observability.StatusOK}
		}
		return result, nil
	}
}

func resourcesList(p ResourceProvider) MethodHandler {
	return func(ctx context.Context, _ json.RawMessage, _ json.RawMessage) (interface{}, error) {
		resources, err := p.ListResources(ctx)
		if err != nil {
			return nil, fmt.Errorf("list resources: %w", err)
		}
		if resources == nil {
			resources = []protocol.Resource{}
		}
		return protocol.ResourceListResult{Resources: resources}, nil
	}
}

func resourceTemplatesList(p ResourceTemplateProvider) MethodHandler {
	return func(ctx context.Context, _ json.RawMessage, _ json.RawMessage) (interface{}, error) {
		templates, err := p.ListResourceTemplates(ctx)
		if err != nil {
			return nil, fmt.Errorf("list resource templates: %w", err)
		}
		if templates == nil {
			templates = []protocol.ResourceTemplate{}
		}
		return protocol.ResourceTemplateListResult{ResourceTemplates: templates}, nil
	}
}

func resourcesRead(p ResourceProvider) MethodHandler {
	return func(ctx context.Context, _ json.RawMessage, params json.RawMessage) (interface{}, error) {
		var read protocol.ReadResourceParams
		if err := json.Unmarshal(params, &read); err != nil {
			return nil, protocol.NewError(protocol.InvalidParams, fmt.Sprintf("invalid resource read params: %v", err), nil)
		}
		if read.URI == "" {
			return nil, protocol.NewError(protocol.InvalidParams, "resource uri is required", nil)
		}

		result, err := p.ReadResource(ctx, read.URI)
		if err != nil {
			return nil, fmt.Errorf("read resource %q: %w", read.URI, err)
		}
		return result, nil
	}
}
