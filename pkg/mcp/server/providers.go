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

// Package server is the MCP JSON-RPC dispatcher. It answers the lifecycle
// methods itself and delegates tools and resources to providers.
package server

import (
	"context"

	"github.com/msoukhomlinov/autotask-mcp/pkg/mcp/protocol"
)

// ToolProvider lists and invokes tools.
type ToolProvider interface {
	ListTools(ctx context.Context) ([]protocol.Tool, error)

	// CallTool runs a tool. Tool-level failures belong in the result with
	// IsError set; a returned error means the call could not be attempted.
	CallTool(ctx context.Context, name string, args map[string]interface{}) (*protocol.CallToolResult, error)
}

// ResourceProvider lists and reads resources.
type ResourceProvider interface {
	ListResources(ctx context.Context) ([]protocol.Resource, error)
	ReadResource(ctx context.Context, uri string) (*protocol.ReadResourceResult, error)
}

// ResourceTemplateProvider is implemented by resource providers that also
// serve parameterized URIs.
type ResourceTemplateProvider interface {
	ListResourceTemplates(ctx context.Context) ([]protocol.ResourceTemplate, error)
}
