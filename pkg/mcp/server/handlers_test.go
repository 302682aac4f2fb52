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
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/msoukhomlinov/autotask-mcp/pkg/mcp/protocol"
	"github.com/msoukhomlinov/autotask-mcp/pkg/observability"
)

type fakeTools struct {
	listErr error
	callErr error
	gotName string
	gotArgs map[string]interface{}
}

func (f *fakeTools) ListTools(context.Context) ([]protocol.Tool, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []protocol.Tool{{
		Name:        "autotask_ticket_get",
		Description: "Get one ticket by id",
		InputSchema: map[string]interface{}{"type": "object", "properties": map[string]interface{}{}},
		Annotations: &protocol.ToolAnnotations{ReadOnlyHint: protocol.Bool(true)},
	}}, nil
}

func (f *fakeTools) CallTool(_ context.Context, name string, args map[string]interface{}) (*protocol.CallToolResult, error) {
	f.gotName, f.gotArgs = name, args
	if f.callErr != nil {
		return nil, f.callErr
	}
	if name == "autotask_ticket_fail" {
		return &protocol.CallToolResult{
			Content: []protocol.Content{protocol.TextContent(`{"error":{"kind":"API_ERROR"}}`)},
			IsError: true,
		}, nil
	}
	return &protocol.CallToolResult{Content: []protocol.Content{protocol.TextContent(`{"id":1}`)}}, nil
}

type fakeResources struct{}

func (fakeResources) ListResources(context.Context) ([]protocol.Resource, error) {
	return []protocol.Resource{{URI: "autotask://ticket/fields", Name: "ticket fields"}}, nil
}

func (fakeResources) ReadResource(_ context.Context, uri string) (*protocol.ReadResourceResult, error) {
	if uri != "autotask://ticket/fields" {
		return nil, fmt.Errorf("unknown resource %s", uri)
	}
	return &protocol.ReadResourceResult{Contents: []protocol.ResourceContents{{URI: uri, MimeType: "application/json", Text: "[]"}}}, nil
}

func (fakeResources) ListResourceTemplates(context.Context) ([]protocol.ResourceTemplate, error) {
	return []protocol.ResourceTemplate{{URITemplate: "autotask://{resource}/fields", Name: "fields"}}, nil
}

func call(t *testing.T, s *MCPServer, method, params string) protocol.Response {
	t.Helper()
	msg := fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"method":%q,"params":%s}`, method, params)
	raw, err := s.HandleMessage(context.Background(), []byte(msg))
	require.NoError(t, err)
	return decodeResponse(t, raw)
}

func TestToolsList(t *testing.T) {
	tracer := observability.NewMockTracer()
	s := NewMCPServer("autotask-mcp", "dev", zaptest.NewLogger(t), WithToolProvider(&fakeTools{}), WithTracer(tracer))

	resp := call(t, s, protocol.MethodToolsList, `{}`)
	require.Nil(t, resp.Error)

	var result protocol.ToolListResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	require.Len(t, result.Tools, 1)
	assert.Equal(t, "autotask_ticket_get", result.Tools[0].Name)
	assert.True(t, *result.Tools[0].Annotations.ReadOnlyHint)

	span := tracer.GetSpanByName(observability.SpanMCPToolsList)
	require.NotNil(t, span)
	assert.Equal(t, 1, span.Attributes["mcp.tools"])
}

func TestToolsList_ProviderError(t *testing.T) {
	s := NewMCPServer("autotask-mcp", "dev", zaptest.NewLogger(t),
		WithToolProvider(&fakeTools{listErr: errors.New("metadata offline")}))

	resp := call(t, s, protocol.MethodToolsList, `{}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.InternalError, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "metadata offline")
}

func TestToolsCall(t *testing.T) {
	tracer := observability.NewMockTracer()
	tools := &fakeTools{}
	s := NewMCPServer("autotask-mcp", "dev", zaptest.NewLogger(t), WithToolProvider(tools), WithTracer(tracer))

	resp := call(t, s, protocol.MethodToolsCall, `{"name":"autotask_ticket_get","arguments":{"id":42}}`)
	require.Nil(t, resp.Error)

	var result protocol.CallToolResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	assert.False(t, result.IsError)
	assert.Equal(t, "autotask_ticket_get", tools.gotName)
	assert.Equal(t, float64(42), tools.gotArgs["id"])

	span := tracer.GetSpanByName(observability.SpanMCPToolsCall)
	require.NotNil(t, span)
	assert.Equal(t, "autotask_ticket_get", span.Attributes[observability.AttrToolName])
	assert.Equal(t, observability.StatusOK, span.Status.Code)
}

func TestToolsCall_Failures(t *testing.T) {
	t.Run("tool error stays in result", func(t *testing.T) {
		s := NewMCPServer("autotask-mcp", "dev", zaptest.NewLogger(t), WithToolProvider(&fakeTools{}))
		resp := call(t, s, protocol.MethodToolsCall, `{"name":"autotask_ticket_fail"}`)
		require.Nil(t, resp.Error)

		var result protocol.CallToolResult
		require.NoError(t, json.Unmarshal(resp.Result, &result))
		assert.True(t, result.IsError)
	})

	t.Run("provider error becomes error result", func(t *testing.T) {
		tracer := observability.NewMockTracer()
		s := NewMCPServer("autotask-mcp", "dev", zaptest.NewLogger(t),
			WithToolProvider(&fakeTools{callErr: errors.New("tool not found: x")}), WithTracer(tracer))
		resp := call(t, s, protocol.MethodToolsCall, `{"name":"x"}`)
		require.Nil(t, resp.Error)

		var result protocol.CallToolResult
		require.NoError(t, json.Unmarshal(resp.Result, &result))
		assert.True(t, result.IsError)
		require.Len(t, result.Content, 1)
		assert.Equal(t, "tool not found: x", result.Content[0].Text)
		assert.Equal(t, observability.StatusError, tracer.GetSpanByName(observability.SpanMCPToolsCall).Status.Code)
	})

	t.Run("missing name", func(t *testing.T) {
		s := NewMCPServer("autotask-mcp", "dev", zaptest.NewLogger(t), WithToolProvider(&fakeTools{}))
		resp := call(t, s, protocol.MethodToolsCall, `{"arguments":{}}`)
		require.NotNil(t, resp.Error)
		assert.Equal(t, protocol.InvalidParams, resp.Error.Code)
	})
}

func TestResources(t *testing.T) {
	s := NewMCPServer("autotask-mcp", "dev", zaptest.NewLogger(t), WithResourceProvider(fakeResources{}))

	resp := call(t, s, protocol.MethodResourcesList, `{}`)
	require.Nil(t, resp.Error)
	var list protocol.ResourceListResult
	require.NoError(t, json.Unmarshal(resp.Result, &list))
	require.Len(t, list.Resources, 1)

	resp = call(t, s, protocol.MethodResourcesTemplatesList, `{}`)
	require.Nil(t, resp.Error)
	var templates protocol.ResourceTemplateListResult
	require.NoError(t, json.Unmarshal(resp.Result, &templates))
	assert.Equal(t, "autotask://{resource}/fields", templates.ResourceTemplates[0].URITemplate)

	resp = call(t, s, protocol.MethodResourcesRead, `{"uri":"autotask://ticket/fields"}`)
	require.Nil(t, resp.Error)
	var read protocol.ReadResourceResult
	require.NoError(t, json.Unmarshal(resp.Result, &read))
	assert.Equal(t, "[]", read.Contents[0].Text)

	resp = call(t, s, protocol.MethodResourcesRead, `{"uri":"autotask://widget/fields"}`)
	require.NotNil(t, resp.Error)

	resp = call(t, s, protocol.MethodResourcesRead, `{}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.InvalidParams, resp.Error.Code)
}
