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

// Package agenttools adapts synthesized tool descriptors into shuttle tools:
// one tool per (resource, operation) routed through the bridge, plus the
// describeFields and listPicklistValues companions of each resource.
package agenttools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/msoukhomlinov/autotask-mcp/pkg/agenterr"
	"github.com/msoukhomlinov/autotask-mcp/pkg/format"
	"github.com/msoukhomlinov/autotask-mcp/pkg/operation"
	"github.com/msoukhomlinov/autotask-mcp/pkg/shuttle"
	"github.com/msoukhomlinov/autotask-mcp/pkg/synth"
)

// Backend is reported by every tool in this package.
const Backend = "autotask"

// Caller runs one validated, classified operation. *bridge.Bridge
// implements it.
type Caller interface {
	Call(ctx context.Context, resource string, op operation.Kind, params map[string]interface{}) (format.Envelope, *agenterr.StructuredError)
}

// ResourceTool exposes one operation of one resource.
type ResourceTool struct {
	desc   synth.ToolDescriptor
	caller Caller
}

// NewResourceTool wraps desc so calls go through caller.
func NewResourceTool(desc synth.ToolDescriptor, caller Caller) *ResourceTool {
	return &ResourceTool{desc: desc, caller: caller}
}

func (t *ResourceTool) Name() string                     { return t.desc.Name }
func (t *ResourceTool) Description() string              { return t.desc.Description }
func (t *ResourceTool) InputSchema() *shuttle.JSONSchema { return t.desc.InputSchema }
func (t *ResourceTool) Backend() string                  { return Backend }

// Resource returns the resource the tool operates on.
func (t *ResourceTool) Resource() string { return t.desc.Resource }

// Operation returns the operation kind.
func (t *ResourceTool) Operation() operation.Kind { return t.desc.OperationKind }

// Hints marks reads read-only and writes destructive.
func (t *ResourceTool) Hints() shuttle.Hints {
	op := t.desc.OperationKind
	switch {
	case op.IsWrite():
		return shuttle.Hints{Destructive: true, Idempotent: op != operation.Create}
	case op == operation.Get, op == operation.Count, op == operation.WhoAmI, op.IsList():
		return shuttle.Hints{ReadOnly: true, Idempotent: true}
	}
	return shuttle.Hints{}
}

// Execute forwards the agent's parameters to the bridge. Classified
// failures are returned inside the Result, never as a Go error.
func (t *ResourceTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	envelope, failure := t.caller.Call(ctx, t.desc.Resource, t.desc.OperationKind, params)
	if failure != nil {
		return failureResult(failure), nil
	}
	return &shuttle.Result{
		Success: true,
		Data:    map[string]interface{}(envelope),
		Metadata: map[string]interface{}{
			"resource":  t.desc.Resource,
			"operation": string(t.desc.OperationKind),
		},
	}, nil
}

// failureResult carries the error envelope as the payload so the agent
// always receives the same JSON shape.
func failureResult(e *agenterr.StructuredError) *shuttle.Result {
	return &shuttle.Result{
		Success: false,
		Data:    e.Envelope(),
		Error: &shuttle.Error{
			Code:       string(e.Kind),
			Message:    e.Message,
			Details:    e.Context,
			Retryable:  e.Retryable,
			Suggestion: e.NextAction,
		},
	}
}

// stringParam reads a string parameter, formatting numbers.
func stringParam(params map[string]interface{}, name string) string {
	switch v := params[name].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case json.Number:
		return v.String()
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// intParam reads a positive integer parameter, returning fallback when it
// is absent or unusable.
func intParam(params map[string]interface{}, name string, fallback int) int {
	var n int
	switch v := params[name].(type) {
	case float64:
		n = int(v)
	case int:
		n = v
	case int64:
		n = int(v)
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return fallback
		}
		n = int(i)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fallback
		}
		n = i
	default:
		return fallback
	}
	if n < 1 {
		return fallback
	}
	return n
}
