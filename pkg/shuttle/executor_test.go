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

package shuttle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/msoukhomlinov/autotask-mcp/pkg/observability"
)

func TestExecutor_Success(t *testing.T) {
	reg := NewRegistry()
	tool := &MockTool{MockName: "echo"}
	reg.Register(tool)

	exec := NewExecutor(reg, zaptest.NewLogger(t))
	result, err := exec.Execute(context.Background(), "echo", map[string]interface{}{"a": 1})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, tool.Calls())
	assert.GreaterOrEqual(t, result.ExecutionTimeMs, int64(0))
}

func TestExecutor_ToolNotFound(t *testing.T) {
	exec := NewExecutor(NewRegistry(), nil)
	_, err := exec.Execute(context.Background(), "missing", nil)
	assert.ErrorContains(t, err, "tool not found: missing")
}

func TestExecutor_ErrorBecomesResult(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&MockTool{MockName: "fail", MockExecute: func(context.Context, map[string]interface{}) (*Result, error) {
		return nil, errors.New("boom")
	}})

	result, err := NewExecutor(reg, zaptest.NewLogger(t)).Execute(context.Background(), "fail", nil)
	require.NoError(t, err)
	assert.False(t, result.Success)
	require.NotNil(t, result.Error)
	assert.Equal(t, ErrorCodeExecutionFailed, result.Error.Code)
	assert.Equal(t, "boom", result.Error.Message)
}

func TestExecutor_PanicBecomesResult(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&MockTool{MockName: "panic", MockExecute: func(context.Context, map[string]interface{}) (*Result, error) {
		panic("kaboom")
	}})

	result, err := NewExecutor(reg, zaptest.NewLogger(t)).Execute(context.Background(), "panic", nil)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error.Message, "kaboom")
}

func TestExecutor_NormalizesParameterNames(t *testing.T) {
	reg := NewRegistry()
	tool := &MockTool{
		MockName: "create",
		MockSchema: NewObjectSchema("", map[string]*JSONSchema{
			"companyID": NewNumberSchema(""),
			"title":     NewStringSchema(""),
		}, nil),
	}
	reg.Register(tool)

	_, err := NewExecutor(reg, nil).Execute(context.Background(), "create", map[string]interface{}{
		"company_id": 1,
		"Title":      "x",
		"other":      true,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"companyID": 1, "title": "x", "other": true}, tool.LastParams())
}

func TestInstrumentedExecutor_RecordsSpans(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&MockTool{MockName: "ok"})
	reg.Register(&MockTool{MockName: "bad", MockExecute: func(context.Context, map[string]interface{}) (*Result, error) {
		return &Result{Success: false, Error: &Error{Code: "ENTITY_NOT_FOUND", Message: "nope"}}, nil
	}})

	tracer := observability.NewMockTracer()
	exec := NewInstrumentedExecutor(NewExecutor(reg, nil), tracer)

	_, err := exec.Execute(context.Background(), "ok", map[string]interface{}{"id": 1})
	require.NoError(t, err)
	_, err = exec.Execute(context.Background(), "bad", nil)
	require.NoError(t, err)
	_, err = exec.Execute(context.Background(), "missing", nil)
	require.Error(t, err)

	spans := tracer.GetSpans()
	require.Len(t, spans, 3)
	assert.Equal(t, observability.StatusOK, spans[0].Status.Code)
	assert.Equal(t, "ENTITY_NOT_FOUND", spans[1].Attributes["tool.error.code"])
	assert.Equal(t, observability.StatusError, spans[2].Status.Code)
	assert.Len(t, tracer.GetMetrics(observability.MetricToolErrors), 2)
	assert.Len(t, tracer.GetMetrics(observability.MetricToolExecutions), 1)
}
