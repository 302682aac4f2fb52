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
	"encoding/json"
	"fmt"

	"github.com/msoukhomlinov/autotask-mcp/pkg/observability"
)

// maxTracedArgsBytes caps the size of tool arguments copied onto a span.
const maxTracedArgsBytes = 1000

// InstrumentedExecutor wraps an Executor with a span and metrics per call.
type InstrumentedExecutor struct {
	executor *Executor
	tracer   observability.Tracer
}

// NewInstrumentedExecutor wraps executor. A nil tracer means no-op.
func NewInstrumentedExecutor(executor *Executor, tracer observability.Tracer) *InstrumentedExecutor {
	if tracer == nil {
		tracer = observability.NewNoOpTracer()
	}
	return &InstrumentedExecutor{executor: executor, tracer: tracer}
}

// Execute runs the named tool inside a tool.execute span.
func (e *InstrumentedExecutor) Execute(ctx context.Context, toolName string, params map[string]interface{}) (*Result, error) {
	ctx, span := e.tracer.StartSpan(ctx, observability.SpanToolExecute, observability.WithSpanKind("tool"))
	defer e.tracer.EndSpan(span)

	span.SetAttribute(observability.AttrToolName, toolName)
	if len(params) > 0 {
		if raw, err := json.Marshal(params); err == nil && len(raw) < maxTracedArgsBytes {
			span.SetAttribute(observability.AttrToolArgs, string(raw))
		} else {
			span.SetAttribute("tool.args.count", len(params))
		}
	}

	result, err := e.executor.Execute(ctx, toolName, params)
	if err != nil {
		span.RecordError(err)
		span.SetAttribute(observability.AttrErrorType, fmt.Sprintf("%T", err))
		e.tracer.RecordMetric(observability.MetricToolErrors, 1, map[string]string{
			observability.AttrToolName: toolName,
			"error_type":               "executor_error",
		})
		return nil, err
	}

	labels := map[string]string{observability.AttrToolName: toolName}
	if result.Success {
		span.Status = observability.Status{Code: observability.StatusOK}
		labels["status"] = "success"
		e.tracer.RecordMetric(observability.MetricToolExecutions, 1, labels)
	} else {
		code, msg := "unknown", ""
		if result.Error != nil {
			code, msg = result.Error.Code, result.Error.Message
			span.SetAttribute("tool.error.retryable", result.Error.Retryable)
		}
		span.Status = observability.Status{Code: observability.StatusError, Message: msg}
		span.SetAttribute("tool.error.code", code)
		e.tracer.RecordMetric(observability.MetricToolErrors, 1, map[string]string{
			observability.AttrToolName: toolName,
			"error_type":               "tool_error",
			"error_code":               code,
		})
	}

	span.SetAttribute("tool.execution_time_ms", result.ExecutionTimeMs)
	e.tracer.RecordMetric(observability.MetricToolDuration, float64(result.ExecutionTimeMs), map[string]string{
		observability.AttrToolName: toolName,
	})
	return result, nil
}
