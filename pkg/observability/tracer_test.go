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

package observability

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode_String(t *testing.T) {
	assert.Equal(t, "unset", StatusUnset.String())
	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "error", StatusError.String())
	assert.Equal(t, "unknown", StatusCode(42).String())
}

func TestSpan_AttributesAndErrors(t *testing.T) {
	var span Span
	span.SetAttribute(AttrResource, "ticket")
	span.AddEvent("retry", map[string]interface{}{"attempt": 2})
	span.RecordError(nil)
	assert.Equal(t, StatusUnset, span.Status.Code)

	span.RecordError(errors.New("boom"))
	assert.Equal(t, "ticket", span.Attributes[AttrResource])
	require.Len(t, span.Events, 1)
	assert.Equal(t, "retry", span.Events[0].Name)
	assert.Equal(t, Status{Code: StatusError, Message: "boom"}, span.Status)
	assert.Equal(t, "boom", span.Attributes[AttrErrorMessage])
}

func TestNoOpTracer_Nesting(t *testing.T) {
	tracer := NewNoOpTracer()

	ctx, parent := tracer.StartSpan(context.Background(), SpanMCPToolsCall,
		WithAttribute(AttrToolName, "autotask_ticket_get"),
		WithSpanKind("mcp"))
	assert.Same(t, parent, SpanFromContext(ctx))
	assert.Equal(t, "autotask_ticket_get", parent.Attributes[AttrToolName])
	assert.Equal(t, "mcp", parent.Attributes["span.kind"])

	_, child := tracer.StartSpan(ctx, SpanToolExecute)
	assert.Equal(t, parent.TraceID, child.TraceID)
	assert.Equal(t, parent.SpanID, child.ParentID)

	tracer.EndSpan(child)
	tracer.EndSpan(parent)
	tracer.EndSpan(nil)
	assert.False(t, parent.EndTime.IsZero())
	assert.GreaterOrEqual(t, parent.Duration, child.Duration)
	assert.NoError(t, tracer.Flush(context.Background()))
}

func TestSpanFromContext_Empty(t *testing.T) {
	assert.Nil(t, SpanFromContext(context.Background()))
}

func TestMockTracer(t *testing.T) {
	tracer := NewMockTracer()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, span := tracer.StartSpan(context.Background(), SpanBridgeCall)
			tracer.EndSpan(span)
			tracer.RecordMetric(MetricBridgeCalls, 1, map[string]string{"resource": "ticket"})
		}()
	}
	wg.Wait()

	assert.Len(t, tracer.GetSpans(), 10)
	assert.NotNil(t, tracer.GetSpanByName(SpanBridgeCall))
	assert.Nil(t, tracer.GetSpanByName(SpanAutotaskRequest))
	assert.Len(t, tracer.GetMetrics(MetricBridgeCalls), 10)
	assert.Empty(t, tracer.GetMetrics(MetricBridgeErrors))

	tracer.Reset()
	assert.Empty(t, tracer.GetSpans())
}
