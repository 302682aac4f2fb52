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
	"time"

	"github.com/google/uuid"
)

// NoOpTracer creates spans for context propagation but exports nothing.
type NoOpTracer struct{}

// NewNoOpTracer creates a no-op tracer.
func NewNoOpTracer() *NoOpTracer {
	return &NoOpTracer{}
}

// StartSpan creates a span that is never exported.
func (t *NoOpTracer) StartSpan(ctx context.Context, name string, opts ...SpanOption) (context.Context, *Span) {
	span := newSpan(ctx, name, uuid.New().String(), uuid.New().String(), opts)
	return ContextWithSpan(ctx, span), span
}

// EndSpan stamps the end time.
func (t *NoOpTracer) EndSpan(span *Span) {
	finish(span)
}

func (t *NoOpTracer) RecordMetric(string, float64, map[string]string) {}

func (t *NoOpTracer) RecordEvent(context.Context, string, map[string]interface{}) {}

func (t *NoOpTracer) Flush(context.Context) error { return nil }

// newSpan builds a span, applies opts and links it to the parent in ctx.
func newSpan(ctx context.Context, name, traceID, spanID string, opts []SpanOption) *Span {
	span := &Span{
		TraceID:    traceID,
		SpanID:     spanID,
		Name:       name,
		StartTime:  time.Now(),
		Attributes: make(map[string]interface{}),
	}
	for _, opt := range opts {
		opt(span)
	}
	if parent := SpanFromContext(ctx); parent != nil {
		span.TraceID = parent.TraceID
		span.ParentID = parent.SpanID
	}
	return span
}

func finish(span *Span) {
	if span == nil {
		return
	}
	span.EndTime = time.Now()
	span.Duration = span.EndTime.Sub(span.StartTime)
}

var _ Tracer = (*NoOpTracer)(nil)
