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
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// OTelTracer forwards spans and metrics to OpenTelemetry.
// Configure exporters on the global providers (otel.SetTracerProvider,
// otel.SetMeterProvider) before starting the server.
type OTelTracer struct {
	tracer trace.Tracer
	meter  metric.Meter
}

// NewOTelTracer creates a tracer on the global OpenTelemetry providers.
func NewOTelTracer(name string) *OTelTracer {
	return NewOTelTracerWithProvider(otel.GetTracerProvider(), name)
}

// NewOTelTracerWithProvider creates a tracer on an explicit TracerProvider.
func NewOTelTracerWithProvider(tp trace.TracerProvider, name string) *OTelTracer {
	return &OTelTracer{
		tracer: tp.Tracer(name),
		meter:  otel.Meter(name),
	}
}

// StartSpan starts an OpenTelemetry span and mirrors it in a *Span.
func (t *OTelTracer) StartSpan(ctx context.Context, name string, opts ...SpanOption) (context.Context, *Span) {
	ctx, otelSpan := t.tracer.Start(ctx, name)
	sc := otelSpan.SpanContext()

	span := newSpan(ctx, name, sc.TraceID().String(), sc.SpanID().String(), opts)
	span.backend = otelSpan
	return ContextWithSpan(ctx, span), span
}

// EndSpan copies attributes, events and status onto the OpenTelemetry span
// and ends it.
func (t *OTelTracer) EndSpan(span *Span) {
	if span == nil {
		return
	}
	finish(span)

	otelSpan, ok := span.backend.(trace.Span)
	if !ok {
		return
	}
	otelSpan.SetAttributes(toAttributes(span.Attributes)...)
	for _, ev := range span.Events {
		otelSpan.AddEvent(ev.Name, trace.WithTimestamp(ev.Timestamp), trace.WithAttributes(toAttributes(ev.Attributes)...))
	}
	switch span.Status.Code {
	case StatusOK:
		otelSpan.SetStatus(codes.Ok, span.Status.Message)
	case StatusError:
		otelSpan.SetStatus(codes.Error, span.Status.Message)
	}
	otelSpan.End(trace.WithTimestamp(span.EndTime))
}

// RecordMetric adds value to a float64 counter named name.
func (t *OTelTracer) RecordMetric(name string, value float64, labels map[string]string) {
	counter, err := t.meter.Float64Counter(name)
	if err != nil {
		return
	}
	attrs := make([]attribute.KeyValue, 0, len(labels))
	for k, v := range labels {
		attrs = append(attrs, attribute.String(k, v))
	}
	counter.Add(context.Background(), value, metric.WithAttributes(attrs...))
}

// RecordEvent adds an event to the span active in ctx.
func (t *OTelTracer) RecordEvent(ctx context.Context, name string, attributes map[string]interface{}) {
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(toAttributes(attributes)...))
}

// Flush is a no-op; exporters flush through their provider's shutdown.
func (t *OTelTracer) Flush(context.Context) error { return nil }

func toAttributes(m map[string]interface{}) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case string:
			attrs = append(attrs, attribute.String(k, val))
		case bool:
			attrs = append(attrs, attribute.Bool(k, val))
		case int:
			attrs = append(attrs, attribute.Int(k, val))
		case int64:
			attrs = append(attrs, attribute.Int64(k, val))
		case float64:
			attrs = append(attrs, attribute.Float64(k, val))
		case []string:
			attrs = append(attrs, attribute.StringSlice(k, val))
		default:
			attrs = append(attrs, attribute.String(k, fmt.Sprint(val)))
		}
	}
	return attrs
}

var _ Tracer = (*OTelTracer)(nil)
