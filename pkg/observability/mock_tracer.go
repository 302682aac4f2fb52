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
	"sync"

	"github.com/google/uuid"
)

// Metric is one recorded metric sample.
type Metric struct {
	Name   string
	Value  float64
	Labels map[string]string
}

// MockTracer keeps every ended span and recorded metric for inspection.
type MockTracer struct {
	mu      sync.RWMutex
	spans   []*Span
	metrics []Metric
}

// NewMockTracer creates a mock tracer for tests.
func NewMockTracer() *MockTracer {
	return &MockTracer{}
}

func (m *MockTracer) StartSpan(ctx context.Context, name string, opts ...SpanOption) (context.Context, *Span) {
	span := newSpan(ctx, name, "trace-"+uuid.NewString(), "span-"+uuid.NewString(), opts)
	return ContextWithSpan(ctx, span), span
}

func (m *MockTracer) EndSpan(span *Span) {
	if span == nil {
		return
	}
	finish(span)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.spans = append(m.spans, span)
}

func (m *MockTracer) RecordMetric(name string, value float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics = append(m.metrics, Metric{Name: name, Value: value, Labels: labels})
}

func (m *MockTracer) RecordEvent(context.Context, string, map[string]interface{}) {}

func (m *MockTracer) Flush(context.Context) error { return nil }

// GetSpans returns a copy of the ended spans.
func (m *MockTracer) GetSpans() []*Span {
	m.mu.RLock()
	defer m.mu.RUnlock()
	spans := make([]*Span, len(m.spans))
	copy(spans, m.spans)
	return spans
}

// GetSpanByName returns the first ended span called name, or nil.
func (m *MockTracer) GetSpanByName(name string) *Span {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, span := range m.spans {
		if span.Name == name {
			return span
		}
	}
	return nil
}

// GetMetrics returns the recorded samples named name.
func (m *MockTracer) GetMetrics(name string) []Metric {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Metric
	for _, metric := range m.metrics {
		if metric.Name == name {
			out = append(out, metric)
		}
	}
	return out
}

// Reset drops everything recorded so far.
func (m *MockTracer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spans = nil
	m.metrics = nil
}

var _ Tracer = (*MockTracer)(nil)
