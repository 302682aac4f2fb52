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

package metacache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/msoukhomlinov/autotask-mcp/pkg/entity"
	"github.com/msoukhomlinov/autotask-mcp/pkg/observability"
)

// DefaultTTL is how long a cached field set stays fresh.
const DefaultTTL = 24 * time.Hour

const fieldsKeyPrefix = "fields:"

// CachedSource is an entity.Source that reads through a Cache.
//
// Cache failures never fail a load: a broken backend degrades to calling
// the wrapped source directly.
type CachedSource struct {
	source entity.Source
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
	tracer observability.Tracer
}

// SourceOption configures a CachedSource.
type SourceOption func(*CachedSource)

// WithTTL sets the entry lifetime.
func WithTTL(ttl time.Duration) SourceOption { return func(s *CachedSource) { s.ttl = ttl } }

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) SourceOption { return func(s *CachedSource) { s.logger = logger } }

// WithTracer sets the tracer that receives hit and miss metrics.
func WithTracer(tracer observability.Tracer) SourceOption { return func(s *CachedSource) { s.tracer = tracer } }

// NewCachedSource wraps source with cache.
func NewCachedSource(source entity.Source, cache Cache, opts ...SourceOption) *CachedSource {
	s := &CachedSource{
		source: source,
		cache:  cache,
		ttl:    DefaultTTL,
		logger: zap.NewNop(),
		tracer: observability.NewNoOpTracer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FieldsKey is the cache key of a resource's field set.
func FieldsKey(resource string) string {
	return fieldsKeyPrefix + strings.ToLower(resource)
}

// LoadFieldSet implements entity.Source.
func (s *CachedSource) LoadFieldSet(ctx context.Context, resource string) (*entity.FieldSet, error) {
	key := FieldsKey(resource)
	labels := map[string]string{observability.AttrResource: strings.ToLower(resource)}

	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Metadata cache read failed", zap.String("key", key), zap.Error(err))
	}
	if ok {
		var set entity.FieldSet
		if err := json.Unmarshal(data, &set); err == nil {
			s.tracer.RecordMetric(observability.MetricMetadataCacheHits, 1, labels)
			return &set, nil
		}
		s.logger.Warn("Dropping unreadable metadata cache entry", zap.String("key", key))
		_ = s.cache.Delete(ctx, key)
	}

	s.tracer.RecordMetric(observability.MetricMetadataCacheMisses, 1, labels)
	return s.load(ctx, resource)
}

// Refresh reloads resource from the wrapped source and overwrites the
// cached entry.
func (s *CachedSource) Refresh(ctx context.Context, resource string) error {
	_, err := s.load(ctx, resource)
	return err
}

// Invalidate drops the cached entry of resource.
func (s *CachedSource) Invalidate(ctx context.Context, resource string) error {
	return s.cache.Delete(ctx, FieldsKey(resource))
}

// Clear drops every cached entry.
func (s *CachedSource) Clear(ctx context.Context) error {
	return s.cache.Clear(ctx)
}

func (s *CachedSource) load(ctx context.Context, resource string) (*entity.FieldSet, error) {
	set, err := s.source.LoadFieldSet(ctx, resource)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(set)
	if err != nil {
		return nil, fmt.Errorf("failed to encode field set %s: %w", resource, err)
	}
	if err := s.cache.Set(ctx, FieldsKey(resource), data, s.ttl); err != nil {
		s.logger.Warn("Metadata cache write failed", zap.String("resource", resource), zap.Error(err))
	}
	return set, nil
}
