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

package autotask

import (
	"context"
	"fmt"

	"github.com/msoukhomlinov/autotask-mcp/pkg/entity"
	"github.com/msoukhomlinov/autotask-mcp/pkg/observability"
)

// MetadataSource loads field metadata from the entityInformation endpoints.
type MetadataSource struct {
	client *Client
}

// NewMetadataSource creates a metadata source backed by client.
func NewMetadataSource(client *Client) *MetadataSource {
	return &MetadataSource{client: client}
}

// LoadFieldSet fetches standard and user-defined fields of resource.
func (s *MetadataSource) LoadFieldSet(ctx context.Context, resource string) (*entity.FieldSet, error) {
	r, ok := LookupResource(resource)
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrUnknownResource, resource)
	}

	ctx, span := s.client.tracer.StartSpan(ctx, observability.SpanMetadataLoad)
	defer s.client.tracer.EndSpan(span)
	span.SetAttribute(observability.AttrResource, r.Name)

	fields, err := s.client.FieldInfo(ctx, r)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load %s fields: %w", r.Name, err)
	}
	udfs, err := s.client.UserDefinedFieldInfo(ctx, r)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load %s user-defined fields: %w", r.Name, err)
	}

	return &entity.FieldSet{
		Resource:          r.Name,
		Fields:            fields,
		UserDefinedFields: udfs,
	}, nil
}
