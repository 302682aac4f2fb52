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

package entity

import (
	"context"
	"fmt"
	"strings"
)

// RawField mirrors one entry of the entityInformation/fields and
// entityInformation/userDefinedFields responses.
type RawField struct {
	Name                string             `json:"name" yaml:"name"`
	Label               string             `json:"label,omitempty" yaml:"label,omitempty"`
	DataType            string             `json:"dataType" yaml:"dataType"`
	IsRequired          bool               `json:"isRequired" yaml:"isRequired"`
	IsReadOnly          bool               `json:"isReadOnly" yaml:"isReadOnly"`
	IsQueryable         bool               `json:"isQueryable" yaml:"isQueryable"`
	IsReference         bool               `json:"isReference" yaml:"isReference"`
	ReferenceEntityType string             `json:"referenceEntityType,omitempty" yaml:"referenceEntityType,omitempty"`
	IsPickList          bool               `json:"isPickList" yaml:"isPickList"`
	PicklistValues      []RawPicklistValue `json:"picklistValues,omitempty" yaml:"picklistValues,omitempty"`
}

// RawPicklistValue is one picklist entry as the API returns it.
// A nil IsActive counts as active.
type RawPicklistValue struct {
	Value     string `json:"value" yaml:"value"`
	Label     string `json:"label" yaml:"label"`
	IsActive  *bool  `json:"isActive,omitempty" yaml:"isActive,omitempty"`
	SortOrder int    `json:"sortOrder,omitempty" yaml:"sortOrder,omitempty"`
}

// Active reports whether the value may still be used.
func (v RawPicklistValue) Active() bool {
	return v.IsActive == nil || *v.IsActive
}

// FieldSet is the raw metadata of one resource.
type FieldSet struct {
	Resource          string     `json:"resource" yaml:"resource"`
	Fields            []RawField `json:"fields" yaml:"fields"`
	UserDefinedFields []RawField `json:"userDefinedFields,omitempty" yaml:"userDefinedFields,omitempty"`
}

// Source loads raw field metadata for a resource.
type Source interface {
	LoadFieldSet(ctx context.Context, resource string) (*FieldSet, error)
}

// MapSource is an in-memory Source keyed by lower-cased resource name.
type MapSource map[string]*FieldSet

// LoadFieldSet returns the field set registered for resource.
func (m MapSource) LoadFieldSet(_ context.Context, resource string) (*FieldSet, error) {
	if set, ok := m[strings.ToLower(resource)]; ok {
		return set, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownResource, resource)
}

// Record is one entity instance as returned by the API.
type Record map[string]interface{}
