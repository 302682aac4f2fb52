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

// Catalog implements Provider and PicklistProvider on top of a raw Source.
type Catalog struct {
	source Source
}

// NewCatalog creates a catalog reading from source.
func NewCatalog(source Source) *Catalog {
	return &Catalog{source: source}
}

// GetFields loads and normalizes the fields of resource for mode.
func (c *Catalog) GetFields(ctx context.Context, resource string, mode Mode) ([]FieldDescriptor, error) {
	set, err := c.source.LoadFieldSet(ctx, resource)
	if err != nil {
		return nil, fmt.Errorf("load fields for %s: %w", resource, err)
	}
	return Normalize(resource, mode, set.Fields, set.UserDefinedFields), nil
}

// GetPicklistValues returns every active value of a picklist field.
func (c *Catalog) GetPicklistValues(ctx context.Context, resource, fieldID string) ([]PicklistValue, error) {
	set, err := c.source.LoadFieldSet(ctx, resource)
	if err != nil {
		return nil, fmt.Errorf("load fields for %s: %w", resource, err)
	}
	for _, list := range [][]RawField{set.Fields, set.UserDefinedFields} {
		for _, raw := range list {
			if !strings.EqualFold(raw.Name, fieldID) {
				continue
			}
			if !raw.IsPickList {
				return nil, fmt.Errorf("field %s on %s is not a picklist", fieldID, resource)
			}
			return ActiveValues(raw.PicklistValues), nil
		}
	}
	return nil, fmt.Errorf("field %s not found on %s", fieldID, resource)
}

var (
	_ Provider         = (*Catalog)(nil)
	_ PicklistProvider = (*Catalog)(nil)
)
