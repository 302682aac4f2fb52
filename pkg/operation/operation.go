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

// Package operation enumerates the operation kinds a resource tool can
// perform and classifies them.
package operation

import (
	"fmt"
	"strings"
)

// Kind is one operation kind.
type Kind string

const (
	Get            Kind = "get"
	GetMany        Kind = "getMany"
	Count          Kind = "count"
	Create         Kind = "create"
	Update         Kind = "update"
	Delete         Kind = "delete"
	SearchByDomain Kind = "searchByDomain"
	WhoAmI         Kind = "whoAmI"
	GetPosted      Kind = "getPosted"
	GetUnposted    Kind = "getUnposted"
)

// All lists every kind in a stable order.
var All = []Kind{Get, GetMany, Count, Create, Update, Delete, SearchByDomain, WhoAmI, GetPosted, GetUnposted}

// Parse resolves a kind name case-insensitively.
func Parse(s string) (Kind, error) {
	for _, k := range All {
		if strings.EqualFold(string(k), strings.TrimSpace(s)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown operation %q", s)
}

// Filterable kinds accept filter_field/filter_op/filter_value triplets.
func (k Kind) Filterable() bool {
	switch k {
	case GetMany, Count, GetPosted, GetUnposted:
		return true
	}
	return false
}

// IsList kinds return a record list subject to the inline cap.
func (k Kind) IsList() bool {
	switch k {
	case GetMany, GetPosted, GetUnposted, SearchByDomain:
		return true
	}
	return false
}

// IsWrite kinds change data and are gated by the write-enable flag.
func (k Kind) IsWrite() bool {
	switch k {
	case Create, Update, Delete:
		return true
	}
	return false
}

// NeedsID reports whether the kind addresses one record by id. Unknown
// kinds need one unless they are bulk variants.
func (k Kind) NeedsID() bool {
	switch k {
	case GetMany, Count, Create, SearchByDomain, WhoAmI, GetPosted, GetUnposted:
		return false
	}
	return !strings.HasPrefix(string(k), "bulk")
}

// Selectable kinds accept a comma-separated 'fields' column selection.
func (k Kind) Selectable() bool {
	return k == Get || k.IsList()
}

// Parameter names with control meaning in a flat call bag. They are never
// forwarded to the API as field values.
const (
	ParamID          = "id"
	ParamResource    = "resource"
	ParamOperation   = "operation"
	ParamLimit       = "limit"
	ParamFields      = "fields"
	ParamDomain      = "domain"
	ParamFilterField = "filter_field"
	ParamFilterOp    = "filter_op"
	ParamFilterValue = "filter_value"
)

// MaxFilters is the compound-query ceiling of the upstream API.
const MaxFilters = 2

// FilterParam returns the name of a filter parameter for the 0-based
// filter index: filter_field, filter_field_2, ...
func FilterParam(base string, index int) string {
	if index == 0 {
		return base
	}
	return fmt.Sprintf("%s_%d", base, index+1)
}

// IsControlParam reports whether name is a control parameter.
func IsControlParam(name string) bool {
	switch strings.ToLower(name) {
	case ParamID, ParamResource, ParamOperation, ParamLimit, ParamFields, ParamDomain:
		return true
	}
	return strings.HasPrefix(strings.ToLower(name), "filter_")
}
