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

package synth

import (
	"strings"

	"github.com/msoukhomlinov/autotask-mcp/pkg/entity"
	"github.com/msoukhomlinov/autotask-mcp/pkg/operation"
	"github.com/msoukhomlinov/autotask-mcp/pkg/shuttle"
)

func idSchema(resource string, selectable bool) *shuttle.JSONSchema {
	props := map[string]*shuttle.JSONSchema{
		operation.ParamID: shuttle.NewNumberSchema("Numeric " + resource + " ID (required)"),
	}
	if selectable {
		props[operation.ParamFields] = fieldsParam()
	}
	return shuttle.NewObjectSchema("", props, []string{operation.ParamID})
}

func listSchema(in Input) *shuttle.JSONSchema {
	filterable := FilterableFields(in.ReadFields)

	props := make(map[string]*shuttle.JSONSchema, 3*operation.MaxFilters+2)
	for i := 0; i < operation.MaxFilters; i++ {
		prefix := "Field to filter on"
		if i > 0 {
			prefix = "Second filter field (combined with the first using AND)"
		}

		field := shuttle.NewStringSchema(prefix)
		if len(filterable) > 0 {
			values := make([]interface{}, len(filterable))
			for j, id := range filterable {
				values[j] = id
			}
			field.WithEnum(values...)
		}
		props[operation.FilterParam(operation.ParamFilterField, i)] = field

		ops := make([]interface{}, len(operation.FilterOperators))
		for j, o := range operation.FilterOperators {
			ops[j] = o
		}
		props[operation.FilterParam(operation.ParamFilterOp, i)] = shuttle.
			NewStringSchema("Comparison operator (default eq)").
			WithEnum(ops...)

		props[operation.FilterParam(operation.ParamFilterValue, i)] = shuttle.NewStringSchema(
			"Value to compare against. Use the picklist value id for picklist fields and ISO 8601 for dates")
	}

	props[operation.ParamLimit] = limitParam()
	props[operation.ParamFields] = fieldsParam()
	return shuttle.NewObjectSchema("", props, nil)
}

func writeSchema(in Input, op operation.Kind) *shuttle.JSONSchema {
	props := make(map[string]*shuttle.JSONSchema, len(in.WriteFields)+1)
	var required []string

	if op == operation.Update {
		props[operation.ParamID] = shuttle.NewNumberSchema("Numeric ID of the " + in.Resource + " to update (required)")
		required = append(required, operation.ParamID)
	}

	for _, f := range in.WriteFields {
		if strings.TrimSpace(f.ID) == "" || operation.IsControlParam(f.ID) {
			continue
		}
		if _, dup := props[f.ID]; dup {
			continue
		}
		isRequired := op == operation.Create && f.Required
		props[f.ID] = fieldParam(in, f, op, isRequired)
		if isRequired {
			required = append(required, f.ID)
		}
	}
	return shuttle.NewObjectSchema("", props, required)
}

func domainSchema() *shuttle.JSONSchema {
	return shuttle.NewObjectSchema("", map[string]*shuttle.JSONSchema{
		operation.ParamDomain: shuttle.NewStringSchema(
			"Domain or URL to search for, e.g. example.com or https://www.example.com/contact (required)"),
		operation.ParamLimit:  limitParam(),
		operation.ParamFields: fieldsParam(),
	}, []string{operation.ParamDomain})
}

// fieldParam maps a descriptor to a parameter schema. Only number and
// boolean keep their JSON type; everything else is a string.
func fieldParam(in Input, f entity.FieldDescriptor, op operation.Kind, required bool) *shuttle.JSONSchema {
	desc := ParamDescription(in.Namespace, in.Resource, f, op, required)
	switch f.Type {
	case entity.TypeNumber:
		return shuttle.NewNumberSchema(desc)
	case entity.TypeBoolean:
		return shuttle.NewBooleanSchema(desc)
	default:
		return shuttle.NewStringSchema(desc)
	}
}

func limitParam() *shuttle.JSONSchema {
	one := 1.0
	return shuttle.NewNumberSchema(
		"Maximum number of records to fetch. Omit to fetch every match (only the first 25 are returned inline)").
		WithRange(&one, nil)
}

func fieldsParam() *shuttle.JSONSchema {
	return shuttle.NewStringSchema("Comma-separated field IDs to return, e.g. id,title,status. Omit for all fields")
}

// FilterableFields returns the distinct ids of non-user-defined fields, in
// order.
func FilterableFields(fields []entity.FieldDescriptor) []string {
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.IsUserDefined || strings.TrimSpace(f.ID) == "" {
			continue
		}
		if _, dup := seen[f.ID]; dup {
			continue
		}
		seen[f.ID] = struct{}{}
		out = append(out, f.ID)
	}
	return out
}
