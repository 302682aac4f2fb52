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
	"fmt"
	"strings"

	"github.com/msoukhomlinov/autotask-mcp/pkg/entity"
	"github.com/msoukhomlinov/autotask-mcp/pkg/naming"
	"github.com/msoukhomlinov/autotask-mcp/pkg/operation"
	"github.com/msoukhomlinov/autotask-mcp/pkg/shuttle"
)

// Helper tool parameters.
const (
	ParamMode    = "mode"
	ParamFieldID = "fieldId"
	ParamQuery   = "query"
	ParamPage    = "page"

	DefaultPicklistPageSize = 50
)

// DescribeFields builds the describeFields companion tool of a resource.
func DescribeFields(in Input) ToolDescriptor {
	mode := shuttle.NewStringSchema("Which view of the fields to describe: read (filterable and returned fields) " +
		"or write (fields accepted by create and update). Default read").
		WithEnum(string(entity.ModeRead), string(entity.ModeWrite)).
		WithDefault(string(entity.ModeRead))

	schema := shuttle.NewObjectSchema("", map[string]*shuttle.JSONSchema{ParamMode: mode}, nil)
	desc := fmt.Sprintf("Describe the fields of %s: id, type, required flag, picklist values (when small) "+
		"and referenced entity. Call this before create, update or filtering when unsure of field names.", in.Resource)

	return ToolDescriptor{
		Name:          naming.ToolName(in.Namespace, in.Resource, naming.HelperDescribeFields),
		Description:   desc,
		InputSchema:   shuttle.EnsureObjectSchema(schema),
		OperationKind: operation.Kind(naming.HelperDescribeFields),
		Resource:      in.Resource,
	}
}

// ListPicklistValues builds the listPicklistValues companion tool.
func ListPicklistValues(in Input) ToolDescriptor {
	fieldID := shuttle.NewStringSchema("Picklist field ID, e.g. status (required)")
	if ids := picklistFieldIDs(in.ReadFields, in.WriteFields); len(ids) > 0 {
		values := make([]interface{}, len(ids))
		for i, id := range ids {
			values[i] = id
		}
		fieldID.WithEnum(values...)
	}

	one := 1.0
	schema := shuttle.NewObjectSchema("", map[string]*shuttle.JSONSchema{
		ParamFieldID:         fieldID,
		ParamQuery:           shuttle.NewStringSchema("Optional fuzzy search over value labels"),
		operation.ParamLimit: shuttle.NewNumberSchema("Values per page (default 50)").WithRange(&one, nil).WithDefault(DefaultPicklistPageSize),
		ParamPage:            shuttle.NewNumberSchema("1-based page number (default 1)").WithRange(&one, nil).WithDefault(1),
	}, []string{ParamFieldID})
	desc := fmt.Sprintf("List the allowed values (id and label) of a %s picklist field, with optional "+
		"fuzzy search and paging. Use the returned id when filtering, creating or updating.", in.Resource)

	return ToolDescriptor{
		Name:          naming.ToolName(in.Namespace, in.Resource, naming.HelperListPicklistValues),
		Description:   desc,
		InputSchema:   shuttle.EnsureObjectSchema(schema),
		OperationKind: operation.Kind(naming.HelperListPicklistValues),
		Resource:      in.Resource,
	}
}

func picklistFieldIDs(lists ...[]entity.FieldDescriptor) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, fields := range lists {
		for _, f := range fields {
			if !f.IsPicklist {
				continue
			}
			key := strings.ToLower(f.ID)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, f.ID)
		}
	}
	return out
}
