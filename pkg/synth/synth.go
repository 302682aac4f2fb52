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

// Package synth turns resource field metadata into agent tool descriptors:
// a deterministic name, a natural-language description and an object-typed
// JSON Schema for each (resource, operation kind).
//
// Synthesis is pure and total. Malformed metadata degrades to permissive
// string parameters instead of failing, and every schema passes through
// shuttle.EnsureObjectSchema before it is returned.
package synth

import (
	"github.com/msoukhomlinov/autotask-mcp/pkg/entity"
	"github.com/msoukhomlinov/autotask-mcp/pkg/naming"
	"github.com/msoukhomlinov/autotask-mcp/pkg/operation"
	"github.com/msoukhomlinov/autotask-mcp/pkg/shuttle"
)

// Picklist hint limits for parameter descriptions.
const (
	MaxPicklistHints       = 8
	LargePicklistThreshold = 15
)

// maxListedFilterFields caps the filterable-field enumeration in operation
// descriptions; the filter_field enum always carries the full list.
const maxListedFilterFields = 40

// ToolDescriptor is one synthesized tool.
type ToolDescriptor struct {
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	InputSchema   *shuttle.JSONSchema `json:"inputSchema"`
	OperationKind operation.Kind      `json:"operationKind"`
	Resource      string              `json:"resource"`
}

// Input is the metadata a resource tool is synthesized from.
type Input struct {
	Namespace   string
	Resource    string
	ReadFields  []entity.FieldDescriptor
	WriteFields []entity.FieldDescriptor
}

// Synthesize builds the descriptor for one operation kind.
func Synthesize(in Input, op operation.Kind) ToolDescriptor {
	var schema *shuttle.JSONSchema
	switch {
	case op == operation.Get:
		schema = idSchema(in.Resource, true)
	case op.Filterable():
		schema = listSchema(in)
	case op == operation.Create:
		schema = writeSchema(in, op)
	case op == operation.Update:
		schema = writeSchema(in, op)
	case op == operation.Delete:
		schema = idSchema(in.Resource, false)
	case op == operation.SearchByDomain:
		schema = domainSchema()
	case op == operation.WhoAmI:
		schema = shuttle.NewObjectSchema("", map[string]*shuttle.JSONSchema{}, nil)
	default:
		// Unknown kinds still get a callable tool.
		schema = shuttle.NewObjectSchema("", map[string]*shuttle.JSONSchema{
			operation.ParamID: shuttle.NewNumberSchema("Entity ID"),
		}, nil)
	}

	return ToolDescriptor{
		Name:          naming.ToolName(in.Namespace, in.Resource, string(op)),
		Description:   describeOperation(in, op),
		InputSchema:   shuttle.EnsureObjectSchema(schema),
		OperationKind: op,
		Resource:      in.Resource,
	}
}

// SynthesizeAll builds descriptors for every kind in ops.
func SynthesizeAll(in Input, ops []operation.Kind) []ToolDescriptor {
	out := make([]ToolDescriptor, 0, len(ops))
	for _, op := range ops {
		out = append(out, Synthesize(in, op))
	}
	return out
}
