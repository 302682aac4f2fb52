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

package agenttools

import (
	"context"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/msoukhomlinov/autotask-mcp/pkg/agenterr"
	"github.com/msoukhomlinov/autotask-mcp/pkg/entity"
	"github.com/msoukhomlinov/autotask-mcp/pkg/naming"
	"github.com/msoukhomlinov/autotask-mcp/pkg/operation"
	"github.com/msoukhomlinov/autotask-mcp/pkg/shuttle"
	"github.com/msoukhomlinov/autotask-mcp/pkg/synth"
)

// MaxPicklistPageSize caps the limit of listPicklistValues.
const MaxPicklistPageSize = 500

var readOnlyHints = shuttle.Hints{ReadOnly: true, Idempotent: true}

// DescribeFieldsTool returns the normalized field list of a resource.
type DescribeFieldsTool struct {
	desc      synth.ToolDescriptor
	namespace string
	provider  entity.Provider
}

// NewDescribeFieldsTool creates the describeFields companion for in.
func NewDescribeFieldsTool(in synth.Input, provider entity.Provider) *DescribeFieldsTool {
	return &DescribeFieldsTool{desc: synth.DescribeFields(in), namespace: in.Namespace, provider: provider}
}

func (t *DescribeFieldsTool) Name() string                     { return t.desc.Name }
func (t *DescribeFieldsTool) Description() string              { return t.desc.Description }
func (t *DescribeFieldsTool) InputSchema() *shuttle.JSONSchema { return t.desc.InputSchema }
func (t *DescribeFieldsTool) Backend() string                  { return Backend }
func (t *DescribeFieldsTool) Hints() shuttle.Hints             { return readOnlyHints }

func (t *DescribeFieldsTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	call := agenterr.Call{Namespace: t.namespace, Resource: t.desc.Resource, Operation: naming.HelperDescribeFields}

	mode, err := entity.ParseMode(stringParam(params, synth.ParamMode))
	if err != nil {
		return failureResult(agenterr.New(agenterr.APIError, call, err.Error()).
			WithContext("allowedModes", []string{string(entity.ModeRead), string(entity.ModeWrite)})), nil
	}

	fields, err := t.provider.GetFields(ctx, t.desc.Resource, mode)
	if err != nil {
		return failureResult(agenterr.Classify(err, call)), nil
	}
	if fields == nil {
		fields = []entity.FieldDescriptor{}
	}
	return &shuttle.Result{
		Success: true,
		Data: map[string]interface{}{
			"resource": t.desc.Resource,
			"mode":     string(mode),
			"count":    len(fields),
			"fields":   fields,
		},
	}, nil
}

// ListPicklistValuesTool pages through the values of one picklist field,
// optionally narrowed by a fuzzy label search.
type ListPicklistValuesTool struct {
	desc      synth.ToolDescriptor
	namespace string
	picklists entity.PicklistProvider
}

// NewListPicklistValuesTool creates the listPicklistValues companion for in.
func NewListPicklistValuesTool(in synth.Input, picklists entity.PicklistProvider) *ListPicklistValuesTool {
	return &ListPicklistValuesTool{desc: synth.ListPicklistValues(in), namespace: in.Namespace, picklists: picklists}
}

func (t *ListPicklistValuesTool) Name() string                     { return t.desc.Name }
func (t *ListPicklistValuesTool) Description() string              { return t.desc.Description }
func (t *ListPicklistValuesTool) InputSchema() *shuttle.JSONSchema { return t.desc.InputSchema }
func (t *ListPicklistValuesTool) Backend() string                  { return Backend }
func (t *ListPicklistValuesTool) Hints() shuttle.Hints             { return readOnlyHints }

func (t *ListPicklistValuesTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	call := agenterr.Call{Namespace: t.namespace, Resource: t.desc.Resource, Operation: naming.HelperListPicklistValues}

	fieldID := stringParam(params, synth.ParamFieldID)
	if fieldID == "" {
		return failureResult(agenterr.New(agenterr.InvalidFields, call, "fieldId is required").
			WithContext("invalidFields", []string{synth.ParamFieldID})), nil
	}

	values, err := t.picklists.GetPicklistValues(ctx, t.desc.Resource, fieldID)
	if err != nil {
		return failureResult(agenterr.Classify(err, call)), nil
	}

	query := stringParam(params, synth.ParamQuery)
	if query != "" {
		values = search(values, query)
	}

	limit := intParam(params, operation.ParamLimit, synth.DefaultPicklistPageSize)
	if limit > MaxPicklistPageSize {
		limit = MaxPicklistPageSize
	}
	page := intParam(params, synth.ParamPage, 1)

	total := len(values)
	from := (page - 1) * limit
	if from > total {
		from = total
	}
	to := from + limit
	if to > total {
		to = total
	}

	data := map[string]interface{}{
		"fieldId":  fieldID,
		"values":   append([]entity.PicklistValue{}, values[from:to]...),
		"total":    total,
		"page":     page,
		"pageSize": limit,
		"hasMore":  to < total,
	}
	if query != "" {
		data["query"] = query
	}
	if total == 0 && query != "" {
		data["note"] = fmt.Sprintf("no values of %s match %q; retry without query to list them all", fieldID, query)
	}
	return &shuttle.Result{Success: true, Data: data}, nil
}

// picklistLabels lets fuzzy match over value labels.
type picklistLabels []entity.PicklistValue

func (p picklistLabels) String(i int) string { return p[i].Label }
func (p picklistLabels) Len() int            { return len(p) }

// search ranks values by fuzzy label match. An exact id match always
// comes first.
func search(values []entity.PicklistValue, query string) []entity.PicklistValue {
	var out []entity.PicklistValue
	exact := -1
	for i, v := range values {
		if strings.EqualFold(v.ID, query) {
			exact = i
			out = append(out, v)
			break
		}
	}
	for _, m := range fuzzy.FindFrom(query, picklistLabels(values)) {
		if m.Index == exact {
			continue
		}
		out = append(out, values[m.Index])
	}
	return out
}
