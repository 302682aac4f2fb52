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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msoukhomlinov/autotask-mcp/pkg/entity"
	"github.com/msoukhomlinov/autotask-mcp/pkg/operation"
	"github.com/msoukhomlinov/autotask-mcp/pkg/shuttle"
	"github.com/msoukhomlinov/autotask-mcp/pkg/synth"
)

func synthDescriptor(resource string, op operation.Kind) synth.ToolDescriptor {
	return synth.Synthesize(synth.Input{Resource: resource}, op)
}

func ticketInput(t *testing.T, catalog *entity.Catalog) synth.Input {
	t.Helper()
	ctx := context.Background()
	read, err := catalog.GetFields(ctx, "ticket", entity.ModeRead)
	require.NoError(t, err)
	write, err := catalog.GetFields(ctx, "ticket", entity.ModeWrite)
	require.NoError(t, err)
	return synth.Input{Namespace: "autotask", Resource: "ticket", ReadFields: read, WriteFields: write}
}

func TestDescribeFieldsTool(t *testing.T) {
	catalog := entity.NewCatalog(ticketSource())
	tool := NewDescribeFieldsTool(ticketInput(t, catalog), catalog)
	assert.Equal(t, "autotask_ticket_describeFields", tool.Name())
	assert.Equal(t, shuttle.Hints{ReadOnly: true, Idempotent: true}, tool.Hints())

	res, err := tool.Execute(context.Background(), map[string]interface{}{})
	require.NoError(t, err)
	require.True(t, res.Success)
	data := res.Data.(map[string]interface{})
	assert.Equal(t, "read", data["mode"])
	assert.Equal(t, 5, data["count"])

	res, err = tool.Execute(context.Background(), map[string]interface{}{"mode": "WRITE"})
	require.NoError(t, err)
	data = res.Data.(map[string]interface{})
	assert.Equal(t, "write", data["mode"])
	fields := data["fields"].([]entity.FieldDescriptor)
	require.Len(t, fields, 3)
	assert.Equal(t, "title", fields[0].ID)
	assert.True(t, fields[0].Required)

	res, err = tool.Execute(context.Background(), map[string]interface{}{"mode": "delete"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "API_ERROR", res.Error.Code)
}

func TestDescribeFieldsTool_UnknownResource(t *testing.T) {
	catalog := entity.NewCatalog(ticketSource())
	tool := NewDescribeFieldsTool(synth.Input{Resource: "widget"}, catalog)

	res, err := tool.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error.Message, "unknown resource")
}

func TestListPicklistValuesTool_Paging(t *testing.T) {
	catalog := entity.NewCatalog(ticketSource())
	tool := NewListPicklistValuesTool(ticketInput(t, catalog), catalog)
	assert.Equal(t, "autotask_ticket_listPicklistValues", tool.Name())
	assert.Equal(t, []interface{}{"status"}, tool.InputSchema().Properties[synth.ParamFieldID].Enum)

	res, err := tool.Execute(context.Background(), map[string]interface{}{"fieldId": "status", "limit": 4})
	require.NoError(t, err)
	require.True(t, res.Success)
	data := res.Data.(map[string]interface{})
	assert.Equal(t, 6, data["total"])
	assert.Equal(t, true, data["hasMore"])
	assert.Len(t, data["values"], 4)

	res, err = tool.Execute(context.Background(), map[string]interface{}{"fieldId": "status", "limit": 4.0, "page": "2"})
	require.NoError(t, err)
	data = res.Data.(map[string]interface{})
	assert.Equal(t, []entity.PicklistValue{{ID: "5", Label: "Complete"}, {ID: "6", Label: "Escalated"}}, data["values"])
	assert.Equal(t, false, data["hasMore"])

	res, err = tool.Execute(context.Background(), map[string]interface{}{"fieldId": "status", "page": 9})
	require.NoError(t, err)
	data = res.Data.(map[string]interface{})
	assert.Empty(t, data["values"])
	assert.Equal(t, 9, data["page"])
}

func TestListPicklistValuesTool_Search(t *testing.T) {
	catalog := entity.NewCatalog(ticketSource())
	tool := NewListPicklistValuesTool(ticketInput(t, catalog), catalog)

	res, err := tool.Execute(context.Background(), map[string]interface{}{"fieldId": "status", "query": "wait"})
	require.NoError(t, err)
	data := res.Data.(map[string]interface{})
	values := data["values"].([]entity.PicklistValue)
	require.Len(t, values, 2)
	for _, v := range values {
		assert.Contains(t, v.Label, "Waiting")
	}

	res, err = tool.Execute(context.Background(), map[string]interface{}{"fieldId": "status", "query": "5"})
	require.NoError(t, err)
	values = res.Data.(map[string]interface{})["values"].([]entity.PicklistValue)
	require.NotEmpty(t, values)
	assert.Equal(t, "Complete", values[0].Label, "an exact id match ranks first")

	res, err = tool.Execute(context.Background(), map[string]interface{}{"fieldId": "status", "query": "zzz"})
	require.NoError(t, err)
	data = res.Data.(map[string]interface{})
	assert.Equal(t, 0, data["total"])
	assert.Contains(t, data["note"], "retry without query")
}

func TestListPicklistValuesTool_Failures(t *testing.T) {
	catalog := entity.NewCatalog(ticketSource())
	tool := NewListPicklistValuesTool(ticketInput(t, catalog), catalog)

	res, err := tool.Execute(context.Background(), map[string]interface{}{})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "INVALID_FIELDS", res.Error.Code)

	res, err = tool.Execute(context.Background(), map[string]interface{}{"fieldId": "title"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "INVALID_PICKLIST_VALUE", res.Error.Code)

	res, err = tool.Execute(context.Background(), map[string]interface{}{"fieldId": "nope"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "ENTITY_NOT_FOUND", res.Error.Code)
}

func TestIntParam(t *testing.T) {
	params := map[string]interface{}{"a": 3.0, "b": "7", "c": -2, "d": "x", "e": int64(4)}
	assert.Equal(t, 3, intParam(params, "a", 1))
	assert.Equal(t, 7, intParam(params, "b", 1))
	assert.Equal(t, 1, intParam(params, "c", 1))
	assert.Equal(t, 1, intParam(params, "d", 1))
	assert.Equal(t, 4, intParam(params, "e", 1))
	assert.Equal(t, 50, intParam(params, "missing", 50))
}
