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
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msoukhomlinov/autotask-mcp/pkg/entity"
	"github.com/msoukhomlinov/autotask-mcp/pkg/operation"
	"github.com/msoukhomlinov/autotask-mcp/pkg/shuttle"
)

func ticketInput() Input {
	read := []entity.FieldDescriptor{
		{ID: "id", Type: entity.TypeNumber},
		{ID: "title", Type: entity.TypeString, Required: true},
		{ID: "companyID", Type: entity.TypeNumber, Required: true, IsReference: true, ReferencedEntity: "company"},
		{ID: "status", Type: entity.TypeNumber, Required: true, IsPicklist: true, AllowedValues: []entity.PicklistValue{
			{ID: "1", Label: "New"}, {ID: "5", Label: "Complete"},
		}},
		{ID: "createDate", Type: entity.TypeDateTime},
		{ID: "Customer Reference", Type: entity.TypeString, IsUserDefined: true},
	}
	write := []entity.FieldDescriptor{read[1], read[2], read[3], {ID: "dueDateTime", Type: entity.TypeDateTime}, read[5]}
	return Input{Resource: "ticket", ReadFields: read, WriteFields: write}
}

func TestSynthesize_Get(t *testing.T) {
	d := Synthesize(ticketInput(), operation.Get)

	assert.Equal(t, "autotask_ticket_get", d.Name)
	assert.Equal(t, operation.Get, d.OperationKind)
	assert.Equal(t, "object", d.InputSchema.Type)
	assert.Equal(t, []string{"id"}, d.InputSchema.Required)
	assert.Equal(t, "number", d.InputSchema.Properties["id"].Type)
	assert.Equal(t, "string", d.InputSchema.Properties["fields"].Type)
}

func TestSynthesize_GetMany(t *testing.T) {
	d := Synthesize(ticketInput(), operation.GetMany)
	props := d.InputSchema.Properties

	for _, name := range []string{"filter_field", "filter_op", "filter_value", "filter_field_2", "filter_op_2", "filter_value_2", "limit", "fields"} {
		assert.Contains(t, props, name)
	}
	assert.NotContains(t, props, "filter_field_3")
	assert.Empty(t, d.InputSchema.Required)

	assert.Equal(t, []interface{}{"id", "title", "companyID", "status", "createDate"}, props["filter_field"].Enum,
		"user-defined fields are not filterable")
	assert.Len(t, props["filter_op"].Enum, 9)

	assert.Contains(t, d.Description, "ascending ID order")
	assert.Contains(t, d.Description, "createDate")
	assert.Contains(t, d.Description, "25")
	assert.Contains(t, d.Description, "Filterable fields: id, title, companyID, status, createDate.")
}

func TestSynthesize_FreeFormFilterWithoutFields(t *testing.T) {
	d := Synthesize(Input{Resource: "widget"}, operation.Count)
	field := d.InputSchema.Properties["filter_field"]
	require.NotNil(t, field)
	assert.Equal(t, "string", field.Type)
	assert.Empty(t, field.Enum)
	assert.Contains(t, d.InputSchema.Properties, "limit")
	assert.Contains(t, d.InputSchema.Properties, "fields")
}

func TestSynthesize_Create(t *testing.T) {
	d := Synthesize(ticketInput(), operation.Create)
	props := d.InputSchema.Properties

	assert.ElementsMatch(t, []string{"title", "companyID", "status"}, d.InputSchema.Required)
	assert.Equal(t, "number", props["companyID"].Type)
	assert.Equal(t, "string", props["dueDateTime"].Type, "datetime degrades to string")
	assert.Equal(t, "string", props["Customer Reference"].Type)
	assert.NotContains(t, props, "id")

	assert.Contains(t, props["companyID"].Description, "(required)")
	assert.Contains(t, props["companyID"].Description, "(references company)")
	assert.Contains(t, props["status"].Description, "1=New, 5=Complete")
	assert.Contains(t, props["dueDateTime"].Description, "ISO 8601")
	assert.Contains(t, d.Description, "Required fields: title, companyID, status.")
}

func TestSynthesize_Update(t *testing.T) {
	d := Synthesize(ticketInput(), operation.Update)
	props := d.InputSchema.Properties

	assert.Equal(t, []string{"id"}, d.InputSchema.Required)
	assert.Equal(t, "number", props["id"].Type)
	assert.True(t, strings.HasPrefix(props["title"].Description, "New Title"))
	assert.NotContains(t, props["title"].Description, "(required)")
	assert.Contains(t, d.Description, "PATCH")
}

func TestSynthesize_DeleteSearchWhoAmI(t *testing.T) {
	del := Synthesize(ticketInput(), operation.Delete)
	assert.Equal(t, []string{"id"}, del.InputSchema.Required)
	assert.NotContains(t, del.InputSchema.Properties, "fields")

	search := Synthesize(Input{Resource: "company"}, operation.SearchByDomain)
	assert.Equal(t, []string{"domain"}, search.InputSchema.Required)
	assert.Contains(t, search.Description, "email")

	who := Synthesize(Input{Resource: "resource"}, operation.WhoAmI)
	assert.Equal(t, "object", who.InputSchema.Type)
	assert.NotNil(t, who.InputSchema.Properties)
	assert.Empty(t, who.InputSchema.Properties)
}

func TestParamDescription_Picklists(t *testing.T) {
	values := func(n int) []entity.PicklistValue {
		out := make([]entity.PicklistValue, n)
		for i := range out {
			out[i] = entity.PicklistValue{ID: fmt.Sprint(i), Label: fmt.Sprintf("L%d", i)}
		}
		return out
	}

	small := entity.FieldDescriptor{ID: "priority", IsPicklist: true, AllowedValues: values(3)}
	desc := ParamDescription("", "ticket", small, operation.Create, false)
	assert.Contains(t, desc, "0=L0, 1=L1, 2=L2.")
	assert.NotContains(t, desc, "...")
	assert.NotContains(t, desc, "Large picklist")

	medium := entity.FieldDescriptor{ID: "queueID", IsPicklist: true, AllowedValues: values(12)}
	desc = ParamDescription("", "ticket", medium, operation.Create, false)
	assert.Contains(t, desc, "7=L7, ...")
	assert.NotContains(t, desc, "8=L8")
	assert.NotContains(t, desc, "Large picklist")

	large := entity.FieldDescriptor{ID: "queueID", IsPicklist: true, AllowedValues: values(20)}
	desc = ParamDescription("", "ticket", large, operation.Create, false)
	assert.Contains(t, desc, ", ...")
	assert.Contains(t, desc, "autotask_ticket_listPicklistValues with fieldId=queueID")

	notInlined := entity.FieldDescriptor{ID: "queueID", IsPicklist: true}
	desc = ParamDescription("psa", "ticket", notInlined, operation.Create, false)
	assert.Contains(t, desc, "psa_ticket_listPicklistValues")
}

func TestHelperDescriptors(t *testing.T) {
	in := ticketInput()

	df := DescribeFields(in)
	assert.Equal(t, "autotask_ticket_describeFields", df.Name)
	assert.Equal(t, []interface{}{"read", "write"}, df.InputSchema.Properties["mode"].Enum)

	lp := ListPicklistValues(in)
	assert.Equal(t, "autotask_ticket_listPicklistValues", lp.Name)
	assert.Equal(t, []string{"fieldId"}, lp.InputSchema.Required)
	assert.Equal(t, []interface{}{"status"}, lp.InputSchema.Properties["fieldId"].Enum)
}

func TestSynthesize_NamesAreDeterministic(t *testing.T) {
	a := SynthesizeAll(ticketInput(), operation.All)
	b := SynthesizeAll(ticketInput(), operation.All)
	require.Len(t, a, len(operation.All))
	for i := range a {
		assert.Equal(t, a[i].Name, b[i].Name)
		assert.Equal(t, a[i].Description, b[i].Description)
	}
}

// genField generates arbitrary, possibly malformed, field descriptors.
func genField() gopter.Gen {
	types := []interface{}{
		entity.TypeString, entity.TypeNumber, entity.TypeBoolean, entity.TypeDateTime,
		entity.TypeEmail, entity.FieldType("geoPoint"), entity.FieldType(""),
	}
	return gopter.CombineGens(
		gen.OneConstOf("", "id", "title", "companyID", "status", "limit", "filter_field", "Customer Reference", "x"),
		gen.AlphaString(),
		gen.OneConstOf(types...),
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
	).Map(func(v []interface{}) entity.FieldDescriptor {
		id := v[0].(string)
		if id == "x" {
			id = v[1].(string)
		}
		return entity.FieldDescriptor{
			ID:            id,
			Type:          v[2].(entity.FieldType),
			Required:      v[3].(bool),
			IsPicklist:    v[4].(bool),
			IsUserDefined: v[5].(bool),
		}
	})
}

func TestSynthesize_SchemaValidityProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("every synthesized schema is a compilable object", prop.ForAll(
		func(fields []entity.FieldDescriptor) bool {
			in := Input{Resource: "ticket", ReadFields: fields, WriteFields: fields}
			for _, op := range operation.All {
				s := Synthesize(in, op).InputSchema
				if s == nil || s.Type != "object" || s.Properties == nil || !shuttle.Compiles(s) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genField()),
	))

	properties.Property("create marks every required writable field required", prop.ForAll(
		func(fields []entity.FieldDescriptor) bool {
			s := Synthesize(Input{Resource: "ticket", WriteFields: fields}, operation.Create).InputSchema
			required := make(map[string]bool, len(s.Required))
			for _, r := range s.Required {
				required[r] = true
			}
			seen := make(map[string]bool)
			for _, f := range fields {
				first := !seen[f.ID]
				seen[f.ID] = true
				if !first || !f.Required || strings.TrimSpace(f.ID) == "" || operation.IsControlParam(f.ID) {
					continue
				}
				if _, present := s.Properties[f.ID]; present && !required[f.ID] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genField()),
	))

	properties.TestingRun(t)
}
