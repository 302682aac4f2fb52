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

package shuttle

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSchema_NilProperties(t *testing.T) {
	schema := &JSONSchema{Type: "object"}

	normalized := NormalizeSchema(schema)

	require.NotNil(t, normalized.Properties)
	assert.Empty(t, normalized.Properties)
}

func TestNormalizeSchema_NestedObjects(t *testing.T) {
	schema := &JSONSchema{
		Type: "object",
		Properties: map[string]*JSONSchema{
			"metadata": {Type: "object"},
			"config": {
				Type: "object",
				Properties: map[string]*JSONSchema{
					"nested": {Type: "object"},
				},
			},
			"untyped": {Description: "no type at all"},
		},
	}

	normalized := NormalizeSchema(schema)

	assert.NotNil(t, normalized.Properties["metadata"].Properties)
	assert.NotNil(t, normalized.Properties["config"].Properties["nested"].Properties)
	assert.Equal(t, "string", normalized.Properties["untyped"].Type)
}

func TestNormalizeSchema_InferType(t *testing.T) {
	assert.Equal(t, "object", NormalizeSchema(&JSONSchema{Properties: map[string]*JSONSchema{}}).Type)
	assert.Equal(t, "array", NormalizeSchema(&JSONSchema{Items: &JSONSchema{Type: "string"}}).Type)
	assert.Equal(t, "string", NormalizeSchema(&JSONSchema{Enum: []interface{}{"a"}}).Type)
	assert.Nil(t, NormalizeSchema(nil))
}

func TestNormalizeSchema_PrunesRequired(t *testing.T) {
	schema := NewObjectSchema("", map[string]*JSONSchema{
		"id":    NewNumberSchema("ID"),
		"title": NewStringSchema("Title"),
	}, []string{"id", "ghost", "id", "title"})

	assert.Equal(t, []string{"id", "title"}, NormalizeSchema(schema).Required)
}

func TestEnsureObjectSchema(t *testing.T) {
	tests := []struct {
		name      string
		in        *JSONSchema
		wantProps []string
	}{
		{name: "nil", in: nil, wantProps: []string{}},
		{name: "empty", in: &JSONSchema{}, wantProps: []string{}},
		{name: "object", in: NewObjectSchema("x", map[string]*JSONSchema{"id": NewNumberSchema("")}, []string{"id"}), wantProps: []string{"id"}},
		{name: "string root is wrapped", in: NewStringSchema("free text"), wantProps: []string{WrappedInputProperty}},
		{name: "array root is wrapped", in: NewArraySchema("ids", NewNumberSchema("")), wantProps: []string{WrappedInputProperty}},
		{name: "untyped with properties", in: &JSONSchema{Properties: map[string]*JSONSchema{"a": {}}}, wantProps: []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := EnsureObjectSchema(tt.in)
			require.NotNil(t, out)
			assert.Equal(t, "object", out.Type)
			require.NotNil(t, out.Properties)

			keys := make([]string, 0, len(out.Properties))
			for k := range out.Properties {
				keys = append(keys, k)
			}
			assert.ElementsMatch(t, tt.wantProps, keys)
			assert.True(t, Compiles(out))
		})
	}
}

func TestEnsureObjectSchema_DoesNotMutateInput(t *testing.T) {
	in := NewObjectSchema("", map[string]*JSONSchema{"a": NewStringSchema("")}, []string{"a", "missing"})
	_ = EnsureObjectSchema(in)
	assert.Equal(t, []string{"a", "missing"}, in.Required)
}

func TestEnsureObjectSchema_FallsBackWhenUncompilable(t *testing.T) {
	in := NewObjectSchema("tickets", map[string]*JSONSchema{
		"bad": {Type: "not-a-type"},
	}, nil)

	out := EnsureObjectSchema(in)
	assert.Equal(t, "object", out.Type)
	assert.Empty(t, out.Properties)
	assert.Equal(t, "tickets", out.Description)
}

func TestJSONSchema_ToMap(t *testing.T) {
	schema := NewObjectSchema("", map[string]*JSONSchema{
		"op": NewStringSchema("operator").WithEnum("eq", "noteq"),
	}, []string{"op"})

	m, err := schema.ToMap()
	require.NoError(t, err)
	assert.Equal(t, "object", m["type"])

	data, err := json.Marshal(m)
	require.NoError(t, err)
	back, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"eq", "noteq"}, back.Properties["op"].Enum)
}
