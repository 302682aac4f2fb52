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
	"github.com/xeipuuv/gojsonschema"
)

// WrappedInputProperty is the property name used when a non-object schema
// is wrapped into an object root.
const WrappedInputProperty = "input"

// NormalizeSchema fixes common structural issues in place and returns the
// schema:
//   - object types with nil properties get an empty map
//   - a missing type is inferred from properties, items or enum
//   - nested schemas are normalized recursively; untyped properties
//     degrade to strings
//   - required entries are deduplicated and pruned to existing properties
func NormalizeSchema(schema *JSONSchema) *JSONSchema {
	if schema == nil {
		return nil
	}

	if schema.Type == "" {
		switch {
		case schema.Properties != nil:
			schema.Type = "object"
		case schema.Items != nil:
			schema.Type = "array"
		case len(schema.Enum) > 0:
			schema.Type = "string"
		}
	}

	switch schema.Type {
	case "object":
		if schema.Properties == nil {
			schema.Properties = make(map[string]*JSONSchema)
		}
		for key, prop := range schema.Properties {
			if prop == nil {
				prop = &JSONSchema{Type: "string"}
			}
			prop = NormalizeSchema(prop)
			if prop.Type == "" {
				prop.Type = "string"
			}
			schema.Properties[key] = prop
		}
		schema.Required = pruneRequired(schema.Required, schema.Properties)
	case "array":
		if schema.Items != nil {
			schema.Items = NormalizeSchema(schema.Items)
		}
	}

	return schema
}

// EnsureObjectSchema returns a normalized copy of schema whose root is an
// object with a non-nil properties map. It never fails:
//   - nil becomes an empty object schema
//   - an untyped schema without structure becomes an object
//   - any other non-object root is wrapped as the single property "input"
//   - a result that does not compile as JSON Schema is replaced with the
//     minimal object schema, keeping the description
func EnsureObjectSchema(schema *JSONSchema) *JSONSchema {
	if schema == nil {
		return minimalObjectSchema("")
	}

	out := NormalizeSchema(cloneSchema(schema))
	switch out.Type {
	case "object":
	case "":
		out.Type = "object"
		out.Properties = make(map[string]*JSONSchema)
		out.Required = nil
	default:
		desc := out.Description
		out = NewObjectSchema(desc, map[string]*JSONSchema{WrappedInputProperty: out}, nil)
	}

	if !Compiles(out) {
		return minimalObjectSchema(out.Description)
	}
	return out
}

// Compiles reports whether schema is accepted by a JSON Schema compiler.
func Compiles(schema *JSONSchema) bool {
	if schema == nil {
		return false
	}
	_, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	return err == nil
}

func minimalObjectSchema(description string) *JSONSchema {
	return NewObjectSchema(description, map[string]*JSONSchema{}, nil)
}

func pruneRequired(required []string, props map[string]*JSONSchema) []string {
	if len(required) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(required))
	out := make([]string, 0, len(required))
	for _, name := range required {
		if _, dup := seen[name]; dup {
			continue
		}
		if _, ok := props[name]; !ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func cloneSchema(s *JSONSchema) *JSONSchema {
	if s == nil {
		return nil
	}
	c := *s
	if s.Properties != nil {
		c.Properties = make(map[string]*JSONSchema, len(s.Properties))
		for k, v := range s.Properties {
			c.Properties[k] = cloneSchema(v)
		}
	}
	if s.Required != nil {
		c.Required = append([]string(nil), s.Required...)
	}
	if s.Enum != nil {
		c.Enum = append([]interface{}(nil), s.Enum...)
	}
	c.Items = cloneSchema(s.Items)
	return &c
}
