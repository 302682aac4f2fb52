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

// Package shuttle defines the tool abstraction exposed to agents: a named,
// self-describing operation with a JSON Schema input and a structured result.
//
// Tools shuttle a call between the agent and the Autotask API. Failures are
// reported inside the Result rather than as Go errors, so the agent always
// receives a parseable payload.
package shuttle

import (
	"context"
	"encoding/json"
)

// Tool is one externally callable operation.
type Tool interface {
	// Name returns the tool's unique identifier.
	Name() string

	// Description returns the natural-language description shown to the agent.
	Description() string

	// InputSchema returns the JSON Schema for the tool's parameters.
	InputSchema() *JSONSchema

	// Execute runs the tool with the agent's flat parameter bag.
	Execute(ctx context.Context, params map[string]interface{}) (*Result, error)

	// Backend names the system the tool talks to ("autotask").
	Backend() string
}

// Hints describe a tool's side effects to clients that surface them.
type Hints struct {
	ReadOnly    bool
	Destructive bool
	Idempotent  bool
}

// HintedTool is implemented by tools that advertise side-effect hints.
type HintedTool interface {
	Tool
	Hints() Hints
}

// Result is the outcome of a tool execution.
type Result struct {
	// Success is false when Error is set.
	Success bool

	// Data is the JSON-serializable payload returned to the agent. Failed
	// executions also carry a payload (the error envelope).
	Data interface{}

	// Error describes a failure.
	Error *Error

	// Metadata holds tool-specific metadata that is not sent to the agent.
	Metadata map[string]interface{}

	// ExecutionTimeMs is set by the Executor.
	ExecutionTimeMs int64
}

// Error is a structured tool failure.
type Error struct {
	// Code is machine-readable (e.g. MISSING_ENTITY_ID).
	Code string

	// Message is human-readable.
	Message string

	// Details carries additional context.
	Details map[string]interface{}

	// Retryable marks failures the caller may retry with backoff.
	Retryable bool

	// Suggestion is the next action the caller should take.
	Suggestion string
}

// JSONSchema is the subset of JSON Schema used for tool parameters.
type JSONSchema struct {
	Type        string                 `json:"type"`
	Description string                 `json:"description,omitempty"`
	Properties  map[string]*JSONSchema `json:"properties,omitempty"`
	Required    []string               `json:"required,omitempty"`
	Items       *JSONSchema            `json:"items,omitempty"`
	Enum        []interface{}          `json:"enum,omitempty"`
	Default     interface{}            `json:"default,omitempty"`
	Format      string                 `json:"format,omitempty"`
	Pattern     string                 `json:"pattern,omitempty"`
	Minimum     *float64               `json:"minimum,omitempty"`
	Maximum     *float64               `json:"maximum,omitempty"`
}

// ToJSON marshals the schema.
func (s *JSONSchema) ToJSON() ([]byte, error) {
	return json.Marshal(s)
}

// ToMap converts the schema to a generic map, the shape MCP clients expect.
func (s *JSONSchema) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// FromJSON parses a schema.
func FromJSON(data []byte) (*JSONSchema, error) {
	var schema JSONSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, err
	}
	return &schema, nil
}

// NewObjectSchema creates an object schema.
func NewObjectSchema(description string, properties map[string]*JSONSchema, required []string) *JSONSchema {
	return &JSONSchema{
		Type:        "object",
		Description: description,
		Properties:  properties,
		Required:    required,
	}
}

// NewStringSchema creates a string schema.
func NewStringSchema(description string) *JSONSchema {
	return &JSONSchema{Type: "string", Description: description}
}

// NewNumberSchema creates a number schema.
func NewNumberSchema(description string) *JSONSchema {
	return &JSONSchema{Type: "number", Description: description}
}

// NewBooleanSchema creates a boolean schema.
func NewBooleanSchema(description string) *JSONSchema {
	return &JSONSchema{Type: "boolean", Description: description}
}

// NewArraySchema creates an array schema.
func NewArraySchema(description string, items *JSONSchema) *JSONSchema {
	return &JSONSchema{Type: "array", Description: description, Items: items}
}

// WithEnum sets the allowed values.
func (s *JSONSchema) WithEnum(values ...interface{}) *JSONSchema {
	s.Enum = values
	return s
}

// WithDefault sets the default value.
func (s *JSONSchema) WithDefault(value interface{}) *JSONSchema {
	s.Default = value
	return s
}

// WithFormat sets the format (e.g. date-time).
func (s *JSONSchema) WithFormat(format string) *JSONSchema {
	s.Format = format
	return s
}

// WithPattern sets a regular expression constraint.
func (s *JSONSchema) WithPattern(pattern string) *JSONSchema {
	s.Pattern = pattern
	return s
}

// WithRange sets minimum and maximum.
func (s *JSONSchema) WithRange(min, max *float64) *JSONSchema {
	s.Minimum = min
	s.Maximum = max
	return s
}
