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

// Package agenterr defines the recovery-oriented error taxonomy returned to
// agents. Every failure of an agent tool call becomes a StructuredError whose
// Kind is one of a closed set and whose NextAction names what the agent
// should do next, usually calling a companion tool.
package agenterr

import (
	"encoding/json"
	"fmt"
)

// Kind is the closed set of agent-facing error kinds.
type Kind string

const (
	InvalidFields           Kind = "INVALID_FIELDS"
	InvalidWriteFields      Kind = "INVALID_WRITE_FIELDS"
	MissingRequiredFields   Kind = "MISSING_REQUIRED_FIELDS"
	MissingEntityID         Kind = "MISSING_ENTITY_ID"
	InvalidFilterConstraint Kind = "INVALID_FILTER_CONSTRAINT"
	ConcurrencyConflict     Kind = "CONCURRENCY_CONFLICT"
	PermissionDenied        Kind = "PERMISSION_DENIED"
	InvalidPicklistValue    Kind = "INVALID_PICKLIST_VALUE"
	EntityNotFound          Kind = "ENTITY_NOT_FOUND"
	APIError                Kind = "API_ERROR"
)

// Kinds lists every kind.
var Kinds = []Kind{
	InvalidFields, InvalidWriteFields, MissingRequiredFields, MissingEntityID,
	InvalidFilterConstraint, ConcurrencyConflict, PermissionDenied,
	InvalidPicklistValue, EntityNotFound, APIError,
}

// Retryable reports whether the caller may retry the same call with backoff.
func (k Kind) Retryable() bool {
	return k == ConcurrencyConflict
}

// StructuredError is a classified failure of one tool call.
type StructuredError struct {
	Kind       Kind                   `json:"kind"`
	Message    string                 `json:"message"`
	Operation  string                 `json:"operation"`
	NextAction string                 `json:"nextAction"`
	Retryable  bool                   `json:"retryable,omitempty"`
	Context    map[string]interface{} `json:"context,omitempty"`
}

// Call identifies the tool call an error belongs to.
type Call struct {
	Namespace string
	Resource  string
	Operation string
}

// Name formats the "resource.operation" label.
func (c Call) Name() string {
	return c.Resource + "." + c.Operation
}

// New builds a StructuredError for call with the kind's standard next action.
func New(kind Kind, call Call, message string) *StructuredError {
	return &StructuredError{
		Kind:       kind,
		Message:    message,
		Operation:  call.Name(),
		NextAction: NextAction(kind, call),
		Retryable:  kind.Retryable(),
	}
}

// WithContext attaches a context entry and returns the error.
func (e *StructuredError) WithContext(key string, value interface{}) *StructuredError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func (e *StructuredError) Error() string {
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Operation, e.Message)
}

// Envelope is the JSON payload returned to the agent on failure.
func (e *StructuredError) Envelope() map[string]interface{} {
	return map[string]interface{}{"error": e}
}

// JSON renders the envelope. It cannot fail for values built by this package.
func (e *StructuredError) JSON() string {
	data, err := json.Marshal(e.Envelope())
	if err != nil {
		return fmt.Sprintf(`{"error":{"kind":%q,"message":%q}}`, e.Kind, e.Message)
	}
	return string(data)
}
