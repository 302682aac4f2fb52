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

// Package validate holds the pre-flight checks run before a tool call
// reaches the network. Every check is pure: it inspects the partitioned call
// against the resource's field metadata and returns the first structured
// failure, or nil.
package validate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/msoukhomlinov/autotask-mcp/pkg/agenterr"
	"github.com/msoukhomlinov/autotask-mcp/pkg/entity"
	"github.com/msoukhomlinov/autotask-mcp/pkg/operation"
)

// maxSuggestions caps the "did you mean" list attached to field errors.
const maxSuggestions = 3

// ReadFields fails with INVALID_FIELDS when a selected column is not a read
// field of the resource. It is a no-op when either list is empty.
func ReadFields(call agenterr.Call, selected []string, readFields []entity.FieldDescriptor) *agenterr.StructuredError {
	if len(selected) == 0 || len(readFields) == 0 {
		return nil
	}
	known := fieldIndex(readFields)

	var invalid []string
	for _, col := range selected {
		if _, ok := known[strings.ToLower(col)]; !ok {
			invalid = append(invalid, col)
		}
	}
	if len(invalid) == 0 {
		return nil
	}

	msg := fmt.Sprintf("Unknown field(s) for %s: %s", call.Resource, strings.Join(invalid, ", "))
	return agenterr.New(agenterr.InvalidFields, call, msg).
		WithContext("invalidFields", invalid).
		WithContext("suggestions", suggest(invalid, readFields))
}

// WriteFields checks the field values of a create or update. Unknown keys
// fail with INVALID_WRITE_FIELDS before anything else; a create that leaves
// a required field absent or blank fails with MISSING_REQUIRED_FIELDS.
func WriteFields(call agenterr.Call, values map[string]interface{}, writeFields []entity.FieldDescriptor, op operation.Kind) *agenterr.StructuredError {
	if len(writeFields) == 0 {
		return nil
	}
	known := fieldIndex(writeFields)

	var unknown []string
	for key := range values {
		if _, ok := known[strings.ToLower(key)]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		msg := fmt.Sprintf("Field(s) not writable on %s: %s", call.Resource, strings.Join(unknown, ", "))
		return agenterr.New(agenterr.InvalidWriteFields, call, msg).
			WithContext("invalidFields", unknown).
			WithContext("suggestions", suggest(unknown, writeFields))
	}

	if op != operation.Create {
		return nil
	}

	supplied := make(map[string]interface{}, len(values))
	for key, v := range values {
		supplied[strings.ToLower(key)] = v
	}
	var missing []string
	for _, f := range writeFields {
		if !f.Required {
			continue
		}
		if v, ok := supplied[strings.ToLower(f.ID)]; !ok || blank(v) {
			missing = append(missing, f.ID)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	msg := fmt.Sprintf("Missing required field(s) for %s: %s", call.Resource, strings.Join(missing, ", "))
	return agenterr.New(agenterr.MissingRequiredFields, call, msg).
		WithContext("missingFields", missing)
}

// EntityID fails with MISSING_ENTITY_ID when op addresses a single record
// and id is not a positive integer that fits in int64.
func EntityID(call agenterr.Call, id string, op operation.Kind) *agenterr.StructuredError {
	if !op.NeedsID() {
		return nil
	}
	if validID(id) {
		return nil
	}
	msg := fmt.Sprintf("%s requires a numeric id", call.Name())
	if id != "" {
		msg = fmt.Sprintf("%s requires a numeric id, got %q", call.Name(), id)
	}
	return agenterr.New(agenterr.MissingEntityID, call, msg)
}

// Filters fails with INVALID_FILTER_CONSTRAINT for an unknown operator, a
// missing value, or a field that is not a read field of the resource. Field
// membership is only checked when readFields is non-empty.
func Filters(call agenterr.Call, filters []operation.Filter, readFields []entity.FieldDescriptor) *agenterr.StructuredError {
	known := fieldIndex(readFields)
	for i, f := range filters {
		position := i + 1
		if _, ok := operation.CanonicalFilterOp(f.Op); !ok {
			msg := fmt.Sprintf("Filter %d uses unknown operator %q; use one of %s",
				position, f.Op, strings.Join(operation.FilterOperators, ", "))
			return agenterr.New(agenterr.InvalidFilterConstraint, call, msg).
				WithContext("filter", f)
		}
		if blank(f.Value) {
			msg := fmt.Sprintf("Filter %d on %q has no value", position, f.Field)
			return agenterr.New(agenterr.InvalidFilterConstraint, call, msg).
				WithContext("filter", f)
		}
		if len(known) == 0 {
			continue
		}
		if _, ok := known[strings.ToLower(f.Field)]; !ok {
			msg := fmt.Sprintf("Filter %d field %q is not a field of %s", position, f.Field, call.Resource)
			return agenterr.New(agenterr.InvalidFilterConstraint, call, msg).
				WithContext("filter", f).
				WithContext("suggestions", suggest([]string{f.Field}, readFields))
		}
	}
	return nil
}

func fieldIndex(fields []entity.FieldDescriptor) map[string]struct{} {
	idx := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		idx[strings.ToLower(f.ID)] = struct{}{}
	}
	return idx
}

// suggest returns up to maxSuggestions field ids that fuzzily match any of
// the rejected names, best matches first.
func suggest(rejected []string, fields []entity.FieldDescriptor) []string {
	ids := make([]string, len(fields))
	for i, f := range fields {
		ids[i] = f.ID
	}

	seen := make(map[string]struct{})
	out := []string{}
	for _, name := range rejected {
		for _, m := range fuzzy.Find(name, ids) {
			if _, dup := seen[m.Str]; dup {
				continue
			}
			seen[m.Str] = struct{}{}
			out = append(out, m.Str)
			if len(out) == maxSuggestions {
				return out
			}
		}
	}
	return out
}

func blank(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	}
	return false
}

func validID(s string) bool {
	n, err := strconv.ParseInt(s, 10, 64)
	return err == nil && n > 0
}
