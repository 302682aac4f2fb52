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

package entity

import (
	"sort"
	"strings"
)

// dependencyTable lists, per lower-cased resource and lower-cased field id,
// the fields that must also be present for the field to be meaningful.
var dependencyTable = map[string]map[string][]string{
	"ticket": {
		"contactid":              {"companyID"},
		"companylocationid":      {"companyID"},
		"configurationitemid":    {"companyID"},
		"contractid":             {"companyID"},
		"opportunityid":          {"companyID"},
		"assignedresourceid":     {"assignedResourceRoleID"},
		"assignedresourceroleid": {"assignedResourceID"},
	},
	"task": {
		"assignedresourceid":     {"assignedResourceRoleID"},
		"assignedresourceroleid": {"assignedResourceID"},
	},
	"project": {
		"contactid":  {"companyID"},
		"contractid": {"companyID"},
	},
	"contact": {
		"companylocationid": {"companyID"},
	},
	"opportunity": {
		"contactid": {"companyID"},
	},
	"configurationitem": {
		"contactid":         {"companyID"},
		"companylocationid": {"companyID"},
		"contractid":        {"companyID"},
	},
	"timeentry": {
		"roleid": {"resourceID"},
	},
	"contract": {
		"contactid": {"companyID"},
	},
}

// Dependencies returns the static prerequisites of a field, or nil.
func Dependencies(resource, fieldID string) []string {
	byField, ok := dependencyTable[strings.ToLower(resource)]
	if !ok {
		return nil
	}
	deps := byField[strings.ToLower(fieldID)]
	if len(deps) == 0 {
		return nil
	}
	out := make([]string, len(deps))
	copy(out, deps)
	return out
}

// MapType converts an API data type to a FieldType, refining plain strings
// by field name into email, url and phone. Unrecognized data types pass
// through unchanged as extension types.
func MapType(dataType, name string) FieldType {
	switch strings.ToLower(strings.TrimSpace(dataType)) {
	case "integer", "int", "long", "short", "double", "decimal", "float", "number", "byte":
		return TypeNumber
	case "boolean", "bool":
		return TypeBoolean
	case "datetime", "date", "time":
		return TypeDateTime
	case "array", "list":
		return TypeArray
	case "object":
		return TypeObject
	case "", "string", "text", "guid", "uuid":
		return refineString(name)
	case "email", "url", "phone":
		return FieldType(strings.ToLower(dataType))
	default:
		return FieldType(dataType)
	}
}

func refineString(name string) FieldType {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "email"):
		return TypeEmail
	case strings.HasSuffix(n, "url") || strings.Contains(n, "website") || strings.Contains(n, "webaddress"):
		return TypeURL
	case strings.Contains(n, "phone") || strings.HasSuffix(n, "fax") || strings.Contains(n, "mobile"):
		return TypePhone
	default:
		return TypeString
	}
}

// Normalize merges the standard and user-defined field lists of a resource
// into descriptors for one mode. Standard fields come first. Duplicate ids
// (case-insensitive) keep the first occurrence. Write mode drops read-only
// fields and the id field.
func Normalize(resource string, mode Mode, standard, userDefined []RawField) []FieldDescriptor {
	out := make([]FieldDescriptor, 0, len(standard)+len(userDefined))
	seen := make(map[string]struct{}, cap(out))

	add := func(raw RawField, udf bool) {
		if strings.TrimSpace(raw.Name) == "" {
			return
		}
		key := strings.ToLower(raw.Name)
		if _, dup := seen[key]; dup {
			return
		}
		if mode == ModeWrite && (raw.IsReadOnly || key == "id") {
			return
		}
		seen[key] = struct{}{}
		out = append(out, describe(resource, raw, udf))
	}

	for _, raw := range standard {
		add(raw, false)
	}
	for _, raw := range userDefined {
		add(raw, true)
	}
	return out
}

func describe(resource string, raw RawField, udf bool) FieldDescriptor {
	fd := FieldDescriptor{
		ID:            raw.Name,
		Label:         raw.Label,
		Type:          MapType(raw.DataType, raw.Name),
		Required:      raw.IsRequired,
		IsUserDefined: udf,
		IsPicklist:    raw.IsPickList,
	}

	if raw.IsPickList {
		if active := ActiveValues(raw.PicklistValues); len(active) > 0 && len(active) < InlinePicklistThreshold {
			fd.AllowedValues = active
		}
	}

	_, direct := directReferences[strings.ToLower(raw.Name)]
	if !udf && (raw.IsReference || direct) {
		fd.IsReference = true
		fd.ReferencedEntity = ResolveReference(resource, raw.Name, raw.ReferenceEntityType)
	}

	fd.Dependencies = Dependencies(resource, raw.Name)
	return fd
}

// ActiveValues returns the active picklist values in sort order.
func ActiveValues(values []RawPicklistValue) []PicklistValue {
	active := make([]RawPicklistValue, 0, len(values))
	for _, v := range values {
		if v.Active() {
			active = append(active, v)
		}
	}
	sort.SliceStable(active, func(i, j int) bool { return active[i].SortOrder < active[j].SortOrder })

	out := make([]PicklistValue, len(active))
	for i, v := range active {
		out[i] = PicklistValue{ID: v.Value, Label: v.Label}
	}
	return out
}
