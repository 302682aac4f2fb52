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

	"github.com/msoukhomlinov/autotask-mcp/pkg/entity"
	"github.com/msoukhomlinov/autotask-mcp/pkg/format"
	"github.com/msoukhomlinov/autotask-mcp/pkg/naming"
	"github.com/msoukhomlinov/autotask-mcp/pkg/operation"
)

// ParamDescription builds the description of one field parameter: display
// name, required marker, reference marker, picklist hints and a datetime
// format hint.
func ParamDescription(namespace, resource string, f entity.FieldDescriptor, op operation.Kind, required bool) string {
	name := f.DisplayName()
	if op == operation.Update {
		name = "New " + name
	}
	parts := []string{name}

	if required {
		parts = append(parts, "(required)")
	}
	if f.IsReference && f.ReferencedEntity != "" {
		parts = append(parts, fmt.Sprintf("(references %s)", f.ReferencedEntity))
	}
	if f.IsUserDefined {
		parts = append(parts, "(user-defined field)")
	}
	if f.Type == entity.TypeDateTime {
		parts = append(parts, "ISO 8601 date-time, e.g. 2024-01-31T09:00:00Z.")
	}
	if f.IsPicklist {
		parts = append(parts, picklistHint(namespace, resource, f))
	}
	return strings.Join(parts, " ")
}

func picklistHint(namespace, resource string, f entity.FieldDescriptor) string {
	var b strings.Builder
	n := len(f.AllowedValues)
	if n > 0 {
		shown := f.AllowedValues
		if n > MaxPicklistHints {
			shown = shown[:MaxPicklistHints]
		}
		pairs := make([]string, len(shown))
		for i, v := range shown {
			pairs[i] = v.ID + "=" + v.Label
		}
		b.WriteString("Values: ")
		b.WriteString(strings.Join(pairs, ", "))
		if n > MaxPicklistHints {
			b.WriteString(", ...")
		}
		b.WriteString(".")
	}
	if n == 0 || n > LargePicklistThreshold {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "Large picklist: call %s with fieldId=%s for all values.",
			naming.ToolName(namespace, resource, naming.HelperListPicklistValues), f.ID)
	}
	return b.String()
}

func describeOperation(in Input, op operation.Kind) string {
	res := in.Resource
	describe := naming.ToolName(in.Namespace, in.Resource, naming.HelperDescribeFields)

	switch op {
	case operation.Get:
		return fmt.Sprintf("Get a single %s by its numeric id. Picklist and reference fields come back with "+
			"human-readable labels. Use 'fields' to return only some columns (see %s).", res, describe)

	case operation.GetMany, operation.GetPosted, operation.GetUnposted:
		var b strings.Builder
		switch op {
		case operation.GetPosted:
			fmt.Fprintf(&b, "List posted (billing-approved) %s records, optionally narrowed by up to two filters.", res)
		case operation.GetUnposted:
			fmt.Fprintf(&b, "List unposted (not yet billing-approved) %s records, optionally narrowed by up to two filters.", res)
		default:
			fmt.Fprintf(&b, "Search %s records with up to two filters combined with AND.", res)
		}
		b.WriteString(" ")
		b.WriteString(orderingHint(in.ReadFields))
		fmt.Fprintf(&b, " At most %d records are returned inline; when more match, the response is truncated "+
			"and reports totalAvailable, so narrow the filters or set 'limit'.", format.MaxResults)
		b.WriteString(filterableHint(in.ReadFields, describe))
		return b.String()

	case operation.Count:
		return fmt.Sprintf("Count %s records matching up to two filters combined with AND. Returns {count}. "+
			"Use this instead of listing when only the number is needed.%s", res, filterableHint(in.ReadFields, describe))

	case operation.Create:
		desc := fmt.Sprintf("Create a new %s.", res)
		if req := requiredFields(in.WriteFields); len(req) > 0 {
			desc += " Required fields: " + strings.Join(req, ", ") + "."
		}
		return desc + fmt.Sprintf(" Picklist fields take the value id, not the label. Reference fields take the "+
			"numeric ID of the referenced entity. Call %s with mode \"write\" for full field details.", describe)

	case operation.Update:
		return fmt.Sprintf("Update an existing %s by id. PATCH semantics: only the fields you supply are changed; "+
			"omitted fields are left untouched, not cleared. Picklist fields take the value id. "+
			"Call %s with mode \"write\" for writable fields.", res, describe)

	case operation.Delete:
		return fmt.Sprintf("Permanently delete a %s by id. This cannot be undone; confirm the id with a get first.", res)

	case operation.SearchByDomain:
		return fmt.Sprintf("Find %s records by website domain. Accepts a bare domain (example.com) or a full URL "+
			"(https://www.example.com/page); both are normalized to the bare domain before matching webAddress. "+
			"When no record matches, falls back to contacts whose email address ends with @domain and returns "+
			"their companies. At most %d records are returned inline.", res, format.MaxResults)

	case operation.WhoAmI:
		return "Return the resource (user) record of the API user these tools run as. Use its id for " +
			"'assigned to me' style filters."

	default:
		return fmt.Sprintf("Run %s on %s.", op, res)
	}
}

// orderingHint warns that unfiltered listings are oldest first and names a
// date field usable for recency filters.
func orderingHint(fields []entity.FieldDescriptor) string {
	dateField := recencyField(fields)
	if dateField == "" {
		return "Results are returned in ascending ID order (oldest first). For \"most recent\" queries add a " +
			"date filter; do not assume the first results are the newest."
	}
	return fmt.Sprintf("Results are returned in ascending ID order (oldest first). For \"most recent\" queries "+
		"filter on a date field such as %s with gt or gte; do not assume the first results are the newest.", dateField)
}

func recencyField(fields []entity.FieldDescriptor) string {
	var fallback string
	for _, f := range fields {
		if f.Type != entity.TypeDateTime || f.IsUserDefined {
			continue
		}
		lower := strings.ToLower(f.ID)
		if strings.Contains(lower, "create") || strings.Contains(lower, "lastactivity") || strings.Contains(lower, "lastmodified") {
			return f.ID
		}
		if fallback == "" {
			fallback = f.ID
		}
	}
	return fallback
}

func filterableHint(fields []entity.FieldDescriptor, describe string) string {
	ids := FilterableFields(fields)
	if len(ids) == 0 {
		return fmt.Sprintf(" Call %s to discover filterable fields.", describe)
	}
	if len(ids) > maxListedFilterFields {
		return fmt.Sprintf(" Filterable fields: %s, ... (%d more, see %s).",
			strings.Join(ids[:maxListedFilterFields], ", "), len(ids)-maxListedFilterFields, describe)
	}
	return " Filterable fields: " + strings.Join(ids, ", ") + "."
}

func requiredFields(fields []entity.FieldDescriptor) []string {
	var out []string
	for _, f := range fields {
		if f.Required && !operation.IsControlParam(f.ID) {
			out = append(out, f.ID)
		}
	}
	return out
}
