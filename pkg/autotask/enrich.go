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

package autotask

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/msoukhomlinov/autotask-mcp/pkg/bridge"
	"github.com/msoukhomlinov/autotask-mcp/pkg/entity"
	"github.com/msoukhomlinov/autotask-mcp/pkg/operation"
)

// LabelSuffix is appended to a field id to name its human-readable label.
const LabelSuffix = "_label"

// maxReferenceLookups caps the distinct ids resolved per referenced
// resource in one call.
const maxReferenceLookups = 100

// shape applies UDF flattening and label enrichment as requested by the
// output-shaping parameters. Enrichment is best effort: failures are
// logged and the records are returned as fetched.
func (c *call) shape(ctx context.Context, records []entity.Record) []entity.Record {
	if c.p.boolean(bridge.NameFlattenUdfs, false) {
		for _, rec := range records {
			flattenUDFs(rec)
		}
	}

	picklists := c.p.boolean(bridge.NameAddPicklistLabels, false)
	references := c.p.boolean(bridge.NameAddReferenceLabels, false)
	if (!picklists && !references) || c.meta == nil || len(records) == 0 {
		return records
	}

	fields, err := c.meta.GetFields(ctx, c.r.Name, entity.ModeRead)
	if err != nil {
		c.logger.Warn("Read metadata unavailable, skipping labels",
			zap.String("resource", c.r.Name), zap.Error(err))
		return records
	}
	if picklists {
		c.addPicklistLabels(ctx, records, fields)
	}
	if references {
		c.addReferenceLabels(ctx, records, fields)
	}
	return records
}

// flattenUDFs lifts userDefinedFields [{name, value}] onto the record. A
// UDF whose name collides with a standard field is kept under "udf_<name>".
func flattenUDFs(rec entity.Record) {
	raw, ok := rec["userDefinedFields"].([]interface{})
	if !ok {
		return
	}
	delete(rec, "userDefinedFields")
	for _, item := range raw {
		udf, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := udf["name"].(string)
		if name == "" {
			continue
		}
		key := name
		if _, taken := rec[key]; taken {
			key = "udf_" + name
		}
		rec[key] = udf["value"]
	}
}

func (c *call) addPicklistLabels(ctx context.Context, records []entity.Record, fields []entity.FieldDescriptor) {
	for _, f := range fields {
		if !f.IsPicklist {
			continue
		}
		values := f.AllowedValues
		if values == nil && anyValue(records, f.ID) {
			var err error
			values, err = c.meta.GetPicklistValues(ctx, c.r.Name, f.ID)
			if err != nil {
				c.logger.Debug("Picklist values unavailable",
					zap.String("resource", c.r.Name), zap.String("field", f.ID), zap.Error(err))
				continue
			}
		}
		labels := make(map[string]string, len(values))
		for _, v := range values {
			labels[v.ID] = v.Label
		}
		for _, rec := range records {
			if v, ok := rec[f.ID]; ok && v != nil {
				if label, found := labels[valueKey(v)]; found {
					rec[f.ID+LabelSuffix] = label
				}
			}
		}
	}
}

func (c *call) addReferenceLabels(ctx context.Context, records []entity.Record, fields []entity.FieldDescriptor) {
	// Group the referencing fields by target resource so each target is
	// queried once.
	byTarget := make(map[string][]string)
	for _, f := range fields {
		if !f.IsReference || f.ReferencedEntity == "" || f.IsPicklist {
			continue
		}
		byTarget[f.ReferencedEntity] = append(byTarget[f.ReferencedEntity], f.ID)
	}

	targets := make([]string, 0, len(byTarget))
	for t := range byTarget {
		targets = append(targets, t)
	}
	sort.Strings(targets)

	for _, target := range targets {
		r, ok := LookupResource(target)
		if !ok || len(r.LabelFields) == 0 {
			continue
		}
		ids := referencedIDs(records, byTarget[target])
		if len(ids) == 0 || len(ids) > maxReferenceLookups {
			continue
		}

		q := Query{
			Filter:        []operation.Filter{{Op: "in", Field: "id", Value: ids}},
			IncludeFields: append([]string{"id"}, r.LabelFields...),
		}
		related, err := c.client.Query(ctx, r, q, len(ids))
		if err != nil {
			c.logger.Debug("Reference labels unavailable",
				zap.String("resource", c.r.Name), zap.String("target", target), zap.Error(err))
			continue
		}

		labels := make(map[string]string, len(related))
		for _, rel := range related {
			labels[valueKey(rel["id"])] = joinLabel(rel, r.LabelFields)
		}
		for _, rec := range records {
			for _, field := range byTarget[target] {
				if v, ok := rec[field]; ok && v != nil {
					if label := labels[valueKey(v)]; label != "" {
						rec[field+LabelSuffix] = label
					}
				}
			}
		}
	}
}

func referencedIDs(records []entity.Record, fields []string) []int64 {
	seen := make(map[int64]struct{})
	var ids []int64
	for _, rec := range records {
		for _, field := range fields {
			id, ok := toInt64(rec[field])
			if !ok || id <= 0 {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func joinLabel(rec entity.Record, fields []string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if v, ok := rec[f]; ok && v != nil {
			if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, " ")
}

func anyValue(records []entity.Record, field string) bool {
	for _, rec := range records {
		if v, ok := rec[field]; ok && v != nil {
			return true
		}
	}
	return false
}

// valueKey renders a decoded JSON value the way picklist ids are written.
func valueKey(v interface{}) string {
	if id, ok := toInt64(v); ok {
		return fmt.Sprint(id)
	}
	return fmt.Sprint(v)
}

// selectColumns keeps id and the selected columns of rec, with their labels.
func selectColumns(rec entity.Record, columns []string) entity.Record {
	if len(columns) == 0 {
		return rec
	}
	out := entity.Record{}
	if id, ok := rec["id"]; ok {
		out["id"] = id
	}
	for _, col := range columns {
		for k, v := range rec {
			if strings.EqualFold(k, col) || strings.EqualFold(k, col+LabelSuffix) {
				out[k] = v
			}
		}
	}
	return out
}

// includeFields is the IncludeFields list of a query: the selection plus id.
func includeFields(columns []string) []string {
	if len(columns) == 0 {
		return nil
	}
	out := []string{"id"}
	for _, col := range columns {
		if !strings.EqualFold(col, "id") {
			out = append(out, col)
		}
	}
	return out
}
