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

// Package format shapes raw executor records into the response envelope
// returned to agents for each operation kind.
package format

import (
	"fmt"
	"strconv"

	"github.com/msoukhomlinov/autotask-mcp/pkg/entity"
	"github.com/msoukhomlinov/autotask-mcp/pkg/operation"
)

// MaxResults is the number of records returned inline by list operations.
const MaxResults = 25

// Envelope is the JSON object returned to the agent.
type Envelope map[string]interface{}

// Format builds the envelope for op. entityID is echoed by delete.
//
//	get, create, update, whoAmI   {result: <first record or null>}
//	delete                        {result: {id, deleted: true}} or the dry-run preview
//	count                         {count: N}
//	getMany and other list kinds  {results, count[, truncated, totalAvailable, note]}
func Format(op operation.Kind, entityID string, records []entity.Record) Envelope {
	switch op {
	case operation.Get, operation.Create, operation.Update, operation.WhoAmI:
		return Envelope{"result": first(records)}
	case operation.Delete:
		if preview := dryRunRecord(records); preview != nil {
			return Envelope{"result": preview}
		}
		return Envelope{"result": map[string]interface{}{
			"id":      idValue(entityID),
			"deleted": true,
		}}
	case operation.Count:
		return Envelope{"count": countOf(records)}
	default:
		return List(records)
	}
}

// List builds the list envelope, truncating above MaxResults.
func List(records []entity.Record) Envelope {
	total := len(records)
	if records == nil {
		records = []entity.Record{}
	}
	if total <= MaxResults {
		return Envelope{"results": records, "count": total}
	}
	return Envelope{
		"results":        records[:MaxResults],
		"count":          MaxResults,
		"truncated":      true,
		"totalAvailable": total,
		"note": fmt.Sprintf("Showing %d of %d matching records. Add filters (for example a date range) "+
			"or set 'limit' to narrow the query, and use 'fields' to return fewer columns.", MaxResults, total),
	}
}

// dryRunRecord returns the preview record of a dry-run write, if any.
func dryRunRecord(records []entity.Record) entity.Record {
	if len(records) == 0 || records[0] == nil {
		return nil
	}
	if dry, _ := records[0]["dryRun"].(bool); dry {
		return records[0]
	}
	return nil
}

func first(records []entity.Record) interface{} {
	if len(records) == 0 || records[0] == nil {
		return nil
	}
	return records[0]
}

// countOf prefers an explicit count field on the first record.
func countOf(records []entity.Record) interface{} {
	if len(records) > 0 && records[0] != nil {
		if c, ok := records[0]["count"]; ok && c != nil {
			return c
		}
	}
	return len(records)
}

func idValue(id string) interface{} {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}
