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

package bridge

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/msoukhomlinov/autotask-mcp/pkg/operation"
)

// ExecutionRequest is a flat parameter bag split into the parts the
// executor consumes.
type ExecutionRequest struct {
	// EntityID is the decimal id, or "" when none was supplied.
	EntityID string

	// Filters holds at most operation.MaxFilters comparisons.
	Filters []operation.Filter

	// FieldValues are the remaining non-control keys.
	FieldValues map[string]interface{}

	// SelectColumns is the parsed 'fields' selection.
	SelectColumns []string

	// Limit caps the records fetched; 0 means fetch everything.
	Limit int

	// Domain is the searchByDomain input.
	Domain string
}

// Partition splits params into an ExecutionRequest. Control keys are
// matched case-insensitively; resource and operation keys are dropped.
func Partition(params map[string]interface{}) ExecutionRequest {
	req := ExecutionRequest{
		Filters:     BuildFilterFromParams(params),
		FieldValues: make(map[string]interface{}),
	}

	for key, value := range params {
		switch strings.ToLower(key) {
		case operation.ParamID:
			req.EntityID = idString(value)
		case operation.ParamLimit:
			req.Limit = limitValue(value)
		case operation.ParamFields:
			req.SelectColumns = splitColumns(value)
		case operation.ParamDomain:
			req.Domain = strings.TrimSpace(stringValue(value))
		default:
			if operation.IsControlParam(key) {
				continue
			}
			req.FieldValues[key] = value
		}
	}
	return req
}

// BuildFilterFromParams reads filter_field/filter_op/filter_value triplets
// (and their _2 variants) from params. A triplet without a field is
// skipped; a missing operator defaults to eq. Known operators are
// canonicalized, unknown ones are kept for validation to reject. The result
// never holds more than operation.MaxFilters entries.
func BuildFilterFromParams(params map[string]interface{}) []operation.Filter {
	filters := make([]operation.Filter, 0, operation.MaxFilters)
	for i := 0; i < operation.MaxFilters; i++ {
		field := strings.TrimSpace(stringValue(lookup(params, operation.FilterParam(operation.ParamFilterField, i))))
		if field == "" {
			continue
		}
		op := operation.DefaultFilterOp
		if raw := strings.TrimSpace(stringValue(lookup(params, operation.FilterParam(operation.ParamFilterOp, i)))); raw != "" {
			op, _ = operation.CanonicalFilterOp(raw)
		}
		filters = append(filters, operation.Filter{
			Field: field,
			Op:    op,
			Value: lookup(params, operation.FilterParam(operation.ParamFilterValue, i)),
		})
	}
	return filters
}

// lookup finds key exactly, then case-insensitively.
func lookup(params map[string]interface{}, key string) interface{} {
	if v, ok := params[key]; ok {
		return v
	}
	for k, v := range params {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return nil
}

func stringValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

// idString renders an id as a decimal string. Non-integral numbers keep
// their fractional form so validation rejects them.
func idString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		if val == math.Trunc(val) && !math.IsInf(val, 0) {
			return strconv.FormatFloat(val, 'f', -1, 64)
		}
		return fmt.Sprint(val)
	case json.Number:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func limitValue(v interface{}) int {
	var n float64
	switch val := v.(type) {
	case float64:
		n = val
	case int:
		n = float64(val)
	case int64:
		n = float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0
		}
		n = f
	default:
		return 0
	}
	if n < 1 || math.IsNaN(n) {
		return 0
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

func splitColumns(v interface{}) []string {
	var parts []string
	switch val := v.(type) {
	case string:
		parts = strings.Split(val, ",")
	case []interface{}:
		for _, item := range val {
			parts = append(parts, stringValue(item))
		}
	case []string:
		parts = val
	}

	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
