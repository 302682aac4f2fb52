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

package operation

import "strings"

// DefaultFilterOp is used when a filter triplet omits its operator.
const DefaultFilterOp = "eq"

// FilterOperators are the comparison operators accepted by filter_op.
var FilterOperators = []string{"eq", "noteq", "gt", "gte", "lt", "lte", "contains", "beginsWith", "endsWith"}

// Filter is one field comparison in the shape the query API expects.
type Filter struct {
	Op    string      `json:"op"`
	Field string      `json:"field"`
	Value interface{} `json:"value"`
}

// CanonicalFilterOp maps op onto its canonical spelling, matching
// case-insensitively. Unknown operators are returned as given with ok false.
func CanonicalFilterOp(op string) (canonical string, ok bool) {
	trimmed := strings.TrimSpace(op)
	for _, known := range FilterOperators {
		if strings.EqualFold(known, trimmed) {
			return known, true
		}
	}
	return trimmed, false
}
